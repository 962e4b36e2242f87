// Package pdfgraph loads, edits, merges and saves PDF object graphs.
//
// Basic usage:
//
//	doc, err := pdfgraph.Open("input.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	data, err := doc.Save(pdfgraph.Compressed())
//
// Content moves between documents with CopyFrom, which copies an object and
// everything it references into the receiving document:
//
//	page, err := dst.CopyFrom(src, pageRef)
//
// For lower-level access, the core, copier, reader and writer packages are
// also available.
package pdfgraph

import (
	"os"

	"github.com/pkg/errors"

	"github.com/tsawler/pdfgraph/copier"
	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/reader"
	"github.com/tsawler/pdfgraph/writer"
)

// Document is a PDF object graph with the reader it came from, if any.
type Document struct {
	ctx    *core.Context
	reader *reader.Reader
}

// New creates an empty document: a catalog and a page tree with no pages.
func New() *Document {
	ctx := core.NewContext()
	pages := ctx.Register(core.NewDict(
		core.DictEntry{Key: "Type", Value: core.Name("Pages")},
		core.DictEntry{Key: "Kids", Value: core.Array{}},
		core.DictEntry{Key: "Count", Value: core.Number(0)},
	))
	ctx.Trailer.Root = ctx.Register(core.NewDict(
		core.DictEntry{Key: "Type", Value: core.Name("Catalog")},
		core.DictEntry{Key: "Pages", Value: pages},
	))
	return &Document{ctx: ctx}
}

// Load parses a document held in memory.
func Load(data []byte, opts ...LoadOption) (*Document, error) {
	r, err := reader.Load(data, opts...)
	if err != nil {
		return nil, err
	}
	return &Document{ctx: r.Context(), reader: r}, nil
}

// Open memory-maps and parses a file. The Document should be closed when
// done.
func Open(filename string, opts ...LoadOption) (*Document, error) {
	r, err := reader.Open(filename, opts...)
	if err != nil {
		return nil, err
	}
	return &Document{ctx: r.Context(), reader: r}, nil
}

// Close releases the file behind a Document created by Open. The object
// graph remains usable.
func (d *Document) Close() error {
	if d.reader == nil {
		return nil
	}
	return d.reader.Close()
}

// Context returns the document's object graph.
func (d *Document) Context() *core.Context {
	return d.ctx
}

// Catalog returns the document catalog.
func (d *Document) Catalog() (*core.Dict, error) {
	if d.ctx.Trailer.Root == nil {
		return nil, &core.MissingKeyError{Key: "Root", In: "trailer"}
	}
	return core.LookupAs[*core.Dict](d.ctx, d.ctx.Trailer.Root)
}

// Save serializes the document. The default is a classic cross-reference
// table; see Compressed.
func (d *Document) Save(opts ...SaveOption) ([]byte, error) {
	return writer.Serialize(d.ctx, opts...)
}

// SaveFile serializes the document to filename.
func (d *Document) SaveFile(filename string, opts ...SaveOption) error {
	data, err := d.Save(opts...)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(filename, data, 0o644), "failed to write file")
}

// CopyFrom copies obj, and everything it references, from src into d. The
// result is valid in d; src is not modified.
func (d *Document) CopyFrom(src *Document, obj core.Object) (core.Object, error) {
	return copier.Copy(obj, src.ctx, d.ctx)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := pdfgraph.Must(pdfgraph.Open("document.pdf"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
