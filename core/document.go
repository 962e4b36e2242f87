package core

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfgraph/logging"
)

// DocumentParser reads a whole file front to back into a Context.
//
// Objects are taken in file order, so a later definition of the same
// reference (an incremental update) replaces an earlier one. Object streams
// are expanded in place. Cross-reference streams contribute trailer entries
// and are not kept as objects. The file's own cross-reference data is not
// trusted for offsets.
type DocumentParser struct {
	parser  *Parser
	ctx     *Context
	data    []byte
	yielder *Yielder
	xrefs   []*XRefTable
	done    bool
}

// NewDocumentParser prepares to parse data into ctx. hooks and y may be nil.
func NewDocumentParser(data []byte, ctx *Context, hooks *Hooks, y *Yielder) *DocumentParser {
	return &DocumentParser{
		parser:  NewParser(ctx, hooks),
		ctx:     ctx,
		data:    data,
		yielder: y,
	}
}

// SetThrowOnInvalidObject makes an unparseable object body an error instead
// of an InvalidObject.
func (d *DocumentParser) SetThrowOnInvalidObject(v bool) {
	d.parser.ThrowOnInvalidObject = v
}

// XRefTables returns the classic cross-reference sections seen, in file order.
func (d *DocumentParser) XRefTables() []*XRefTable {
	return d.xrefs
}

// ParseDocument parses the file. A second call returns ErrAlreadyParsed.
func (d *DocumentParser) ParseDocument() error {
	if d.done {
		return ErrAlreadyParsed
	}
	d.done = true
	log := logging.Logger()

	hdr, rest, err := ParseHeader(d.data, d.parser.hooks)
	switch {
	case err == nil:
		d.ctx.Header = hdr
	case errors.Is(err, ErrNoMatch):
		log.Debug("no %PDF header, assuming default version")
	default:
		return err
	}

	for {
		d.yielder.Tick()
		s := skipSpace(rest)
		if len(s) == 0 {
			break
		}
		rest, err = d.parseNext(s)
		if err != nil {
			return fmt.Errorf("at offset %d: %w", d.offset(s), err)
		}
	}

	if d.ctx.Trailer.Root == nil {
		d.recoverRoot()
	}
	if d.ctx.Trailer.Encrypt != nil {
		log.Warn("document is encrypted; strings and streams are left as stored")
	}
	log.Debug("parsed document",
		slog.Int("objects", d.ctx.Len()),
		slog.Int("xrefSections", len(d.xrefs)))
	return nil
}

// parseNext consumes one top-level construct starting at s.
func (d *DocumentParser) parseNext(s []byte) ([]byte, error) {
	switch {
	case hasKeyword(s, "xref"):
		table, rest, err := d.parser.ParseXRefSection(s)
		if err != nil {
			return d.recover(s, err)
		}
		d.xrefs = append(d.xrefs, table)
		d.ctx.Trailer.update(table.Trailer)
		return rest, nil

	case hasKeyword(s, "trailer"):
		obj, rest, err := d.parser.ParseDictOrStream(s[len("trailer"):])
		if err != nil {
			return d.recover(s, err)
		}
		if dict, ok := obj.(*Dict); ok {
			d.ctx.Trailer.update(dict)
		}
		return rest, nil

	case hasKeyword(s, "startxref"):
		_, rest, _ := readUint(skipSpace(s[len("startxref"):]))
		return rest, nil
	}

	obj, rest, err := d.parser.ParseIndirectObject(s)
	if err != nil {
		return d.recover(s, err)
	}
	return rest, d.store(obj)
}

// store registers a parsed indirect object, expanding object streams and
// absorbing cross-reference streams.
func (d *DocumentParser) store(obj IndirectObject) error {
	stream, ok := obj.Object.(*Stream)
	if !ok {
		d.ctx.Assign(obj.Ref, obj.Object)
		return nil
	}

	switch t, _ := stream.Dict.GetName("Type"); t {
	case "ObjStm":
		d.ctx.reserve(obj.Ref.Number)
		if _, err := NewObjectStreamParser(stream, d.ctx, d.yielder).ParseIntoContext(); err != nil {
			if d.parser.ThrowOnInvalidObject {
				return fmt.Errorf("object stream %s: %w", obj.Ref, err)
			}
			logging.Logger().Debug("keeping object stream that failed to expand",
				slog.String("ref", obj.Ref.String()),
				slog.String("error", err.Error()))
			d.ctx.Assign(obj.Ref, stream)
		}
	case "XRef":
		d.ctx.Trailer.update(stream.Dict)
		d.ctx.reserve(obj.Ref.Number)
		entries, err := ReadXRefStream(stream)
		if err != nil {
			logging.Logger().Debug("unreadable cross-reference stream", slog.String("error", err.Error()))
			break
		}
		logging.Logger().Debug("cross-reference stream",
			slog.String("ref", obj.Ref.String()),
			slog.Int("entries", len(entries)))
	default:
		d.ctx.Assign(obj.Ref, stream)
	}
	return nil
}

// recover skips the current line after a parse failure, unless invalid
// input is fatal.
func (d *DocumentParser) recover(s []byte, err error) ([]byte, error) {
	if d.parser.ThrowOnInvalidObject {
		return nil, err
	}
	logging.Logger().Debug("skipping junk",
		slog.Int("offset", d.offset(s)),
		slog.String("error", err.Error()))
	return skipLine(s), nil
}

// recoverRoot looks for a catalog when no trailer named one.
func (d *DocumentParser) recoverRoot() {
	for _, o := range d.ctx.EnumerateIndirectObjects() {
		dict, ok := o.Object.(*Dict)
		if !ok {
			continue
		}
		if t, _ := dict.GetName("Type"); t == "Catalog" {
			logging.Logger().Debug("trailer has no Root, using catalog", slog.String("ref", o.Ref.String()))
			d.ctx.Trailer.Root = o.Ref
			return
		}
	}
}

func (d *DocumentParser) offset(s []byte) int {
	return len(d.data) - len(s)
}
