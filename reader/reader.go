package reader

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/tsawler/pdfgraph/core"
)

// Reader holds a parsed PDF document.
type Reader struct {
	ctx      *core.Context
	xrefs    []*core.XRefTable
	fileSize int64

	file *os.File
	mmap mmap.MMap
}

// Load parses a document held in memory.
func Load(data []byte, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx := core.NewContext()
	dp := core.NewDocumentParser(data, ctx, o.hooks, core.NewYielder(o.objectsPerTick))
	dp.SetThrowOnInvalidObject(o.throwOnInvalidObject)
	if err := dp.ParseDocument(); err != nil {
		return nil, errors.Wrap(err, "failed to parse document")
	}

	return &Reader{
		ctx:      ctx,
		xrefs:    dp.XRefTables(),
		fileSize: int64(len(data)),
	}, nil
}

// Open memory-maps filename and parses it.
func Open(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "failed to obtain file information")
	}
	if info.Size() == 0 {
		file.Close()
		return nil, errors.Errorf("%s is empty", filename)
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "failed to map file")
	}

	r, err := Load(m, opts...)
	if err != nil {
		m.Unmap()
		file.Close()
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	r.file = file
	r.mmap = m
	return r, nil
}

// Close releases the mapping and the file opened by Open. It is a no-op for
// a Reader created by Load.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	if err := r.mmap.Unmap(); err != nil {
		return errors.Wrap(err, "failed to unmap file")
	}
	err := r.file.Close()
	r.file, r.mmap = nil, nil
	return errors.Wrap(err, "failed to close file")
}

// Context returns the parsed object graph.
func (r *Reader) Context() *core.Context {
	return r.ctx
}

// Version returns the header version.
func (r *Reader) Version() core.Header {
	return r.ctx.Header
}

// FileSize returns the size of the parsed input in bytes.
func (r *Reader) FileSize() int64 {
	return r.fileSize
}

// NumObjects returns the number of indirect objects loaded.
func (r *Reader) NumObjects() int {
	return r.ctx.Len()
}

// XRefTable returns the classic cross-reference sections merged in file
// order, or nil when the file has none. Exposed for inspection.
func (r *Reader) XRefTable() *core.XRefTable {
	if len(r.xrefs) == 0 {
		return nil
	}
	return core.MergeXRefTables(r.xrefs...)
}

// Catalog returns the document catalog named by the trailer's Root.
func (r *Reader) Catalog() (*core.Dict, error) {
	if r.ctx.Trailer.Root == nil {
		return nil, &core.MissingKeyError{Key: "Root", In: "trailer"}
	}
	catalog, err := core.LookupAs[*core.Dict](r.ctx, r.ctx.Trailer.Root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve catalog")
	}
	return catalog, nil
}

// Info returns the document info dictionary, or nil when there is none.
func (r *Reader) Info() (*core.Dict, error) {
	if r.ctx.Trailer.Info == nil {
		return nil, nil // Info is optional
	}
	info, err := core.LookupAs[*core.Dict](r.ctx, r.ctx.Trailer.Info)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve info")
	}
	return info, nil
}

// PageCount returns the Count of the page tree root.
func (r *Reader) PageCount() (int, error) {
	catalog, err := r.Catalog()
	if err != nil {
		return 0, err
	}
	pagesRef := catalog.Get("Pages")
	if pagesRef == nil {
		return 0, &core.MissingKeyError{Key: "Pages", In: "catalog"}
	}
	pages, err := core.LookupAs[*core.Dict](r.ctx, pagesRef)
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve pages")
	}
	count, ok := pages.GetNumber("Count")
	if !ok {
		return 0, &core.MissingKeyError{Key: "Count", In: "page tree"}
	}
	return int(count), nil
}
