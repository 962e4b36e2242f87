package pdfgraph_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfgraph"
	"github.com/tsawler/pdfgraph/core"
)

func TestNewDocument(t *testing.T) {
	doc := pdfgraph.New()
	catalog, err := doc.Catalog()
	require.NoError(t, err)

	pages, err := core.LookupAs[*core.Dict](doc.Context(), catalog.Get("Pages"))
	require.NoError(t, err)
	count, _ := pages.GetNumber("Count")
	assert.Equal(t, core.Number(0), count)
	assert.Equal(t, 2, doc.Context().Len())
}

func TestSaveAndLoad(t *testing.T) {
	for name, opts := range map[string][]pdfgraph.SaveOption{
		"classic":      nil,
		"compressed":   {pdfgraph.Compressed()},
		"uncompressed": {pdfgraph.Compressed(), pdfgraph.Uncompressed()},
	} {
		t.Run(name, func(t *testing.T) {
			data, err := pdfgraph.New().Save(opts...)
			require.NoError(t, err)

			doc, err := pdfgraph.Load(data, pdfgraph.Strict())
			require.NoError(t, err)
			defer doc.Close()

			catalog, err := doc.Catalog()
			require.NoError(t, err)
			typ, _ := catalog.GetName("Type")
			assert.Equal(t, core.Name("Catalog"), typ)
		})
	}
}

// addPage appends a page with its own content stream and font to doc.
func addPage(t *testing.T, doc *pdfgraph.Document, text string) core.IndirectRef {
	t.Helper()
	ctx := doc.Context()
	catalog, err := doc.Catalog()
	require.NoError(t, err)
	pagesRef := catalog.Get("Pages")
	pages, err := core.LookupAs[*core.Dict](ctx, pagesRef)
	require.NoError(t, err)

	font := ctx.Register(ctx.MustObj([]core.KV{
		{Key: "Type", Value: "Font"},
		{Key: "Subtype", Value: "Type1"},
		{Key: "BaseFont", Value: "Helvetica"},
	}))
	content := ctx.Register(core.NewStream(nil, []byte("BT /F1 12 Tf ("+text+") Tj ET")))
	page := ctx.Register(ctx.MustObj([]core.KV{
		{Key: "Type", Value: "Page"},
		{Key: "Parent", Value: pagesRef},
		{Key: "Contents", Value: content},
		{Key: "Resources", Value: []core.KV{{Key: "Font", Value: []core.KV{{Key: "F1", Value: font}}}}},
	}))

	kids, _ := pages.GetArray("Kids")
	pages.Set("Kids", append(kids, page))
	count, _ := pages.GetNumber("Count")
	pages.Set("Count", count+1)
	return page
}

func TestCopyFromMergesPages(t *testing.T) {
	src := pdfgraph.New()
	srcPage := addPage(t, src, "from source")
	srcLen := src.Context().Len()

	dst := pdfgraph.New()
	addPage(t, dst, "already here")
	dstLen := dst.Context().Len()

	// The Parent link reaches the source page tree and, through it, the
	// page itself, so the copy brings the source tree along.
	copied, err := dst.CopyFrom(src, srcPage)
	require.NoError(t, err)
	assert.Equal(t, srcLen, src.Context().Len(), "source must not change")
	assert.Equal(t, dstLen+4, dst.Context().Len())

	page, err := core.LookupAs[*core.Dict](dst.Context(), copied)
	require.NoError(t, err)
	contents, err := core.LookupAs[*core.Stream](dst.Context(), page.Get("Contents"))
	require.NoError(t, err)
	assert.Equal(t, "BT /F1 12 Tf (from source) Tj ET", string(contents.Data))

	data, err := dst.Save(pdfgraph.Compressed())
	require.NoError(t, err)
	reloaded, err := pdfgraph.Load(data)
	require.NoError(t, err)
	assert.Equal(t, dst.Context().Len(), reloaded.Context().Len())
}

func TestSaveFileAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	doc := pdfgraph.New()
	addPage(t, doc, "hello")
	require.NoError(t, doc.SaveFile(path))

	opened, err := pdfgraph.Open(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Context().Len(), opened.Context().Len())
	require.NoError(t, opened.Close())

	_, err = pdfgraph.Open(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestSaveWithoutRoot(t *testing.T) {
	doc := pdfgraph.New()
	doc.Context().Trailer.Root = nil

	_, err := doc.Save()
	var missing *core.MissingKeyError
	assert.ErrorAs(t, err, &missing)

	_, err = doc.Catalog()
	assert.ErrorAs(t, err, &missing)
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() {
		pdfgraph.Must(pdfgraph.New().Save())
	})
	assert.Panics(t, func() {
		pdfgraph.Must(pdfgraph.Load([]byte("1 0 obj\n<</A )>>\nendobj\n"), pdfgraph.Strict()))
	})
}
