package writer

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/logging"
)

// sampleContext builds a small document with a gap in its numbering, a
// stream and a shared font.
func sampleContext(t *testing.T) *core.Context {
	t.Helper()
	ctx := core.NewContext()

	pagesRef := ctx.NextRef()
	content := ctx.Register(core.NewStream(nil, []byte("BT /F1 24 Tf 72 720 Td (Hello) Tj ET")))
	font := ctx.Register(ctx.MustObj([]core.KV{
		{Key: "Type", Value: "Font"},
		{Key: "Subtype", Value: "Type1"},
		{Key: "BaseFont", Value: "Helvetica"},
	}))
	page := ctx.Register(ctx.MustObj([]core.KV{
		{Key: "Type", Value: "Page"},
		{Key: "Parent", Value: pagesRef},
		{Key: "MediaBox", Value: []int{0, 0, 612, 792}},
		{Key: "Contents", Value: content},
		{Key: "Resources", Value: []core.KV{{Key: "Font", Value: []core.KV{{Key: "F1", Value: font}}}}},
	}))
	ctx.Assign(pagesRef, ctx.MustObj([]core.KV{
		{Key: "Type", Value: "Pages"},
		{Key: "Kids", Value: []core.Object{page}},
		{Key: "Count", Value: 1},
	}))

	catalog := core.Ref(9)
	ctx.Assign(catalog, ctx.MustObj([]core.KV{
		{Key: "Type", Value: "Catalog"},
		{Key: "Pages", Value: pagesRef},
	}))
	ctx.Assign(core.Ref(10), core.String("Info (with parens)"))
	ctx.Trailer.Root = catalog
	ctx.Trailer.Info = core.Ref(10)
	return ctx
}

func reparse(t *testing.T, data []byte) *core.Context {
	t.Helper()
	ctx := core.NewContext()
	require.NoError(t, core.NewDocumentParser(data, ctx, nil, nil).ParseDocument())
	return ctx
}

// assertSameObjects compares the rendered objects of two contexts.
func assertSameObjects(t *testing.T, want, got *core.Context) {
	t.Helper()
	wantObjs := want.EnumerateIndirectObjects()
	gotObjs := got.EnumerateIndirectObjects()
	require.Len(t, gotObjs, len(wantObjs))
	for i := range wantObjs {
		assert.Equal(t, wantObjs[i].Ref, gotObjs[i].Ref)
		assert.Equal(t, wantObjs[i].Object.String(), gotObjs[i].Object.String(), "object %s", wantObjs[i].Ref)
	}
}

func TestSerializeClassicGolden(t *testing.T) {
	ctx := core.NewContext()
	ctx.Trailer.Root = ctx.Register(core.NewDict(core.DictEntry{Key: "Type", Value: core.Name("Catalog")}))

	data, err := Serialize(ctx)
	require.NoError(t, err)

	want := "%PDF-1.7\n%\x81\x81\x81\x81\n\n" +
		"1 0 obj\n<</Type /Catalog>>\nendobj\n\n" +
		"xref\n" +
		"0 2\n" +
		"0000000000 65535 f \n" +
		"0000000016 00000 n \n" +
		"trailer\n<</Size 2 /Root 1 0 R>>\n\n" +
		"startxref\n51\n%%EOF"
	assert.Equal(t, want, string(data))
}

func TestSerializeClassicOffsets(t *testing.T) {
	ctx := sampleContext(t)
	data, err := Serialize(ctx)
	require.NoError(t, err)

	start, err := core.FindStartXRef(data)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data[start:], []byte("xref\n")))

	table, _, err := core.NewParser(nil, nil).ParseXRefSection(data[start:])
	require.NoError(t, err)
	assert.Equal(t, ctx.Len()+1, table.Size())

	size, _ := table.Trailer.GetNumber("Size")
	assert.Equal(t, core.Number(11), size)
	root, _ := table.Trailer.GetIndirectRef("Root")
	assert.Equal(t, core.Ref(9), root)

	for _, o := range ctx.EnumerateIndirectObjects() {
		e, ok := table.Get(o.Ref.Number)
		require.True(t, ok, "no entry for %s", o.Ref)
		assert.True(t, e.InUse)
		prefix := fmt.Sprintf("%d %d obj\n", o.Ref.Number, o.Ref.Generation)
		assert.True(t, bytes.HasPrefix(data[e.Offset:], []byte(prefix)), "offset of %s", o.Ref)
	}

	assert.Contains(t, string(data), "xref\n0 5\n")
	assert.Contains(t, string(data), "\n9 2\n")
}

func TestSerializeClassicRoundTrip(t *testing.T) {
	ctx := sampleContext(t)
	first, err := Serialize(ctx)
	require.NoError(t, err)

	loaded := reparse(t, first)
	assertSameObjects(t, ctx, loaded)
	assert.Equal(t, ctx.Trailer.Root, loaded.Trailer.Root)
	assert.Equal(t, ctx.Trailer.Info, loaded.Trailer.Info)

	second, err := Serialize(loaded)
	require.NoError(t, err)
	assert.Equal(t, first, second, "serialization should be idempotent")
}

func TestSerializeKeepsEscapedStrings(t *testing.T) {
	bodies := []string{
		`<</Type /Catalog /T (a\nb) /U (\053\(x)>>`,
		`[(x\r) (tab\t) (\\) (wrap\` + "\n" + `ped)]`,
	}
	var sb bytes.Buffer
	sb.WriteString("%PDF-1.7\n")
	for i, body := range bodies {
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	sb.WriteString("trailer\n<</Root 1 0 R>>\n%%EOF\n")

	for _, s := range []Strategy{Classic, Compressed} {
		t.Run(s.String(), func(t *testing.T) {
			data, err := Serialize(reparse(t, sb.Bytes()), WithStrategy(s), WithCompression(false))
			require.NoError(t, err)
			for _, body := range bodies {
				assert.Contains(t, string(data), body)
			}
		})
	}
}

func TestSerializeNonFiniteNumber(t *testing.T) {
	ctx := core.NewContext()
	ctx.Trailer.Root = ctx.Register(core.NewDict(
		core.DictEntry{Key: "Type", Value: core.Name("Catalog")},
		core.DictEntry{Key: "V", Value: core.Number(math.NaN())},
	))

	data, err := Serialize(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<</Type /Catalog /V 0>>")
	assert.NotContains(t, string(data), "NaN")
}

func TestSerializeDeterministic(t *testing.T) {
	for _, s := range []Strategy{Classic, Compressed} {
		t.Run(s.String(), func(t *testing.T) {
			ctx := sampleContext(t)
			a, err := Serialize(ctx, WithStrategy(s))
			require.NoError(t, err)
			b, err := Serialize(ctx, WithStrategy(s))
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestSerializeCompressed(t *testing.T) {
	ctx := sampleContext(t)
	largest := ctx.LargestObjectNumber()
	data, err := Serialize(ctx, WithStrategy(Compressed))
	require.NoError(t, err)
	assert.Equal(t, largest, ctx.LargestObjectNumber(), "serialization must not allocate in the context")

	loaded := reparse(t, data)
	assertSameObjects(t, ctx, loaded)
	assert.Equal(t, core.Ref(9), loaded.Trailer.Root)
	assert.Equal(t, core.Ref(10), loaded.Trailer.Info)

	start, err := core.FindStartXRef(data)
	require.NoError(t, err)
	xrefObj, _, err := core.NewParser(nil, nil).ParseIndirectObject(data[start:])
	require.NoError(t, err)
	assert.Equal(t, core.Ref(largest+2), xrefObj.Ref)

	xref, ok := xrefObj.Object.(*core.Stream)
	require.True(t, ok)
	entries, err := core.ReadXRefStream(xref)
	require.NoError(t, err)
	assert.Len(t, entries, ctx.Len()+3)
	assert.Equal(t, core.XRefStreamEntry{Type: core.XRefFree, Field3: 65535}, entries[0])

	for _, o := range ctx.EnumerateIndirectObjects() {
		e := entries[o.Ref.Number]
		if _, isStream := o.Object.(*core.Stream); isStream {
			require.Equal(t, uint8(core.XRefUncompressed), e.Type, "stream %s", o.Ref)
			prefix := fmt.Sprintf("%d 0 obj\n", o.Ref.Number)
			assert.True(t, bytes.HasPrefix(data[e.Field2:], []byte(prefix)))
			continue
		}
		assert.Equal(t, uint8(core.XRefCompressed), e.Type, "object %s", o.Ref)
		assert.Equal(t, uint64(largest+1), e.Field2)
	}

	objStm := entries[largest+1]
	require.Equal(t, uint8(core.XRefUncompressed), objStm.Type)
	assert.True(t, bytes.HasPrefix(data[objStm.Field2:], []byte(fmt.Sprintf("%d 0 obj\n", largest+1))))
	assert.Equal(t, uint64(start), entries[largest+2].Field2)
}

func TestSerializeCompressedWithoutFlate(t *testing.T) {
	ctx := sampleContext(t)
	data, err := Serialize(ctx, WithStrategy(Compressed), WithCompression(false))
	require.NoError(t, err)
	assert.Contains(t, string(data), "/Type /ObjStm")
	assert.NotContains(t, string(data), "/FlateDecode")
	assertSameObjects(t, ctx, reparse(t, data))
}

func TestSerializeCompressedKeepsGenerations(t *testing.T) {
	ctx := core.NewContext()
	ctx.Trailer.Root = ctx.Register(core.NewDict(core.DictEntry{Key: "Type", Value: core.Name("Catalog")}))
	ctx.Assign(core.IndirectRef{Number: 2, Generation: 3}, core.Number(5))
	ctx.Assign(core.Ref(3), core.InvalidObject("<</Broken"))

	data, err := Serialize(ctx, WithStrategy(Compressed))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2 3 obj\n5\nendobj")
	assert.Contains(t, string(data), "3 0 obj\n<</Broken\nendobj")
}

func TestSerializeMissingRoot(t *testing.T) {
	ctx := core.NewContext()
	ctx.Register(core.Null{})

	for _, s := range []Strategy{Classic, Compressed} {
		_, err := Serialize(ctx, WithStrategy(s))
		var missing *core.MissingKeyError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, core.Name("Root"), missing.Key)
	}
}

func TestSerializeRejectsObjectZero(t *testing.T) {
	ctx := core.NewContext()
	ctx.Trailer.Root = ctx.Register(core.NewDict())
	ctx.Assign(core.Ref(0), core.Null{})

	_, err := Serialize(ctx)
	assert.Error(t, err)
}

func TestSerializeYields(t *testing.T) {
	ctx := sampleContext(t)
	yields := 0
	_, err := Serialize(ctx,
		WithObjectsPerTick(1),
		WithYieldFunc(nil, func() { yields++ }))
	require.NoError(t, err)
	assert.Equal(t, 2*ctx.Len(), yields)

	yields = 0
	_, err = Serialize(ctx,
		WithObjectsPerTick(1),
		WithYieldFunc(func() bool { return false }, func() { yields++ }))
	require.NoError(t, err)
	assert.Zero(t, yields)
}

func TestSerializeLogsSummary(t *testing.T) {
	h := logging.NewBufferedLogHandler(nil)
	logging.SetLogger(slog.New(h))
	defer logging.SetLogger(nil)

	_, err := Serialize(sampleContext(t), WithStrategy(Compressed))
	require.NoError(t, err)
	assert.True(t, h.Contains("serialized document"))
	assert.True(t, h.Contains("strategy=compressed"))
}
