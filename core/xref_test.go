package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSubsections(t *testing.T) {
	tests := []struct {
		name string
		in   []uint32
		want []XRefSubsection
	}{
		{"empty", nil, nil},
		{"single", []uint32{0}, []XRefSubsection{{0, 1}}},
		{"contiguous", []uint32{0, 1, 2, 3}, []XRefSubsection{{0, 4}}},
		{"gaps", []uint32{0, 1, 2, 5, 6, 9}, []XRefSubsection{{0, 3}, {5, 2}, {9, 1}}},
		{"unsorted with duplicates", []uint32{9, 2, 0, 1, 2, 70}, []XRefSubsection{{0, 3}, {9, 1}, {70, 1}}},
		{"word boundary", []uint32{62, 63, 64, 65}, []XRefSubsection{{62, 4}}},
		{"sparse", []uint32{4294967295, 0, 1, 4294967294, 1}, []XRefSubsection{{0, 2}, {4294967294, 2}}},
		{"at object limit", []uint32{0, MaxObjectNumber + 1, MaxObjectNumber + 2}, []XRefSubsection{{0, 1}, {MaxObjectNumber + 1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSubsections(tt.in))
		})
	}
}

func TestFormatClassicEntry(t *testing.T) {
	free := FormatClassicEntry(FreeListHead)
	assert.Equal(t, "0000000000 65535 f \n", free)
	assert.Len(t, free, ClassicEntrySize)

	used := FormatClassicEntry(XRefEntry{Offset: 15, Generation: 2, InUse: true})
	assert.Equal(t, "0000000015 00002 n \n", used)
	assert.Len(t, used, ClassicEntrySize)
}

func TestParseXRefSection(t *testing.T) {
	in := "xref\n" +
		"0 3\n" +
		"0000000000 65535 f \n" +
		"0000000015 00000 n \n" +
		"0000000074 00000 n\r\n" +
		"7 1\n" +
		"0000000120 00001 n \n" +
		"trailer\n<</Size 8 /Root 1 0 R>>\nstartxref\n200\n%%EOF"

	p := NewParser(nil, nil)
	table, rest, err := p.ParseXRefSection([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, 4, table.Size())

	e, ok := table.Get(0)
	require.True(t, ok)
	assert.Equal(t, FreeListHead, e)

	e, _ = table.Get(2)
	assert.Equal(t, XRefEntry{Offset: 74, Generation: 0, InUse: true}, e)
	e, _ = table.Get(7)
	assert.Equal(t, XRefEntry{Offset: 120, Generation: 1, InUse: true}, e)

	root, _ := table.Trailer.GetIndirectRef("Root")
	assert.Equal(t, Ref(1), root)
	assert.Equal(t, "\nstartxref\n200\n%%EOF", string(rest))

	off, err := FindStartXRef([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, int64(200), off)
}

func TestParseXRefSectionErrors(t *testing.T) {
	p := NewParser(nil, nil)
	_, _, err := p.ParseXRefSection([]byte("1 0 obj"))
	assert.ErrorIs(t, err, ErrNoMatch)

	_, _, err = p.ParseXRefSection([]byte("xref\n0 2\n0000000000 65535 f \n0000000015 00000 x \n"))
	assert.Error(t, err)

	_, _, err = p.ParseXRefSection([]byte("xref\n0 1\n0000000000 65535 f \ntrailer\n[1]"))
	assert.Error(t, err)

	_, err = FindStartXRef([]byte("%PDF-1.4"))
	assert.Error(t, err)
}

func TestMergeXRefTables(t *testing.T) {
	a := NewXRefTable()
	a.Set(1, XRefEntry{Offset: 10, InUse: true})
	a.Set(2, XRefEntry{Offset: 20, InUse: true})
	b := NewXRefTable()
	b.Set(2, XRefEntry{Offset: 200, InUse: true})
	b.Trailer.Set("Root", Ref(1))

	m := MergeXRefTables(a, b)
	assert.Equal(t, 2, m.Size())
	e, _ := m.Get(2)
	assert.Equal(t, int64(200), e.Offset)
	assert.True(t, m.Trailer.Has("Root"))
}

func TestXRefStreamEncoding(t *testing.T) {
	entries := []XRefStreamEntry{
		{Type: XRefFree, Field2: 0, Field3: 65535},
		{Type: XRefUncompressed, Field2: 15, Field3: 0},
		{Type: XRefUncompressed, Field2: 70000, Field3: 0},
		{Type: XRefCompressed, Field2: 9, Field3: 2},
	}
	w := FieldWidths(entries)
	assert.Equal(t, [3]int{1, 3, 2}, w)

	data := EncodeXRefStream(entries, w)
	assert.Len(t, data, 4*6)
	assert.Equal(t, []byte{0, 0, 0, 0, 0xff, 0xff}, data[:6])
	assert.Equal(t, []byte{1, 0x01, 0x11, 0x70, 0, 0}, data[12:18])

	got, err := DecodeXRefStream(data, w)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	_, err = DecodeXRefStream(data[:5], w)
	assert.Error(t, err)
	_, err = DecodeXRefStream(data, [3]int{})
	assert.Error(t, err)

	typeless, err := DecodeXRefStream([]byte{0, 15, 0}, [3]int{0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, []XRefStreamEntry{{Type: XRefUncompressed, Field2: 15}}, typeless)
}

func TestFieldWidthsMinimum(t *testing.T) {
	assert.Equal(t, [3]int{1, 1, 1}, FieldWidths(nil))
	assert.Equal(t, [3]int{1, 1, 1}, FieldWidths([]XRefStreamEntry{{Type: 1, Field2: 255}}))
	assert.Equal(t, [3]int{1, 2, 1}, FieldWidths([]XRefStreamEntry{{Type: 1, Field2: 256}}))
}

func TestReadXRefStream(t *testing.T) {
	entries := []XRefStreamEntry{
		{Type: XRefFree, Field3: 65535},
		{Type: XRefUncompressed, Field2: 15},
		{Type: XRefCompressed, Field2: 1, Field3: 0},
	}
	w := FieldWidths(entries)
	dict := NewDict(
		DictEntry{Key: "Type", Value: Name("XRef")},
		DictEntry{Key: "Size", Value: Number(6)},
		DictEntry{Key: "W", Value: Array{Number(w[0]), Number(w[1]), Number(w[2])}},
		DictEntry{Key: "Index", Value: IndexArray([]XRefSubsection{{0, 2}, {5, 1}})},
	)
	s, err := NewFlateStream(dict, EncodeXRefStream(entries, w))
	require.NoError(t, err)

	got, err := ReadXRefStream(s)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, entries[1], got[1])
	assert.Equal(t, entries[2], got[5])

	dict.Delete("Index")
	got, err = ReadXRefStream(s)
	require.NoError(t, err)
	assert.Equal(t, entries[2], got[2])

	dict.Delete("W")
	_, err = ReadXRefStream(s)
	var missing *MissingKeyError
	assert.ErrorAs(t, err, &missing)

	_, err = ReadXRefStream(NewStream(nil, nil))
	assert.Error(t, err)
}
