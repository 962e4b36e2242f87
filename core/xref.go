package core

import (
	"bytes"
	"fmt"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"
	tdstrconv "github.com/tdewolff/parse/v2/strconv"
)

// XRefEntry represents a single cross-reference table entry
type XRefEntry struct {
	Offset     int64  // Byte offset (in use) or next free object number (free)
	Generation uint16 // Generation number
	InUse      bool   // true if object is in use, false if free
}

// FreeListHead is the entry for object 0, which heads the free list.
var FreeListHead = XRefEntry{Offset: 0, Generation: math.MaxUint16, InUse: false}

// XRefTable represents a PDF cross-reference table
type XRefTable struct {
	Entries map[uint32]XRefEntry
	Trailer *Dict
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[uint32]XRefEntry),
		Trailer: NewDict(),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(num uint32) (XRefEntry, bool) {
	e, ok := x.Entries[num]
	return e, ok
}

// Set adds or updates an XRef entry
func (x *XRefTable) Set(num uint32, e XRefEntry) {
	x.Entries[num] = e
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// MergeXRefTables merges tables from incremental updates, oldest first.
// Later entries override earlier ones and the last trailer wins.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, t := range tables {
		for num, e := range t.Entries {
			merged.Set(num, e)
		}
		merged.Trailer = t.Trailer
	}
	return merged
}

// XRefSubsection is a run of consecutive object numbers.
type XRefSubsection struct {
	First uint32
	Count int
}

// BuildSubsections groups object numbers into runs of consecutive numbers,
// ascending. Duplicates collapse.
func BuildSubsections(numbers []uint32) []XRefSubsection {
	if len(numbers) == 0 {
		return nil
	}
	if slices.Max(numbers)/64 > uint32(len(numbers)) {
		return sortedRuns(numbers)
	}
	set := bitset.New(0)
	for _, n := range numbers {
		set.Set(uint(n))
	}

	var out []XRefSubsection
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i) {
		end, more := set.NextClear(i)
		if !more {
			end = set.Len()
		}
		out = append(out, XRefSubsection{First: uint32(i), Count: int(end - i)})
		if !more {
			break
		}
		i = end
	}
	return out
}

// sortedRuns is BuildSubsections for sparse numbers, where a bitset would
// be mostly empty words.
func sortedRuns(numbers []uint32) []XRefSubsection {
	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := []XRefSubsection{{First: sorted[0], Count: 1}}
	for _, n := range sorted[1:] {
		last := &out[len(out)-1]
		if n == last.First+uint32(last.Count) {
			last.Count++
			continue
		}
		out = append(out, XRefSubsection{First: n, Count: 1})
	}
	return out
}

// ClassicEntrySize is the fixed length of one classic cross-reference entry.
const ClassicEntrySize = 20

// FormatClassicEntry renders e as "oooooooooo ggggg n \n".
func FormatClassicEntry(e XRefEntry) string {
	flag := byte('f')
	if e.InUse {
		flag = 'n'
	}
	return fmt.Sprintf("%010d %05d %c \n", e.Offset, e.Generation, flag)
}

// FindStartXRef returns the offset recorded after the last startxref
// keyword in data.
func FindStartXRef(data []byte) (int64, error) {
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	s := skipSpace(data[idx+len("startxref"):])
	v, n := tdstrconv.ParseUint(s)
	if n == 0 {
		return 0, newSyntaxError("invalid startxref offset", s)
	}
	return int64(v), nil
}

// ParseXRefSection parses a classic "xref" section and the trailer
// dictionary after it, returning the rest of the input.
func (p *Parser) ParseXRefSection(b []byte) (*XRefTable, []byte, error) {
	s := skipSpace(b)
	if !hasKeyword(s, "xref") {
		return nil, b, ErrNoMatch
	}
	s = s[len("xref"):]
	table := NewXRefTable()

	for {
		s = skipSpace(s)
		if hasKeyword(s, "trailer") {
			obj, rest, err := p.ParseDictOrStream(s[len("trailer"):])
			if err != nil {
				return nil, b, fmt.Errorf("trailer: %w", err)
			}
			d, ok := obj.(*Dict)
			if !ok {
				return nil, b, fmt.Errorf("trailer is a %s, not a dictionary", obj.Type())
			}
			table.Trailer = d
			return table, rest, nil
		}
		if len(s) == 0 || !isDigit(s[0]) {
			// A section without a trailer (hybrid files).
			return table, s, nil
		}

		first, rest, ok := readUint(s)
		if !ok {
			return nil, b, newSyntaxError("invalid subsection start", s)
		}
		count, rest, ok := readUint(skipWhitespace(rest))
		if !ok {
			return nil, b, newSyntaxError("invalid subsection count", s)
		}
		s = rest
		for i := uint64(0); i < count; i++ {
			e, rest, err := parseClassicEntry(skipWhitespace(s))
			if err != nil {
				return nil, b, fmt.Errorf("entry %d of subsection %d: %w", i, first, err)
			}
			table.Set(uint32(first+i), e)
			s = rest
		}
	}
}

// parseClassicEntry reads "offset generation n|f". Field widths are not
// enforced.
func parseClassicEntry(s []byte) (XRefEntry, []byte, error) {
	offset, rest, ok := readUint(s)
	if !ok {
		return XRefEntry{}, s, newSyntaxError("invalid entry offset", s)
	}
	gen, rest, ok := readUint(skipWhitespace(rest))
	if !ok || gen > math.MaxUint16 {
		return XRefEntry{}, s, newSyntaxError("invalid entry generation", s)
	}
	rest = skipWhitespace(rest)
	if len(rest) == 0 || (rest[0] != 'n' && rest[0] != 'f') {
		return XRefEntry{}, s, newSyntaxError("invalid entry flag", rest)
	}
	e := XRefEntry{Offset: int64(offset), Generation: uint16(gen), InUse: rest[0] == 'n'}
	return e, rest[1:], nil
}

func readUint(s []byte) (uint64, []byte, bool) {
	v, n := tdstrconv.ParseUint(s)
	if n == 0 {
		return 0, s, false
	}
	return v, s[n:], true
}

// XRefStreamEntry types.
const (
	XRefFree         = 0
	XRefUncompressed = 1
	XRefCompressed   = 2
)

// XRefStreamEntry is one row of a cross-reference stream:
//
//	Type 0 (free):          Field2 next free object, Field3 generation
//	Type 1 (uncompressed):  Field2 byte offset,      Field3 generation
//	Type 2 (compressed):    Field2 container number, Field3 index
type XRefStreamEntry struct {
	Type   uint8
	Field2 uint64
	Field3 uint64
}

// FieldWidths returns the /W array for entries: one byte for the type, and
// the minimum bytes that hold the largest value of each other field.
func FieldWidths(entries []XRefStreamEntry) [3]int {
	var max2, max3 uint64
	for _, e := range entries {
		max2 = max(max2, e.Field2)
		max3 = max(max3, e.Field3)
	}
	return [3]int{1, bytesNeeded(max2), bytesNeeded(max3)}
}

func bytesNeeded(v uint64) int {
	n := 1
	for v > 0xff {
		v >>= 8
		n++
	}
	return n
}

// EncodeXRefStream packs entries as big-endian fields of the given widths.
func EncodeXRefStream(entries []XRefStreamEntry, w [3]int) []byte {
	row := w[0] + w[1] + w[2]
	out := make([]byte, 0, row*len(entries))
	for _, e := range entries {
		out = putField(out, uint64(e.Type), w[0])
		out = putField(out, e.Field2, w[1])
		out = putField(out, e.Field3, w[2])
	}
	return out
}

func putField(out []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		out = append(out, byte(v>>(8*i)))
	}
	return out
}

// DecodeXRefStream unpacks rows of the given widths. A zero-width type field
// defaults to type 1.
func DecodeXRefStream(data []byte, w [3]int) ([]XRefStreamEntry, error) {
	row := w[0] + w[1] + w[2]
	if row == 0 || w[0] < 0 || w[1] < 0 || w[2] < 0 {
		return nil, fmt.Errorf("invalid /W %v", w)
	}
	if len(data)%row != 0 {
		return nil, fmt.Errorf("xref stream length %d is not a multiple of row size %d", len(data), row)
	}
	entries := make([]XRefStreamEntry, 0, len(data)/row)
	for off := 0; off < len(data); off += row {
		f1 := getField(data[off:], w[0])
		if w[0] == 0 {
			f1 = XRefUncompressed
		}
		entries = append(entries, XRefStreamEntry{
			Type:   uint8(f1),
			Field2: getField(data[off+w[0]:], w[1]),
			Field3: getField(data[off+w[0]+w[1]:], w[2]),
		})
	}
	return entries, nil
}

func getField(b []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// IndexArray renders subsections as an /Index array of (first, count) pairs.
func IndexArray(subs []XRefSubsection) Array {
	arr := make(Array, 0, 2*len(subs))
	for _, s := range subs {
		arr = append(arr, Number(s.First), Number(s.Count))
	}
	return arr
}

// ReadXRefStream decodes a cross-reference stream into a map from object
// number to entry, honoring /W, /Index and /Size.
func ReadXRefStream(s *Stream) (map[uint32]XRefStreamEntry, error) {
	if t, _ := s.Dict.GetName("Type"); t != "XRef" {
		return nil, fmt.Errorf("stream is not a cross-reference stream")
	}
	wArr, ok := s.Dict.GetArray("W")
	if !ok || len(wArr) != 3 {
		return nil, &MissingKeyError{Key: "W", In: "cross-reference stream"}
	}
	var w [3]int
	for i := range w {
		n, ok := wArr.GetNumber(i)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("invalid /W entry %v", wArr.Get(i))
		}
		w[i] = int(n)
	}

	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode cross-reference stream: %w", err)
	}
	entries, err := DecodeXRefStream(data, w)
	if err != nil {
		return nil, err
	}

	var subs []XRefSubsection
	if idx, ok := s.Dict.GetArray("Index"); ok {
		for i := 0; i+1 < len(idx); i += 2 {
			first, _ := idx.GetNumber(i)
			count, _ := idx.GetNumber(i + 1)
			subs = append(subs, XRefSubsection{First: uint32(first), Count: int(count)})
		}
	} else {
		size, _ := s.Dict.GetNumber("Size")
		subs = []XRefSubsection{{First: 0, Count: int(size)}}
	}

	out := make(map[uint32]XRefStreamEntry, len(entries))
	k := 0
	for _, sub := range subs {
		for i := 0; i < sub.Count && k < len(entries); i++ {
			out[sub.First+uint32(i)] = entries[k]
			k++
		}
	}
	return out, nil
}
