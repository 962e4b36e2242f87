package writer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/tsawler/pdfgraph/core"
)

// layoutCompressed plans a file of direct objects, one object stream holding
// every packable object, and a cross-reference stream, in that order.
//
// The two synthetic objects take the next two numbers above the Context's
// largest; the Context itself is not changed.
func layoutCompressed(ctx *core.Context, o options) (*layout, error) {
	y := o.yielder()
	largest := ctx.LargestObjectNumber()
	objStmRef := core.Ref(largest + 1)
	xrefRef := core.Ref(largest + 2)

	l := &layout{header: fileHeader(ctx)}
	entries := map[uint32]core.XRefStreamEntry{
		0: {Type: core.XRefFree, Field3: uint64(core.FreeListHead.Generation)},
	}

	var packed []core.IndirectObject
	pos := len(l.header)
	for _, obj := range ctx.EnumerateIndirectObjects() {
		y.Tick()
		if packable(obj) {
			entries[obj.Ref.Number] = core.XRefStreamEntry{
				Type:   core.XRefCompressed,
				Field2: uint64(objStmRef.Number),
				Field3: uint64(len(packed)),
			}
			packed = append(packed, obj)
			continue
		}
		entries[obj.Ref.Number] = uncompressedEntry(pos, obj.Ref)
		l.objects = append(l.objects, obj)
		pos += obj.SizeInBytes()
	}

	objStm, err := core.NewObjectStream(packed, o.compress)
	if err != nil {
		return nil, fmt.Errorf("build object stream: %w", err)
	}
	objStmObj := core.IndirectObject{Ref: objStmRef, Object: objStm}
	entries[objStmRef.Number] = uncompressedEntry(pos, objStmRef)
	pos += objStmObj.SizeInBytes()

	l.startXRef = pos
	entries[xrefRef.Number] = uncompressedEntry(pos, xrefRef)

	xrefStream, err := buildXRefStream(ctx, entries, xrefRef, o.compress)
	if err != nil {
		return nil, err
	}
	xrefObj := core.IndirectObject{Ref: xrefRef, Object: xrefStream}
	pos += xrefObj.SizeInBytes()

	l.objects = append(l.objects, objStmObj, xrefObj)
	l.tail = startXRefFooter(l.startXRef)
	l.size = pos + len(l.tail)
	return l, nil
}

// packable reports whether obj may live in an object stream. Streams cannot,
// members are implicitly generation 0, and unparsed bodies stay where a
// reader can skip them.
func packable(obj core.IndirectObject) bool {
	if obj.Ref.Generation != 0 {
		return false
	}
	switch obj.Object.(type) {
	case *core.Stream, core.InvalidObject:
		return false
	}
	return true
}

func uncompressedEntry(offset int, ref core.IndirectRef) core.XRefStreamEntry {
	return core.XRefStreamEntry{
		Type:   core.XRefUncompressed,
		Field2: uint64(offset),
		Field3: uint64(ref.Generation),
	}
}

// buildXRefStream encodes entries, ascending by object number, with the
// trailer entries carried in the stream dictionary.
func buildXRefStream(ctx *core.Context, entries map[uint32]core.XRefStreamEntry, ref core.IndirectRef, compress bool) (*core.Stream, error) {
	numbers := slices.Sorted(maps.Keys(entries))
	rows := make([]core.XRefStreamEntry, len(numbers))
	for i, n := range numbers {
		rows[i] = entries[n]
	}
	w := core.FieldWidths(rows)

	dict := core.NewDict(
		core.DictEntry{Key: "Type", Value: core.Name("XRef")},
		core.DictEntry{Key: "Size", Value: core.Number(ref.Number + 1)},
		core.DictEntry{Key: "Index", Value: core.IndexArray(core.BuildSubsections(numbers))},
		core.DictEntry{Key: "W", Value: core.Array{core.Number(w[0]), core.Number(w[1]), core.Number(w[2])}},
	)
	for _, e := range ctx.Trailer.Entries() {
		dict.Set(e.Key, e.Value)
	}

	data := core.EncodeXRefStream(rows, w)
	if !compress {
		return core.NewStream(dict, data), nil
	}
	s, err := core.NewFlateStream(dict, data)
	if err != nil {
		return nil, fmt.Errorf("build cross-reference stream: %w", err)
	}
	return s, nil
}
