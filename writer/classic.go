package writer

import (
	"fmt"
	"strings"

	"github.com/tsawler/pdfgraph/core"
)

// layoutClassic plans a file of top-level objects ascending by number,
// followed by an xref table and the trailer dictionary.
//
// When one number is present at several generations, every object is
// written and the table points at the highest generation.
func layoutClassic(ctx *core.Context, y *core.Yielder) *layout {
	l := &layout{
		header:  fileHeader(ctx),
		objects: ctx.EnumerateIndirectObjects(),
	}

	entries := map[uint32]core.XRefEntry{0: core.FreeListHead}
	numbers := []uint32{0}
	pos := len(l.header)
	for _, o := range l.objects {
		y.Tick()
		entries[o.Ref.Number] = core.XRefEntry{
			Offset:     int64(pos),
			Generation: o.Ref.Generation,
			InUse:      true,
		}
		numbers = append(numbers, o.Ref.Number)
		pos += o.SizeInBytes()
	}
	l.startXRef = pos

	var sb strings.Builder
	sb.WriteString("xref\n")
	for _, sub := range core.BuildSubsections(numbers) {
		fmt.Fprintf(&sb, "%d %d\n", sub.First, sub.Count)
		for i := 0; i < sub.Count; i++ {
			sb.WriteString(core.FormatClassicEntry(entries[sub.First+uint32(i)]))
		}
	}

	trailer := core.NewDict(core.DictEntry{Key: "Size", Value: core.Number(numbers[len(numbers)-1] + 1)})
	for _, e := range ctx.Trailer.Entries() {
		trailer.Set(e.Key, e.Value)
	}
	sb.WriteString("trailer\n")
	sb.WriteString(trailer.String())
	sb.WriteString("\n\n")
	sb.WriteString(startXRefFooter(l.startXRef))

	l.tail = sb.String()
	l.size = pos + len(l.tail)
	return l
}
