package writer

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/logging"
)

// Serialize renders ctx as a complete PDF file. The trailer must name a
// Root; without one Serialize returns *core.MissingKeyError.
func Serialize(ctx *core.Context, opts ...Option) ([]byte, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if ctx.Trailer.Root == nil {
		return nil, &core.MissingKeyError{Key: "Root", In: "trailer"}
	}
	if _, ok := ctx.LookupMaybe(core.Ref(0)); ok {
		return nil, fmt.Errorf("object number 0 is reserved for the free list head")
	}

	var l *layout
	var err error
	switch o.strategy {
	case Classic:
		l = layoutClassic(ctx, o.yielder())
	case Compressed:
		l, err = layoutCompressed(ctx, o)
	default:
		return nil, fmt.Errorf("unknown strategy %d", o.strategy)
	}
	if err != nil {
		return nil, err
	}

	out, err := l.write(o.yielder())
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("serialized document",
		slog.String("strategy", o.strategy.String()),
		slog.Int("objects", len(l.objects)),
		slog.Int("bytes", len(out)),
		slog.Int("startxref", l.startXRef))
	return out, nil
}

// layout is a fully planned file: the header, the top-level objects in
// emission order and the bytes that follow them.
type layout struct {
	header    string
	objects   []core.IndirectObject
	tail      string
	startXRef int
	size      int
}

// write fills a buffer of exactly l.size bytes.
func (l *layout) write(y *core.Yielder) ([]byte, error) {
	buf := make([]byte, l.size)
	n := copy(buf, l.header)
	for _, o := range l.objects {
		y.Tick()
		n += o.WriteInto(buf, n)
	}
	n += copy(buf[n:], l.tail)
	if n != l.size {
		return nil, fmt.Errorf("wrote %d bytes, layout planned %d", n, l.size)
	}
	return buf, nil
}

// fileHeader is the version line, the binary marker line and a blank line.
func fileHeader(ctx *core.Context) string {
	return ctx.Header.String() + "\n"
}

func startXRefFooter(offset int) string {
	return "startxref\n" + strconv.Itoa(offset) + "\n%%EOF"
}
