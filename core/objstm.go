package core

import (
	"fmt"
	"strconv"

	tdstrconv "github.com/tdewolff/parse/v2/strconv"
)

// ObjectStreamParser expands an object stream (Type /ObjStm) into a
// Context. Each parser is single use.
type ObjectStreamParser struct {
	stream  *Stream
	ctx     *Context
	parser  *Parser
	yielder *Yielder
	done    bool
}

// NewObjectStreamParser prepares to expand stream into ctx. y may be nil.
func NewObjectStreamParser(stream *Stream, ctx *Context, y *Yielder) *ObjectStreamParser {
	return &ObjectStreamParser{
		stream:  stream,
		ctx:     ctx,
		parser:  NewParser(ctx, nil),
		yielder: y,
	}
}

// objStmEntry pairs an object number with its offset relative to /First.
type objStmEntry struct {
	number uint32
	offset int
}

// ParseIntoContext decodes the stream, reads its header and assigns every
// object it holds into the Context at generation 0. It returns the refs it
// assigned, in header order. A second call returns ErrAlreadyParsed.
func (op *ObjectStreamParser) ParseIntoContext() ([]IndirectRef, error) {
	if op.done {
		return nil, ErrAlreadyParsed
	}
	op.done = true

	n, first, err := objectStreamParams(op.stream)
	if err != nil {
		return nil, err
	}
	data, err := op.stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode object stream: %w", err)
	}
	if first > len(data) {
		return nil, fmt.Errorf("object stream /First %d exceeds decoded length %d", first, len(data))
	}

	entries, err := parseObjStmHeader(data[:first], n)
	if err != nil {
		return nil, err
	}

	refs := make([]IndirectRef, 0, len(entries))
	for i, e := range entries {
		op.yielder.Tick()
		start := first + e.offset
		if start < first || start > len(data) {
			return refs, fmt.Errorf("object %d: offset %d outside object stream", e.number, e.offset)
		}
		obj, _, err := op.parser.ParseObject(data[start:])
		if err != nil {
			return refs, fmt.Errorf("object %d (index %d) in object stream: %w", e.number, i, err)
		}
		ref := Ref(e.number)
		op.ctx.Assign(ref, obj)
		refs = append(refs, ref)
	}
	return refs, nil
}

// objectStreamParams validates the stream dictionary and returns /N and
// /First.
func objectStreamParams(s *Stream) (n, first int, err error) {
	if s == nil {
		return 0, 0, fmt.Errorf("object stream is nil")
	}
	if t, ok := s.Dict.GetName("Type"); !ok || t != "ObjStm" {
		return 0, 0, fmt.Errorf("stream is not an object stream, got type %v", s.Dict.Get("Type"))
	}
	get := func(key Name) (int, error) {
		v, ok := s.Dict.GetNumber(key)
		if !ok {
			return 0, &MissingKeyError{Key: key, In: "object stream"}
		}
		if v < 0 || !v.IsInteger() {
			return 0, fmt.Errorf("invalid object stream %s %s", key, v)
		}
		return int(v), nil
	}
	if n, err = get("N"); err != nil {
		return 0, 0, err
	}
	if first, err = get("First"); err != nil {
		return 0, 0, err
	}
	return n, first, nil
}

// parseObjStmHeader reads n "objectNumber offset" pairs.
func parseObjStmHeader(header []byte, n int) ([]objStmEntry, error) {
	entries := make([]objStmEntry, 0, n)
	s := header
	next := func(what string, i int) (uint64, error) {
		s = skipSpace(s)
		v, k := tdstrconv.ParseUint(s)
		if k == 0 {
			return 0, newSyntaxError(fmt.Sprintf("object stream header: %s %d is not an integer", what, i), s)
		}
		s = s[k:]
		return v, nil
	}
	for i := 0; i < n; i++ {
		num, err := next("object number", i)
		if err != nil {
			return nil, err
		}
		off, err := next("offset", i)
		if err != nil {
			return nil, err
		}
		if num == 0 {
			return nil, fmt.Errorf("object stream header: invalid object number %d", num)
		}
		if num > MaxObjectNumber {
			return nil, fmt.Errorf("object stream header: %w", &ObjectNumberError{Number: num})
		}
		entries = append(entries, objStmEntry{number: uint32(num), offset: int(off)})
	}
	return entries, nil
}

// NewObjectStream packs objects into an object stream. Each body is written
// at the offset recorded in the header; the objects keep their order. When
// compress is set the content is Flate encoded.
func NewObjectStream(objects []IndirectObject, compress bool) (*Stream, error) {
	var header, body []byte
	for i, o := range objects {
		if i > 0 {
			header = append(header, ' ')
			body = append(body, '\n')
		}
		header = strconv.AppendUint(header, uint64(o.Ref.Number), 10)
		header = append(header, ' ')
		header = strconv.AppendInt(header, int64(len(body)), 10)
		body = append(body, render(o.Object)...)
	}
	header = append(header, '\n')

	dict := NewDict(
		DictEntry{Key: "Type", Value: Name("ObjStm")},
		DictEntry{Key: "N", Value: Number(len(objects))},
		DictEntry{Key: "First", Value: Number(len(header))},
	)
	data := append(header, body...)
	if compress {
		return NewFlateStream(dict, data)
	}
	return NewStream(dict, data), nil
}
