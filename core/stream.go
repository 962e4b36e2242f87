package core

import (
	"fmt"

	"github.com/tsawler/pdfgraph/internal/filters"
)

// Stream represents a PDF stream: a dictionary followed by raw content bytes.
//
// The dictionary's Length entry is output metadata. It is set from len(Data)
// whenever the stream is sized or written, so it always matches the content.
type Stream struct {
	Dict *Dict
	Data []byte
}

// NewStream creates a stream over data. A nil dict is replaced by an empty
// one. Length is set immediately.
func NewStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = NewDict()
	}
	s := &Stream{Dict: dict, Data: data}
	s.syncLength()
	return s
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string   { return render(s) }
func (*Stream) object()            {}

const (
	streamStart = "\nstream\n"
	streamEnd   = "\nendstream"
)

func (s *Stream) SizeInBytes() int {
	s.syncLength()
	return s.Dict.SizeInBytes() + len(streamStart) + len(s.Data) + len(streamEnd)
}

func (s *Stream) WriteInto(buf []byte, offset int) int {
	s.syncLength()
	start := offset
	offset += s.Dict.WriteInto(buf, offset)
	offset += copy(buf[offset:], streamStart)
	offset += copy(buf[offset:], s.Data)
	offset += copy(buf[offset:], streamEnd)
	return offset - start
}

func (s *Stream) syncLength() {
	if s.Dict == nil {
		s.Dict = NewDict()
	}
	if n, ok := s.Dict.GetNumber("Length"); ok && int(n) == len(s.Data) {
		return
	}
	s.Dict.Set("Length", Number(len(s.Data)))
}

// Decode runs the stream data through its Filter chain. A stream without a
// Filter entry returns its data unchanged.
func (s *Stream) Decode() ([]byte, error) {
	var names []Name
	switch f := s.Dict.Get("Filter").(type) {
	case nil, Null:
		return s.Data, nil
	case Name:
		names = []Name{f}
	case Array:
		for i, item := range f {
			n, ok := item.(Name)
			if !ok {
				return nil, fmt.Errorf("filter %d is %s, not a name", i, item.Type())
			}
			names = append(names, n)
		}
	default:
		return nil, fmt.Errorf("invalid Filter entry of type %s", f.Type())
	}

	data := s.Data
	for i, name := range names {
		var err error
		data, err = filters.Decode(string(name), data, s.decodeParams(i))
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
	}
	return data, nil
}

// FilterFunc decodes one filter stage. Params holds the stage's DecodeParms
// entries as Go values (int, float64, bool, string).
type FilterFunc func(data []byte, params map[string]any) ([]byte, error)

// RegisterFilter makes Decode apply fn for filter name. A built-in decoder of
// the same name is replaced.
func RegisterFilter(name Name, fn FilterFunc) {
	filters.Register(string(name), func(data []byte, params filters.Params) ([]byte, error) {
		return fn(data, params)
	})
}

// decodeParams returns the DecodeParms entry that applies to filter i.
func (s *Stream) decodeParams(i int) filters.Params {
	switch p := s.Dict.Get("DecodeParms").(type) {
	case *Dict:
		return toParams(p)
	case Array:
		if d, ok := p.Get(i).(*Dict); ok {
			return toParams(d)
		}
	}
	return nil
}

// toParams converts a DecodeParms dictionary to Go primitives.
func toParams(d *Dict) filters.Params {
	params := make(filters.Params, d.Len())
	for _, e := range d.Entries() {
		switch v := e.Value.(type) {
		case Number:
			if v.IsInteger() {
				params[string(e.Key)] = int(v)
			} else {
				params[string(e.Key)] = float64(v)
			}
		case Bool:
			params[string(e.Key)] = bool(v)
		case Name:
			params[string(e.Key)] = string(v)
		case String:
			params[string(e.Key)] = string(v.Bytes())
		default:
			params[string(e.Key)] = v
		}
	}
	return params
}

// NewFlateStream creates a stream holding data compressed with FlateDecode.
func NewFlateStream(dict *Dict, data []byte) (*Stream, error) {
	enc, err := filters.FlateEncode(data)
	if err != nil {
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	if dict == nil {
		dict = NewDict()
	}
	dict.Set("Filter", Name("FlateDecode"))
	return NewStream(dict, enc), nil
}
