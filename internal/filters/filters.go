package filters

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupportedFilter is returned by Decode for filter names it does not know.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// Params holds decode parameters from a DecodeParms dictionary, with values
// already converted to Go primitives (int, float64, bool, string).
type Params map[string]any

// Decoder decodes one filter stage.
type Decoder func(data []byte, params Params) ([]byte, error)

var (
	mu       sync.RWMutex
	decoders = builtinDecoders()
)

func builtinDecoders() map[string]Decoder {
	return map[string]Decoder{
		"FlateDecode":     FlateDecode,
		"Fl":              FlateDecode,
		"ASCIIHexDecode":  ignoreParams(ASCIIHexDecode),
		"AHx":             ignoreParams(ASCIIHexDecode),
		"ASCII85Decode":   ignoreParams(ASCII85Decode),
		"A85":             ignoreParams(ASCII85Decode),
		"RunLengthDecode": ignoreParams(RunLengthDecode),
		"RL":              ignoreParams(RunLengthDecode),
		"CCITTFaxDecode":  CCITTFaxDecode,
		"CCF":             CCITTFaxDecode,
		"DCTDecode":       passThrough,
		"DCT":             passThrough,
		"JPXDecode":       passThrough,
		"JBIG2Decode":     passThrough,
	}
}

// Register installs dec under name, replacing any decoder already known by
// that name, built-in ones included.
func Register(name string, dec Decoder) {
	mu.Lock()
	defer mu.Unlock()
	decoders[name] = dec
}

func lookup(name string) (Decoder, bool) {
	mu.RLock()
	defer mu.RUnlock()
	dec, ok := decoders[name]
	return dec, ok
}

// Decode applies the named filter to data.
func Decode(name string, data []byte, params Params) ([]byte, error) {
	dec, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
	}
	out, err := dec(data, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Supported reports whether Decode knows the named filter.
func Supported(name string) bool {
	_, ok := lookup(name)
	return ok
}

func ignoreParams(f func([]byte) ([]byte, error)) Decoder {
	return func(data []byte, _ Params) ([]byte, error) { return f(data) }
}

func passThrough(data []byte, _ Params) ([]byte, error) {
	return data, nil
}

// intParam returns params[key] as an int, or def when it is absent or not
// numeric.
func intParam(params Params, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func boolParam(params Params, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
