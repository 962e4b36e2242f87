package filters

import (
	"bytes"
	"encoding/ascii85"
	"fmt"
)

// ASCIIHexDecode decodes hex digit pairs up to the '>' end marker. Whitespace
// is ignored and a final odd digit is treated as if followed by 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	half := false
	for i, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, ok := hexNibble(c)
		if !ok {
			return nil, fmt.Errorf("invalid hex digit %q at %d", c, i)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

// ASCII85Decode decodes base-85 data, with an optional "<~" prefix, up to
// the "~>" end marker.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimLeftFunc(data, func(r rune) bool { return r < 0x80 && isWhitespace(byte(r)) })
	data = bytes.TrimPrefix(data, []byte("<~"))
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}

	// encoding/ascii85 rejects whitespace inside a group.
	clean := make([]byte, 0, len(data))
	for _, c := range data {
		if !isWhitespace(c) {
			clean = append(clean, c)
		}
	}

	out := make([]byte, 4*len(clean)+4) // z expands one byte to four
	n, _, err := ascii85.Decode(out, clean, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
