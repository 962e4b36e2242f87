package core

import (
	"bytes"
	"strings"
	"sync"
)

// Name represents a PDF name such as /Type. The value is the decoded text,
// without the leading slash.
//
// Names are interned by value: two Names with the same text are the same
// value. Their escaped encodings are computed once per distinct text and kept
// in a process-wide cache for the lifetime of the program.
type Name string

var encodedNames sync.Map // Name -> string

func (n Name) Type() ObjectType { return ObjName }

// String returns the escaped form, e.g. Name("#Bar") renders as "/#23Bar".
func (n Name) String() string {
	if v, ok := encodedNames.Load(n); ok {
		return v.(string)
	}
	enc := encodeName(string(n))
	encodedNames.Store(n, enc)
	return enc
}

func (n Name) SizeInBytes() int                     { return len(n.String()) }
func (n Name) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], n.String()) }
func (Name) object()                                {}

// Value returns the decoded text of the name.
func (n Name) Value() string { return string(n) }

const upperHex = "0123456789ABCDEF"

// encodeName escapes '#', delimiters, and every byte outside '!'..'~' as #XX.
func encodeName(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 1)
	sb.WriteByte('/')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '#' || c < '!' || c > '~' || isDelimiter(c) {
			sb.WriteByte('#')
			sb.WriteByte(upperHex[c>>4])
			sb.WriteByte(upperHex[c&0x0f])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// decodeName resolves #XX escapes in the raw bytes of a name token. A '#'
// not followed by two hex digits is kept literally.
func decodeName(raw []byte) Name {
	if bytes.IndexByte(raw, '#') < 0 {
		return Name(raw)
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '#' && i+2 < len(raw) && isHexDigit(raw[i+1]) && isHexDigit(raw[i+2]) {
			out = append(out, hexValue(raw[i+1])<<4|hexValue(raw[i+2]))
			i += 2
			continue
		}
		out = append(out, c)
	}
	return Name(out)
}
