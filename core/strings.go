package core

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// String represents a PDF literal string. The value is the body between the
// parentheses exactly as written, escapes included, so a parsed string
// renders back to its original bytes. NewString builds one from raw bytes;
// Bytes decodes it.
type String string

func (s String) Type() ObjectType                     { return ObjString }
func (s String) String() string                       { return renderLiteral(string(s)) }
func (s String) SizeInBytes() int                     { return len(s.String()) }
func (s String) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], s.String()) }
func (String) object()                                {}

// Bytes returns the string value with escape sequences resolved.
func (s String) Bytes() []byte { return unescapeLiteral([]byte(s)) }

// Text decodes the string as a PDF text string.
func (s String) Text() string { return decodeText(s.Bytes()) }

// NewString escapes b into a literal string body. Backslashes and line
// control bytes are always escaped; parentheses only when unbalanced.
func NewString(b []byte) String {
	unbalanced := unbalancedParens(string(b), false)
	var sb strings.Builder
	sb.Grow(len(b))
	for i, c := range b {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\b':
			sb.WriteString(`\b`)
		case c == '\f':
			sb.WriteString(`\f`)
		case c < ' ' || c == 0x7f:
			fmt.Fprintf(&sb, "\\%03o", c)
		case (c == '(' || c == ')') && unbalanced[i]:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return String(sb.String())
}

// renderLiteral wraps body in parentheses. Escapes are copied as they are;
// unescaped parentheses without a partner and a dangling final backslash are
// escaped so the result is always a well-formed literal.
func renderLiteral(body string) string {
	unbalanced := unbalancedParens(body, true)
	var sb strings.Builder
	sb.Grow(len(body) + 2)
	sb.WriteByte('(')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			sb.WriteByte(c)
			i++
			sb.WriteByte(body[i])
		case c == '\\':
			sb.WriteString(`\\`)
		case (c == '(' || c == ')') && unbalanced[i]:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// unbalancedParens returns the positions of parentheses that have no partner.
// With escaped set, a backslash hides the byte after it.
func unbalancedParens(s string, escaped bool) map[int]bool {
	var open []int
	var out map[int]bool
	mark := func(i int) {
		if out == nil {
			out = make(map[int]bool)
		}
		out[i] = true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if escaped {
				i++
			}
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				mark(i)
				continue
			}
			open = open[:len(open)-1]
		}
	}
	for _, i := range open {
		mark(i)
	}
	return out
}

// HexString represents a PDF hexadecimal string. The hex digits are stored
// verbatim; an odd digit count is legal and padded only when decoding.
type HexString string

// NewHexString validates digits and returns them as a HexString. Whitespace
// is allowed between digits.
func NewHexString(digits string) (HexString, error) {
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) && !isWhitespace(digits[i]) {
			return "", fmt.Errorf("invalid hex digit %q at position %d", digits[i], i)
		}
	}
	return HexString(digits), nil
}

// HexStringFromBytes encodes b as uppercase hex digits.
func HexStringFromBytes(b []byte) HexString {
	return HexString(strings.ToUpper(hex.EncodeToString(b)))
}

func (h HexString) Type() ObjectType                     { return ObjHexString }
func (h HexString) String() string                       { return "<" + string(h) + ">" }
func (h HexString) SizeInBytes() int                     { return len(h) + 2 }
func (h HexString) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], h.String()) }
func (HexString) object()                                {}

// Decode returns the bytes the digits encode. A trailing odd digit is padded
// with 0, and characters that are not hex digits are skipped.
func (h HexString) Decode() []byte {
	out := make([]byte, 0, len(h)/2+1)
	var hi byte
	half := false
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !isHexDigit(c) {
			continue
		}
		if !half {
			hi = hexValue(c)
			half = true
			continue
		}
		out = append(out, hi<<4|hexValue(c))
		half = false
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

// Text decodes the string as a PDF text string.
func (h HexString) Text() string { return decodeText(h.Decode()) }

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// NewTextString encodes s as a PDF text string. Printable ASCII becomes a
// literal String; anything else is UTF-16BE with a byte order mark, stored as
// a HexString.
func NewTextString(s string) Object {
	if isPrintableASCII(s) {
		return NewString([]byte(s))
	}
	b, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return NewString([]byte(s))
	}
	return HexStringFromBytes(b)
}

// decodeText interprets b as a UTF-16BE string when it carries a byte order
// mark, as UTF-8 when it carries the UTF-8 mark, and as Latin-1 otherwise.
func decodeText(b []byte) string {
	switch {
	case len(b) >= 2 && b[0] == 0xfe && b[1] == 0xff:
		out, err := utf16BE.NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	case len(b) >= 3 && b[0] == 0xef && b[1] == 0xbb && b[2] == 0xbf:
		return string(b[3:])
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] > '~' {
			return false
		}
	}
	return true
}

// NewDateString renders t in the PDF date format D:YYYYMMDDHHmmSSZ (UTC).
func NewDateString(t time.Time) String {
	return String("D:" + t.UTC().Format("20060102150405") + "Z")
}

// ParseDate parses a PDF date string. Every field after the year is
// optional, as is the time zone designation (Z, or +HH'mm' / -HH'mm').
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 4 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	fields := []int{0, 1, 1, 0, 0, 0} // year month day hour minute second
	widths := []int{4, 2, 2, 2, 2, 2}
	pos := 0
	for i, w := range widths {
		if pos+w > len(s) || !isDigit(s[pos]) {
			break
		}
		v, err := strconv.Atoi(s[pos : pos+w])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		fields[i] = v
		pos += w
	}

	loc := time.UTC
	if pos < len(s) && (s[pos] == '+' || s[pos] == '-') {
		tz := strings.ReplaceAll(s[pos+1:], "'", "")
		var hh, mm int
		if len(tz) >= 2 {
			hh, _ = strconv.Atoi(tz[:2])
		}
		if len(tz) >= 4 {
			mm, _ = strconv.Atoi(tz[2:4])
		}
		offset := hh*3600 + mm*60
		if s[pos] == '-' {
			offset = -offset
		}
		loc = time.FixedZone("", offset)
	}

	return time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, loc), nil
}
