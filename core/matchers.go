package core

import (
	"bytes"
	"math"
	"strconv"

	tdstrconv "github.com/tdewolff/parse/v2/strconv"
)

// Hooks receive each object a matcher builds, as soon as it is built. A nil
// *Hooks, or a nil field, is skipped.
type Hooks struct {
	OnBool      func(Bool)
	OnNull      func(Null)
	OnNumber    func(Number)
	OnName      func(Name)
	OnString    func(String)
	OnHexString func(HexString)
	OnRef       func(IndirectRef)
	OnArray     func(Array)
	OnDict      func(*Dict)
	OnStream    func(*Stream)
	OnHeader    func(Header)
}

func (h *Hooks) emit(obj Object) {
	if h == nil {
		return
	}
	switch v := obj.(type) {
	case Bool:
		call(h.OnBool, v)
	case Null:
		call(h.OnNull, v)
	case Number:
		call(h.OnNumber, v)
	case Name:
		call(h.OnName, v)
	case String:
		call(h.OnString, v)
	case HexString:
		call(h.OnHexString, v)
	case IndirectRef:
		call(h.OnRef, v)
	case Array:
		call(h.OnArray, v)
	case *Dict:
		call(h.OnDict, v)
	case *Stream:
		call(h.OnStream, v)
	case InvalidObject:
	default:
		panic(&UnhandledObjectError{Value: obj})
	}
}

func call[T any](f func(T), v T) {
	if f != nil {
		f(v)
	}
}

// A Matcher tries to match one grammar at the start of b, after skipping
// whitespace and comments. On success it returns the object and the rest of
// the input. When the grammar does not start there it returns ErrNoMatch and
// b unchanged; when the grammar started but is malformed it returns a
// *SyntaxError.
type Matcher func(b []byte, h *Hooks) (Object, []byte, error)

func noMatch(b []byte) (Object, []byte, error) {
	return nil, b, ErrNoMatch
}

func matched(obj Object, rest []byte, h *Hooks) (Object, []byte, error) {
	h.emit(obj)
	return obj, rest, nil
}

// ParseBool matches true or false.
func ParseBool(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	switch {
	case bytes.HasPrefix(s, []byte("true")):
		return matched(Bool(true), s[4:], h)
	case bytes.HasPrefix(s, []byte("false")):
		return matched(Bool(false), s[5:], h)
	}
	return noMatch(b)
}

// ParseNull matches null.
func ParseNull(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	if bytes.HasPrefix(s, []byte("null")) {
		return matched(Null{}, s[4:], h)
	}
	return noMatch(b)
}

// ParseNumber matches an optional sign, digits and at most one decimal
// point. A second point ends the number and is left in the rest.
func ParseNumber(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		c := s[i]
		if isDigit(c) {
			digits++
			continue
		}
		if c == '.' && !dot {
			dot = true
			continue
		}
		break
	}
	if digits == 0 {
		return noMatch(b)
	}
	f, err := strconv.ParseFloat(string(s[:i]), 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, b, newSyntaxError("number out of range", s[:i])
	}
	return matched(Number(f), s[i:], h)
}

// ParseName matches /Name. It stops at whitespace or a delimiter; a lone /
// is the empty name.
func ParseName(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	if len(s) == 0 || s[0] != '/' {
		return noMatch(b)
	}
	i := 1
	for i < len(s) && !isTokenEnd(s[i]) {
		i++
	}
	return matched(decodeName(s[1:i]), s[i:], h)
}

// ParseString matches a literal string. Escaped parentheses do not count
// toward nesting. The body is kept as written; String.Bytes resolves the
// escapes. An unterminated string is not a match.
func ParseString(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	if len(s) == 0 || s[0] != '(' {
		return noMatch(b)
	}
	end := literalEnd(s)
	if end < 0 {
		return noMatch(b)
	}
	return matched(String(s[1:end]), s[end+1:], h)
}

// literalEnd returns the index of the parenthesis closing the string that
// opens at s[0], or -1.
func literalEnd(s []byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// unescapeLiteral resolves backslash escapes in the body of a literal string.
func unescapeLiteral(raw []byte) []byte {
	if bytes.IndexByte(raw, '\\') < 0 {
		return raw
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			out = append(out, c)
			continue
		}
		i++
		switch c = raw[i]; c {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\r':
			// Line continuation; CRLF counts as one end of line.
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			if !isOctalDigit(c) {
				out = append(out, c)
				continue
			}
			v := int(c - '0')
			for k := 0; k < 2 && i+1 < len(raw) && isOctalDigit(raw[i+1]); k++ {
				i++
				v = v*8 + int(raw[i]-'0')
			}
			out = append(out, byte(v))
		}
	}
	return out
}

// ParseHexString matches <hex digits>. The digits are kept verbatim.
func ParseHexString(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	if len(s) == 0 || s[0] != '<' || (len(s) > 1 && s[1] == '<') {
		return noMatch(b)
	}
	end := bytes.IndexByte(s, '>')
	if end < 0 {
		return nil, b, newSyntaxError("unterminated hex string", s)
	}
	body := s[1:end]
	for _, c := range body {
		if !isHexDigit(c) && !isWhitespace(c) {
			return nil, b, newSyntaxError("invalid hex digit "+strconv.QuoteRune(rune(c)), s)
		}
	}
	return matched(HexString(body), s[end+1:], h)
}

// ParseIndirectRef matches "N G R".
func ParseIndirectRef(b []byte, h *Hooks) (Object, []byte, error) {
	ref, rest, ok := matchRefPrefix(skipSpace(b), "R")
	if !ok {
		return noMatch(b)
	}
	return matched(ref, rest, h)
}

// matchRefPrefix matches two unsigned integers followed by keyword kw, as in
// "12 0 R" or "12 0 obj".
func matchRefPrefix(s []byte, kw string) (IndirectRef, []byte, bool) {
	num, n := tdstrconv.ParseUint(s)
	if n == 0 || num > math.MaxUint32 {
		return IndirectRef{}, nil, false
	}
	s = s[n:]
	if len(s) == 0 || !isWhitespace(s[0]) {
		return IndirectRef{}, nil, false
	}
	s = skipWhitespace(s)
	gen, n := tdstrconv.ParseUint(s)
	if n == 0 || gen > math.MaxUint16 {
		return IndirectRef{}, nil, false
	}
	s = s[n:]
	if len(s) == 0 || !isWhitespace(s[0]) {
		return IndirectRef{}, nil, false
	}
	s = skipWhitespace(s)
	if !hasKeyword(s, kw) {
		return IndirectRef{}, nil, false
	}
	return IndirectRef{Number: uint32(num), Generation: uint16(gen)}, s[len(kw):], true
}

// ParseHeader matches %PDF-M.m. Only whitespace is skipped first, since the
// header itself looks like a comment.
func ParseHeader(b []byte, h *Hooks) (Header, []byte, error) {
	s := skipWhitespace(b)
	if !bytes.HasPrefix(s, []byte("%PDF-")) {
		return Header{}, b, ErrNoMatch
	}
	s = s[5:]
	major, n := tdstrconv.ParseUint(s)
	if n == 0 || n >= len(s) || s[n] != '.' {
		return Header{}, b, newSyntaxError("invalid header version", s)
	}
	s = s[n+1:]
	minor, n := tdstrconv.ParseUint(s)
	if n == 0 {
		return Header{}, b, newSyntaxError("invalid header version", s)
	}
	hdr := Header{Major: int(major), Minor: int(minor)}
	if h != nil {
		call(h.OnHeader, hdr)
	}
	return hdr, s[n:], nil
}
