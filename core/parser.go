package core

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfgraph/logging"
)

// Parser turns bytes into objects. Matchers that need document state, such
// as an indirect stream Length, resolve it through the parser's Context.
//
// The parser is stateless between calls: every method takes the remaining
// input and returns what is left after the object it consumed.
type Parser struct {
	ctx   *Context
	hooks *Hooks

	// ThrowOnInvalidObject makes ParseIndirectObject fail on a body it
	// cannot parse, instead of keeping the raw bytes as an InvalidObject.
	ThrowOnInvalidObject bool
}

// NewParser creates a parser that resolves references through ctx (which
// may be nil) and reports every object it builds to hooks (which may be nil).
func NewParser(ctx *Context, hooks *Hooks) *Parser {
	return &Parser{ctx: ctx, hooks: hooks}
}

// ParseObject matches one direct object of any kind at the start of b.
//
// Grammars sharing a prefix are tried longest first: a dictionary before a
// hex string (both start with '<') and a reference before a number (both
// start with digits).
func (p *Parser) ParseObject(b []byte) (Object, []byte, error) {
	matchers := [...]Matcher{
		p.matchDictOrStream,
		ParseHexString,
		ParseIndirectRef,
		ParseNumber,
		ParseBool,
		ParseNull,
		ParseName,
		ParseString,
		p.matchArray,
	}
	for _, m := range matchers {
		obj, rest, err := m(b, p.hooks)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		return obj, rest, err
	}
	return nil, b, ErrNoMatch
}

// ParseObjectAt parses one object starting at offset and returns the offset
// just past it.
func (p *Parser) ParseObjectAt(b []byte, offset int) (Object, int, error) {
	if offset < 0 || offset > len(b) {
		return nil, offset, fmt.Errorf("offset %d outside input of %d bytes", offset, len(b))
	}
	obj, rest, err := p.ParseObject(b[offset:])
	if err != nil {
		return nil, offset, err
	}
	return obj, len(b) - len(rest), nil
}

func (p *Parser) matchArray(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	if len(s) == 0 || s[0] != '[' {
		return noMatch(b)
	}
	arr, rest, err := p.parseArrayBody(s[1:])
	if err != nil {
		return nil, b, err
	}
	return matched(arr, rest, h)
}

// ParseArray matches [ ... ].
func (p *Parser) ParseArray(b []byte) (Array, []byte, error) {
	obj, rest, err := p.matchArray(b, p.hooks)
	if err != nil {
		return nil, b, err
	}
	return obj.(Array), rest, nil
}

func (p *Parser) parseArrayBody(s []byte) (Array, []byte, error) {
	arr := Array{}
	for {
		s = skipSpace(s)
		if len(s) == 0 {
			return nil, nil, newSyntaxError("unterminated array", s)
		}
		if s[0] == ']' {
			return arr, s[1:], nil
		}
		obj, rest, err := p.ParseObject(s)
		if errors.Is(err, ErrNoMatch) {
			return nil, nil, newSyntaxError("unexpected token in array", s)
		}
		if err != nil {
			return nil, nil, err
		}
		arr = append(arr, obj)
		s = rest
	}
}

// ParseDictOrStream matches << ... >>, and the stream that follows it when
// the stream keyword comes next. The result is a *Dict or a *Stream.
func (p *Parser) ParseDictOrStream(b []byte) (Object, []byte, error) {
	return p.matchDictOrStream(b, p.hooks)
}

func (p *Parser) matchDictOrStream(b []byte, h *Hooks) (Object, []byte, error) {
	s := skipSpace(b)
	if !bytes.HasPrefix(s, []byte("<<")) {
		return noMatch(b)
	}
	dict, rest, err := p.parseDictBody(s[2:])
	if err != nil {
		return nil, b, err
	}
	h.emit(dict)

	after := skipWhitespace(rest)
	if !hasKeyword(after, "stream") {
		return dict, rest, nil
	}
	stream, rest, err := p.parseStreamBody(dict, after[len("stream"):])
	if err != nil {
		return nil, b, err
	}
	return matched(stream, rest, h)
}

func (p *Parser) parseDictBody(s []byte) (*Dict, []byte, error) {
	dict := NewDict()
	for {
		s = skipSpace(s)
		if bytes.HasPrefix(s, []byte(">>")) {
			return dict, s[2:], nil
		}
		if len(s) == 0 {
			return nil, nil, newSyntaxError("unterminated dictionary", s)
		}
		key, rest, err := ParseName(s, nil)
		if err != nil {
			return nil, nil, newSyntaxError("dictionary key is not a name", s)
		}
		value, rest, err := p.ParseObject(rest)
		if errors.Is(err, ErrNoMatch) {
			return nil, nil, newSyntaxError(fmt.Sprintf("missing value for key %s", key), rest)
		}
		if err != nil {
			return nil, nil, err
		}
		dict.Set(key.(Name), value)
		s = rest
	}
}

var endstreamKeyword = []byte("endstream")

// parseStreamBody reads the payload following the stream keyword. The
// declared Length is used when it resolves and is followed by endstream;
// otherwise the payload runs to the first endstream.
func (p *Parser) parseStreamBody(dict *Dict, s []byte) (*Stream, []byte, error) {
	s = skipEOL(s)

	if n, ok := p.streamLength(dict); ok && n >= 0 && n <= len(s) {
		if tail := skipWhitespace(s[n:]); hasKeyword(tail, "endstream") {
			return &Stream{Dict: dict, Data: bytes.Clone(s[:n])}, tail[len(endstreamKeyword):], nil
		}
		logging.Logger().Debug("stream Length does not reach endstream, scanning", slog.Int("length", n))
	}

	end := endstreamIndex(s)
	if end < 0 {
		return nil, nil, newSyntaxError("stream without endstream", s)
	}
	data := trimEOL(s[:end])
	return &Stream{Dict: dict, Data: bytes.Clone(data)}, s[end+len(endstreamKeyword):], nil
}

// endstreamIndex finds the endstream keyword that closes a payload of unknown
// length. A keyword on its own line wins over one embedded in the data; the
// search stops at the first endobj after the first keyword so a later
// object's stream is never taken.
func endstreamIndex(s []byte) int {
	if hasKeyword(s, "endstream") {
		return 0
	}
	bare := bytes.Index(s, endstreamKeyword)
	if bare < 0 {
		return -1
	}
	bound := len(s)
	if i := bytes.Index(s[bare:], endobjKeyword); i >= 0 {
		bound = bare + i
	}
	best := -1
	for _, eol := range [][]byte{[]byte("\nendstream"), []byte("\rendstream")} {
		if i := bytes.Index(s[:bound], eol); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return bare
	}
	return best + 1
}

func (p *Parser) streamLength(dict *Dict) (int, bool) {
	obj := dict.Get("Length")
	if ref, ok := obj.(IndirectRef); ok {
		if p.ctx == nil {
			return 0, false
		}
		target, ok := p.ctx.LookupMaybe(ref)
		if !ok {
			return 0, false
		}
		obj = target
	}
	n, ok := obj.(Number)
	if !ok || !n.IsInteger() {
		return 0, false
	}
	return int(n), true
}

// trimEOL removes one trailing end of line marker.
func trimEOL(b []byte) []byte {
	switch {
	case bytes.HasSuffix(b, []byte("\r\n")):
		return b[:len(b)-2]
	case bytes.HasSuffix(b, []byte("\n")), bytes.HasSuffix(b, []byte("\r")):
		return b[:len(b)-1]
	}
	return b
}

var endobjKeyword = []byte("endobj")

// ParseIndirectObject matches "N G obj ... endobj". A body that does not
// parse is kept verbatim as an InvalidObject unless ThrowOnInvalidObject is
// set.
func (p *Parser) ParseIndirectObject(b []byte) (IndirectObject, []byte, error) {
	s := skipSpace(b)
	ref, body, ok := matchRefPrefix(s, "obj")
	if !ok {
		return IndirectObject{}, b, ErrNoMatch
	}
	if ref.Number > MaxObjectNumber {
		return IndirectObject{}, b, &ObjectNumberError{Number: uint64(ref.Number)}
	}

	obj, rest, err := p.ParseObject(body)
	if err == nil {
		if tail := skipSpace(rest); hasKeyword(tail, "endobj") {
			return IndirectObject{Ref: ref, Object: obj}, tail[len(endobjKeyword):], nil
		}
		err = newSyntaxError("missing endobj", rest)
	}

	end := bytes.Index(body, endobjKeyword)
	if end < 0 {
		return IndirectObject{}, b, fmt.Errorf("object %s: %w", ref, err)
	}
	if p.ThrowOnInvalidObject {
		return IndirectObject{}, b, fmt.Errorf("object %s: %w", ref, err)
	}
	logging.Logger().Debug("keeping unparseable object body",
		slog.String("ref", ref.String()),
		slog.String("error", err.Error()))
	raw := InvalidObject(bytes.Clone(bytes.TrimSpace(body[:end])))
	return IndirectObject{Ref: ref, Object: raw}, body[end+len(endobjKeyword):], nil
}
