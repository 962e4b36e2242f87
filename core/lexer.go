package core

import "bytes"

// The scanning helpers below work on the remaining suffix of the input. Each
// returns the suffix left after the consumed bytes.

// skipSpace skips whitespace and % comments.
func skipSpace(b []byte) []byte {
	for len(b) > 0 {
		switch {
		case isWhitespace(b[0]):
			b = b[1:]
		case b[0] == '%':
			b = skipComment(b)
		default:
			return b
		}
	}
	return b
}

// skipWhitespace skips whitespace only. Comments are left in place.
func skipWhitespace(b []byte) []byte {
	for len(b) > 0 && isWhitespace(b[0]) {
		b = b[1:]
	}
	return b
}

// skipComment consumes a comment up to, but not including, its end of line.
func skipComment(b []byte) []byte {
	i := bytes.IndexAny(b, "\r\n")
	if i < 0 {
		return b[len(b):]
	}
	return b[i:]
}

// skipEOL consumes a single end of line marker (CRLF, LF or CR).
func skipEOL(b []byte) []byte {
	switch {
	case bytes.HasPrefix(b, []byte("\r\n")):
		return b[2:]
	case len(b) > 0 && (b[0] == '\n' || b[0] == '\r'):
		return b[1:]
	}
	return b
}

// skipLine consumes everything through the next end of line.
func skipLine(b []byte) []byte {
	i := bytes.IndexAny(b, "\r\n")
	if i < 0 {
		return b[len(b):]
	}
	return skipEOL(b[i:])
}

// hasKeyword reports whether b starts with kw as a whole token.
func hasKeyword(b []byte, kw string) bool {
	if !bytes.HasPrefix(b, []byte(kw)) {
		return false
	}
	return len(b) == len(kw) || isTokenEnd(b[len(kw)])
}

// isTokenEnd reports whether c ends a keyword or number token.
func isTokenEnd(c byte) bool {
	return isWhitespace(c) || isDelimiter(c)
}

// readDigits splits off a run of decimal digits.
func readDigits(b []byte) (digits, rest []byte) {
	i := 0
	for i < len(b) && isDigit(b[i]) {
		i++
	}
	return b[:i], b[i:]
}

func isWhitespace(b byte) bool {
	// PDF whitespace: space, tab, LF, CR, FF, null
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
