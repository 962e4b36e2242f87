package core

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned by a matcher when its grammar does not begin at the
// current position. The dispatcher treats it as a signal to try the next
// candidate grammar.
var ErrNoMatch = errors.New("no match")

// ErrAlreadyParsed is returned when a single-use parser is run a second time.
var ErrAlreadyParsed = errors.New("parser has already been used")

// SyntaxError reports input where a grammar clearly started matching but the
// content is structurally invalid.
type SyntaxError struct {
	Msg  string
	Near string // a short excerpt of the input at the failure point
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error: %s near %q", e.Msg, e.Near)
}

func newSyntaxError(msg string, near []byte) *SyntaxError {
	if len(near) > 24 {
		near = near[:24]
	}
	return &SyntaxError{Msg: msg, Near: string(near)}
}

// MaxObjectNumber is the largest object number a Context holds, the
// implementation limit on indirect objects in a PDF file.
const MaxObjectNumber = 1<<23 - 1

// ObjectNumberError reports an object number above MaxObjectNumber. Context
// allocation panics with it; the parser and copier return it.
type ObjectNumberError struct {
	Number uint64
}

func (e *ObjectNumberError) Error() string {
	return fmt.Sprintf("object number %d exceeds the limit of %d", e.Number, MaxObjectNumber)
}

// TypeMismatchError is returned by a typed lookup when the resolved object is
// not of the expected variant.
type TypeMismatchError struct {
	Expected ObjectType
	Actual   ObjectType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

// ObjectNotFoundError is returned when a reference does not resolve within
// its Context.
type ObjectNotFoundError struct {
	Ref IndirectRef
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %s not found", e.Ref)
}

// MissingKeyError is returned when a required dictionary entry is absent.
type MissingKeyError struct {
	Key Name
	In  string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s is missing required key %s", e.In, e.Key)
}

// IndexOutOfBoundsError is returned by positional mutations outside an array.
type IndexOutOfBoundsError struct {
	Index int
	Len   int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// UnhandledObjectError is the panic value raised when code meets a value that
// does not belong to the Object variant set. It marks a programming error.
type UnhandledObjectError struct {
	Value any
}

func (e *UnhandledObjectError) Error() string {
	return fmt.Sprintf("core: unhandled object type %T", e.Value)
}
