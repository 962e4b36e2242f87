package core

import (
	"fmt"
	"math"
	"strconv"
)

// Object represents a PDF object.
//
// The set of implementations is closed: only the variants declared in this
// package satisfy the interface. Every variant renders itself, reports its
// exact serialized size and copies its bytes into a caller-supplied buffer.
type Object interface {
	Type() ObjectType
	String() string
	SizeInBytes() int
	WriteInto(buf []byte, offset int) int

	object()
}

// ObjectType represents the type of PDF object
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjNumber
	ObjString
	ObjHexString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjInvalid
	ObjRef
)

// String returns the string representation of the object type
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjNumber:
		return "Number"
	case ObjString:
		return "String"
	case ObjHexString:
		return "HexString"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjStream:
		return "Stream"
	case ObjInvalid:
		return "InvalidObject"
	case ObjRef:
		return "IndirectRef"
	default:
		return "Unknown"
	}
}

// Null represents a PDF null object
type Null struct{}

func (Null) Type() ObjectType                     { return ObjNull }
func (Null) String() string                       { return "null" }
func (Null) SizeInBytes() int                     { return 4 }
func (Null) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], "null") }
func (Null) object()                              {}

// Bool represents a PDF boolean
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) SizeInBytes() int                     { return len(b.String()) }
func (b Bool) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], b.String()) }
func (Bool) object()                                {}

// Number represents a PDF numeric object. Integers and reals share one
// variant; integral values render without a decimal point.
type Number float64

// NewNumber validates f and returns it as a Number. NaN and the infinities
// have no PDF representation.
func NewNumber(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number %v cannot be represented", f)
	}
	return Number(f), nil
}

func (n Number) Type() ObjectType                     { return ObjNumber }
func (n Number) String() string                       { return formatNumber(float64(n)) }
func (n Number) SizeInBytes() int                     { return len(n.String()) }
func (n Number) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], n.String()) }
func (Number) object()                                {}

// Int returns the number truncated toward zero.
func (n Number) Int() int64 { return int64(n) }

// Float returns the number as a float64.
func (n Number) Float() float64 { return float64(n) }

// IsInteger reports whether the number has no fractional part.
func (n Number) IsInteger() bool { return float64(n) == math.Trunc(float64(n)) }

// formatNumber renders f in plain decimal notation. The 'f' verb never
// produces an exponent, which PDF readers do not accept. NaN and the
// infinities have no PDF form and render as 0.
func formatNumber(f float64) string {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IndirectRef represents an indirect object reference
type IndirectRef struct {
	Number     uint32
	Generation uint16
}

// Ref returns the reference (num, 0).
func Ref(num uint32) IndirectRef {
	return IndirectRef{Number: num}
}

func (r IndirectRef) Type() ObjectType { return ObjRef }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}
func (r IndirectRef) SizeInBytes() int                     { return len(r.String()) }
func (r IndirectRef) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], r.String()) }
func (IndirectRef) object()                                {}

// Less orders references by object number, then generation.
func (r IndirectRef) Less(o IndirectRef) bool {
	if r.Number != o.Number {
		return r.Number < o.Number
	}
	return r.Generation < o.Generation
}

// InvalidObject holds the raw bytes of an indirect object body that could not
// be parsed. It is written back verbatim.
type InvalidObject []byte

func (o InvalidObject) Type() ObjectType                     { return ObjInvalid }
func (o InvalidObject) String() string                       { return string(o) }
func (o InvalidObject) SizeInBytes() int                     { return len(o) }
func (o InvalidObject) WriteInto(buf []byte, offset int) int { return copy(buf[offset:], o) }
func (InvalidObject) object()                                {}

// IndirectObject represents an indirect object with its reference
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

// SizeInBytes returns the size of the framed object "N G obj\n...\nendobj\n\n".
func (o IndirectObject) SizeInBytes() int {
	return len(o.prefix()) + o.Object.SizeInBytes() + len(endObj)
}

// WriteInto writes the framed object into buf at offset.
func (o IndirectObject) WriteInto(buf []byte, offset int) int {
	start := offset
	offset += copy(buf[offset:], o.prefix())
	offset += o.Object.WriteInto(buf, offset)
	offset += copy(buf[offset:], endObj)
	return offset - start
}

// Bytes returns the framed object.
func (o IndirectObject) Bytes() []byte {
	buf := make([]byte, o.SizeInBytes())
	o.WriteInto(buf, 0)
	return buf
}

func (o IndirectObject) prefix() string {
	return fmt.Sprintf("%d %d obj\n", o.Ref.Number, o.Ref.Generation)
}

const endObj = "\nendobj\n\n"

// render builds the String form of a composite object from its WriteInto.
func render(o Object) string {
	buf := make([]byte, o.SizeInBytes())
	o.WriteInto(buf, 0)
	return string(buf)
}
