package core

import (
	"fmt"
	"slices"
)

// Header is the %PDF-M.m file header.
type Header struct {
	Major int
	Minor int
}

// DefaultHeader is the version new documents declare.
var DefaultHeader = Header{Major: 1, Minor: 7}

// headerMarker follows the version line. Bytes with the high bit set tell
// transfer tools the file is binary.
const headerMarker = "%\x81\x81\x81\x81\n"

func (h Header) String() string {
	return fmt.Sprintf("%%PDF-%d.%d\n%s", h.Major, h.Minor, headerMarker)
}

// SizeInBytes returns the size of the version line plus the marker line.
func (h Header) SizeInBytes() int { return len(h.String()) }

func (h Header) WriteInto(buf []byte, offset int) int {
	return copy(buf[offset:], h.String())
}

// Trailer holds the document-level entries written to the trailer
// dictionary (or the cross-reference stream dictionary).
type Trailer struct {
	Root    Object
	Encrypt Object
	Info    Object
	ID      Object
}

// Entries returns the non-nil trailer entries in their canonical order.
func (t Trailer) Entries() []DictEntry {
	var out []DictEntry
	add := func(k Name, v Object) {
		if v != nil {
			out = append(out, DictEntry{Key: k, Value: v})
		}
	}
	add("Root", t.Root)
	add("Encrypt", t.Encrypt)
	add("Info", t.Info)
	add("ID", t.ID)
	return out
}

// update takes every trailer key present in d. Later trailers, from
// incremental updates, override earlier ones.
func (t *Trailer) update(d *Dict) {
	set := func(dst *Object, key Name) {
		if v := d.Get(key); v != nil {
			*dst = v
		}
	}
	set(&t.Root, "Root")
	set(&t.Encrypt, "Encrypt")
	set(&t.Info, "Info")
	set(&t.ID, "ID")
}

// Context owns the indirect objects of one document.
//
// A Context is not safe for concurrent use. One call chain owns it across
// load, edit and save.
type Context struct {
	Header  Header
	Trailer Trailer

	objects map[IndirectRef]Object
	largest uint32
}

// NewContext creates an empty context. The first allocated object number is 1.
func NewContext() *Context {
	return &Context{
		Header:  DefaultHeader,
		objects: make(map[IndirectRef]Object),
	}
}

// Register stores obj under the next object number and returns its reference.
func (c *Context) Register(obj Object) IndirectRef {
	ref := c.NextRef()
	c.objects[ref] = orNull(obj)
	return ref
}

// NextRef allocates an object number without storing anything under it. The
// caller fills it later with Assign. It panics with *ObjectNumberError once
// MaxObjectNumber has been handed out.
func (c *Context) NextRef() IndirectRef {
	if c.largest >= MaxObjectNumber {
		panic(&ObjectNumberError{Number: uint64(c.largest) + 1})
	}
	c.largest++
	return Ref(c.largest)
}

// Assign stores obj at ref, replacing any existing entry. A number above
// MaxObjectNumber panics with *ObjectNumberError.
func (c *Context) Assign(ref IndirectRef, obj Object) {
	if ref.Number > MaxObjectNumber {
		panic(&ObjectNumberError{Number: uint64(ref.Number)})
	}
	c.reserve(ref.Number)
	c.objects[ref] = orNull(obj)
}

// reserve keeps future allocations above num without storing anything.
func (c *Context) reserve(num uint32) {
	if num > c.largest {
		c.largest = num
	}
}

// Delete removes the entry at ref and reports whether it existed.
func (c *Context) Delete(ref IndirectRef) bool {
	if _, ok := c.objects[ref]; !ok {
		return false
	}
	delete(c.objects, ref)
	return true
}

// Lookup dereferences obj. Direct objects are returned unchanged; a reference
// that is not registered yields *ObjectNotFoundError.
func (c *Context) Lookup(obj Object) (Object, error) {
	ref, ok := obj.(IndirectRef)
	if !ok {
		return obj, nil
	}
	target, ok := c.objects[ref]
	if !ok {
		return nil, &ObjectNotFoundError{Ref: ref}
	}
	return target, nil
}

// LookupMaybe is Lookup that reports absence instead of failing.
func (c *Context) LookupMaybe(obj Object) (Object, bool) {
	target, err := c.Lookup(obj)
	return target, err == nil
}

func orNull(obj Object) Object {
	if obj == nil {
		return Null{}
	}
	return obj
}

// LookupAs dereferences obj and asserts the result is a T.
//
//	pages, err := core.LookupAs[*core.Dict](ctx, catalog.Get("Pages"))
func LookupAs[T Object](c *Context, obj Object) (T, error) {
	var zero T
	target, err := c.Lookup(obj)
	if err != nil {
		return zero, err
	}
	typed, ok := target.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: zero.Type(), Actual: target.Type()}
	}
	return typed, nil
}

// Len returns the number of registered objects.
func (c *Context) Len() int { return len(c.objects) }

// LargestObjectNumber returns the highest object number allocated so far.
func (c *Context) LargestObjectNumber() uint32 { return c.largest }

// EnumerateIndirectObjects returns every registered object, ascending by
// object number then generation.
func (c *Context) EnumerateIndirectObjects() []IndirectObject {
	out := make([]IndirectObject, 0, len(c.objects))
	for ref, obj := range c.objects {
		out = append(out, IndirectObject{Ref: ref, Object: obj})
	}
	slices.SortFunc(out, func(a, b IndirectObject) int {
		switch {
		case a.Ref.Less(b.Ref):
			return -1
		case b.Ref.Less(a.Ref):
			return 1
		}
		return 0
	})
	return out
}
