package core

// Array represents a PDF array
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string   { return render(a) }
func (Array) object()            {}

// SizeInBytes returns the size of "[a b c]".
func (a Array) SizeInBytes() int {
	size := 2
	for i, obj := range a {
		if i > 0 {
			size++
		}
		size += obj.SizeInBytes()
	}
	return size
}

func (a Array) WriteInto(buf []byte, offset int) int {
	start := offset
	buf[offset] = '['
	offset++
	for i, obj := range a {
		if i > 0 {
			buf[offset] = ' '
			offset++
		}
		offset += obj.WriteInto(buf, offset)
	}
	buf[offset] = ']'
	offset++
	return offset - start
}

// Len returns the length of the array
func (a Array) Len() int {
	return len(a)
}

// Get retrieves an element at the given index
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// Set replaces the element at index.
func (a Array) Set(index int, obj Object) error {
	if index < 0 || index >= len(a) {
		return &IndexOutOfBoundsError{Index: index, Len: len(a)}
	}
	a[index] = obj
	return nil
}

// Insert returns a copy of the array with obj inserted before index. An index
// equal to the length appends.
func (a Array) Insert(index int, obj Object) (Array, error) {
	if index < 0 || index > len(a) {
		return a, &IndexOutOfBoundsError{Index: index, Len: len(a)}
	}
	out := make(Array, 0, len(a)+1)
	out = append(out, a[:index]...)
	out = append(out, obj)
	return append(out, a[index:]...), nil
}

// Remove returns a copy of the array without the element at index.
func (a Array) Remove(index int) (Array, error) {
	if index < 0 || index >= len(a) {
		return a, &IndexOutOfBoundsError{Index: index, Len: len(a)}
	}
	out := make(Array, 0, len(a)-1)
	out = append(out, a[:index]...)
	return append(out, a[index+1:]...), nil
}

// GetNumber retrieves a number at the given index
func (a Array) GetNumber(index int) (Number, bool) {
	n, ok := a.Get(index).(Number)
	return n, ok
}

// GetName retrieves a name at the given index
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// DictEntry is one key/value pair of a dictionary.
type DictEntry struct {
	Key   Name
	Value Object
}

// Dict represents a PDF dictionary. Keys keep their insertion order.
type Dict struct {
	keys   []Name
	values map[Name]Object
}

// NewDict creates a dictionary holding entries in order.
func NewDict(entries ...DictEntry) *Dict {
	d := &Dict{values: make(map[Name]Object, len(entries))}
	for _, e := range entries {
		d.Set(e.Key, e.Value)
	}
	return d
}

func (d *Dict) Type() ObjectType { return ObjDict }
func (d *Dict) String() string   { return render(d) }
func (*Dict) object()            {}

// SizeInBytes returns the size of "<</Key value /Key value>>".
func (d *Dict) SizeInBytes() int {
	size := 4
	for i, key := range d.keys {
		if i > 0 {
			size++
		}
		size += key.SizeInBytes() + 1 + d.values[key].SizeInBytes()
	}
	return size
}

func (d *Dict) WriteInto(buf []byte, offset int) int {
	start := offset
	offset += copy(buf[offset:], "<<")
	for i, key := range d.keys {
		if i > 0 {
			buf[offset] = ' '
			offset++
		}
		offset += key.WriteInto(buf, offset)
		buf[offset] = ' '
		offset++
		offset += d.values[key].WriteInto(buf, offset)
	}
	offset += copy(buf[offset:], ">>")
	return offset - start
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Get retrieves a value from the dictionary, or nil when absent.
func (d *Dict) Get(key Name) Object {
	if d == nil {
		return nil
	}
	return d.values[key]
}

// Has checks if a key exists in the dictionary
func (d *Dict) Has(key Name) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[key]
	return ok
}

// Set sets a value in the dictionary. A new key is appended after the
// existing ones; an existing key keeps its position. A nil value deletes.
func (d *Dict) Set(key Name, value Object) {
	if value == nil {
		d.Delete(key)
		return
	}
	if d.values == nil {
		d.values = make(map[Name]Object)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Delete removes a key from the dictionary
func (d *Dict) Delete(key Name) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns all keys in insertion order.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	keys := make([]Name, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Entries returns all entries in insertion order.
func (d *Dict) Entries() []DictEntry {
	if d == nil {
		return nil
	}
	entries := make([]DictEntry, len(d.keys))
	for i, k := range d.keys {
		entries[i] = DictEntry{Key: k, Value: d.values[k]}
	}
	return entries
}

// Clone returns a shallow copy of the dictionary.
func (d *Dict) Clone() *Dict {
	return NewDict(d.Entries()...)
}

// GetName retrieves a name value
func (d *Dict) GetName(key Name) (Name, bool) {
	n, ok := d.Get(key).(Name)
	return n, ok
}

// GetNumber retrieves a number value
func (d *Dict) GetNumber(key Name) (Number, bool) {
	n, ok := d.Get(key).(Number)
	return n, ok
}

// GetDict retrieves a dictionary value
func (d *Dict) GetDict(key Name) (*Dict, bool) {
	dict, ok := d.Get(key).(*Dict)
	return dict, ok
}

// GetArray retrieves an array value
func (d *Dict) GetArray(key Name) (Array, bool) {
	arr, ok := d.Get(key).(Array)
	return arr, ok
}

// GetString retrieves a literal string value
func (d *Dict) GetString(key Name) (String, bool) {
	s, ok := d.Get(key).(String)
	return s, ok
}

// GetBool retrieves a boolean value
func (d *Dict) GetBool(key Name) (Bool, bool) {
	b, ok := d.Get(key).(Bool)
	return b, ok
}

// GetStream retrieves a stream value
func (d *Dict) GetStream(key Name) (*Stream, bool) {
	s, ok := d.Get(key).(*Stream)
	return s, ok
}

// GetIndirectRef retrieves an indirect reference
func (d *Dict) GetIndirectRef(key Name) (IndirectRef, bool) {
	ref, ok := d.Get(key).(IndirectRef)
	return ref, ok
}
