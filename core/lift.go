package core

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// KV is one entry of an ordered literal dictionary passed to Obj.
type KV struct {
	Key   string
	Value any
}

// Obj lifts a native Go value into the object graph.
//
//	nil                      Null
//	bool                     Bool
//	integer and float kinds  Number
//	string                   Name
//	[]byte                   String
//	time.Time                date String
//	[]KV                     Dict, in the given order
//	map[string]any           Dict, keys sorted
//	other slices and arrays  Array
//
// Object values, including IndirectRef, pass through unchanged.
func (c *Context) Obj(v any) (Object, error) {
	return lift(v)
}

// MustObj is Obj for literals known to be valid; it panics on error.
func (c *Context) MustObj(v any) Object {
	obj, err := lift(v)
	if err != nil {
		panic(err)
	}
	return obj
}

func lift(v any) (Object, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Object:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return Name(v), nil
	case []byte:
		return NewString(v), nil
	case time.Time:
		return NewDateString(v), nil
	case int:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint32:
		return Number(v), nil
	case float64:
		return NewNumber(v)
	case []KV:
		d := NewDict()
		for _, kv := range v {
			obj, err := lift(kv.Value)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", kv.Key, err)
			}
			d.Set(Name(kv.Key), obj)
		}
		return d, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := NewDict()
		for _, k := range keys {
			obj, err := lift(v[k])
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			d.Set(Name(k), obj)
		}
		return d, nil
	}
	return liftReflect(reflect.ValueOf(v))
}

// liftReflect handles the remaining numeric kinds and generic slices.
func liftReflect(rv reflect.Value) (Object, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return NewNumber(rv.Float())
	case reflect.Slice, reflect.Array:
		arr := make(Array, rv.Len())
		for i := range arr {
			obj, err := lift(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			arr[i] = obj
		}
		return arr, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return lift(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("cannot convert %s to a PDF object", rv.Type())
}
