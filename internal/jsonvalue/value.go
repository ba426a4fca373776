// Package jsonvalue provides an immutable, order-preserving JSON value type.
// Report payloads are untyped JSON documents; modelling them as a tagged union
// lets the report utilities pattern-match over every shape without panicking.
package jsonvalue

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	// KindNull is JSON null. It is also what an absent key yields.
	KindNull Kind = iota
	// KindBool is true or false
	KindBool
	// KindNumber is a JSON number, kept as its literal text
	KindNumber
	// KindString is a JSON string
	KindString
	// KindArray is an ordered list of values
	KindArray
	// KindObject is an ordered mapping from string keys to values
	KindObject
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	s    string // string payload, or number literal
	arr  []Value
	obj  *Object
}

// Member is a single key/value pair of an Object
type Member struct {
	Key   string
	Value Value
}

// Object is an ordered JSON object.
// Members keep document order; a duplicate key keeps its first position and the last value.
type Object struct {
	members []Member
	index   map[string]int
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a number value from its literal text.
// The literal is not validated; use Parse for untrusted input.
func Number(literal string) Value { return Value{kind: KindNumber, s: literal} }

// Int returns a number value for an integer
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// Float returns a number value for a float, formatted in its shortest form
func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'f', -1, 64)) }

// Array returns an array value holding the given items
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// NewObject returns an object value built from members in order
func NewObject(members ...Member) Value {
	obj := &Object{index: make(map[string]int, len(members))}
	for _, m := range members {
		obj.set(m.Key, m.Value)
	}
	return Value{kind: KindObject, obj: obj}
}

// M is shorthand for building a Member
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

func (o *Object) set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Len returns the number of members
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Members returns the members in document order.
// The returned slice must not be modified.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return o.members
}

// Keys returns the keys in document order
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the value for key and whether it was present
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.members[i].Value, true
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is an array or an object
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// Bool returns the boolean payload (false for other kinds)
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Str returns the string payload ("" for other kinds)
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// NumberText returns the literal text of a number ("" for other kinds)
func (v Value) NumberText() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.s
}

// Float64 returns the numeric value of a number and whether it parsed
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	return f, err == nil
}

// Items returns the array items (nil for other kinds).
// The returned slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the object payload (nil for other kinds)
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Get returns the member value for key, or null when v is not an object or the key is absent
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Value{}
	}
	val, _ := v.obj.Get(key)
	return val
}

// Len returns the number of items, members, or string bytes; 0 otherwise
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// Truthy mirrors loose truthiness: null, false, 0, NaN-like zero literals and "" are falsy
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		f, ok := v.Float64()
		return ok && f != 0
	case KindString:
		return v.s != ""
	default:
		return true
	}
}

// Interface converts v to plain Go values: nil, bool, json.Number, string,
// []any and map[string]any. Object order is lost in the conversion.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return json.Number(v.s)
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for _, m := range v.obj.Members() {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts plain Go values into a Value.
// Maps are converted with their keys sorted so the result is deterministic.
// Unsupported types are round-tripped through encoding/json.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return Number(t.String())
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case int32:
		return Int(int64(t))
	case uint:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return Number(strconv.FormatUint(t, 10))
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = String(item)
		}
		return Array(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: FromAny(t[k])}
		}
		return NewObject(members...)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return Null()
		}
		v, err := Parse(data)
		if err != nil {
			return Null()
		}
		return v
	}
}
