package js

import "sort"

type field struct {
	key string
	val Value
}

// Object is an associative mapping from unique string keys to Values.
// Iteration is always in lexicographic key order, not insertion order;
// diagnostic rendering and serialization both depend on that ordering.
//
// Storage is a sorted field slice, giving logarithmic lookup and ordered
// iteration without a separate index.
type Object struct {
	fields []field
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{}
}

// ObjectOf creates an object from a map. The result iterates in sorted
// key order regardless of the map's own ordering.
func ObjectOf(entries map[string]Value) *Object {
	o := &Object{fields: make([]field, 0, len(entries))}
	for k, v := range entries {
		o.fields = append(o.fields, field{key: k, val: v})
	}
	sort.Slice(o.fields, func(i, j int) bool {
		return o.fields[i].key < o.fields[j].key
	})
	return o
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.fields)
}

// search returns the insertion index for key.
func (o *Object) search(key string) int {
	return sort.Search(len(o.fields), func(i int) bool {
		return o.fields[i].key >= key
	})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	i := o.search(key)
	if i < len(o.fields) && o.fields[i].key == key {
		return o.fields[i].val, true
	}
	return Value{}, false
}

// Has returns true if key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores val under key, replacing any existing entry.
func (o *Object) Set(key string, val Value) {
	i := o.search(key)
	if i < len(o.fields) && o.fields[i].key == key {
		o.fields[i].val = val
		return
	}
	o.fields = append(o.fields, field{})
	copy(o.fields[i+1:], o.fields[i:])
	o.fields[i] = field{key: key, val: val}
}

// Delete removes key, reporting whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.search(key)
	if i < len(o.fields) && o.fields[i].key == key {
		o.fields = append(o.fields[:i], o.fields[i+1:]...)
		return true
	}
	return false
}

// Keys returns the keys in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.key
	}
	return keys
}

// Each calls fn for every entry in sorted key order. Returning false
// from fn stops the walk.
func (o *Object) Each(fn func(key string, val Value) bool) {
	for _, f := range o.fields {
		if !fn(f.key, f.val) {
			return
		}
	}
}

// copy returns a deep copy of the object.
func (o *Object) copy() *Object {
	out := &Object{fields: make([]field, len(o.fields))}
	for i, f := range o.fields {
		out.fields[i] = field{key: f.key, val: f.val.Copy()}
	}
	return out
}
