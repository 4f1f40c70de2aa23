package broute

import (
	"encoding/json"
	"net/textproto"
	"slices"
)

// Header is an ordered response header map. Keys are canonicalized ("content-type" becomes
// "Content-Type") and keep the order in which they were first set. The zero value is ready to use.
type Header struct {
	keys []string
	vals map[string][]string
}

// Set replaces the values for key.
func (h *Header) Set(key string, vals ...string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	if h.vals == nil {
		h.vals = map[string][]string{}
	}

	if _, ok := h.vals[key]; !ok {
		h.keys = append(h.keys, key)
	}

	h.vals[key] = slices.Clone(vals)
}

// Add appends a value to key.
func (h *Header) Add(key, val string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	h.Set(key, append(h.Values(key), val)...)
}

// Get returns the first value for key, or "".
func (h Header) Get(key string) string {
	if vals := h.Values(key); len(vals) > 0 {
		return vals[0]
	}

	return ""
}

// Values returns all values for key.
func (h Header) Values(key string) []string {
	return h.vals[textproto.CanonicalMIMEHeaderKey(key)]
}

// Has reports whether key was set.
func (h Header) Has(key string) bool {
	_, ok := h.vals[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

// Del removes key.
func (h *Header) Del(key string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	if _, ok := h.vals[key]; !ok {
		return
	}

	delete(h.vals, key)
	h.keys = slices.DeleteFunc(h.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (h Header) Keys() []string { return slices.Clone(h.keys) }

// Len returns the number of keys.
func (h Header) Len() int { return len(h.keys) }

// Clone returns a deep copy.
func (h Header) Clone() Header {
	var c Header
	for _, k := range h.keys {
		c.Set(k, h.vals[k]...)
	}

	return c
}

// MarshalJSON writes the header as an object with single values unwrapped.
func (h Header) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(h.keys))
	for _, k := range h.keys {
		if vals := h.vals[k]; len(vals) == 1 {
			obj[k] = vals[0]
		} else {
			obj[k] = vals
		}
	}

	return json.Marshal(obj)
}
