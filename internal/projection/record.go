package projection

import (
	"bytes"
	"encoding/json"
)

// Record is an ordered field mapping produced by Project.
type Record struct {
	keys   []string
	values map[string]any
}

func newRecord(size int) *Record {
	return &Record{keys: make([]string, 0, size), values: make(map[string]any, size)}
}

func (r *Record) set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Keys returns the field names in output order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Get returns a field value and whether the field is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON writes the fields as an object in declaration order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
