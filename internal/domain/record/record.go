// Package record defines the schema-less row that every search mode
// operates on.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ReservedPrefix marks metadata fields that are never searched, scored or exported.
const ReservedPrefix = "_"

// IsReserved reports whether a field name is reserved metadata.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}

// Field is a single named value of a record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered mapping from field name to textual value.
// Field names are case-sensitive; insertion order is preserved.
type Record struct {
	fields []Field
	index  map[string]int
}

// New creates a record from fields in order. A repeated name keeps its
// first position and takes the last value.
func New(fields ...Field) Record {
	r := Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		r.put(f.Name, f.Value)
	}
	return r
}

// FromMap builds a record from names in the given order, reading values from m.
// Names absent from m are skipped.
func FromMap(order []string, m map[string]string) Record {
	fields := make([]Field, 0, len(order))
	for _, name := range order {
		if v, ok := m[name]; ok {
			fields = append(fields, Field{Name: name, Value: v})
		}
	}
	return New(fields...)
}

func (r *Record) put(name, value string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the value of a field and whether it exists.
func (r Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

// Has reports whether the record carries the field.
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Set returns a copy of the record with the field set. The receiver is unchanged.
func (r Record) Set(name, value string) Record {
	c := r.Clone()
	c.put(name, value)
	return c
}

// Clone returns an independent copy.
func (r Record) Clone() Record {
	return New(r.fields...)
}

// Strip returns a copy without reserved fields.
func (r Record) Strip() Record {
	fields := make([]Field, 0, len(r.fields))
	for _, f := range r.fields {
		if !IsReserved(f.Name) {
			fields = append(fields, f)
		}
	}
	return New(fields...)
}

// Equal reports whether two records hold the same fields in the same order.
func (r Record) Equal(o Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

// Columns returns the union of non-reserved field names in first-seen order.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range records {
		for _, f := range r.fields {
			if IsReserved(f.Name) {
				continue
			}
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// MarshalJSON encodes the record as an object, keeping field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.writeJSON(&buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendJSON writes the record as an object with extra raw members appended
// after the record's own fields.
func (r Record) AppendJSON(extra []RawMember) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.writeJSON(&buf, extra); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RawMember is a pre-encoded JSON object member.
type RawMember struct {
	Name  string
	Value json.RawMessage
}

func (r Record) writeJSON(buf *bytes.Buffer, extra []RawMember) error {
	buf.WriteByte('{')
	n := 0
	writeKey := func(name string) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encode key %q: %w", name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		return nil
	}
	for _, f := range r.fields {
		if err := writeKey(f.Name); err != nil {
			return err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("encode value of %q: %w", f.Name, err)
		}
		buf.Write(v)
	}
	for _, m := range extra {
		if err := writeKey(m.Name); err != nil {
			return err
		}
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON decodes an object keeping key order. Values are rendered as text:
// strings verbatim, numbers by their literal, booleans as true/false, null as
// an empty string and nested values as compact JSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode record: expected object, got %v", tok)
	}

	out := Record{index: make(map[string]int)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode record: non-string key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode value of %q: %w", key, err)
		}
		text, err := rawToText(raw)
		if err != nil {
			return fmt.Errorf("decode value of %q: %w", key, err)
		}
		out.put(key, text)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	*r = out
	return nil
}

func rawToText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case 'n':
		return "", nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(trimmed), nil
	}
}
