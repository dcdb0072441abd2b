package ravendb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type docField struct {
	name  string
	value string
}

// Document is the wire representation of a stored record: named string
// fields in insertion order. RavenDB itself stores JSON; every value this
// binding writes is a string, and on read non-string values are flattened
// to their raw JSON text so field iteration always yields strings.
type Document struct {
	fields []docField
}

// Set appends the field, or replaces its value in place when the name is
// already present. Insertion order is preserved either way.
func (d *Document) Set(name, value string) {
	for i := range d.fields {
		if d.fields[i].name == name {
			d.fields[i].value = value
			return
		}
	}
	d.fields = append(d.fields, docField{name: name, value: value})
}

// Get returns the value stored under name.
func (d *Document) Get(name string) (string, bool) {
	for i := range d.fields {
		if d.fields[i].name == name {
			return d.fields[i].value, true
		}
	}
	return "", false
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// Each calls fn for every field in insertion order.
func (d *Document) Each(fn func(name, value string)) {
	for _, f := range d.fields {
		fn(f.name, f.value)
	}
}

// MarshalJSON encodes the document as a JSON object with fields emitted in
// insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order. String values
// are taken as-is; any other value type keeps its raw JSON text.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document is not a JSON object")
	}

	d.fields = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode document key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("document key is not a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode value of field %q: %w", key, err)
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(raw)
		}
		d.fields = append(d.fields, docField{name: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
