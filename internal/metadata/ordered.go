package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// orderedRecords is a key to record map that remembers insertion order and
// keeps it through a JSON round trip.
type orderedRecords struct {
	keys  []string
	items map[string]Record
}

func newOrderedRecords() *orderedRecords {
	return &orderedRecords{items: make(map[string]Record)}
}

func (o *orderedRecords) get(key string) (Record, bool) {
	rec, ok := o.items[key]
	return rec, ok
}

// set stores rec at key. Existing keys keep their position.
func (o *orderedRecords) set(key string, rec Record) {
	if _, exists := o.items[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.items[key] = rec
}

// rename moves the record at oldKey to newKey without changing its position.
func (o *orderedRecords) rename(oldKey, newKey string, rec Record) {
	for i, k := range o.keys {
		if k == oldKey {
			o.keys[i] = newKey
			break
		}
	}
	delete(o.items, oldKey)
	o.items[newKey] = rec
}

func (o *orderedRecords) remove(key string) {
	if _, exists := o.items[key]; !exists {
		return
	}
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	delete(o.items, key)
}

func (o *orderedRecords) len() int {
	return len(o.keys)
}

func (o *orderedRecords) orderedKeys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *orderedRecords) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.items[key].normalized())
		if err != nil {
			return nil, fmt.Errorf("marshal record %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *orderedRecords) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata document must be a JSON object")
	}
	fresh := newOrderedRecords()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode record %q: %w", key, err)
		}
		fresh.set(key, rec.normalized())
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = *fresh
	return nil
}
