// internal/models/record.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// RecordIDKey is the payload key holding the record id. No field may use it as its ID.
const RecordIDKey = "id"

// GeneratedRecord is one synthetic response. Values hold string, int or []string keyed by field ID.
type GeneratedRecord struct {
	ID     string
	Values map[string]any
}

// MarshalJSON writes the flat form {"id": ..., "<fieldId>": value, ...} with field keys sorted.
func (r GeneratedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + RecordIDKey + `":`)
	buf.Write(id)

	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		if k == RecordIDKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key, _ := json.Marshal(k)
		val, err := json.Marshal(r.Values[k])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the flat form back, restoring ints and string lists.
func (r *GeneratedRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	r.Values = make(map[string]any, len(raw))
	for k, v := range raw {
		if k == RecordIDKey {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("record id must be a string")
			}
			r.ID = s
			continue
		}
		switch val := v.(type) {
		case json.Number:
			n, err := val.Int64()
			if err != nil {
				return fmt.Errorf("field %s: %w", k, err)
			}
			r.Values[k] = int(n)
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, fmt.Sprint(item))
			}
			r.Values[k] = items
		default:
			r.Values[k] = val
		}
	}
	return nil
}
