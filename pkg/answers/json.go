package answers

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalJSON serialises the map as the flat interchange object: strings,
// numbers, and string arrays keyed by field id. Nil values are skipped, the
// same as the nulls UnmarshalJSON drops; empty-but-present values ("", empty
// arrays) are kept so drafts round-trip.
func (m Map) MarshalJSON() ([]byte, error) {
	plain := make(map[string]any, len(m))
	for id, value := range m {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case Number:
			plain[id] = float64(v)
		case Multi:
			plain[id] = []string(v)
		default:
			plain[id] = value.String()
		}
	}
	return json.Marshal(plain)
}

// UnmarshalJSON decodes the flat interchange object. JSON strings become
// Text, numbers become Number, arrays become Multi; nulls are dropped. File
// answers come back as Text, which is deliberate: downstream code only ever
// checks attachments for emptiness.
func (m *Map) UnmarshalJSON(data []byte) error {
	var plain map[string]any
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("answers: decode map: %w", err)
	}

	out := make(Map, len(plain))
	for id, raw := range plain {
		value, err := fromAny(raw)
		if err != nil {
			return fmt.Errorf("answers: field %q: %w", id, err)
		}
		if value != nil {
			out[id] = value
		}
	}
	*m = out
	return nil
}

func fromAny(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return Text(v), nil
	case float64:
		return Number(v), nil
	case bool:
		return Text(strconv.FormatBool(v)), nil
	case []any:
		items := make(Multi, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("array values must be strings, got %T", item)
			}
			items = append(items, s)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}
