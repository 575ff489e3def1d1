package marshal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ToJSON renders a decoded tree as indented JSON. Map keys serialize in
// sorted order, so output is deterministic.
func ToJSON(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromJSON parses JSON into the tree form Encode accepts. Numbers without a
// fraction or exponent become int64 so Ruby fixnums survive the round trip
// instead of degrading to floats.
func FromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return normalizeNumbers(value)
}

func normalizeNumbers(value any) (any, error) {
	switch v := value.(type) {
	case json.Number:
		text := v.String()
		if !strings.ContainsAny(text, ".eE") {
			n, err := v.Int64()
			if err != nil {
				return nil, fmt.Errorf("integer %q overflows int64", text)
			}
			return n, nil
		}
		return v.Float64()
	case []any:
		for i, element := range v {
			normalized, err := normalizeNumbers(element)
			if err != nil {
				return nil, err
			}
			v[i] = normalized
		}
		return v, nil
	case map[string]any:
		for key, element := range v {
			normalized, err := normalizeNumbers(element)
			if err != nil {
				return nil, err
			}
			v[key] = normalized
		}
		return v, nil
	default:
		return value, nil
	}
}
