package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flatten turns a decoded JSON object into template values. Nested objects join
// keys with "_", scalar arrays become newline separated text and object arrays are
// indexed (items_0_name) with an extra items_count entry.
func Flatten(data map[string]any) map[string]string {
	out := make(map[string]string)
	for k, v := range data {
		flattenValue(out, k, v)
	}
	return out
}

func flattenValue(out map[string]string, key string, v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flattenValue(out, key+"_"+k, child)
		}
	case []any:
		if allScalars(t) {
			lines := make([]string, 0, len(t))
			for _, item := range t {
				lines = append(lines, scalarString(item))
			}
			out[key] = strings.Join(lines, "\n")
			return
		}
		out[key+"_count"] = strconv.Itoa(len(t))
		for i, item := range t {
			flattenValue(out, key+"_"+strconv.Itoa(i), item)
		}
	default:
		out[key] = scalarString(t)
	}
}

func allScalars(items []any) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// DecodeObject decodes a JSON object keeping numbers as written. An empty body
// is an empty object.
func DecodeObject(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
