package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Wrappers for JSON-shaped context values. pongo2 prints through
// fmt.Stringer before falling back to its own formatting, so these keep
// their underlying kind for truthiness, iteration and attribute access
// while printing the way JSON spells them.
type (
	number  float64
	boolean bool
	list    []any
	object  map[string]any
)

func (n number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

func (b boolean) String() string { return strconv.FormatBool(bool(b)) }

func (l list) String() string { return jsonText(plainValue(l)) }

func (o object) String() string { return jsonText(plainValue(o)) }

func jsonText(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// templateValue copies a JSON-shaped value into its template form. Integral
// floats become int64 so they compare equal to integer literals.
func templateValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x >= -1<<53 && x <= 1<<53 && x == float64(int64(x)) {
			return int64(x)
		}
		return number(x)
	case bool:
		return boolean(x)
	case map[string]any:
		out := make(object, len(x))
		for k, val := range x {
			out[k] = templateValue(val)
		}
		return out
	case []any:
		out := make(list, len(x))
		for i, val := range x {
			out[i] = templateValue(val)
		}
		return out
	default:
		return v
	}
}

// plainValue reverses templateValue for values leaving the engine.
func plainValue(v any) any {
	switch x := v.(type) {
	case number:
		return float64(x)
	case boolean:
		return bool(x)
	case object:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = plainValue(val)
		}
		return out
	case list:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = plainValue(val)
		}
		return out
	default:
		return v
	}
}
