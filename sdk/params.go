package sdk

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Params are request parameters in the form the H2O REST API expects:
// lists are written as JSON arrays (["a","b"]), booleans in lowercase,
// nil values are left out.
type Params map[string]any

// Encode converts p to url.Values.
func (p Params) Encode() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		if s, ok := formatParam(v); ok {
			values.Set(k, s)
		}
	}
	return values
}

func formatParam(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case []string:
		return formatList(v)
	case []int:
		return formatList(v)
	case []float64:
		return formatList(v)
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// formatList writes a list as a JSON array. A nil list is left out.
func formatList[T string | int | float64](v []T) (string, bool) {
	if v == nil {
		return "", false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}
