package sdk

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Number is a float that also accepts the "NaN", "Infinity" and "-Infinity"
// strings and null the server uses for non-finite values.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN", "":
			*n = Number(math.NaN())
		case "Infinity":
			*n = Number(math.Inf(1))
		case "-Infinity":
			*n = Number(math.Inf(-1))
		default:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("decode number %q: %w", s, err)
			}
			*n = Number(f)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// IsNaN reports whether n is not a number.
func (n Number) IsNaN() bool {
	return math.IsNaN(float64(n))
}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', 6, 64)
}
