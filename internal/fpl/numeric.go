package fpl

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Flex is a numeric field that the upstream API sends either as a JSON number
// or as a stringified number ("4.5"). Values that fail to parse decode as 0.
type Flex float64

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = 0
			return nil
		}
		*f = Flex(ParseFloat(s))
		return nil
	}
	*f = Flex(ParseFloat(string(b)))
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Float())
}

func (f Flex) Float() float64 {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (f Flex) Int() int {
	return int(math.Round(f.Float()))
}

// ParseFloat coerces s to a finite float64, returning 0 for anything else.
func ParseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
