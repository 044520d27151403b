package trend

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Progression maps an experience midpoint in years to an average salary.
type Progression map[float64]float64

// MarshalJSON renders keys as decimals in ascending order. Whole years keep
// one fractional digit ("4.0", "4.5").
func (p Progression) MarshalJSON() ([]byte, error) {
	keys := make([]float64, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(midpointKey(k))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

func midpointKey(k float64) string {
	s := strconv.FormatFloat(k, 'f', -1, 64)
	if k == math.Trunc(k) && !math.IsInf(k, 0) {
		s += ".0"
	}
	return s
}

// Trend is the salary analysis for one job title.
type Trend struct {
	Progression Progression        `json:"progression"`
	Location    map[string]float64 `json:"location"`
}

// RegionPolicy maps a raw bucket key to the key it is merged into.
// Returning the input unchanged keeps the bucket standalone.
type RegionPolicy func(location string) string

// TrailingRegion treats anything longer than two characters as a full
// address and keys it by its last two characters, e.g. "San Francisco, CA"
// becomes "CA". It does not check that the result is a real region code.
func TrailingRegion(location string) string {
	r := []rune(location)
	if len(r) > 2 {
		return string(r[len(r)-2:])
	}
	return location
}
