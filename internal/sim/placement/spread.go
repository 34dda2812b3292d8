package placement

import (
	"fmt"
	"math"
	"strings"
)

// SpreadType is the distribution used to pick a cell's in-cell offset.
type SpreadType string

const (
	Linear       SpreadType = "LINEAR"
	Triangular   SpreadType = "TRIANGULAR"
	EdgeBiased   SpreadType = "EDGE_BIASED"
	CornerBiased SpreadType = "CORNER_BIASED"
	Gaussian     SpreadType = "GAUSSIAN"
	FixedCenter  SpreadType = "FIXED_CENTER"
)

var spreadTypes = []SpreadType{Linear, Triangular, EdgeBiased, CornerBiased, Gaussian, FixedCenter}

// SpreadTypes lists every supported distribution.
func SpreadTypes() []SpreadType {
	return append([]SpreadType(nil), spreadTypes...)
}

// ParseSpread accepts the spread names case-insensitively.
func ParseSpread(s string) (SpreadType, error) {
	v := SpreadType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range spreadTypes {
		if v == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSpread, s)
}

func (t SpreadType) Valid() bool {
	_, err := ParseSpread(string(t))
	return err == nil
}

// offset draws one axis offset in [0, n). Axes are drawn X first, then Z,
// each axis consuming all of its draws before the next starts.
func (t SpreadType) offset(r *Random, n int) int {
	switch t {
	case Triangular:
		a := r.NextInt(n)
		b := r.NextInt(n)
		return (a + b) / 2
	case EdgeBiased:
		a := r.NextInt(n)
		b := r.NextInt(n)
		if 2*a < n {
			return min(a, b)
		}
		return max(a, b)
	case CornerBiased:
		a := r.NextInt(n)
		b := r.NextInt(n)
		if absInt(2*a-n) >= absInt(2*b-n) {
			return a
		}
		return b
	case Gaussian:
		mean := float64(n) / 2
		v := int(math.Floor(mean + r.NextGaussian()*float64(n)/6))
		if v < 0 {
			return 0
		}
		if v >= n {
			return n - 1
		}
		return v
	case FixedCenter:
		return n / 2
	default:
		return r.NextInt(n)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
