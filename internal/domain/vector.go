package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrCorruptVector signals a stored vector that cannot be used for scoring.
var ErrCorruptVector = errors.New("corrupt vector")

// ValidateVector reports whether v is usable for cosine scoring:
// non-empty, finite, and not all zeros.
func ValidateVector(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty", ErrCorruptVector)
	}
	var norm float64
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite value at %d", ErrCorruptVector, i)
		}
		norm += f * f
	}
	if norm == 0 {
		return fmt.Errorf("%w: zero norm", ErrCorruptVector)
	}
	return nil
}

// Cosine returns the cosine similarity of a and b, clamped to [-1, 1].
// Vectors must have equal length; a zero-norm input yields 0.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}
