package domain

import (
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero norm", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateVector(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		name    string
		v       []float32
		wantErr bool
	}{
		{"ok", []float32{0.1, 0.2}, false},
		{"empty", []float32{}, true},
		{"nan", []float32{0.1, nan}, true},
		{"inf", []float32{inf}, true},
		{"zero", []float32{0, 0, 0}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateVector(tc.v)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateVector() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrCorruptVector) {
				t.Errorf("expected ErrCorruptVector, got %v", err)
			}
		})
	}
}

func TestDimMismatchError(t *testing.T) {
	err := error(&DimMismatchError{JobID: 9, Query: 384, Stored: 768})
	if !errors.Is(err, ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}
