package floatutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, -1, 1, 0.5},
		{2, -1, 1, 1},
		{-3, -1, 1, -1},
		{math.Inf(1), 0, 0.08, 0.08},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("clip(%v, %v, %v): expected %v, got %v", test.value,
				test.min, test.max, test.want, got)
		}
		interval := r1.Interval{Min: test.min, Max: test.max}
		if got := ClipInterval(test.value, interval); got != test.want {
			t.Errorf("clipInterval(%v, %v): expected %v, got %v", test.value,
				interval, test.want, got)
		}
	}
}

func TestClipSlice(t *testing.T) {
	values := []float64{-2, -0.5, 0, 3}
	got := ClipSlice(values, -1, 1)

	if want := []float64{-1, -0.5, 0, 1}; !floats.Equal(got, want) {
		t.Errorf("clipSlice: expected %v, got %v", want, got)
	}
	if values[0] != -2 {
		t.Error("clipSlice: input was modified")
	}
}
