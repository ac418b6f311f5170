package audio

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// TimeSeries pairs per-frame values with their time stamps in seconds
type TimeSeries[T any] struct {
	Times  []float64 `json:"times"`
	Values []T       `json:"values"`
}

// NewTimeSeries builds a series, rejecting mismatched lengths
func NewTimeSeries[T any](times []float64, values []T) (TimeSeries[T], error) {
	if len(times) != len(values) {
		return EmptySeries[T](), fmt.Errorf("time series length mismatch: %d times, %d values",
			len(times), len(values))
	}
	if times == nil {
		times = []float64{}
	}
	if values == nil {
		values = []T{}
	}
	return TimeSeries[T]{Times: times, Values: values}, nil
}

// EmptySeries returns a series with no data. It serializes as empty arrays.
func EmptySeries[T any]() TimeSeries[T] {
	return TimeSeries[T]{Times: []float64{}, Values: []T{}}
}

// Len returns the number of points
func (ts TimeSeries[T]) Len() int {
	return len(ts.Times)
}

// IsEmpty reports whether the series carries no data
func (ts TimeSeries[T]) IsEmpty() bool {
	return len(ts.Times) == 0
}

// Sorted returns a copy ordered by time. Equal times keep their order.
func Sorted(ts TimeSeries[float64]) TimeSeries[float64] {
	idx := make([]int, ts.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return ts.Times[idx[a]] < ts.Times[idx[b]]
	})

	out := TimeSeries[float64]{
		Times:  make([]float64, len(idx)),
		Values: make([]float64, len(idx)),
	}
	for i, j := range idx {
		out.Times[i] = ts.Times[j]
		out.Values[i] = ts.Values[j]
	}
	return out
}

// Interpolate resamples src onto grid with piecewise linear interpolation.
// Points outside the source range take the nearest endpoint value, and
// duplicate source times collapse to the last value seen.
func Interpolate(src TimeSeries[float64], grid []float64) []float64 {
	out := make([]float64, len(grid))
	if src.IsEmpty() {
		return out
	}

	sorted := Sorted(src)
	xs := make([]float64, 0, sorted.Len())
	ys := make([]float64, 0, sorted.Len())
	for i, t := range sorted.Times {
		if n := len(xs); n > 0 && xs[n-1] == t {
			ys[n-1] = sorted.Values[i]
			continue
		}
		xs = append(xs, t)
		ys = append(ys, sorted.Values[i])
	}

	if len(xs) == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
				return out
	}
	for i, x := range grid {
		out[i] = pl.Predict(x)
	}
	return out
}
