package types

import (
	"fmt"
	"math"
	"time"
)

// Index is an ordered, strictly increasing list of timezone-aware timestamps.
// Every series handled by the forecast pipeline is aligned to one Index.
type Index []time.Time

// NewIndex validates that times are strictly increasing and returns them as an Index.
func NewIndex(times []time.Time) (Index, error) {
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("%w: timestamps not strictly increasing at position %d (%s after %s)",
				ErrInputValidation, i, times[i].Format(time.RFC3339), times[i-1].Format(time.RFC3339))
		}
	}
	return Index(times), nil
}

// DateRange builds a regular index from start to end inclusive.
func DateRange(start, end time.Time, step time.Duration) (Index, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: non-positive step %s", ErrInputValidation, step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInputValidation,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	var idx Index
	for t := start; !t.After(end); t = t.Add(step) {
		idx = append(idx, t)
	}
	return idx, nil
}

// Len returns the number of timestamps.
func (idx Index) Len() int { return len(idx) }

// Equal reports whether both indexes hold the same instants in the same order.
func (idx Index) Equal(other Index) bool {
	if len(idx) != len(other) {
		return false
	}
	for i := range idx {
		if !idx[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// In returns a copy of the index converted to loc.
func (idx Index) In(loc *time.Location) Index {
	out := make(Index, len(idx))
	for i, t := range idx {
		out[i] = t.In(loc)
	}
	return out
}

// Series is a float64 time series. NaN marks a missing sample.
type Series struct {
	Index  Index
	Values []float64
}

// NewSeries pairs values with an index. The lengths must match.
func NewSeries(idx Index, values []float64) (Series, error) {
	if len(idx) != len(values) {
		return Series{}, fmt.Errorf("%w: series has %d values for %d timestamps",
			ErrInputValidation, len(values), len(idx))
	}
	return Series{Index: idx, Values: values}, nil
}

// Constant returns a series holding v at every timestamp of idx.
func Constant(idx Index, v float64) Series {
	values := make([]float64, len(idx))
	for i := range values {
		values[i] = v
	}
	return Series{Index: idx, Values: values}
}

// Missing returns an all-NaN series on idx.
func Missing(idx Index) Series {
	return Constant(idx, math.NaN())
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Values) }

// IsZero reports whether the series was never set.
func (s Series) IsZero() bool { return s.Index == nil && s.Values == nil }

// At returns the value at position i.
func (s Series) At(i int) float64 { return s.Values[i] }

// Map returns a new series with f applied to every value.
func (s Series) Map(f func(float64) float64) Series {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = f(v)
	}
	return Series{Index: s.Index, Values: out}
}

// NamedSeries labels a series for validation messages.
type NamedSeries struct {
	Name   string
	Series Series
}

// AlignedTo returns an error unless s shares idx.
func (s Series) AlignedTo(idx Index, name string) error {
	if !s.Index.Equal(idx) {
		return fmt.Errorf("%w: series %q is not aligned to the working time index (%d vs %d samples)",
			ErrInputValidation, name, len(s.Index), len(idx))
	}
	return nil
}
