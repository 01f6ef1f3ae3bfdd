package stats

import (
	"math"

	"github.com/arloliu/onebrc/fixedpoint"
)

// Aggregate accumulates the measurements of a single key.
//
// All values are scaled by fixedpoint.Scale. Once Count > 0, MinScaled <= MaxScaled.
type Aggregate struct {
	MinScaled int64
	MaxScaled int64
	SumScaled int64
	Count     uint32
}

// NewAggregate returns the identity aggregate: merging it into another
// aggregate, or merging another aggregate into it, is a no-op.
func NewAggregate() Aggregate {
	return Aggregate{
		MinScaled: math.MaxInt64,
		MaxScaled: math.MinInt64,
	}
}

// Add records one scaled measurement.
func (a *Aggregate) Add(v int64) {
	a.MinScaled = min(a.MinScaled, v)
	a.MaxScaled = max(a.MaxScaled, v)
	a.SumScaled += v
	a.Count++
}

// Merge folds other into a elementwise.
//
// Count wraps past math.MaxUint32; callers combining unbounded inputs check
// CanMerge first, as Table.MergeChecked does.
func (a *Aggregate) Merge(other Aggregate) {
	a.MinScaled = min(a.MinScaled, other.MinScaled)
	a.MaxScaled = max(a.MaxScaled, other.MaxScaled)
	a.SumScaled += other.SumScaled
	a.Count += other.Count
}

// CanMerge reports whether merging other into a keeps Count within uint32.
func (a Aggregate) CanMerge(other Aggregate) bool {
	return uint64(a.Count)+uint64(other.Count) <= math.MaxUint32
}

// IsEmpty reports whether no measurement has been added.
func (a Aggregate) IsEmpty() bool {
	return a.Count == 0
}

// Min returns the smallest measurement.
func (a Aggregate) Min() float64 {
	return fixedpoint.Float(a.MinScaled)
}

// Max returns the largest measurement.
func (a Aggregate) Max() float64 {
	return fixedpoint.Float(a.MaxScaled)
}

// Mean returns the arithmetic mean of the measurements, or NaN if there are none.
func (a Aggregate) Mean() float64 {
	if a.Count == 0 {
		return math.NaN()
	}

	return float64(a.SumScaled) / float64(a.Count) / fixedpoint.Scale
}

// MeanScaled returns the mean as a scaled value rounded half toward positive
// infinity. It is what the result line prints.
func (a Aggregate) MeanScaled() int64 {
	if a.Count == 0 {
		return 0
	}

	return fixedpoint.RoundDiv(a.SumScaled, int64(a.Count))
}
