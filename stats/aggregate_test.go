package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAggregate_Identity(t *testing.T) {
	a := NewAggregate()
	require.True(t, a.IsEmpty())
	require.True(t, math.IsNaN(a.Mean()))
	require.Zero(t, a.MeanScaled())

	b := NewAggregate()
	b.Add(123)
	b.Add(-45)

	merged := b
	merged.Merge(NewAggregate())
	require.Equal(t, b, merged, "merging the identity must be a no-op")

	id := NewAggregate()
	id.Merge(b)
	require.Equal(t, b, id, "merging into the identity must copy")
}

func TestAggregate_Add(t *testing.T) {
	a := NewAggregate()
	a.Add(123)
	a.Add(-45)

	require.Equal(t, Aggregate{MinScaled: -45, MaxScaled: 123, SumScaled: 78, Count: 2}, a)
	require.InDelta(t, -4.5, a.Min(), 1e-12)
	require.InDelta(t, 12.3, a.Max(), 1e-12)
	require.InDelta(t, 3.9, a.Mean(), 1e-12)
	require.Equal(t, int64(39), a.MeanScaled())
}

func TestAggregate_MinMeanMaxOrder(t *testing.T) {
	values := []int64{-999, 0, 17, 999, -1, 250, 250, -3}
	a := NewAggregate()
	for _, v := range values {
		a.Add(v)
		require.LessOrEqual(t, a.MinScaled, a.MeanScaled())
		require.LessOrEqual(t, a.MeanScaled(), a.MaxScaled)
		require.LessOrEqual(t, a.Min(), a.Mean())
		require.LessOrEqual(t, a.Mean(), a.Max())
	}
	require.Equal(t, uint32(len(values)), a.Count)
}

func TestAggregate_MergeCommutativeAssociative(t *testing.T) {
	mk := func(vs ...int64) Aggregate {
		a := NewAggregate()
		for _, v := range vs {
			a.Add(v)
		}

		return a
	}
	x, y, z := mk(1, 2, 3), mk(-50, 7), mk(999)

	xy := x
	xy.Merge(y)
	yx := y
	yx.Merge(x)
	require.Equal(t, xy, yx)

	left := xy
	left.Merge(z)
	yz := y
	yz.Merge(z)
	right := x
	right.Merge(yz)
	require.Equal(t, left, right)
	require.Equal(t, mk(1, 2, 3, -50, 7, 999), left)
}

func TestAggregate_CanMerge(t *testing.T) {
	full := Aggregate{MinScaled: 1, MaxScaled: 1, SumScaled: math.MaxUint32, Count: math.MaxUint32}

	require.True(t, full.CanMerge(NewAggregate()))
	require.True(t, NewAggregate().CanMerge(full))
	require.False(t, full.CanMerge(Aggregate{MinScaled: 2, MaxScaled: 2, SumScaled: 2, Count: 1}))

	half := Aggregate{MinScaled: 0, MaxScaled: 0, Count: math.MaxUint32 / 2}
	require.True(t, half.CanMerge(half))
}
