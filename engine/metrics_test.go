package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newEngine(t, WithWorkers(2), WithRegisterer(reg))
	path := writeFile(t, "m.txt", example)

	_, err := e.Run(context.Background(), path)
	require.NoError(t, err)

	m := e.Metrics()
	require.InDelta(t, 3, testutil.ToFloat64(m.Records), 0)
	require.InDelta(t, float64(len(example)), testutil.ToFloat64(m.Bytes), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.Workers), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.Keys), 0)
	require.InDelta(t, 0, testutil.ToFloat64(m.Collisions), 0)
	require.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))

	_, err = e.RunSingle(context.Background(), path)
	require.NoError(t, err)
	require.InDelta(t, 6, testutil.ToFloat64(m.Records), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Workers), 0)
	require.Equal(t, 2, testutil.CollectAndCount(m.RunDuration))

	n, err := testutil.GatherAndCount(reg, "onebrc_records_total", "onebrc_run_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(reg)
	b := NewMetrics(reg)

	require.Same(t, a.Records, b.Records)
	require.Same(t, a.RunDuration, b.RunDuration)

	a.Records.Add(5)
	require.InDelta(t, 5, testutil.ToFloat64(b.Records), 0)
}

func TestMetrics_PrivateRegistry(t *testing.T) {
	a := newEngine(t)
	b := newEngine(t)

	a.Metrics().Records.Inc()
	require.InDelta(t, 0, testutil.ToFloat64(b.Metrics().Records), 0)
}
