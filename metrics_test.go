package evchan

import (
	"strings"
	"testing"

	"github.com/baxromumarov/evchan/buffer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_PutAndTakeOutcomes(t *testing.T) {
	m := NewMetrics("test")
	ch, err := NewBuffered[int](buffer.Fixed[int](1), WithName("jobs"), WithMetrics(m))
	require.NoError(t, err)

	require.NoError(t, ch.Put(1)) // buffered
	require.NoError(t, ch.Put(2)) // buffered, dropped by the buffer

	_, err = ch.Take(func(int, error) {}) // from buffer
	require.NoError(t, err)
	_, err = ch.Take(func(int, error) {}) // pending
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pending.WithLabelValues("jobs")))

	_, err = ch.TakeMatch(func(int, error) {}, func(v int) bool { return false })
	require.NoError(t, err)
	require.NoError(t, ch.Put(3)) // delivered to the plain taker ahead of the matcher

	tk, err := ch.TakeMatch(func(int, error) {}, func(v int) bool { return false })
	require.NoError(t, err)
	require.NoError(t, ch.Put(4)) // no eligible taker: discarded
	require.True(t, tk.Cancel())

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Put(5)) // closed

	_, err = ch.Take(func(int, error) {}) // end
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.puts.WithLabelValues("jobs", putBuffered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drops.WithLabelValues("jobs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.puts.WithLabelValues("jobs", putDelivered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.puts.WithLabelValues("jobs", putDiscarded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.puts.WithLabelValues("jobs", putClosed)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.takes.WithLabelValues("jobs", takeBuffered)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.takes.WithLabelValues("jobs", takePending)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.takes.WithLabelValues("jobs", takeEnd)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancels.WithLabelValues("jobs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closes.WithLabelValues("jobs")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pending.WithLabelValues("jobs")))
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics("app")
	require.NoError(t, reg.Register(m))

	ch := New[string](WithName("events"), WithMetrics(m))
	require.NoError(t, ch.Put("a"))
	require.NoError(t, ch.Close())

	expected := `
# HELP app_evchan_closes_total Channel close transitions.
# TYPE app_evchan_closes_total counter
app_evchan_closes_total{channel="events"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_evchan_closes_total")
	assert.NoError(t, err)
}

func TestMetrics_SlidingEvictionIsBufferedPut(t *testing.T) {
	m := NewMetrics("")
	ch, err := NewBuffered[int](buffer.Sliding[int](2), WithName("recent"), WithMetrics(m))
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, ch.Put(i))
	}

	stats := ch.Stats()
	assert.Equal(t, int64(5), stats.Buffered)
	assert.Equal(t, uint64(3), stats.BufferDropped)
	assert.Equal(t, float64(stats.Buffered), testutil.ToFloat64(m.puts.WithLabelValues("recent", putBuffered)))
	assert.Equal(t, float64(stats.BufferDropped), testutil.ToFloat64(m.drops.WithLabelValues("recent")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.puts), "no other put outcome recorded")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.put("x", putBuffered)
		m.take("x", takeEnd)
		m.cancel("x")
		m.close("x")
		m.drop("x", 1)
		m.setPending("x", 1)
	})
}

func TestOptions(t *testing.T) {
	ch := New[int]()
	assert.True(t, strings.HasPrefix(ch.Name(), "chan-"))
	assert.Len(t, ch.Name(), len("chan-")+8)

	assert.Panics(t, func() { New[int](WithName("")) })
	assert.Panics(t, func() { New[int](WithLogger(nil)) })
}
