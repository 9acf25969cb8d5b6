package chanx

import (
	"context"
	"testing"
	"time"

	"github.com/baxromumarov/evchan"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	ch := make(chan int, 1) // buffered so Send doesn't block

	err := Send(context.Background(), ch, 12)
	assert.NoError(t, err)

	val := <-ch
	assert.Equal(t, 12, val)
}

func TestSend_ContextCanceled(t *testing.T) {
	ch := make(chan int) // unbuffered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Send(ctx, ch, 12)
	assert.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

func TestRecv_BufferedValue(t *testing.T) {
	ch := evchan.New[string]()
	require.NoError(t, ch.Put("hi"))

	v, err := Recv[string](context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, "hi", v)
}

func TestRecv_WaitsForPut(t *testing.T) {
	ch := evchan.New[int]()

	done := make(chan result[int], 1)
	go func() {
		v, err := Recv[int](context.Background(), ch)
		done <- result[int]{v, err}
	}()

	require.Eventually(t, func() bool { return ch.Pending() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, ch.Put(42))

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, 42, res.v)
	case <-time.After(time.Second):
		t.Fatal("Recv did not return")
	}
}

func TestRecv_End(t *testing.T) {
	ch := evchan.New[int]()
	require.NoError(t, ch.Close())

	_, err := Recv[int](context.Background(), ch)
	assert.True(t, evchan.IsEnd(err))
}

func TestRecv_ContextCanceledCancelsTaker(t *testing.T) {
	ch := evchan.New[int]()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Recv[int](ctx, ch)
		done <- err
	}()

	require.Eventually(t, func() bool { return ch.Pending() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Recv did not return after cancel")
	}
	assert.Equal(t, 0, ch.Pending())

	// The value is not consumed by the abandoned receive.
	require.NoError(t, ch.Put(1))
	assert.Equal(t, 1, ch.Stats().BufferLen)
}

func TestRecv_UsageErrorPassesThrough(t *testing.T) {
	_, err := Recv[int](context.Background(), badReceiver[int]{})
	assert.ErrorIs(t, err, evchan.ErrInvalidCallback)
	assert.True(t, evchan.IsUsageError(err))
}

func TestRecvTimeout_Expires(t *testing.T) {
	mock := clock.NewMock()
	ch := evchan.New[int]()

	done := make(chan result[int], 1)
	go func() {
		v, err := RecvTimeout[int](mock, ch, time.Second)
		done <- result[int]{v, err}
	}()

	var res result[int]
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		select {
		case res = <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, res.err, ErrTimeout)
	assert.Equal(t, 0, ch.Pending())
}

func TestRecvTimeout_ValueBeforeDeadline(t *testing.T) {
	mock := clock.NewMock()
	ch := evchan.New[int]()
	require.NoError(t, ch.Put(3))

	v, err := RecvTimeout[int](mock, ch, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestRecvTimeout_PanicsOnInvalidDuration(t *testing.T) {
	ch := evchan.New[int]()
	assert.PanicsWithValue(t, "chanx: RecvTimeout requires d > 0", func() {
		_, _ = RecvTimeout[int](clock.NewMock(), ch, 0)
	})
}

// badReceiver forwards a nil callback, as a broken wrapper would.
type badReceiver[T any] struct{}

func (badReceiver[T]) Take(evchan.TakeFunc[T]) (*evchan.Taker[T], error) {
	return evchan.New[T]().Take(nil)
}
