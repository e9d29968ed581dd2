package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTriggerCoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	d := New(30*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestZeroDelayRunsInline(t *testing.T) {
	calls := 0
	d := New(0, func() { calls++ })
	d.Trigger()
	d.Trigger()
	require.Equal(t, 2, calls)
}

func TestStopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	d := New(50*time.Millisecond, func() { calls.Add(1) })
	d.Trigger()
	require.True(t, d.Stop())
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())
	require.False(t, d.Stop())
}
