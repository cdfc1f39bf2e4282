package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncerRunsOnlyLastCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		i := i
		d.Trigger("a", func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}
	assert.True(t, d.Pending("a"))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending("a"))
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerFlushRunsNow(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Stop()

	ran := false
	d.Trigger("a", func() { ran = true })
	assert.True(t, d.Flush("a"))
	assert.True(t, ran)
	assert.False(t, d.Flush("a"))
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Stop()

	d.Trigger("c1|A", func() { t.Error("cancelled call ran") })
	d.Trigger("c1|B", func() { t.Error("cancelled call ran") })
	d.Trigger("c2|A", func() { t.Error("cancelled call ran") })

	assert.True(t, d.Cancel("c2|A"))
	assert.False(t, d.Cancel("c2|A"))
	assert.Equal(t, 2, d.CancelPrefix("c1|"))
	assert.False(t, d.Pending("c1|A"))
}

func TestDebouncerStopIgnoresLaterTriggers(t *testing.T) {
	d := NewDebouncer(time.Hour)
	d.Trigger("a", func() { t.Error("pending call ran after stop") })
	d.Stop()
	assert.False(t, d.Pending("a"))

	d.Trigger("b", func() { t.Error("call triggered after stop ran") })
	assert.False(t, d.Pending("b"))
}
