package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/logger"
)

func newTestPacer() (*Pacer, *ManualClock) {
	clock := NewManualClock(time.Unix(0, 0))
	return NewPacer(logger.New(logger.LevelOff, nil), WithClock(clock)), clock
}

func TestPacerRunsAfterDelay(t *testing.T) {
	p, clock := newTestPacer()
	var ran atomic.Int32

	p.Schedule(1, 800*time.Millisecond, func() { ran.Add(1) })
	require.Equal(t, 1, p.Pending())

	clock.Advance(799 * time.Millisecond)
	assert.Equal(t, int32(0), ran.Load())

	clock.Advance(time.Millisecond)
	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, 0, p.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, int32(1), ran.Load(), "tasks run once")
}

func TestPacerCancel(t *testing.T) {
	p, clock := newTestPacer()
	var ran atomic.Int32

	p.Schedule(7, 500*time.Millisecond, func() { ran.Add(1) })
	assert.True(t, p.Cancel(7))
	assert.False(t, p.Cancel(7), "second cancel is a no-op")

	clock.Advance(time.Second)
	assert.Equal(t, int32(0), ran.Load())
	assert.Equal(t, 0, clock.Pending())
}

func TestPacerRescheduleReplacesTask(t *testing.T) {
	p, clock := newTestPacer()
	var first, second atomic.Int32

	p.Schedule(3, 500*time.Millisecond, func() { first.Add(1) })
	p.Schedule(3, 800*time.Millisecond, func() { second.Add(1) })
	assert.Equal(t, 1, p.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestPacerCancelAll(t *testing.T) {
	p, clock := newTestPacer()
	var ran atomic.Int32

	p.Schedule(1, time.Second, func() { ran.Add(1) })
	p.Schedule(2, time.Second, func() { ran.Add(1) })
	p.CancelAll()

	clock.Advance(2 * time.Second)
	assert.Equal(t, int32(0), ran.Load())
	assert.Equal(t, 0, p.Pending())
}

func TestManualClockOrdersByDeadline(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var order []int

	clock.AfterFunc(300*time.Millisecond, func() { order = append(order, 3) })
	clock.AfterFunc(100*time.Millisecond, func() { order = append(order, 1) })
	clock.AfterFunc(200*time.Millisecond, func() { order = append(order, 2) })

	clock.Advance(time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, time.Unix(1, 0), clock.Now())
}

func TestManualClockCallbackMaySchedule(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	fired := 0

	clock.AfterFunc(100*time.Millisecond, func() {
		fired++
		clock.AfterFunc(100*time.Millisecond, func() { fired++ })
	})

	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, 1, fired)
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 2, fired)
}
