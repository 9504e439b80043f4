package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScheduler() *Scheduler {
	return NewScheduler(30*time.Second, 60*time.Second, 5*time.Minute)
}

func TestScheduler_InitialState(t *testing.T) {
	s := testScheduler()
	assert.False(t, s.IsIdle(), "just created, recent 'request'")
	assert.True(t, s.CooldownElapsed(), "no previous benchmark")
	assert.True(t, s.IsEnabled())
}

func TestScheduler_RecordRequestResetsIdle(t *testing.T) {
	s := testScheduler()
	s.lastReq.Store(0)
	assert.True(t, s.IsIdle())

	s.RecordRequest()
	assert.False(t, s.IsIdle())
}

func TestScheduler_TryStartPreventsConcurrent(t *testing.T) {
	s := testScheduler()
	s.lastReq.Store(0)

	guard1 := s.TryStart()
	require.NotNil(t, guard1)

	guard2 := s.TryStart()
	assert.Nil(t, guard2, "second concurrent attempt should fail")

	guard1.Complete()
	assert.False(t, s.CooldownElapsed(), "cooldown should not have elapsed yet")
}

func TestScheduler_InterruptOnRequest(t *testing.T) {
	s := testScheduler()
	s.lastReq.Store(0)

	guard := s.TryStart()
	require.NotNil(t, guard)
	defer guard.Complete()

	assert.False(t, guard.ShouldAbort())

	s.RecordRequest()
	assert.True(t, guard.ShouldAbort())
}

func TestScheduler_EnableDisable(t *testing.T) {
	s := testScheduler()
	assert.True(t, s.IsEnabled())

	s.SetEnabled(false)
	assert.False(t, s.IsEnabled())
	assert.False(t, s.ShouldRun())
}

func TestGuard_ShouldAbort_AfterMaxRunElapsed(t *testing.T) {
	s := NewScheduler(0, time.Millisecond, 5*time.Minute)
	s.lastReq.Store(0)

	guard := s.TryStart()
	require.NotNil(t, guard)
	defer guard.Complete()

	time.Sleep(5 * time.Millisecond)
	assert.True(t, guard.ShouldAbort())
}

func TestGuard_WaitInterruptible_ReturnsFalseOnInterrupt(t *testing.T) {
	s := testScheduler()
	s.lastReq.Store(0)
	guard := s.TryStart()
	require.NotNil(t, guard)
	defer guard.Complete()

	done := make(chan bool, 1)
	go func() { done <- guard.WaitInterruptible(time.Second) }()

	s.RecordRequest()
	assert.False(t, <-done)
}

func TestGuard_WaitInterruptible_ReturnsTrueWhenUninterrupted(t *testing.T) {
	s := testScheduler()
	s.lastReq.Store(0)
	guard := s.TryStart()
	require.NotNil(t, guard)
	defer guard.Complete()

	assert.True(t, guard.WaitInterruptible(5*time.Millisecond))
}

func TestTask_TryRun_SkipsWhenNotIdle(t *testing.T) {
	s := testScheduler() // just created: not idle yet
	task := NewTask(s, func(*Guard) bool { return true })

	result, ran := task.TryRun()
	assert.False(t, ran)
	assert.False(t, result)
}

func TestTask_TryRun_RunsAndReleasesWhenIdle(t *testing.T) {
	s := testScheduler()
	s.lastReq.Store(0)
	task := NewTask(s, func(*Guard) bool { return true })

	result, ran := task.TryRun()
	assert.True(t, ran)
	assert.True(t, result)
	assert.False(t, s.running.Load(), "guard should have released the slot")
}
