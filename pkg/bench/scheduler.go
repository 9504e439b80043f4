// Package bench runs background model warm-up benchmarks, but only when
// the system is idle, never longer than a configured ceiling, and always
// preemptible the instant a real request arrives.
package bench

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler gates a background task behind idle/cooldown/enabled checks and
// makes it interruptible. The original uses tokio::sync::Notify to wake a
// waiting benchmark task; this uses a size-1 channel as the equivalent Go
// idiom — sending is the "notify", and a benchmark polls it non-blockingly.
type Scheduler struct {
	minIdle  time.Duration
	maxRun   time.Duration
	cooldown time.Duration

	running   atomic.Bool
	enabled   atomic.Bool
	lastReq   atomic.Int64 // unix seconds
	lastBench atomic.Int64 // unix seconds

	interruptMu sync.Mutex
	interruptCh chan struct{} // non-nil only while a benchmark is running
}

// NewScheduler builds a Scheduler with the given gating parameters. It
// starts enabled and treats "just created" as a recent request, matching
// the original's initial state (is_idle() is false until the first
// min-idle window has elapsed).
func NewScheduler(minIdle, maxRun, cooldown time.Duration) *Scheduler {
	s := &Scheduler{minIdle: minIdle, maxRun: maxRun, cooldown: cooldown}
	s.enabled.Store(true)
	s.lastReq.Store(time.Now().Unix())
	return s
}

// RecordRequest resets the idle timer and, if a benchmark is currently
// running, signals it to abort.
func (s *Scheduler) RecordRequest() {
	s.lastReq.Store(time.Now().Unix())

	s.interruptMu.Lock()
	ch := s.interruptCh
	s.interruptMu.Unlock()
	if ch != nil {
		select {
		case ch <- struct{}{}:
		default: // already signaled
		}
	}
}

// IsIdle reports whether enough time has passed since the last request.
func (s *Scheduler) IsIdle() bool {
	return time.Since(time.Unix(s.lastReq.Load(), 0)) >= s.minIdle
}

// CooldownElapsed reports whether enough time has passed since the last
// completed benchmark.
func (s *Scheduler) CooldownElapsed() bool {
	if s.lastBench.Load() == 0 {
		return true
	}
	return time.Since(time.Unix(s.lastBench.Load(), 0)) >= s.cooldown
}

// ShouldRun reports whether all gating conditions are currently satisfied.
func (s *Scheduler) ShouldRun() bool {
	return s.IsEnabled() && s.IsIdle() && s.CooldownElapsed()
}

// SetEnabled toggles whether the scheduler will ever start a benchmark.
func (s *Scheduler) SetEnabled(enabled bool) { s.enabled.Store(enabled) }

// IsEnabled reports the current enabled state.
func (s *Scheduler) IsEnabled() bool { return s.enabled.Load() }

// TryStart attempts to acquire the benchmark slot. It returns nil if
// conditions aren't met or a benchmark is already running.
func (s *Scheduler) TryStart() *Guard {
	if !s.ShouldRun() {
		return nil
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ch := make(chan struct{}, 1)
	s.interruptMu.Lock()
	s.interruptCh = ch
	s.interruptMu.Unlock()

	return &Guard{scheduler: s, interruptCh: ch, start: time.Now(), maxRun: s.maxRun}
}

// Guard represents one in-flight benchmark run. Complete must be called to
// free the scheduler's slot; calls after the first have no effect.
type Guard struct {
	scheduler   *Scheduler
	interruptCh chan struct{}
	start       time.Time
	maxRun      time.Duration

	released atomic.Bool
}

// ShouldAbort reports whether the caller should stop early: either a
// request arrived (RecordRequest signaled this guard's channel) or the
// benchmark has run past maxRun.
func (g *Guard) ShouldAbort() bool {
	select {
	case <-g.interruptCh:
		return true
	default:
	}
	return time.Since(g.start) > g.maxRun
}

// WaitInterruptible blocks for up to d, returning true if it completed the
// full duration uninterrupted, false if an interrupt arrived first.
func (g *Guard) WaitInterruptible(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-g.interruptCh:
		return false
	case <-timer.C:
		return true
	}
}

// Elapsed returns how long this benchmark run has been active.
func (g *Guard) Elapsed() time.Duration { return time.Since(g.start) }

// Complete marks the benchmark as finished (successfully or aborted) and
// releases the slot. There is no Drop in Go, so unlike the original's
// Drop-based guard, callers MUST call Complete themselves — typically via
// defer right after TryStart succeeds. Safe to call more than once; only
// the first call has an effect.
func (g *Guard) Complete() {
	if !g.released.CompareAndSwap(false, true) {
		return
	}
	g.scheduler.running.Store(false)
	g.scheduler.lastBench.Store(time.Now().Unix())
	g.scheduler.interruptMu.Lock()
	if g.scheduler.interruptCh == g.interruptCh {
		g.scheduler.interruptCh = nil
	}
	g.scheduler.interruptMu.Unlock()
}
