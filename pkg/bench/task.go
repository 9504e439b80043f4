package bench

// Task wraps a callback that only runs when the scheduler's gating
// conditions allow it, releasing the slot on every exit path via defer —
// the Go equivalent of the original's Drop-based BenchmarkGuard release.
type Task struct {
	scheduler *Scheduler
	run       func(*Guard) bool
}

// NewTask builds a Task. run receives the active Guard so it can poll
// ShouldAbort/WaitInterruptible during long-running work; its bool return
// reports whether the benchmark's own work judged itself successful.
func NewTask(scheduler *Scheduler, run func(*Guard) bool) *Task {
	return &Task{scheduler: scheduler, run: run}
}

// TryRun attempts one benchmark pass. It returns (result, true) if the
// benchmark ran to completion, or (false, false) if conditions weren't met
// or the run was interrupted/timed out.
func (t *Task) TryRun() (bool, bool) {
	guard := t.scheduler.TryStart()
	if guard == nil {
		return false, false
	}
	defer guard.Complete()

	result := t.run(guard)
	if guard.ShouldAbort() {
		return false, false
	}
	return result, true
}
