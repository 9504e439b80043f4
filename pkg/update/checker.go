package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// VersionChecker reports the latest released version tag, or an error if
// the check (e.g. a GitHub releases lookup) failed. Kept abstract so the
// scheduler never has to know how the lookup happens.
type VersionChecker interface {
	LatestVersion(ctx context.Context) (tag string, err error)
}

// Scheduler runs a VersionChecker on a cron schedule and appends every
// outcome to a Store.
type Scheduler struct {
	checker      VersionChecker
	store        *Store
	localVersion string

	cron *cron.Cron
}

// NewScheduler builds a Scheduler. localVersion is recorded on every entry
// so the ledger shows what build was running at check time.
func NewScheduler(checker VersionChecker, store *Store, localVersion string) *Scheduler {
	return &Scheduler{checker: checker, store: store, localVersion: localVersion}
}

// Start registers the check on the given cron schedule (standard 5-field
// cron syntax) and begins running it. Call Stop to halt.
func (s *Scheduler) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		s.runOnce(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron schedule. Any in-flight check finishes normally.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunNow performs a single check immediately, outside the cron schedule —
// used for an explicit "check for updates now" request.
func (s *Scheduler) RunNow(ctx context.Context) Entry {
	return s.runOnce(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) Entry {
	start := time.Now()
	tag, err := s.checker.LatestVersion(ctx)
	durationMS := time.Since(start).Milliseconds()

	var entry Entry
	switch {
	case err != nil:
		entry = Entry{
			CheckedAtUnix: time.Now().Unix(), LocalVersion: s.localVersion,
			Result: ResultFailed, Reason: err.Error(), DurationMS: durationMS,
		}
	case tag == s.localVersion:
		entry = Entry{
			CheckedAtUnix: time.Now().Unix(), LocalVersion: s.localVersion,
			RemoteTag: tag, Result: ResultUpToDate, DurationMS: durationMS,
		}
	default:
		entry = Entry{
			CheckedAtUnix: time.Now().Unix(), LocalVersion: s.localVersion,
			RemoteTag: tag, Result: ResultUpdateAvailable, Version: tag, DurationMS: durationMS,
		}
	}

	if err := s.store.Append(entry); err != nil {
		slog.Warn("update checker: failed to persist ledger entry", "error", err)
	}
	return entry
}
