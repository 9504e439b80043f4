package update

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	tag string
	err error
}

func (f *fakeChecker) LatestVersion(ctx context.Context) (string, error) {
	return f.tag, f.err
}

func newTestScheduler(t *testing.T, checker VersionChecker, localVersion string) *Scheduler {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "update_ledger.json"))
	require.NoError(t, err)
	return NewScheduler(checker, store, localVersion)
}

func TestScheduler_RunNow_UpToDate(t *testing.T) {
	s := newTestScheduler(t, &fakeChecker{tag: "0.0.30"}, "0.0.30")
	entry := s.RunNow(context.Background())
	assert.Equal(t, ResultUpToDate, entry.Result)

	loaded, err := s.store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, 1)
}

func TestScheduler_RunNow_UpdateAvailable(t *testing.T) {
	s := newTestScheduler(t, &fakeChecker{tag: "0.0.31"}, "0.0.30")
	entry := s.RunNow(context.Background())
	assert.Equal(t, ResultUpdateAvailable, entry.Result)
	assert.Equal(t, "0.0.31", entry.Version)
}

func TestScheduler_RunNow_CheckFails(t *testing.T) {
	s := newTestScheduler(t, &fakeChecker{err: errors.New("network error")}, "0.0.30")
	entry := s.RunNow(context.Background())
	assert.Equal(t, ResultFailed, entry.Result)
	assert.Equal(t, "network error", entry.Reason)
}

func TestScheduler_StartRejectsInvalidSchedule(t *testing.T) {
	s := newTestScheduler(t, &fakeChecker{tag: "0.0.30"}, "0.0.30")
	err := s.Start("not a cron expression")
	assert.Error(t, err)
}
