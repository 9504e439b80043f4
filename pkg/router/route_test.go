package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_SystemTriageProbeSet(t *testing.T) {
	r := Resolve(ClassSystemTriage)
	assert.True(t, r.Deterministic)
	assert.ElementsMatch(t, []string{"journal_errors", "journal_warnings", "failed_units", "boot_time"}, r.Probes)
}

func TestResolve_SystemSlowIsNotDeterministic(t *testing.T) {
	r := Resolve(ClassSystemSlow)
	assert.False(t, r.Deterministic)
	assert.NotEmpty(t, r.Probes)
}

func TestResolve_UnknownHasNoProbes(t *testing.T) {
	r := Resolve(ClassUnknown)
	assert.Empty(t, r.Probes)
	assert.False(t, r.Deterministic)
}

func TestResolve_FallsBackForUnregisteredClass(t *testing.T) {
	r := Resolve(Class("made_up"))
	assert.Equal(t, ClassUnknown, r.Class)
}
