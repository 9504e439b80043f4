package recipe

import (
	"testing"

	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	r := Recipe{
		ID:             "abc123",
		Signature:      Signature{Domain: "storage", Intent: "question", RouteClass: "disk_usage", QueryPattern: "is my disk full?"},
		Team:           teams.TeamStorage,
		RiskLevel:      ticket.RiskReadOnly,
		ProbeSequence:  []string{"disk_usage"},
		AnswerTemplate: "Your disk is 50% full.",
		SuccessCount:   1,
	}
	require.NoError(t, store.Save(r))

	loaded, found, err := store.Load("abc123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r, loaded)
}

func TestStore_LoadMissingReturnsNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, found, err := store.Load("does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestComputeID_SameSignatureAndTeamYieldSameID(t *testing.T) {
	sig := Signature{Domain: "storage", Intent: "question", RouteClass: "disk_usage", QueryPattern: "is my disk full?"}
	id1 := ComputeID(sig, teams.TeamStorage)
	id2 := ComputeID(sig, teams.TeamStorage)
	assert.Equal(t, id1, id2)

	id3 := ComputeID(sig, teams.TeamNetwork)
	assert.NotEqual(t, id1, id3)
}
