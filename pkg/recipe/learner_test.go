package recipe

import (
	"testing"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTicket() *ticket.Ticket {
	return &ticket.Ticket{
		ID:         "tk-1",
		Domain:     "storage",
		Intent:     "question",
		Team:       teams.TeamStorage,
		RouteClass: "disk_usage",
		RiskLevel:  ticket.RiskReadOnly,
	}
}

func evBlockWithOneProbe() *evidence.Block {
	b := evidence.NewBlock()
	b.Append(evidence.Item{ProbeID: "disk_usage", Success: true})
	return b
}

func TestTryLearn_VerifiedHighScore(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	result := TryLearn(store, LearnInput{
		Ticket:   testTicket(),
		Evidence: evBlockWithOneProbe(),
		Query:    "is my disk full?",
		Answer:   "Your disk is 50% full.",
		Score:    85,
		Verified: true,
	})
	assert.True(t, result.Learned)
	assert.NotEmpty(t, result.RecipeID)

	saved, found, err := store.Load(result.RecipeID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, saved.SuccessCount)
}

func TestTryLearn_SkipsUnverified(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	result := TryLearn(store, LearnInput{
		Ticket: testTicket(), Evidence: evBlockWithOneProbe(),
		Answer: "x", Score: 85, Verified: false,
	})
	assert.False(t, result.Learned)
	assert.Contains(t, result.Reason, "not verified")
}

func TestTryLearn_SkipsLowScore(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	result := TryLearn(store, LearnInput{
		Ticket: testTicket(), Evidence: evBlockWithOneProbe(),
		Answer: "x", Score: 60, Verified: true,
	})
	assert.False(t, result.Learned)
	assert.Contains(t, result.Reason, "score")
}

func TestTryLearn_SkipsNeedsClarification(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	result := TryLearn(store, LearnInput{
		Ticket: testTicket(), Evidence: evBlockWithOneProbe(),
		Answer: "x", Score: 85, Verified: true, NeedsClarification: true,
	})
	assert.False(t, result.Learned)
	assert.Contains(t, result.Reason, "clarification")
}

func TestTryLearn_SkipsNoProbesExecuted(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	result := TryLearn(store, LearnInput{
		Ticket: testTicket(), Evidence: evidence.NewBlock(),
		Answer: "x", Score: 85, Verified: true,
	})
	assert.False(t, result.Learned)
	assert.Contains(t, result.Reason, "no probes")
}

func TestTryLearn_SecondSuccessIncrementsExistingRecipe(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	in := LearnInput{
		Ticket: testTicket(), Evidence: evBlockWithOneProbe(),
		Query: "is my disk full?", Answer: "Your disk is 50% full.", Score: 85, Verified: true,
	}
	first := TryLearn(store, in)
	require.True(t, first.Learned)

	second := TryLearn(store, in)
	require.True(t, second.Learned)
	assert.Equal(t, first.RecipeID, second.RecipeID)

	saved, found, err := store.Load(second.RecipeID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, saved.SuccessCount)
}
