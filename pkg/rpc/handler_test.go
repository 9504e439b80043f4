package rpc

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jjgarcianorway/annad/pkg/recipe"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Handle_LearnsRecipeOnVerifiedHighScoreAnswer(t *testing.T) {
	store, err := recipe.NewStore(filepath.Join(t.TempDir(), "recipes"))
	require.NoError(t, err)

	h := NewHandler(&fakeRunner{result: verifiedResult()}, store)
	resp := h.Handle(context.Background(), Request{RequestID: "r-1", Query: "is my disk full"})
	assert.Equal(t, "r-1", resp.RequestID)

	sig := recipe.Signature{Domain: "storage", Intent: "question", RouteClass: "disk_space", QueryPattern: "is my disk full"}
	id := recipe.ComputeID(sig, teams.TeamStorage)

	learned, found, err := store.Load(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, learned.SuccessCount)
}

func TestHandler_Handle_RunnerErrorYieldsRefusal(t *testing.T) {
	h := NewHandler(&fakeRunner{err: errBoom{}}, nil)
	resp := h.Handle(context.Background(), Request{RequestID: "r-2", Query: "anything"})
	assert.Equal(t, "I cannot verify this.", resp.Answer)
	assert.Equal(t, "r-2", resp.RequestID)
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func TestHandler_Handle_NoStoreSkipsLearning(t *testing.T) {
	h := NewHandler(&fakeRunner{result: verifiedResult()}, nil)
	resp := h.Handle(context.Background(), Request{RequestID: "r-3", Query: "is my disk full"})
	assert.NotEmpty(t, resp.Answer)
}

func TestHandler_Handle_CallsRequestHookOnce(t *testing.T) {
	h := NewHandler(&fakeRunner{result: verifiedResult()}, nil)
	calls := 0
	h.SetRequestHook(func() { calls++ })

	h.Handle(context.Background(), Request{RequestID: "r-4", Query: "is my disk full"})
	assert.Equal(t, 1, calls)
}
