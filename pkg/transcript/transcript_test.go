package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_PushAndLen(t *testing.T) {
	tr := New()
	assert.True(t, tr.Push(StageStart(0, "translate")))
	assert.True(t, tr.Push(FinalAnswer(120, "disk is fine [E1]")))
	assert.Equal(t, 2, tr.Len())
	assert.False(t, tr.WasCapped())
}

func TestTranscript_CapsAndTracksDropped(t *testing.T) {
	tr := New()
	for i := 0; i < MaxEvents; i++ {
		require.True(t, tr.Push(Note(int64(i), "filler")))
	}
	assert.False(t, tr.Push(Note(int64(MaxEvents), "one too many")))
	assert.True(t, tr.WasCapped())
	assert.Equal(t, 1, tr.DroppedCount())
	assert.Contains(t, tr.Diagnostic(), "capped")
}

func TestTranscript_NoDiagnosticWhenNotCapped(t *testing.T) {
	tr := New()
	tr.Push(Note(0, "hi"))
	assert.Equal(t, "", tr.Diagnostic())
}

func TestTranscript_EventsReturnsCopy(t *testing.T) {
	tr := New()
	tr.Push(FinalAnswer(0, "original"))

	events := tr.Events()
	events[0] = FinalAnswer(0, "mutated")

	original := tr.Events()
	assert.Equal(t, FinalAnswerKind{Text: "original"}, original[0].Kind)
}

func TestEvent_IsDebugOnly(t *testing.T) {
	assert.True(t, StageStart(0, "translate").IsDebugOnly())
	assert.True(t, Note(0, "hi").IsDebugOnly())
	assert.False(t, FinalAnswer(0, "hi").IsDebugOnly())
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	original := ProbeEnd(42, "disk_usage", 0, 17, "42% used")

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, original.Kind, decoded.Kind)
	assert.Equal(t, original.ElapsedMS, decoded.ElapsedMS)
}

func TestEvent_UnknownTypeDecodesToSentinel(t *testing.T) {
	data := []byte(`{"elapsed_ms":5,"from":"system","type":"future_event_kind","text":"whatever"}`)

	var decoded Event
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, UnknownKind{RawType: "future_event_kind"}, decoded.Kind)
}
