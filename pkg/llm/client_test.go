package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMessages_RolesMapCorrectly(t *testing.T) {
	msgs := []Message{
		{Role: "system", Content: "you are anna"},
		{Role: "user", Content: "is disk full?"},
		{Role: "assistant", Content: "checking"},
	}
	converted := convertMessages(msgs)
	require.Len(t, converted, 3)
}

func TestNew_DefaultsRateLimiterWhenUnset(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:11535/v1", Model: "anna-local"})
	assert.Equal(t, "anna-local", c.Model())
	assert.NotNil(t, c.limiter)
}
