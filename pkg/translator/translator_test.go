package translator

import (
	"context"
	"testing"

	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_DeterministicRouteNeverNeedsModel(t *testing.T) {
	tr := New(nil)
	result, err := tr.Translate(context.Background(), "how much disk space do I have")
	require.NoError(t, err)
	assert.Equal(t, "disk_space", result.RouteClass)
	assert.True(t, result.Deterministic)
	assert.True(t, result.Confident)
	assert.Contains(t, result.Probes, "disk_usage")
	assert.NotEmpty(t, result.EvidenceKinds)
}

func TestTranslate_NonDeterministicWithNoClientFallsBackUnconfident(t *testing.T) {
	tr := New(nil)
	result, err := tr.Translate(context.Background(), "my computer feels slow today")
	require.NoError(t, err)
	assert.Equal(t, "system_slow", result.RouteClass)
	assert.False(t, result.Confident)
}

func TestParseExtraction_ExtractsJSONEvenWithSurroundingText(t *testing.T) {
	text := "Sure, here you go:\n{\"intent\": \"check disk\", \"risk_level\": \"read_only\", \"needs_clarification\": false, \"clarification_question\": \"\"}\nHope that helps!"
	ex, err := parseExtraction(text)
	require.NoError(t, err)
	assert.Equal(t, "check disk", ex.Intent)
	assert.Equal(t, "read_only", ex.RiskLevel)
}

func TestParseExtraction_RejectsNonJSON(t *testing.T) {
	_, err := parseExtraction("not json at all")
	assert.Error(t, err)
}

func TestRiskFromString_DefaultsToReadOnly(t *testing.T) {
	assert.Equal(t, ticket.RiskReadOnly, riskFromString(""))
	assert.Equal(t, ticket.RiskReadOnly, riskFromString("garbage"))
	assert.Equal(t, ticket.RiskLowRiskChange, riskFromString("low_risk_change"))
	assert.Equal(t, ticket.RiskHighRiskChange, riskFromString("HIGH_RISK_CHANGE"))
}
