package reliability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_AllSignalsTrue(t *testing.T) {
	score := Score(Signals{
		Grounded:            true,
		NoInvention:         true,
		ProbeCoverage:       true,
		TranslatorConfident: true,
		ClarificationNeeded: false,
	})
	assert.Equal(t, 100, score)
}

func TestScore_NoSignals(t *testing.T) {
	assert.Equal(t, 0, Score(Signals{ClarificationNeeded: true}))
}

func TestScore_ClarificationNeededWithholdsItsWeight(t *testing.T) {
	withClarification := Score(Signals{Grounded: true, ClarificationNeeded: true})
	withoutClarification := Score(Signals{Grounded: true, ClarificationNeeded: false})
	assert.Equal(t, WeightClarificationNotNeeded, withoutClarification-withClarification)
}

func TestVerified_RequiresGroundedEvenAtHighScore(t *testing.T) {
	s := Signals{
		Grounded:            false,
		NoInvention:         true,
		ProbeCoverage:       true,
		TranslatorConfident: true,
	}
	assert.Equal(t, 70, Score(s))
	assert.False(t, Verified(s, 60))
}

func TestVerified_PassesAtThreshold(t *testing.T) {
	s := Signals{Grounded: true, NoInvention: true, ProbeCoverage: true}
	assert.Equal(t, 85, Score(s))
	assert.True(t, Verified(s, 85))
	assert.False(t, Verified(s, 86))
}
