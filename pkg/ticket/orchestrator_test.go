package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/jjgarcianorway/annad/pkg/config"
	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	result TranslationResult
	err    error
}

func (f *fakeTranslator) Translate(ctx context.Context, query string) (TranslationResult, error) {
	return f.result, f.err
}

type fakeProber struct {
	build func() *evidence.Block
}

func (f *fakeProber) Run(ctx context.Context, probes []string) (*evidence.Block, error) {
	return f.build(), nil
}

type fakeSynthesizer struct {
	drafts []DraftResult
	calls  int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, tk *Ticket, ev *evidence.Block, guidance *SynthesisGuidance) (DraftResult, error) {
	d := f.drafts[f.calls]
	if f.calls < len(f.drafts)-1 {
		f.calls++
	}
	return d, nil
}

func testBudgets() config.StageBudgets {
	return config.StageBudgets{TranslateMS: 2000, ProbesAggregateMS: 8000, SynthesizeMS: 8000, VerifyMS: 4000}
}

func testReliability() config.ReliabilityConfig {
	return config.ReliabilityConfig{Threshold: 80, JuniorRoundsMax: 3, SeniorRoundsMax: 1}
}

func testAutonomy() config.AutonomyConfig {
	return config.AutonomyConfig{Level: config.AutonomySafe}
}

const wellFormedDraft = "[SUMMARY]\ndisk is fine\n[DETAILS]\n/ is 40% full [E1]\n[COMMANDS]\nnone\n"

func diskBlock() *evidence.Block {
	b := evidence.NewBlock()
	b.Append(evidence.Item{ProbeID: "disk_usage", Kind: evidence.KindDisk, Success: true, ExitCode: 0})
	return b
}

func TestOrchestratorRun_VerifiesOnFirstPass(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "storage", Intent: "question", Team: teams.TeamStorage, RouteClass: "disk_usage",
		Probes: []string{"disk_usage"}, EvidenceKinds: []evidence.Kind{evidence.KindDisk},
		Risk: RiskReadOnly, Confident: true,
	}}
	prober := &fakeProber{build: diskBlock}
	synth := &fakeSynthesizer{drafts: []DraftResult{{Text: wellFormedDraft, Grounded: true}}}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), testReliability(), testAutonomy())
	res, err := o.Run(context.Background(), "T-1", "is my disk full")

	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Ticket.Status)
	assert.Equal(t, wellFormedDraft, res.Answer)
	assert.Empty(t, res.Refusal)
	assert.True(t, res.Ticket.CanPublish())
	require.NotNil(t, res.Evidence)
	assert.Equal(t, 1, res.Evidence.Len())
	assert.True(t, res.Signals.Grounded)
	assert.GreaterOrEqual(t, res.Score, 80)
}

func TestOrchestratorRun_RetriesJuniorThenVerifies(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "storage", Team: teams.TeamStorage, RouteClass: "disk_usage",
		Probes: []string{"disk_usage"}, EvidenceKinds: []evidence.Kind{evidence.KindDisk},
		Risk: RiskReadOnly, Confident: true,
	}}
	prober := &fakeProber{build: diskBlock}
	badDraft := "not in canonical format at all"
	synth := &fakeSynthesizer{drafts: []DraftResult{
		{Text: badDraft, Grounded: true},
		{Text: wellFormedDraft, Grounded: true},
	}}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), testReliability(), testAutonomy())
	res, err := o.Run(context.Background(), "T-2", "is my disk full")

	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Ticket.Status)
	assert.Equal(t, uint8(2), res.Ticket.JuniorAttempt)
	assert.Len(t, res.Ticket.ReviewArtifacts, 2)
}

func TestOrchestratorRun_FailsAfterExhaustingAllRounds(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "storage", Team: teams.TeamStorage, RouteClass: "disk_usage",
		Probes: []string{"disk_usage"}, EvidenceKinds: []evidence.Kind{evidence.KindDisk},
		Risk: RiskReadOnly, Confident: true,
	}}
	prober := &fakeProber{build: diskBlock}
	badDraft := "never in canonical format"
	synth := &fakeSynthesizer{drafts: []DraftResult{{Text: badDraft, Grounded: true}}}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), testReliability(), testAutonomy())
	res, err := o.Run(context.Background(), "T-3", "is my disk full")

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Ticket.Status)
	assert.Equal(t, "I cannot verify this.", res.Refusal)
	assert.True(t, res.Ticket.IsExhausted())
}

func TestOrchestratorRun_TranslateBudgetExceeded(t *testing.T) {
	slowTranslator := &slowTranslatorStub{delay: 50 * time.Millisecond}

	prober := &fakeProber{build: diskBlock}
	synth := &fakeSynthesizer{drafts: []DraftResult{{Text: wellFormedDraft, Grounded: true}}}

	budgets := config.StageBudgets{TranslateMS: 1, ProbesAggregateMS: 8000, SynthesizeMS: 8000, VerifyMS: 4000}
	o := NewOrchestrator(slowTranslator, prober, synth, budgets, testReliability(), testAutonomy())
	res, err := o.Run(context.Background(), "T-4", "is my disk full")

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Ticket.Status)
	assert.Equal(t, "I cannot verify this.", res.Refusal)
}

func TestOrchestratorRun_ThresholdOverrideCanFailAnOtherwiseVerifiedDraft(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "storage", Team: teams.TeamStorage, RouteClass: "disk_usage",
		Probes: []string{"disk_usage"}, EvidenceKinds: []evidence.Kind{evidence.KindDisk},
		Risk: RiskReadOnly, Confident: true,
	}}
	prober := &fakeProber{build: diskBlock}
	synth := &fakeSynthesizer{drafts: []DraftResult{{Text: wellFormedDraft, Grounded: true}}}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), testReliability(), testAutonomy())
	ctx := WithThresholdOverride(context.Background(), 101)
	res, err := o.Run(ctx, "T-5", "is my disk full")

	require.NoError(t, err)
	assert.NotEqual(t, StatusVerified, res.Ticket.Status)
}

func TestOrchestratorRun_RefusesHighRiskActionUnderAutonomyOff(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "packages", Intent: "action", Team: teams.TeamGeneral, RouteClass: "package_install",
		Risk: RiskHighRiskChange, Confident: true,
	}}
	prober := &fakeProber{build: func() *evidence.Block { t.Fatal("probe must not run when autonomy refuses the request"); return nil }}
	synth := &fakeSynthesizer{}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), testReliability(), config.AutonomyConfig{Level: config.AutonomyOff})
	res, err := o.Run(context.Background(), "T-6", "install package foo")

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Ticket.Status)
	assert.Contains(t, res.Refusal, "autonomy")
	assert.Nil(t, res.Evidence)
}

func TestOrchestratorRun_LowRiskChangeAllowedUnderAutonomyLow(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "storage", Team: teams.TeamStorage, RouteClass: "disk_usage",
		Probes: []string{"disk_usage"}, EvidenceKinds: []evidence.Kind{evidence.KindDisk},
		Risk: RiskLowRiskChange, Confident: true,
	}}
	prober := &fakeProber{build: diskBlock}
	synth := &fakeSynthesizer{drafts: []DraftResult{{Text: wellFormedDraft, Grounded: true}}}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), testReliability(), config.AutonomyConfig{Level: config.AutonomyLow})
	res, err := o.Run(context.Background(), "T-7", "is my disk full")

	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Ticket.Status)
}

func TestOrchestratorRun_EscalatesToSeniorThenFailsWithoutLooping(t *testing.T) {
	translator := &fakeTranslator{result: TranslationResult{
		Domain: "storage", Team: teams.TeamStorage, RouteClass: "disk_usage",
		Probes: []string{"disk_usage"}, EvidenceKinds: []evidence.Kind{evidence.KindDisk},
		Risk: RiskReadOnly, Confident: true,
	}}
	prober := &fakeProber{build: diskBlock}
	badDraft := "never in canonical format"
	rel := config.ReliabilityConfig{Threshold: 80, JuniorRoundsMax: 1, SeniorRoundsMax: 1}
	synth := &fakeSynthesizer{drafts: []DraftResult{{Text: badDraft, Grounded: true}}}

	o := NewOrchestrator(translator, prober, synth, testBudgets(), rel, testAutonomy())
	res, err := o.Run(context.Background(), "T-8", "is my disk full")

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Ticket.Status)
	assert.Equal(t, uint8(1), res.Ticket.JuniorAttempt)
	assert.Equal(t, uint8(1), res.Ticket.SeniorAttempt)
	// one junior round plus one senior round, never more
	assert.Len(t, res.Ticket.ReviewArtifacts, 2)
	assert.Equal(t, "senior", res.Ticket.ReviewArtifacts[1].Reviewer)
}

type slowTranslatorStub struct{ delay time.Duration }

func (s *slowTranslatorStub) Translate(ctx context.Context, query string) (TranslationResult, error) {
	select {
	case <-time.After(s.delay):
		return TranslationResult{}, nil
	case <-ctx.Done():
		return TranslationResult{}, ctx.Err()
	}
}
