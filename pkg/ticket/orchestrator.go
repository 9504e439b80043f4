package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jjgarcianorway/annad/pkg/config"
	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/reliability"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/transcript"
	"github.com/jjgarcianorway/annad/pkg/verify"
)

// TranslationResult is what the Translator (or the deterministic router fast
// path) hands back to the Orchestrator before probing begins.
type TranslationResult struct {
	Domain                string
	Intent                string
	Team                  teams.Team
	RouteClass            string
	Deterministic         bool
	Probes                []string
	EvidenceKinds         []evidence.Kind
	Risk                  RiskLevel
	Confident             bool
	NeedsClarification    bool
	ClarificationQuestion string
}

// Translator turns free-text queries into a typed plan. The router's
// deterministic fast path and the LLM-backed translator both satisfy this.
type Translator interface {
	Translate(ctx context.Context, query string) (TranslationResult, error)
}

// Prober executes a probe plan and returns the populated evidence block.
type Prober interface {
	Run(ctx context.Context, probes []string) (*evidence.Block, error)
}

// DraftResult is a synthesized answer awaiting verification.
type DraftResult struct {
	Text     string
	Grounded bool
}

// SynthesisGuidance carries a prior rejection's guidance into the next pass.
type SynthesisGuidance struct {
	AddProbes    []string
	RemoveClaims []string
}

// Synthesizer drafts an answer from a ticket's accumulated evidence.
type Synthesizer interface {
	Synthesize(ctx context.Context, tk *Ticket, ev *evidence.Block, guidance *SynthesisGuidance) (DraftResult, error)
}

// Orchestrator drives the Ticket state machine end to end: translate,
// probe, synthesize, verify, retry/escalate, and record every step to the
// transcript. It owns the Ticket, EvidenceBlock, and Transcript exclusively;
// collaborators only ever see read-only views.
type Orchestrator struct {
	translator  Translator
	prober      Prober
	synthesizer Synthesizer

	budgets     config.StageBudgets
	reliability config.ReliabilityConfig
	autonomy    config.AutonomyConfig

	// lastTranslation is a scratch slot the translate stage's closure writes
	// into; Run reads it immediately after the stage returns and clears it.
	// Safe without a lock: the closure's write happens-before the channel
	// send that runStageGeneric's select receives on.
	lastTranslation *TranslationResult
}

// NewOrchestrator wires an Orchestrator from its three pipeline collaborators
// and the stage/reliability/autonomy configuration that bounds every round.
func NewOrchestrator(t Translator, p Prober, s Synthesizer, budgets config.StageBudgets, rel config.ReliabilityConfig, autonomy config.AutonomyConfig) *Orchestrator {
	return &Orchestrator{translator: t, prober: p, synthesizer: s, budgets: budgets, reliability: rel, autonomy: autonomy}
}

// autonomyAllows reports whether level permits recommending an action at the
// given risk. off caps every recommendation to read-only; low additionally
// allows low-risk changes; safe allows every risk tier, including high-risk
// changes. An unrecognized level is treated as off, the most restrictive
// cap, so a misconfigured deployment fails closed rather than open.
func autonomyAllows(level config.AutonomyLevel, risk RiskLevel) bool {
	switch level {
	case config.AutonomyOff:
		return risk == RiskReadOnly
	case config.AutonomyLow:
		return risk == RiskReadOnly || risk == RiskLowRiskChange
	case config.AutonomySafe:
		return true
	default:
		return risk == RiskReadOnly
	}
}

type thresholdOverrideKey struct{}

// WithThresholdOverride returns a context that makes Run use threshold
// instead of the Orchestrator's configured reliability threshold for this
// one call. Used by pkg/rpc to honor a request's reliability_threshold
// option without needing a per-request Orchestrator.
func WithThresholdOverride(ctx context.Context, threshold uint8) context.Context {
	return context.WithValue(ctx, thresholdOverrideKey{}, threshold)
}

func (o *Orchestrator) thresholdFor(ctx context.Context) uint8 {
	if v, ok := ctx.Value(thresholdOverrideKey{}).(uint8); ok {
		return v
	}
	return o.reliability.Threshold
}

// Result is the final outcome of driving one ticket through the pipeline.
type Result struct {
	Ticket                *Ticket
	Transcript            *transcript.Transcript
	Evidence              *evidence.Block // nil when the ticket never reached the probe stage
	Signals               reliability.Signals
	Score                 int
	Answer                string
	Refusal               string
	NeedsClarification    bool
	ClarificationQuestion string
}

// Run drives a single user request through translate -> probe -> synthesize
// -> verify, retrying junior review up to JuniorRoundsMax times and
// escalating to a single senior round, before landing on verified or failed.
func (o *Orchestrator) Run(ctx context.Context, ticketID, userRequest string) (*Result, error) {
	tr := transcript.New()
	start := time.Now()
	elapsed := func() int64 { return time.Since(start).Milliseconds() }

	tr.Push(transcript.StageStart(elapsed(), "translate"))
	translated, err := o.runStageGeneric(ctx, "translate", o.budgets.Translate(), func(sctx context.Context) error {
		res, terr := o.translator.Translate(sctx, userRequest)
		if terr != nil {
			return terr
		}
		o.lastTranslation = &res
		return nil
	})
	if translated.IsBudgetExceeded() {
		tr.Push(transcript.StageEnd(elapsed(), "translate", translated))
		return o.fail(ticketID, userRequest, tr, "translate", translated), nil
	}
	tr.Push(transcript.StageEnd(elapsed(), "translate", translated))
	if err != nil || o.lastTranslation == nil {
		return o.fail(ticketID, userRequest, tr, "translate", transcript.OutcomeError), nil
	}

	tl := *o.lastTranslation
	o.lastTranslation = nil

	tk := New(ticketID, userRequest, tl.Domain, tl.Intent, tl.Team, tl.RouteClass,
		len(tl.Probes) > 0, tl.Probes, tl.EvidenceKinds, tl.Risk,
		o.reliability.JuniorRoundsMax, o.reliability.SeniorRoundsMax)
	tk.Status = StatusProbing

	if !autonomyAllows(o.autonomy.Level, tk.RiskLevel) {
		return o.refuseAutonomy(tk, tr, elapsed, tl), nil
	}

	var guidance *SynthesisGuidance
	for {
		ev, probeOutcome := o.probe(ctx, tr, elapsed, tk.PlannedProbes)
		if probeOutcome.IsBudgetExceeded() {
			return o.failTicket(tk, tr, ev, probeOutcome), nil
		}

		draft, synthOutcome := o.synthesize(ctx, tr, elapsed, tk, ev, guidance)
		if synthOutcome.IsBudgetExceeded() {
			return o.failTicket(tk, tr, ev, synthOutcome), nil
		}
		tk.Status = StatusAnswerDrafted

		sig := reliability.Signals{
			Grounded:            draft.Grounded,
			NoInvention:         draft.Grounded,
			ProbeCoverage:       len(tk.PlannedProbes) > 0 && ev.Len() > 0,
			TranslatorConfident: tl.Confident,
			ClarificationNeeded: tl.NeedsClarification,
		}
		score := reliability.Score(sig)
		verified := reliability.Verified(sig, o.thresholdFor(ctx))

		reviewer := "junior"
		requireAll := false
		if !tk.CanRetryJunior() {
			reviewer = "senior"
			requireAll = true
		}

		art := verify.Check(verify.Request{
			Draft:              draft.Text,
			Evidence:           ev,
			RequiredKinds:      tk.EvidenceKinds,
			Team:               tk.Team,
			Reviewer:           reviewer,
			ReadOnly:           tk.RiskLevel == RiskReadOnly,
			ReliabilityScore:   score,
			ReliabilityPass:    verified,
			RequireCitationAll: requireAll,
		})
		tk.AddReviewArtifact(art)

		if reviewer == "junior" {
			tk.IncrementJunior()
		} else {
			tk.IncrementSenior()
		}

		if art.AllowPublish {
			tk.Status = StatusVerified
			return &Result{
				Ticket: tk, Transcript: tr, Evidence: ev, Signals: sig, Score: score, Answer: draft.Text,
				NeedsClarification: tl.NeedsClarification, ClarificationQuestion: tl.ClarificationQuestion,
			}, nil
		}

		if reviewer == "junior" && tk.CanRetryJunior() {
			tk.Status = StatusProbing
			guidance = &SynthesisGuidance{AddProbes: nil, RemoveClaims: art.Guidance}
			tr.Push(transcript.Note(elapsed(), fmt.Sprintf("junior rejected round %d: %v", tk.JuniorAttempt, art.Issues)))
			continue
		}

		if tk.CanEscalate() {
			tk.Status = StatusEscalated
			tr.Push(transcript.Note(elapsed(), "escalating to senior review"))
			guidance = &SynthesisGuidance{RemoveClaims: art.Guidance}
			continue
		}

		tk.Status = StatusFailed
		refusal := "I cannot verify this."
		tr.Push(transcript.FinalAnswer(elapsed(), refusal))
		return &Result{
			Ticket: tk, Transcript: tr, Evidence: ev, Signals: sig, Score: score, Refusal: refusal,
			NeedsClarification: tl.NeedsClarification, ClarificationQuestion: tl.ClarificationQuestion,
		}, nil
	}
}

func (o *Orchestrator) probe(ctx context.Context, tr *transcript.Transcript, elapsed func() int64, probes []string) (*evidence.Block, transcript.StageOutcome) {
	tr.Push(transcript.StageStart(elapsed(), "probe"))
	var block *evidence.Block
	outcome, _ := o.runStageGeneric(ctx, "probe", o.budgets.Probes(), func(sctx context.Context) error {
		b, err := o.prober.Run(sctx, probes)
		if err != nil {
			return err
		}
		block = b
		return nil
	})
	if block == nil {
		block = evidence.NewBlock()
	}
	tr.Push(transcript.StageEnd(elapsed(), "probe", outcome))
	return block, outcome
}

func (o *Orchestrator) synthesize(ctx context.Context, tr *transcript.Transcript, elapsed func() int64, tk *Ticket, ev *evidence.Block, guidance *SynthesisGuidance) (DraftResult, transcript.StageOutcome) {
	tr.Push(transcript.StageStart(elapsed(), "synthesize"))
	var draft DraftResult
	outcome, _ := o.runStageGeneric(ctx, "synthesize", o.budgets.Synthesize(), func(sctx context.Context) error {
		d, err := o.synthesizer.Synthesize(sctx, tk, ev, guidance)
		if err != nil {
			return err
		}
		draft = d
		return nil
	})
	tr.Push(transcript.StageEnd(elapsed(), "synthesize", outcome))
	return draft, outcome
}

// runStageGeneric runs fn under a stage budget distinct from any
// per-operation timeout fn itself may apply. A budget overrun produces a
// budget_exceeded outcome naming the stage, never a bare timeout error.
func (o *Orchestrator) runStageGeneric(ctx context.Context, stage string, budget time.Duration, fn func(context.Context) error) (transcript.StageOutcome, error) {
	sctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() { errCh <- fn(sctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			slog.WarnContext(ctx, "stage failed", "stage", stage, "error", err)
			return transcript.OutcomeError, err
		}
		return transcript.OutcomeOk, nil
	case <-sctx.Done():
		elapsed := time.Since(start).Milliseconds()
		return transcript.BudgetExceeded(stage, budget.Milliseconds(), elapsed), sctx.Err()
	}
}

func (o *Orchestrator) fail(ticketID, userRequest string, tr *transcript.Transcript, stage string, outcome transcript.StageOutcome) *Result {
	tk := New(ticketID, userRequest, "unknown", "unknown", teams.TeamGeneral, "unknown",
		false, nil, nil, RiskReadOnly, o.reliability.JuniorRoundsMax, o.reliability.SeniorRoundsMax)
	tk.Status = StatusFailed
	refusal := "I cannot verify this."
	tr.Push(transcript.FinalAnswer(0, refusal))
	slog.Warn("ticket failed", "ticket_id", ticketID, "stage", stage, "outcome", outcome.String())
	return &Result{Ticket: tk, Transcript: tr, Refusal: refusal}
}

// refuseAutonomy fails tk without ever probing or synthesizing: the
// translated risk level already exceeds what the configured autonomy level
// permits recommending, so running the rest of the pipeline would only
// produce an answer that review must reject anyway.
func (o *Orchestrator) refuseAutonomy(tk *Ticket, tr *transcript.Transcript, elapsed func() int64, tl TranslationResult) *Result {
	tk.Status = StatusFailed
	refusal := fmt.Sprintf("I cannot recommend this: it is a %s action, which exceeds the configured autonomy cap (%s).", tk.RiskLevel, o.autonomy.Level)
	tr.Push(transcript.Note(elapsed(), fmt.Sprintf("refused: risk %q exceeds autonomy cap %q", tk.RiskLevel, o.autonomy.Level)))
	tr.Push(transcript.FinalAnswer(elapsed(), refusal))
	slog.Warn("ticket refused on autonomy cap", "ticket_id", tk.ID, "risk", tk.RiskLevel, "autonomy_level", o.autonomy.Level)
	return &Result{
		Ticket: tk, Transcript: tr, Refusal: refusal,
		NeedsClarification: tl.NeedsClarification, ClarificationQuestion: tl.ClarificationQuestion,
	}
}

func (o *Orchestrator) failTicket(tk *Ticket, tr *transcript.Transcript, ev *evidence.Block, outcome transcript.StageOutcome) *Result {
	tk.Status = StatusFailed
	refusal := "I cannot verify this."
	tr.Push(transcript.FinalAnswer(0, refusal))
	slog.Warn("ticket failed", "ticket_id", tk.ID, "outcome", outcome.String())
	return &Result{Ticket: tk, Transcript: tr, Evidence: ev, Refusal: refusal}
}
