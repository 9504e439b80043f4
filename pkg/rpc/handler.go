package rpc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/recipe"
	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/jjgarcianorway/annad/pkg/transcript"
)

// maxStdoutExcerpt bounds how much of a probe's stdout the RPC response
// carries per evidence item — enough to audit a citation, not a full dump.
const maxStdoutExcerpt = 400

// Runner is the one thing the RPC handler needs from the pipeline: drive a
// single request through translate->probe->synthesize->verify and hand back
// the outcome. pkg/ticket.Orchestrator satisfies this directly.
type Runner interface {
	Run(ctx context.Context, ticketID, userRequest string) (*ticket.Result, error)
}

// Handler turns one Request into one Response, running it through a Runner
// and, on a verified answer, offering it to the recipe learner.
type Handler struct {
	runner    Runner
	store     *recipe.Store // nil disables recipe learning
	onRequest func()        // optional: notified once per incoming request
}

// NewHandler builds a Handler. store may be nil to run without recipe
// learning (e.g. in a read-only diagnostic mode).
func NewHandler(runner Runner, store *recipe.Store) *Handler {
	return &Handler{runner: runner, store: store}
}

// SetRequestHook registers fn to be called once at the start of every
// Handle call — used to let pkg/bench's idle-triggered benchmark scheduler
// know a real request arrived, so it can interrupt any in-flight warm-up.
func (h *Handler) SetRequestHook(fn func()) {
	h.onRequest = fn
}

// Handle runs req through the pipeline and builds the wire Response.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	if h.onRequest != nil {
		h.onRequest()
	}

	res, err := h.runner.Run(ctx, req.RequestID, req.Query)
	if err != nil {
		return Response{RequestID: req.RequestID, Answer: "I cannot verify this."}
	}

	if h.store != nil {
		h.tryLearn(req.Query, res)
	}

	return toResponse(req, res)
}

func (h *Handler) tryLearn(query string, res *ticket.Result) {
	verified := res.Ticket != nil && res.Ticket.Status == ticket.StatusVerified
	recipe.TryLearn(h.store, recipe.LearnInput{
		Ticket:             res.Ticket,
		Evidence:           res.Evidence,
		Query:              query,
		Answer:             res.Answer,
		Score:              res.Score,
		Verified:           verified,
		NeedsClarification: res.NeedsClarification,
	})
}

func toResponse(req Request, res *ticket.Result) Response {
	resp := Response{
		RequestID:             req.RequestID,
		Answer:                res.Answer,
		ReliabilityScore:      res.Score,
		NeedsClarification:    res.NeedsClarification,
		ClarificationQuestion: res.ClarificationQuestion,
		ReliabilitySignals: ReliabilitySignals{
			TranslatorConfident:    res.Signals.TranslatorConfident,
			ProbeCoverage:          res.Signals.ProbeCoverage,
			AnswerGrounded:         res.Signals.Grounded,
			NoInvention:            res.Signals.NoInvention,
			ClarificationNotNeeded: !res.Signals.ClarificationNeeded,
		},
		Evidence:   evidenceExcerpts(res.Evidence),
		Transcript: transcriptEvents(res.Transcript, req.Options.Debug),
	}
	if res.Answer == "" && res.Refusal != "" {
		resp.Answer = res.Refusal
	}
	return resp
}

func evidenceExcerpts(ev *evidence.Block) []EvidenceExcerpt {
	if ev == nil {
		return nil
	}
	items := ev.All()
	out := make([]EvidenceExcerpt, 0, len(items))
	for _, item := range items {
		out = append(out, EvidenceExcerpt{
			ProbeID:       item.ProbeID,
			Command:       strings.Join(item.Command, " "),
			ExitCode:      item.ExitCode,
			TimingMS:      item.TimingMS,
			StdoutExcerpt: trimExcerpt(item.Stdout, maxStdoutExcerpt),
		})
	}
	return out
}

func transcriptEvents(tr *transcript.Transcript, debug bool) []TranscriptEvent {
	if tr == nil {
		return nil
	}
	events := tr.Events()
	out := make([]TranscriptEvent, 0, len(events))
	for _, e := range events {
		if !debug && e.IsDebugOnly() {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			continue
		}
		var m TranscriptEvent
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func trimExcerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
