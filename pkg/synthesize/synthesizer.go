package synthesize

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/llm"
	"github.com/jjgarcianorway/annad/pkg/router"
	"github.com/jjgarcianorway/annad/pkg/ticket"
)

const systemPrompt = `You are Anna's answer drafter. You write answers about a Linux system
from the evidence block you are given, nothing else.

Rules:
- Every factual claim must end with an evidence marker like [E1] naming the
  evidence item it came from. A claim with no marker will be rejected.
- Never invent a value, path, or package name not present in the evidence.
- If the evidence needed to answer is missing, say so explicitly instead of
  guessing.
- Reply using exactly these three sections, in this order:
  [SUMMARY]
  one or two sentences
  [DETAILS]
  one cited claim per line
  [COMMANDS]
  any commands the user could run themselves, or the word none`

// Synthesizer answers with FormatDeterministic where the route class has a
// formatter, drafts with the local model otherwise, and uses ExtractFallback
// when there is no model client or the model call fails; when that finds
// nothing either, it returns an error. It satisfies pkg/ticket.Synthesizer.
type Synthesizer struct {
	client *llm.Client
}

// New builds a model-backed Synthesizer. client may be nil; the model is
// then never called.
func New(client *llm.Client) *Synthesizer {
	return &Synthesizer{client: client}
}

var citationRe = regexp.MustCompile(`\[E\d+\]`)

// Synthesize drafts an answer for tk from ev. Route classes with a
// formatter never reach the model: FormatDeterministic handles them
// directly. The deterministic help, system_triage and system_health_summary
// routes have no formatter and go to the local model like every other
// class, with ExtractFallback as the last resort if there is no model
// client or the model call fails.
func (s *Synthesizer) Synthesize(ctx context.Context, tk *ticket.Ticket, ev *evidence.Block, guidance *ticket.SynthesisGuidance) (ticket.DraftResult, error) {
	if answer, handled := FormatDeterministic(router.Class(tk.RouteClass), ev, tk.UserRequest); handled {
		return ticket.DraftResult{Text: answer, Grounded: citationRe.MatchString(answer)}, nil
	}

	if s.client == nil {
		if answer, ok := ExtractFallback(tk.UserRequest, ev); ok {
			return ticket.DraftResult{Text: answer, Grounded: citationRe.MatchString(answer)}, nil
		}
		return ticket.DraftResult{}, fmt.Errorf("synthesize %s: no model client and no fallback answer", tk.ID)
	}

	prompt := buildUserPrompt(tk, ev, guidance)
	resp, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		slog.WarnContext(ctx, "synthesize: llm call failed, trying fallback extraction", "ticket", tk.ID, "error", err)
		if answer, ok := ExtractFallback(tk.UserRequest, ev); ok {
			return ticket.DraftResult{Text: answer, Grounded: citationRe.MatchString(answer)}, nil
		}
		return ticket.DraftResult{}, fmt.Errorf("synthesize %s: %w", tk.ID, err)
	}

	text := strings.TrimSpace(resp.Content)
	return ticket.DraftResult{Text: text, Grounded: citationRe.MatchString(text)}, nil
}

func buildUserPrompt(tk *ticket.Ticket, ev *evidence.Block, guidance *ticket.SynthesisGuidance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User question: %s\n\n", tk.UserRequest)
	b.WriteString("Evidence:\n")
	for _, item := range ev.All() {
		if !item.Success {
			fmt.Fprintf(&b, "[%s] probe %s failed (%s)\n", item.ID, item.ProbeID, item.ReasonCode)
			continue
		}
		fmt.Fprintf(&b, "[%s] probe %s:\n%s\n", item.ID, item.ProbeID, strings.TrimSpace(item.Stdout))
	}
	if guidance != nil {
		if len(guidance.RemoveClaims) > 0 {
			fmt.Fprintf(&b, "\nThe reviewer rejected these claims from your last draft, do not repeat them:\n")
			for _, c := range guidance.RemoveClaims {
				fmt.Fprintf(&b, "- %s\n", c)
			}
		}
		if len(guidance.AddProbes) > 0 {
			fmt.Fprintf(&b, "\nThe reviewer asked for evidence on: %s. Say so explicitly if it is still missing above.\n", strings.Join(guidance.AddProbes, ", "))
		}
	}
	return b.String()
}
