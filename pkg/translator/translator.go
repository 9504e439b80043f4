// Package translator turns a free-text query into the typed TranslationResult
// pkg/ticket's Orchestrator needs to begin a ticket: the deterministic
// router handles fixed-shape queries directly, and the local model fills in
// intent/risk/clarification for everything else.
package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jjgarcianorway/annad/pkg/llm"
	"github.com/jjgarcianorway/annad/pkg/probe"
	"github.com/jjgarcianorway/annad/pkg/router"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/ticket"
)

// maxExtractionRetries bounds how many times the translator asks the model
// to re-answer in the required JSON shape before giving up and falling back
// to the router's default route. Fixed, not configurable: the failure mode
// is the model ignoring instructions, which more retries within the same
// turn won't fix any better the sixth time than the second.
const maxExtractionRetries = 2

const systemPrompt = `You classify a user's question about their Linux system.
Reply with exactly one JSON object and nothing else, in this shape:
{"intent": "short phrase", "risk_level": "read_only|low_risk_change|high_risk_change", "needs_clarification": false, "clarification_question": ""}
risk_level is almost always "read_only" for an information question.
Set needs_clarification true only if the question is too vague to route to any probe.`

// extraction is the JSON shape the model must reply with.
type extraction struct {
	Intent                string `json:"intent"`
	RiskLevel             string `json:"risk_level"`
	NeedsClarification    bool   `json:"needs_clarification"`
	ClarificationQuestion string `json:"clarification_question"`
}

// Translator satisfies pkg/ticket.Translator.
type Translator struct {
	client *llm.Client
}

// New builds a model-backed Translator. client may be nil; in that case
// every query resolves through the deterministic router and the fallback
// unknown-route path, never calling the model.
func New(client *llm.Client) *Translator {
	return &Translator{client: client}
}

// Translate classifies query via the deterministic router first. Queries
// that resolve to a deterministic route never reach the model at all,
// matching spec.md §4.6's "no model in the hot path" rule. Everything else
// is handed to the model for intent/risk/clarification extraction, with the
// router's route still supplying the probe plan and evidence kinds.
func (t *Translator) Translate(ctx context.Context, query string) (ticket.TranslationResult, error) {
	class := router.Classify(query)
	route := router.Resolve(class)
	team := teams.FromDomain(route.Domain)

	base := ticket.TranslationResult{
		Domain:        route.Domain,
		Team:          team,
		RouteClass:    string(route.Class),
		Deterministic: route.Deterministic,
		Probes:        route.Probes,
		EvidenceKinds: probe.EvidenceKindsFor(route.Probes),
		Risk:          ticket.RiskReadOnly,
		Confident:     true,
	}

	if route.Deterministic {
		base.Intent = "question"
		return base, nil
	}

	if t.client == nil {
		base.Confident = false
		return base, nil
	}

	ex, err := t.extract(ctx, query)
	if err != nil {
		slog.WarnContext(ctx, "translator: extraction failed after retries, using router default", "error", err)
		base.Confident = false
		return base, nil
	}

	base.Intent = ex.Intent
	base.Risk = riskFromString(ex.RiskLevel)
	base.NeedsClarification = ex.NeedsClarification
	base.ClarificationQuestion = ex.ClarificationQuestion
	base.Confident = true
	return base, nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

func (t *Translator) extract(ctx context.Context, query string) (extraction, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: query},
	}

	var lastErr error
	for attempt := 0; attempt <= maxExtractionRetries; attempt++ {
		resp, err := t.client.Complete(ctx, llm.Request{Messages: messages, MaxTokens: 256})
		if err != nil {
			return extraction{}, fmt.Errorf("translator llm call: %w", err)
		}

		ex, perr := parseExtraction(resp.Content)
		if perr == nil {
			return ex, nil
		}
		lastErr = perr

		messages = append(messages,
			llm.Message{Role: "assistant", Content: resp.Content},
			llm.Message{Role: "user", Content: "That was not valid JSON in the required shape. Reply with only the JSON object."},
		)
	}
	return extraction{}, fmt.Errorf("failed to extract translation after %d retries: %w", maxExtractionRetries, lastErr)
}

func parseExtraction(text string) (extraction, error) {
	match := jsonObjectRe.FindString(text)
	if match == "" {
		return extraction{}, fmt.Errorf("no JSON object found in model reply")
	}
	var ex extraction
	if err := json.Unmarshal([]byte(match), &ex); err != nil {
		return extraction{}, fmt.Errorf("decode model reply: %w", err)
	}
	return ex, nil
}

func riskFromString(s string) ticket.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ticket.RiskLowRiskChange):
		return ticket.RiskLowRiskChange
	case string(ticket.RiskHighRiskChange):
		return ticket.RiskHighRiskChange
	default:
		return ticket.RiskReadOnly
	}
}
