// Package recipe implements Anna's Recipe Learner: promoting verified,
// high-reliability answers into a file-backed catalog of learned
// deterministic routes, gated strictly on spec.md's persistence rule.
package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/ticket"
)

// Signature identifies the query shape a recipe answers, independent of the
// exact wording: domain, intent, route class, and a normalized query
// pattern.
type Signature struct {
	Domain       string `json:"domain"`
	Intent       string `json:"intent"`
	RouteClass   string `json:"route_class"`
	QueryPattern string `json:"query_pattern"`
}

// Recipe is a learned deterministic route: a (signature, probes, answer
// template) triple persisted once its originating ticket was verified at or
// above the promotion threshold.
type Recipe struct {
	ID                    string           `json:"id"`
	Signature             Signature        `json:"signature"`
	Team                  teams.Team       `json:"team"`
	RiskLevel             ticket.RiskLevel `json:"risk_level"`
	RequiredEvidenceKinds []evidence.Kind  `json:"required_evidence_kinds"`
	ProbeSequence         []string         `json:"probe_sequence"`
	AnswerTemplate        string           `json:"answer_template"`
	CreatedAt             int64            `json:"created_at"`
	SuccessCount          int              `json:"success_count"`
	ReliabilityScore      int              `json:"reliability_score"`
}

// ComputeID hashes a signature and its owning team into a stable recipe id.
// Two tickets with the same signature and team always promote to the same
// recipe, so repeated successes increment SuccessCount instead of
// accumulating duplicate files.
func ComputeID(sig Signature, team teams.Team) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", team, sig.Domain, sig.Intent, sig.RouteClass, sig.QueryPattern)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
