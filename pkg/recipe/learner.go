package recipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/ticket"
)

// PromotionThreshold is the minimum reliability score a verified ticket must
// reach before its answer is a recipe candidate. Fixed per spec.md §4.11,
// not configurable: a variable threshold would make promoted recipes
// incomparable across hosts.
const PromotionThreshold = 80

// LearnInput carries everything the learner needs from a finished ticket.
// It is built by the caller (pkg/rpc's Handler, from the Orchestrator's
// result) rather than passed the Ticket's full review history.
type LearnInput struct {
	Ticket             *ticket.Ticket
	Evidence           *evidence.Block
	Query              string
	Answer             string
	Score              int
	Verified           bool
	NeedsClarification bool
}

// LearnResult reports whether a recipe was learned, and why not when it
// wasn't.
type LearnResult struct {
	Learned  bool
	RecipeID string
	Reason   string
}

func skipped(reason string) LearnResult { return LearnResult{Reason: reason} }

// TryLearn applies spec.md §4.11's strict gate and, if it passes, persists a
// new recipe or increments an existing one's success count. Save failures
// are reported but never fail the ticket — recipe learning is best-effort.
func TryLearn(store *Store, in LearnInput) LearnResult {
	if !in.Verified || in.Score < PromotionThreshold {
		return skipped(fmt.Sprintf("not verified or score too low (verified=%v, score=%d)", in.Verified, in.Score))
	}
	if strings.TrimSpace(in.Answer) == "" {
		return skipped("empty answer")
	}
	if in.NeedsClarification {
		return skipped("clarification needed")
	}
	if in.Evidence == nil || in.Evidence.Len() == 0 {
		return skipped("no probes executed")
	}

	sig := Signature{
		Domain:       in.Ticket.Domain,
		Intent:       in.Ticket.Intent,
		RouteClass:   in.Ticket.RouteClass,
		QueryPattern: normalizeQuery(in.Query),
	}
	team := in.Ticket.Team
	id := ComputeID(sig, team)

	existing, found, err := store.Load(id)
	if err == nil && found {
		existing.SuccessCount++
		existing.ReliabilityScore = in.Score
		if err := store.Save(existing); err != nil {
			return skipped(fmt.Sprintf("save failed: %v", err))
		}
		return LearnResult{Learned: true, RecipeID: id}
	}

	probeSequence := make([]string, 0, in.Evidence.Len())
	for _, item := range in.Evidence.All() {
		probeSequence = append(probeSequence, item.ProbeID)
	}

	r := Recipe{
		ID:                    id,
		Signature:             sig,
		Team:                  team,
		RiskLevel:             in.Ticket.RiskLevel,
		RequiredEvidenceKinds: in.Ticket.EvidenceKinds,
		ProbeSequence:         probeSequence,
		AnswerTemplate:        in.Answer,
		CreatedAt:             time.Now().Unix(),
		SuccessCount:          1,
		ReliabilityScore:      in.Score,
	}
	if err := store.Save(r); err != nil {
		return skipped(fmt.Sprintf("save failed: %v", err))
	}
	return LearnResult{Learned: true, RecipeID: id}
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
