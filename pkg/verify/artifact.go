// Package verify implements the junior and senior review passes: structural
// checks over a drafted answer, never another model call. Both passes
// produce a ReviewArtifact the orchestrator attaches to the Ticket.
package verify

import "github.com/jjgarcianorway/annad/pkg/teams"

// ReviewArtifact records one review pass's verdict.
type ReviewArtifact struct {
	Team         teams.Team
	Reviewer     string // "junior" or "senior"
	Score        int
	AllowPublish bool
	Issues       []string // blocking problems found
	Guidance     []string // actionable instructions for the next synthesis pass
}

// Pass builds a passing artifact with no issues.
func Pass(team teams.Team, reviewer string, score int) ReviewArtifact {
	return ReviewArtifact{Team: team, Reviewer: reviewer, Score: score, AllowPublish: true}
}

// Reject builds a failing artifact carrying the issues found and the
// guidance the next synthesis attempt should act on.
func Reject(team teams.Team, reviewer string, score int, issues, guidance []string) ReviewArtifact {
	return ReviewArtifact{
		Team:         team,
		Reviewer:     reviewer,
		Score:        score,
		AllowPublish: false,
		Issues:       issues,
		Guidance:     guidance,
	}
}
