// Package ticket implements the service-desk request state machine: every
// user query becomes a Ticket with bounded junior/senior review rounds.
package ticket

import (
	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/teams"
	"github.com/jjgarcianorway/annad/pkg/verify"
)

// RiskLevel classifies how dangerous the request's recommended action is.
type RiskLevel string

const (
	RiskReadOnly       RiskLevel = "read_only"
	RiskLowRiskChange  RiskLevel = "low_risk_change"
	RiskHighRiskChange RiskLevel = "high_risk_change"
)

func (r RiskLevel) String() string {
	switch r {
	case RiskReadOnly:
		return "read-only"
	case RiskLowRiskChange:
		return "low-risk-change"
	case RiskHighRiskChange:
		return "high-risk-change"
	default:
		return string(r)
	}
}

// Status is where a ticket sits in the service-desk workflow.
type Status string

const (
	StatusNew           Status = "new"
	StatusProbing       Status = "probing"
	StatusAnswerDrafted Status = "answer_drafted"
	StatusVerified      Status = "verified"
	StatusEscalated     Status = "escalated"
	StatusFailed        Status = "failed"
)

func (s Status) String() string {
	switch s {
	case StatusAnswerDrafted:
		return "answer-drafted"
	default:
		return string(s)
	}
}

// Ticket is a single user request tracked through translate -> probe ->
// synthesize -> verify.
type Ticket struct {
	ID          string
	UserRequest string

	Domain string
	Intent string
	Team   teams.Team

	RouteClass       string
	EvidenceRequired bool
	PlannedProbes    []string
	EvidenceKinds    []evidence.Kind
	RiskLevel        RiskLevel

	JuniorAttempt   uint8
	SeniorAttempt   uint8
	JuniorRoundsMax uint8
	SeniorRoundsMax uint8

	Status Status

	ReviewArtifacts []verify.ReviewArtifact
}

// New creates a ticket fresh from translator/router output, with the given
// junior and senior round limits.
func New(id, userRequest, domain, intent string, team teams.Team, routeClass string,
	evidenceRequired bool, plannedProbes []string, evidenceKinds []evidence.Kind, risk RiskLevel,
	juniorRoundsMax, seniorRoundsMax uint8,
) *Ticket {
	return &Ticket{
		ID:               id,
		UserRequest:      userRequest,
		Domain:           domain,
		Intent:           intent,
		Team:             team,
		RouteClass:       routeClass,
		EvidenceRequired: evidenceRequired,
		PlannedProbes:    plannedProbes,
		EvidenceKinds:    evidenceKinds,
		RiskLevel:        risk,
		JuniorRoundsMax:  juniorRoundsMax,
		SeniorRoundsMax:  seniorRoundsMax,
		Status:           StatusNew,
	}
}

// AddReviewArtifact records a review pass's verdict.
func (t *Ticket) AddReviewArtifact(a verify.ReviewArtifact) {
	t.ReviewArtifacts = append(t.ReviewArtifacts, a)
}

// LatestReview returns the most recent review artifact, if any.
func (t *Ticket) LatestReview() (verify.ReviewArtifact, bool) {
	if len(t.ReviewArtifacts) == 0 {
		return verify.ReviewArtifact{}, false
	}
	return t.ReviewArtifacts[len(t.ReviewArtifacts)-1], true
}

// CanPublish reports whether the latest review allows publishing.
func (t *Ticket) CanPublish() bool {
	latest, ok := t.LatestReview()
	return ok && latest.AllowPublish
}

// CanRetryJunior reports whether another junior review round is allowed.
func (t *Ticket) CanRetryJunior() bool {
	return t.JuniorAttempt < t.JuniorRoundsMax
}

// CanEscalate reports whether a senior escalation round is allowed.
func (t *Ticket) CanEscalate() bool {
	return t.SeniorAttempt < t.SeniorRoundsMax
}

// IncrementJunior records a completed junior review attempt.
func (t *Ticket) IncrementJunior() {
	if t.JuniorAttempt < ^uint8(0) {
		t.JuniorAttempt++
	}
}

// IncrementSenior records a completed senior review attempt.
func (t *Ticket) IncrementSenior() {
	if t.SeniorAttempt < ^uint8(0) {
		t.SeniorAttempt++
	}
}

// IsExhausted reports whether no further review round of any kind remains.
func (t *Ticket) IsExhausted() bool {
	return !t.CanRetryJunior() && !t.CanEscalate()
}
