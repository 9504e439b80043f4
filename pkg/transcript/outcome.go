package transcript

import "fmt"

// StageOutcome reports how a pipeline stage ended.
type StageOutcome struct {
	Kind      string // ok, timeout, error, skipped, deterministic, budget_exceeded
	Stage     string // set when Kind == budget_exceeded
	BudgetMS  int64
	ElapsedMS int64
}

var (
	OutcomeOk            = StageOutcome{Kind: "ok"}
	OutcomeTimeout       = StageOutcome{Kind: "timeout"}
	OutcomeError         = StageOutcome{Kind: "error"}
	OutcomeSkipped       = StageOutcome{Kind: "skipped"}
	OutcomeDeterministic = StageOutcome{Kind: "deterministic"}
)

// BudgetExceeded builds an outcome for a stage that ran past its budget.
// Distinct from OutcomeTimeout: a timeout is a single operation's failure,
// a budget is the whole stage's allotment.
func BudgetExceeded(stage string, budgetMS, elapsedMS int64) StageOutcome {
	return StageOutcome{Kind: "budget_exceeded", Stage: stage, BudgetMS: budgetMS, ElapsedMS: elapsedMS}
}

// IsBudgetExceeded reports whether this outcome represents a budget overrun.
func (o StageOutcome) IsBudgetExceeded() bool { return o.Kind == "budget_exceeded" }

func (o StageOutcome) String() string {
	if o.IsBudgetExceeded() {
		return fmt.Sprintf("budget_exceeded(%s: %dms > %dms)", o.Stage, o.ElapsedMS, o.BudgetMS)
	}
	return o.Kind
}
