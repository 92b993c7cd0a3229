package perturb

import "backend/internal/models"

// Task pairs one source statement with one criterion to apply.
type Task struct {
	Statement models.Statement
	Criterion models.Criterion
}

// Per-item batch outcome statuses.
const (
	OutcomeOK            = "ok"
	OutcomePerturbFailed = "perturb_failed"
	OutcomeGradeUnknown  = "grade_unknown"
)

// ItemOutcome reports what happened to a single (statement, criterion) task,
// so callers can see exactly which inputs were skipped or degraded.
type ItemOutcome struct {
	StatementID string `json:"statement_id"`
	Criterion   string `json:"criterion"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
}

// Result is the response of a generation run.
type Result struct {
	GeneratedCount int                   `json:"generated_count"`
	Perturbations  []models.Perturbation `json:"perturbations"`
	Outcomes       []ItemOutcome         `json:"outcomes"`
}
