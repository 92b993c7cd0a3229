package llm

import (
	"context"
	"errors"
)

// Decision is the constrained grading vocabulary returned by a provider.
type Decision string

const (
	DecisionAcceptable   Decision = "acceptable"
	DecisionUnacceptable Decision = "unacceptable"
	DecisionUnknown      Decision = "unknown"
)

// ErrBatchUnsupported is returned by providers that cannot pack multiple
// items into a single request. Callers fall back to per-item calls.
var ErrBatchUnsupported = errors.New("provider does not support batch calls")

// ErrMissingAPIKey is returned at construction when a provider has no
// credentials. A provider in this state must never attempt a network call.
var ErrMissingAPIKey = errors.New("provider API key not configured")

// Provider is the uniform interface over LLM backends. All implementations
// are rate-limited through the shared process-wide limiter and are
// interchangeable from the orchestrator's point of view.
type Provider interface {
	// Grade asks whether a statement is acceptable under the topic prompt.
	// Transport failures and off-vocabulary responses degrade to
	// DecisionUnknown; Grade never returns an error.
	Grade(ctx context.Context, statement, topicPrompt string) Decision

	// Perturb applies a transformation instruction ("{prompt}: {statement}")
	// and returns the transformed text. Any failure returns an error and the
	// item is skipped by callers.
	Perturb(ctx context.Context, prompt string) (string, error)

	// BatchPerturb packs prompts into one request using the numbered-list
	// format. Results preserve input order; a missing index yields nil.
	BatchPerturb(ctx context.Context, prompts []string) ([]*string, error)

	// BatchGrade grades statements in one request. Unparsable lines map to
	// DecisionUnknown; results preserve input order.
	BatchGrade(ctx context.Context, statements []string, topicPrompt string) ([]Decision, error)

	// Generate produces up to count new example statements conditioned on
	// the provided examples and a criterion-specific instruction.
	Generate(ctx context.Context, examples []string, topicPrompt, criterionName string, count int) ([]string, error)
}

// ParseDecision maps raw model output onto the two-word vocabulary,
// case-insensitively. Anything else is DecisionUnknown.
func ParseDecision(raw string) Decision {
	switch normalize(raw) {
	case string(DecisionAcceptable):
		return DecisionAcceptable
	case string(DecisionUnacceptable):
		return DecisionUnacceptable
	}
	return DecisionUnknown
}
