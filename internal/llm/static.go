package llm

import (
	"context"
	"fmt"
)

// StaticProvider is a deterministic offline backend used for development and
// tests. It answers every grade with a fixed decision and echoes perturbation
// prompts with a model prefix. It has no batch support, which exercises the
// orchestrator's sequential fallback path.
type StaticProvider struct {
	ModelID  string
	Decision Decision
}

// NewStaticProvider returns a provider that always grades with decision.
func NewStaticProvider(modelID string, decision Decision) *StaticProvider {
	return &StaticProvider{ModelID: modelID, Decision: decision}
}

func (s *StaticProvider) Grade(ctx context.Context, statement, topicPrompt string) Decision {
	return s.Decision
}

func (s *StaticProvider) Perturb(ctx context.Context, prompt string) (string, error) {
	return fmt.Sprintf("%s: %s", s.ModelID, prompt), nil
}

func (s *StaticProvider) BatchPerturb(ctx context.Context, prompts []string) ([]*string, error) {
	return nil, ErrBatchUnsupported
}

func (s *StaticProvider) BatchGrade(ctx context.Context, statements []string, topicPrompt string) ([]Decision, error) {
	return nil, ErrBatchUnsupported
}

func (s *StaticProvider) Generate(ctx context.Context, examples []string, topicPrompt, criterionName string, count int) ([]string, error) {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		base := criterionName
		if len(examples) > 0 {
			base = examples[i%len(examples)]
		}
		out = append(out, fmt.Sprintf("%s variation %d of %s", s.ModelID, i+1, base))
	}
	return out, nil
}

var _ Provider = (*StaticProvider)(nil)
