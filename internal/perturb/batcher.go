package perturb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"backend/internal/llm"
)

// DefaultBatchSize bounds how many tasks share one provider call.
const DefaultBatchSize = 10

// Item is the per-task result of a batcher run. Status is OutcomeOK,
// OutcomePerturbFailed or OutcomeGradeUnknown; Text and Decision are only
// meaningful when the perturbation step succeeded.
type Item struct {
	Task     Task
	Text     string
	Decision llm.Decision
	Status   string
	Detail   string
}

// Batcher runs perturb-then-grade over task batches with graceful
// degradation: a failed batch call falls back to per-item calls, a failed
// item is recorded and skipped, and the run itself never aborts.
type Batcher struct {
	provider llm.Provider
	logger   *zap.Logger
}

func NewBatcher(provider llm.Provider, logger *zap.Logger) *Batcher {
	return &Batcher{provider: provider, logger: logger}
}

// Run processes tasks in batches of batchSize and returns one Item per task,
// in task order.
func (b *Batcher) Run(ctx context.Context, topicPrompt string, tasks []Task, batchSize int) []Item {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	items := make([]Item, len(tasks))
	for i, task := range tasks {
		items[i] = Item{Task: task, Status: OutcomeOK}
	}

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		b.perturbBatch(ctx, batch)
		b.gradeBatch(ctx, topicPrompt, batch)
	}
	return items
}

// perturbBatch fills Text for each item. One BatchPerturb call is attempted;
// on failure, and for indices the batch response left empty, items fall back
// to individual Perturb calls.
func (b *Batcher) perturbBatch(ctx context.Context, batch []Item) {
	prompts := make([]string, len(batch))
	for i, item := range batch {
		prompts[i] = fmt.Sprintf("%s: %s", item.Task.Criterion.Prompt, item.Task.Statement.Text)
	}

	outputs, err := b.provider.BatchPerturb(ctx, prompts)
	if err != nil {
		if !errors.Is(err, llm.ErrBatchUnsupported) {
			b.logger.Warn("Batch perturb failed, falling back to per-item calls", zap.Error(err))
		}
		outputs = make([]*string, len(batch))
	}

	for i := range batch {
		if i < len(outputs) && outputs[i] != nil {
			batch[i].Text = *outputs[i]
			continue
		}
		text, err := b.provider.Perturb(ctx, prompts[i])
		if err != nil {
			b.logger.Warn("Perturbation failed for item",
				zap.String("statement_id", batch[i].Task.Statement.ID),
				zap.String("criterion", batch[i].Task.Criterion.Name),
				zap.Error(err))
			batch[i].Status = OutcomePerturbFailed
			batch[i].Detail = err.Error()
			continue
		}
		batch[i].Text = text
	}
}

// gradeBatch fills Decision for every item that survived perturbation.
func (b *Batcher) gradeBatch(ctx context.Context, topicPrompt string, batch []Item) {
	var texts []string
	var indices []int
	for i, item := range batch {
		if item.Status == OutcomePerturbFailed {
			continue
		}
		texts = append(texts, item.Text)
		indices = append(indices, i)
	}
	if len(texts) == 0 {
		return
	}

	decisions, err := b.provider.BatchGrade(ctx, texts, topicPrompt)
	if err != nil || len(decisions) != len(texts) {
		if err != nil && !errors.Is(err, llm.ErrBatchUnsupported) {
			b.logger.Warn("Batch grade failed, falling back to per-item calls", zap.Error(err))
		}
		decisions = make([]llm.Decision, len(texts))
		for j, text := range texts {
			decisions[j] = b.provider.Grade(ctx, text, topicPrompt)
		}
	}

	for j, idx := range indices {
		batch[idx].Decision = decisions[j]
		if decisions[j] == llm.DecisionUnknown {
			batch[idx].Status = OutcomeGradeUnknown
		}
	}
}
