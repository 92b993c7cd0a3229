package perturb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/criteria"
	"backend/internal/llm"
	"backend/internal/models"
	"backend/internal/repository"
)

type serviceFixture struct {
	service       *Service
	statements    repository.StatementRepository
	perturbations repository.PerturbationRepository
	topics        repository.TopicRepository
}

func newServiceFixture(t *testing.T, provider llm.Provider) *serviceFixture {
	t.Helper()
	logger := zap.NewNop()
	statements := repository.NewMemoryStatementRepository()
	perturbations := repository.NewMemoryPerturbationRepository()
	topics := repository.NewMemoryTopicRepository()
	criteriaRegistry := criteria.NewRegistry(repository.NewMemoryCriteriaRepository(), logger)

	registry, err := llm.NewRegistry(
		map[string]llm.Provider{"test-model": provider},
		map[string]string{"test-model": "Test Model"},
		"test-model",
		repository.NewMemorySettingsRepository(),
		logger,
	)
	require.NoError(t, err)

	return &serviceFixture{
		service:       NewService(perturbations, statements, topics, criteriaRegistry, registry, 10, logger),
		statements:    statements,
		perturbations: perturbations,
		topics:        topics,
	}
}

func TestPerturbationIDDeterministic(t *testing.T) {
	first := PerturbationID("st-1", "negation")
	assert.Equal(t, first, PerturbationID("st-1", "negation"))
	assert.NotEqual(t, first, PerturbationID("st-1", "antonyms"))
	assert.NotEqual(t, first, PerturbationID("st-2", "negation"))
}

func TestGeneratePerturbationsAppliesPinnedSet(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionAcceptable))
	require.NoError(t, f.statements.Create(&models.Statement{
		ID:          "st-1",
		UserID:      1,
		Topic:       "food",
		Text:        "I like pizza",
		GroundTruth: models.GroundTruthAcceptable,
	}))

	result, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)

	// One perturbation per criterion of the default preset.
	defaults, err := criteria.DefaultTypes(criteria.DefaultPreset)
	require.NoError(t, err)
	assert.Equal(t, len(defaults), result.GeneratedCount)
	assert.Len(t, result.Outcomes, len(defaults))

	byCriterion := map[string]models.Perturbation{}
	for _, p := range result.Perturbations {
		byCriterion[p.Criterion] = p
		assert.Equal(t, "st-1", p.OriginalID)
		assert.Equal(t, PerturbationID("st-1", p.Criterion), p.ID)
		assert.Equal(t, models.AssessmentPass, p.AIAssessment)
	}

	// Label-flipping criteria expect the opposite label, so a passing
	// assessment disagrees with them.
	assert.Equal(t, models.ValidityDenied, byCriterion["negation"].Validity)
	assert.Equal(t, models.ValidityDenied, byCriterion["antonyms"].Validity)
	assert.Equal(t, models.ValidityApproved, byCriterion["paraphrase"].Validity)
	assert.Equal(t, models.GroundTruthUnacceptable, byCriterion["negation"].GroundTruth)
	assert.Equal(t, models.GroundTruthAcceptable, byCriterion["spelling"].GroundTruth)
}

func TestGeneratePerturbationsIsIdempotent(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionAcceptable))
	require.NoError(t, f.statements.Create(&models.Statement{
		ID:          "st-1",
		UserID:      1,
		Topic:       "food",
		Text:        "I like pizza",
		GroundTruth: models.GroundTruthAcceptable,
	}))

	first, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)
	second, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)

	assert.Equal(t, first.GeneratedCount, second.GeneratedCount)
	stored, err := f.perturbations.ListByTopic(1, "food")
	require.NoError(t, err)
	assert.Len(t, stored, first.GeneratedCount)
}

func TestGeneratePerturbationsUngradedOriginalIsDenied(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionAcceptable))
	require.NoError(t, f.statements.Create(&models.Statement{
		ID:          "st-1",
		UserID:      1,
		Topic:       "food",
		Text:        "I like pizza",
		GroundTruth: models.GroundTruthUngraded,
	}))

	result, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.Perturbations)
	// No expected label to match against, so every assessment comes out denied.
	for _, p := range result.Perturbations {
		assert.Equal(t, models.GroundTruthUngraded, p.GroundTruth)
		assert.Equal(t, models.ValidityDenied, p.Validity)
	}
}

func TestGeneratePerturbationsUnknownAssessmentIsDenied(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionUnknown))
	require.NoError(t, f.statements.Create(&models.Statement{
		ID:          "st-1",
		UserID:      1,
		Topic:       "food",
		Text:        "I like pizza",
		GroundTruth: models.GroundTruthAcceptable,
	}))

	result, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.Perturbations)
	for _, p := range result.Perturbations {
		assert.Equal(t, models.AssessmentUnknown, p.AIAssessment)
		assert.Equal(t, models.ValidityDenied, p.Validity)
	}
	stored, err := f.perturbations.ListByTopic(1, "food")
	require.NoError(t, err)
	for _, p := range stored {
		assert.Equal(t, models.ValidityDenied, p.Validity)
	}
}

func TestGeneratePerturbationsRecordsFailedItems(t *testing.T) {
	provider := &scriptProvider{
		perturb: func(prompt string) (string, error) {
			return "", assert.AnError
		},
	}
	f := newServiceFixture(t, provider)
	require.NoError(t, f.statements.Create(&models.Statement{
		ID:          "st-1",
		UserID:      1,
		Topic:       "food",
		Text:        "I like pizza",
		GroundTruth: models.GroundTruthAcceptable,
	}))

	result, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)

	assert.Zero(t, result.GeneratedCount)
	assert.Empty(t, result.Perturbations)
	require.NotEmpty(t, result.Outcomes)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, OutcomePerturbFailed, outcome.Status)
		assert.NotEmpty(t, outcome.Detail)
	}
	stored, err := f.perturbations.ListByTopic(1, "food")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestGeneratePerturbationsHonorsIDSubset(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionAcceptable))
	for _, id := range []string{"st-1", "st-2"} {
		require.NoError(t, f.statements.Create(&models.Statement{
			ID:          id,
			UserID:      1,
			Topic:       "food",
			Text:        "statement " + id,
			GroundTruth: models.GroundTruthAcceptable,
		}))
	}

	result, err := f.service.GeneratePerturbations(context.Background(), 1, "food", []string{"st-2"}, 0)
	require.NoError(t, err)
	for _, p := range result.Perturbations {
		assert.Equal(t, "st-2", p.OriginalID)
	}
}

func TestGeneratePerturbationsOverridesBatchSize(t *testing.T) {
	var batchSizes []int
	provider := &scriptProvider{
		batchPerturb: func(prompts []string) ([]*string, error) {
			batchSizes = append(batchSizes, len(prompts))
			out := make([]*string, len(prompts))
			for i, prompt := range prompts {
				text := "rewritten " + prompt
				out[i] = &text
			}
			return out, nil
		},
		batchGrade: func(statements []string) ([]llm.Decision, error) {
			decisions := make([]llm.Decision, len(statements))
			for i := range decisions {
				decisions[i] = llm.DecisionAcceptable
			}
			return decisions, nil
		},
	}
	f := newServiceFixture(t, provider)
	require.NoError(t, f.statements.Create(&models.Statement{
		ID:          "st-1",
		UserID:      1,
		Topic:       "food",
		Text:        "I like pizza",
		GroundTruth: models.GroundTruthAcceptable,
	}))

	// Seven tasks (one per default criterion) split into batches of three.
	_, err := f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, batchSizes)

	// A non-positive override falls back to the configured size.
	batchSizes = nil
	_, err = f.service.GeneratePerturbations(context.Background(), 1, "food", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, batchSizes)
}

func TestValidateAdoptsOrInvertsLabel(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionAcceptable))
	require.NoError(t, f.perturbations.Upsert(&models.Perturbation{
		ID:           "p-1",
		UserID:       1,
		OriginalID:   "st-1",
		Text:         "perturbed text",
		AIAssessment: models.AssessmentPass,
		Criterion:    "paraphrase",
		Topic:        "food",
		GroundTruth:  models.GroundTruthAcceptable,
		Validity:     models.ValidityUngraded,
	}))

	approved, err := f.service.Validate(1, "p-1", models.ValidityApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ValidityApproved, approved.Validity)
	assert.Equal(t, models.GroundTruthAcceptable, approved.GroundTruth)

	denied, err := f.service.Validate(1, "p-1", models.ValidityDenied)
	require.NoError(t, err)
	assert.Equal(t, models.ValidityDenied, denied.Validity)
	assert.Equal(t, models.GroundTruthUnacceptable, denied.GroundTruth)

	_, err = f.service.Validate(1, "p-1", "maybe")
	assert.Error(t, err)
}

func TestEditRegradesAndRecomputesValidity(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionUnacceptable))
	require.NoError(t, f.perturbations.Upsert(&models.Perturbation{
		ID:           "p-1",
		UserID:       1,
		OriginalID:   "st-1",
		Text:         "old text",
		AIAssessment: models.AssessmentPass,
		Criterion:    "paraphrase",
		Topic:        "food",
		GroundTruth:  models.GroundTruthAcceptable,
		Validity:     models.ValidityApproved,
	}))

	edited, err := f.service.Edit(context.Background(), 1, "p-1", "new text")
	require.NoError(t, err)
	assert.Equal(t, "new text", edited.Text)
	assert.Equal(t, models.AssessmentFail, edited.AIAssessment)
	assert.Equal(t, models.ValidityDenied, edited.Validity)
}

func TestRefreshForOriginalRecomputesFlippedLabels(t *testing.T) {
	f := newServiceFixture(t, llm.NewStaticProvider("test-model", llm.DecisionAcceptable))
	for _, criterion := range []string{"negation", "paraphrase"} {
		require.NoError(t, f.perturbations.Upsert(&models.Perturbation{
			ID:           PerturbationID("st-1", criterion),
			UserID:       1,
			OriginalID:   "st-1",
			Text:         "perturbed " + criterion,
			AIAssessment: models.AssessmentPass,
			Criterion:    criterion,
			Topic:        "food",
			GroundTruth:  models.GroundTruthAcceptable,
			Validity:     models.ValidityApproved,
		}))
	}

	require.NoError(t, f.service.RefreshForOriginal(1, "st-1", models.GroundTruthUnacceptable))

	stored, err := f.perturbations.ListByOriginal(1, "st-1")
	require.NoError(t, err)
	byCriterion := map[string]models.Perturbation{}
	for _, p := range stored {
		byCriterion[p.Criterion] = p
	}
	// Negation flips the new label back to acceptable, which the passing
	// assessment matches; paraphrase keeps unacceptable, which it does not.
	assert.Equal(t, models.GroundTruthAcceptable, byCriterion["negation"].GroundTruth)
	assert.Equal(t, models.ValidityApproved, byCriterion["negation"].Validity)
	assert.Equal(t, models.GroundTruthUnacceptable, byCriterion["paraphrase"].GroundTruth)
	assert.Equal(t, models.ValidityDenied, byCriterion["paraphrase"].Validity)
}
