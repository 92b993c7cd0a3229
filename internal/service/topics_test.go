package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/models"
	"backend/internal/repository"
)

type topicFixture struct {
	service       *TopicService
	statements    repository.StatementRepository
	perturbations repository.PerturbationRepository
	criteria      repository.CriteriaRepository
	cache         repository.AssessmentCacheRepository
}

func newTopicFixture() *topicFixture {
	statements := repository.NewMemoryStatementRepository()
	perturbations := repository.NewMemoryPerturbationRepository()
	criteria := repository.NewMemoryCriteriaRepository()
	cache := repository.NewMemoryAssessmentCacheRepository()
	topics := repository.NewMemoryTopicRepository()
	return &topicFixture{
		service:       NewTopicService(topics, statements, perturbations, criteria, cache, zap.NewNop()),
		statements:    statements,
		perturbations: perturbations,
		criteria:      criteria,
		cache:         cache,
	}
}

func TestEnsureOnboardedSeedsDefaults(t *testing.T) {
	f := newTopicFixture()

	require.NoError(t, f.service.EnsureOnboarded(1))
	topics, err := f.service.List(1)
	require.NoError(t, err)
	require.Len(t, topics, len(defaultTopics))
	for _, topic := range topics {
		assert.True(t, topic.Default)
		assert.NotEmpty(t, topic.Prompt)
		statements, err := f.service.ListStatements(1, topic.Name)
		require.NoError(t, err)
		require.Len(t, statements, 1)
		assert.Equal(t, models.GroundTruthUngraded, statements[0].GroundTruth)
	}

	// A second call must not duplicate anything.
	require.NoError(t, f.service.EnsureOnboarded(1))
	topics, err = f.service.List(1)
	require.NoError(t, err)
	assert.Len(t, topics, len(defaultTopics))
}

func TestAddStatementValidatesInput(t *testing.T) {
	f := newTopicFixture()
	_, err := f.service.Create(1, "food", "Is this about food?")
	require.NoError(t, err)

	st, err := f.service.AddStatement(1, "food", "I like pizza", "")
	require.NoError(t, err)
	assert.Equal(t, models.GroundTruthUngraded, st.GroundTruth)
	assert.NotEmpty(t, st.ID)

	_, err = f.service.AddStatement(1, "food", "bad label", "maybe")
	assert.Error(t, err)

	_, err = f.service.AddStatement(1, "no-such-topic", "text", "")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestDeleteTopicCascades(t *testing.T) {
	f := newTopicFixture()
	_, err := f.service.Create(1, "food", "Is this about food?")
	require.NoError(t, err)
	st, err := f.service.AddStatement(1, "food", "I like pizza", models.GroundTruthAcceptable)
	require.NoError(t, err)

	require.NoError(t, f.perturbations.Upsert(&models.Perturbation{
		ID: "p-1", UserID: 1, OriginalID: st.ID, Text: "x", Criterion: "spelling", Topic: "food",
	}))
	require.NoError(t, f.criteria.SavePinnedSet(1, "food", []models.Criterion{{Name: "spelling"}}))
	require.NoError(t, f.cache.Put(&models.CachedAssessment{
		UserID: 1, Topic: "food", ModelID: "m", StatementID: st.ID, Statement: st.Text, AIAssessment: models.AssessmentPass,
	}))

	require.NoError(t, f.service.Delete(1, "food"))

	_, err = f.service.ListStatements(1, "food")
	assert.ErrorIs(t, err, ErrTopicNotFound)
	perturbations, err := f.perturbations.ListByTopic(1, "food")
	require.NoError(t, err)
	assert.Empty(t, perturbations)
	_, err = f.criteria.GetPinnedSet(1, "food")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.cache.Get(1, "food", "m", st.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, f.service.Delete(1, "food"), ErrTopicNotFound)
}

func TestDeleteStatementsRemovesPerturbations(t *testing.T) {
	f := newTopicFixture()
	_, err := f.service.Create(1, "food", "Is this about food?")
	require.NoError(t, err)
	st, err := f.service.AddStatement(1, "food", "I like pizza", "")
	require.NoError(t, err)
	require.NoError(t, f.perturbations.Upsert(&models.Perturbation{
		ID: "p-1", UserID: 1, OriginalID: st.ID, Text: "x", Criterion: "spelling", Topic: "food",
	}))

	require.NoError(t, f.service.DeleteStatements(1, []string{st.ID, "missing"}))

	statements, err := f.service.ListStatements(1, "food")
	require.NoError(t, err)
	assert.Empty(t, statements)
	perturbations, err := f.perturbations.ListByOriginal(1, st.ID)
	require.NoError(t, err)
	assert.Empty(t, perturbations)
}
