package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeModelStore struct {
	selections map[int64]string
}

func newFakeModelStore() *fakeModelStore {
	return &fakeModelStore{selections: map[int64]string{}}
}

func (s *fakeModelStore) GetModel(userID int64) (string, error) {
	modelID, ok := s.selections[userID]
	if !ok {
		return "", errors.New("no selection")
	}
	return modelID, nil
}

func (s *fakeModelStore) SetModel(userID int64, modelID string) error {
	s.selections[userID] = modelID
	return nil
}

func newTestRegistry(t *testing.T, store ModelStore) *Registry {
	t.Helper()
	registry, err := NewRegistry(
		map[string]Provider{
			"alpha": NewStaticProvider("alpha", DecisionAcceptable),
			"beta":  NewStaticProvider("beta", DecisionUnacceptable),
		},
		map[string]string{"alpha": "Alpha", "beta": "Beta"},
		"alpha",
		store,
		zap.NewNop(),
	)
	require.NoError(t, err)
	return registry
}

func TestNewRegistryRejectsUnknownDefault(t *testing.T) {
	_, err := NewRegistry(map[string]Provider{}, nil, "missing", newFakeModelStore(), zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestRegistryListIsSorted(t *testing.T) {
	registry := newTestRegistry(t, newFakeModelStore())
	infos := registry.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].ID)
	assert.Equal(t, "beta", infos[1].ID)
}

func TestForUserFallsBackToDefault(t *testing.T) {
	registry := newTestRegistry(t, newFakeModelStore())
	provider, modelID := registry.ForUser(42)
	assert.Equal(t, "alpha", modelID)
	assert.Equal(t, DecisionAcceptable, provider.Grade(context.Background(), "anything", ""))
}

func TestForUserRepairsStaleSelection(t *testing.T) {
	store := newFakeModelStore()
	store.selections[42] = "retired-model"
	registry := newTestRegistry(t, store)

	_, modelID := registry.ForUser(42)
	assert.Equal(t, "alpha", modelID)
	assert.Equal(t, "alpha", store.selections[42])
}

func TestSelectPersistsChoice(t *testing.T) {
	store := newFakeModelStore()
	registry := newTestRegistry(t, store)

	require.NoError(t, registry.Select(42, "beta"))
	provider, modelID := registry.ForUser(42)
	assert.Equal(t, "beta", modelID)
	assert.Equal(t, DecisionUnacceptable, provider.Grade(context.Background(), "anything", ""))

	assert.ErrorIs(t, registry.Select(42, "nope"), ErrUnknownModel)
}

func TestStaticProviderHasNoBatchSupport(t *testing.T) {
	provider := NewStaticProvider("static", DecisionAcceptable)

	_, err := provider.BatchPerturb(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrBatchUnsupported)
	_, err = provider.BatchGrade(context.Background(), []string{"a"}, "")
	assert.ErrorIs(t, err, ErrBatchUnsupported)

	text, err := provider.Perturb(context.Background(), "rewrite: hello")
	require.NoError(t, err)
	assert.Equal(t, "static: rewrite: hello", text)
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
