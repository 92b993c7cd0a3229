package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/repository"
)

func newTestRegistry() *Registry {
	return NewRegistry(repository.NewMemoryCriteriaRepository(), zap.NewNop())
}

func TestResolveBuildsDefaultSetOnFirstUse(t *testing.T) {
	registry := newTestRegistry()

	set, err := registry.Resolve(1, "food")
	require.NoError(t, err)
	require.Len(t, set, len(defaultPresets[DefaultPreset]))

	names := make([]string, len(set))
	for i, c := range set {
		names[i] = c.Name
		assert.True(t, c.IsDefault)
		assert.NotEmpty(t, c.Prompt)
	}
	assert.Equal(t, defaultPresets[DefaultPreset], names)
}

func TestResolvePinsAcrossCustomChanges(t *testing.T) {
	registry := newTestRegistry()

	first, err := registry.Resolve(1, "food")
	require.NoError(t, err)

	// A criterion added after pinning must not leak into the pinned topic.
	_, err = registry.Add(1, "emoji", "Replace words with emoji in this text", false)
	require.NoError(t, err)

	second, err := registry.Resolve(1, "food")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A fresh topic picks the custom criterion up.
	fresh, err := registry.Resolve(1, "housing")
	require.NoError(t, err)
	assert.Len(t, fresh, len(first)+1)
	assert.Equal(t, "emoji", fresh[len(fresh)-1].Name)
}

func TestResolveIsScopedPerUserAndTopic(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Add(1, "emoji", "Replace words with emoji in this text", false)
	require.NoError(t, err)

	withCustom, err := registry.Resolve(1, "food")
	require.NoError(t, err)
	withoutCustom, err := registry.Resolve(2, "food")
	require.NoError(t, err)
	assert.Len(t, withCustom, len(withoutCustom)+1)
}

func TestCustomCriterionLifecycle(t *testing.T) {
	registry := newTestRegistry()

	created, err := registry.Add(1, "emoji", "Replace words with emoji in this text", false)
	require.NoError(t, err)
	assert.False(t, created.FlipLabel)

	_, err = registry.Add(1, "emoji", "duplicate", false)
	assert.ErrorIs(t, err, ErrCriterionExists)

	edited, err := registry.Edit(1, "emoji", "Swap words for emoji", true)
	require.NoError(t, err)
	assert.True(t, edited.FlipLabel)
	assert.Equal(t, "Swap words for emoji", edited.Prompt)

	_, err = registry.Edit(1, "missing", "x", false)
	assert.ErrorIs(t, err, ErrCriterionNotFound)

	require.NoError(t, registry.Delete(1, "emoji"))
	assert.ErrorIs(t, registry.Delete(1, "emoji"), ErrCriterionNotFound)
}

func TestInfoPrefersCustomOverBuiltin(t *testing.T) {
	registry := newTestRegistry()

	builtin, err := registry.Info(1, "negation")
	require.NoError(t, err)
	assert.True(t, builtin.IsDefault)
	assert.True(t, builtin.FlipLabel)

	_, err = registry.Add(1, "negation", "My own negation prompt", false)
	require.NoError(t, err)
	overridden, err := registry.Info(1, "negation")
	require.NoError(t, err)
	assert.False(t, overridden.IsDefault)
	assert.Equal(t, "My own negation prompt", overridden.Prompt)

	_, err = registry.Info(1, "nonexistent")
	assert.ErrorIs(t, err, ErrCriterionNotFound)
}

func TestDefaultTypes(t *testing.T) {
	names, err := DefaultTypes("Mini-AIBAT")
	require.NoError(t, err)
	assert.Equal(t, []string{"spelling", "synonyms", "paraphrase", "acronyms", "spanish"}, names)

	_, err = DefaultTypes("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestFlipsLabelSet(t *testing.T) {
	assert.True(t, FlipsLabel("negation"))
	assert.True(t, FlipsLabel("antonyms"))
	assert.False(t, FlipsLabel("paraphrase"))
	assert.False(t, FlipsLabel("unheard_of"))
}

func TestPerturbPromptFallback(t *testing.T) {
	assert.Equal(t, "Apply emoji perturbation to this text", PerturbPrompt("emoji"))
	assert.NotEqual(t, PerturbPrompt("negation"), PerturbPrompt("emoji"))
}
