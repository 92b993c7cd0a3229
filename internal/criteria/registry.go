package criteria

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"backend/internal/models"
	"backend/internal/repository"
)

var (
	ErrCriterionExists   = errors.New("criterion already exists")
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrUnknownPreset     = errors.New("unknown criteria preset")
)

// Registry resolves criterion names to prompt/flip pairs, merging built-in
// defaults with user-defined criteria. The set resolved for a (user, topic)
// pair is pinned on first use so repeated generation runs see identical
// criteria even if defaults or custom criteria change later.
type Registry struct {
	store  repository.CriteriaRepository
	logger *zap.Logger
}

func NewRegistry(store repository.CriteriaRepository, logger *zap.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// Resolve returns the pinned criteria set for (user, topic), creating and
// persisting it from the default preset plus the user's custom criteria when
// no pin exists yet.
func (r *Registry) Resolve(userID int64, topic string) ([]models.Criterion, error) {
	pinned, err := r.store.GetPinnedSet(userID, topic)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load pinned criteria: %w", err)
	}
	if len(pinned) > 0 {
		return pinned, nil
	}

	set := make([]models.Criterion, 0, len(defaultPresets[DefaultPreset]))
	for _, name := range defaultPresets[DefaultPreset] {
		set = append(set, models.Criterion{
			Name:      name,
			Prompt:    PerturbPrompt(name),
			FlipLabel: FlipsLabel(name),
			IsDefault: true,
		})
	}
	custom, err := r.store.ListCustom(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom criteria: %w", err)
	}
	set = append(set, custom...)

	if err := r.store.SavePinnedSet(userID, topic, set); err != nil {
		return nil, fmt.Errorf("failed to pin criteria set: %w", err)
	}
	r.logger.Info("Pinned criteria set for topic",
		zap.String("topic", topic), zap.Int("criteria", len(set)))
	return set, nil
}

// Info returns the prompt/flip pair for a criterion name, preferring the
// user's custom criterion over a built-in of the same name.
func (r *Registry) Info(userID int64, name string) (*models.Criterion, error) {
	c, err := r.store.GetCustom(userID, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, ok := perturbPrompts[name]; ok {
		return &models.Criterion{
			Name:      name,
			Prompt:    PerturbPrompt(name),
			FlipLabel: FlipsLabel(name),
			IsDefault: true,
		}, nil
	}
	return nil, ErrCriterionNotFound
}

// ListTypes returns the user's custom criteria followed by the default
// preset's built-ins.
func (r *Registry) ListTypes(userID int64) ([]models.Criterion, error) {
	custom, err := r.store.ListCustom(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom criteria: %w", err)
	}
	out := make([]models.Criterion, 0, len(custom)+len(defaultPresets[DefaultPreset]))
	out = append(out, custom...)
	for _, name := range defaultPresets[DefaultPreset] {
		out = append(out, models.Criterion{
			Name:      name,
			Prompt:    PerturbPrompt(name),
			FlipLabel: FlipsLabel(name),
			IsDefault: true,
		})
	}
	return out, nil
}

// Add stores a user-authored criterion. Names must be unique per user.
func (r *Registry) Add(userID int64, name, prompt string, flipLabel bool) (*models.Criterion, error) {
	_, err := r.store.GetCustom(userID, name)
	if err == nil {
		return nil, ErrCriterionExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	c := &models.Criterion{Name: name, Prompt: prompt, FlipLabel: flipLabel}
	if err := r.store.SaveCustom(userID, c); err != nil {
		return nil, fmt.Errorf("failed to save custom criterion: %w", err)
	}
	return c, nil
}

// Edit updates an existing custom criterion. Already-pinned topics keep the
// criterion as resolved at pin time.
func (r *Registry) Edit(userID int64, name, prompt string, flipLabel bool) (*models.Criterion, error) {
	_, err := r.store.GetCustom(userID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCriterionNotFound
	}
	if err != nil {
		return nil, err
	}
	c := &models.Criterion{Name: name, Prompt: prompt, FlipLabel: flipLabel}
	if err := r.store.SaveCustom(userID, c); err != nil {
		return nil, fmt.Errorf("failed to update custom criterion: %w", err)
	}
	return c, nil
}

// Delete removes a custom criterion. The caller is responsible for deleting
// perturbations generated from it.
func (r *Registry) Delete(userID int64, name string) error {
	err := r.store.DeleteCustom(userID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCriterionNotFound
	}
	return err
}

// DefaultTypes returns the criterion names of a built-in preset.
func DefaultTypes(preset string) ([]string, error) {
	names, ok := defaultPresets[preset]
	if !ok {
		return nil, ErrUnknownPreset
	}
	return names, nil
}
