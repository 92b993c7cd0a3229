package llm

import (
	"errors"
	"sort"

	"go.uber.org/zap"
)

// ErrUnknownModel is returned when a caller references a model id that is
// not registered.
var ErrUnknownModel = errors.New("unknown model id")

// ModelInfo is the dropdown metadata for a registered model.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModelStore persists each user's selected model id.
type ModelStore interface {
	GetModel(userID int64) (string, error)
	SetModel(userID int64, modelID string) error
}

// Registry maps model ids to providers and resolves the provider for a user,
// falling back to the default when the stored selection is stale.
type Registry struct {
	providers map[string]Provider
	infos     []ModelInfo
	defaultID string
	store     ModelStore
	logger    *zap.Logger
}

// NewRegistry wires the available providers. defaultID must be registered.
func NewRegistry(providers map[string]Provider, names map[string]string, defaultID string, store ModelStore, logger *zap.Logger) (*Registry, error) {
	if _, ok := providers[defaultID]; !ok {
		return nil, ErrUnknownModel
	}
	infos := make([]ModelInfo, 0, len(providers))
	for id := range providers {
		name := names[id]
		if name == "" {
			name = id
		}
		infos = append(infos, ModelInfo{ID: id, Name: name})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return &Registry{
		providers: providers,
		infos:     infos,
		defaultID: defaultID,
		store:     store,
		logger:    logger,
	}, nil
}

// List returns metadata for all registered models.
func (r *Registry) List() []ModelInfo {
	return r.infos
}

// DefaultID returns the configured default model id.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// ForUser resolves the user's selected provider. An unset or stale selection
// falls back to the default model and repairs the stored value.
func (r *Registry) ForUser(userID int64) (Provider, string) {
	modelID, err := r.store.GetModel(userID)
	if err != nil || modelID == "" {
		modelID = r.defaultID
	}
	provider, ok := r.providers[modelID]
	if !ok {
		r.logger.Warn("Selected model is not registered, falling back to default",
			zap.String("model_id", modelID), zap.String("default", r.defaultID))
		if err := r.store.SetModel(userID, r.defaultID); err != nil {
			r.logger.Error("Failed to reset user model selection", zap.Error(err))
		}
		return r.providers[r.defaultID], r.defaultID
	}
	return provider, modelID
}

// Select stores the user's model choice.
func (r *Registry) Select(userID int64, modelID string) error {
	if _, ok := r.providers[modelID]; !ok {
		return ErrUnknownModel
	}
	return r.store.SetModel(userID, modelID)
}
