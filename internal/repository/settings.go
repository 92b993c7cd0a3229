package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SettingsRepository persists per-user preferences. It satisfies
// llm.ModelStore for model selection.
type SettingsRepository interface {
	GetModel(userID int64) (string, error)
	SetModel(userID int64, modelID string) error
}

type settingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSettingsRepository(db *sqlx.DB, logger *zap.Logger) SettingsRepository {
	return &settingsRepository{db: db, logger: logger}
}

func (r *settingsRepository) GetModel(userID int64) (string, error) {
	var modelID string
	err := r.db.Get(&modelID, `SELECT model_id FROM user_settings WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return modelID, nil
}

func (r *settingsRepository) SetModel(userID int64, modelID string) error {
	query := `INSERT INTO user_settings (user_id, model_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET model_id = EXCLUDED.model_id, updated_at = now()`
	_, err := r.db.Exec(query, userID, modelID)
	return err
}
