package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type AssessmentCacheRepository interface {
	Get(userID int64, topic, modelID, statementID string) (*models.CachedAssessment, error)
	Put(entry *models.CachedAssessment) error
	DeleteScope(userID int64, topic, modelID string) (int64, error)
	DeleteTopic(userID int64, topic string) error
}

type assessmentCacheRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAssessmentCacheRepository(db *sqlx.DB, logger *zap.Logger) AssessmentCacheRepository {
	return &assessmentCacheRepository{db: db, logger: logger}
}

func (r *assessmentCacheRepository) Get(userID int64, topic, modelID, statementID string) (*models.CachedAssessment, error) {
	var entry models.CachedAssessment
	query := `SELECT user_id, topic, model_id, statement_id, statement, ai_assessment, created_at, updated_at
		FROM assessment_cache WHERE user_id = $1 AND topic = $2 AND model_id = $3 AND statement_id = $4`
	err := r.db.Get(&entry, query, userID, topic, modelID, statementID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *assessmentCacheRepository) Put(entry *models.CachedAssessment) error {
	query := `INSERT INTO assessment_cache (user_id, topic, model_id, statement_id, statement, ai_assessment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, topic, model_id, statement_id) DO UPDATE SET
			statement = EXCLUDED.statement,
			ai_assessment = EXCLUDED.ai_assessment,
			updated_at = now()
		RETURNING created_at, updated_at`
	return r.db.QueryRowx(query,
		entry.UserID, entry.Topic, entry.ModelID, entry.StatementID, entry.Statement, entry.AIAssessment).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
}

// DeleteScope drops all cached assessments for a (user, topic, model) scope
// and returns the number of rows removed.
func (r *assessmentCacheRepository) DeleteScope(userID int64, topic, modelID string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM assessment_cache WHERE user_id = $1 AND topic = $2 AND model_id = $3`,
		userID, topic, modelID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// DeleteTopic drops cached assessments for a topic across all models.
func (r *assessmentCacheRepository) DeleteTopic(userID int64, topic string) error {
	_, err := r.db.Exec(`DELETE FROM assessment_cache WHERE user_id = $1 AND topic = $2`, userID, topic)
	return err
}
