package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type StatementRepository interface {
	Create(s *models.Statement) error
	GetByID(userID int64, id string) (*models.Statement, error)
	ListByTopic(userID int64, topic string) ([]models.Statement, error)
	Update(s *models.Statement) error
	Delete(userID int64, id string) error
	DeleteByTopic(userID int64, topic string) error
}

type statementRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStatementRepository(db *sqlx.DB, logger *zap.Logger) StatementRepository {
	return &statementRepository{db: db, logger: logger}
}

func (r *statementRepository) Create(s *models.Statement) error {
	query := `INSERT INTO statements (id, user_id, topic, text, ground_truth, ai_assessment, agreement)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	return r.db.QueryRowx(query, s.ID, s.UserID, s.Topic, s.Text, s.GroundTruth, s.AIAssessment, s.Agreement).
		Scan(&s.CreatedAt)
}

func (r *statementRepository) GetByID(userID int64, id string) (*models.Statement, error) {
	var s models.Statement
	query := `SELECT id, user_id, topic, text, ground_truth, ai_assessment, agreement, created_at, graded_at
		FROM statements WHERE user_id = $1 AND id = $2`
	err := r.db.Get(&s, query, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *statementRepository) ListByTopic(userID int64, topic string) ([]models.Statement, error) {
	statements := []models.Statement{}
	query := `SELECT id, user_id, topic, text, ground_truth, ai_assessment, agreement, created_at, graded_at
		FROM statements WHERE user_id = $1 AND topic = $2 ORDER BY created_at`
	if err := r.db.Select(&statements, query, userID, topic); err != nil {
		return nil, err
	}
	return statements, nil
}

func (r *statementRepository) Update(s *models.Statement) error {
	query := `UPDATE statements SET text = $1, ground_truth = $2, ai_assessment = $3, agreement = $4, graded_at = $5
		WHERE user_id = $6 AND id = $7`
	res, err := r.db.Exec(query, s.Text, s.GroundTruth, s.AIAssessment, s.Agreement, s.GradedAt, s.UserID, s.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *statementRepository) Delete(userID int64, id string) error {
	res, err := r.db.Exec(`DELETE FROM statements WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *statementRepository) DeleteByTopic(userID int64, topic string) error {
	_, err := r.db.Exec(`DELETE FROM statements WHERE user_id = $1 AND topic = $2`, userID, topic)
	return err
}
