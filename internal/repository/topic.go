package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type TopicRepository interface {
	Create(t *models.Topic) error
	Get(userID int64, name string) (*models.Topic, error)
	List(userID int64) ([]models.Topic, error)
	Delete(userID int64, name string) error
}

type topicRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewTopicRepository(db *sqlx.DB, logger *zap.Logger) TopicRepository {
	return &topicRepository{db: db, logger: logger}
}

func (r *topicRepository) Create(t *models.Topic) error {
	query := `INSERT INTO topics (user_id, name, prompt, is_default)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET prompt = EXCLUDED.prompt
		RETURNING created_at`
	return r.db.QueryRowx(query, t.UserID, t.Name, t.Prompt, t.Default).Scan(&t.CreatedAt)
}

func (r *topicRepository) Get(userID int64, name string) (*models.Topic, error) {
	var t models.Topic
	query := `SELECT name, user_id, prompt, is_default, created_at FROM topics WHERE user_id = $1 AND name = $2`
	err := r.db.Get(&t, query, userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *topicRepository) List(userID int64) ([]models.Topic, error) {
	topics := []models.Topic{}
	query := `SELECT name, user_id, prompt, is_default, created_at FROM topics WHERE user_id = $1 ORDER BY created_at`
	if err := r.db.Select(&topics, query, userID); err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) Delete(userID int64, name string) error {
	res, err := r.db.Exec(`DELETE FROM topics WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
