package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type CriteriaRepository interface {
	GetPinnedSet(userID int64, topic string) ([]models.Criterion, error)
	SavePinnedSet(userID int64, topic string, set []models.Criterion) error
	DeletePinnedSet(userID int64, topic string) error
	ListCustom(userID int64) ([]models.Criterion, error)
	GetCustom(userID int64, name string) (*models.Criterion, error)
	SaveCustom(userID int64, c *models.Criterion) error
	DeleteCustom(userID int64, name string) error
}

type criteriaRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCriteriaRepository(db *sqlx.DB, logger *zap.Logger) CriteriaRepository {
	return &criteriaRepository{db: db, logger: logger}
}

func (r *criteriaRepository) GetPinnedSet(userID int64, topic string) ([]models.Criterion, error) {
	set := []models.Criterion{}
	query := `SELECT name, prompt, flip_label, is_default, created_at
		FROM pinned_criteria WHERE user_id = $1 AND topic = $2 ORDER BY position`
	if err := r.db.Select(&set, query, userID, topic); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, ErrNotFound
	}
	return set, nil
}

// SavePinnedSet replaces the pinned set for (user, topic) atomically.
func (r *criteriaRepository) SavePinnedSet(userID int64, topic string, set []models.Criterion) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pinned_criteria WHERE user_id = $1 AND topic = $2`, userID, topic); err != nil {
		return err
	}
	query := `INSERT INTO pinned_criteria (user_id, topic, position, name, prompt, flip_label, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, c := range set {
		if _, err := tx.Exec(query, userID, topic, i, c.Name, c.Prompt, c.FlipLabel, c.IsDefault); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *criteriaRepository) DeletePinnedSet(userID int64, topic string) error {
	_, err := r.db.Exec(`DELETE FROM pinned_criteria WHERE user_id = $1 AND topic = $2`, userID, topic)
	return err
}

func (r *criteriaRepository) ListCustom(userID int64) ([]models.Criterion, error) {
	criteria := []models.Criterion{}
	query := `SELECT name, prompt, flip_label, is_default, created_at
		FROM custom_criteria WHERE user_id = $1 ORDER BY created_at`
	if err := r.db.Select(&criteria, query, userID); err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *criteriaRepository) GetCustom(userID int64, name string) (*models.Criterion, error) {
	var c models.Criterion
	query := `SELECT name, prompt, flip_label, is_default, created_at
		FROM custom_criteria WHERE user_id = $1 AND name = $2`
	err := r.db.Get(&c, query, userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *criteriaRepository) SaveCustom(userID int64, c *models.Criterion) error {
	query := `INSERT INTO custom_criteria (user_id, name, prompt, flip_label)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET prompt = EXCLUDED.prompt, flip_label = EXCLUDED.flip_label
		RETURNING created_at`
	return r.db.QueryRowx(query, userID, c.Name, c.Prompt, c.FlipLabel).Scan(&c.CreatedAt)
}

func (r *criteriaRepository) DeleteCustom(userID int64, name string) error {
	res, err := r.db.Exec(`DELETE FROM custom_criteria WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
