package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type PerturbationRepository interface {
	Upsert(p *models.Perturbation) error
	GetByID(userID int64, id string) (*models.Perturbation, error)
	ListByTopic(userID int64, topic string) ([]models.Perturbation, error)
	ListByOriginal(userID int64, originalID string) ([]models.Perturbation, error)
	Update(p *models.Perturbation) error
	DeleteByCriterion(userID int64, criterion string) error
	DeleteByOriginal(userID int64, originalID string) error
	DeleteByTopic(userID int64, topic string) error
}

type perturbationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPerturbationRepository(db *sqlx.DB, logger *zap.Logger) PerturbationRepository {
	return &perturbationRepository{db: db, logger: logger}
}

// Upsert writes a perturbation, overwriting any previous row with the same id.
// Ids are deterministic per (original, criterion), so regeneration replaces
// instead of duplicating.
func (r *perturbationRepository) Upsert(p *models.Perturbation) error {
	query := `INSERT INTO perturbations (id, user_id, original_id, text, ai_assessment, criterion, topic, ground_truth, validity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			ai_assessment = EXCLUDED.ai_assessment,
			ground_truth = EXCLUDED.ground_truth,
			validity = EXCLUDED.validity
		RETURNING created_at`
	return r.db.QueryRowx(query,
		p.ID, p.UserID, p.OriginalID, p.Text, p.AIAssessment, p.Criterion, p.Topic, p.GroundTruth, p.Validity).
		Scan(&p.CreatedAt)
}

func (r *perturbationRepository) GetByID(userID int64, id string) (*models.Perturbation, error) {
	var p models.Perturbation
	query := `SELECT id, user_id, original_id, text, ai_assessment, criterion, topic, ground_truth, validity, created_at
		FROM perturbations WHERE user_id = $1 AND id = $2`
	err := r.db.Get(&p, query, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *perturbationRepository) ListByTopic(userID int64, topic string) ([]models.Perturbation, error) {
	perturbations := []models.Perturbation{}
	query := `SELECT id, user_id, original_id, text, ai_assessment, criterion, topic, ground_truth, validity, created_at
		FROM perturbations WHERE user_id = $1 AND topic = $2 ORDER BY original_id, criterion`
	if err := r.db.Select(&perturbations, query, userID, topic); err != nil {
		return nil, err
	}
	return perturbations, nil
}

func (r *perturbationRepository) ListByOriginal(userID int64, originalID string) ([]models.Perturbation, error) {
	perturbations := []models.Perturbation{}
	query := `SELECT id, user_id, original_id, text, ai_assessment, criterion, topic, ground_truth, validity, created_at
		FROM perturbations WHERE user_id = $1 AND original_id = $2 ORDER BY criterion`
	if err := r.db.Select(&perturbations, query, userID, originalID); err != nil {
		return nil, err
	}
	return perturbations, nil
}

func (r *perturbationRepository) Update(p *models.Perturbation) error {
	query := `UPDATE perturbations SET text = $1, ai_assessment = $2, ground_truth = $3, validity = $4
		WHERE user_id = $5 AND id = $6`
	res, err := r.db.Exec(query, p.Text, p.AIAssessment, p.GroundTruth, p.Validity, p.UserID, p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *perturbationRepository) DeleteByCriterion(userID int64, criterion string) error {
	_, err := r.db.Exec(`DELETE FROM perturbations WHERE user_id = $1 AND criterion = $2`, userID, criterion)
	return err
}

func (r *perturbationRepository) DeleteByOriginal(userID int64, originalID string) error {
	_, err := r.db.Exec(`DELETE FROM perturbations WHERE user_id = $1 AND original_id = $2`, userID, originalID)
	return err
}

func (r *perturbationRepository) DeleteByTopic(userID int64, topic string) error {
	_, err := r.db.Exec(`DELETE FROM perturbations WHERE user_id = $1 AND topic = $2`, userID, topic)
	return err
}
