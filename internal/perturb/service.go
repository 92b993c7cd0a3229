package perturb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/criteria"
	"backend/internal/grading"
	"backend/internal/llm"
	"backend/internal/models"
	"backend/internal/repository"
)

// Namespace for deterministic perturbation ids. Never change this value:
// regeneration relies on (statement, criterion) mapping to the same id.
var perturbationNamespace = uuid.MustParse("8f0c2f27-4d6b-4d1c-9ddf-6a3c5a7e9b42")

// PerturbationID derives the stable id for a (statement, criterion) pair.
func PerturbationID(statementID, criterionName string) string {
	return uuid.NewSHA1(perturbationNamespace, []byte(statementID+"|"+criterionName)).String()
}

// Service orchestrates perturbation generation and lifecycle.
type Service struct {
	perturbations repository.PerturbationRepository
	statements    repository.StatementRepository
	topics        repository.TopicRepository
	criteria      *criteria.Registry
	registry      *llm.Registry
	batchSize     int
	logger        *zap.Logger
}

func NewService(
	perturbations repository.PerturbationRepository,
	statements repository.StatementRepository,
	topics repository.TopicRepository,
	criteriaRegistry *criteria.Registry,
	registry *llm.Registry,
	batchSize int,
	logger *zap.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		perturbations: perturbations,
		statements:    statements,
		topics:        topics,
		criteria:      criteriaRegistry,
		registry:      registry,
		batchSize:     batchSize,
		logger:        logger,
	}
}

// GeneratePerturbations applies the topic's pinned criteria set to the given
// statements (all statements of the topic when ids is empty). Results are
// upserted by deterministic id, so rerunning replaces earlier rows instead of
// duplicating them. The returned result carries one outcome per task.
// A non-positive batchSize falls back to the configured default.
func (s *Service) GeneratePerturbations(ctx context.Context, userID int64, topic string, ids []string, batchSize int) (*Result, error) {
	if batchSize <= 0 {
		batchSize = s.batchSize
	}
	provider, _ := s.registry.ForUser(userID)
	topicPrompt := s.topicPrompt(userID, topic)

	criteriaSet, err := s.criteria.Resolve(userID, topic)
	if err != nil {
		return nil, err
	}
	statements, err := s.loadStatements(userID, topic, ids)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(statements)*len(criteriaSet))
	for _, st := range statements {
		for _, c := range criteriaSet {
			tasks = append(tasks, Task{Statement: st, Criterion: c})
		}
	}

	items := NewBatcher(provider, s.logger).Run(ctx, topicPrompt, tasks, batchSize)

	result := &Result{
		Perturbations: []models.Perturbation{},
		Outcomes:      make([]ItemOutcome, 0, len(items)),
	}
	for _, item := range items {
		outcome := ItemOutcome{
			StatementID: item.Task.Statement.ID,
			Criterion:   item.Task.Criterion.Name,
			Status:      item.Status,
			Detail:      item.Detail,
		}
		result.Outcomes = append(result.Outcomes, outcome)
		if item.Status == OutcomePerturbFailed {
			continue
		}

		expectedGT := grading.ExpectedGroundTruth(item.Task.Statement.GroundTruth, item.Task.Criterion.FlipLabel)
		assessment := grading.AssessmentFromDecision(item.Decision)
		p := models.Perturbation{
			ID:           PerturbationID(item.Task.Statement.ID, item.Task.Criterion.Name),
			UserID:       userID,
			OriginalID:   item.Task.Statement.ID,
			Text:         item.Text,
			AIAssessment: assessment,
			Criterion:    item.Task.Criterion.Name,
			Topic:        topic,
			GroundTruth:  expectedGT,
			Validity:     grading.Validity(assessment, expectedGT),
		}
		if err := s.perturbations.Upsert(&p); err != nil {
			s.logger.Error("Failed to store perturbation",
				zap.String("statement_id", p.OriginalID),
				zap.String("criterion", p.Criterion),
				zap.Error(err))
			continue
		}
		result.Perturbations = append(result.Perturbations, p)
	}
	result.GeneratedCount = len(result.Perturbations)

	s.logger.Info("Perturbation generation finished",
		zap.String("topic", topic),
		zap.Int("tasks", len(tasks)),
		zap.Int("generated", result.GeneratedCount))
	return result, nil
}

// GetByTopic lists all stored perturbations of a topic.
func (s *Service) GetByTopic(userID int64, topic string) ([]models.Perturbation, error) {
	return s.perturbations.ListByTopic(userID, topic)
}

// Edit replaces a perturbation's text, re-grades it and recomputes validity
// against the stored expected label.
func (s *Service) Edit(ctx context.Context, userID int64, id, text string) (*models.Perturbation, error) {
	p, err := s.perturbations.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	provider, _ := s.registry.ForUser(userID)
	topicPrompt := s.topicPrompt(userID, p.Topic)

	p.Text = text
	p.AIAssessment = grading.AssessmentFromDecision(provider.Grade(ctx, text, topicPrompt))
	p.Validity = grading.Validity(p.AIAssessment, p.GroundTruth)
	if err := s.perturbations.Update(p); err != nil {
		return nil, fmt.Errorf("failed to update perturbation: %w", err)
	}
	return p, nil
}

// Validate records the user's verdict on a perturbation. Approving adopts the
// AI assessment as the expected label; denying adopts its inverse. A verdict
// over an unknown assessment leaves the expected label untouched.
func (s *Service) Validate(userID int64, id, validation string) (*models.Perturbation, error) {
	if !models.ValidValidation(validation) {
		return nil, grading.ErrInvalidAssessment
	}
	p, err := s.perturbations.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	var label string
	switch p.AIAssessment {
	case models.AssessmentPass:
		label = models.GroundTruthAcceptable
	case models.AssessmentFail:
		label = models.GroundTruthUnacceptable
	}
	if label != "" {
		if validation == models.ValidityApproved {
			p.GroundTruth = label
		} else {
			p.GroundTruth = grading.ExpectedGroundTruth(label, true)
		}
	}
	p.Validity = validation
	if err := s.perturbations.Update(p); err != nil {
		return nil, fmt.Errorf("failed to update perturbation: %w", err)
	}
	return p, nil
}

// PreviewCriterion runs a one-off perturbation of a statement with an
// arbitrary prompt, for trying out a criterion before saving it. Nothing is
// persisted.
func (s *Service) PreviewCriterion(ctx context.Context, userID int64, prompt, statement string) (string, error) {
	provider, _ := s.registry.ForUser(userID)
	return provider.Perturb(ctx, fmt.Sprintf("%s: %s", prompt, statement))
}

// DeleteByCriterion removes all of the user's perturbations generated from a
// criterion.
func (s *Service) DeleteByCriterion(userID int64, criterionName string) error {
	return s.perturbations.DeleteByCriterion(userID, criterionName)
}

// DeleteByTopic removes all of the user's perturbations in a topic.
func (s *Service) DeleteByTopic(userID int64, topic string) error {
	return s.perturbations.DeleteByTopic(userID, topic)
}

// RefreshForOriginal recomputes expected labels and validity for every
// perturbation of a statement after its ground truth changed.
func (s *Service) RefreshForOriginal(userID int64, originalID, groundTruth string) error {
	perturbations, err := s.perturbations.ListByOriginal(userID, originalID)
	if err != nil {
		return err
	}
	for i := range perturbations {
		p := &perturbations[i]
		flip := false
		if c, err := s.criteria.Info(userID, p.Criterion); err == nil {
			flip = c.FlipLabel
		}
		p.GroundTruth = grading.ExpectedGroundTruth(groundTruth, flip)
		p.Validity = grading.Validity(p.AIAssessment, p.GroundTruth)
		if err := s.perturbations.Update(p); err != nil {
			s.logger.Warn("Failed to refresh perturbation",
				zap.String("perturbation_id", p.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) topicPrompt(userID int64, topic string) string {
	t, err := s.topics.Get(userID, topic)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load topic prompt", zap.String("topic", topic), zap.Error(err))
		}
		return ""
	}
	return t.Prompt
}

func (s *Service) loadStatements(userID int64, topic string, ids []string) ([]models.Statement, error) {
	if len(ids) == 0 {
		return s.statements.ListByTopic(userID, topic)
	}
	statements := make([]models.Statement, 0, len(ids))
	for _, id := range ids {
		st, err := s.statements.GetByID(userID, id)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Skipping unknown statement", zap.String("statement_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		statements = append(statements, *st)
	}
	return statements, nil
}
