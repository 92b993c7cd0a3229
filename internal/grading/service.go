package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"backend/internal/llm"
	"backend/internal/models"
	"backend/internal/repository"
)

// ErrInvalidAssessment is returned when a caller supplies a ground truth
// label outside the accepted vocabulary.
var ErrInvalidAssessment = errors.New("invalid assessment label")

// Service grades test statements with the user's selected model, consulting
// the assessment cache before spending provider calls.
type Service struct {
	statements repository.StatementRepository
	topics     repository.TopicRepository
	cache      repository.AssessmentCacheRepository
	registry   *llm.Registry
	batchSize  int
	logger     *zap.Logger
}

func NewService(
	statements repository.StatementRepository,
	topics repository.TopicRepository,
	cache repository.AssessmentCacheRepository,
	registry *llm.Registry,
	batchSize int,
	logger *zap.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Service{
		statements: statements,
		topics:     topics,
		cache:      cache,
		registry:   registry,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// GradeStatements grades the given statements (all statements of the topic
// when ids is empty). Cached assessments are reused when the statement text
// has not changed; fresh pass/fail decisions are written back to the cache.
// Unresolvable items are skipped, never fatal.
func (s *Service) GradeStatements(ctx context.Context, userID int64, topic string, ids []string) ([]models.Statement, error) {
	provider, modelID := s.registry.ForUser(userID)
	topicPrompt := s.topicPrompt(userID, topic)

	statements, err := s.loadStatements(userID, topic, ids)
	if err != nil {
		return nil, err
	}

	var pending []*models.Statement
	for i := range statements {
		st := &statements[i]
		entry, err := s.cache.Get(userID, topic, modelID, st.ID)
		if err == nil && entry.Statement == st.Text {
			s.apply(st, entry.AIAssessment)
			continue
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Assessment cache lookup failed", zap.String("statement_id", st.ID), zap.Error(err))
		}
		pending = append(pending, st)
	}

	for start := 0; start < len(pending); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		s.gradeBatch(ctx, provider, topicPrompt, pending[start:end])
	}

	for i := range statements {
		st := &statements[i]
		if st.AIAssessment == models.AssessmentPass || st.AIAssessment == models.AssessmentFail {
			entry := &models.CachedAssessment{
				UserID:       userID,
				Topic:        topic,
				ModelID:      modelID,
				StatementID:  st.ID,
				Statement:    st.Text,
				AIAssessment: st.AIAssessment,
			}
			if err := s.cache.Put(entry); err != nil {
				s.logger.Warn("Failed to update assessment cache", zap.String("statement_id", st.ID), zap.Error(err))
			}
		}
		if err := s.statements.Update(st); err != nil {
			s.logger.Warn("Failed to persist graded statement", zap.String("statement_id", st.ID), zap.Error(err))
		}
	}
	return statements, nil
}

// gradeBatch tries one BatchGrade call and falls back to per-item Grade calls
// when the provider cannot batch or the call fails outright.
func (s *Service) gradeBatch(ctx context.Context, provider llm.Provider, topicPrompt string, batch []*models.Statement) {
	texts := make([]string, len(batch))
	for i, st := range batch {
		texts[i] = st.Text
	}

	decisions, err := provider.BatchGrade(ctx, texts, topicPrompt)
	if err != nil || len(decisions) != len(batch) {
		if err != nil && !errors.Is(err, llm.ErrBatchUnsupported) {
			s.logger.Warn("Batch grade failed, grading items individually", zap.Error(err))
		}
		for _, st := range batch {
			s.apply(st, AssessmentFromDecision(provider.Grade(ctx, st.Text, topicPrompt)))
		}
		return
	}
	for i, st := range batch {
		s.apply(st, AssessmentFromDecision(decisions[i]))
	}
}

func (s *Service) apply(st *models.Statement, assessment string) {
	now := time.Now()
	st.AIAssessment = assessment
	st.Agreement = Agreement(assessment, st.GroundTruth)
	st.GradedAt = &now
}

// SetGroundTruth records the user's label for a statement and recomputes
// agreement against the existing assessment.
func (s *Service) SetGroundTruth(userID int64, id, groundTruth string) (*models.Statement, error) {
	if !models.ValidGroundTruth(groundTruth) {
		return nil, ErrInvalidAssessment
	}
	st, err := s.statements.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	st.GroundTruth = groundTruth
	st.Agreement = Agreement(st.AIAssessment, groundTruth)
	if err := s.statements.Update(st); err != nil {
		return nil, fmt.Errorf("failed to update statement: %w", err)
	}
	return st, nil
}

// GenerateStatements asks the selected model for new candidate statements
// conditioned on the topic's existing statements. Nothing is persisted; the
// caller adds the suggestions it keeps through the normal add path.
func (s *Service) GenerateStatements(ctx context.Context, userID int64, topic, criterionName string, count int) ([]string, error) {
	provider, _ := s.registry.ForUser(userID)
	statements, err := s.statements.ListByTopic(userID, topic)
	if err != nil {
		return nil, err
	}
	examples := make([]string, 0, len(statements))
	for _, st := range statements {
		examples = append(examples, st.Text)
	}
	return provider.Generate(ctx, examples, s.topicPrompt(userID, topic), criterionName, count)
}

// InvalidateCache drops all cached assessments for the user's current model
// in a topic, forcing the next grading run to hit the provider.
func (s *Service) InvalidateCache(userID int64, topic string) (int64, error) {
	_, modelID := s.registry.ForUser(userID)
	n, err := s.cache.DeleteScope(userID, topic, modelID)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate assessment cache: %w", err)
	}
	s.logger.Info("Invalidated assessment cache",
		zap.String("topic", topic), zap.String("model_id", modelID), zap.Int64("entries", n))
	return n, nil
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
