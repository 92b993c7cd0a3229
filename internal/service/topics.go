package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/models"
	"backend/internal/repository"
)

// ErrTopicNotFound is returned for operations on a topic the user does not
// have.
var ErrTopicNotFound = errors.New("topic not found")

// Topics every new user starts with, each carrying its grading prompt.
var defaultTopics = map[string]string{
	"CU0":  "Does the following contain the physics concept: Greater height means greater energy? Here is the sentence:",
	"CU5":  "The sentence is acceptable if it contains the physics concept: The more mass, the more energy. If not, it is unacceptable. Here is the sentence:",
	"Food": "Does this sentence include a description of food and/or culture? Here is the sentence:",
}

// TopicService owns topic and statement lifecycle, including first-login
// onboarding and cascade deletes.
type TopicService struct {
	topics        repository.TopicRepository
	statements    repository.StatementRepository
	perturbations repository.PerturbationRepository
	criteria      repository.CriteriaRepository
	cache         repository.AssessmentCacheRepository
	logger        *zap.Logger
}

func NewTopicService(
	topics repository.TopicRepository,
	statements repository.StatementRepository,
	perturbations repository.PerturbationRepository,
	criteria repository.CriteriaRepository,
	cache repository.AssessmentCacheRepository,
	logger *zap.Logger,
) *TopicService {
	return &TopicService{
		topics:        topics,
		statements:    statements,
		perturbations: perturbations,
		criteria:      criteria,
		cache:         cache,
		logger:        logger,
	}
}

// EnsureOnboarded seeds the default topics for users who have none yet. Each
// default topic starts with one sample statement so the UI is never empty.
func (s *TopicService) EnsureOnboarded(userID int64) error {
	existing, err := s.topics.List(userID)
	if err != nil {
		return fmt.Errorf("failed to list topics: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for name, prompt := range defaultTopics {
		topic := &models.Topic{UserID: userID, Name: name, Prompt: prompt, Default: true}
		if err := s.topics.Create(topic); err != nil {
			return fmt.Errorf("failed to create default topic %s: %w", name, err)
		}
		statement := &models.Statement{
			ID:           uuid.NewString(),
			UserID:       userID,
			Topic:        name,
			Text:         fmt.Sprintf("Sample test case for %s", name),
			GroundTruth:  models.GroundTruthUngraded,
			AIAssessment: models.AssessmentUnknown,
		}
		if err := s.statements.Create(statement); err != nil {
			return fmt.Errorf("failed to seed statement for topic %s: %w", name, err)
		}
	}
	s.logger.Info("Onboarded user with default topics",
		zap.Int64("user_id", userID), zap.Int("topics", len(defaultTopics)))
	return nil
}

func (s *TopicService) List(userID int64) ([]models.Topic, error) {
	return s.topics.List(userID)
}

func (s *TopicService) Create(userID int64, name, prompt string) (*models.Topic, error) {
	topic := &models.Topic{UserID: userID, Name: name, Prompt: prompt}
	if err := s.topics.Create(topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	return topic, nil
}

// Delete removes a topic with everything hanging off it: statements,
// perturbations, the pinned criteria set and cached assessments.
func (s *TopicService) Delete(userID int64, name string) error {
	if err := s.topics.Delete(userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTopicNotFound
		}
		return err
	}
	if err := s.perturbations.DeleteByTopic(userID, name); err != nil {
		s.logger.Warn("Failed to delete topic perturbations", zap.String("topic", name), zap.Error(err))
	}
	if err := s.statements.DeleteByTopic(userID, name); err != nil {
		s.logger.Warn("Failed to delete topic statements", zap.String("topic", name), zap.Error(err))
	}
	if err := s.criteria.DeletePinnedSet(userID, name); err != nil {
		s.logger.Warn("Failed to delete pinned criteria", zap.String("topic", name), zap.Error(err))
	}
	if err := s.cache.DeleteTopic(userID, name); err != nil {
		s.logger.Warn("Failed to delete cached assessments", zap.String("topic", name), zap.Error(err))
	}
	return nil
}

// ListStatements returns the statements of a topic.
func (s *TopicService) ListStatements(userID int64, topic string) ([]models.Statement, error) {
	if _, err := s.topics.Get(userID, topic); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return s.statements.ListByTopic(userID, topic)
}

// AddStatement creates a statement under a topic. An empty ground truth
// defaults to ungraded.
func (s *TopicService) AddStatement(userID int64, topic, text, groundTruth string) (*models.Statement, error) {
	if _, err := s.topics.Get(userID, topic); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	if groundTruth == "" {
		groundTruth = models.GroundTruthUngraded
	}
	if !models.ValidGroundTruth(groundTruth) {
		return nil, fmt.Errorf("invalid ground truth %q", groundTruth)
	}
	statement := &models.Statement{
		ID:           uuid.NewString(),
		UserID:       userID,
		Topic:        topic,
		Text:         text,
		GroundTruth:  groundTruth,
		AIAssessment: models.AssessmentUnknown,
	}
	if err := s.statements.Create(statement); err != nil {
		return nil, fmt.Errorf("failed to create statement: %w", err)
	}
	return statement, nil
}

// DeleteStatements removes statements and their perturbations.
func (s *TopicService) DeleteStatements(userID int64, ids []string) error {
	for _, id := range ids {
		if err := s.statements.Delete(userID, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("Skipping delete of unknown statement", zap.String("statement_id", id))
				continue
			}
			return err
		}
		if err := s.perturbations.DeleteByOriginal(userID, id); err != nil {
			s.logger.Warn("Failed to delete statement perturbations",
				zap.String("statement_id", id), zap.Error(err))
		}
	}
	return nil
}
