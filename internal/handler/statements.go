package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/grading"
	"backend/internal/perturb"
	"backend/internal/repository"
	"backend/internal/service"
)

type StatementsHandler interface {
	ListByTopic(c *gin.Context)
	Add(c *gin.Context)
	Grade(c *gin.Context)
	Assess(c *gin.Context)
	Delete(c *gin.Context)
	Suggest(c *gin.Context)
	InvalidateCache(c *gin.Context)
}

type statementsHandler struct {
	topics  *service.TopicService
	grading *grading.Service
	perturb *perturb.Service
	logger  *zap.Logger
}

func NewStatementsHandler(topics *service.TopicService, gradingService *grading.Service, perturbService *perturb.Service, logger *zap.Logger) StatementsHandler {
	return &statementsHandler{topics: topics, grading: gradingService, perturb: perturbService, logger: logger}
}

func (h *statementsHandler) ListByTopic(c *gin.Context) {
	topic := c.Param("topic")
	statements, err := h.topics.ListStatements(userID(c), topic)
	if err != nil {
		if errors.Is(err, service.ErrTopicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
			return
		}
		h.logger.Error("Failed to list statements", zap.String("topic", topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list statements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": statements})
}

type addStatementRequest struct {
	Topic       string `json:"topic" binding:"required"`
	Statement   string `json:"test" binding:"required"`
	GroundTruth string `json:"ground_truth"`
}

func (h *statementsHandler) Add(c *gin.Context) {
	var req addStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statement, err := h.topics.AddStatement(userID(c), req.Topic, req.Statement, req.GroundTruth)
	if err != nil {
		if errors.Is(err, service.ErrTopicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
			return
		}
		h.logger.Error("Failed to add statement", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, statement)
}

type gradeRequest struct {
	Topic string   `json:"topic" binding:"required"`
	IDs   []string `json:"ids"`
}

func (h *statementsHandler) Grade(c *gin.Context) {
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statements, err := h.grading.GradeStatements(c.Request.Context(), userID(c), req.Topic, req.IDs)
	if err != nil {
		h.logger.Error("Failed to grade statements", zap.String("topic", req.Topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grade statements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": statements})
}

type assessRequest struct {
	ID          string `json:"id" binding:"required"`
	GroundTruth string `json:"ground_truth" binding:"required"`
}

// Assess records the user's ground truth for a statement and refreshes the
// expected labels of its perturbations.
func (h *statementsHandler) Assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := userID(c)
	statement, err := h.grading.SetGroundTruth(uid, req.ID, req.GroundTruth)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrInvalidAssessment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "ground_truth must be acceptable, unacceptable or ungraded"})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement not found"})
		default:
			h.logger.Error("Failed to assess statement", zap.String("statement_id", req.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assess statement"})
		}
		return
	}

	if err := h.perturb.RefreshForOriginal(uid, req.ID, req.GroundTruth); err != nil {
		h.logger.Warn("Failed to refresh perturbations after assessment",
			zap.String("statement_id", req.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, statement)
}

type deleteStatementsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *statementsHandler) Delete(c *gin.Context) {
	var req deleteStatementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.topics.DeleteStatements(userID(c), req.IDs); err != nil {
		h.logger.Error("Failed to delete statements", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete statements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Statements deleted"})
}

type suggestRequest struct {
	Topic     string `json:"topic" binding:"required"`
	Criterion string `json:"criterion"`
	Count     int    `json:"count"`
}

// Suggest returns AI-generated candidate statements for a topic without
// persisting them.
func (h *statementsHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count <= 0 {
		req.Count = 3
	}

	suggestions, err := h.grading.GenerateStatements(c.Request.Context(), userID(c), req.Topic, req.Criterion, req.Count)
	if err != nil {
		h.logger.Error("Failed to generate statements", zap.String("topic", req.Topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate statements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *statementsHandler) InvalidateCache(c *gin.Context) {
	topic := c.Param("topic")
	removed, err := h.grading.InvalidateCache(userID(c), topic)
	if err != nil {
		h.logger.Error("Failed to invalidate cache", zap.String("topic", topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
