package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/grading"
	"backend/internal/perturb"
	"backend/internal/repository"
)

type PerturbationsHandler interface {
	Generate(c *gin.Context)
	ListByTopic(c *gin.Context)
	Edit(c *gin.Context)
	Validate(c *gin.Context)
	DeleteByCriterion(c *gin.Context)
	Preview(c *gin.Context)
}

type perturbationsHandler struct {
	perturb *perturb.Service
	logger  *zap.Logger
}

func NewPerturbationsHandler(perturbService *perturb.Service, logger *zap.Logger) PerturbationsHandler {
	return &perturbationsHandler{perturb: perturbService, logger: logger}
}

type generateRequest struct {
	Topic     string   `json:"topic" binding:"required"`
	IDs       []string `json:"ids"`
	BatchSize int      `json:"batch_size"`
}

func (h *perturbationsHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.perturb.GeneratePerturbations(c.Request.Context(), userID(c), req.Topic, req.IDs, req.BatchSize)
	if err != nil {
		h.logger.Error("Failed to generate perturbations", zap.String("topic", req.Topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate perturbations"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *perturbationsHandler) ListByTopic(c *gin.Context) {
	topic := c.Param("topic")
	perturbations, err := h.perturb.GetByTopic(userID(c), topic)
	if err != nil {
		h.logger.Error("Failed to list perturbations", zap.String("topic", topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list perturbations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"perturbations": perturbations})
}

type editPerturbationRequest struct {
	ID    string `json:"id" binding:"required"`
	Title string `json:"title" binding:"required"`
}

func (h *perturbationsHandler) Edit(c *gin.Context) {
	var req editPerturbationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.perturb.Edit(c.Request.Context(), userID(c), req.ID, req.Title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Perturbation not found"})
			return
		}
		h.logger.Error("Failed to edit perturbation", zap.String("perturbation_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit perturbation"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type validatePerturbationRequest struct {
	ID         string `json:"id" binding:"required"`
	Validation string `json:"validation" binding:"required"`
}

func (h *perturbationsHandler) Validate(c *gin.Context) {
	var req validatePerturbationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.perturb.Validate(userID(c), req.ID, req.Validation)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrInvalidAssessment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation must be approved or denied"})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Perturbation not found"})
		default:
			h.logger.Error("Failed to validate perturbation", zap.String("perturbation_id", req.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate perturbation"})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *perturbationsHandler) DeleteByCriterion(c *gin.Context) {
	name := c.Param("name")
	if err := h.perturb.DeleteByCriterion(userID(c), name); err != nil {
		h.logger.Error("Failed to delete perturbations", zap.String("criterion", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete perturbations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Perturbations deleted"})
}

type previewRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	Statement string `json:"test_case" binding:"required"`
}

// Preview applies a prompt to one statement without persisting anything, so
// users can try a criterion before saving it.
func (h *perturbationsHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := h.perturb.PreviewCriterion(c.Request.Context(), userID(c), req.Prompt, req.Statement)
	if err != nil {
		h.logger.Error("Failed to preview perturbation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to preview perturbation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"perturbed": text})
}
