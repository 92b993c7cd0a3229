package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/criteria"
	"backend/internal/perturb"
)

type CriteriaHandler interface {
	ListTypes(c *gin.Context)
	Add(c *gin.Context)
	Edit(c *gin.Context)
	Delete(c *gin.Context)
	DefaultTypes(c *gin.Context)
}

type criteriaHandler struct {
	criteria *criteria.Registry
	perturb  *perturb.Service
	logger   *zap.Logger
}

func NewCriteriaHandler(registry *criteria.Registry, perturbService *perturb.Service, logger *zap.Logger) CriteriaHandler {
	return &criteriaHandler{criteria: registry, perturb: perturbService, logger: logger}
}

func (h *criteriaHandler) ListTypes(c *gin.Context) {
	types, err := h.criteria.ListTypes(userID(c))
	if err != nil {
		h.logger.Error("Failed to list criteria", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list criteria"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}

type criterionRequest struct {
	Name      string `json:"name" binding:"required"`
	Prompt    string `json:"prompt" binding:"required"`
	FlipLabel bool   `json:"flip_label"`
}

func (h *criteriaHandler) Add(c *gin.Context) {
	var req criterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.criteria.Add(userID(c), req.Name, req.Prompt, req.FlipLabel)
	if err != nil {
		if errors.Is(err, criteria.ErrCriterionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Criterion already exists"})
			return
		}
		h.logger.Error("Failed to add criterion", zap.String("criterion", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add criterion"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *criteriaHandler) Edit(c *gin.Context) {
	var req criterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edited, err := h.criteria.Edit(userID(c), req.Name, req.Prompt, req.FlipLabel)
	if err != nil {
		if errors.Is(err, criteria.ErrCriterionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Criterion not found"})
			return
		}
		h.logger.Error("Failed to edit criterion", zap.String("criterion", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit criterion"})
		return
	}
	c.JSON(http.StatusOK, edited)
}

// Delete removes a custom criterion together with the perturbations generated
// from it.
func (h *criteriaHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	uid := userID(c)

	if err := h.criteria.Delete(uid, name); err != nil {
		if errors.Is(err, criteria.ErrCriterionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Criterion not found"})
			return
		}
		h.logger.Error("Failed to delete criterion", zap.String("criterion", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete criterion"})
		return
	}
	if err := h.perturb.DeleteByCriterion(uid, name); err != nil {
		h.logger.Warn("Failed to delete perturbations of criterion",
			zap.String("criterion", name), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Criterion deleted"})
}

func (h *criteriaHandler) DefaultTypes(c *gin.Context) {
	preset := c.Param("preset")
	names, err := criteria.DefaultTypes(preset)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown preset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preset": preset, "types": names})
}
