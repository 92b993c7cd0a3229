package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/llm"
)

type ModelsHandler interface {
	List(c *gin.Context)
	Select(c *gin.Context)
}

type modelsHandler struct {
	registry *llm.Registry
	logger   *zap.Logger
}

func NewModelsHandler(registry *llm.Registry, logger *zap.Logger) ModelsHandler {
	return &modelsHandler{registry: registry, logger: logger}
}

func (h *modelsHandler) List(c *gin.Context) {
	_, selected := h.registry.ForUser(userID(c))
	c.JSON(http.StatusOK, gin.H{
		"models":   h.registry.List(),
		"selected": selected,
		"default":  h.registry.DefaultID(),
	})
}

type selectModelRequest struct {
	ModelID string `json:"model_id" binding:"required"`
}

func (h *modelsHandler) Select(c *gin.Context) {
	var req selectModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Select(userID(c), req.ModelID); err != nil {
		if errors.Is(err, llm.ErrUnknownModel) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown model id"})
			return
		}
		h.logger.Error("Failed to select model", zap.String("model_id", req.ModelID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select model"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model selected", "model_id": req.ModelID})
}
