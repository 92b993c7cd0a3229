package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/service"
)

type TopicsHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Delete(c *gin.Context)
	Onboard(c *gin.Context)
}

type topicsHandler struct {
	topics *service.TopicService
	logger *zap.Logger
}

func NewTopicsHandler(topics *service.TopicService, logger *zap.Logger) TopicsHandler {
	return &topicsHandler{topics: topics, logger: logger}
}

func (h *topicsHandler) List(c *gin.Context) {
	topics, err := h.topics.List(userID(c))
	if err != nil {
		h.logger.Error("Failed to list topics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list topics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

type createTopicRequest struct {
	Topic  string `json:"topic" binding:"required"`
	Prompt string `json:"prompt_topic" binding:"required"`
}

func (h *topicsHandler) Create(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic, err := h.topics.Create(userID(c), req.Topic, req.Prompt)
	if err != nil {
		h.logger.Error("Failed to create topic", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create topic"})
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *topicsHandler) Delete(c *gin.Context) {
	name := c.Param("topic")
	if err := h.topics.Delete(userID(c), name); err != nil {
		if errors.Is(err, service.ErrTopicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
			return
		}
		h.logger.Error("Failed to delete topic", zap.String("topic", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete topic"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Topic deleted"})
}

func (h *topicsHandler) Onboard(c *gin.Context) {
	if err := h.topics.EnsureOnboarded(userID(c)); err != nil {
		h.logger.Error("Failed to onboard user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to onboard user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User onboarded"})
}
