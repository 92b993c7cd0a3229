package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/criteria"
	"backend/internal/grading"
	"backend/internal/handler"
	"backend/internal/llm"
	"backend/internal/middleware"
	"backend/internal/perturb"
	"backend/internal/repository"
	"backend/internal/service"
)

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	cfg      *config.Config
	registry *llm.Registry
	logger   *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, registry *llm.Registry, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router:   router,
		db:       db,
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	jwtSecret := s.cfg.JWTSecret()

	authRepo := repository.NewAuthRepository(s.db, s.logger)
	authService := service.NewAuthService(authRepo, jwtSecret, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	statementRepo := repository.NewStatementRepository(s.db, s.logger)
	perturbationRepo := repository.NewPerturbationRepository(s.db, s.logger)
	topicRepo := repository.NewTopicRepository(s.db, s.logger)
	criteriaRepo := repository.NewCriteriaRepository(s.db, s.logger)
	cacheRepo := repository.NewAssessmentCacheRepository(s.db, s.logger)

	criteriaRegistry := criteria.NewRegistry(criteriaRepo, s.logger)
	topicService := service.NewTopicService(topicRepo, statementRepo, perturbationRepo, criteriaRepo, cacheRepo, s.logger)
	gradingService := grading.NewService(statementRepo, topicRepo, cacheRepo, s.registry, s.cfg.LLM.BatchSize, s.logger)
	perturbService := perturb.NewService(perturbationRepo, statementRepo, topicRepo, criteriaRegistry, s.registry, s.cfg.LLM.BatchSize, s.logger)

	topicsHandler := handler.NewTopicsHandler(topicService, s.logger)
	statementsHandler := handler.NewStatementsHandler(topicService, gradingService, perturbService, s.logger)
	perturbationsHandler := handler.NewPerturbationsHandler(perturbService, s.logger)
	criteriaHandler := handler.NewCriteriaHandler(criteriaRegistry, perturbService, s.logger)
	modelsHandler := handler.NewModelsHandler(s.registry, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(jwtSecret, s.logger))
	{
		authRequired.POST("/onboard", topicsHandler.Onboard)

		authRequired.GET("/topics", topicsHandler.List)
		authRequired.POST("/topics", topicsHandler.Create)
		authRequired.DELETE("/topics/:topic", topicsHandler.Delete)

		authRequired.GET("/tests/topic/:topic", statementsHandler.ListByTopic)
		authRequired.POST("/tests/add", statementsHandler.Add)
		authRequired.POST("/tests/grade", statementsHandler.Grade)
		authRequired.POST("/tests/assess", statementsHandler.Assess)
		authRequired.POST("/tests/generate", statementsHandler.Suggest)
		authRequired.DELETE("/tests", statementsHandler.Delete)
		authRequired.DELETE("/tests/cache/:topic", statementsHandler.InvalidateCache)

		authRequired.POST("/perturbations/generate", perturbationsHandler.Generate)
		authRequired.GET("/perturbations/topic/:topic", perturbationsHandler.ListByTopic)
		authRequired.POST("/perturbations/edit", perturbationsHandler.Edit)
		authRequired.POST("/perturbations/validate", perturbationsHandler.Validate)
		authRequired.DELETE("/perturbations/type/:name", perturbationsHandler.DeleteByCriterion)
		authRequired.POST("/perturbations/test-type", perturbationsHandler.Preview)

		authRequired.GET("/criteria/types", criteriaHandler.ListTypes)
		authRequired.POST("/criteria/add", criteriaHandler.Add)
		authRequired.PUT("/criteria/edit", criteriaHandler.Edit)
		authRequired.DELETE("/criteria/:name", criteriaHandler.Delete)
		authRequired.GET("/criteria/defaults/:preset", criteriaHandler.DefaultTypes)

		authRequired.GET("/models", modelsHandler.List)
		authRequired.POST("/models/select", modelsHandler.Select)
	}
}

// Run serves until ctx is cancelled, then shuts down draining in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
