package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusworks/grievance-api/api/swagger"
	"github.com/campusworks/grievance-api/internal/handler"
	"github.com/campusworks/grievance-api/internal/middleware"
	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/repository"
	"github.com/campusworks/grievance-api/internal/service"
	"github.com/campusworks/grievance-api/pkg/cache"
	"github.com/campusworks/grievance-api/pkg/config"
	"github.com/campusworks/grievance-api/pkg/database"
	"github.com/campusworks/grievance-api/pkg/logger"
	corsmiddleware "github.com/campusworks/grievance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusworks/grievance-api/pkg/middleware/requestid"
)

// @title Student Grievance Redressal API
// @version 1.0.0
// @description Ticketing workflow for student grievances: submission, routing, escalation and feedback.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	grievanceRepo := repository.NewGrievanceRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// The stats cache is optional; the API degrades to direct reads
	// when Redis is unavailable.
	var cacheSvc *service.CacheService
	if cfg.Stats.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, true)
		}
	}

	// Services.
	routing := service.NewRoutingPolicy(userRepo)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	grievanceSvc := service.NewGrievanceService(grievanceRepo, userRepo, feedbackRepo, routing, validate, logr, metricsSvc, service.GrievanceServiceConfig{
		TicketMaxRetries: cfg.Tickets.MaxRetries,
	})
	feedbackSvc := service.NewFeedbackService(feedbackRepo, grievanceRepo, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, cacheSvc, logr)
	exportSvc := service.NewExportService(grievanceRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, userSvc)
	grievanceHandler := handler.NewGrievanceHandler(grievanceSvc, feedbackSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	userHandler := handler.NewUserHandler(userSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// Submission and tracking stay open: grievances may be filed
		// anonymously and tracked with nothing but the ticket id.
		api.POST("/grievances", middleware.OptionalJWT(authSvc), grievanceHandler.Submit)
		api.GET("/track/:ticketId", grievanceHandler.Track)

		authed := api.Group("", middleware.JWT(authSvc))
		{
			authed.GET("/dashboard", grievanceHandler.Dashboard)
			authed.GET("/grievances", grievanceHandler.List)
			authed.GET("/grievances/:id", grievanceHandler.Get)
			authed.POST("/grievances/:id/update", grievanceHandler.Update)
			authed.POST("/grievances/:id/escalate", grievanceHandler.Escalate)
			authed.POST("/grievances/:id/feedback", grievanceHandler.SubmitFeedback)
			authed.GET("/stats", statsHandler.Charts)

			admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))
			{
				admin.GET("/admin/users", userHandler.List)
				admin.GET("/admin/grievances", grievanceHandler.List)
				admin.GET("/admin/grievances/export", userHandler.ExportGrievances)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
