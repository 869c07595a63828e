package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/smartconstruct/course-admin-api/api/swagger"
	"github.com/smartconstruct/course-admin-api/internal/directory"
	"github.com/smartconstruct/course-admin-api/internal/handler"
	"github.com/smartconstruct/course-admin-api/internal/middleware"
	"github.com/smartconstruct/course-admin-api/internal/repository"
	"github.com/smartconstruct/course-admin-api/internal/service"
	"github.com/smartconstruct/course-admin-api/pkg/cache"
	"github.com/smartconstruct/course-admin-api/pkg/config"
	"github.com/smartconstruct/course-admin-api/pkg/database"
	"github.com/smartconstruct/course-admin-api/pkg/logger"
	corsmiddleware "github.com/smartconstruct/course-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/smartconstruct/course-admin-api/pkg/middleware/requestid"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

// @title Course Admin API
// @version 1.0.0
// @description Admin dashboard backend for training course management
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheStore service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(client, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheStore = cacheRepo
	} else {
		cacheStore = cache.NewMemory(cfg.Listing.CacheTTL)
	}
	cacheSvc := service.NewCacheService(cacheStore, metricsSvc, cfg.Listing.CacheTTL, logr, true)

	validate := validator.New()

	courseRepo := repository.NewCourseRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	directoryClient := directory.NewClient(cfg.Directory, logr)

	courseSvc := service.NewCourseService(courseRepo, cacheSvc, metricsSvc, validate, logr)
	topicSvc := service.NewTopicService(topicRepo, courseRepo, cacheSvc, metricsSvc, validate, logr)
	userSvc := service.NewUserService(directoryClient, metricsSvc, logr)
	exportSvc := service.NewExportService(courseSvc, userSvc, logr)

	limits := pagination.Limits{
		DefaultPerPage: cfg.Listing.DefaultPageSize,
		MaxPerPage:     cfg.Listing.MaxPageSize,
	}

	courseHandler := handler.NewCourseHandler(courseSvc, limits)
	topicHandler := handler.NewTopicHandler(topicSvc, limits)
	userHandler := handler.NewUserHandler(userSvc, limits)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	var guard gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Auth.Enabled {
		guard = middleware.Auth(cfg.Auth.Secret)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.GET("/active", courseHandler.ListActive)
		courses.GET("/count", courseHandler.Count)
		if cfg.Exports.Enabled {
			courses.GET("/export", exportHandler.Courses)
		}
		courses.GET("/:id", courseHandler.Get)
		courses.GET("/:id/topics", topicHandler.ListByCourse)

		courses.POST("", guard, courseHandler.Create)
		courses.PUT("/:id", guard, courseHandler.Update)
		courses.POST("/:id/publish", guard, courseHandler.Publish)
		courses.DELETE("/:id", guard, courseHandler.Delete)
		courses.POST("/:id/topics", guard, topicHandler.Create)
	}

	topics := api.Group("/topics")
	{
		topics.POST("/check", topicHandler.Check)
		topics.DELETE("/:id", guard, topicHandler.Delete)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.List)
		if cfg.Exports.Enabled {
			users.GET("/export", exportHandler.Users)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env), zap.Bool("redis", cfg.Redis.Enabled))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
