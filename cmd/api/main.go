package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/matokeo-app/matokeo-api/api/swagger"
	"github.com/matokeo-app/matokeo-api/internal/handler"
	"github.com/matokeo-app/matokeo-api/internal/middleware"
	"github.com/matokeo-app/matokeo-api/internal/models"
	"github.com/matokeo-app/matokeo-api/internal/repository"
	"github.com/matokeo-app/matokeo-api/internal/service"
	"github.com/matokeo-app/matokeo-api/pkg/cache"
	"github.com/matokeo-app/matokeo-api/pkg/config"
	"github.com/matokeo-app/matokeo-api/pkg/database"
	"github.com/matokeo-app/matokeo-api/pkg/jobs"
	"github.com/matokeo-app/matokeo-api/pkg/logger"
	corsmiddleware "github.com/matokeo-app/matokeo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/matokeo-app/matokeo-api/pkg/middleware/requestid"
	"github.com/matokeo-app/matokeo-api/pkg/storage"
)

// @title Matokeo API
// @version 1.0.0
// @description Exam result grading, division classification and report exports
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	resultRepo := repository.NewResultRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	jobRepo := repository.NewReportJobRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	resultSvc := service.NewResultService(resultRepo, cacheSvc, validate, logr)
	catalogSvc := service.NewCatalogService(classRepo, examRepo, studentRepo, logr)
	reportSvc := service.NewReportService(resultRepo, classRepo, studentRepo, cacheSvc, metricsSvc, logr)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init report storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(reportSvc, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr)

	worker := service.NewReportWorker(jobRepo, exportSvc, logr)
	queue := jobs.NewQueue(worker.Handle, cfg.Reports.WorkerConcurrency, cfg.Reports.WorkerRetries, logr)
	jobSvc := service.NewExportJobService(jobRepo, queue, exportSvc, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	resultHandler := handler.NewResultHandler(resultSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	reportHandler := handler.NewReportHandler(reportSvc, jobSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.New())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

		api.GET("/export/:token", reportHandler.Download)

		authed := api.Group("", middleware.JWT(authSvc))
		{
			staff := authed.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
			{
				staff.GET("/classes", catalogHandler.ListClasses)
				staff.GET("/classes/:classId/students", catalogHandler.ClassRoster)
				staff.GET("/exams", catalogHandler.ListExams)
				staff.GET("/exams/:id", catalogHandler.GetExam)

				staff.POST("/results", resultHandler.EnterMarks)
				staff.POST("/results/bulk", resultHandler.BulkEnterMarks)
				staff.GET("/results", resultHandler.ListResults)
				staff.GET("/results/duplicates", resultHandler.DetectDuplicates)

				staff.GET("/reports/students/:studentId/exams/:examId", reportHandler.StudentReport)
				staff.GET("/reports/classes/:classId/exams/:examId", reportHandler.ClassReport)
				staff.POST("/reports/export", reportHandler.GenerateExport)
				staff.GET("/reports/export/:id", reportHandler.ExportStatus)
			}

			admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))
			{
				admin.POST("/auth/users", authHandler.CreateUser)
				admin.POST("/results/duplicates/resolve", resultHandler.ResolveDuplicates)
				admin.GET("/metrics/snapshot", metricsHandler.Snapshot)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reports.Enabled {
		queue.Start(ctx)
		jobSvc.RecoverPendingJobs(ctx)
		jobSvc.StartCleanup(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	queue.Stop()
	logr.Info("server stopped")
}
