package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mnhs-dev/student-record-api/api/swagger"
	"github.com/mnhs-dev/student-record-api/internal/handler"
	"github.com/mnhs-dev/student-record-api/internal/middleware"
	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/repository"
	"github.com/mnhs-dev/student-record-api/internal/service"
	"github.com/mnhs-dev/student-record-api/pkg/cache"
	"github.com/mnhs-dev/student-record-api/pkg/config"
	"github.com/mnhs-dev/student-record-api/pkg/database"
	"github.com/mnhs-dev/student-record-api/pkg/export"
	"github.com/mnhs-dev/student-record-api/pkg/jobs"
	"github.com/mnhs-dev/student-record-api/pkg/logger"
	corsmiddleware "github.com/mnhs-dev/student-record-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mnhs-dev/student-record-api/pkg/middleware/requestid"
	"github.com/mnhs-dev/student-record-api/pkg/storage"
)

// @title Student Record API
// @version 1.0.0
// @description Administrative information system for junior and senior high school records
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	gradeEntryRepo := repository.NewGradeEntryRepository(db)
	dropoutRepo := repository.NewDropoutRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	documentStore, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare document storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "student-record-api",
	})
	gradeService := service.NewGradeService(gradeEntryRepo, studentRepo, sectionRepo, cacheRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(studentRepo, sectionRepo, validate, logr)
	sectionService := service.NewSectionService(sectionRepo, studentRepo, gradeEntryRepo, userRepo, validate, logr)
	dropoutService := service.NewDropoutService(dropoutRepo, studentRepo, sectionRepo, cacheRepo, validate, logr)
	dashboardService := service.NewDashboardService(studentRepo, gradeEntryRepo, dropoutRepo, cacheService, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
		TopN:     cfg.Dashboard.TopN,
	})
	certificateService := service.NewCertificateService(certificateRepo, studentRepo, gradeEntryRepo, export.NewPDFExporter(), documentStore, signer, validate, logr, service.CertificateServiceConfig{
		SchoolName: cfg.School.Name,
		SchoolYear: cfg.School.SchoolYear,
		BaseURL:    fmt.Sprintf("http://localhost:%d%s", cfg.Port, cfg.APIPrefix),
	})
	reportService := service.NewReportService(gradeEntryRepo, studentRepo, sectionRepo, export.NewCSVExporter(), export.NewPDFExporter(), documentStore, signer, validate, logr, service.ReportServiceConfig{
		BaseURL:      fmt.Sprintf("http://localhost:%d%s", cfg.Port, cfg.APIPrefix),
		RetentionTTL: cfg.Reports.RetentionTTL,
	})

	cleanupQueue := jobs.NewQueue("report-cleanup", func(_ context.Context, _ jobs.Job) error {
		_, err := reportService.Cleanup()
		return err
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	cleanupQueue.Start(context.Background())
	defer cleanupQueue.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()
	go func() {
		for range cleanupTicker.C {
			_ = cleanupQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "report_cleanup"})
		}
	}()

	authHandler := handler.NewAuthHandler(authService)
	gradeHandler := handler.NewGradeHandler(gradeService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	sectionHandler := handler.NewSectionHandler(sectionService)
	dropoutHandler := handler.NewDropoutHandler(dropoutService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, cfg.School.SchoolYear)
	certificateHandler := handler.NewCertificateHandler(certificateService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
			auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
			auth.GET("/me", middleware.JWT(authService), authHandler.Me)
		}

		// Downloads authenticate through the signed token, not a session.
		api.GET("/certificates/download", certificateHandler.Download)
		api.GET("/reports/download", reportHandler.Download)

		protected := api.Group("", middleware.JWT(authService))
		{
			students := protected.Group("/students")
			{
				students.GET("", enrollmentHandler.List)
				students.GET("/:id", enrollmentHandler.Get)
				students.POST("", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.Enroll)
				students.PATCH("/:id", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.Update)
				students.POST("/assign-section", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.AssignSection)
			}

			sections := protected.Group("/sections")
			{
				sections.GET("", sectionHandler.List)
				sections.GET("/:id", sectionHandler.Get)
				sections.GET("/:id/roster", sectionHandler.Roster)
				sections.POST("", middleware.RequireRoles(models.RoleAdmin), sectionHandler.Create)
				sections.PUT("/:id/adviser", middleware.RequireRoles(models.RoleAdmin), sectionHandler.AssignAdviser)
				sections.POST("/:id/subjects", middleware.RequireRoles(models.RoleAdmin), sectionHandler.AddSubjects)
				sections.POST("/:id/forward", middleware.RequireRoles(models.RoleAdmin), sectionHandler.Forward)
			}

			grades := protected.Group("/grades")
			{
				grades.GET("", gradeHandler.List)
				grades.GET("/:id", gradeHandler.Get)
				grades.GET("/:id/standing", gradeHandler.Standing)
				grades.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleAdviser), gradeHandler.Save)
			}

			dropouts := protected.Group("/dropouts")
			{
				dropouts.GET("", dropoutHandler.List)
				dropouts.GET("/reasons", dropoutHandler.Reasons)
				dropouts.GET("/:id", dropoutHandler.Get)
				dropouts.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleAdviser), dropoutHandler.Submit)
				dropouts.POST("/:id/accept", middleware.RequireRoles(models.RoleAdmin), dropoutHandler.Accept)
				dropouts.POST("/:id/reject", middleware.RequireRoles(models.RoleAdmin), dropoutHandler.Reject)
			}

			certificates := protected.Group("/certificates")
			{
				certificates.GET("", certificateHandler.List)
				certificates.GET("/:id/link", certificateHandler.Link)
				certificates.POST("", middleware.RequireRoles(models.RoleAdmin), certificateHandler.Request)
			}

			reports := protected.Group("/reports")
			{
				reports.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleAdviser), reportHandler.Generate)
				reports.POST("/cleanup", middleware.RequireRoles(models.RoleAdmin), reportHandler.Cleanup)
			}

			if cfg.Dashboard.Enabled {
				dashboard := protected.Group("/dashboard")
				{
					dashboard.GET("/overview", dashboardHandler.Overview)
					dashboard.GET("/top-students", dashboardHandler.TopStudents)
					dashboard.GET("/subject-averages", dashboardHandler.SubjectAverages)
					dashboard.GET("/enrollment", dashboardHandler.EnrollmentByLevel)
					dashboard.GET("/enrollment-trend", dashboardHandler.EnrollmentTrend)
					dashboard.DELETE("/cache", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Invalidate)
				}
			}

			protected.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
	_ = cacheRepo.Close()
}
