package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/attendease/attendease-api/api/swagger"
	"github.com/attendease/attendease-api/internal/handler"
	"github.com/attendease/attendease-api/internal/repository"
	"github.com/attendease/attendease-api/internal/router"
	"github.com/attendease/attendease-api/internal/service"
	"github.com/attendease/attendease-api/pkg/cache"
	"github.com/attendease/attendease-api/pkg/config"
	"github.com/attendease/attendease-api/pkg/database"
	"github.com/attendease/attendease-api/pkg/export"
	"github.com/attendease/attendease-api/pkg/logger"
)

// @title AttendEase API
// @version 1.0.0
// @description Attendance management API for teachers: classes, rosters, daily attendance and record exports
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
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		Audience:           cfg.JWT.Audience,
		SingleSession:      cfg.JWT.SingleSession,
	})
	classSvc := service.NewClassService(classRepo, cacheRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, cacheRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, cacheRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(classRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	recordSvc := service.NewRecordService(attendanceRepo, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Exports.MaxRows, validate, logr)
	metricsSvc := service.NewMetricsService()

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Class:      handler.NewClassHandler(classSvc),
		Student:    handler.NewStudentHandler(studentSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, metricsSvc),
		Record:     handler.NewRecordHandler(recordSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc, metricsSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}

	engine := router.New(cfg, logr, authSvc, metricsSvc, handlers, func() error {
		return db.Ping()
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
