package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-records-api/api/swagger"
	"github.com/noah-isme/school-records-api/internal/handler"
	internalmiddleware "github.com/noah-isme/school-records-api/internal/middleware"
	"github.com/noah-isme/school-records-api/internal/repository"
	"github.com/noah-isme/school-records-api/internal/service"
	"github.com/noah-isme/school-records-api/pkg/cache"
	"github.com/noah-isme/school-records-api/pkg/config"
	"github.com/noah-isme/school-records-api/pkg/database"
	"github.com/noah-isme/school-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-records-api/pkg/middleware/requestid"
)

// @title School Records API
// @version 1.0.0
// @description Student, employee and course records with grading and reporting.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("schema migration failed", zap.Error(err))
		}
	}
	if cfg.Grading.SeedFile != "" {
		seeds, err := database.LoadGradeSeedFile(cfg.Grading.SeedFile)
		if err != nil {
			logr.Fatal("grade scale unavailable", zap.Error(err))
		}
		if err := database.SeedGradeValues(ctx, db, seeds); err != nil {
			logr.Fatal("grade scale seeding failed", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("report cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	classRepo := repository.NewClassRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	gradeValueRepo := repository.NewGradeValueRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, redisClient != nil)
	identity := service.NewIdentityValidator(studentRepo, employeeRepo, courseRepo)
	lifecycle := service.NewLifecycleService(studentRepo, employeeRepo, courseRepo, cacheSvc, metricsSvc, logr)

	studentSvc := service.NewStudentService(studentRepo, classRepo, identity, lifecycle, cacheSvc, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, departmentRepo, identity, lifecycle, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, identity, lifecycle, cacheSvc, validate, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo)
	classSvc := service.NewClassService(classRepo, studentRepo)
	gradeSvc := service.NewGradeService(db, service.GradeRepositories{
		Grades:      gradeValueRepo,
		Enrollments: enrollmentRepo,
		Students:    studentRepo,
		Employees:   employeeRepo,
		Courses:     courseRepo,
		Reports:     reportRepo,
	}, cacheSvc, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(reportRepo, studentRepo, cacheSvc, cfg.Reports.CacheTTL, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Students:     handler.NewStudentHandler(studentSvc, gradeSvc, reportSvc),
		Employees:    handler.NewEmployeeHandler(employeeSvc),
		Organisation: handler.NewOrganisationHandler(departmentSvc, classSvc),
		Courses:      handler.NewCourseHandler(courseSvc),
		Grades:       handler.NewGradeHandler(gradeSvc),
		Reports:      handler.NewReportHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
