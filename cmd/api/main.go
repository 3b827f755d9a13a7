package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-studybuddy-backend/config"
	_ "go-studybuddy-backend/docs" // Important for Swagger
	"go-studybuddy-backend/internal/delivery/http/middleware"
	v1 "go-studybuddy-backend/internal/delivery/http/v1"
	"go-studybuddy-backend/internal/ranking"
	"go-studybuddy-backend/internal/repository/postgres"
	"go-studybuddy-backend/internal/usecase"
	"go-studybuddy-backend/pkg/auth"
	"go-studybuddy-backend/pkg/database"
	"go-studybuddy-backend/pkg/logger"
	"go-studybuddy-backend/pkg/poller"
	"go-studybuddy-backend/pkg/redis"
	"go-studybuddy-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           StudyBuddy Backend API
// @version         1.0
// @description     Study partner matching backend using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting studybuddy backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; rate limiting falls back to in-memory)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	courseRepo := postgres.NewCourseRepository(dbPool)
	groupRepo := postgres.NewGroupRepository(dbPool)
	connectionRepo := postgres.NewConnectionRequestRepository(dbPool)
	joinRepo := postgres.NewGroupJoinRequestRepository(dbPool)

	// 6. Load enum configuration (grades/genders)
	enums, err := ranking.LoadEnumConfig(cfg.EnumConfigFile)
	if err != nil {
		logger.Log.Error("Failed to load enum config", "error", err)
		os.Exit(1)
	}

	// 7. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	authUC := usecase.NewAuthUsecase(userRepo)
	userUC := usecase.NewUserUsecase(userRepo, courseRepo, enums, validate)
	courseUC := usecase.NewCourseUsecase(courseRepo)
	matchUC := usecase.NewMatchUsecase(userRepo, groupRepo)
	groupUC := usecase.NewGroupUsecase(groupRepo, courseRepo, validate)
	connectionUC := usecase.NewConnectionUsecase(connectionRepo, userRepo, groupRepo)
	groupJoinUC := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)

	// 8. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSURL)

	// 9. Background sweep of the in-memory rate limit store
	sweep := poller.New("rate-limit-sweep",
		time.Duration(cfg.RateLimitSweepSeconds)*time.Second,
		logger.Log, middleware.SweepExpired)
	sweep.Start(context.Background())
	defer sweep.Stop()

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		CourseUC:     courseUC,
		MatchUC:      matchUC,
		GroupUC:      groupUC,
		ConnectionUC: connectionUC,
		GroupJoinUC:  groupJoinUC,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
