package v1

import (
	"net/http"
	"time"

	"go-studybuddy-backend/config"
	"go-studybuddy-backend/internal/delivery/http/middleware"
	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	UserUC       domain.UserUsecase
	CourseUC     domain.CourseUsecase
	MatchUC      domain.MatchUsecase
	GroupUC      domain.GroupUsecase
	ConnectionUC domain.ConnectionUsecase
	GroupJoinUC  domain.GroupJoinUsecase
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	protected.Use(middleware.RateLimitMiddleware(middleware.UserRateLimitConfig(deps.Config.RateLimitUserThreshold, window)))
	{
		NewUserHandler(protected, deps.UserUC)
		NewCourseHandler(protected, deps.CourseUC)
		NewMatchHandler(protected, deps.MatchUC)
		NewGroupHandler(protected, deps.GroupUC)
		NewConnectionHandler(protected, deps.ConnectionUC)
		NewGroupRequestHandler(protected, deps.GroupJoinUC)
	}

	return r
}
