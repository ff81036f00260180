package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auth-service/internal/config"
	"auth-service/internal/delivery/http/handler"
	"auth-service/internal/domain/event"
	domainUser "auth-service/internal/domain/user"
	"auth-service/internal/email"
	"auth-service/internal/infrastructure/database/postgres"
	"auth-service/internal/logger"
	"auth-service/internal/middleware"
	authUsecase "auth-service/internal/usecase/auth"
	tokenUsecase "auth-service/internal/usecase/token"
	userUsecase "auth-service/internal/usecase/user"
	"auth-service/pkg/token"
)

// Dependencies carries the externally-owned collaborators into the router.
type Dependencies struct {
	DB        *postgres.DB
	Users     domainUser.Repository
	Publisher event.Publisher
	Mailer    *email.Sender
}

func SetupRoutes(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware order: recovery, request ID, logging, security headers,
	// CORS, request size limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(1 << 20))

	codec := token.NewCodec(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpireMinutes)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpireDays)*24*time.Hour,
	)

	secretService := tokenUsecase.NewService(
		deps.Users,
		cfg.Secrets.VerificationExpireHours,
		cfg.Secrets.PasswordResetExpireHours,
	)
	authService := authUsecase.NewService(deps.Users, secretService, codec, deps.Publisher, cfg.FrontendURL)

	var mailer userUsecase.Mailer
	if deps.Mailer != nil {
		mailer = deps.Mailer
	}
	userService := userUsecase.NewService(deps.Users, mailer)

	authHandler := handler.NewAuthHandler(authService)
	passwordHandler := handler.NewPasswordHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// Service info; reports the caller's identity when a valid access token
	// accompanies the request.
	router.GET("/", middleware.OptionalAuthMiddleware(codec, deps.Users), func(c *gin.Context) {
		info := gin.H{
			"service": "auth-service",
			"version": "1.0.0",
		}
		if user, ok := middleware.CurrentUser(c); ok {
			info["authenticated_as"] = user.Email
		}
		c.JSON(http.StatusOK, info)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		if err := deps.DB.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not ready",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", middleware.RefreshTokenMiddleware(codec, deps.Users), authHandler.Refresh)
			auth.GET("/verify-email/:token", authHandler.VerifyEmail)
			auth.POST("/resend-verification", authHandler.ResendVerification)
			auth.POST("/logout", middleware.AuthMiddleware(codec, deps.Users), authHandler.Logout)
		}

		password := v1.Group("/password")
		{
			password.POST("/forgot", passwordHandler.Forgot)
			password.POST("/reset", passwordHandler.Reset)
			password.POST("/validate-token", passwordHandler.ValidateToken)
		}

		// The profile surface sits behind the full gate chain:
		// authenticated, active, verified.
		users := v1.Group("/users")
		users.Use(
			middleware.AuthMiddleware(codec, deps.Users),
			middleware.ActiveUserMiddleware(),
			middleware.VerifiedUserMiddleware(),
		)
		{
			users.GET("/me", userHandler.GetProfile)
			users.PUT("/me", userHandler.UpdateProfile)
			users.POST("/change-password", userHandler.ChangePassword)
			users.DELETE("/me", userHandler.DeactivateAccount)
			users.POST("/me/delete", userHandler.DeleteAccount)
		}

		admin := v1.Group("/admin")
		admin.Use(
			middleware.AuthMiddleware(codec, deps.Users),
			middleware.ActiveUserMiddleware(),
			middleware.VerifiedUserMiddleware(),
			middleware.AdminOnly(),
		)
		{
			admin.GET("/users", userHandler.ListUsers)
		}
	}

	logger.Info("All routes initialized")
	return router
}
