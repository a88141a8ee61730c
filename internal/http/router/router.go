package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/starboost/reviews-backend/internal/config"
	"github.com/starboost/reviews-backend/internal/http/handlers"
	"github.com/starboost/reviews-backend/internal/http/middleware"
	"github.com/starboost/reviews-backend/internal/identity"
	"github.com/starboost/reviews-backend/internal/models"
)

// SetupRouter собирает все маршруты и middleware приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	orderHandler *handlers.OrderHandler,
	taskHandler *handlers.TaskHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	tokens *identity.TokenParser,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	if cfg.StorageBackend == "local" {
		r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))
	}

	api := r.Group("/api")

	// Публичный каталог пакетов
	api.GET("/packages", orderHandler.ListPackages)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.SignUp)
		authGroup.POST("/login", authHandler.SignIn)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokens))
	{
		protectedAuth.POST("/logout", authHandler.SignOut)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/profile", profileHandler.Me)
		protected.PUT("/profile", profileHandler.Update)
		protected.PUT("/profile/password", profileHandler.UpdatePassword)

		// Заказы: создание и отмена доступны клиенту, чтение — владельцу
		// или администратору (проверяется в сервисе)
		clientOnly := middleware.RequireRole(models.RoleClient)
		protected.POST("/orders", clientOnly, orderHandler.Create)
		protected.GET("/orders", clientOnly, orderHandler.ListMine)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.Get)
		protected.GET("/orders/:id/progress", middleware.UUIDValidator("id"), orderHandler.Progress)
		protected.POST("/orders/:id/cancel", clientOnly, middleware.UUIDValidator("id"), orderHandler.Cancel)

		// Задания исполнителя
		internOnly := middleware.RequireRole(models.RoleIntern)
		protected.GET("/tasks/available", internOnly, taskHandler.ListAvailable)
		protected.GET("/tasks/my", internOnly, taskHandler.ListMine)
		protected.GET("/tasks/earnings", internOnly, taskHandler.Earnings)
		protected.GET("/tasks/:id", middleware.UUIDValidator("id"), taskHandler.Get)
		protected.POST("/tasks/:id/claim", internOnly, middleware.UUIDValidator("id"), taskHandler.Claim)
		protected.POST("/tasks/:id/proof", internOnly, middleware.UUIDValidator("id"), taskHandler.SubmitProof)
		protected.GET("/tasks/:id/proof", middleware.UUIDValidator("id"), taskHandler.Proof)

		// Панель администратора
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/tasks/submitted", adminHandler.ListSubmitted)
			admin.POST("/tasks/:id/decision", middleware.UUIDValidator("id"), adminHandler.Decide)
			admin.GET("/stats", adminHandler.Stats)
		}
	}

	return r
}
