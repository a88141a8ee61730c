package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/starboost/reviews-backend/internal/config"
	"github.com/starboost/reviews-backend/internal/db"
	httpHandlers "github.com/starboost/reviews-backend/internal/http/handlers"
	httpRouter "github.com/starboost/reviews-backend/internal/http/router"
	"github.com/starboost/reviews-backend/internal/identity"
	"github.com/starboost/reviews-backend/internal/logger"
	"github.com/starboost/reviews-backend/internal/repository"
	"github.com/starboost/reviews-backend/internal/service"
	"github.com/starboost/reviews-backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Провайдер идентификации: hosted при заданном IDENTITY_BASE_URL,
	// иначе локальный dev-провайдер с тем же форматом токенов.
	var provider identity.Provider
	if cfg.IdentityBaseURL != "" {
		provider = identity.NewGoTrueProvider(cfg.IdentityBaseURL, cfg.IdentityAPIKey, cfg.CollaboratorTimeout)
	} else {
		log.Printf("main: IDENTITY_BASE_URL не задан, используется локальный провайдер идентификации")
		provider = identity.NewLocalProvider(cfg.JWTSecret, cfg.AccessTokenTTL)
	}
	tokens := identity.NewTokenParser(cfg.JWTSecret)

	// Хранилище скриншотов.
	var blobs storage.BlobStorage
	if cfg.StorageBackend == "s3" {
		blobs, err = storage.NewS3Storage(cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
	} else {
		blobs, err = storage.NewLocalStorage(cfg.MediaStoragePath, "http://localhost:"+cfg.HTTPPort, cfg.MaxUploadSizeMB)
	}
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(provider, userRepo, cfg.CollaboratorTimeout)
	orderService := service.NewOrderService(orderRepo)
	taskService := service.NewTaskService(taskRepo, blobs, cfg.CollaboratorTimeout)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(authService)
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	taskHandler := httpHandlers.NewTaskHandler(taskService, cfg.MaxUploadSizeMB*1024*1024)
	adminHandler := httpHandlers.NewAdminHandler(orderService, taskService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, orderHandler, taskHandler, adminHandler, healthHandler, tokens)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
