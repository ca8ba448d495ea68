package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tennis-club/config"
	"github.com/Dosada05/tennis-club/db"
	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/handlers"
	"github.com/Dosada05/tennis-club/realtime"
	"github.com/Dosada05/tennis-club/repositories"
	api "github.com/Dosada05/tennis-club/routes"
	"github.com/Dosada05/tennis-club/services"
	"github.com/Dosada05/tennis-club/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, db.DefaultPoolOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Загрузчик аватаров (Cloudflare R2) опционален
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Warn("R2 is not configured, avatar uploads are disabled")
	}

	// Почта опциональна
	var (
		emailService *services.EmailService
		mailer       services.Mailer
	)
	if cfg.SMTP.Enabled() {
		emailService = services.NewEmailService(cfg)
		mailer = emailService
		logger.Info("SMTP configured", slog.String("host", cfg.SMTP.Host))
	}

	// Шина событий и WebSocket Hub
	bus := events.NewBus()
	wsHub := realtime.NewHub(logger)
	wsHub.Subscribe(bus)

	// Инициализация репозиториев
	tx := repositories.NewTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	selectionRepo := repositories.NewPostgresSelectionRepository(dbConn)
	matchRequestRepo := repositories.NewPostgresMatchRequestRepository(dbConn)
	experienceRepo := repositories.NewPostgresExperienceRepository(dbConn)
	achievementRepo := repositories.NewPostgresAchievementRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	notificationService := services.NewNotificationService(notificationRepo, userRepo, bus, mailer, logger)
	progressionService := services.NewProgressionService(tx, experienceRepo, notificationService, logger)
	achievementService := services.NewAchievementService(achievementRepo, progressionService, notificationService, cfg.XP, logger)
	winnerService := services.NewWinnerService(tx, matchRepo, selectionRepo, userRepo, notificationService, achievementService, bus, logger)
	streakService := services.NewStreakService(tx, experienceRepo, notificationService, achievementService, logger)
	matchRequestService := services.NewMatchRequestService(tx, matchRequestRepo, matchRepo, userRepo, notificationService, bus, logger)
	matchService := services.NewMatchService(matchRepo, selectionRepo, userRepo, uploader, logger)
	userService := services.NewUserService(userRepo, progressionService, achievementService, uploader, logger)
	adminService := services.NewAdminService(userRepo, achievementService, uploader)
	authService := services.NewAuthService(userRepo, streakService, logger)
	logger.Info("services initialized")

	// Ежедневный сброс серий
	scheduler, err := services.NewStreakScheduler(ctx, streakService, cfg.Jobs.StreakCheckCron, logger)
	if err != nil {
		return err
	}

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService, adminService)
	matchHandler := handlers.NewMatchHandler(winnerService, matchService)
	matchRequestHandler := handlers.NewMatchRequestHandler(matchRequestService)
	progressionHandler := handlers.NewProgressionHandler(progressionService, achievementService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		cfg.CORSAllowedOrigins,
		logger,
		authHandler,
		userHandler,
		matchHandler,
		matchRequestHandler,
		progressionHandler,
		notificationHandler,
		adminHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gctx)
		logger.Info("WebSocket Hub stopped")
		return nil
	})

	scheduler.Start()

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Ожидание сигнала завершения или падения сервера
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application exited")
	return nil
}
