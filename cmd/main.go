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

	"github.com/Dosada05/intramural-draws/brackets"
	"github.com/Dosada05/intramural-draws/config"
	"github.com/Dosada05/intramural-draws/db"
	"github.com/Dosada05/intramural-draws/handlers"
	"github.com/Dosada05/intramural-draws/push"
	"github.com/Dosada05/intramural-draws/repositories"
	api "github.com/Dosada05/intramural-draws/routes"
	"github.com/Dosada05/intramural-draws/scheduler"
	"github.com/Dosada05/intramural-draws/services"
	"github.com/Dosada05/intramural-draws/storage"
	"github.com/Dosada05/intramural-draws/utils"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("timezone", cfg.Location.String()),
		slog.String("dispatch_schedule", cfg.DispatchSchedule),
	)

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, db.DefaultPoolConfig)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	ctx := context.Background()

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger.With(slog.String("component", "hub")))
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	tokenRepo := repositories.NewPostgresDeviceTokenRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	logger.Info("Repositories initialized")

	// Push: Firebase только при наличии service account
	var sender push.Sender = push.NewLogSender(logger)
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := push.NewFCMSender(ctx, cfg.FirebaseCredentialsFile, tokenRepo, logger)
		if err != nil {
			logger.Error("failed to initialize Firebase messaging", slog.Any("error", err))
			os.Exit(1)
		}
		sender = fcm
		logger.Info("Firebase messaging initialized")
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_FILE not set, push notifications will only be logged")
	}

	// Архив турнирных сеток в Cloudflare R2 (необязательно)
	var archive services.TieSheetArchiver
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Configured() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archive = storage.NewTieSheetArchive(uploader)
		logger.Info("Cloudflare R2 tie sheet archive initialized")
	}

	// Инициализация сервисов
	clock := utils.SystemClock()
	notificationScheduler := services.NewNotificationScheduler(notificationRepo, clock, cfg.Location, logger)
	drawService := services.NewDrawService(
		sportRepo,
		participantRepo,
		matchRepo,
		notificationScheduler,
		nil, // RandomPairing
		wsHub,
		archive,
		clock,
		cfg.Location,
		logger,
	)
	matchService := services.NewMatchService(matchRepo, wsHub, archive, logger)
	registrationService := services.NewRegistrationService(sportRepo, participantRepo)
	notificationService := services.NewNotificationService(notificationRepo, tokenRepo)
	sportService := services.NewSportService(sportRepo)
	dashboardService := services.NewDashboardService(statsRepo, notificationRepo)
	logger.Info("Services initialized")

	// Диспетчер уведомлений
	dispatcher := scheduler.NewNotificationDispatcher(notificationRepo, sender, clock, logger, scheduler.DispatcherConfig{
		Schedule:  cfg.DispatchSchedule,
		BatchSize: cfg.DispatchBatchSize,
	})
	if err := dispatcher.Start(); err != nil {
		logger.Error("failed to start notification dispatcher", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Draw:         handlers.NewDrawHandler(drawService),
		Match:        handlers.NewMatchHandler(matchService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Sport:        handlers.NewSportHandler(sportService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, sportService, cfg.CORSAllowedOrigins, logger),
		Health:       handlers.NewHealthHandler(dbConn),
	}, cfg.JWTSecretKey, cfg.CORSAllowedOrigins)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStop()
	if err := dispatcher.Stop(stopCtx); err != nil {
		logger.Error("notification dispatcher did not stop in time", slog.Any("error", err))
	}

	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
