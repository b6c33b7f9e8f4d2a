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
	_ "github.com/lib/pq"

	"github.com/racquetline/racquet-system/config"
	"github.com/racquetline/racquet-system/db"
	"github.com/racquetline/racquet-system/handlers"
	"github.com/racquetline/racquet-system/repositories"
	api "github.com/racquetline/racquet-system/routes"
	"github.com/racquetline/racquet-system/scoring"
	"github.com/racquetline/racquet-system/services"
	"github.com/racquetline/racquet-system/storage"
)

const schedulerInterval = 30 * time.Second // период планировщика статусов турниров

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := scoring.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(userRepo, cloudflareUploader)
	clubService := services.NewClubService(clubRepo, courtRepo, cloudflareUploader)
	courtService := services.NewCourtService(courtRepo, clubRepo)
	sportService := services.NewSportService(sportRepo, cloudflareUploader)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		sportRepo,
		clubRepo,
		participantRepo,
		matchRepo,
		cloudflareUploader,
		wsHub,
		logger,
	)
	participantService := services.NewParticipantService(participantRepo, tournamentRepo, userRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, tournamentRepo, participantRepo, courtRepo)
	captureService := services.NewCaptureService(
		dbConn,
		sessionRepo,
		eventRepo,
		matchRepo,
		tournamentRepo,
		sportRepo,
		wsHub,
		logger,
	)
	dashboardService := services.NewDashboardService(userRepo, clubRepo, tournamentRepo, matchRepo, sessionRepo)
	logger.Info("services initialized")

	// Планировщик автоматического обновления статусов турниров
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("interval", schedulerInterval))

		// Первый прогон сразу при старте, дальше по тикеру
		if err := tournamentService.AutoUpdateTournamentStatusesByDates(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := tournamentService.AutoUpdateTournamentStatusesByDates(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	clubHandler := handlers.NewClubHandler(clubService, courtService)
	courtHandler := handlers.NewCourtHandler(courtService)
	sportHandler := handlers.NewSportHandler(sportService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	participantHandler := handlers.NewParticipantHandler(participantService)
	matchHandler := handlers.NewMatchHandler(matchService)
	captureHandler := handlers.NewCaptureHandler(captureService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		clubHandler,
		courtHandler,
		sportHandler,
		tournamentHandler,
		participantHandler,
		matchHandler,
		captureHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
