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

	"github.com/GovindaEkabote/Cricket-Score-Calculate/config"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/db"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/fixtures"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/handlers"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	api "github.com/GovindaEkabote/Cricket-Score-Calculate/routes"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/services"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/storage"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/telemetry"
)

const serviceName = "cricket-score"

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("database_driver", cfg.DatabaseDriver),
		slog.Int("default_overs", cfg.DefaultOversPerInnings),
	)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, 5*time.Second)
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

	if err := db.Migrate(ctx, dbConn, cfg.DatabaseDriver); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Архив карточек матчей (Cloudflare R2) необязателен.
	var archive storage.ObjectStore
	if cfg.R2().Enabled() {
		archive, err = storage.NewR2Store(ctx, cfg.R2())
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 store initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 credentials are not set, scorecard archiving is disabled")
	}

	// Инициализация репозиториев
	userRepo := repositories.NewUserRepository(dbConn)
	tournamentRepo := repositories.NewTournamentRepository(dbConn)
	teamRepo := repositories.NewTeamRepository(dbConn)
	playerRepo := repositories.NewPlayerRepository(dbConn)
	matchRepo := repositories.NewMatchRepository(dbConn)
	xiRepo := repositories.NewPlayingXIRepository(dbConn)
	inningRepo := repositories.NewInningRepository(dbConn)
	ballRepo := repositories.NewBallRepository(dbConn)
	statsRepo := repositories.NewMatchPlayerStatsRepository(dbConn)
	standingRepo := repositories.NewTournamentStandingRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	overs := cfg.DefaultOversPerInnings
	authService := services.NewAuthService(userRepo, logger)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, teamRepo, matchRepo,
		fixtures.NewRoundRobinGenerator(), overs, logger)
	teamService := services.NewTeamService(tournamentRepo, teamRepo, playerRepo, logger)
	matchService := services.NewMatchService(dbConn, tournamentRepo, teamRepo, playerRepo, matchRepo,
		inningRepo, ballRepo, xiRepo, standingRepo, logger)
	inningService := services.NewInningService(dbConn, tournamentRepo, teamRepo, matchRepo, inningRepo,
		ballRepo, xiRepo, standingRepo, overs, logger)
	scoringService := services.NewScoringService(dbConn, tournamentRepo, teamRepo, matchRepo, inningRepo,
		ballRepo, xiRepo, playerRepo, statsRepo, standingRepo, overs, logger)
	statsService := services.NewStatsService(dbConn, matchRepo, inningRepo, ballRepo, statsRepo, logger)
	standingsService := services.NewStandingsService(dbConn, standingRepo, tournamentRepo, teamRepo,
		matchRepo, inningRepo, ballRepo, logger)
	scorecardService := services.NewScorecardService(matchRepo, teamRepo, inningRepo, ballRepo, statsRepo,
		archive, logger)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, standingsService)
	teamHandler := handlers.NewTeamHandler(teamService)
	matchHandler := handlers.NewMatchHandler(matchService, statsService, scorecardService)
	inningHandler := handlers.NewInningHandler(inningService)
	ballHandler := handlers.NewBallHandler(scoringService)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: cfg.JWTSecretKey, AllowedOrigins: cfg.CORSAllowedOrigins},
		authHandler,
		tournamentHandler,
		teamHandler,
		matchHandler,
		inningHandler,
		ballHandler,
	)
	logger.Info("routes configured")

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

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
