package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/config"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/db"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/fixtures"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/seed"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/services"
)

const defaultSeedPath = "seed.example.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("file", defaultSeedPath, "path to the YAML seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	data, err := seed.LoadFile(*path)
	if err != nil {
		return err
	}

	dbConn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, dbConn, cfg.DatabaseDriver); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	tournamentRepo := repositories.NewTournamentRepository(dbConn)
	teamRepo := repositories.NewTeamRepository(dbConn)
	playerRepo := repositories.NewPlayerRepository(dbConn)
	matchRepo := repositories.NewMatchRepository(dbConn)

	svc := seed.Services{
		Auth: services.NewAuthService(repositories.NewUserRepository(dbConn), logger),
		Tournaments: services.NewTournamentService(dbConn, tournamentRepo, teamRepo, matchRepo,
			fixtures.NewRoundRobinGenerator(), cfg.DefaultOversPerInnings, logger),
		Teams: services.NewTeamService(tournamentRepo, teamRepo, playerRepo, logger),
		Matches: services.NewMatchService(dbConn, tournamentRepo, teamRepo, playerRepo, matchRepo,
			repositories.NewInningRepository(dbConn), repositories.NewBallRepository(dbConn),
			repositories.NewPlayingXIRepository(dbConn), repositories.NewTournamentStandingRepository(dbConn), logger),
	}

	report, err := seed.Apply(ctx, svc, data, logger)
	if err != nil {
		return err
	}
	logger.Info("seed applied",
		slog.String("file", *path),
		slog.Int("users", report.Users),
		slog.Int("tournaments", report.Tournaments),
		slog.Int("teams", report.Teams),
		slog.Int("players", report.Players),
		slog.Int("matches", report.Matches),
		slog.Int("skipped", report.Skipped),
	)
	return nil
}
