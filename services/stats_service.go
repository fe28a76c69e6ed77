package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
)

// StatsService отдаёт статистику игроков матча. Хранимые строки - это кэш,
// который всегда можно пересобрать по журналу мячей.
type StatsService interface {
	GetMatchStats(ctx context.Context, matchID int) ([]models.MatchPlayerStats, error)
	RebuildMatchStats(ctx context.Context, matchID int) ([]models.MatchPlayerStats, error)
}

type statsService struct {
	db         *sql.DB
	matchRepo  repositories.MatchRepository
	inningRepo repositories.InningRepository
	ballRepo   repositories.BallRepository
	statsRepo  repositories.MatchPlayerStatsRepository
	logger     *slog.Logger
}

func NewStatsService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	statsRepo repositories.MatchPlayerStatsRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		db:         db,
		matchRepo:  matchRepo,
		inningRepo: inningRepo,
		ballRepo:   ballRepo,
		statsRepo:  statsRepo,
		logger:     logger,
	}
}

func (s *statsService) checkMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	if _, err := s.matchRepo.GetByID(ctx, exec, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	return nil
}

func (s *statsService) GetMatchStats(ctx context.Context, matchID int) (stats []models.MatchPlayerStats, err error) {
	ctx, span := startSpan(ctx, "StatsService.GetMatchStats", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if err := s.checkMatch(ctx, nil, matchID); err != nil {
		return nil, err
	}
	stats, err = s.statsRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats of match %d: %w", matchID, err)
	}
	return stats, nil
}

// RebuildMatchStats replaces the stored stats of a match with the ones
// aggregated from its ball ledgers.
func (s *statsService) RebuildMatchStats(ctx context.Context, matchID int) (stats []models.MatchPlayerStats, err error) {
	ctx, span := startSpan(ctx, "StatsService.RebuildMatchStats", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.checkMatch(ctx, tx, matchID); err != nil {
			return err
		}
		innings, err := s.inningRepo.ListByMatch(ctx, tx, matchID)
		if err != nil {
			return fmt.Errorf("failed to list innings: %w", err)
		}
		ledgers := make([]scoring.InningLedger, 0, len(innings))
		for i := range innings {
			balls, err := s.ballRepo.ListByInning(ctx, tx, innings[i].ID)
			if err != nil {
				return fmt.Errorf("failed to load ball ledger of inning %d: %w", innings[i].ID, err)
			}
			ledgers = append(ledgers, scoring.InningLedger{Inning: &innings[i], Balls: balls})
		}

		aggregated := scoring.AggregateStats(matchID, ledgers)
		playerIDs := make([]int, 0, len(aggregated))
		for id := range aggregated {
			playerIDs = append(playerIDs, id)
		}
		sort.Ints(playerIDs)

		if err := s.statsRepo.DeleteByMatch(ctx, tx, matchID); err != nil {
			return fmt.Errorf("failed to clear stats of match %d: %w", matchID, err)
		}
		for _, id := range playerIDs {
			if err := s.statsRepo.ApplyDelta(ctx, tx, matchID, scoring.DeltaOf(aggregated[id])); err != nil {
				return fmt.Errorf("failed to store stats of player %d: %w", id, err)
			}
		}

		stats, err = s.statsRepo.ListByMatch(ctx, tx, matchID)
		if err != nil {
			return fmt.Errorf("failed to list stats of match %d: %w", matchID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Match stats rebuilt", slog.Int("match_id", matchID), slog.Int("players", len(stats)))
	return stats, nil
}
