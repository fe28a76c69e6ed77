package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/storage"
)

type ScorecardService interface {
	GetScorecard(ctx context.Context, matchID int) (*Scorecard, error)
	ArchiveScorecard(ctx context.Context, matchID int) (*storage.PutResult, error)
	DeleteArchive(ctx context.Context, matchID int) error
}

type InningScorecard struct {
	Summary *models.InningSummary     `json:"summary"`
	Batting []models.MatchPlayerStats `json:"batting"`
	Bowling []models.MatchPlayerStats `json:"bowling"`
	Overs   []models.OverView         `json:"overs"`
}

type Scorecard struct {
	Match       *models.Match             `json:"match"`
	Team1       *models.Team              `json:"team1"`
	Team2       *models.Team              `json:"team2"`
	Innings     []InningScorecard         `json:"innings"`
	PlayerStats []models.MatchPlayerStats `json:"player_stats"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

type scorecardService struct {
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	inningRepo repositories.InningRepository
	ballRepo   repositories.BallRepository
	statsRepo  repositories.MatchPlayerStatsRepository
	store      storage.ObjectStore
	logger     *slog.Logger
}

// NewScorecardService builds the service. store may be nil, in which case
// archiving is unavailable.
func NewScorecardService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	statsRepo repositories.MatchPlayerStatsRepository,
	store storage.ObjectStore,
	logger *slog.Logger,
) ScorecardService {
	return &scorecardService{
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		inningRepo: inningRepo,
		ballRepo:   ballRepo,
		statsRepo:  statsRepo,
		store:      store,
		logger:     logger,
	}
}

func (s *scorecardService) GetScorecard(ctx context.Context, matchID int) (card *Scorecard, err error) {
	ctx, span := startSpan(ctx, "ScorecardService.GetScorecard", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	innings, err := s.inningRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list innings: %w", err)
	}

	card = &Scorecard{Match: m, Innings: make([]InningScorecard, len(innings)), GeneratedAt: time.Now().UTC()}
	ledgers := make([][]models.Ball, len(innings))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		team, err := s.teamRepo.GetByID(gctx, nil, m.Team1ID)
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", m.Team1ID, err)
		}
		card.Team1 = team
		return nil
	})
	g.Go(func() error {
		team, err := s.teamRepo.GetByID(gctx, nil, m.Team2ID)
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", m.Team2ID, err)
		}
		card.Team2 = team
		return nil
	})
	g.Go(func() error {
		stats, err := s.statsRepo.ListByMatch(gctx, nil, matchID)
		if err != nil {
			return fmt.Errorf("failed to list stats: %w", err)
		}
		card.PlayerStats = stats
		return nil
	})
	for i := range innings {
		g.Go(func() error {
			balls, err := s.ballRepo.ListByInning(gctx, nil, innings[i].ID)
			if err != nil {
				return fmt.Errorf("failed to load ball ledger of inning %d: %w", innings[i].ID, err)
			}
			ledgers[i] = balls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range innings {
		in := &innings[i]
		sc := InningScorecard{
			Summary: summarize(in, scoring.Tally(ledgers[i])),
			Batting: []models.MatchPlayerStats{},
			Bowling: []models.MatchPlayerStats{},
			Overs:   scoring.GroupByOver(ledgers[i]),
		}
		for _, st := range card.PlayerStats {
			switch {
			case st.TeamID == in.BattingTeamID && (st.Batting.BallsFaced > 0 || st.Batting.IsOut):
				sc.Batting = append(sc.Batting, st)
			case st.TeamID == in.BowlingTeamID && st.Bowling.LegalBalls > 0:
				sc.Bowling = append(sc.Bowling, st)
			}
		}
		card.Innings[i] = sc
	}
	return card, nil
}

// ArchiveScorecard uploads the current scorecard as JSON. Re-archiving
// overwrites the previous object.
func (s *scorecardService) ArchiveScorecard(ctx context.Context, matchID int) (res *storage.PutResult, err error) {
	ctx, span := startSpan(ctx, "ScorecardService.ArchiveScorecard", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		s.logger.WarnContext(ctx, "Scorecard archive skipped: storage not configured", slog.Int("match_id", matchID))
		return nil, ErrArchiveNotConfigured
	}
	card, err := s.GetScorecard(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !card.Match.Status.Terminal() {
		return nil, ErrMatchNotCompleted
	}

	body, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scorecard: %w", err)
	}
	key := storage.ScorecardKey(card.Match.TournamentID, matchID)
	res, err = s.store.Put(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to archive scorecard of match %d: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "Scorecard archived", slog.Int("match_id", matchID), slog.String("key", res.Key))
	return res, nil
}

func (s *scorecardService) DeleteArchive(ctx context.Context, matchID int) (err error) {
	ctx, span := startSpan(ctx, "ScorecardService.DeleteArchive", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return ErrArchiveNotConfigured
	}
	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if err := s.store.Delete(ctx, storage.ScorecardKey(m.TournamentID, matchID)); err != nil {
		return fmt.Errorf("failed to delete scorecard archive of match %d: %w", matchID, err)
	}
	s.logger.InfoContext(ctx, "Scorecard archive deleted", slog.Int("match_id", matchID))
	return nil
}
