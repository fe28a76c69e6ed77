package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
)

const playingXISize = 11

type InningService interface {
	StartInning(ctx context.Context, matchID int, input StartInningInput) (*models.Inning, error)
	CompleteInning(ctx context.Context, inningID int) (*InningCompletion, error)
	GetInning(ctx context.Context, inningID int) (*models.InningSummary, error)
	ListMatchInnings(ctx context.Context, matchID int) ([]*models.InningSummary, error)
	GetCurrentInning(ctx context.Context, matchID int) (*models.InningSummary, error)
}

type StartInningInput struct {
	InningNumber  int  `json:"inning_number"`
	BattingTeamID *int `json:"batting_team_id,omitempty"`
}

type InningCompletion struct {
	Inning *models.InningSummary `json:"inning"`
	Match  *models.Match         `json:"match"`
}

type inningService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	inningRepo     repositories.InningRepository
	ballRepo       repositories.BallRepository
	xiRepo         repositories.PlayingXIRepository
	results        *resultRecorder
	defaultOvers   int
	logger         *slog.Logger
}

func NewInningService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	xiRepo repositories.PlayingXIRepository,
	standingRepo repositories.TournamentStandingRepository,
	defaultOvers int,
	logger *slog.Logger,
) InningService {
	standings := newStandingsEngine(standingRepo, teamRepo, matchRepo, inningRepo, ballRepo, logger)
	return &inningService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		inningRepo:     inningRepo,
		ballRepo:       ballRepo,
		xiRepo:         xiRepo,
		results:        &resultRecorder{matchRepo: matchRepo, teamRepo: teamRepo, standings: standings, logger: logger},
		defaultOvers:   defaultOvers,
		logger:         logger,
	}
}

func (s *inningService) getMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	return m, nil
}

func (s *inningService) getInning(ctx context.Context, exec repositories.SQLExecutor, inningID int) (*models.Inning, error) {
	in, err := s.inningRepo.GetByID(ctx, exec, inningID)
	if err != nil {
		if errors.Is(err, repositories.ErrInningNotFound) {
			return nil, ErrInningNotFound
		}
		return nil, fmt.Errorf("failed to get inning %d: %w", inningID, err)
	}
	return in, nil
}

func (s *inningService) totals(ctx context.Context, exec repositories.SQLExecutor, inningID int) (scoring.Totals, error) {
	balls, err := s.ballRepo.ListByInning(ctx, exec, inningID)
	if err != nil {
		return scoring.Totals{}, fmt.Errorf("failed to load ball ledger of inning %d: %w", inningID, err)
	}
	return scoring.Tally(balls), nil
}

// firstBattingTeam resolves who bats first from the toss.
func firstBattingTeam(m *models.Match) int {
	if m.Toss.Decision == models.TossDecisionBat {
		return m.Toss.WinnerID
	}
	return m.Opponent(m.Toss.WinnerID)
}

func (s *inningService) StartInning(ctx context.Context, matchID int, input StartInningInput) (inning *models.Inning, err error) {
	ctx, span := startSpan(ctx, "InningService.StartInning",
		attribute.Int("match.id", matchID), attribute.Int("inning.number", input.InningNumber))
	defer func() { endSpan(span, err) }()

	if input.InningNumber != 1 && input.InningNumber != 2 {
		return nil, invalidField("inning_number", "must be 1 or 2")
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		m, err := s.getMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if m.Status.Terminal() {
			return ErrMatchNotInProgress
		}
		if _, err := s.inningRepo.GetByMatchAndNumber(ctx, tx, matchID, input.InningNumber); err == nil {
			return ErrInningExists
		} else if !errors.Is(err, repositories.ErrInningNotFound) {
			return fmt.Errorf("failed to check existing inning: %w", err)
		}

		inning = &models.Inning{MatchID: matchID, InningNumber: input.InningNumber}
		nextStatus := models.MatchStatusInning1

		if input.InningNumber == 1 {
			if m.Toss == nil {
				return ErrTossRequired
			}
			if m.Status != models.MatchStatusToss {
				return fmt.Errorf("%w: match is %s", ErrInvalidMatchStatus, m.Status)
			}
			xi, err := s.xiRepo.ListByMatch(ctx, tx, matchID)
			if err != nil {
				return fmt.Errorf("failed to load playing XI: %w", err)
			}
			counts := countByTeam(xi)
			if counts[m.Team1ID] != playingXISize || counts[m.Team2ID] != playingXISize {
				return ErrPlayingXIMissing
			}
			inning.BattingTeamID = firstBattingTeam(m)
		} else {
			first, err := s.inningRepo.GetByMatchAndNumber(ctx, tx, matchID, 1)
			if err != nil {
				if errors.Is(err, repositories.ErrInningNotFound) {
					return ErrPreviousInningOpen
				}
				return fmt.Errorf("failed to get first inning: %w", err)
			}
			if !first.IsCompleted {
				return ErrPreviousInningOpen
			}
			t, err := s.totals(ctx, tx, first.ID)
			if err != nil {
				return err
			}
			target := scoring.Target(t)
			inning.Target = &target
			inning.BattingTeamID = first.BowlingTeamID
			nextStatus = models.MatchStatusInning2
		}
		inning.BowlingTeamID = m.Opponent(inning.BattingTeamID)

		if input.BattingTeamID != nil && *input.BattingTeamID != inning.BattingTeamID {
			return invalidField("batting_team_id", "team %d does not bat in inning %d", *input.BattingTeamID, input.InningNumber)
		}

		if err := s.inningRepo.Create(ctx, tx, inning); err != nil {
			if errors.Is(err, repositories.ErrInningExists) {
				return ErrInningExists
			}
			return fmt.Errorf("failed to create inning: %w", err)
		}
		if err := s.matchRepo.UpdateStatus(ctx, tx, matchID, nextStatus); err != nil {
			return fmt.Errorf("failed to update match status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Inning started",
		slog.Int("match_id", matchID),
		slog.Int("inning_id", inning.ID),
		slog.Int("inning_number", inning.InningNumber),
		slog.Int("batting_team_id", inning.BattingTeamID))
	return inning, nil
}

// CompleteInning closes an innings by hand. A chase can only be closed once
// it is actually finished; closing it completes the match.
func (s *inningService) CompleteInning(ctx context.Context, inningID int) (res *InningCompletion, err error) {
	ctx, span := startSpan(ctx, "InningService.CompleteInning", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		inning, err := s.getInning(ctx, tx, inningID)
		if err != nil {
			return err
		}
		if inning.IsCompleted {
			return ErrInningCompleted
		}
		m, err := s.getMatch(ctx, tx, inning.MatchID)
		if err != nil {
			return err
		}
		if m.Status.Terminal() {
			return ErrMatchNotInProgress
		}
		tournament, err := s.tournamentRepo.GetByID(ctx, tx, m.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to get tournament %d: %w", m.TournamentID, err)
		}
		overs := oversFor(tournament, s.defaultOvers)
		t, err := s.totals(ctx, tx, inning.ID)
		if err != nil {
			return err
		}
		if !scoring.CanCloseByHand(inning, overs, t) {
			return ErrChaseInProgress
		}

		reason, done := scoring.CompletionReason(inning, overs, t)
		if !done {
			reason = models.CompletionManual
		}
		if err := s.inningRepo.MarkCompleted(ctx, tx, inning.ID, reason); err != nil {
			return fmt.Errorf("failed to complete inning %d: %w", inning.ID, err)
		}
		inning.IsCompleted = true
		inning.CompletionReason = &reason

		if inning.InningNumber == 2 {
			if err := s.results.finishFromInnings(ctx, tx, m, nil); err != nil {
				return err
			}
		}
		res = &InningCompletion{Inning: summarize(inning, t), Match: m}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Inning closed by scorer",
		slog.Int("inning_id", inningID),
		slog.String("reason", string(*res.Inning.Inning.CompletionReason)))
	return res, nil
}

func (s *inningService) GetInning(ctx context.Context, inningID int) (sum *models.InningSummary, err error) {
	ctx, span := startSpan(ctx, "InningService.GetInning", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	inning, err := s.getInning(ctx, nil, inningID)
	if err != nil {
		return nil, err
	}
	t, err := s.totals(ctx, nil, inning.ID)
	if err != nil {
		return nil, err
	}
	return summarize(inning, t), nil
}

func (s *inningService) ListMatchInnings(ctx context.Context, matchID int) (out []*models.InningSummary, err error) {
	ctx, span := startSpan(ctx, "InningService.ListMatchInnings", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if _, err := s.getMatch(ctx, nil, matchID); err != nil {
		return nil, err
	}
	innings, err := s.inningRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list innings: %w", err)
	}
	out = make([]*models.InningSummary, 0, len(innings))
	for i := range innings {
		t, err := s.totals(ctx, nil, innings[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(&innings[i], t))
	}
	return out, nil
}

// GetCurrentInning returns the innings in progress, or the last one played
// when none is open.
func (s *inningService) GetCurrentInning(ctx context.Context, matchID int) (summary *models.InningSummary, err error) {
	ctx, span := startSpan(ctx, "InningService.GetCurrentInning", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	all, err := s.ListMatchInnings(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrInningNotFound
	}
	for _, sum := range all {
		if !sum.Inning.IsCompleted {
			return sum, nil
		}
	}
	return all[len(all)-1], nil
}
