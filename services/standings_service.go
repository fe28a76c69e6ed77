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

type StandingsService interface {
	GetPointsTable(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error)
	RecomputePointsTable(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error)
}

// standingsEngine держит таблицу очков в согласованном состоянии. Все методы
// работают внутри транзакции вызывающего.
type standingsEngine struct {
	standingRepo repositories.TournamentStandingRepository
	teamRepo     repositories.TeamRepository
	matchRepo    repositories.MatchRepository
	inningRepo   repositories.InningRepository
	ballRepo     repositories.BallRepository
	logger       *slog.Logger
}

func newStandingsEngine(
	standingRepo repositories.TournamentStandingRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	logger *slog.Logger,
) *standingsEngine {
	return &standingsEngine{
		standingRepo: standingRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		inningRepo:   inningRepo,
		ballRepo:     ballRepo,
		logger:       logger,
	}
}

func (e *standingsEngine) teamIDs(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]int, error) {
	teams, err := e.teamRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of tournament %d: %w", tournamentID, err)
	}
	ids := make([]int, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// inningScores returns both innings of a match, or nil when the match does
// not have two.
func (e *standingsEngine) inningScores(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]scoring.InningScore, error) {
	innings, err := e.inningRepo.ListByMatch(ctx, exec, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list innings of match %d: %w", matchID, err)
	}
	if len(innings) != 2 {
		return nil, nil
	}
	return e.scoresOf(ctx, exec, innings)
}

// completedInningScores is inningScores for a result computed from the
// innings: both must exist and be closed.
func (e *standingsEngine) completedInningScores(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]scoring.InningScore, error) {
	innings, err := e.inningRepo.ListByMatch(ctx, exec, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list innings of match %d: %w", matchID, err)
	}
	if len(innings) != 2 {
		return nil, ErrInningsIncomplete
	}
	for i := range innings {
		if !innings[i].IsCompleted {
			return nil, fmt.Errorf("%w: inning %d is still in progress", ErrInningsIncomplete, innings[i].InningNumber)
		}
	}
	return e.scoresOf(ctx, exec, innings)
}

func (e *standingsEngine) scoresOf(ctx context.Context, exec repositories.SQLExecutor, innings []models.Inning) ([]scoring.InningScore, error) {
	scores := make([]scoring.InningScore, 0, 2)
	for i := range innings {
		balls, err := e.ballRepo.ListByInning(ctx, exec, innings[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ball ledger of inning %d: %w", innings[i].ID, err)
		}
		scores = append(scores, scoring.ScoreOf(&innings[i], scoring.Tally(balls)))
	}
	return scores, nil
}

func (e *standingsEngine) outcomeOf(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) (scoring.Outcome, error) {
	var innings []scoring.InningScore
	if m.Status == models.MatchStatusCompleted && m.Result != nil && m.Result.WinnerID != nil {
		var err error
		innings, err = e.inningScores(ctx, exec, m.ID)
		if err != nil {
			return scoring.Outcome{}, err
		}
	}
	return scoring.OutcomeOf(m, innings), nil
}

// fold добавляет итог одного завершённого или отменённого матча к таблице.
func (e *standingsEngine) fold(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	ids, err := e.teamIDs(ctx, exec, m.TournamentID)
	if err != nil {
		return err
	}
	if err := e.standingRepo.SeedZero(ctx, exec, m.TournamentID, ids); err != nil {
		return fmt.Errorf("failed to seed standings: %w", err)
	}
	current, err := e.standingRepo.ListByTournament(ctx, exec, m.TournamentID, false)
	if err != nil {
		return fmt.Errorf("failed to load standings: %w", err)
	}
	rows := make(map[int]*models.TournamentStanding, len(current))
	for _, r := range current {
		rows[r.TeamID] = r
	}

	outcome, err := e.outcomeOf(ctx, exec, m)
	if err != nil {
		return err
	}
	scoring.Fold(rows, m.TournamentID, outcome)

	if err := e.standingRepo.SaveAll(ctx, exec, scoring.Ordered(rows)); err != nil {
		return fmt.Errorf("failed to save standings: %w", err)
	}
	e.logger.InfoContext(ctx, "Standings updated",
		slog.Int("tournament_id", m.TournamentID), slog.Int("match_id", m.ID), slog.String("status", string(m.Status)))
	return nil
}

// recompute строит таблицу заново по всем завершённым матчам турнира.
// Используется при исправлении результата и при откате завершённого матча.
func (e *standingsEngine) recompute(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.TournamentStanding, error) {
	ids, err := e.teamIDs(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := e.matchRepo.ListFinishedByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches: %w", err)
	}
	outcomes := make([]scoring.Outcome, 0, len(matches))
	for i := range matches {
		o, err := e.outcomeOf(ctx, exec, &matches[i])
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}

	previous, err := e.standingRepo.ListByTournament(ctx, exec, tournamentID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}
	qualified := make(map[int]bool, len(previous))
	for _, r := range previous {
		qualified[r.TeamID] = r.Qualified
	}

	rows := scoring.Recompute(tournamentID, ids, outcomes)
	for _, r := range rows {
		r.Qualified = qualified[r.TeamID]
	}
	if err := e.standingRepo.SaveAll(ctx, exec, rows); err != nil {
		return nil, fmt.Errorf("failed to save standings: %w", err)
	}
	e.logger.InfoContext(ctx, "Standings recomputed",
		slog.Int("tournament_id", tournamentID), slog.Int("matches", len(matches)))
	return rows, nil
}

type standingsService struct {
	db             *sql.DB
	engine         *standingsEngine
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewStandingsService(
	db *sql.DB,
	standingRepo repositories.TournamentStandingRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		db:             db,
		engine:         newStandingsEngine(standingRepo, teamRepo, matchRepo, inningRepo, ballRepo, logger),
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

// GetPointsTable returns the table ordered by position. Teams without a
// stored row get a zero row so every team of the tournament is listed.
func (s *standingsService) GetPointsTable(ctx context.Context, tournamentID int) (rows []*models.TournamentStanding, err error) {
	ctx, span := startSpan(ctx, "StandingsService.GetPointsTable", attribute.Int("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	stored, err := s.engine.standingRepo.ListByTournament(ctx, nil, tournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	teams, err := s.engine.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	byTeam := make(map[int]*models.TournamentStanding, len(teams))
	for _, r := range stored {
		byTeam[r.TeamID] = r
	}
	missing := false
	for i := range teams {
		team := teams[i]
		r, ok := byTeam[team.ID]
		if !ok {
			r = &models.TournamentStanding{TournamentID: tournamentID, TeamID: team.ID}
			byTeam[team.ID] = r
			missing = true
		}
		r.Team = &team
	}
	if !missing {
		return stored, nil
	}
	// Строки без матчей ещё не сохранены: ранжируем в памяти.
	return scoring.Ordered(byTeam), nil
}

func (s *standingsService) RecomputePointsTable(ctx context.Context, tournamentID int) (rows []*models.TournamentStanding, err error) {
	ctx, span := startSpan(ctx, "StandingsService.RecomputePointsTable", attribute.Int("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var txErr error
		rows, txErr = s.engine.recompute(ctx, tx, tournamentID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return s.GetPointsTable(ctx, tournamentID)
}
