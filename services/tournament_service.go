package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/fixtures"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
)

const maxOversPerInnings = 50

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int, includeTeams bool) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	GenerateFixtures(ctx context.Context, id int, input GenerateFixturesInput) ([]*models.Match, error)
}

type CreateTournamentInput struct {
	Name            string `json:"name"`
	Season          string `json:"season"`
	OversPerInnings int    `json:"overs_per_innings,omitempty"`
}

type GenerateFixturesInput struct {
	DoubleRoundRobin bool   `json:"double_round_robin"`
	Venue            string `json:"venue,omitempty"`
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	generator      fixtures.Generator
	defaultOvers   int
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	generator fixtures.Generator,
	defaultOvers int,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		generator:      generator,
		defaultOvers:   defaultOvers,
		logger:         logger,
	}
}

func (s *tournamentService) getTournament(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (t *models.Tournament, err error) {
	ctx, span := startSpan(ctx, "TournamentService.CreateTournament")
	defer func() { endSpan(span, err) }()

	name, season := trimmed(input.Name), trimmed(input.Season)
	if name == "" {
		return nil, invalidField("name", "is required")
	}
	if season == "" {
		return nil, invalidField("season", "is required")
	}
	overs := input.OversPerInnings
	if overs == 0 {
		overs = oversFor(nil, s.defaultOvers)
	}
	if overs < 1 || overs > maxOversPerInnings {
		return nil, invalidField("overs_per_innings", "must be between 1 and %d", maxOversPerInnings)
	}

	t = &models.Tournament{Name: name, Season: season, OversPerInnings: overs}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "Tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int, includeTeams bool) (t *models.Tournament, err error) {
	ctx, span := startSpan(ctx, "TournamentService.GetTournament", attribute.Int("tournament.id", id))
	defer func() { endSpan(span, err) }()

	t, err = s.getTournament(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if includeTeams {
		teams, err := s.teamRepo.ListByTournament(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		t.Teams = teams
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) (list []models.Tournament, err error) {
	ctx, span := startSpan(ctx, "TournamentService.ListTournaments")
	defer func() { endSpan(span, err) }()

	list, err = s.tournamentRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return list, nil
}

func (s *tournamentService) UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (t *models.Tournament, err error) {
	ctx, span := startSpan(ctx, "TournamentService.UpdateTournamentStatus", attribute.Int("tournament.id", id))
	defer func() { endSpan(span, err) }()

	switch status {
	case models.TournamentStatusUpcoming, models.TournamentStatusOngoing, models.TournamentStatusCompleted:
	default:
		return nil, invalidField("status", "unknown tournament status %q", status)
	}
	t, err = s.getTournament(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	t.Status = status
	return t, nil
}

// GenerateFixtures creates the league round robin for a tournament that has
// no matches yet.
func (s *tournamentService) GenerateFixtures(ctx context.Context, id int, input GenerateFixturesInput) (matches []*models.Match, err error) {
	ctx, span := startSpan(ctx, "TournamentService.GenerateFixtures", attribute.Int("tournament.id", id))
	defer func() { endSpan(span, err) }()

	legs := 1
	if input.DoubleRoundRobin {
		legs = 2
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		t, err := s.getTournament(ctx, tx, id)
		if err != nil {
			return err
		}
		existing, err := s.matchRepo.Count(ctx, tx, repositories.ListMatchesFilter{TournamentID: id})
		if err != nil {
			return fmt.Errorf("failed to count matches: %w", err)
		}
		if existing > 0 {
			return ErrFixturesAlreadyExist
		}
		teams, err := s.teamRepo.ListByTournament(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}

		matches, err = s.generator.Generate(ctx, fixtures.GenerateParams{
			Tournament:       t,
			Teams:            teams,
			Legs:             legs,
			Venue:            trimmed(input.Venue),
			FirstMatchNumber: 1,
		})
		if err != nil {
			if errors.Is(err, fixtures.ErrNotEnoughTeams) {
				return ErrFixturesNeedTwoTeams
			}
			return fmt.Errorf("failed to generate fixtures: %w", err)
		}
		for _, m := range matches {
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return fmt.Errorf("failed to create match %d: %w", m.MatchNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Fixtures generated",
		slog.Int("tournament_id", id), slog.String("generator", s.generator.Name()), slog.Int("matches", len(matches)))
	return matches, nil
}
