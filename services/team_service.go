package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
)

type TeamService interface {
	CreateTeam(ctx context.Context, tournamentID int, input CreateTeamInput) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID int) ([]models.Team, error)
	CreatePlayer(ctx context.Context, teamID int, input CreatePlayerInput) (*models.Player, error)
	ListPlayers(ctx context.Context, teamID int) ([]models.Player, error)
}

type CreateTeamInput struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type CreatePlayerInput struct {
	Name         string              `json:"name"`
	JerseyNumber int                 `json:"jersey_number"`
	Role         models.PlayerRole   `json:"role"`
	BattingStyle models.BattingStyle `json:"batting_style,omitempty"`
}

type teamService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	logger         *slog.Logger
}

func NewTeamService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		logger:         logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, tournamentID int, input CreateTeamInput) (team *models.Team, err error) {
	ctx, span := startSpan(ctx, "TeamService.CreateTeam", attribute.Int("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	name := trimmed(input.Name)
	if name == "" {
		return nil, invalidField("name", "is required")
	}
	short := trimmed(input.ShortName)
	if len(short) > 5 {
		return nil, invalidField("short_name", "must be at most 5 characters")
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	team = &models.Team{TournamentID: tournamentID, Name: name, ShortName: short}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.InfoContext(ctx, "Team created", slog.Int("team_id", team.ID), slog.Int("tournament_id", tournamentID))
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID int) (teams []models.Team, err error) {
	ctx, span := startSpan(ctx, "TeamService.ListTeams", attribute.Int("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	teams, err = s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) CreatePlayer(ctx context.Context, teamID int, input CreatePlayerInput) (p *models.Player, err error) {
	ctx, span := startSpan(ctx, "TeamService.CreatePlayer", attribute.Int("team.id", teamID))
	defer func() { endSpan(span, err) }()

	name := trimmed(input.Name)
	if name == "" {
		return nil, invalidField("name", "is required")
	}
	if input.JerseyNumber < 0 || input.JerseyNumber > 999 {
		return nil, invalidField("jersey_number", "must be between 0 and 999")
	}
	if !input.Role.Valid() {
		return nil, invalidField("role", "unknown role %q", input.Role)
	}
	switch input.BattingStyle {
	case "", models.BattingStyleRight, models.BattingStyleLeft:
	default:
		return nil, invalidField("batting_style", "must be right or left")
	}

	if _, err := s.teamRepo.GetByID(ctx, nil, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	p = &models.Player{
		TeamID:       teamID,
		Name:         name,
		JerseyNumber: input.JerseyNumber,
		Role:         input.Role,
		BattingStyle: input.BattingStyle,
	}
	if err := s.playerRepo.Create(ctx, nil, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerJerseyConflict):
			return nil, ErrJerseyNumberConflict
		case errors.Is(err, repositories.ErrPlayerTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

func (s *teamService) ListPlayers(ctx context.Context, teamID int) (players []models.Player, err error) {
	ctx, span := startSpan(ctx, "TeamService.ListPlayers", attribute.Int("team.id", teamID))
	defer func() { endSpan(span, err) }()

	if _, err := s.teamRepo.GetByID(ctx, nil, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	players, err = s.playerRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}
