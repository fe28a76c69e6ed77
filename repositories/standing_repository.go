package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

var (
	ErrTournamentStandingNotFound = errors.New("tournament standing not found")
)

type TournamentStandingRepository interface {
	// SeedZero creates an empty row for every team that does not have one.
	SeedZero(ctx context.Context, exec SQLExecutor, tournamentID int, teamIDs []int) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, sortByPosition bool) ([]*models.TournamentStanding, error)
	// SaveAll writes every field of the given rows, inserting missing ones.
	SaveAll(ctx context.Context, exec SQLExecutor, standings []*models.TournamentStanding) error
}

type sqlTournamentStandingRepository struct {
	db *sql.DB // Main DB connection, can be used if exec is nil
}

func NewTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &sqlTournamentStandingRepository{db: db}
}

func (r *sqlTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTournamentStandingRepository) SeedZero(ctx context.Context, exec SQLExecutor, tournamentID int, teamIDs []int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_standings (tournament_id, team_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, team_id) DO NOTHING`
	now := toMillis(time.Now())
	for _, teamID := range teamIDs {
		if _, err := executor.ExecContext(ctx, query, tournamentID, teamID, now); err != nil {
			return fmt.Errorf("SeedZero failed for team %d: %w", teamID, err)
		}
	}
	return nil
}

func (r *sqlTournamentStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.TournamentStanding, error) {
	var (
		s         models.TournamentStanding
		updatedAt int64
	)
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.TeamID, &s.Played, &s.Won, &s.Lost, &s.NoResult,
		&s.Points, &s.NetRunRate, &s.Position, &s.Qualified, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentStandingNotFound
		}
		return nil, err
	}
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}

func (r *sqlTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, sortByPosition bool) ([]*models.TournamentStanding, error) {
	query := `
		SELECT id, tournament_id, team_id, played, won, lost, no_result, points, net_run_rate, position, qualified, updated_at
		FROM tournament_standings
		WHERE tournament_id = $1`
	if sortByPosition {
		query += " ORDER BY position ASC, team_id ASC"
	} else {
		query += " ORDER BY team_id ASC"
	}

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var standings []*models.TournamentStanding
	for rows.Next() {
		s, err := r.scanStanding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *sqlTournamentStandingRepository) SaveAll(ctx context.Context, exec SQLExecutor, standings []*models.TournamentStanding) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_standings
			(tournament_id, team_id, played, won, lost, no_result, points, net_run_rate, position, qualified, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tournament_id, team_id) DO UPDATE SET
			played = excluded.played,
			won = excluded.won,
			lost = excluded.lost,
			no_result = excluded.no_result,
			points = excluded.points,
			net_run_rate = excluded.net_run_rate,
			position = excluded.position,
			qualified = excluded.qualified,
			updated_at = excluded.updated_at`
	now := time.Now().UTC()
	for _, s := range standings {
		s.UpdatedAt = now
		_, err := executor.ExecContext(ctx, query,
			s.TournamentID, s.TeamID, s.Played, s.Won, s.Lost, s.NoResult,
			s.Points, s.NetRunRate, s.Position, s.Qualified, toMillis(now),
		)
		if err != nil {
			return fmt.Errorf("SaveAll failed for team %d: %w", s.TeamID, err)
		}
	}
	return nil
}
