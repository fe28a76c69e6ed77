package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

type PlayingXIRepository interface {
	// ReplaceForTeam swaps a team's whole XI for a match.
	ReplaceForTeam(ctx context.Context, exec SQLExecutor, matchID, teamID int, entries []models.PlayingXIEntry) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.PlayingXIEntry, error)
}

type sqlPlayingXIRepository struct {
	db *sql.DB
}

func NewPlayingXIRepository(db *sql.DB) PlayingXIRepository {
	return &sqlPlayingXIRepository{db: db}
}

func (r *sqlPlayingXIRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlPlayingXIRepository) ReplaceForTeam(ctx context.Context, exec SQLExecutor, matchID, teamID int, entries []models.PlayingXIEntry) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM playing_xi WHERE match_id = $1 AND team_id = $2`, matchID, teamID); err != nil {
		return fmt.Errorf("failed to clear playing XI: %w", err)
	}

	query := `
		INSERT INTO playing_xi (match_id, team_id, player_id, batting_order, is_captain, is_wicket_keeper)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, e := range entries {
		if _, err := executor.ExecContext(ctx, query, matchID, teamID, e.PlayerID, e.BattingOrder, e.IsCaptain, e.IsWicketKeeper); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("player %d already selected for match %d: %w", e.PlayerID, matchID, err)
			}
			return fmt.Errorf("failed to insert playing XI entry for player %d: %w", e.PlayerID, err)
		}
	}
	return nil
}

func (r *sqlPlayingXIRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.PlayingXIEntry, error) {
	query := `
		SELECT match_id, team_id, player_id, batting_order, is_captain, is_wicket_keeper
		FROM playing_xi WHERE match_id = $1 ORDER BY team_id, batting_order`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playing XI for match %d: %w", matchID, err)
	}
	defer rows.Close()

	entries := make([]models.PlayingXIEntry, 0, 22)
	for rows.Next() {
		var e models.PlayingXIEntry
		if err := rows.Scan(&e.MatchID, &e.TeamID, &e.PlayerID, &e.BattingOrder, &e.IsCaptain, &e.IsWicketKeeper); err != nil {
			return nil, fmt.Errorf("failed to scan playing XI entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
