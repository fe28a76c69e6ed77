package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
)

type MatchPlayerStatsRepository interface {
	// ApplyDelta adds d to the player's row, creating it with d as its
	// initial value on first contact.
	ApplyDelta(ctx context.Context, exec SQLExecutor, matchID int, d scoring.StatDelta) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchPlayerStats, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type sqlMatchPlayerStatsRepository struct {
	db *sql.DB
}

func NewMatchPlayerStatsRepository(db *sql.DB) MatchPlayerStatsRepository {
	return &sqlMatchPlayerStatsRepository{db: db}
}

func (r *sqlMatchPlayerStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlMatchPlayerStatsRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, matchID int, d scoring.StatDelta) error {
	query := `
		INSERT INTO match_player_stats (match_id, player_id, team_id, runs, balls_faced, fours, sixes, dismissals,
			legal_balls, runs_conceded, wickets, dot_balls, fielding_dismissals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (match_id, player_id) DO UPDATE SET
			runs = match_player_stats.runs + excluded.runs,
			balls_faced = match_player_stats.balls_faced + excluded.balls_faced,
			fours = match_player_stats.fours + excluded.fours,
			sixes = match_player_stats.sixes + excluded.sixes,
			dismissals = match_player_stats.dismissals + excluded.dismissals,
			legal_balls = match_player_stats.legal_balls + excluded.legal_balls,
			runs_conceded = match_player_stats.runs_conceded + excluded.runs_conceded,
			wickets = match_player_stats.wickets + excluded.wickets,
			dot_balls = match_player_stats.dot_balls + excluded.dot_balls,
			fielding_dismissals = match_player_stats.fielding_dismissals + excluded.fielding_dismissals`
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		matchID, d.PlayerID, d.TeamID, d.Runs, d.BallsFaced, d.Fours, d.Sixes, d.Dismissals,
		d.LegalBalls, d.RunsConceded, d.Wickets, d.DotBalls, d.FieldingDismissals,
	)
	if err != nil {
		return fmt.Errorf("failed to apply stats for player %d in match %d: %w", d.PlayerID, matchID, err)
	}
	return nil
}

func (r *sqlMatchPlayerStatsRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchPlayerStats, error) {
	query := `
		SELECT id, match_id, player_id, team_id, runs, balls_faced, fours, sixes, dismissals,
			legal_balls, runs_conceded, wickets, dot_balls, fielding_dismissals
		FROM match_player_stats WHERE match_id = $1 ORDER BY team_id, player_id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats for match %d: %w", matchID, err)
	}
	defer rows.Close()

	stats := make([]models.MatchPlayerStats, 0)
	for rows.Next() {
		var s models.MatchPlayerStats
		err := rows.Scan(&s.ID, &s.MatchID, &s.PlayerID, &s.TeamID,
			&s.Batting.Runs, &s.Batting.BallsFaced, &s.Batting.Fours, &s.Batting.Sixes, &s.Batting.Dismissals,
			&s.Bowling.LegalBalls, &s.Bowling.RunsConceded, &s.Bowling.Wickets, &s.Bowling.DotBalls,
			&s.Fielding.Dismissals)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player stats: %w", err)
		}
		s.Derive()
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *sqlMatchPlayerStatsRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM match_player_stats WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete stats for match %d: %w", matchID, err)
	}
	return nil
}
