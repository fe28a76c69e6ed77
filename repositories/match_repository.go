package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchNumberConflict = errors.New("match number already used in this tournament")
	ErrMatchInvalidRef     = errors.New("invalid tournament or team reference")
)

type ListMatchesFilter struct {
	TournamentID int
	Status       *models.MatchStatus
	MatchType    *models.MatchType
	Limit        int
	Offset       int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter ListMatchesFilter) ([]models.Match, error)
	Count(ctx context.Context, exec SQLExecutor, filter ListMatchesFilter) (int, error)
	NextMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	SetToss(ctx context.Context, exec SQLExecutor, id int, toss models.Toss) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	SetResult(ctx context.Context, exec SQLExecutor, id int, result *models.MatchResult) error
	ClearResult(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	SetAbandoned(ctx context.Context, exec SQLExecutor, id int, reason string) error
	ListFinishedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error)
}

type sqlMatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

func (r *sqlMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, match_number, match_type, team1_id, team2_id, venue, scheduled_at, status,
	toss_winner_id, toss_decision, result_winner_id, result_margin, result_summary, result_source,
	man_of_the_match_id, abandon_reason, created_at, updated_at`

func (r *sqlMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MatchStatusUpcoming
	}
	if m.MatchType == "" {
		m.MatchType = models.MatchTypeLeague
	}
	query := `
		INSERT INTO matches (tournament_id, match_number, match_type, team1_id, team2_id, venue, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.TournamentID, m.MatchNumber, m.MatchType, m.Team1ID, m.Team2ID, m.Venue,
		nullableMillis(m.ScheduledAt), m.Status, toMillis(now), toMillis(now),
	).Scan(&m.ID)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrMatchNumberConflict
	case isForeignKeyViolation(err):
		return ErrMatchInvalidRef
	}
	return err
}

func (r *sqlMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m                    models.Match
		scheduledAt          sql.NullInt64
		tossWinner, winner   sql.NullInt64
		motm                 sql.NullInt64
		tossDecision, margin sql.NullString
		summary, source      sql.NullString
		abandonReason        sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.MatchNumber, &m.MatchType, &m.Team1ID, &m.Team2ID, &m.Venue, &scheduledAt, &m.Status,
		&tossWinner, &tossDecision, &winner, &margin, &summary, &source,
		&motm, &abandonReason, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	m.ScheduledAt = fromNullableMillis(scheduledAt)
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	if tossWinner.Valid {
		m.Toss = &models.Toss{WinnerID: int(tossWinner.Int64), Decision: models.TossDecision(tossDecision.String)}
	}
	if source.Valid {
		m.Result = &models.MatchResult{
			WinnerID:      fromNullableInt(winner),
			Margin:        margin.String,
			Summary:       summary.String,
			ManOfTheMatch: fromNullableInt(motm),
			Source:        models.ResultSource(source.String),
		}
	}
	if abandonReason.Valid {
		reason := abandonReason.String
		m.AbandonReason = &reason
	}
	return &m, nil
}

func (r *sqlMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func buildMatchFilter(filter ListMatchesFilter) (string, []interface{}) {
	conditions := []string{"tournament_id = $1"}
	args := []interface{}{filter.TournamentID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.MatchType != nil {
		args = append(args, *filter.MatchType)
		conditions = append(conditions, fmt.Sprintf("match_type = $%d", len(args)))
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *sqlMatchRepository) List(ctx context.Context, exec SQLExecutor, filter ListMatchesFilter) ([]models.Match, error) {
	where, args := buildMatchFilter(filter)
	query := `SELECT ` + matchColumns + ` FROM matches` + where + ` ORDER BY match_number`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return r.list(ctx, exec, query, args...)
}

func (r *sqlMatchRepository) Count(ctx context.Context, exec SQLExecutor, filter ListMatchesFilter) (int, error) {
	where, args := buildMatchFilter(filter)
	var count int
	if err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *sqlMatchRepository) NextMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(match_number), 0) + 1 FROM matches WHERE tournament_id = $1`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next match number: %w", err)
	}
	return next, nil
}

func (r *sqlMatchRepository) SetToss(ctx context.Context, exec SQLExecutor, id int, toss models.Toss) error {
	query := `
		UPDATE matches SET toss_winner_id = $1, toss_decision = $2, status = $3, updated_at = $4
		WHERE id = $5`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		toss.WinnerID, toss.Decision, models.MatchStatusToss, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to set toss for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqlMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET status = $1, updated_at = $2 WHERE id = $3`, status, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update status of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// SetResult stores the result and moves the match to completed.
func (r *sqlMatchRepository) SetResult(ctx context.Context, exec SQLExecutor, id int, res *models.MatchResult) error {
	query := `
		UPDATE matches SET status = $1, result_winner_id = $2, result_margin = $3, result_summary = $4,
			result_source = $5, man_of_the_match_id = $6, updated_at = $7
		WHERE id = $8`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		models.MatchStatusCompleted, nullableInt(res.WinnerID), nullableString(res.Margin), res.Summary,
		res.Source, nullableInt(res.ManOfTheMatch), toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to set result for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqlMatchRepository) ClearResult(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	query := `
		UPDATE matches SET status = $1, result_winner_id = NULL, result_margin = NULL, result_summary = NULL,
			result_source = NULL, man_of_the_match_id = NULL, updated_at = $2
		WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to clear result for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqlMatchRepository) SetAbandoned(ctx context.Context, exec SQLExecutor, id int, reason string) error {
	query := `
		UPDATE matches SET status = $1, abandon_reason = $2, result_winner_id = NULL, result_margin = NULL,
			result_summary = NULL, result_source = NULL, updated_at = $3
		WHERE id = $4`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, models.MatchStatusAbandoned, reason, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to abandon match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ListFinishedByTournament returns completed and abandoned matches in id
// order, which is the order the points table folds them in.
func (r *sqlMatchRepository) ListFinishedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND status IN ($2, $3) ORDER BY id`
	return r.list(ctx, exec, query, tournamentID, models.MatchStatusCompleted, models.MatchStatusAbandoned)
}

func (r *sqlMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}
