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
	ErrInningNotFound = errors.New("inning not found")
	ErrInningExists   = errors.New("inning already exists for this match")
)

type InningRepository interface {
	Create(ctx context.Context, exec SQLExecutor, inning *models.Inning) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Inning, error)
	GetByMatchAndNumber(ctx context.Context, exec SQLExecutor, matchID, number int) (*models.Inning, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Inning, error)
	MarkCompleted(ctx context.Context, exec SQLExecutor, id int, reason models.CompletionReason) error
	Reopen(ctx context.Context, exec SQLExecutor, id int) error
}

type sqlInningRepository struct {
	db *sql.DB
}

func NewInningRepository(db *sql.DB) InningRepository {
	return &sqlInningRepository{db: db}
}

func (r *sqlInningRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const inningColumns = `id, match_id, inning_number, batting_team_id, bowling_team_id, target, is_completed, completion_reason, created_at`

func (r *sqlInningRepository) Create(ctx context.Context, exec SQLExecutor, in *models.Inning) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO innings (match_id, inning_number, batting_team_id, bowling_team_id, target, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		in.MatchID, in.InningNumber, in.BattingTeamID, in.BowlingTeamID, nullableInt(in.Target), false, toMillis(in.CreatedAt),
	).Scan(&in.ID)
	if isUniqueViolation(err) {
		return ErrInningExists
	}
	return err
}

func (r *sqlInningRepository) scanInning(row rowScanner) (*models.Inning, error) {
	var (
		in        models.Inning
		target    sql.NullInt64
		reason    sql.NullString
		createdAt int64
	)
	err := row.Scan(&in.ID, &in.MatchID, &in.InningNumber, &in.BattingTeamID, &in.BowlingTeamID,
		&target, &in.IsCompleted, &reason, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInningNotFound
		}
		return nil, err
	}
	in.Target = fromNullableInt(target)
	if reason.Valid {
		cr := models.CompletionReason(reason.String)
		in.CompletionReason = &cr
	}
	in.CreatedAt = fromMillis(createdAt)
	return &in, nil
}

func (r *sqlInningRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Inning, error) {
	query := `SELECT ` + inningColumns + ` FROM innings WHERE id = $1`
	return r.scanInning(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlInningRepository) GetByMatchAndNumber(ctx context.Context, exec SQLExecutor, matchID, number int) (*models.Inning, error) {
	query := `SELECT ` + inningColumns + ` FROM innings WHERE match_id = $1 AND inning_number = $2`
	return r.scanInning(r.getExecutor(exec).QueryRowContext(ctx, query, matchID, number))
}

func (r *sqlInningRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Inning, error) {
	query := `SELECT ` + inningColumns + ` FROM innings WHERE match_id = $1 ORDER BY inning_number`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list innings for match %d: %w", matchID, err)
	}
	defer rows.Close()

	innings := make([]models.Inning, 0, 2)
	for rows.Next() {
		in, err := r.scanInning(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inning: %w", err)
		}
		innings = append(innings, *in)
	}
	return innings, rows.Err()
}

func (r *sqlInningRepository) MarkCompleted(ctx context.Context, exec SQLExecutor, id int, reason models.CompletionReason) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE innings SET is_completed = $1, completion_reason = $2 WHERE id = $3`, true, reason, id)
	if err != nil {
		return fmt.Errorf("failed to complete inning %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrInningNotFound)
}

func (r *sqlInningRepository) Reopen(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE innings SET is_completed = $1, completion_reason = NULL WHERE id = $2`, false, id)
	if err != nil {
		return fmt.Errorf("failed to reopen inning %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrInningNotFound)
}
