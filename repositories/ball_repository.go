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
	ErrBallNotFound      = errors.New("ball not found")
	ErrBallPositionTaken = errors.New("a ball is already recorded at this position")
)

type BallPage struct {
	Limit      int
	Offset     int
	Descending bool
}

type BallRepository interface {
	Create(ctx context.Context, exec SQLExecutor, ball *models.Ball) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	ListByInning(ctx context.Context, exec SQLExecutor, inningID int) ([]models.Ball, error)
	ListPage(ctx context.Context, exec SQLExecutor, inningID int, page BallPage) ([]models.Ball, error)
	ListByOverRange(ctx context.Context, exec SQLExecutor, inningID, fromOver, toOver int) ([]models.Ball, error)
	CountByInning(ctx context.Context, exec SQLExecutor, inningID int) (int, error)
}

type sqlBallRepository struct {
	db *sql.DB
}

func NewBallRepository(db *sql.DB) BallRepository {
	return &sqlBallRepository{db: db}
}

func (r *sqlBallRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const ballColumns = `
	id, inning_id, over_number, ball_in_over, is_legal, bowler_id, batsman_id, non_striker_id,
	batsman_runs, extra_runs, total_runs, extra_type, wicket_type, player_out_id, fielder_id,
	commentary, created_at`

// Create appends a ball. The unique (inning, over, ball_in_over) key turns a
// concurrent write of the same position into ErrBallPositionTaken.
func (r *sqlBallRepository) Create(ctx context.Context, exec SQLExecutor, b *models.Ball) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	var (
		extraType             interface{}
		wicketType            interface{}
		playerOut, fielderRef interface{}
	)
	if b.ExtraType != nil {
		extraType = string(*b.ExtraType)
	}
	if w := b.Wicket; w != nil {
		wicketType = string(w.Type)
		playerOut = w.PlayerOutID
		fielderRef = nullableInt(w.FielderID)
	}

	query := `
		INSERT INTO balls (inning_id, over_number, ball_in_over, is_legal, bowler_id, batsman_id, non_striker_id,
			batsman_runs, extra_runs, total_runs, extra_type, wicket_type, player_out_id, fielder_id, commentary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		b.InningID, b.Over, b.BallInOver, b.IsLegal, b.BowlerID, b.BatsmanID, b.NonStrikerID,
		b.Runs.Batsman, b.Runs.Extras, b.Runs.Total, extraType, wicketType, playerOut, fielderRef,
		b.Commentary, toMillis(b.CreatedAt),
	).Scan(&b.ID)
	if isUniqueViolation(err) {
		return ErrBallPositionTaken
	}
	return err
}

func (r *sqlBallRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM balls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ball %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBallNotFound)
}

func (r *sqlBallRepository) scanBall(row rowScanner) (*models.Ball, error) {
	var (
		b                     models.Ball
		extraType, wicketType sql.NullString
		playerOut, fielder    sql.NullInt64
		createdAt             int64
	)
	err := row.Scan(
		&b.ID, &b.InningID, &b.Over, &b.BallInOver, &b.IsLegal, &b.BowlerID, &b.BatsmanID, &b.NonStrikerID,
		&b.Runs.Batsman, &b.Runs.Extras, &b.Runs.Total, &extraType, &wicketType, &playerOut, &fielder,
		&b.Commentary, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBallNotFound
		}
		return nil, err
	}
	if extraType.Valid {
		et := models.ExtraType(extraType.String)
		b.ExtraType = &et
	}
	if wicketType.Valid {
		b.Wicket = &models.Wicket{
			Type:        models.WicketType(wicketType.String),
			PlayerOutID: int(playerOut.Int64),
			FielderID:   fromNullableInt(fielder),
		}
	}
	b.CreatedAt = fromMillis(createdAt)
	return &b, nil
}

func (r *sqlBallRepository) ListByInning(ctx context.Context, exec SQLExecutor, inningID int) ([]models.Ball, error) {
	query := `SELECT ` + ballColumns + ` FROM balls WHERE inning_id = $1 ORDER BY over_number, ball_in_over`
	return r.list(ctx, exec, query, inningID)
}

func (r *sqlBallRepository) ListPage(ctx context.Context, exec SQLExecutor, inningID int, page BallPage) ([]models.Ball, error) {
	order := "ASC"
	if page.Descending {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM balls WHERE inning_id = $1
		ORDER BY over_number %s, ball_in_over %s LIMIT $2 OFFSET $3`, ballColumns, order, order)
	return r.list(ctx, exec, query, inningID, page.Limit, page.Offset)
}

func (r *sqlBallRepository) ListByOverRange(ctx context.Context, exec SQLExecutor, inningID, fromOver, toOver int) ([]models.Ball, error) {
	query := `SELECT ` + ballColumns + ` FROM balls
		WHERE inning_id = $1 AND over_number >= $2 AND over_number <= $3
		ORDER BY over_number, ball_in_over`
	return r.list(ctx, exec, query, inningID, fromOver, toOver)
}

func (r *sqlBallRepository) CountByInning(ctx context.Context, exec SQLExecutor, inningID int) (int, error) {
	var count int
	if err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM balls WHERE inning_id = $1`, inningID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count balls: %w", err)
	}
	return count, nil
}

func (r *sqlBallRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Ball, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list balls: %w", err)
	}
	defer rows.Close()

	balls := make([]models.Ball, 0)
	for rows.Next() {
		b, err := r.scanBall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ball: %w", err)
		}
		balls = append(balls, *b)
	}
	return balls, rows.Err()
}
