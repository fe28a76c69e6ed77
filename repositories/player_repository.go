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
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerJerseyConflict = errors.New("jersey number already taken in this team")
	ErrPlayerTeamInvalid    = errors.New("invalid team reference")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error)
}

type sqlPlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) PlayerRepository {
	return &sqlPlayerRepository{db: db}
}

func (r *sqlPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, team_id, name, jersey_number, role, batting_style, created_at`

func (r *sqlPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.BattingStyle == "" {
		p.BattingStyle = models.BattingStyleRight
	}
	query := `
		INSERT INTO players (team_id, name, jersey_number, role, batting_style, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.TeamID, p.Name, p.JerseyNumber, p.Role, p.BattingStyle, toMillis(p.CreatedAt),
	).Scan(&p.ID)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrPlayerJerseyConflict
	case isForeignKeyViolation(err):
		return ErrPlayerTeamInvalid
	}
	return err
}

func (r *sqlPlayerRepository) scanPlayer(row rowScanner) (*models.Player, error) {
	var (
		p         models.Player
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.Role, &p.BattingStyle, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

func (r *sqlPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlPlayerRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY jersey_number`
	return r.list(ctx, exec, query, teamID)
}

// ListByIDs returns the players that exist among ids, in id order.
func (r *sqlPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id IN (` + strings.Join(placeholders, ", ") + `) ORDER BY id`
	return r.list(ctx, exec, query, args...)
}

func (r *sqlPlayerRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}
