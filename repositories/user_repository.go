package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error)
}

type sqlUserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

func (r *sqlUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO users (name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		user.Name, user.Email, user.Role, user.PasswordHash, toMillis(user.CreatedAt),
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return ErrUserEmailConflict
	}
	return err
}

func (r *sqlUserRepository) scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

func (r *sqlUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM users WHERE id = $1`
	return r.scanUser(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlUserRepository) GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = $1`
	return r.scanUser(r.getExecutor(exec).QueryRowContext(ctx, query, email))
}
