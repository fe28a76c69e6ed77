package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/utils"
)

var ErrAuthInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuthenticationFailed)

const minPasswordLength = 8

type AuthService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

type CreateUserInput struct {
	Name     string          `json:"name" yaml:"name"`
	Email    string          `json:"email" yaml:"email"`
	Password string          `json:"password" yaml:"password"`
	Role     models.UserRole `json:"role" yaml:"role"`
}

type LoginInput struct {
	Email    string
	Password string
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateUser provisions an account. There is no self sign-up; accounts come
// from the seed tool.
func (s *authService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, invalidField("email", "is not a valid address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, invalidField("password", "must be at least %d characters", minPasswordLength)
	}
	switch input.Role {
	case models.RoleAdmin, models.RoleScorer, models.RoleViewer:
	case "":
		input.Role = models.RoleViewer
	default:
		return nil, invalidField("role", "unknown role %q", input.Role)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	user := &models.User{
		Name:         trimmed(input.Name),
		Email:        email,
		Role:         input.Role,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.logger.InfoContext(ctx, "User created", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, utils.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := utils.CheckPassword(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	user.PasswordHash = ""
	return user, nil
}
