package services

import (
	"context"
	"errors"
	"testing"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

func TestAuthService(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()

	user, err := env.auth.CreateUser(ctx, CreateUserInput{
		Name:     "Scorer One",
		Email:    "  Scorer@Example.com ",
		Password: "s3cret-pass",
		Role:     models.RoleScorer,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.Email != "scorer@example.com" || user.PasswordHash != "" {
		t.Fatalf("user = %+v", *user)
	}

	t.Run("login", func(t *testing.T) {
		got, err := env.auth.Login(ctx, LoginInput{Email: "SCORER@example.com", Password: "s3cret-pass"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if got.ID != user.ID || got.Role != models.RoleScorer {
			t.Fatalf("logged in as %+v", *got)
		}
	})

	t.Run("failures", func(t *testing.T) {
		tests := []struct {
			name string
			run  func() error
			want error
		}{
			{
				name: "wrong password",
				run: func() error {
					_, err := env.auth.Login(ctx, LoginInput{Email: "scorer@example.com", Password: "nope-nope"})
					return err
				},
				want: ErrAuthenticationFailed,
			},
			{
				name: "unknown email",
				run: func() error {
					_, err := env.auth.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "s3cret-pass"})
					return err
				},
				want: ErrAuthenticationFailed,
			},
			{
				name: "duplicate email",
				run: func() error {
					_, err := env.auth.CreateUser(ctx, CreateUserInput{Email: "scorer@example.com", Password: "another-pass"})
					return err
				},
				want: ErrConflict,
			},
			{
				name: "short password",
				run: func() error {
					_, err := env.auth.CreateUser(ctx, CreateUserInput{Email: "new@example.com", Password: "short"})
					return err
				},
				want: ErrValidationFailed,
			},
			{
				name: "unknown role",
				run: func() error {
					_, err := env.auth.CreateUser(ctx, CreateUserInput{Email: "new@example.com", Password: "long-enough", Role: "owner"})
					return err
				},
				want: ErrValidationFailed,
			},
			{
				name: "missing user",
				run: func() error {
					_, err := env.auth.GetUser(ctx, 4040)
					return err
				},
				want: ErrNotFound,
			},
		}
		for _, tt := range tests {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
			}
		}
	})

	t.Run("default role", func(t *testing.T) {
		viewer, err := env.auth.CreateUser(ctx, CreateUserInput{Email: "viewer@example.com", Password: "viewer-pass"})
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if viewer.Role != models.RoleViewer {
			t.Fatalf("role = %s, want viewer", viewer.Role)
		}
	})
}
