package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

var tracer = otel.Tracer("github.com/GovindaEkabote/Cricket-Score-Calculate/services")

// startSpan открывает span операции сервиса.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan закрывает span и помечает его ошибкой, если она есть.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// runInTx выполняет fn в одной транзакции. Любая ошибка или паника
// откатывает все изменения.
func runInTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			logger.DebugContext(ctx, "Rolling back transaction", slog.Any("error", txErr))
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.ErrorContext(ctx, "Error during rollback", slog.Any("error", rbErr), slog.Any("original_error", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			logger.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", cErr))
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// oversFor returns the innings length of a tournament, falling back to the
// configured default.
func oversFor(t *models.Tournament, fallback int) int {
	if t != nil && t.OversPerInnings > 0 {
		return t.OversPerInnings
	}
	if fallback > 0 {
		return fallback
	}
	return models.DefaultOversPerInnings
}

// playerTeamsOf maps every player of the playing XIs to their team.
func playerTeamsOf(entries []models.PlayingXIEntry) map[int]int {
	out := make(map[int]int, len(entries))
	for _, e := range entries {
		out[e.PlayerID] = e.TeamID
	}
	return out
}

func countByTeam(entries []models.PlayingXIEntry) map[int]int {
	out := make(map[int]int, 2)
	for _, e := range entries {
		out[e.TeamID]++
	}
	return out
}

// teamNamer returns a lookup used when rendering result summaries.
func teamNamer(teams ...*models.Team) func(int) string {
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		if t != nil {
			names[t.ID] = t.Name
		}
	}
	return func(id int) string {
		if name, ok := names[id]; ok {
			return name
		}
		return fmt.Sprintf("Team %d", id)
	}
}

func playerNamer(players []models.Player) func(int) string {
	names := make(map[int]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return func(id int) string {
		if name, ok := names[id]; ok {
			return name
		}
		return fmt.Sprintf("Player %d", id)
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
