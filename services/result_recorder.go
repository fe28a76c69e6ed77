package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
)

// resultRecorder закрывает матч по итогам двух иннингсов и откатывает такое
// закрытие. Работает в транзакции вызывающего.
type resultRecorder struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	standings *standingsEngine
	logger    *slog.Logger
}

// finishFromInnings computes the result from both completed innings, stores
// it as an automatic result and folds it into the standings.
func (r *resultRecorder) finishFromInnings(ctx context.Context, exec repositories.SQLExecutor, m *models.Match, motm *int) error {
	scores, err := r.standings.completedInningScores(ctx, exec, m.ID)
	if err != nil {
		return err
	}

	res := scoring.ComputeResult(scores[0], scores[1])
	team1, err := r.teamRepo.GetByID(ctx, exec, m.Team1ID)
	if err != nil {
		return fmt.Errorf("failed to get team %d: %w", m.Team1ID, err)
	}
	team2, err := r.teamRepo.GetByID(ctx, exec, m.Team2ID)
	if err != nil {
		return fmt.Errorf("failed to get team %d: %w", m.Team2ID, err)
	}

	result := &models.MatchResult{
		WinnerID:      res.WinnerID,
		Margin:        res.Margin(),
		Summary:       res.Summary(teamNamer(team1, team2)),
		ManOfTheMatch: motm,
		Source:        models.ResultSourceAuto,
	}
	return r.store(ctx, exec, m, result)
}

// store persists a result and folds the completed match into the standings.
func (r *resultRecorder) store(ctx context.Context, exec repositories.SQLExecutor, m *models.Match, result *models.MatchResult) error {
	if err := r.matchRepo.SetResult(ctx, exec, m.ID, result); err != nil {
		return fmt.Errorf("failed to set result of match %d: %w", m.ID, err)
	}
	m.Status = models.MatchStatusCompleted
	m.Result = result

	if err := r.standings.fold(ctx, exec, m); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Match completed",
		slog.Int("match_id", m.ID),
		slog.String("summary", result.Summary),
		slog.String("source", string(result.Source)))
	return nil
}

// revert returns an automatically completed match to its second innings
// and rebuilds the standings without it.
func (r *resultRecorder) revert(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	if err := r.matchRepo.ClearResult(ctx, exec, m.ID, models.MatchStatusInning2); err != nil {
		return fmt.Errorf("failed to clear result of match %d: %w", m.ID, err)
	}
	m.Status = models.MatchStatusInning2
	m.Result = nil

	if _, err := r.standings.recompute(ctx, exec, m.TournamentID); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Match result reverted", slog.Int("match_id", m.ID))
	return nil
}
