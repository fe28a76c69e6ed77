package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
)

const (
	defaultMatchPageSize = 20
	maxMatchPageSize     = 100
	defaultAbandonReason = "Match abandoned"
)

type MatchService interface {
	CreateMatch(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int, input ListMatchesInput) (*MatchList, error)
	RecordToss(ctx context.Context, matchID int, input TossInput) (*models.Match, error)
	SetPlayingXI(ctx context.Context, matchID, teamID int, input PlayingXIInput) ([]models.PlayingXIEntry, error)
	GetPlayingXI(ctx context.Context, matchID int) ([]models.PlayingXIEntry, error)
	CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*models.Match, error)
	AbandonMatch(ctx context.Context, matchID int, input AbandonMatchInput) (*models.Match, error)
	UpdateMatchResult(ctx context.Context, matchID int, input UpdateResultInput) (*models.Match, error)
}

type CreateMatchInput struct {
	MatchNumber int              `json:"match_number,omitempty"`
	MatchType   models.MatchType `json:"match_type,omitempty"`
	Team1ID     int              `json:"team1_id"`
	Team2ID     int              `json:"team2_id"`
	Venue       string           `json:"venue"`
	ScheduledAt *time.Time       `json:"scheduled_at,omitempty"`
}

type ListMatchesInput struct {
	Status    *models.MatchStatus
	MatchType *models.MatchType
	Page      int
	Limit     int
}

type MatchList struct {
	Matches []models.Match `json:"matches"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

type TossInput struct {
	WinnerID int                 `json:"winner_id"`
	Decision models.TossDecision `json:"decision"`
}

type PlayingXIPlayer struct {
	PlayerID       int  `json:"player_id"`
	BattingOrder   *int `json:"batting_order,omitempty"`
	IsCaptain      bool `json:"is_captain"`
	IsWicketKeeper bool `json:"is_wicket_keeper"`
}

type PlayingXIInput struct {
	Players []PlayingXIPlayer `json:"players"`
}

// CompleteMatchInput без победителя, маржи и итога означает автоматический
// расчёт результата по иннингсам.
type CompleteMatchInput struct {
	WinnerID        *int    `json:"winner_id,omitempty"`
	Margin          *string `json:"margin,omitempty"`
	Summary         *string `json:"summary,omitempty"`
	ManOfTheMatchID *int    `json:"man_of_the_match_id,omitempty"`
}

func (in CompleteMatchInput) isOverride() bool {
	return in.WinnerID != nil || in.Margin != nil || in.Summary != nil
}

type AbandonMatchInput struct {
	Reason string `json:"reason"`
}

type UpdateResultInput struct {
	WinnerID        *int    `json:"winner_id,omitempty"`
	Margin          *string `json:"margin,omitempty"`
	Summary         *string `json:"summary,omitempty"`
	ManOfTheMatchID *int    `json:"man_of_the_match_id,omitempty"`
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	xiRepo         repositories.PlayingXIRepository
	results        *resultRecorder
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	xiRepo repositories.PlayingXIRepository,
	standingRepo repositories.TournamentStandingRepository,
	logger *slog.Logger,
) MatchService {
	standings := newStandingsEngine(standingRepo, teamRepo, matchRepo, inningRepo, ballRepo, logger)
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		xiRepo:         xiRepo,
		results:        &resultRecorder{matchRepo: matchRepo, teamRepo: teamRepo, standings: standings, logger: logger},
		logger:         logger,
	}
}

func (s *matchService) getMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	return m, nil
}

func (s *matchService) CreateMatch(ctx context.Context, tournamentID int, input CreateMatchInput) (m *models.Match, err error) {
	ctx, span := startSpan(ctx, "MatchService.CreateMatch", attribute.Int("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	if input.Team1ID <= 0 {
		return nil, invalidField("team1_id", "is required")
	}
	if input.Team2ID <= 0 {
		return nil, invalidField("team2_id", "is required")
	}
	if input.Team1ID == input.Team2ID {
		return nil, invalidField("team2_id", "a team cannot play itself")
	}
	if input.MatchType != "" && !input.MatchType.Valid() {
		return nil, invalidField("match_type", "unknown match type %q", input.MatchType)
	}
	if input.MatchNumber < 0 {
		return nil, invalidField("match_number", "must be positive")
	}

	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	for _, ref := range []struct {
		field string
		id    int
	}{{"team1_id", input.Team1ID}, {"team2_id", input.Team2ID}} {
		field, teamID := ref.field, ref.id
		team, err := s.teamRepo.GetByID(ctx, nil, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, invalidField(field, "team %d does not exist", teamID)
			}
			return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
		}
		if team.TournamentID != tournamentID {
			return nil, invalidField(field, "team %d is not part of tournament %d", teamID, tournamentID)
		}
	}

	m = &models.Match{
		TournamentID: tournamentID,
		MatchNumber:  input.MatchNumber,
		MatchType:    input.MatchType,
		Team1ID:      input.Team1ID,
		Team2ID:      input.Team2ID,
		Venue:        trimmed(input.Venue),
		ScheduledAt:  input.ScheduledAt,
	}
	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if m.MatchNumber == 0 {
			next, err := s.matchRepo.NextMatchNumber(ctx, tx, tournamentID)
			if err != nil {
				return err
			}
			m.MatchNumber = next
		}
		if err := s.matchRepo.Create(ctx, tx, m); err != nil {
			switch {
			case errors.Is(err, repositories.ErrMatchNumberConflict):
				return ErrMatchNumberConflict
			case errors.Is(err, repositories.ErrMatchInvalidRef):
				return invalidField("team1_id", "unknown team or tournament")
			}
			return fmt.Errorf("failed to create match: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Match created",
		slog.Int("match_id", m.ID), slog.Int("tournament_id", tournamentID), slog.Int("match_number", m.MatchNumber))
	return m, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (m *models.Match, err error) {
	ctx, span := startSpan(ctx, "MatchService.GetMatch", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()
	return s.getMatch(ctx, nil, matchID)
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, input ListMatchesInput) (list *MatchList, err error) {
	ctx, span := startSpan(ctx, "MatchService.ListMatches", attribute.Int("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	if input.Limit <= 0 {
		input.Limit = defaultMatchPageSize
	}
	if input.Limit > maxMatchPageSize {
		input.Limit = maxMatchPageSize
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	filter := repositories.ListMatchesFilter{
		TournamentID: tournamentID,
		Status:       input.Status,
		MatchType:    input.MatchType,
		Limit:        input.Limit,
		Offset:       (input.Page - 1) * input.Limit,
	}

	total, err := s.matchRepo.Count(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	matches, err := s.matchRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return &MatchList{Matches: matches, Total: total, Page: input.Page, Limit: input.Limit}, nil
}

func (s *matchService) RecordToss(ctx context.Context, matchID int, input TossInput) (m *models.Match, err error) {
	ctx, span := startSpan(ctx, "MatchService.RecordToss", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if input.Decision != models.TossDecisionBat && input.Decision != models.TossDecisionBowl {
		return nil, invalidField("decision", "must be bat or bowl")
	}

	m, err = s.getMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasTeam(input.WinnerID) {
		return nil, invalidField("winner_id", "team %d is not playing this match", input.WinnerID)
	}
	if m.Status != models.MatchStatusUpcoming && m.Status != models.MatchStatusToss {
		return nil, fmt.Errorf("%w: toss cannot be recorded once the match is %s", ErrInvalidMatchStatus, m.Status)
	}

	toss := models.Toss{WinnerID: input.WinnerID, Decision: input.Decision}
	if err := s.matchRepo.SetToss(ctx, nil, matchID, toss); err != nil {
		return nil, fmt.Errorf("failed to record toss: %w", err)
	}
	m.Toss = &toss
	m.Status = models.MatchStatusToss

	s.logger.InfoContext(ctx, "Toss recorded",
		slog.Int("match_id", matchID), slog.Int("winner_id", toss.WinnerID), slog.String("decision", string(toss.Decision)))
	return m, nil
}

// SetPlayingXI replaces a team's eleven for the match. The XI can change
// until the first innings starts.
func (s *matchService) SetPlayingXI(ctx context.Context, matchID, teamID int, input PlayingXIInput) (entries []models.PlayingXIEntry, err error) {
	ctx, span := startSpan(ctx, "MatchService.SetPlayingXI", attribute.Int("match.id", matchID), attribute.Int("team.id", teamID))
	defer func() { endSpan(span, err) }()

	if len(input.Players) != playingXISize {
		return nil, invalidField("players", "exactly %d players are required, got %d", playingXISize, len(input.Players))
	}
	captains, keepers := 0, 0
	seen := make(map[int]bool, playingXISize)
	ids := make([]int, 0, playingXISize)
	for _, p := range input.Players {
		if seen[p.PlayerID] {
			return nil, invalidField("players", "player %d is listed twice", p.PlayerID)
		}
		seen[p.PlayerID] = true
		ids = append(ids, p.PlayerID)
		if p.IsCaptain {
			captains++
		}
		if p.IsWicketKeeper {
			keepers++
		}
	}
	if captains != 1 {
		return nil, invalidField("players", "exactly one captain is required")
	}
	if keepers < 1 {
		return nil, invalidField("players", "at least one wicket keeper is required")
	}

	m, err := s.getMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasTeam(teamID) {
		return nil, invalidField("team_id", "team %d is not playing this match", teamID)
	}
	if m.Status != models.MatchStatusToss {
		if m.Status == models.MatchStatusUpcoming {
			return nil, ErrTossRequired
		}
		return nil, fmt.Errorf("%w: playing XI is locked once the match is %s", ErrInvalidMatchStatus, m.Status)
	}

	players, err := s.playerRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}

	entries = make([]models.PlayingXIEntry, 0, playingXISize)
	for i, p := range input.Players {
		player, ok := byID[p.PlayerID]
		if !ok {
			return nil, invalidField("players", "player %d does not exist", p.PlayerID)
		}
		if player.TeamID != teamID {
			return nil, invalidField("players", "player %d does not belong to team %d", p.PlayerID, teamID)
		}
		order := i + 1
		if p.BattingOrder != nil {
			order = *p.BattingOrder
		}
		entries = append(entries, models.PlayingXIEntry{
			MatchID:        matchID,
			TeamID:         teamID,
			PlayerID:       p.PlayerID,
			BattingOrder:   order,
			IsCaptain:      p.IsCaptain,
			IsWicketKeeper: p.IsWicketKeeper,
			Player:         player,
		})
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		return s.xiRepo.ReplaceForTeam(ctx, tx, matchID, teamID, entries)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Playing XI set", slog.Int("match_id", matchID), slog.Int("team_id", teamID))
	return entries, nil
}

func (s *matchService) GetPlayingXI(ctx context.Context, matchID int) (entries []models.PlayingXIEntry, err error) {
	ctx, span := startSpan(ctx, "MatchService.GetPlayingXI", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if _, err := s.getMatch(ctx, nil, matchID); err != nil {
		return nil, err
	}
	entries, err = s.xiRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playing XI: %w", err)
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	players, err := s.playerRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}
	for i := range entries {
		entries[i].Player = byID[entries[i].PlayerID]
	}
	return entries, nil
}

// validateResultRefs checks that the winner plays the match and the man of
// the match plays for either team.
func (s *matchService) validateResultRefs(ctx context.Context, exec repositories.SQLExecutor, m *models.Match, winnerID, motmID *int) error {
	if winnerID != nil && !m.HasTeam(*winnerID) {
		return invalidField("winner_id", "team %d is not playing this match", *winnerID)
	}
	if motmID != nil {
		p, err := s.playerRepo.GetByID(ctx, exec, *motmID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return invalidField("man_of_the_match_id", "player %d does not exist", *motmID)
			}
			return fmt.Errorf("failed to get player %d: %w", *motmID, err)
		}
		if !m.HasTeam(p.TeamID) {
			return invalidField("man_of_the_match_id", "player %d does not play in this match", *motmID)
		}
	}
	return nil
}

func (s *matchService) manualSummary(ctx context.Context, exec repositories.SQLExecutor, m *models.Match, winnerID *int, margin string) (string, error) {
	if winnerID == nil {
		return "No result", nil
	}
	team, err := s.teamRepo.GetByID(ctx, exec, *winnerID)
	if err != nil {
		return "", fmt.Errorf("failed to get team %d: %w", *winnerID, err)
	}
	if margin == "" {
		return team.Name + " won", nil
	}
	return fmt.Sprintf("%s won by %s", team.Name, margin), nil
}

// CompleteMatch closes a match. Without an explicit winner, margin or
// summary the result is computed from both completed innings.
func (s *matchService) CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (m *models.Match, err error) {
	ctx, span := startSpan(ctx, "MatchService.CompleteMatch", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		m, err = s.getMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if m.Status.Terminal() {
			return ErrMatchAlreadyFinished
		}
		if err := s.validateResultRefs(ctx, tx, m, input.WinnerID, input.ManOfTheMatchID); err != nil {
			return err
		}

		if !input.isOverride() {
			return s.results.finishFromInnings(ctx, tx, m, input.ManOfTheMatchID)
		}

		margin := trimmed(derefString(input.Margin))
		summary := trimmed(derefString(input.Summary))
		if summary == "" {
			summary, err = s.manualSummary(ctx, tx, m, input.WinnerID, margin)
			if err != nil {
				return err
			}
		}
		return s.results.store(ctx, tx, m, &models.MatchResult{
			WinnerID:      input.WinnerID,
			Margin:        margin,
			Summary:       summary,
			ManOfTheMatch: input.ManOfTheMatchID,
			Source:        models.ResultSourceManual,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *matchService) AbandonMatch(ctx context.Context, matchID int, input AbandonMatchInput) (m *models.Match, err error) {
	ctx, span := startSpan(ctx, "MatchService.AbandonMatch", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	reason := trimmed(input.Reason)
	if reason == "" {
		reason = defaultAbandonReason
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		m, err = s.getMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if m.Status.Terminal() {
			return ErrMatchAlreadyFinished
		}
		if err := s.matchRepo.SetAbandoned(ctx, tx, matchID, reason); err != nil {
			return fmt.Errorf("failed to abandon match: %w", err)
		}
		m.Status = models.MatchStatusAbandoned
		m.Result = nil
		m.AbandonReason = &reason
		return s.results.standings.fold(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Match abandoned", slog.Int("match_id", matchID), slog.String("reason", reason))
	return m, nil
}

// UpdateMatchResult corrects the result of a completed match. The points
// table is rebuilt from all finished matches afterwards.
func (s *matchService) UpdateMatchResult(ctx context.Context, matchID int, input UpdateResultInput) (m *models.Match, err error) {
	ctx, span := startSpan(ctx, "MatchService.UpdateMatchResult", attribute.Int("match.id", matchID))
	defer func() { endSpan(span, err) }()

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		m, err = s.getMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchStatusCompleted {
			return ErrMatchNotCompleted
		}
		if err := s.validateResultRefs(ctx, tx, m, input.WinnerID, input.ManOfTheMatchID); err != nil {
			return err
		}

		res := models.MatchResult{Source: models.ResultSourceManual}
		if m.Result != nil {
			res = *m.Result
			res.Source = models.ResultSourceManual
		}
		winnerChanged := false
		if input.WinnerID != nil {
			winnerChanged = res.WinnerID == nil || *res.WinnerID != *input.WinnerID
			res.WinnerID = input.WinnerID
		}
		if input.Margin != nil {
			res.Margin = trimmed(*input.Margin)
		}
		if input.ManOfTheMatchID != nil {
			res.ManOfTheMatch = input.ManOfTheMatchID
		}
		switch {
		case input.Summary != nil:
			res.Summary = trimmed(*input.Summary)
		case winnerChanged || input.Margin != nil:
			res.Summary, err = s.manualSummary(ctx, tx, m, res.WinnerID, res.Margin)
			if err != nil {
				return err
			}
		}

		if err := s.matchRepo.SetResult(ctx, tx, matchID, &res); err != nil {
			return fmt.Errorf("failed to update result: %w", err)
		}
		m.Result = &res
		_, err = s.results.standings.recompute(ctx, tx, m.TournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Match result updated", slog.Int("match_id", matchID), slog.String("summary", m.Result.Summary))
	return m, nil
}
