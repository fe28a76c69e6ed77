package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
)

const (
	defaultBallPageSize = 50
	maxBallPageSize     = 200
	maxOverNumber       = 9999
)

type ScoringService interface {
	RecordBall(ctx context.Context, inningID int, input RecordBallInput) (*BallRecorded, error)
	UndoLastBall(ctx context.Context, inningID int) (*BallUndone, error)
	ListBalls(ctx context.Context, inningID int, query BallListQuery) (*BallList, error)
	GetCurrentOver(ctx context.Context, inningID int) (*CurrentOverView, error)
	GetBattingPartners(ctx context.Context, inningID int) (*PartnersView, error)
	GetCommentary(ctx context.Context, inningID int, fromOver, toOver *int) ([]CommentaryLine, error)
}

type RunsInput struct {
	Batsman int  `json:"batsman"`
	Extras  int  `json:"extras"`
	Total   *int `json:"total,omitempty"`
}

type WicketInput struct {
	Type        models.WicketType `json:"type"`
	PlayerOutID int               `json:"player_out_id"`
	FielderID   *int              `json:"fielder_id,omitempty"`
}

type RecordBallInput struct {
	Over       int `json:"over"`
	BallInOver int `json:"ball_in_over"`
	// IsLegal по умолчанию true.
	IsLegal      *bool             `json:"is_legal,omitempty"`
	BowlerID     int               `json:"bowler_id"`
	BatsmanID    int               `json:"batsman_id"`
	NonStrikerID int               `json:"non_striker_id"`
	Runs         RunsInput         `json:"runs"`
	ExtraType    *models.ExtraType `json:"extra_type,omitempty"`
	Wicket       *WicketInput      `json:"wicket,omitempty"`
	Commentary   string            `json:"commentary,omitempty"`
}

type BallRecorded struct {
	Ball            *models.Ball              `json:"ball"`
	Inning          *models.InningSummary     `json:"inning"`
	PlayerStats     []models.MatchPlayerStats `json:"player_stats"`
	InningCompleted bool                      `json:"inning_completed"`
	Match           *models.Match             `json:"match"`
}

type BallUndone struct {
	Ball           *models.Ball          `json:"removed_ball"`
	Inning         *models.InningSummary `json:"inning"`
	InningReopened bool                  `json:"inning_reopened"`
	MatchReverted  bool                  `json:"match_reverted"`
	Match          *models.Match         `json:"match"`
}

type BallListQuery struct {
	Page        int
	Limit       int
	Descending  bool
	GroupByOver bool
}

type BallList struct {
	Balls []models.Ball     `json:"balls,omitempty"`
	Overs []models.OverView `json:"overs,omitempty"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type CurrentOverView struct {
	Over       int                   `json:"over"`
	Balls      []models.Ball         `json:"balls"`
	Runs       int                   `json:"runs"`
	Wickets    int                   `json:"wickets"`
	LegalBalls int                   `json:"legal_balls"`
	Inning     *models.InningSummary `json:"inning"`
}

type PartnersView struct {
	Partnership *models.Partnership `json:"partnership,omitempty"`
	Striker     *models.Player      `json:"striker,omitempty"`
	NonStriker  *models.Player      `json:"non_striker,omitempty"`
	Bowler      *models.Player      `json:"bowler,omitempty"`
}

type CommentaryLine struct {
	BallID   int    `json:"ball_id"`
	Over     string `json:"over"`
	Text     string `json:"text"`
	Runs     int    `json:"runs"`
	IsWicket bool   `json:"is_wicket"`
}

type scoringService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	inningRepo     repositories.InningRepository
	ballRepo       repositories.BallRepository
	xiRepo         repositories.PlayingXIRepository
	playerRepo     repositories.PlayerRepository
	statsRepo      repositories.MatchPlayerStatsRepository
	results        *resultRecorder
	defaultOvers   int
	logger         *slog.Logger
}

func NewScoringService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	inningRepo repositories.InningRepository,
	ballRepo repositories.BallRepository,
	xiRepo repositories.PlayingXIRepository,
	playerRepo repositories.PlayerRepository,
	statsRepo repositories.MatchPlayerStatsRepository,
	standingRepo repositories.TournamentStandingRepository,
	defaultOvers int,
	logger *slog.Logger,
) ScoringService {
	standings := newStandingsEngine(standingRepo, teamRepo, matchRepo, inningRepo, ballRepo, logger)
	return &scoringService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		inningRepo:     inningRepo,
		ballRepo:       ballRepo,
		xiRepo:         xiRepo,
		playerRepo:     playerRepo,
		statsRepo:      statsRepo,
		results:        &resultRecorder{matchRepo: matchRepo, teamRepo: teamRepo, standings: standings, logger: logger},
		defaultOvers:   defaultOvers,
		logger:         logger,
	}
}

// scoringUnit - состояние иннингса, загруженное в транзакции записи мяча.
type scoringUnit struct {
	match  *models.Match
	inning *models.Inning
	overs  int
	ledger []models.Ball
	xi     []models.PlayingXIEntry
}

// ballEffect is the full effect set of admitting or removing one ball.
// Recording and undoing both go through apply, undo with the inverse set.
type ballEffect struct {
	ball   *models.Ball
	deltas []scoring.StatDelta
	remove bool
}

type effectOutcome struct {
	totals        scoring.Totals
	transition    scoring.Transition
	matchReverted bool
}

func (s *scoringService) loadUnit(ctx context.Context, exec repositories.SQLExecutor, inningID int) (*scoringUnit, error) {
	inning, err := s.inningRepo.GetByID(ctx, exec, inningID)
	if err != nil {
		if errors.Is(err, repositories.ErrInningNotFound) {
			return nil, ErrInningNotFound
		}
		return nil, fmt.Errorf("failed to get inning %d: %w", inningID, err)
	}
	match, err := s.matchRepo.GetByID(ctx, exec, inning.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", inning.MatchID, err)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, exec, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", match.TournamentID, err)
	}
	ledger, err := s.ballRepo.ListByInning(ctx, exec, inning.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ball ledger of inning %d: %w", inning.ID, err)
	}
	xi, err := s.xiRepo.ListByMatch(ctx, exec, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playing XI of match %d: %w", match.ID, err)
	}
	return &scoringUnit{
		match:  match,
		inning: inning,
		overs:  oversFor(tournament, s.defaultOvers),
		ledger: ledger,
		xi:     xi,
	}, nil
}

// apply runs the four effects of a ball event in order: ledger write,
// player stats, innings completion and, for the chase, the match result
// with its standings.
func (s *scoringService) apply(ctx context.Context, tx *sql.Tx, u *scoringUnit, eff ballEffect) (effectOutcome, error) {
	var out effectOutcome

	if eff.remove {
		if err := s.ballRepo.Delete(ctx, tx, eff.ball.ID); err != nil {
			return out, fmt.Errorf("failed to delete ball %d: %w", eff.ball.ID, err)
		}
		u.ledger = withoutBall(u.ledger, eff.ball.ID)
	} else {
		if err := s.ballRepo.Create(ctx, tx, eff.ball); err != nil {
			if errors.Is(err, repositories.ErrBallPositionTaken) {
				return out, fmt.Errorf("%w: %d.%d", ErrBallPositionConflict, eff.ball.Over, eff.ball.BallInOver)
			}
			return out, fmt.Errorf("failed to create ball: %w", err)
		}
		u.ledger = append(u.ledger, *eff.ball)
	}

	for _, d := range eff.deltas {
		if err := s.statsRepo.ApplyDelta(ctx, tx, u.match.ID, d); err != nil {
			return out, fmt.Errorf("failed to apply stats of player %d: %w", d.PlayerID, err)
		}
	}

	out.totals = scoring.Tally(u.ledger)
	var reason models.CompletionReason
	out.transition, reason = scoring.EvaluateCompletion(u.inning, u.overs, out.totals, eff.remove)

	switch out.transition {
	case scoring.Complete:
		if err := s.inningRepo.MarkCompleted(ctx, tx, u.inning.ID, reason); err != nil {
			return out, fmt.Errorf("failed to complete inning %d: %w", u.inning.ID, err)
		}
		u.inning.IsCompleted = true
		u.inning.CompletionReason = &reason
		s.logger.InfoContext(ctx, "Inning completed",
			slog.Int("inning_id", u.inning.ID), slog.String("reason", string(reason)))

		if u.inning.InningNumber == 2 {
			if err := s.results.finishFromInnings(ctx, tx, u.match, nil); err != nil {
				return out, err
			}
		}

	case scoring.Reopen:
		if err := s.inningRepo.Reopen(ctx, tx, u.inning.ID); err != nil {
			return out, fmt.Errorf("failed to reopen inning %d: %w", u.inning.ID, err)
		}
		u.inning.IsCompleted = false
		u.inning.CompletionReason = nil
		s.logger.InfoContext(ctx, "Inning reopened", slog.Int("inning_id", u.inning.ID))

		if u.inning.InningNumber == 2 && u.match.Status == models.MatchStatusCompleted {
			if err := s.results.revert(ctx, tx, u.match); err != nil {
				return out, err
			}
			out.matchReverted = true
		}
	}
	return out, nil
}

func withoutBall(ledger []models.Ball, id int) []models.Ball {
	out := ledger[:0:0]
	for _, b := range ledger {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func (s *scoringService) checkScorable(u *scoringUnit) error {
	if u.inning.IsCompleted {
		return ErrInningCompleted
	}
	if u.match.Status.Terminal() {
		return ErrMatchNotInProgress
	}
	want := models.MatchStatusInning1
	if u.inning.InningNumber == 2 {
		want = models.MatchStatusInning2
	}
	if u.match.Status != want {
		return fmt.Errorf("%w: match is %s", ErrInvalidMatchStatus, u.match.Status)
	}
	return nil
}

func buildBall(inningID int, input RecordBallInput, runs models.Runs) *models.Ball {
	isLegal := true
	if input.IsLegal != nil {
		isLegal = *input.IsLegal
	}
	ball := &models.Ball{
		InningID:     inningID,
		Over:         input.Over,
		BallInOver:   input.BallInOver,
		IsLegal:      isLegal,
		BowlerID:     input.BowlerID,
		BatsmanID:    input.BatsmanID,
		NonStrikerID: input.NonStrikerID,
		Runs:         runs,
		ExtraType:    input.ExtraType,
		Commentary:   trimmed(input.Commentary),
	}
	if input.Wicket != nil {
		ball.Wicket = &models.Wicket{
			Type:        input.Wicket.Type,
			PlayerOutID: input.Wicket.PlayerOutID,
			FielderID:   input.Wicket.FielderID,
		}
	}
	return ball
}

func (s *scoringService) RecordBall(ctx context.Context, inningID int, input RecordBallInput) (res *BallRecorded, err error) {
	ctx, span := startSpan(ctx, "ScoringService.RecordBall",
		attribute.Int("inning.id", inningID),
		attribute.Int("ball.over", input.Over),
		attribute.Int("ball.in_over", input.BallInOver))
	defer func() { endSpan(span, err) }()

	runs, err := scoring.ResolveRuns(input.Runs.Batsman, input.Runs.Extras, input.Runs.Total)
	if err != nil {
		return nil, mapBallError(err)
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		u, err := s.loadUnit(ctx, tx, inningID)
		if err != nil {
			return err
		}
		if err := s.checkScorable(u); err != nil {
			return err
		}

		ball := buildBall(inningID, input, runs)
		bc := scoring.BallContext{
			Inning:          u.inning,
			OversPerInnings: u.overs,
			Ledger:          u.ledger,
			PlayerTeams:     playerTeamsOf(u.xi),
		}
		if err := mapBallError(scoring.ValidateBall(bc, ball)); err != nil {
			return err
		}
		if ball.Commentary == "" {
			names, err := s.playerNames(ctx, tx, ball)
			if err != nil {
				return err
			}
			ball.Commentary = scoring.Commentary(ball, names)
		}

		deltas := scoring.BallDeltas(ball, u.inning)
		out, err := s.apply(ctx, tx, u, ballEffect{ball: ball, deltas: deltas})
		if err != nil {
			return err
		}

		stats, err := s.statsFor(ctx, tx, u.match.ID, deltas)
		if err != nil {
			return err
		}
		res = &BallRecorded{
			Ball:            ball,
			Inning:          summarize(u.inning, out.totals),
			PlayerStats:     stats,
			InningCompleted: out.transition == scoring.Complete,
			Match:           u.match,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Ball recorded",
		slog.Int("inning_id", inningID),
		slog.Int("ball_id", res.Ball.ID),
		slog.Int("over", res.Ball.Over),
		slog.Int("ball_in_over", res.Ball.BallInOver),
		slog.Int("runs", res.Ball.Runs.Total),
		slog.Bool("wicket", res.Ball.IsWicket()))
	return res, nil
}

func (s *scoringService) UndoLastBall(ctx context.Context, inningID int) (res *BallUndone, err error) {
	ctx, span := startSpan(ctx, "ScoringService.UndoLastBall", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		u, err := s.loadUnit(ctx, tx, inningID)
		if err != nil {
			return err
		}
		last := scoring.Last(u.ledger)
		if last == nil {
			return ErrNoBallToUndo
		}
		if err := s.checkUndoable(ctx, tx, u); err != nil {
			return err
		}

		removed := *last
		out, err := s.apply(ctx, tx, u, ballEffect{
			ball:   &removed,
			deltas: scoring.NegateAll(scoring.BallDeltas(&removed, u.inning)),
			remove: true,
		})
		if err != nil {
			return err
		}
		res = &BallUndone{
			Ball:           &removed,
			Inning:         summarize(u.inning, out.totals),
			InningReopened: out.transition == scoring.Reopen,
			MatchReverted:  out.matchReverted,
			Match:          u.match,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Ball undone",
		slog.Int("inning_id", inningID),
		slog.Int("ball_id", res.Ball.ID),
		slog.Bool("inning_reopened", res.InningReopened),
		slog.Bool("match_reverted", res.MatchReverted))
	return res, nil
}

// checkUndoable rejects undo once the ledger can no longer change: the match
// was abandoned or closed by hand, or the next innings has started.
func (s *scoringService) checkUndoable(ctx context.Context, exec repositories.SQLExecutor, u *scoringUnit) error {
	switch u.match.Status {
	case models.MatchStatusAbandoned:
		return fmt.Errorf("%w: match is abandoned", ErrUndoNotAllowed)
	case models.MatchStatusCompleted:
		if u.match.Result == nil || u.match.Result.Source != models.ResultSourceAuto {
			return fmt.Errorf("%w: match result was set by hand", ErrUndoNotAllowed)
		}
	}
	if u.inning.InningNumber == 1 {
		_, err := s.inningRepo.GetByMatchAndNumber(ctx, exec, u.match.ID, 2)
		if err == nil {
			return fmt.Errorf("%w: second innings has started", ErrUndoNotAllowed)
		}
		if !errors.Is(err, repositories.ErrInningNotFound) {
			return fmt.Errorf("failed to check second innings: %w", err)
		}
	}
	return nil
}

func (s *scoringService) playerNames(ctx context.Context, exec repositories.SQLExecutor, b *models.Ball) (func(int) string, error) {
	ids := []int{b.BowlerID, b.BatsmanID}
	if b.Wicket != nil {
		ids = append(ids, b.Wicket.PlayerOutID)
		if b.Wicket.FielderID != nil {
			ids = append(ids, *b.Wicket.FielderID)
		}
	}
	players, err := s.playerRepo.ListByIDs(ctx, exec, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players for commentary: %w", err)
	}
	return playerNamer(players), nil
}

// statsFor returns the current stats rows of the players touched by deltas.
func (s *scoringService) statsFor(ctx context.Context, exec repositories.SQLExecutor, matchID int, deltas []scoring.StatDelta) ([]models.MatchPlayerStats, error) {
	all, err := s.statsRepo.ListByMatch(ctx, exec, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats of match %d: %w", matchID, err)
	}
	touched := make(map[int]bool, len(deltas))
	for _, d := range deltas {
		touched[d.PlayerID] = true
	}
	out := make([]models.MatchPlayerStats, 0, len(touched))
	for _, st := range all {
		if touched[st.PlayerID] {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *scoringService) getInning(ctx context.Context, inningID int) (*models.Inning, error) {
	inning, err := s.inningRepo.GetByID(ctx, nil, inningID)
	if err != nil {
		if errors.Is(err, repositories.ErrInningNotFound) {
			return nil, ErrInningNotFound
		}
		return nil, fmt.Errorf("failed to get inning %d: %w", inningID, err)
	}
	return inning, nil
}

func (s *scoringService) ListBalls(ctx context.Context, inningID int, query BallListQuery) (list *BallList, err error) {
	ctx, span := startSpan(ctx, "ScoringService.ListBalls", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	if _, err := s.getInning(ctx, inningID); err != nil {
		return nil, err
	}

	if query.GroupByOver {
		balls, err := s.ballRepo.ListByInning(ctx, nil, inningID)
		if err != nil {
			return nil, fmt.Errorf("failed to list balls: %w", err)
		}
		overs := scoring.GroupByOver(balls)
		if query.Descending {
			for i, j := 0, len(overs)-1; i < j; i, j = i+1, j-1 {
				overs[i], overs[j] = overs[j], overs[i]
			}
		}
		return &BallList{Overs: overs, Total: len(balls), Page: 1, Limit: len(balls)}, nil
	}

	if query.Limit <= 0 {
		query.Limit = defaultBallPageSize
	}
	if query.Limit > maxBallPageSize {
		query.Limit = maxBallPageSize
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	total, err := s.ballRepo.CountByInning(ctx, nil, inningID)
	if err != nil {
		return nil, fmt.Errorf("failed to count balls: %w", err)
	}
	balls, err := s.ballRepo.ListPage(ctx, nil, inningID, repositories.BallPage{
		Limit:      query.Limit,
		Offset:     (query.Page - 1) * query.Limit,
		Descending: query.Descending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list balls: %w", err)
	}
	if balls == nil {
		balls = []models.Ball{}
	}
	return &BallList{Balls: balls, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

func (s *scoringService) GetCurrentOver(ctx context.Context, inningID int) (view *CurrentOverView, err error) {
	ctx, span := startSpan(ctx, "ScoringService.GetCurrentOver", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	inning, err := s.getInning(ctx, inningID)
	if err != nil {
		return nil, err
	}
	balls, err := s.ballRepo.ListByInning(ctx, nil, inningID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balls: %w", err)
	}

	view = &CurrentOverView{Over: 1, Balls: []models.Ball{}, Inning: summarize(inning, scoring.Tally(balls))}
	last := scoring.Last(balls)
	if last == nil {
		return view, nil
	}
	view.Over = last.Over
	for _, b := range balls {
		if b.Over != last.Over {
			continue
		}
		view.Balls = append(view.Balls, b)
	}
	t := scoring.Tally(view.Balls)
	view.Runs, view.Wickets, view.LegalBalls = t.Runs, t.Wickets, t.LegalBalls
	return view, nil
}

func (s *scoringService) GetBattingPartners(ctx context.Context, inningID int) (view *PartnersView, err error) {
	ctx, span := startSpan(ctx, "ScoringService.GetBattingPartners", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	if _, err := s.getInning(ctx, inningID); err != nil {
		return nil, err
	}
	balls, err := s.ballRepo.ListByInning(ctx, nil, inningID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balls: %w", err)
	}

	view = &PartnersView{Partnership: scoring.CurrentPartnership(balls)}
	last := scoring.Last(balls)
	if last == nil {
		return view, nil
	}
	players, err := s.playerRepo.ListByIDs(ctx, nil, []int{last.BatsmanID, last.NonStrikerID, last.BowlerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	for i := range players {
		p := &players[i]
		switch p.ID {
		case last.BatsmanID:
			view.Striker = p
		case last.NonStrikerID:
			view.NonStriker = p
		case last.BowlerID:
			view.Bowler = p
		}
	}
	return view, nil
}

// GetCommentary returns the commentary feed, latest ball first.
func (s *scoringService) GetCommentary(ctx context.Context, inningID int, fromOver, toOver *int) (lines []CommentaryLine, err error) {
	ctx, span := startSpan(ctx, "ScoringService.GetCommentary", attribute.Int("inning.id", inningID))
	defer func() { endSpan(span, err) }()

	if _, err := s.getInning(ctx, inningID); err != nil {
		return nil, err
	}

	var balls []models.Ball
	if fromOver != nil || toOver != nil {
		from, to := 1, maxOverNumber
		if fromOver != nil {
			from = *fromOver
		}
		if toOver != nil {
			to = *toOver
		}
		if from > to {
			return nil, invalidField("from_over", "must not be greater than to_over")
		}
		balls, err = s.ballRepo.ListByOverRange(ctx, nil, inningID, from, to)
	} else {
		balls, err = s.ballRepo.ListByInning(ctx, nil, inningID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list balls: %w", err)
	}

	lines = make([]CommentaryLine, 0, len(balls))
	for i := len(balls) - 1; i >= 0; i-- {
		b := &balls[i]
		lines = append(lines, CommentaryLine{
			BallID:   b.ID,
			Over:     fmt.Sprintf("%d.%d", b.Over-1, b.BallInOver),
			Text:     b.Commentary,
			Runs:     b.Runs.Total,
			IsWicket: b.IsWicket(),
		})
	}
	return lines, nil
}

// summarize builds the derived view of an innings from its ledger totals.
func summarize(inning *models.Inning, t scoring.Totals) *models.InningSummary {
	sum := &models.InningSummary{
		Inning:       inning,
		TotalRuns:    t.Runs,
		TotalWickets: t.Wickets,
		LegalBalls:   t.LegalBalls,
		Overs:        models.FormatOvers(t.LegalBalls),
		RunRate:      t.RunRate(),
		Extras:       t.Extras,
	}
	if inning.Target != nil {
		required := *inning.Target - t.Runs
		if required < 0 {
			required = 0
		}
		sum.RunsRequired = &required
	}
	return sum
}
