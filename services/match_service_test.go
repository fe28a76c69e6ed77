package services

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

func strRef(s string) *string { return &s }

func TestStartInningPreconditions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()

	f := env.newMatch(t, 20)

	bare, err := env.matches.CreateMatch(ctx, f.tournament.ID, CreateMatchInput{Team1ID: f.team1.ID, Team2ID: f.team2.ID})
	if err != nil {
		t.Fatalf("CreateMatch() error = %v", err)
	}
	tossOnly, err := env.matches.CreateMatch(ctx, f.tournament.ID, CreateMatchInput{Team1ID: f.team1.ID, Team2ID: f.team2.ID})
	if err != nil {
		t.Fatalf("CreateMatch() error = %v", err)
	}
	if _, err := env.matches.RecordToss(ctx, tossOnly.ID, TossInput{WinnerID: f.team2.ID, Decision: models.TossDecisionBowl}); err != nil {
		t.Fatalf("RecordToss() error = %v", err)
	}

	if _, err := env.innings.StartInning(ctx, bare.ID, StartInningInput{InningNumber: 1}); !errors.Is(err, ErrTossRequired) {
		t.Errorf("no toss: error = %v, want ErrTossRequired", err)
	}
	if _, err := env.innings.StartInning(ctx, tossOnly.ID, StartInningInput{InningNumber: 1}); !errors.Is(err, ErrPlayingXIMissing) {
		t.Errorf("no XI: error = %v, want ErrPlayingXIMissing", err)
	}
	if _, err := env.innings.StartInning(ctx, f.match.ID, StartInningInput{InningNumber: 2}); !errors.Is(err, ErrPreviousInningOpen) {
		t.Errorf("inning 2 first: error = %v, want ErrPreviousInningOpen", err)
	}
	if _, err := env.innings.StartInning(ctx, f.match.ID, StartInningInput{InningNumber: 3}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("inning 3: error = %v, want ErrValidationFailed", err)
	}
	wrongSide := f.team2.ID
	if _, err := env.innings.StartInning(ctx, f.match.ID, StartInningInput{InningNumber: 1, BattingTeamID: &wrongSide}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("wrong batting team: error = %v, want ErrValidationFailed", err)
	}

	first := env.startInning(t, f, 1)
	if first.BattingTeamID != f.team1.ID || first.BowlingTeamID != f.team2.ID {
		t.Fatalf("first inning sides = %d/%d", first.BattingTeamID, first.BowlingTeamID)
	}
	if _, err := env.innings.StartInning(ctx, f.match.ID, StartInningInput{InningNumber: 1}); !errors.Is(err, ErrInningExists) {
		t.Errorf("duplicate: error = %v, want ErrInningExists", err)
	}
	if _, err := env.innings.StartInning(ctx, f.match.ID, StartInningInput{InningNumber: 2}); !errors.Is(err, ErrPreviousInningOpen) {
		t.Errorf("inning 1 open: error = %v, want ErrPreviousInningOpen", err)
	}

	m, err := env.matches.GetMatch(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetMatch() error = %v", err)
	}
	if m.Status != models.MatchStatusInning1 {
		t.Fatalf("status = %s, want inning1", m.Status)
	}
}

func TestSetPlayingXIValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)
	squad1, squad2 := f.squads[f.team1.ID], f.squads[f.team2.ID]

	twoCaptains := xiInput(squad1)
	twoCaptains.Players[5].IsCaptain = true

	noKeeper := xiInput(squad1)
	noKeeper.Players[1].IsWicketKeeper = false

	duplicate := xiInput(squad1)
	duplicate.Players[10].PlayerID = squad1[0]

	foreign := xiInput(squad1)
	foreign.Players[10].PlayerID = squad2[0]

	tests := []struct {
		name  string
		input PlayingXIInput
	}{
		{name: "ten players", input: xiInput(squad1[:10])},
		{name: "two captains", input: twoCaptains},
		{name: "no wicket keeper", input: noKeeper},
		{name: "duplicate player", input: duplicate},
		{name: "player from other team", input: foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.matches.SetPlayingXI(ctx, f.match.ID, f.team1.ID, tt.input); !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("error = %v, want ErrValidationFailed", err)
			}
		})
	}

	xi, err := env.matches.GetPlayingXI(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetPlayingXI() error = %v", err)
	}
	if len(xi) != 2*playingXISize || xi[0].Player == nil {
		t.Fatalf("playing XI = %d entries", len(xi))
	}

	env.startInning(t, f, 1)
	if _, err := env.matches.SetPlayingXI(ctx, f.match.ID, f.team1.ID, xiInput(squad1)); !errors.Is(err, ErrInvalidMatchStatus) {
		t.Fatalf("after start: error = %v, want ErrInvalidMatchStatus", err)
	}
}

func TestCompleteInningByHand(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)

	first := env.startInning(t, f, 1)
	s1 := env.scorerFor(t, f, first)
	s1.pattern(4, 1, 0)

	closed, err := env.innings.CompleteInning(ctx, first.ID)
	if err != nil {
		t.Fatalf("CompleteInning() error = %v", err)
	}
	if reason := closed.Inning.Inning.CompletionReason; reason == nil || *reason != models.CompletionManual {
		t.Fatalf("reason = %v, want manual", reason)
	}
	if _, err := env.innings.CompleteInning(ctx, first.ID); !errors.Is(err, ErrInningCompleted) {
		t.Fatalf("second close error = %v, want ErrInningCompleted", err)
	}
	// Закрытый вручную иннингс не открывается отменой мяча.
	undone, err := env.scoring.UndoLastBall(ctx, first.ID)
	if err != nil {
		t.Fatalf("UndoLastBall() error = %v", err)
	}
	if undone.InningReopened {
		t.Fatal("manually closed inning was reopened")
	}

	second := env.startInning(t, f, 2)
	if second.Target == nil || *second.Target != 6 {
		t.Fatalf("target = %v, want 6", second.Target)
	}
	if _, err := env.innings.CompleteInning(ctx, second.ID); !errors.Is(err, ErrChaseInProgress) {
		t.Fatalf("closing the chase error = %v, want ErrChaseInProgress", err)
	}

	current, err := env.innings.GetCurrentInning(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetCurrentInning() error = %v", err)
	}
	if current.Inning.ID != second.ID || current.RunsRequired == nil || *current.RunsRequired != 6 {
		t.Fatalf("current inning = %+v", *current)
	}
}

func TestAbandonMatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)

	inning := env.startInning(t, f, 1)
	env.scorerFor(t, f, inning).runs(1, 1, 2)

	m, err := env.matches.AbandonMatch(ctx, f.match.ID, AbandonMatchInput{Reason: "  rain  "})
	if err != nil {
		t.Fatalf("AbandonMatch() error = %v", err)
	}
	if m.Status != models.MatchStatusAbandoned || m.AbandonReason == nil || *m.AbandonReason != "rain" {
		t.Fatalf("match = %+v", m)
	}

	table, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	for _, r := range table {
		if r.Played != 1 || r.NoResult != 1 || r.Points != 1 || r.NetRunRate != 0 {
			t.Errorf("row of team %d = %+v", r.TeamID, *r)
		}
	}

	if _, err := env.matches.AbandonMatch(ctx, f.match.ID, AbandonMatchInput{}); !errors.Is(err, ErrMatchAlreadyFinished) {
		t.Errorf("second abandon error = %v, want ErrMatchAlreadyFinished", err)
	}
	if _, err := env.scoring.UndoLastBall(ctx, inning.ID); !errors.Is(err, ErrUndoNotAllowed) {
		t.Errorf("undo after abandon error = %v, want ErrUndoNotAllowed", err)
	}
	if _, err := env.scoring.RecordBall(ctx, inning.ID, RecordBallInput{Over: 1, BallInOver: 2}); !errors.Is(err, ErrMatchNotInProgress) {
		t.Errorf("record after abandon error = %v, want ErrMatchNotInProgress", err)
	}
}

func TestManualResultAndCorrection(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)

	if _, err := env.matches.UpdateMatchResult(ctx, f.match.ID, UpdateResultInput{WinnerID: &f.team1.ID}); !errors.Is(err, ErrMatchNotCompleted) {
		t.Fatalf("update before completion error = %v, want ErrMatchNotCompleted", err)
	}
	if _, err := env.matches.CompleteMatch(ctx, f.match.ID, CompleteMatchInput{}); !errors.Is(err, ErrInningsIncomplete) {
		t.Fatalf("auto completion without innings error = %v, want ErrInningsIncomplete", err)
	}

	outsider := 999999
	if _, err := env.matches.CompleteMatch(ctx, f.match.ID, CompleteMatchInput{WinnerID: &outsider}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("foreign winner error = %v, want ErrValidationFailed", err)
	}

	m, err := env.matches.CompleteMatch(ctx, f.match.ID, CompleteMatchInput{WinnerID: &f.team1.ID, Margin: strRef("10 runs")})
	if err != nil {
		t.Fatalf("CompleteMatch() error = %v", err)
	}
	if m.Result == nil || m.Result.Summary != "Falcons won by 10 runs" || m.Result.Source != models.ResultSourceManual {
		t.Fatalf("result = %+v", m.Result)
	}
	if _, err := env.matches.CompleteMatch(ctx, f.match.ID, CompleteMatchInput{}); !errors.Is(err, ErrMatchAlreadyFinished) {
		t.Fatalf("second completion error = %v, want ErrMatchAlreadyFinished", err)
	}

	table, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	if r := standingFor(t, table, f.team1.ID); r.Won != 1 || r.Points != 2 || r.Position != 1 {
		t.Fatalf("team1 row = %+v", *r)
	}

	motm := f.squads[f.team2.ID][0]
	m, err = env.matches.UpdateMatchResult(ctx, f.match.ID, UpdateResultInput{WinnerID: &f.team2.ID, ManOfTheMatchID: &motm})
	if err != nil {
		t.Fatalf("UpdateMatchResult() error = %v", err)
	}
	if m.Result.Summary != "Hawks won by 10 runs" || m.Result.ManOfTheMatch == nil || *m.Result.ManOfTheMatch != motm {
		t.Fatalf("corrected result = %+v", *m.Result)
	}

	table, err = env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	winner, loser := standingFor(t, table, f.team2.ID), standingFor(t, table, f.team1.ID)
	if winner.Won != 1 || winner.Points != 2 || winner.Position != 1 {
		t.Fatalf("winner row = %+v", *winner)
	}
	if loser.Played != 1 || loser.Lost != 1 || loser.Points != 0 {
		t.Fatalf("loser row = %+v", *loser)
	}
}

func TestAutoCompleteRequiresClosedInnings(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 2)

	first := env.startInning(t, f, 1)
	res := env.scorerFor(t, f, first).pattern(1, 2, 0, 4, 0, 1, 0, 0, 1, 0, 4, 0)
	if !res.InningCompleted {
		t.Fatal("first inning should close after two overs")
	}

	second := env.startInning(t, f, 2)
	s2 := env.scorerFor(t, f, second)
	s2.runs(1, 1, 4)
	s2.runs(1, 2, 1)

	_, err := env.matches.CompleteMatch(ctx, f.match.ID, CompleteMatchInput{})
	if !errors.Is(err, ErrInningsIncomplete) {
		t.Fatalf("auto completion mid-chase error = %v, want ErrInningsIncomplete", err)
	}

	m, err := env.matches.GetMatch(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetMatch() error = %v", err)
	}
	if m.Status != models.MatchStatusInning2 || m.Result != nil {
		t.Fatalf("match after rejected completion = status %s, result %+v", m.Status, m.Result)
	}

	table, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	for _, r := range table {
		if r.Played != 0 || r.Points != 0 {
			t.Errorf("row of team %d = %+v, want untouched", r.TeamID, *r)
		}
	}

	if _, err := s2.record(s2.input(1, 3)); err != nil {
		t.Fatalf("scoring after rejected completion error = %v", err)
	}
}

// Не параллельный: подменяет глобальный TracerProvider.
func TestGetCurrentInningIsTraced(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)
	env.startInning(t, f, 1)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTracerProvider(tp)

	if _, err := env.innings.GetCurrentInning(ctx, f.match.ID); err != nil {
		t.Fatalf("GetCurrentInning() error = %v", err)
	}
	if _, err := env.innings.GetCurrentInning(ctx, 999999); err == nil {
		t.Fatal("GetCurrentInning(unknown match) should fail")
	}

	var traced []sdktrace.ReadOnlySpan
	children := 0
	for _, sp := range sr.Ended() {
		switch sp.Name() {
		case "InningService.GetCurrentInning":
			traced = append(traced, sp)
		case "InningService.ListMatchInnings":
			if sp.Parent().IsValid() {
				children++
			}
		}
	}
	if len(traced) != 2 {
		t.Fatalf("GetCurrentInning spans = %d, want 2", len(traced))
	}
	if children != 2 {
		t.Errorf("ListMatchInnings child spans = %d, want 2", children)
	}
	if traced[0].Status().Code == codes.Error {
		t.Errorf("successful call span status = %v", traced[0].Status())
	}
	if traced[1].Status().Code != codes.Error {
		t.Errorf("failed call span status = %v, want Error", traced[1].Status())
	}
	found := false
	for _, kv := range traced[0].Attributes() {
		if kv.Key == "match.id" && kv.Value.AsInt64() == int64(f.match.ID) {
			found = true
		}
	}
	if !found {
		t.Errorf("span attributes = %v, want match.id=%d", traced[0].Attributes(), f.match.ID)
	}
}

func TestListMatchesFilters(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)

	for i := 0; i < 2; i++ {
		if _, err := env.matches.CreateMatch(ctx, f.tournament.ID, CreateMatchInput{Team1ID: f.team2.ID, Team2ID: f.team1.ID}); err != nil {
			t.Fatalf("CreateMatch() error = %v", err)
		}
	}

	all, err := env.matches.ListMatches(ctx, f.tournament.ID, ListMatchesInput{})
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if all.Total != 3 || len(all.Matches) != 3 || all.Matches[0].MatchNumber != 1 || all.Matches[2].MatchNumber != 3 {
		t.Fatalf("all = %+v", *all)
	}

	status := models.MatchStatusToss
	tossed, err := env.matches.ListMatches(ctx, f.tournament.ID, ListMatchesInput{Status: &status})
	if err != nil {
		t.Fatalf("ListMatches(status) error = %v", err)
	}
	if tossed.Total != 1 || tossed.Matches[0].ID != f.match.ID {
		t.Fatalf("tossed = %+v", *tossed)
	}

	page, err := env.matches.ListMatches(ctx, f.tournament.ID, ListMatchesInput{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListMatches(page) error = %v", err)
	}
	if page.Total != 3 || len(page.Matches) != 1 {
		t.Fatalf("page = %+v", *page)
	}

	if _, err := env.matches.CreateMatch(ctx, f.tournament.ID, CreateMatchInput{Team1ID: f.team1.ID, Team2ID: f.team1.ID}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("self match error = %v, want ErrValidationFailed", err)
	}
	if _, err := env.matches.CreateMatch(ctx, f.tournament.ID, CreateMatchInput{MatchNumber: 1, Team1ID: f.team1.ID, Team2ID: f.team2.ID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate number error = %v, want ErrConflict", err)
	}
}
