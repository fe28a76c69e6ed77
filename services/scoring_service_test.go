package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

func TestRecordBallUpdatesLedgerAndStats(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)
	s := env.scorerFor(t, f, inning)

	s.runs(1, 1, 4)
	s.wide(1, 2, 1)
	res := s.runs(1, 3, 6)

	if res.Inning.TotalRuns != 11 || res.Inning.LegalBalls != 2 || res.Inning.Extras != 1 {
		t.Fatalf("summary = %+v", *res.Inning)
	}
	if res.Inning.Overs != "0.2" {
		t.Errorf("overs = %q, want 0.2", res.Inning.Overs)
	}
	if res.InningCompleted {
		t.Error("inning should still be open")
	}
	if res.Ball.Commentary == "" {
		t.Error("default commentary was not generated")
	}

	var batting *models.MatchPlayerStats
	for i := range res.PlayerStats {
		if res.PlayerStats[i].PlayerID == s.striker {
			batting = &res.PlayerStats[i]
		}
	}
	if batting == nil {
		t.Fatalf("no stats for the striker in %+v", res.PlayerStats)
	}
	if batting.Batting.Runs != 10 || batting.Batting.BallsFaced != 2 || batting.Batting.Fours != 1 || batting.Batting.Sixes != 1 {
		t.Errorf("batting = %+v", batting.Batting)
	}
}

func TestRecordBallRejections(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)
	s := env.scorerFor(t, f, inning)
	s.runs(1, 1, 1)

	wrongBowler := s.input(1, 2)
	wrongBowler.BowlerID = s.batters[5]

	skipped := s.input(1, 4)

	badTotal := s.input(1, 2)
	badTotal.Runs = RunsInput{Batsman: 2, Total: intRef(3)}

	tests := []struct {
		name    string
		input   RecordBallInput
		wantErr error
	}{
		{name: "occupied position", input: s.input(1, 1), wantErr: ErrConflict},
		{name: "bowler from batting side", input: wrongBowler, wantErr: ErrValidationFailed},
		{name: "slot skipped", input: skipped, wantErr: ErrValidationFailed},
		{name: "inconsistent total", input: badTotal, wantErr: ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.record(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RecordBall() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	list, err := env.scoring.ListBalls(context.Background(), inning.ID, BallListQuery{})
	if err != nil {
		t.Fatalf("ListBalls() error = %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("rejected balls were stored: total = %d", list.Total)
	}
}

func TestRecordBallUnknownInning(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	_, err := env.scoring.RecordBall(context.Background(), 999, RecordBallInput{Over: 1, BallInOver: 1})
	if !errors.Is(err, ErrInningNotFound) {
		t.Fatalf("error = %v, want ErrInningNotFound", err)
	}
}

func intRef(v int) *int { return &v }

func TestIncrementalStatsMatchRebuild(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)
	s := env.scorerFor(t, f, inning)

	s.runs(1, 1, 4)
	s.wide(1, 2, 2)
	s.bowled(1, 3)
	s.runs(1, 4, 0)
	caught := s.input(1, 5)
	caught.Wicket = &WicketInput{Type: models.WicketCaught, PlayerOutID: s.striker, FielderID: intRef(s.bowlers[3])}
	s.mustRecord(caught)
	s.striker = s.batters[s.nextIn]
	s.nextIn++
	s.runs(1, 6, 1)

	ctx := context.Background()
	stored, err := env.stats.GetMatchStats(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetMatchStats() error = %v", err)
	}
	rebuilt, err := env.stats.RebuildMatchStats(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("RebuildMatchStats() error = %v", err)
	}
	if !reflect.DeepEqual(withoutIDs(stored), withoutIDs(rebuilt)) {
		t.Fatalf("incremental stats differ from rebuild:\n got %+v\nwant %+v", stored, rebuilt)
	}

	var fielder *models.MatchPlayerStats
	for i := range rebuilt {
		if rebuilt[i].PlayerID == s.bowlers[3] {
			fielder = &rebuilt[i]
		}
	}
	if fielder == nil || fielder.Fielding.Dismissals != 1 {
		t.Fatalf("fielder stats = %+v", fielder)
	}
}

func TestUndoRestoresPreviousState(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)
	s := env.scorerFor(t, f, inning)
	ctx := context.Background()

	s.runs(1, 1, 2)
	before, err := env.stats.GetMatchStats(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetMatchStats() error = %v", err)
	}

	s.runs(1, 2, 4)
	s.wide(1, 3, 1)
	s.bowled(1, 4)

	for i := 0; i < 3; i++ {
		if _, err := env.scoring.UndoLastBall(ctx, inning.ID); err != nil {
			t.Fatalf("UndoLastBall() #%d error = %v", i+1, err)
		}
	}

	after, err := env.stats.GetMatchStats(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetMatchStats() error = %v", err)
	}
	// Строки игроков, затронутых только отменёнными мячами, остаются нулевыми.
	for _, st := range after {
		var want models.MatchPlayerStats
		for _, b := range before {
			if b.PlayerID == st.PlayerID {
				want = b
			}
		}
		want.ID, st.ID = 0, 0
		want.MatchID, want.PlayerID, want.TeamID = st.MatchID, st.PlayerID, st.TeamID
		want.Derive()
		if st != want {
			t.Errorf("player %d after undo = %+v, want %+v", st.PlayerID, st, want)
		}
	}

	sum, err := env.innings.GetInning(ctx, inning.ID)
	if err != nil {
		t.Fatalf("GetInning() error = %v", err)
	}
	if sum.TotalRuns != 2 || sum.LegalBalls != 1 || sum.TotalWickets != 0 {
		t.Fatalf("summary after undo = %+v", *sum)
	}
}

func TestUndoOnEmptyInning(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)

	_, err := env.scoring.UndoLastBall(context.Background(), inning.ID)
	if !errors.Is(err, ErrNoBallToUndo) {
		t.Fatalf("error = %v, want ErrNoBallToUndo", err)
	}
}

// playChase plays a two-over match: 13 runs in inning 1, then a chase of
// 14 that ends on the ninth ball with three wickets down.
func playChase(t *testing.T, env *testEnv, f *matchFixture) (*models.Inning, *scorer, *BallRecorded) {
	t.Helper()

	first := env.startInning(t, f, 1)
	s1 := env.scorerFor(t, f, first)
	res := s1.pattern(1, 2, 0, 4, 0, 1, 0, 0, 1, 0, 4, 0)
	if !res.InningCompleted || res.Inning.TotalRuns != 13 {
		t.Fatalf("first inning = %+v completed=%v", *res.Inning, res.InningCompleted)
	}
	if reason := res.Inning.Inning.CompletionReason; reason == nil || *reason != models.CompletionOversExhausted {
		t.Fatalf("first inning reason = %v", reason)
	}

	second := env.startInning(t, f, 2)
	if second.Target == nil || *second.Target != 14 {
		t.Fatalf("target = %v, want 14", second.Target)
	}
	if second.BattingTeamID != f.team2.ID {
		t.Fatalf("second inning batting team = %d, want %d", second.BattingTeamID, f.team2.ID)
	}
	s2 := env.scorerFor(t, f, second)
	last := s2.pattern(4, wicket, 6, 0, wicket, 1, 0, wicket, 3)
	return second, s2, last
}

func TestChaseCompletesMatchAndStandings(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 2)
	ctx := context.Background()

	_, _, last := playChase(t, env, f)

	if !last.InningCompleted {
		t.Fatal("chase should complete on the ninth ball")
	}
	if reason := last.Inning.Inning.CompletionReason; reason == nil || *reason != models.CompletionTargetReached {
		t.Fatalf("reason = %v, want target_reached", reason)
	}
	m := last.Match
	if m.Status != models.MatchStatusCompleted || m.Result == nil {
		t.Fatalf("match = %+v", m)
	}
	if m.Result.WinnerID == nil || *m.Result.WinnerID != f.team2.ID {
		t.Fatalf("winner = %v, want %d", m.Result.WinnerID, f.team2.ID)
	}
	if m.Result.Summary != "Hawks won by 7 wickets" || m.Result.Margin != "7 wickets" {
		t.Fatalf("result = %+v", *m.Result)
	}
	if m.Result.Source != models.ResultSourceAuto {
		t.Fatalf("source = %q", m.Result.Source)
	}

	table, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	winner := standingFor(t, table, f.team2.ID)
	loser := standingFor(t, table, f.team1.ID)
	if winner.Played != 1 || winner.Won != 1 || winner.Points != 2 || winner.Position != 1 {
		t.Fatalf("winner row = %+v", *winner)
	}
	if loser.Played != 1 || loser.Lost != 1 || loser.Points != 0 || loser.Position != 2 {
		t.Fatalf("loser row = %+v", *loser)
	}
	wantNRR := 14.0*6/9 - 13.0*6/12
	if math.Abs(winner.NetRunRate-wantNRR) > 1e-6 || math.Abs(loser.NetRunRate+wantNRR) > 1e-6 {
		t.Fatalf("NRR = %v / %v, want ±%v", winner.NetRunRate, loser.NetRunRate, wantNRR)
	}

	if _, err := env.scoring.RecordBall(ctx, last.Inning.Inning.ID, RecordBallInput{Over: 2, BallInOver: 4}); !errors.Is(err, ErrInningCompleted) {
		t.Fatalf("RecordBall after completion error = %v, want ErrInningCompleted", err)
	}
}

func TestUndoRevertsAutoCompletedMatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 2)
	ctx := context.Background()

	second, _, _ := playChase(t, env, f)

	undone, err := env.scoring.UndoLastBall(ctx, second.ID)
	if err != nil {
		t.Fatalf("UndoLastBall() error = %v", err)
	}
	if !undone.InningReopened || !undone.MatchReverted {
		t.Fatalf("undo = reopened %v reverted %v", undone.InningReopened, undone.MatchReverted)
	}
	if undone.Inning.TotalRuns != 11 || undone.Inning.RunsRequired == nil || *undone.Inning.RunsRequired != 3 {
		t.Fatalf("summary after undo = %+v", *undone.Inning)
	}

	m, err := env.matches.GetMatch(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("GetMatch() error = %v", err)
	}
	if m.Status != models.MatchStatusInning2 || m.Result != nil {
		t.Fatalf("match after undo = status %s result %+v", m.Status, m.Result)
	}

	table, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	for _, r := range table {
		if r.Played != 0 || r.Points != 0 || r.NetRunRate != 0 {
			t.Fatalf("standing after undo = %+v", *r)
		}
	}

	// Первый иннингс закрыт для отмены, пока идёт второй.
	first, err := env.innings.ListMatchInnings(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("ListMatchInnings() error = %v", err)
	}
	if _, err := env.scoring.UndoLastBall(ctx, first[0].Inning.ID); !errors.Is(err, ErrUndoNotAllowed) {
		t.Fatalf("undo in inning 1 error = %v, want ErrUndoNotAllowed", err)
	}
}

func TestAllOutCompletesInning(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)
	s := env.scorerFor(t, f, inning)

	var last *BallRecorded
	for i := 0; i < 10; i++ {
		last = s.bowled(i/6+1, i%6+1)
		if i < 9 && last.InningCompleted {
			t.Fatalf("inning completed after %d wickets", i+1)
		}
	}
	if !last.InningCompleted {
		t.Fatal("inning should complete at ten wickets")
	}
	if reason := last.Inning.Inning.CompletionReason; reason == nil || *reason != models.CompletionAllOut {
		t.Fatalf("reason = %v, want all_out", reason)
	}
}

func TestBallViews(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	f := env.newMatch(t, 20)
	inning := env.startInning(t, f, 1)
	s := env.scorerFor(t, f, inning)
	ctx := context.Background()

	s.pattern(1, 0, 4, 0, 0, 2, 6, wicket)

	over, err := env.scoring.GetCurrentOver(ctx, inning.ID)
	if err != nil {
		t.Fatalf("GetCurrentOver() error = %v", err)
	}
	if over.Over != 2 || len(over.Balls) != 2 || over.Runs != 6 || over.Wickets != 1 {
		t.Fatalf("current over = %+v", *over)
	}

	partners, err := env.scoring.GetBattingPartners(ctx, inning.ID)
	if err != nil {
		t.Fatalf("GetBattingPartners() error = %v", err)
	}
	if partners.Partnership == nil || partners.Partnership.Runs != 0 || partners.Striker == nil {
		t.Fatalf("partners = %+v", *partners)
	}

	page, err := env.scoring.ListBalls(ctx, inning.ID, BallListQuery{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("ListBalls() error = %v", err)
	}
	if page.Total != 8 || len(page.Balls) != 3 || page.Balls[0].Over != 1 || page.Balls[0].BallInOver != 4 {
		t.Fatalf("page = %+v", *page)
	}

	grouped, err := env.scoring.ListBalls(ctx, inning.ID, BallListQuery{GroupByOver: true})
	if err != nil {
		t.Fatalf("ListBalls(grouped) error = %v", err)
	}
	if len(grouped.Overs) != 2 || grouped.Overs[0].Runs != 7 {
		t.Fatalf("grouped = %+v", grouped.Overs)
	}

	lines, err := env.scoring.GetCommentary(ctx, inning.ID, nil, nil)
	if err != nil {
		t.Fatalf("GetCommentary() error = %v", err)
	}
	if len(lines) != 8 || !lines[0].IsWicket || lines[0].Over != "1.2" {
		t.Fatalf("commentary head = %+v", lines[0])
	}
	if _, err := env.scoring.GetCommentary(ctx, inning.ID, intRef(3), intRef(1)); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("inverted range error = %v", err)
	}
}
