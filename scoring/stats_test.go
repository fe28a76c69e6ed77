package scoring

import (
	"testing"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

func deltaFor(t *testing.T, deltas []StatDelta, playerID int) StatDelta {
	t.Helper()
	for _, d := range deltas {
		if d.PlayerID == playerID {
			return d
		}
	}
	t.Fatalf("no delta for player %d in %+v", playerID, deltas)
	return StatDelta{}
}

func TestBallDeltasBoundary(t *testing.T) {
	t.Parallel()

	b := legalBall(1, 1, 4)
	deltas := BallDeltas(&b, testInning(1))
	if len(deltas) != 2 {
		t.Fatalf("len(deltas) = %d, want 2", len(deltas))
	}

	bat := deltaFor(t, deltas, 101)
	if bat.Runs != 4 || bat.BallsFaced != 1 || bat.Fours != 1 || bat.Sixes != 0 || bat.TeamID != battingTeam {
		t.Fatalf("batsman delta = %+v", bat)
	}
	bowl := deltaFor(t, deltas, 201)
	if bowl.LegalBalls != 1 || bowl.RunsConceded != 4 || bowl.DotBalls != 0 || bowl.TeamID != bowlingTeam {
		t.Fatalf("bowler delta = %+v", bowl)
	}
}

func TestBallDeltasIllegalBallSkipsBowler(t *testing.T) {
	t.Parallel()

	b := legalBall(1, 1, 0)
	b.IsLegal = false
	b.ExtraType = extraPtr(models.ExtraNoBall)
	b.Runs = models.Runs{Batsman: 6, Extras: 1, Total: 7}

	deltas := BallDeltas(&b, testInning(1))
	if len(deltas) != 1 {
		t.Fatalf("len(deltas) = %d, want 1 (batsman only)", len(deltas))
	}
	if d := deltas[0]; d.Runs != 6 || d.BallsFaced != 0 || d.Sixes != 1 {
		t.Fatalf("batsman delta = %+v", d)
	}
}

func TestBallDeltasWicketCredit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		wicket        models.Wicket
		bowlerWickets int
		fielderCredit bool
	}{
		{name: "bowled", wicket: models.Wicket{Type: models.WicketBowled}, bowlerWickets: 1},
		{name: "caught", wicket: models.Wicket{Type: models.WicketCaught, FielderID: intPtr(207)}, bowlerWickets: 1, fielderCredit: true},
		{name: "stumped", wicket: models.Wicket{Type: models.WicketStumped, FielderID: intPtr(207)}, bowlerWickets: 1, fielderCredit: true},
		{name: "run out", wicket: models.Wicket{Type: models.WicketRunOut, FielderID: intPtr(207)}, bowlerWickets: 0, fielderCredit: true},
		{name: "lbw with stray fielder", wicket: models.Wicket{Type: models.WicketLBW, FielderID: intPtr(207)}, bowlerWickets: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := legalBall(1, 1, 0)
			w := tt.wicket
			w.PlayerOutID = b.BatsmanID
			b.Wicket = &w

			deltas := BallDeltas(&b, testInning(1))
			if bat := deltaFor(t, deltas, 101); bat.Dismissals != 1 {
				t.Fatalf("batsman dismissals = %d, want 1", bat.Dismissals)
			}
			if bowl := deltaFor(t, deltas, 201); bowl.Wickets != tt.bowlerWickets || bowl.DotBalls != 1 {
				t.Fatalf("bowler delta = %+v, want %d wickets and a dot ball", bowl, tt.bowlerWickets)
			}

			var fielder *StatDelta
			for i := range deltas {
				if deltas[i].PlayerID == 207 {
					fielder = &deltas[i]
				}
			}
			if tt.fielderCredit != (fielder != nil) {
				t.Fatalf("fielder credited = %v, want %v", fielder != nil, tt.fielderCredit)
			}
			if fielder != nil && (fielder.FieldingDismissals != 1 || fielder.TeamID != bowlingTeam) {
				t.Fatalf("fielder delta = %+v", *fielder)
			}
		})
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	t.Parallel()

	inning := testInning(1)
	b := legalBall(1, 1, 6)
	b.Wicket = &models.Wicket{Type: models.WicketCaught, PlayerOutID: b.BatsmanID, FielderID: intPtr(201)}

	stats := make(map[int]*models.MatchPlayerStats)
	apply := func(ds []StatDelta) {
		for _, d := range ds {
			s, ok := stats[d.PlayerID]
			if !ok {
				s = &models.MatchPlayerStats{PlayerID: d.PlayerID}
				stats[d.PlayerID] = s
			}
			d.ApplyTo(s)
		}
	}

	deltas := BallDeltas(&b, inning)
	apply(deltas)
	before := *stats[201]
	if before.Bowling.Wickets != 1 || before.Fielding.Dismissals != 1 {
		t.Fatalf("caught and bowled = %+v, want bowler and fielder credit", before)
	}

	apply(NegateAll(deltas))
	for id, s := range stats {
		if s.Batting != (models.BattingStats{}) || s.Bowling.LegalBalls != 0 || s.Bowling.RunsConceded != 0 ||
			s.Bowling.Wickets != 0 || s.Bowling.DotBalls != 0 || s.Fielding.Dismissals != 0 {
			t.Fatalf("player %d not reset after negation: %+v", id, s)
		}
	}

	apply(deltas)
	if *stats[201] != before {
		t.Fatalf("re-applied stats = %+v, want %+v", *stats[201], before)
	}
}

func TestAggregateStats(t *testing.T) {
	t.Parallel()

	balls := sequence(1, 0, 4, 6, wicketDown, 0, 2)
	stats := AggregateStats(7, []InningLedger{{Inning: testInning(1), Balls: balls}})

	bat := stats[101]
	if bat.Batting.Runs != 13 || bat.Batting.BallsFaced != 7 || bat.Batting.Fours != 1 || bat.Batting.Sixes != 1 || !bat.Batting.IsOut {
		t.Fatalf("batting = %+v", bat.Batting)
	}
	bowl := stats[201]
	if bowl.Bowling.LegalBalls != 7 || bowl.Bowling.Overs != "1.1" || bowl.Bowling.RunsConceded != 13 ||
		bowl.Bowling.Wickets != 1 || bowl.Bowling.DotBalls != 3 || bowl.Bowling.Maidens != 0.5 {
		t.Fatalf("bowling = %+v", bowl.Bowling)
	}
	if bowl.MatchID != 7 || bowl.TeamID != bowlingTeam {
		t.Fatalf("bowler row = match %d team %d", bowl.MatchID, bowl.TeamID)
	}
}

func TestDeltaOfRebuildsRow(t *testing.T) {
	t.Parallel()

	balls := sequence(4, 0, wicketDown, 1)
	stats := AggregateStats(3, []InningLedger{{Inning: testInning(1), Balls: balls}})

	for id, want := range stats {
		got := models.MatchPlayerStats{MatchID: want.MatchID, PlayerID: want.PlayerID, TeamID: want.TeamID}
		DeltaOf(want).ApplyTo(&got)
		if got != *want {
			t.Errorf("player %d: rebuilt %+v, want %+v", id, got, *want)
		}
	}
}
