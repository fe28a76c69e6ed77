package scoring

import "github.com/GovindaEkabote/Cricket-Score-Calculate/models"

// StatDelta is an additive change to one player's match stats. Every field
// is an integer so that applying a delta and its negation is exact.
type StatDelta struct {
	PlayerID int
	TeamID   int

	Runs       int
	BallsFaced int
	Fours      int
	Sixes      int
	Dismissals int

	LegalBalls   int
	RunsConceded int
	Wickets      int
	DotBalls     int

	FieldingDismissals int
}

// BallDeltas returns the stat changes caused by one ball: one entry for the
// batsman, one for the bowler when the ball is legal and one for a credited
// fielder. Entries for the same player are not merged.
func BallDeltas(b *models.Ball, inning *models.Inning) []StatDelta {
	batsman := StatDelta{
		PlayerID: b.BatsmanID,
		TeamID:   inning.BattingTeamID,
		Runs:     b.Runs.Batsman,
	}
	if b.IsLegal {
		batsman.BallsFaced = 1
	}
	switch b.Runs.Batsman {
	case 4:
		batsman.Fours = 1
	case 6:
		batsman.Sixes = 1
	}
	if b.IsWicket() {
		batsman.Dismissals = 1
	}
	deltas := []StatDelta{batsman}

	if b.IsLegal {
		bowler := StatDelta{
			PlayerID:     b.BowlerID,
			TeamID:       inning.BowlingTeamID,
			LegalBalls:   1,
			RunsConceded: b.Runs.Total,
		}
		if b.IsWicket() && b.Wicket.Type.CreditsBowler() {
			bowler.Wickets = 1
		}
		if b.Runs.Total == 0 {
			bowler.DotBalls = 1
		}
		deltas = append(deltas, bowler)
	}

	if w := b.Wicket; w != nil && w.Type.RequiresFielder() && w.FielderID != nil {
		deltas = append(deltas, StatDelta{
			PlayerID:           *w.FielderID,
			TeamID:             inning.BowlingTeamID,
			FieldingDismissals: 1,
		})
	}
	return deltas
}

// Negate returns the exact inverse of d.
func (d StatDelta) Negate() StatDelta {
	return StatDelta{
		PlayerID:           d.PlayerID,
		TeamID:             d.TeamID,
		Runs:               -d.Runs,
		BallsFaced:         -d.BallsFaced,
		Fours:              -d.Fours,
		Sixes:              -d.Sixes,
		Dismissals:         -d.Dismissals,
		LegalBalls:         -d.LegalBalls,
		RunsConceded:       -d.RunsConceded,
		Wickets:            -d.Wickets,
		DotBalls:           -d.DotBalls,
		FieldingDismissals: -d.FieldingDismissals,
	}
}

// NegateAll inverts a delta set, as undo does.
func NegateAll(ds []StatDelta) []StatDelta {
	out := make([]StatDelta, len(ds))
	for i, d := range ds {
		out[i] = d.Negate()
	}
	return out
}

// ApplyTo adds d into s.
func (d StatDelta) ApplyTo(s *models.MatchPlayerStats) {
	s.Batting.Runs += d.Runs
	s.Batting.BallsFaced += d.BallsFaced
	s.Batting.Fours += d.Fours
	s.Batting.Sixes += d.Sixes
	s.Batting.Dismissals += d.Dismissals
	s.Bowling.LegalBalls += d.LegalBalls
	s.Bowling.RunsConceded += d.RunsConceded
	s.Bowling.Wickets += d.Wickets
	s.Bowling.DotBalls += d.DotBalls
	s.Fielding.Dismissals += d.FieldingDismissals
	s.Derive()
}

// InningLedger pairs an inning with its balls.
type InningLedger struct {
	Inning *models.Inning
	Balls  []models.Ball
}

// AggregateStats rebuilds a match's player stats from its ledgers. The
// result is keyed by player id.
func AggregateStats(matchID int, ledgers []InningLedger) map[int]*models.MatchPlayerStats {
	stats := make(map[int]*models.MatchPlayerStats)
	for _, l := range ledgers {
		for i := range l.Balls {
			for _, d := range BallDeltas(&l.Balls[i], l.Inning) {
				s, ok := stats[d.PlayerID]
				if !ok {
					s = &models.MatchPlayerStats{MatchID: matchID, PlayerID: d.PlayerID, TeamID: d.TeamID}
					stats[d.PlayerID] = s
				}
				d.ApplyTo(s)
			}
		}
	}
	return stats
}

// DeltaOf returns the delta that takes an empty stats row to s.
func DeltaOf(s *models.MatchPlayerStats) StatDelta {
	return StatDelta{
		PlayerID:           s.PlayerID,
		TeamID:             s.TeamID,
		Runs:               s.Batting.Runs,
		BallsFaced:         s.Batting.BallsFaced,
		Fours:              s.Batting.Fours,
		Sixes:              s.Batting.Sixes,
		Dismissals:         s.Batting.Dismissals,
		LegalBalls:         s.Bowling.LegalBalls,
		RunsConceded:       s.Bowling.RunsConceded,
		Wickets:            s.Bowling.Wickets,
		DotBalls:           s.Bowling.DotBalls,
		FieldingDismissals: s.Fielding.Dismissals,
	}
}
