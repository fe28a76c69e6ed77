package scoring

import (
	"sort"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

const (
	PointsForWin      = 2
	PointsForNoResult = 1
)

// Outcome is what one completed or abandoned match contributes to the
// points table. WinnerID is nil for a tie, a no-result or an abandonment.
type Outcome struct {
	MatchID  int
	Team1ID  int
	Team2ID  int
	WinnerID *int
	// Innings feed the net run rate of a decisive result. NRR is left
	// untouched unless both innings are present.
	Innings []InningScore
}

// OutcomeOf builds the outcome of a finished match.
func OutcomeOf(m *models.Match, innings []InningScore) Outcome {
	o := Outcome{MatchID: m.ID, Team1ID: m.Team1ID, Team2ID: m.Team2ID, Innings: innings}
	if m.Status == models.MatchStatusCompleted && m.Result != nil && m.Result.WinnerID != nil {
		w := *m.Result.WinnerID
		o.WinnerID = &w
	}
	return o
}

// Fold applies one outcome to the rows of the two competing teams. Missing
// rows are created.
func Fold(rows map[int]*models.TournamentStanding, tournamentID int, o Outcome) {
	a := rowFor(rows, tournamentID, o.Team1ID)
	b := rowFor(rows, tournamentID, o.Team2ID)
	a.Played++
	b.Played++

	if o.WinnerID == nil {
		a.NoResult++
		b.NoResult++
		a.Points += PointsForNoResult
		b.Points += PointsForNoResult
		return
	}

	winner, loser := a, b
	if *o.WinnerID == o.Team2ID {
		winner, loser = b, a
	}
	winner.Won++
	winner.Points += PointsForWin
	loser.Lost++

	if len(o.Innings) == 2 {
		a.NetRunRate += NRRContribution(o.Team1ID, o.Innings)
		b.NetRunRate += NRRContribution(o.Team2ID, o.Innings)
	}
}

func rowFor(rows map[int]*models.TournamentStanding, tournamentID, teamID int) *models.TournamentStanding {
	r, ok := rows[teamID]
	if !ok {
		r = &models.TournamentStanding{TournamentID: tournamentID, TeamID: teamID}
		rows[teamID] = r
	}
	return r
}

// NRRContribution is the team's run rate for the match minus the run rate
// conceded, with overs taken as legal balls / 6.
func NRRContribution(teamID int, innings []InningScore) float64 {
	var scored, faced, conceded, bowled int
	for _, in := range innings {
		switch teamID {
		case in.BattingTeamID:
			scored += in.Runs
			faced += in.LegalBalls
		case in.BowlingTeamID:
			conceded += in.Runs
			bowled += in.LegalBalls
		}
	}
	return perOver(scored, faced) - perOver(conceded, bowled)
}

// Rank sorts rows by points, then NRR, both descending, and assigns 1-based
// positions. Rows that tie on both keep their incoming order.
func Rank(rows []*models.TournamentStanding) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].NetRunRate > rows[j].NetRunRate
	})
	for i, r := range rows {
		r.Position = i + 1
	}
}

// Recompute rebuilds a points table from scratch: zero rows for every team,
// then every outcome folded in the given order, then ranking.
func Recompute(tournamentID int, teamIDs []int, outcomes []Outcome) []*models.TournamentStanding {
	rows := make(map[int]*models.TournamentStanding, len(teamIDs))
	for _, id := range teamIDs {
		rowFor(rows, tournamentID, id)
	}
	for _, o := range outcomes {
		Fold(rows, tournamentID, o)
	}
	return Ordered(rows)
}

// Ordered returns the rows by team id and ranked.
func Ordered(rows map[int]*models.TournamentStanding) []*models.TournamentStanding {
	out := make([]*models.TournamentStanding, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	Rank(out)
	return out
}
