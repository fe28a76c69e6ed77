package scoring

import (
	"fmt"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

// InningScore is the part of a completed innings the result and the
// standings need.
type InningScore struct {
	BattingTeamID int
	BowlingTeamID int
	Runs          int
	Wickets       int
	LegalBalls    int
}

// ScoreOf builds an InningScore from an inning and its totals.
func ScoreOf(inning *models.Inning, t Totals) InningScore {
	return InningScore{
		BattingTeamID: inning.BattingTeamID,
		BowlingTeamID: inning.BowlingTeamID,
		Runs:          t.Runs,
		Wickets:       t.Wickets,
		LegalBalls:    t.LegalBalls,
	}
}

type MarginUnit string

const (
	MarginRuns    MarginUnit = "run"
	MarginWickets MarginUnit = "wicket"
)

// Result is a computed match result. WinnerID is nil for a tie.
type Result struct {
	WinnerID    *int
	LoserID     *int
	MarginValue int
	MarginUnit  MarginUnit
	Tied        bool
}

// Margin renders "7 wickets", "1 run" and so on.
func (r Result) Margin() string {
	if r.Tied || r.WinnerID == nil {
		return ""
	}
	unit := string(r.MarginUnit)
	if r.MarginValue != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", r.MarginValue, unit)
}

// Summary renders the one-line result, given a way to name teams.
func (r Result) Summary(teamName func(int) string) string {
	if r.Tied || r.WinnerID == nil {
		return "Match tied"
	}
	return fmt.Sprintf("%s won by %s", teamName(*r.WinnerID), r.Margin())
}

// ComputeResult derives the result of a match from its two innings.
// A successful chase is won by the wickets in hand, a successful defence by
// the run difference.
func ComputeResult(first, second InningScore) Result {
	switch {
	case second.Runs > first.Runs:
		winner, loser := second.BattingTeamID, second.BowlingTeamID
		return Result{
			WinnerID:    &winner,
			LoserID:     &loser,
			MarginValue: AllOutWickets - second.Wickets,
			MarginUnit:  MarginWickets,
		}
	case second.Runs < first.Runs:
		winner, loser := second.BowlingTeamID, second.BattingTeamID
		return Result{
			WinnerID:    &winner,
			LoserID:     &loser,
			MarginValue: first.Runs - second.Runs,
			MarginUnit:  MarginRuns,
		}
	}
	return Result{Tied: true}
}
