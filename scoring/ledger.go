package scoring

import (
	"sort"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

// Totals are the numbers derived from an inning's ledger.
type Totals struct {
	Runs       int
	Wickets    int
	LegalBalls int
	Extras     int
}

// Tally rescans the full ledger.
func Tally(balls []models.Ball) Totals {
	var t Totals
	for i := range balls {
		b := &balls[i]
		t.Runs += b.Runs.Total
		t.Extras += b.Runs.Extras
		if b.IsLegal {
			t.LegalBalls++
		}
		if b.IsWicket() {
			t.Wickets++
		}
	}
	return t
}

// CompletedOvers is floor(legal balls / 6).
func (t Totals) CompletedOvers() int {
	return t.LegalBalls / BallsPerOver
}

// RunRate is runs per six legal balls, zero before the first legal ball.
func (t Totals) RunRate() float64 {
	return perOver(t.Runs, t.LegalBalls)
}

func perOver(runs, legalBalls int) float64 {
	if legalBalls == 0 {
		return 0
	}
	return float64(runs) * BallsPerOver / float64(legalBalls)
}

// SortLedger orders balls by (over, ball in over).
func SortLedger(balls []models.Ball) {
	sort.SliceStable(balls, func(i, j int) bool {
		return balls[i].Before(&balls[j])
	})
}

// Last returns the most recently recorded ball, or nil for an empty ledger.
func Last(balls []models.Ball) *models.Ball {
	var last *models.Ball
	for i := range balls {
		if last == nil || last.Before(&balls[i]) {
			last = &balls[i]
		}
	}
	return last
}

// GroupByOver splits an ordered ledger into overs.
func GroupByOver(balls []models.Ball) []models.OverView {
	var overs []models.OverView
	for _, b := range balls {
		if len(overs) == 0 || overs[len(overs)-1].Over != b.Over {
			overs = append(overs, models.OverView{Over: b.Over})
		}
		ov := &overs[len(overs)-1]
		ov.Runs += b.Runs.Total
		if b.IsWicket() {
			ov.Wickets++
		}
		ov.Balls = append(ov.Balls, b)
	}
	return overs
}

// CurrentPartnership covers the balls bowled since the last wicket.
func CurrentPartnership(balls []models.Ball) *models.Partnership {
	last := Last(balls)
	if last == nil {
		return nil
	}
	var lastWicket *models.Ball
	for i := range balls {
		if balls[i].IsWicket() && (lastWicket == nil || lastWicket.Before(&balls[i])) {
			lastWicket = &balls[i]
		}
	}

	p := &models.Partnership{BatsmanID: last.BatsmanID, NonStrikerID: last.NonStrikerID}
	for i := range balls {
		b := &balls[i]
		if lastWicket != nil && !lastWicket.Before(b) {
			continue
		}
		p.Runs += b.Runs.Total
		if b.IsLegal {
			p.Balls++
		}
	}
	return p
}
