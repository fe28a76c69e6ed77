package scoring

import (
	"fmt"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

// Commentary generates a line for a ball recorded without one.
func Commentary(b *models.Ball, playerName func(int) string) string {
	if w := b.Wicket; w != nil {
		out := playerName(w.PlayerOutID)
		switch w.Type {
		case models.WicketBowled:
			return fmt.Sprintf("Clean bowled! %s is out.", out)
		case models.WicketCaught:
			fielder := ""
			if w.FielderID != nil {
				fielder = playerName(*w.FielderID)
			}
			return fmt.Sprintf("Caught! %s is caught by %s.", out, fielder)
		case models.WicketLBW:
			return fmt.Sprintf("LBW! %s is out leg before wicket.", out)
		case models.WicketRunOut:
			return fmt.Sprintf("Run out! %s is run out.", out)
		case models.WicketStumped:
			return fmt.Sprintf("Stumped! %s is stumped.", out)
		case models.WicketHitWicket:
			return fmt.Sprintf("Hit wicket! %s is out.", out)
		}
		return fmt.Sprintf("%s is out.", out)
	}

	switch {
	case b.Runs.Total == 0:
		return "Dot ball."
	case b.Runs.Batsman == 4:
		return "Four runs! Excellent shot."
	case b.Runs.Batsman == 6:
		return "Six! Massive hit."
	case b.ExtraType != nil && *b.ExtraType == models.ExtraWide:
		return "Wide ball."
	case b.ExtraType != nil && *b.ExtraType == models.ExtraNoBall:
		return "No ball. Free hit coming up."
	case b.Runs.Total == 1:
		return "1 run."
	}
	return fmt.Sprintf("%d runs.", b.Runs.Total)
}
