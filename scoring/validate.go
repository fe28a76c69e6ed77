package scoring

import (
	"errors"
	"fmt"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

var (
	ErrInningCompleted  = errors.New("inning is already completed")
	ErrPositionOccupied = errors.New("ball position is already occupied")
)

// ValidationError describes a caller-fixable problem with a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// BallContext is everything the validator needs besides the ball itself.
type BallContext struct {
	Inning          *models.Inning
	OversPerInnings int
	// Ledger holds the balls already recorded for the inning.
	Ledger []models.Ball
	// PlayerTeams maps every player in either playing XI to their team.
	PlayerTeams map[int]int
}

// ResolveRuns fills in the total when it is omitted and rejects a total
// that disagrees with batsman + extras.
func ResolveRuns(batsman, extras int, total *int) (models.Runs, error) {
	if batsman < 0 {
		return models.Runs{}, invalid("runs.batsman", "must not be negative")
	}
	if extras < 0 {
		return models.Runs{}, invalid("runs.extras", "must not be negative")
	}
	runs := models.Runs{Batsman: batsman, Extras: extras, Total: batsman + extras}
	if total != nil && *total != runs.Total {
		return models.Runs{}, invalid("runs.total", "must equal batsman + extras (%d), got %d", runs.Total, *total)
	}
	return runs, nil
}

// ValidateBall admits or rejects a proposed ball. It returns
// ErrInningCompleted, ErrPositionOccupied or a *ValidationError.
func ValidateBall(bc BallContext, b *models.Ball) error {
	if bc.Inning.IsCompleted {
		return ErrInningCompleted
	}

	if err := validatePosition(bc, b); err != nil {
		return err
	}
	if err := validateRuns(b); err != nil {
		return err
	}
	if err := validateParticipants(bc, b); err != nil {
		return err
	}
	if err := validateWicket(bc, b); err != nil {
		return err
	}
	return validateSequence(bc, b)
}

func validatePosition(bc BallContext, b *models.Ball) error {
	if b.Over < 1 {
		return invalid("over", "must be at least 1")
	}
	if bc.OversPerInnings > 0 && b.Over > bc.OversPerInnings {
		return invalid("over", "must not exceed %d overs per innings", bc.OversPerInnings)
	}
	if b.BallInOver < 1 {
		return invalid("ball_in_over", "must be at least 1")
	}
	return nil
}

func validateRuns(b *models.Ball) error {
	if b.Runs.Batsman < 0 {
		return invalid("runs.batsman", "must not be negative")
	}
	if b.Runs.Extras < 0 {
		return invalid("runs.extras", "must not be negative")
	}
	if b.Runs.Total != b.Runs.Batsman+b.Runs.Extras {
		return invalid("runs.total", "must equal batsman + extras")
	}

	if b.ExtraType == nil {
		if !b.IsLegal {
			return invalid("extra_type", "an illegal delivery must be a wide or a no-ball")
		}
		if b.Runs.Extras > 0 {
			return invalid("extra_type", "is required when extras are awarded")
		}
		return nil
	}

	et := *b.ExtraType
	if !et.Valid() {
		return invalid("extra_type", "unknown extra type %q", et)
	}
	switch et {
	case models.ExtraWide, models.ExtraNoBall:
		if b.IsLegal {
			return invalid("is_legal", "a %s is not a legal delivery", et)
		}
		if b.Runs.Extras < 1 {
			return invalid("runs.extras", "a %s carries at least one extra", et)
		}
		if et == models.ExtraWide && b.Runs.Batsman != 0 {
			return invalid("runs.batsman", "runs off a wide are extras")
		}
	case models.ExtraBye, models.ExtraLegBye:
		if !b.IsLegal {
			return invalid("is_legal", "a %s is a legal delivery", et)
		}
		if b.Runs.Batsman != 0 {
			return invalid("runs.batsman", "%s runs are not credited to the batsman", et)
		}
	case models.ExtraPenalty:
		if !b.IsLegal {
			return invalid("is_legal", "penalty runs are recorded against a legal delivery")
		}
	}
	return nil
}

func validateParticipants(bc BallContext, b *models.Ball) error {
	if team, ok := bc.PlayerTeams[b.BowlerID]; !ok || team != bc.Inning.BowlingTeamID {
		return invalid("bowler_id", "player %d is not in the bowling team's playing XI", b.BowlerID)
	}
	if team, ok := bc.PlayerTeams[b.BatsmanID]; !ok || team != bc.Inning.BattingTeamID {
		return invalid("batsman_id", "player %d is not in the batting team's playing XI", b.BatsmanID)
	}
	if team, ok := bc.PlayerTeams[b.NonStrikerID]; !ok || team != bc.Inning.BattingTeamID {
		return invalid("non_striker_id", "player %d is not in the batting team's playing XI", b.NonStrikerID)
	}
	if b.BatsmanID == b.NonStrikerID {
		return invalid("non_striker_id", "must differ from the batsman")
	}
	return nil
}

func validateWicket(bc BallContext, b *models.Ball) error {
	w := b.Wicket
	if w == nil {
		return nil
	}
	if w.Type == "" {
		return invalid("wicket.type", "is required when a wicket is recorded")
	}
	if !w.Type.Valid() {
		return invalid("wicket.type", "unknown wicket type %q", w.Type)
	}
	if w.PlayerOutID != b.BatsmanID {
		return invalid("wicket.player_out_id", "must be the current batsman")
	}
	if w.Type.RequiresFielder() {
		if w.FielderID == nil {
			return invalid("wicket.fielder_id", "is required for a %s dismissal", w.Type)
		}
		if team, ok := bc.PlayerTeams[*w.FielderID]; !ok || team != bc.Inning.BowlingTeamID {
			return invalid("wicket.fielder_id", "player %d is not in the bowling team's playing XI", *w.FielderID)
		}
	}
	return nil
}

// validateSequence enforces that slots within an over are filled in order,
// that an over holds at most six legal balls, and that a new over only
// starts once the previous one is complete.
func validateSequence(bc BallContext, b *models.Ball) error {
	var (
		prevSlot      bool
		legalInOver   int
		legalPrevOver int
	)
	for i := range bc.Ledger {
		l := &bc.Ledger[i]
		switch l.Over {
		case b.Over:
			if l.BallInOver == b.BallInOver {
				return fmt.Errorf("%w: %d.%d", ErrPositionOccupied, b.Over, b.BallInOver)
			}
			if l.BallInOver == b.BallInOver-1 {
				prevSlot = true
			}
			if l.IsLegal {
				legalInOver++
			}
		case b.Over - 1:
			if l.IsLegal {
				legalPrevOver++
			}
		}
	}

	if b.BallInOver > 1 && !prevSlot {
		return invalid("ball_in_over", "previous ball %d.%d must be recorded first", b.Over, b.BallInOver-1)
	}
	if b.Over > 1 && b.BallInOver == 1 && legalPrevOver < BallsPerOver {
		return invalid("over", "over %d is not complete", b.Over-1)
	}
	if b.IsLegal && legalInOver >= BallsPerOver {
		return invalid("ball_in_over", "over %d already has %d legal balls", b.Over, BallsPerOver)
	}
	return nil
}
