package scoring

import "github.com/GovindaEkabote/Cricket-Score-Calculate/models"

// AllOutWickets ends an innings.
const AllOutWickets = 10

// Transition is the change the completion monitor asks the caller to apply.
type Transition int

const (
	NoChange Transition = iota
	Complete
	Reopen
)

// CompletionReason reports which condition, if any, ends the innings.
// A reached target wins over the other two when they coincide.
func CompletionReason(inning *models.Inning, oversPerInnings int, t Totals) (models.CompletionReason, bool) {
	switch {
	case inning.InningNumber == 2 && inning.Target != nil && t.Runs >= *inning.Target:
		return models.CompletionTargetReached, true
	case t.Wickets >= AllOutWickets:
		return models.CompletionAllOut, true
	case oversPerInnings > 0 && t.CompletedOvers() >= oversPerInnings:
		return models.CompletionOversExhausted, true
	}
	return "", false
}

// EvaluateCompletion recomputes completion from the full ledger totals.
// Completion only fires on a fresh crossing. A completed innings reopens
// only after an undo, and never when it was closed by hand.
func EvaluateCompletion(inning *models.Inning, oversPerInnings int, t Totals, afterUndo bool) (Transition, models.CompletionReason) {
	reason, done := CompletionReason(inning, oversPerInnings, t)
	switch {
	case !inning.IsCompleted && done:
		return Complete, reason
	case inning.IsCompleted && !done && afterUndo && !closedByHand(inning):
		return Reopen, ""
	}
	return NoChange, ""
}

func closedByHand(inning *models.Inning) bool {
	return inning.CompletionReason != nil && *inning.CompletionReason == models.CompletionManual
}

// CanCloseByHand reports whether a scorer may mark the innings complete.
// The first innings can be closed at any time; a chase cannot be closed
// before one of the completion conditions holds.
func CanCloseByHand(inning *models.Inning, oversPerInnings int, t Totals) bool {
	if inning.InningNumber != 2 {
		return true
	}
	_, done := CompletionReason(inning, oversPerInnings, t)
	return done
}

// Target is inning 1's total + 1.
func Target(first Totals) int {
	return first.Runs + 1
}
