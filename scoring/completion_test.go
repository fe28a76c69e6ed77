package scoring

import (
	"testing"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

func TestCompletionOnTenthWicket(t *testing.T) {
	t.Parallel()

	inning := testInning(1)
	var runs []int
	for i := 0; i < AllOutWickets; i++ {
		runs = append(runs, wicketDown)
	}
	balls := sequence(runs...)

	for i := 1; i < len(balls); i++ {
		if tr, _ := EvaluateCompletion(inning, 20, Tally(balls[:i]), false); tr != NoChange {
			t.Fatalf("completed after %d wickets, want only at 10", i)
		}
	}
	tr, reason := EvaluateCompletion(inning, 20, Tally(balls), false)
	if tr != Complete || reason != models.CompletionAllOut {
		t.Fatalf("EvaluateCompletion() = %v %q, want Complete all_out", tr, reason)
	}
}

func TestCompletionOnOversExhausted(t *testing.T) {
	t.Parallel()

	inning := testInning(1)
	balls := sequence(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)

	if tr, _ := EvaluateCompletion(inning, 2, Tally(balls[:11]), false); tr != NoChange {
		t.Fatal("completed after 11 legal balls of a 2 over innings")
	}
	tr, reason := EvaluateCompletion(inning, 2, Tally(balls), false)
	if tr != Complete || reason != models.CompletionOversExhausted {
		t.Fatalf("EvaluateCompletion() = %v %q, want Complete overs_exhausted", tr, reason)
	}
}

func TestCompletionIsIdempotent(t *testing.T) {
	t.Parallel()

	inning := testInning(1)
	inning.IsCompleted = true
	reason := models.CompletionOversExhausted
	inning.CompletionReason = &reason

	tr, _ := EvaluateCompletion(inning, 1, Tally(sequence(0, 0, 0, 0, 0, 0)), false)
	if tr != NoChange {
		t.Fatalf("EvaluateCompletion() on completed innings = %v, want NoChange", tr)
	}
}

func TestChaseCompletesOnTheBallThatReachesTarget(t *testing.T) {
	t.Parallel()

	first := sequence(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2)
	firstTotals := Tally(first)
	if firstTotals.Runs != 13 || firstTotals.LegalBalls != 12 {
		t.Fatalf("first innings = %d off %d, want 13 off 12", firstTotals.Runs, firstTotals.LegalBalls)
	}
	target := Target(firstTotals)
	if target != 14 {
		t.Fatalf("Target() = %d, want 14", target)
	}

	chase := testInning(2)
	chase.BattingTeamID, chase.BowlingTeamID = bowlingTeam, battingTeam
	chase.Target = &target
	second := sequence(2, 2, wicketDown, 2, 2, wicketDown, 2, wicketDown, 4)

	for i := 1; i < len(second); i++ {
		if tr, _ := EvaluateCompletion(chase, 2, Tally(second[:i]), false); tr != NoChange {
			t.Fatalf("chase completed after %d balls, want 9", i)
		}
	}
	secondTotals := Tally(second)
	tr, reason := EvaluateCompletion(chase, 2, secondTotals, false)
	if tr != Complete || reason != models.CompletionTargetReached {
		t.Fatalf("EvaluateCompletion() = %v %q, want Complete target_reached", tr, reason)
	}

	innings1 := testInning(1)
	res := ComputeResult(ScoreOf(innings1, firstTotals), ScoreOf(chase, secondTotals))
	if res.WinnerID == nil || *res.WinnerID != bowlingTeam {
		t.Fatalf("winner = %v, want %d", res.WinnerID, bowlingTeam)
	}
	if got := res.Margin(); got != "7 wickets" {
		t.Fatalf("Margin() = %q, want %q", got, "7 wickets")
	}
}

func TestReopenAfterUndo(t *testing.T) {
	t.Parallel()

	inning := testInning(1)
	inning.IsCompleted = true
	reason := models.CompletionOversExhausted
	inning.CompletionReason = &reason
	short := Tally(sequence(0, 0, 0, 0, 0))

	if tr, _ := EvaluateCompletion(inning, 1, short, false); tr != NoChange {
		t.Fatalf("reopened without undo: %v", tr)
	}
	if tr, _ := EvaluateCompletion(inning, 1, short, true); tr != Reopen {
		t.Fatalf("EvaluateCompletion() after undo = %v, want Reopen", tr)
	}

	manual := models.CompletionManual
	inning.CompletionReason = &manual
	if tr, _ := EvaluateCompletion(inning, 1, short, true); tr != NoChange {
		t.Fatalf("EvaluateCompletion() manual close after undo = %v, want NoChange", tr)
	}
}

func TestCanCloseByHand(t *testing.T) {
	t.Parallel()

	if !CanCloseByHand(testInning(1), 20, Totals{Runs: 40, LegalBalls: 30}) {
		t.Fatal("first innings cannot be closed by hand")
	}

	chase := testInning(2)
	chase.Target = intPtr(50)
	if CanCloseByHand(chase, 20, Totals{Runs: 40, LegalBalls: 30}) {
		t.Fatal("chase closed by hand before the target")
	}
	if !CanCloseByHand(chase, 20, Totals{Runs: 50, LegalBalls: 30}) {
		t.Fatal("chase cannot be closed once the target is reached")
	}
}
