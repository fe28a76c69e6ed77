package models

import "time"

// CompletionReason фиксирует условие, по которому иннингс был завершён.
type CompletionReason string

const (
	CompletionAllOut         CompletionReason = "all_out"
	CompletionOversExhausted CompletionReason = "overs_exhausted"
	CompletionTargetReached  CompletionReason = "target_reached"
	CompletionManual         CompletionReason = "manual"
)

type Inning struct {
	ID               int               `json:"id" db:"id"`
	MatchID          int               `json:"match_id" db:"match_id"`
	InningNumber     int               `json:"inning_number" db:"inning_number"`
	BattingTeamID    int               `json:"batting_team_id" db:"batting_team_id"`
	BowlingTeamID    int               `json:"bowling_team_id" db:"bowling_team_id"`
	Target           *int              `json:"target,omitempty" db:"target"`
	IsCompleted      bool              `json:"is_completed" db:"is_completed"`
	CompletionReason *CompletionReason `json:"completion_reason,omitempty" db:"completion_reason"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}

// InningSummary - производные итоги иннингса, пересчитанные по журналу мячей.
type InningSummary struct {
	Inning       *Inning `json:"inning"`
	TotalRuns    int     `json:"total_runs"`
	TotalWickets int     `json:"total_wickets"`
	LegalBalls   int     `json:"legal_balls"`
	Overs        string  `json:"overs"`
	RunRate      float64 `json:"run_rate"`
	Extras       int     `json:"extras"`
	RunsRequired *int    `json:"runs_required,omitempty"`
}
