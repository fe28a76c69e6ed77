package models

import "time"

// TournamentStatus описывает жизненный цикл турнира.
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// DefaultOversPerInnings используется, если в турнире не задано количество оверов.
const DefaultOversPerInnings = 20

type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Season          string           `json:"season" db:"season"`
	OversPerInnings int              `json:"overs_per_innings" db:"overs_per_innings"`
	Status          TournamentStatus `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}
