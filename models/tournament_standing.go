package models

import "time"

type TournamentStanding struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	Played       int       `json:"played" db:"played"`
	Won          int       `json:"won" db:"won"`
	Lost         int       `json:"lost" db:"lost"`
	NoResult     int       `json:"no_result" db:"no_result"`
	Points       int       `json:"points" db:"points"`
	NetRunRate   float64   `json:"net_run_rate" db:"net_run_rate"`
	Position     int       `json:"position" db:"position"`
	Qualified    bool      `json:"qualified" db:"qualified"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
