package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	ShortName    string    `json:"short_name" db:"short_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`
}

type PlayerRole string

const (
	PlayerRoleBatsman      PlayerRole = "batsman"
	PlayerRoleBowler       PlayerRole = "bowler"
	PlayerRoleAllRounder   PlayerRole = "all-rounder"
	PlayerRoleWicketKeeper PlayerRole = "wicket-keeper"
)

func (r PlayerRole) Valid() bool {
	switch r {
	case PlayerRoleBatsman, PlayerRoleBowler, PlayerRoleAllRounder, PlayerRoleWicketKeeper:
		return true
	}
	return false
}

type BattingStyle string

const (
	BattingStyleRight BattingStyle = "right"
	BattingStyleLeft  BattingStyle = "left"
)

type Player struct {
	ID           int          `json:"id" db:"id"`
	TeamID       int          `json:"team_id" db:"team_id"`
	Name         string       `json:"name" db:"name"`
	JerseyNumber int          `json:"jersey_number" db:"jersey_number"`
	Role         PlayerRole   `json:"role" db:"role"`
	BattingStyle BattingStyle `json:"batting_style" db:"batting_style"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
