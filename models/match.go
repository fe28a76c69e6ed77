package models

import "time"

// MatchStatus: upcoming -> toss -> inning1 -> inning2 -> completed, с выходом в abandoned
// из любого нетерминального состояния.
type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusToss      MatchStatus = "toss"
	MatchStatusInning1   MatchStatus = "inning1"
	MatchStatusInning2   MatchStatus = "inning2"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusAbandoned MatchStatus = "abandoned"
)

func (s MatchStatus) Terminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusAbandoned
}

type MatchType string

const (
	MatchTypeLeague     MatchType = "league"
	MatchTypeQualifier  MatchType = "qualifier"
	MatchTypeEliminator MatchType = "eliminator"
	MatchTypeFinal      MatchType = "final"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchTypeLeague, MatchTypeQualifier, MatchTypeEliminator, MatchTypeFinal:
		return true
	}
	return false
}

type TossDecision string

const (
	TossDecisionBat  TossDecision = "bat"
	TossDecisionBowl TossDecision = "bowl"
)

type Toss struct {
	WinnerID int          `json:"winner_id"`
	Decision TossDecision `json:"decision"`
}

// ResultSource показывает, как был получен результат матча.
type ResultSource string

const (
	ResultSourceAuto      ResultSource = "auto"
	ResultSourceManual    ResultSource = "manual"
	ResultSourceAbandoned ResultSource = "abandoned"
)

type MatchResult struct {
	WinnerID      *int         `json:"winner_id,omitempty"`
	Margin        string       `json:"margin,omitempty"`
	Summary       string       `json:"summary"`
	ManOfTheMatch *int         `json:"man_of_the_match_id,omitempty"`
	Source        ResultSource `json:"source"`
}

type Match struct {
	ID            int          `json:"id" db:"id"`
	TournamentID  int          `json:"tournament_id" db:"tournament_id"`
	MatchNumber   int          `json:"match_number" db:"match_number"`
	MatchType     MatchType    `json:"match_type" db:"match_type"`
	Team1ID       int          `json:"team1_id" db:"team1_id"`
	Team2ID       int          `json:"team2_id" db:"team2_id"`
	Venue         string       `json:"venue" db:"venue"`
	ScheduledAt   *time.Time   `json:"scheduled_at,omitempty" db:"scheduled_at"`
	Status        MatchStatus  `json:"status" db:"status"`
	Toss          *Toss        `json:"toss,omitempty" db:"-"`
	Result        *MatchResult `json:"result,omitempty" db:"-"`
	AbandonReason *string      `json:"abandon_reason,omitempty" db:"abandon_reason"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// HasTeam сообщает, участвует ли команда в матче.
func (m *Match) HasTeam(teamID int) bool {
	return teamID == m.Team1ID || teamID == m.Team2ID
}

// Opponent возвращает соперника команды teamID.
func (m *Match) Opponent(teamID int) int {
	if teamID == m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}

// PlayingXIEntry - игрок, заявленный командой на конкретный матч.
type PlayingXIEntry struct {
	MatchID        int  `json:"match_id" db:"match_id"`
	TeamID         int  `json:"team_id" db:"team_id"`
	PlayerID       int  `json:"player_id" db:"player_id"`
	BattingOrder   int  `json:"batting_order" db:"batting_order"`
	IsCaptain      bool `json:"is_captain" db:"is_captain"`
	IsWicketKeeper bool `json:"is_wicket_keeper" db:"is_wicket_keeper"`

	Player *Player `json:"player,omitempty" db:"-"`
}
