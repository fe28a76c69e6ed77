package models

import "fmt"

// MatchPlayerStats хранит целочисленные накопители, чтобы откат мяча
// возвращал значения точно. Оверы и мейдены вычисляются из мячей.
type MatchPlayerStats struct {
	ID       int `json:"id" db:"id"`
	MatchID  int `json:"match_id" db:"match_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	TeamID   int `json:"team_id" db:"team_id"`

	Batting  BattingStats  `json:"batting" db:"-"`
	Bowling  BowlingStats  `json:"bowling" db:"-"`
	Fielding FieldingStats `json:"fielding" db:"-"`
}

type BattingStats struct {
	Runs       int  `json:"runs"`
	BallsFaced int  `json:"balls_faced"`
	Fours      int  `json:"fours"`
	Sixes      int  `json:"sixes"`
	Dismissals int  `json:"-"`
	IsOut      bool `json:"is_out"`
}

type BowlingStats struct {
	LegalBalls   int     `json:"legal_balls"`
	Overs        string  `json:"overs"`
	RunsConceded int     `json:"runs_conceded"`
	Wickets      int     `json:"wickets"`
	DotBalls     int     `json:"dot_balls"`
	Maidens      float64 `json:"maidens"`
}

type FieldingStats struct {
	Dismissals int `json:"dismissals"`
}

// Derive заполняет вычисляемые поля из накопителей.
func (s *MatchPlayerStats) Derive() {
	s.Batting.IsOut = s.Batting.Dismissals > 0
	s.Bowling.Overs = FormatOvers(s.Bowling.LegalBalls)
	s.Bowling.Maidens = float64(s.Bowling.DotBalls) / 6
}

// FormatOvers returns the cricket "o.b" notation for a legal-ball count.
func FormatOvers(legalBalls int) string {
	return fmt.Sprintf("%d.%d", legalBalls/6, legalBalls%6)
}
