package models

import "time"

type ExtraType string

const (
	ExtraWide    ExtraType = "wide"
	ExtraNoBall  ExtraType = "no-ball"
	ExtraBye     ExtraType = "bye"
	ExtraLegBye  ExtraType = "leg-bye"
	ExtraPenalty ExtraType = "penalty"
)

func (e ExtraType) Valid() bool {
	switch e {
	case ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye, ExtraPenalty:
		return true
	}
	return false
}

type WicketType string

const (
	WicketBowled    WicketType = "bowled"
	WicketCaught    WicketType = "caught"
	WicketLBW       WicketType = "lbw"
	WicketRunOut    WicketType = "run-out"
	WicketStumped   WicketType = "stumped"
	WicketHitWicket WicketType = "hit-wicket"
)

func (w WicketType) Valid() bool {
	switch w {
	case WicketBowled, WicketCaught, WicketLBW, WicketRunOut, WicketStumped, WicketHitWicket:
		return true
	}
	return false
}

// RequiresFielder: caught, run-out и stumped невозможны без полевого игрока.
func (w WicketType) RequiresFielder() bool {
	return w == WicketCaught || w == WicketRunOut || w == WicketStumped
}

// CreditsBowler: run-out не засчитывается боулеру.
func (w WicketType) CreditsBowler() bool {
	return w != WicketRunOut
}

type Runs struct {
	Batsman int `json:"batsman"`
	Extras  int `json:"extras"`
	Total   int `json:"total"`
}

type Wicket struct {
	Type        WicketType `json:"type"`
	PlayerOutID int        `json:"player_out_id"`
	FielderID   *int       `json:"fielder_id,omitempty"`
}

// Ball - одна доставка мяча. Позиция (InningID, Over, BallInOver) уникальна.
type Ball struct {
	ID           int        `json:"id" db:"id"`
	InningID     int        `json:"inning_id" db:"inning_id"`
	Over         int        `json:"over" db:"over_number"`
	BallInOver   int        `json:"ball_in_over" db:"ball_in_over"`
	IsLegal      bool       `json:"is_legal" db:"is_legal"`
	BowlerID     int        `json:"bowler_id" db:"bowler_id"`
	BatsmanID    int        `json:"batsman_id" db:"batsman_id"`
	NonStrikerID int        `json:"non_striker_id" db:"non_striker_id"`
	Runs         Runs       `json:"runs" db:"-"`
	ExtraType    *ExtraType `json:"extra_type,omitempty" db:"extra_type"`
	Wicket       *Wicket    `json:"wicket,omitempty" db:"-"`
	Commentary   string     `json:"commentary" db:"commentary"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func (b *Ball) IsWicket() bool {
	return b.Wicket != nil
}

// Before сообщает, идёт ли b раньше other в журнале иннингса.
func (b *Ball) Before(other *Ball) bool {
	if b.Over != other.Over {
		return b.Over < other.Over
	}
	return b.BallInOver < other.BallInOver
}

// OverView группирует мячи одного овера.
type OverView struct {
	Over    int    `json:"over"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Balls   []Ball `json:"balls"`
}

// Partnership - текущая пара бэтсменов с момента последней калитки.
type Partnership struct {
	BatsmanID    int `json:"batsman_id"`
	NonStrikerID int `json:"non_striker_id"`
	Runs         int `json:"runs"`
	Balls        int `json:"balls"`
}
