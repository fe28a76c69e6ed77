package scoring

import "github.com/GovindaEkabote/Cricket-Score-Calculate/models"

const (
	battingTeam = 10
	bowlingTeam = 20
	wicketDown  = -1
)

func intPtr(v int) *int { return &v }

func extraPtr(e models.ExtraType) *models.ExtraType { return &e }

func testInning(number int) *models.Inning {
	return &models.Inning{ID: number, MatchID: 1, InningNumber: number, BattingTeamID: battingTeam, BowlingTeamID: bowlingTeam}
}

// testPlayers: 101..111 bat, 201..211 bowl.
func testPlayers() map[int]int {
	players := make(map[int]int, 22)
	for i := 0; i < 11; i++ {
		players[101+i] = battingTeam
		players[201+i] = bowlingTeam
	}
	return players
}

func legalBall(over, n, runs int) models.Ball {
	return models.Ball{
		InningID:     1,
		Over:         over,
		BallInOver:   n,
		IsLegal:      true,
		BowlerID:     201,
		BatsmanID:    101,
		NonStrikerID: 102,
		Runs:         models.Runs{Batsman: runs, Total: runs},
	}
}

func bowledBall(over, n int) models.Ball {
	b := legalBall(over, n, 0)
	b.Wicket = &models.Wicket{Type: models.WicketBowled, PlayerOutID: b.BatsmanID}
	return b
}

// sequence lays out legal balls six to an over. wicketDown marks a bowled
// dismissal off that ball.
func sequence(runs ...int) []models.Ball {
	balls := make([]models.Ball, 0, len(runs))
	for i, r := range runs {
		over, n := i/BallsPerOver+1, i%BallsPerOver+1
		if r == wicketDown {
			balls = append(balls, bowledBall(over, n))
			continue
		}
		balls = append(balls, legalBall(over, n, r))
	}
	return balls
}
