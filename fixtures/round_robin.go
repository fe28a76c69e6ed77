package fixtures

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

var ErrNotEnoughTeams = errors.New("round robin needs at least two teams")

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate builds league matches in which every team meets every other
// team once per leg. The second leg swaps team1 and team2.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	teams := append([]models.Team(nil), params.Teams...)
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeams, len(teams))
	}
	legs := params.Legs
	if legs != 2 {
		legs = 1
	}
	first := params.FirstMatchNumber
	if first <= 0 {
		first = 1
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })

	pairsPerLeg := len(teams) * (len(teams) - 1) / 2
	matches := make([]*models.Match, 0, pairsPerLeg*legs)
	order := 0

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t1, t2 := teams[i].ID, teams[j].ID

			matches = append(matches, &models.Match{
				TournamentID: params.Tournament.ID,
				MatchNumber:  first + order,
				MatchType:    models.MatchTypeLeague,
				Team1ID:      t1,
				Team2ID:      t2,
				Venue:        params.Venue,
				Status:       models.MatchStatusUpcoming,
			})

			if legs == 2 {
				matches = append(matches, &models.Match{
					TournamentID: params.Tournament.ID,
					MatchNumber:  first + order + pairsPerLeg,
					MatchType:    models.MatchTypeLeague,
					Team1ID:      t2,
					Team2ID:      t1,
					Venue:        params.Venue,
					Status:       models.MatchStatusUpcoming,
				})
			}
			order++
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].MatchNumber < matches[j].MatchNumber
	})
	return matches, nil
}
