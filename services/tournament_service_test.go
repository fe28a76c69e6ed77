package services

import (
	"context"
	"errors"
	"testing"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

func TestCreateTournamentValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{name: "defaults", input: CreateTournamentInput{Name: "Premier League", Season: "2026"}},
		{name: "duplicate", input: CreateTournamentInput{Name: "Premier League", Season: "2026"}, wantErr: ErrConflict},
		{name: "missing name", input: CreateTournamentInput{Season: "2026"}, wantErr: ErrValidationFailed},
		{name: "too many overs", input: CreateTournamentInput{Name: "Test", Season: "2026", OversPerInnings: 51}, wantErr: ErrValidationFailed},
		{name: "negative overs", input: CreateTournamentInput{Name: "Test", Season: "2026", OversPerInnings: -1}, wantErr: ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.tournaments.CreateTournament(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTournament() error = %v", err)
			}
			if got.OversPerInnings != models.DefaultOversPerInnings || got.Status != models.TournamentStatusUpcoming {
				t.Fatalf("tournament = %+v", *got)
			}
		})
	}
}

func TestGenerateFixtures(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tour, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Cup", Season: "2026"})
	if err != nil {
		t.Fatalf("CreateTournament() error = %v", err)
	}
	if _, err := env.tournaments.GenerateFixtures(ctx, tour.ID, GenerateFixturesInput{}); !errors.Is(err, ErrFixturesNeedTwoTeams) {
		t.Fatalf("no teams error = %v, want ErrFixturesNeedTwoTeams", err)
	}
	for _, name := range []string{"Lions", "Tigers", "Bears", "Wolves"} {
		if _, err := env.teams.CreateTeam(ctx, tour.ID, CreateTeamInput{Name: name}); err != nil {
			t.Fatalf("CreateTeam(%s) error = %v", name, err)
		}
	}

	matches, err := env.tournaments.GenerateFixtures(ctx, tour.ID, GenerateFixturesInput{DoubleRoundRobin: true, Venue: "Eden"})
	if err != nil {
		t.Fatalf("GenerateFixtures() error = %v", err)
	}
	if len(matches) != 12 {
		t.Fatalf("got %d matches, want 12", len(matches))
	}
	list, err := env.matches.ListMatches(ctx, tour.ID, ListMatchesInput{Limit: 100})
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if list.Total != 12 || list.Matches[0].Venue != "Eden" || list.Matches[11].MatchNumber != 12 {
		t.Fatalf("stored fixtures = %+v", *list)
	}

	if _, err := env.tournaments.GenerateFixtures(ctx, tour.ID, GenerateFixturesInput{}); !errors.Is(err, ErrFixturesAlreadyExist) {
		t.Fatalf("second run error = %v, want ErrFixturesAlreadyExist", err)
	}
}

func TestTournamentStatusAndTeams(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)

	got, err := env.tournaments.GetTournament(ctx, f.tournament.ID, true)
	if err != nil {
		t.Fatalf("GetTournament() error = %v", err)
	}
	if len(got.Teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(got.Teams))
	}

	if _, err := env.tournaments.UpdateTournamentStatus(ctx, f.tournament.ID, "finished"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("unknown status error = %v", err)
	}
	updated, err := env.tournaments.UpdateTournamentStatus(ctx, f.tournament.ID, models.TournamentStatusOngoing)
	if err != nil {
		t.Fatalf("UpdateTournamentStatus() error = %v", err)
	}
	if updated.Status != models.TournamentStatusOngoing {
		t.Fatalf("status = %s", updated.Status)
	}
	if _, err := env.tournaments.GetTournament(ctx, 424242, false); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("missing tournament error = %v", err)
	}

	if _, err := env.teams.CreateTeam(ctx, f.tournament.ID, CreateTeamInput{Name: "Falcons"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate team error = %v, want ErrConflict", err)
	}
	if _, err := env.teams.CreatePlayer(ctx, f.team1.ID, CreatePlayerInput{Name: "Dup", JerseyNumber: 1, Role: models.PlayerRoleBowler}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate jersey error = %v, want ErrConflict", err)
	}
	if _, err := env.teams.CreatePlayer(ctx, f.team1.ID, CreatePlayerInput{Name: "Odd", JerseyNumber: 99, Role: "captain"}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("bad role error = %v, want ErrValidationFailed", err)
	}

	players, err := env.teams.ListPlayers(ctx, f.team1.ID)
	if err != nil {
		t.Fatalf("ListPlayers() error = %v", err)
	}
	if len(players) != playingXISize || players[0].JerseyNumber != 1 {
		t.Fatalf("players = %+v", players)
	}
}

func TestPointsTableWithoutMatches(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 20)

	rows, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for i, r := range rows {
		if r.Position != i+1 || r.Played != 0 || r.Team == nil {
			t.Errorf("row %d = %+v", i, *r)
		}
	}

	recomputed, err := env.standings.RecomputePointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("RecomputePointsTable() error = %v", err)
	}
	if len(recomputed) != 2 || recomputed[0].Team == nil {
		t.Fatalf("recomputed = %+v", recomputed)
	}
	if _, err := env.standings.GetPointsTable(ctx, 777777); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("missing tournament error = %v", err)
	}
}

func TestRecomputeMatchesIncrementalTable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.newMatch(t, 2)
	playChase(t, env, f)

	before, err := env.standings.GetPointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("GetPointsTable() error = %v", err)
	}
	after, err := env.standings.RecomputePointsTable(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("RecomputePointsTable() error = %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("rows %d vs %d", len(before), len(after))
	}
	for i := range before {
		b, a := before[i], after[i]
		if b.TeamID != a.TeamID || b.Points != a.Points || b.Position != a.Position || b.NetRunRate != a.NetRunRate {
			t.Errorf("row %d: incremental %+v, recomputed %+v", i, *b, *a)
		}
	}
}
