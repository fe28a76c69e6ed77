package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/db"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/fixtures"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/repositories"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/storage"
)

type testEnv struct {
	db          *sql.DB
	tournaments TournamentService
	teams       TeamService
	matches     MatchService
	innings     InningService
	scoring     ScoringService
	stats       StatsService
	standings   StandingsService
	scorecards  ScorecardService
	auth        AuthService
}

func newTestEnv(t *testing.T, store storage.ObjectStore) *testEnv {
	t.Helper()

	sqlDB, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "cricket.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(context.Background(), sqlDB, db.DriverSQLite); err != nil {
		t.Fatalf("db.Migrate() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userRepo := repositories.NewUserRepository(sqlDB)
	tournamentRepo := repositories.NewTournamentRepository(sqlDB)
	teamRepo := repositories.NewTeamRepository(sqlDB)
	playerRepo := repositories.NewPlayerRepository(sqlDB)
	matchRepo := repositories.NewMatchRepository(sqlDB)
	xiRepo := repositories.NewPlayingXIRepository(sqlDB)
	inningRepo := repositories.NewInningRepository(sqlDB)
	ballRepo := repositories.NewBallRepository(sqlDB)
	statsRepo := repositories.NewMatchPlayerStatsRepository(sqlDB)
	standingRepo := repositories.NewTournamentStandingRepository(sqlDB)

	return &testEnv{
		db:          sqlDB,
		tournaments: NewTournamentService(sqlDB, tournamentRepo, teamRepo, matchRepo, fixtures.NewRoundRobinGenerator(), models.DefaultOversPerInnings, logger),
		teams:       NewTeamService(tournamentRepo, teamRepo, playerRepo, logger),
		matches:     NewMatchService(sqlDB, tournamentRepo, teamRepo, playerRepo, matchRepo, inningRepo, ballRepo, xiRepo, standingRepo, logger),
		innings:     NewInningService(sqlDB, tournamentRepo, teamRepo, matchRepo, inningRepo, ballRepo, xiRepo, standingRepo, models.DefaultOversPerInnings, logger),
		scoring:     NewScoringService(sqlDB, tournamentRepo, teamRepo, matchRepo, inningRepo, ballRepo, xiRepo, playerRepo, statsRepo, standingRepo, models.DefaultOversPerInnings, logger),
		stats:       NewStatsService(sqlDB, matchRepo, inningRepo, ballRepo, statsRepo, logger),
		standings:   NewStandingsService(sqlDB, standingRepo, tournamentRepo, teamRepo, matchRepo, inningRepo, ballRepo, logger),
		scorecards:  NewScorecardService(matchRepo, teamRepo, inningRepo, ballRepo, statsRepo, store, logger),
		auth:        NewAuthService(userRepo, logger),
	}
}

// matchFixture is a match between two full squads. Team1 wins the toss and
// bats, both playing XIs are set.
type matchFixture struct {
	tournament *models.Tournament
	team1      *models.Team
	team2      *models.Team
	squads     map[int][]int
	match      *models.Match
}

func (e *testEnv) createTeam(t *testing.T, tournamentID int, name string) (*models.Team, []int) {
	t.Helper()
	ctx := context.Background()

	team, err := e.teams.CreateTeam(ctx, tournamentID, CreateTeamInput{Name: name, ShortName: name[:3]})
	if err != nil {
		t.Fatalf("CreateTeam(%s) error = %v", name, err)
	}
	ids := make([]int, 0, playingXISize)
	for i := 1; i <= playingXISize; i++ {
		p, err := e.teams.CreatePlayer(ctx, team.ID, CreatePlayerInput{
			Name:         fmt.Sprintf("%s Player %d", name, i),
			JerseyNumber: i,
			Role:         models.PlayerRoleAllRounder,
		})
		if err != nil {
			t.Fatalf("CreatePlayer(%s #%d) error = %v", name, i, err)
		}
		ids = append(ids, p.ID)
	}
	return team, ids
}

func xiInput(ids []int) PlayingXIInput {
	players := make([]PlayingXIPlayer, 0, len(ids))
	for i, id := range ids {
		players = append(players, PlayingXIPlayer{PlayerID: id, IsCaptain: i == 0, IsWicketKeeper: i == 1})
	}
	return PlayingXIInput{Players: players}
}

func (e *testEnv) newMatch(t *testing.T, overs int) *matchFixture {
	t.Helper()
	ctx := context.Background()

	tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Test League", Season: t.Name(), OversPerInnings: overs})
	if err != nil {
		t.Fatalf("CreateTournament() error = %v", err)
	}
	team1, squad1 := e.createTeam(t, tour.ID, "Falcons")
	team2, squad2 := e.createTeam(t, tour.ID, "Hawks")

	m, err := e.matches.CreateMatch(ctx, tour.ID, CreateMatchInput{Team1ID: team1.ID, Team2ID: team2.ID, Venue: "Oval"})
	if err != nil {
		t.Fatalf("CreateMatch() error = %v", err)
	}
	if _, err := e.matches.RecordToss(ctx, m.ID, TossInput{WinnerID: team1.ID, Decision: models.TossDecisionBat}); err != nil {
		t.Fatalf("RecordToss() error = %v", err)
	}
	if _, err := e.matches.SetPlayingXI(ctx, m.ID, team1.ID, xiInput(squad1)); err != nil {
		t.Fatalf("SetPlayingXI(team1) error = %v", err)
	}
	if _, err := e.matches.SetPlayingXI(ctx, m.ID, team2.ID, xiInput(squad2)); err != nil {
		t.Fatalf("SetPlayingXI(team2) error = %v", err)
	}

	return &matchFixture{
		tournament: tour,
		team1:      team1,
		team2:      team2,
		squads:     map[int][]int{team1.ID: squad1, team2.ID: squad2},
		match:      m,
	}
}

func (e *testEnv) startInning(t *testing.T, f *matchFixture, number int) *models.Inning {
	t.Helper()
	in, err := e.innings.StartInning(context.Background(), f.match.ID, StartInningInput{InningNumber: number})
	if err != nil {
		t.Fatalf("StartInning(%d) error = %v", number, err)
	}
	return in
}

// scorer feeds balls into one innings and tracks who is on strike.
type scorer struct {
	t          *testing.T
	env        *testEnv
	inning     *models.Inning
	batters    []int
	bowlers    []int
	striker    int
	nonStriker int
	nextIn     int
}

func (e *testEnv) scorerFor(t *testing.T, f *matchFixture, inning *models.Inning) *scorer {
	batters := f.squads[inning.BattingTeamID]
	return &scorer{
		t:          t,
		env:        e,
		inning:     inning,
		batters:    batters,
		bowlers:    f.squads[inning.BowlingTeamID],
		striker:    batters[0],
		nonStriker: batters[1],
		nextIn:     2,
	}
}

func (s *scorer) input(over, n int) RecordBallInput {
	return RecordBallInput{
		Over:         over,
		BallInOver:   n,
		BowlerID:     s.bowlers[10-(over-1)%2],
		BatsmanID:    s.striker,
		NonStrikerID: s.nonStriker,
	}
}

func (s *scorer) record(in RecordBallInput) (*BallRecorded, error) {
	return s.env.scoring.RecordBall(context.Background(), s.inning.ID, in)
}

func (s *scorer) mustRecord(in RecordBallInput) *BallRecorded {
	s.t.Helper()
	res, err := s.record(in)
	if err != nil {
		s.t.Fatalf("RecordBall(%d.%d) error = %v", in.Over, in.BallInOver, err)
	}
	return res
}

func (s *scorer) runs(over, n, runs int) *BallRecorded {
	s.t.Helper()
	in := s.input(over, n)
	in.Runs = RunsInput{Batsman: runs}
	return s.mustRecord(in)
}

func (s *scorer) bowled(over, n int) *BallRecorded {
	s.t.Helper()
	in := s.input(over, n)
	in.Wicket = &WicketInput{Type: models.WicketBowled, PlayerOutID: s.striker}
	res := s.mustRecord(in)
	if s.nextIn < len(s.batters) {
		s.striker = s.batters[s.nextIn]
		s.nextIn++
	}
	return res
}

func (s *scorer) wide(over, n, extras int) *BallRecorded {
	s.t.Helper()
	in := s.input(over, n)
	legal := false
	wide := models.ExtraWide
	in.IsLegal = &legal
	in.ExtraType = &wide
	in.Runs = RunsInput{Extras: extras}
	return s.mustRecord(in)
}

// pattern records legal balls six to an over. wicket marks a bowled
// dismissal.
const wicket = -1

func (s *scorer) pattern(balls ...int) *BallRecorded {
	s.t.Helper()
	var last *BallRecorded
	for i, r := range balls {
		over, n := i/6+1, i%6+1
		if r == wicket {
			last = s.bowled(over, n)
			continue
		}
		last = s.runs(over, n, r)
	}
	return last
}

func withoutIDs(stats []models.MatchPlayerStats) []models.MatchPlayerStats {
	out := make([]models.MatchPlayerStats, len(stats))
	for i, st := range stats {
		st.ID = 0
		out[i] = st
	}
	return out
}

func standingFor(t *testing.T, rows []*models.TournamentStanding, teamID int) *models.TournamentStanding {
	t.Helper()
	for _, r := range rows {
		if r.TeamID == teamID {
			return r
		}
	}
	t.Fatalf("no standing for team %d", teamID)
	return nil
}
