// Package seed loads users, tournaments, squads and fixtures from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/services"
)

type File struct {
	Users       []services.CreateUserInput `yaml:"users"`
	Tournaments []Tournament               `yaml:"tournaments"`
}

type Tournament struct {
	Name            string    `yaml:"name"`
	Season          string    `yaml:"season"`
	OversPerInnings int       `yaml:"overs_per_innings"`
	Teams           []Team    `yaml:"teams"`
	Fixtures        *Fixtures `yaml:"fixtures"`
	Matches         []Match   `yaml:"matches"`
}

type Team struct {
	Name      string   `yaml:"name"`
	ShortName string   `yaml:"short_name"`
	Players   []Player `yaml:"players"`
}

type Player struct {
	Name         string              `yaml:"name"`
	JerseyNumber int                 `yaml:"jersey_number"`
	Role         models.PlayerRole   `yaml:"role"`
	BattingStyle models.BattingStyle `yaml:"batting_style"`
}

// Fixtures генерирует круговой турнир вместо явного списка матчей.
type Fixtures struct {
	DoubleRoundRobin bool   `yaml:"double_round_robin"`
	Venue            string `yaml:"venue"`
}

// Match ссылается на команды по имени.
type Match struct {
	Number      int              `yaml:"number"`
	Type        models.MatchType `yaml:"type"`
	Team1       string           `yaml:"team1"`
	Team2       string           `yaml:"team2"`
	Venue       string           `yaml:"venue"`
	ScheduledAt *time.Time       `yaml:"scheduled_at"`
}

type Services struct {
	Auth        services.AuthService
	Tournaments services.TournamentService
	Teams       services.TeamService
	Matches     services.MatchService
}

type Report struct {
	Users       int
	Tournaments int
	Teams       int
	Players     int
	Matches     int
	Skipped     int
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply создаёт записи через сервисы. Уже существующие пользователи и турниры
// пропускаются, поэтому повторный запуск безопасен.
func Apply(ctx context.Context, svc Services, f *File, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	report := &Report{}

	for _, u := range f.Users {
		_, err := svc.Auth.CreateUser(ctx, u)
		switch {
		case errors.Is(err, services.ErrConflict):
			logger.Info("user already exists, skipping", slog.String("email", u.Email))
			report.Skipped++
		case err != nil:
			return report, fmt.Errorf("create user %s: %w", u.Email, err)
		default:
			report.Users++
		}
	}

	for _, t := range f.Tournaments {
		if err := applyTournament(ctx, svc, t, report, logger); err != nil {
			return report, err
		}
	}
	return report, nil
}

func applyTournament(ctx context.Context, svc Services, t Tournament, report *Report, logger *slog.Logger) error {
	tournament, err := svc.Tournaments.CreateTournament(ctx, services.CreateTournamentInput{
		Name:            t.Name,
		Season:          t.Season,
		OversPerInnings: t.OversPerInnings,
	})
	if errors.Is(err, services.ErrConflict) {
		logger.Info("tournament already exists, skipping",
			slog.String("name", t.Name), slog.String("season", t.Season))
		report.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("create tournament %s: %w", t.Name, err)
	}
	report.Tournaments++

	teamIDs := make(map[string]int, len(t.Teams))
	for _, tm := range t.Teams {
		team, err := svc.Teams.CreateTeam(ctx, tournament.ID, services.CreateTeamInput{Name: tm.Name, ShortName: tm.ShortName})
		if err != nil {
			return fmt.Errorf("create team %s: %w", tm.Name, err)
		}
		teamIDs[tm.Name] = team.ID
		report.Teams++

		for _, p := range tm.Players {
			if _, err := svc.Teams.CreatePlayer(ctx, team.ID, services.CreatePlayerInput{
				Name:         p.Name,
				JerseyNumber: p.JerseyNumber,
				Role:         p.Role,
				BattingStyle: p.BattingStyle,
			}); err != nil {
				return fmt.Errorf("create player %s of %s: %w", p.Name, tm.Name, err)
			}
			report.Players++
		}
	}

	if t.Fixtures != nil {
		matches, err := svc.Tournaments.GenerateFixtures(ctx, tournament.ID, services.GenerateFixturesInput{
			DoubleRoundRobin: t.Fixtures.DoubleRoundRobin,
			Venue:            t.Fixtures.Venue,
		})
		if err != nil {
			return fmt.Errorf("generate fixtures for %s: %w", t.Name, err)
		}
		report.Matches += len(matches)
	}

	for _, m := range t.Matches {
		team1, ok := teamIDs[m.Team1]
		if !ok {
			return fmt.Errorf("match %d of %s: unknown team %q", m.Number, t.Name, m.Team1)
		}
		team2, ok := teamIDs[m.Team2]
		if !ok {
			return fmt.Errorf("match %d of %s: unknown team %q", m.Number, t.Name, m.Team2)
		}
		if _, err := svc.Matches.CreateMatch(ctx, tournament.ID, services.CreateMatchInput{
			MatchNumber: m.Number,
			MatchType:   m.Type,
			Team1ID:     team1,
			Team2ID:     team2,
			Venue:       m.Venue,
			ScheduledAt: m.ScheduledAt,
		}); err != nil {
			return fmt.Errorf("create match %d of %s: %w", m.Number, t.Name, err)
		}
		report.Matches++
	}
	return nil
}
