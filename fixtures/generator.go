package fixtures

import (
	"context"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

type GenerateParams struct {
	Tournament *models.Tournament
	Teams      []models.Team
	// Legs - 1 для одного круга, 2 для двух.
	Legs  int
	Venue string
	// FirstMatchNumber - номер первой создаваемой игры.
	FirstMatchNumber int
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error)

	Name() string
}
