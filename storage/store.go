package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrStoreNotConfigured = errors.New("object storage is not configured")

type PutResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	ETag     string `json:"etag,omitempty"`
}

// ObjectStore - S3-совместимое хранилище архивов.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*PutResult, error)

	Delete(ctx context.Context, key string) error

	PublicURL(key string) string
}

// ScorecardKey is the object key of a match scorecard archive.
func ScorecardKey(tournamentID, matchID int) string {
	return fmt.Sprintf("scorecards/tournament-%d/match-%d.json", tournamentID, matchID)
}
