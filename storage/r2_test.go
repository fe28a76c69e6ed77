package storage

import (
	"context"
	"errors"
	"testing"
)

func TestPublicURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{name: "plain base", base: "https://cdn.example.com", key: "scorecards/m.json", want: "https://cdn.example.com/scorecards/m.json"},
		{name: "base with slash", base: "https://cdn.example.com/", key: "/scorecards/m.json", want: "https://cdn.example.com/scorecards/m.json"},
		{name: "base with path", base: "https://cdn.example.com/archive", key: "m.json", want: "https://cdn.example.com/archive/m.json"},
		{name: "no base", base: "", key: "m.json", want: ""},
		{name: "no key", base: "https://cdn.example.com", key: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := publicURL(tt.base, tt.key); got != tt.want {
				t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
			}
		})
	}
}

func TestScorecardKey(t *testing.T) {
	t.Parallel()

	if got := ScorecardKey(3, 42); got != "scorecards/tournament-3/match-42.json" {
		t.Errorf("ScorecardKey() = %q", got)
	}
}

func TestNewR2StoreRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewR2Store(context.Background(), R2Config{AccountID: "acc", BucketName: "b"})
	if !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("error = %v, want ErrStoreNotConfigured", err)
	}
}
