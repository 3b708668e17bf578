package inference

import (
	"context"

	"github.com/at-ishikawa/notekeeper/internal/summary"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_narrator.go -package=mock_inference

// Narrator rewrites a computed digest as a short narrative.
type Narrator interface {
	Narrate(ctx context.Context, req NarrateRequest) (string, error)
}

// NarrateRequest holds the digest of a period to narrate
type NarrateRequest struct {
	Period string         `json:"period"`
	Digest summary.Digest `json:"digest"`
}

const (
	DefaultMaxRetryAttempts = 3
)
