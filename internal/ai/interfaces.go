package ai

import (
	"context"

	"atscore/internal/types"
)

// Provider is the boundary to a remote analysis service. Implementations
// return token usage alongside the report; callers can ignore it.
type Provider interface {
	ScoreResume(ctx context.Context, input types.ScoreResumeInput) (types.ScoreReport, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}
