package service

import (
	"context"

	"FinResearch/internal/domain/models"
)

// GenerativeAI completes a prompt, optionally augmented with live web search.
type GenerativeAI interface {
	Complete(ctx context.Context, prompt string, grounding bool) (models.Completion, error)
}

// MarketDataProvider returns provider data for a ticker normalized into a snapshot.
// Missing provider fields stay nil; an unknown ticker is an error.
type MarketDataProvider interface {
	Get(ctx context.Context, ticker string) (models.MarketSnapshot, error)
}
