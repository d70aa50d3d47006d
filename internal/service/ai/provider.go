package ai

import (
	"context"
	"fmt"

	dsvc "FinResearch/internal/domain/service"
	"FinResearch/pkg/config"
	applogger "FinResearch/pkg/logger"
)

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig, l *applogger.Logger) (dsvc.GenerativeAI, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, l)
	case "claude":
		return NewClaude(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Claude.MaxTokens), nil
	case "openai":
		return NewOpenAI(ctx, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

var (
	_ dsvc.GenerativeAI = (*Gemini)(nil)
	_ dsvc.GenerativeAI = (*Claude)(nil)
	_ dsvc.GenerativeAI = (*OpenAI)(nil)
	_ dsvc.GenerativeAI = Mock{}
)
