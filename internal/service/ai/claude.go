package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinResearch/internal/domain/models"
	svcmetrics "FinResearch/internal/service/metrics"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude completes prompts with the Anthropic Messages API. It has no search grounding,
// so every completion is reported as ungrounded.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func NewClaude(apiKey, model string, maxTokens int, opts ...option.RequestOption) *Claude {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Claude{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *Claude) Complete(ctx context.Context, prompt string, _ bool) (out models.Completion, err error) {
	start := time.Now()
	defer func() { svcmetrics.Observe("claude", "messages", start, err) }()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return models.Completion{}, fmt.Errorf("claude messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return models.Completion{Text: sb.String()}, nil
}
