package ai

import (
	"context"
	"fmt"
	"time"

	"FinResearch/internal/domain/models"
	svcmetrics "FinResearch/internal/service/metrics"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAI completes prompts with any OpenAI-compatible chat endpoint. No grounding.
type OpenAI struct {
	chat model.BaseChatModel
}

func NewOpenAI(ctx context.Context, baseURL, apiKey, modelName string) (*OpenAI, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat model: %w", err)
	}
	return &OpenAI{chat: cm}, nil
}

func (o *OpenAI) Complete(ctx context.Context, prompt string, _ bool) (out models.Completion, err error) {
	start := time.Now()
	defer func() { svcmetrics.Observe("openai", "chat", start, err) }()

	msg, err := o.chat.Generate(ctx, []*schema.Message{
		{Role: schema.User, Content: prompt},
	})
	if err != nil {
		return models.Completion{}, fmt.Errorf("openai generate: %w", err)
	}
	if msg == nil {
		return models.Completion{}, nil
	}
	return models.Completion{Text: msg.Content}, nil
}
