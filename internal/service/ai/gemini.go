package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinResearch/internal/domain/models"
	svcmetrics "FinResearch/internal/service/metrics"
	applogger "FinResearch/pkg/logger"

	"google.golang.org/genai"
)

// groundingUnsupported is the provider message returned by models without search grounding.
const groundingUnsupported = "Search Grounding is not supported"

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini completes prompts with Google Gemini, using Google Search as the grounding tool.
type Gemini struct {
	model    string
	generate generateFunc
	log      *applogger.Logger
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, apiKey, model string, l *applogger.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{model: model, generate: client.Models.GenerateContent, log: l}, nil
}

// Complete sends prompt to Gemini. When grounding is requested but the model rejects the
// search tool, the call is repeated once without it and the completion is marked ungrounded.
func (g *Gemini) Complete(ctx context.Context, prompt string, grounding bool) (models.Completion, error) {
	start := time.Now()
	resp, grounded, err := g.call(ctx, prompt, grounding)
	svcmetrics.Observe("gemini", "generate", start, err)
	if err != nil {
		return models.Completion{}, err
	}
	out := extract(resp)
	out.Grounded = grounded
	return out, nil
}

func (g *Gemini) call(ctx context.Context, prompt string, grounding bool) (*genai.GenerateContentResponse, bool, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	if !grounding {
		resp, err := g.generate(ctx, g.model, contents, nil)
		if err != nil {
			return nil, false, fmt.Errorf("gemini generate: %w", err)
		}
		return resp, false, nil
	}

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	resp, err := g.generate(ctx, g.model, contents, cfg)
	if err == nil {
		return resp, true, nil
	}
	if !strings.Contains(err.Error(), groundingUnsupported) {
		return nil, false, fmt.Errorf("gemini grounded generate: %w", err)
	}

	g.log.Warn("gemini grounding unsupported, retrying without search", applogger.String("model", g.model))
	resp, err = g.generate(ctx, g.model, contents, nil)
	if err != nil {
		return nil, false, fmt.Errorf("gemini generate: %w", err)
	}
	return resp, false, nil
}

func extract(resp *genai.GenerateContentResponse) models.Completion {
	var out models.Completion
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	cand := resp.Candidates[0]

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	out.Text = sb.String()

	if gm := cand.GroundingMetadata; gm != nil {
		seen := make(map[string]bool)
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			out.Sources = append(out.Sources, models.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return out
}
