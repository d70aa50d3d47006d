package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"FinResearch/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branches(topics ...string) []models.Branch {
	out := make([]models.Branch, 0, len(topics))
	for _, t := range topics {
		out = append(out, models.Branch{Topic: t, Query: "q " + t})
	}
	return out
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	topics := []string{"A", "B", "C", "D", "E"}
	delays := map[string]time.Duration{"A": 80 * time.Millisecond, "B": 10 * time.Millisecond, "C": 50 * time.Millisecond, "D": 0, "E": 30 * time.Millisecond}
	ai := &fakeAI{respond: func(ctx context.Context, prompt string, grounding bool) (models.Completion, error) {
		topic := topicOf(prompt)
		time.Sleep(delays[topic])
		return models.Completion{Text: fmt.Sprintf(`{"findings": [%q]}`, topic), Grounded: true}, nil
	}}
	a := NewBranchAnalyzer(ai, BranchAnalyzerConfig{Timeout: time.Second}, nil, nil)

	out := a.Analyze(context.Background(), branches(topics...))
	require.Len(t, out, 5)
	for i, f := range out {
		assert.Equal(t, topics[i], f.Topic)
		assert.Equal(t, "- "+topics[i], f.Text)
		assert.True(t, f.OK)
	}
}

func TestAnalyzeTimeoutFallsBack(t *testing.T) {
	ai := &fakeAI{respond: func(ctx context.Context, prompt string, grounding bool) (models.Completion, error) {
		if topicOf(prompt) == "Slow" {
			<-ctx.Done()
			return models.Completion{}, ctx.Err()
		}
		return models.Completion{Text: `{"findings": ["ok"]}`, Grounded: true}, nil
	}}
	a := NewBranchAnalyzer(ai, BranchAnalyzerConfig{Timeout: 30 * time.Millisecond}, nil, nil)

	out := a.Analyze(context.Background(), branches("Fast", "Slow"))
	assert.True(t, out[0].OK)
	assert.False(t, out[1].OK)
	assert.Equal(t, "Analysis of slow is temporarily unavailable. No verified findings could be retrieved for this area.", out[1].Text)
}

func TestAnalyzeEmptyFindingsFallsBack(t *testing.T) {
	ai := &fakeAI{respond: func(context.Context, string, bool) (models.Completion, error) {
		return models.Completion{Text: "```json\n{\"findings\": []}\n```", Grounded: true}, nil
	}}
	a := NewBranchAnalyzer(ai, BranchAnalyzerConfig{Fallback: "No data for {topic}."}, nil, nil)

	out := a.Analyze(context.Background(), branches("Risk factors"))
	assert.False(t, out[0].OK)
	assert.Equal(t, "No data for risk factors.", out[0].Text)
}

func TestAnalyzeRequiresGrounding(t *testing.T) {
	ai := &fakeAI{respond: func(context.Context, string, bool) (models.Completion, error) {
		return models.Completion{Text: `{"findings": ["unverified"]}`, Grounded: false}, nil
	}}
	strict := NewBranchAnalyzer(ai, BranchAnalyzerConfig{RequireGrounding: true}, nil, nil)
	lenient := NewBranchAnalyzer(ai, BranchAnalyzerConfig{}, nil, nil)

	assert.False(t, strict.Analyze(context.Background(), branches("A"))[0].OK)
	assert.True(t, lenient.Analyze(context.Background(), branches("A"))[0].OK)
}

func TestAnalyzeKeepsSources(t *testing.T) {
	src := []models.Source{{URI: "https://example.com/x", Title: "X"}}
	ai := &fakeAI{respond: func(context.Context, string, bool) (models.Completion, error) {
		return models.Completion{Text: "Plain answer.", Grounded: true, Sources: src}, nil
	}}
	out := NewBranchAnalyzer(ai, BranchAnalyzerConfig{}, nil, nil).Analyze(context.Background(), branches("A"))
	assert.Equal(t, models.BranchFinding{Topic: "A", Text: "Plain answer.", OK: true, Sources: src}, out[0])
}
