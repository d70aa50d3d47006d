package ai

import (
	"context"
	"fmt"
	"strings"

	"FinResearch/internal/domain/models"
)

// Mock answers deterministically without network access. It recognises the three
// prompt shapes the pipeline sends and replies in the JSON layout each one asks for.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (Mock) Complete(ctx context.Context, prompt string, grounding bool) (models.Completion, error) {
	if err := ctx.Err(); err != nil {
		return models.Completion{}, err
	}
	var text string
	switch {
	case strings.Contains(prompt, `"full_report"`):
		text = `{"full_report": "## Summary\n\nOffline report generated without a language model. Configure an AI provider for real analysis."}`
	case strings.Contains(prompt, `"global_competitors"`):
		text = "```json\n{\"global_competitors\": [], \"national_competitors\": []}\n```"
	default:
		text = fmt.Sprintf("```json\n{\"findings\": [%q]}\n```", "No live research performed for "+subject(prompt))
	}
	return models.Completion{Text: text, Grounded: grounding}, nil
}

// subject returns the Topic: line of a branch prompt, or its first non-empty line.
func subject(s string) string {
	first := ""
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "Topic:") {
			return strings.TrimSpace(strings.TrimPrefix(ln, "Topic:"))
		}
		if first == "" {
			first = ln
		}
	}
	return first
}
