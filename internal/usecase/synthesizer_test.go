package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"FinResearch/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleFindings = []models.BranchFinding{
	{Topic: "Competitive position", Text: "- Leads its niche.", OK: true},
	{Topic: "Financial health", Text: "Analysis unavailable.", OK: false},
	{Topic: "Recent catalysts", Text: "- New plant opened 2024-03-01.", OK: true},
}

func TestSynthesizeUsesModelNarrative(t *testing.T) {
	var prompt string
	ai := &fakeAI{respond: func(_ context.Context, p string, grounding bool) (models.Completion, error) {
		prompt = p
		assert.False(t, grounding)
		return models.Completion{Text: "```json\n{\"full_report\": \"## Story\\n\\nIt went well.\"}\n```"}, nil
	}}
	s := NewSynthesizer(ai, time.Second, nil, nil)

	out := s.Synthesize(context.Background(), "Acme Corp", acmeMarket().snap, sampleFindings)
	assert.False(t, out.SynthesisFallback)
	assert.Equal(t, "## Story\n\nIt went well.", out.Analysis)
	assert.Equal(t, "$10.00", out.Overview.Price)

	i := strings.Index(prompt, "### Competitive position")
	j := strings.Index(prompt, "### Financial health")
	k := strings.Index(prompt, "### Recent catalysts")
	require.True(t, i >= 0 && j > i && k > j, "findings must appear in plan order")
	assert.Contains(t, prompt, "Price: $10.00")
}

func TestSynthesizeFallsBackToConcatenation(t *testing.T) {
	s := NewSynthesizer(failingAI(), time.Second, nil, nil)

	out := s.Synthesize(context.Background(), "Acme Corp", models.SyntheticSnapshot("", time.Time{}), sampleFindings)
	assert.True(t, out.SynthesisFallback)
	assert.Equal(t,
		"## Competitive position\n\n- Leads its niche.\n\n"+
			"## Financial health\n\nAnalysis unavailable.\n\n"+
			"## Recent catalysts\n\n- New plant opened 2024-03-01.",
		out.Analysis)
	assert.Equal(t, models.Placeholder, out.Financials.Revenue)
}

func TestSynthesizeEmptyAnswerFallsBack(t *testing.T) {
	ai := &fakeAI{respond: func(context.Context, string, bool) (models.Completion, error) {
		return models.Completion{Text: `{"full_report": "   "}`}, nil
	}}
	out := NewSynthesizer(ai, time.Second, nil, nil).Synthesize(context.Background(), "Acme", acmeMarket().snap, sampleFindings)
	assert.True(t, out.SynthesisFallback)
	assert.True(t, strings.HasPrefix(out.Analysis, "## Competitive position"))
}

func TestSynthesizeWithoutProvider(t *testing.T) {
	out := NewSynthesizer(nil, time.Second, nil, nil).Synthesize(context.Background(), "Acme", acmeMarket().snap, sampleFindings)
	assert.True(t, out.SynthesisFallback)
	assert.NotEmpty(t, out.Analysis)
}
