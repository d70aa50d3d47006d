package usecase

import (
	"errors"
	"testing"

	"FinResearch/internal/domain/models"
	"FinResearch/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanIsDeterministic(t *testing.T) {
	g := NewBranchGenerator(testResearchConfig())

	a, err := g.Plan("Acme Corp")
	require.NoError(t, err)
	b, err := g.Plan("Acme Corp")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a, 4)
	assert.Equal(t, DefaultTopics[:4], []string{a[0].Topic, a[1].Topic, a[2].Topic, a[3].Topic})
	assert.Contains(t, a[1].Query, "Acme Corp")
	assert.Contains(t, a[1].Query, "financial health")
}

func TestPlanRejectsBlankCompany(t *testing.T) {
	_, err := NewBranchGenerator(testResearchConfig()).Plan("  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidRequest))
}

func TestPlanUsesConfiguredTopicsAndTemplate(t *testing.T) {
	cfg := config.ResearchConfig{
		BranchCount:   3,
		Topics:        []string{"Supply chain", "Pricing", "Labor", "Unused"},
		QueryTemplate: "{topic} at {company}?",
	}
	g := NewBranchGenerator(cfg)
	assert.Equal(t, 3, g.Size())

	branches, err := g.Plan(" Globex ")
	require.NoError(t, err)
	assert.Equal(t, []models.Branch{
		{Topic: "Supply chain", Query: "supply chain at Globex?"},
		{Topic: "Pricing", Query: "pricing at Globex?"},
		{Topic: "Labor", Query: "labor at Globex?"},
	}, branches)
}
