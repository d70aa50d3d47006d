package usecase

import (
	"strings"

	"FinResearch/internal/domain/models"
	"FinResearch/pkg/config"
)

// DefaultTopics are the analytical angles used when none are configured.
var DefaultTopics = []string{
	"Competitive position",
	"Financial health",
	"Recent catalysts",
	"Risk factors",
	"Management and strategy",
	"Market outlook",
}

const DefaultQueryTemplate = "Analyze the current state of {company} with respect to {topic}. " +
	"Cover recent developments, dated facts from filings and reputable news, and how they relate to the company's outlook."

// BranchGenerator splits a company into a fixed number of topic branches.
// The same name always yields the same branches.
type BranchGenerator struct {
	topics   []string
	template string
}

func NewBranchGenerator(cfg config.ResearchConfig) *BranchGenerator {
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	n := cfg.BranchCount
	if n <= 0 || n > len(topics) {
		n = len(topics)
	}
	tmpl := cfg.QueryTemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultQueryTemplate
	}
	return &BranchGenerator{topics: append([]string(nil), topics[:n]...), template: tmpl}
}

// Plan returns the branches for companyName in topic order.
func (g *BranchGenerator) Plan(companyName string) ([]models.Branch, error) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return nil, &models.ValidationError{Field: "company_name", Reason: "is required"}
	}
	out := make([]models.Branch, 0, len(g.topics))
	for _, topic := range g.topics {
		q := strings.NewReplacer("{company}", name, "{topic}", strings.ToLower(topic)).Replace(g.template)
		out = append(out, models.Branch{Topic: topic, Query: q})
	}
	return out, nil
}

// Size is the number of branches every plan contains.
func (g *BranchGenerator) Size() int { return len(g.topics) }
