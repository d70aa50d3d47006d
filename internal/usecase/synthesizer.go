package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinResearch/internal/domain/models"
	domrepo "FinResearch/internal/domain/repository"
	dsvc "FinResearch/internal/domain/service"
	"FinResearch/pkg/logger"
)

// Synthesizer maps market data to display fields and merges branch findings into one narrative.
type Synthesizer struct {
	ai      dsvc.GenerativeAI
	timeout time.Duration
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewSynthesizer(ai dsvc.GenerativeAI, timeout time.Duration, metrics domrepo.Metrics, l *logger.Logger) *Synthesizer {
	if l == nil {
		l = logger.Nop()
	}
	return &Synthesizer{ai: ai, timeout: timeout, metrics: metrics, log: l}
}

func (s *Synthesizer) Synthesize(ctx context.Context, company string, snap models.MarketSnapshot, findings []models.BranchFinding) models.Synthesis {
	out := models.Synthesis{
		Overview:   overviewOf(snap),
		Financials: financialsOf(snap),
	}

	analysis, err := s.narrative(ctx, company, out.Overview, out.Financials, findings)
	if err != nil {
		s.log.Warn("synthesis fell back to concatenated findings",
			logger.String("company", company),
			logger.Error(err),
		)
		s.record("fallback")
		out.Analysis = concatFindings(findings)
		out.SynthesisFallback = true
		return out
	}
	s.record("ok")
	out.Analysis = analysis
	return out
}

func (s *Synthesizer) narrative(ctx context.Context, company string, ov models.Overview, fin models.Financials, findings []models.BranchFinding) (string, error) {
	if s.ai == nil {
		return "", errors.New("no ai provider")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	comp, err := s.ai.Complete(ctx, synthesisPrompt(company, ov, fin, findings), false)
	if s.metrics != nil {
		s.metrics.RecordLatency("synthesis", time.Since(start).Seconds())
	}
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}
	txt := reportText(comp.Text)
	if strings.TrimSpace(txt) == "" {
		return "", errors.New("empty synthesis")
	}
	return txt, nil
}

// concatFindings joins findings in order under their topic headings.
func concatFindings(findings []models.BranchFinding) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s", f.Topic, f.Text))
	}
	return strings.Join(parts, "\n\n")
}

func (s *Synthesizer) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSynthesis(outcome)
	}
}
