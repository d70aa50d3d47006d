package usecase

import (
	"strings"
	"sync"
	"time"

	"FinResearch/internal/domain/models"

	"github.com/google/uuid"
)

// Clock hands out millisecond UTC timestamps that never go backwards.
type Clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

// Assembler stamps identity onto a synthesis and freezes it as a report.
type Assembler struct {
	clock *Clock
	newID func() string
}

func NewAssembler(clock *Clock) *Assembler {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Assembler{clock: clock, newID: uuid.NewString}
}

func (a *Assembler) Assemble(req models.ResearchRequest, snap models.MarketSnapshot, findings []models.BranchFinding, syn models.Synthesis, competitive *models.CompetitiveAnalysis) models.ResearchReport {
	deg := models.Degradation{
		SyntheticMarketData: snap.Synthetic,
		SynthesisFallback:   syn.SynthesisFallback,
	}
	for _, f := range findings {
		if !f.OK {
			deg.FallbackBranches = append(deg.FallbackBranches, f.Topic)
		}
	}
	r := models.ResearchReport{
		ID:          a.newID(),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Ticker:      strings.ToUpper(strings.TrimSpace(req.Ticker)),
		Timestamp:   a.clock.Now(),
		Data: models.ReportData{
			Overview:    syn.Overview,
			Financials:  syn.Financials,
			Analysis:    syn.Analysis,
			Competitive: competitive,
		},
		Branches:    findings,
		Degradation: deg,
	}
	return r.Clone()
}
