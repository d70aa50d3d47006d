package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/repository"
	"FinResearch/pkg/config"
)

var topicLine = regexp.MustCompile(`(?m)^Topic: (.+)$`)

func topicOf(prompt string) string {
	if m := topicLine.FindStringSubmatch(prompt); m != nil {
		return m[1]
	}
	return ""
}

// inflight tracks the peak number of concurrent external calls.
type inflight struct {
	cur, peak atomic.Int32
}

func (t *inflight) enter() {
	n := t.cur.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (t *inflight) leave() { t.cur.Add(-1) }

type fakeAI struct {
	calls   atomic.Int32
	track   *inflight
	respond func(ctx context.Context, prompt string, grounding bool) (models.Completion, error)
}

func (f *fakeAI) Complete(ctx context.Context, prompt string, grounding bool) (models.Completion, error) {
	f.calls.Add(1)
	if f.track != nil {
		f.track.enter()
		defer f.track.leave()
	}
	return f.respond(ctx, prompt, grounding)
}

var sectionLine = regexp.MustCompile(`(?m)^### (.+)$`)

// narrativeOf builds a synthesis answer that cites every finding section of the
// prompt in the order the prompt lists them.
func narrativeOf(prompt string) string {
	parts := []string{"Acme narrative."}
	for _, m := range sectionLine.FindAllStringSubmatch(prompt, -1) {
		parts = append(parts, m[1]+" is covered.")
	}
	b, _ := json.Marshal(map[string]string{"full_report": strings.Join(parts, " ")})
	return string(b)
}

// researchAI answers branch prompts with one finding naming the topic and
// synthesis prompts with a narrative citing each topic section.
func researchAI() *fakeAI {
	return &fakeAI{respond: func(ctx context.Context, prompt string, grounding bool) (models.Completion, error) {
		if t := topicOf(prompt); t != "" {
			return models.Completion{
				Text:     fmt.Sprintf("```json\n{\"findings\": [%q]}\n```", t+" finding dated 2024-05-01"),
				Grounded: grounding,
				Sources:  []models.Source{{URI: "https://example.com/" + t}},
			}, nil
		}
		return models.Completion{Text: narrativeOf(prompt)}, nil
	}}
}

func failingAI() *fakeAI {
	return &fakeAI{respond: func(context.Context, string, bool) (models.Completion, error) {
		return models.Completion{}, errors.New("provider down")
	}}
}

type fakeMarket struct {
	calls atomic.Int32
	track *inflight
	delay time.Duration
	snap  models.MarketSnapshot
	err   error
}

func (f *fakeMarket) Get(ctx context.Context, ticker string) (models.MarketSnapshot, error) {
	f.calls.Add(1)
	if f.track != nil {
		f.track.enter()
		defer f.track.leave()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return models.MarketSnapshot{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return models.MarketSnapshot{}, err
	}
	if f.err != nil {
		return models.MarketSnapshot{}, f.err
	}
	s := f.snap
	s.Ticker = ticker
	return s, nil
}

func f64(v float64) *float64 { return &v }
func str(v string) *string    { return &v }

func acmeMarket() *fakeMarket {
	return &fakeMarket{snap: models.MarketSnapshot{
		Name:      str("Acme Corporation"),
		Sector:    str("Industrials"),
		MarketCap: f64(1.3e9),
		Price:     f64(10),
		ChangePct: f64(1.5),
		Revenue:   f64(5.4e8),
		NetIncome: f64(-2e7),
		EPS:       f64(1.1),
		PERatio:   f64(9.09),
	}}
}

// flakyStore fails Save while failing is set.
type flakyStore struct {
	*repository.MemoryReportStore
	mu      sync.Mutex
	failing bool
}

func (s *flakyStore) setFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func (s *flakyStore) Save(ctx context.Context, owner string, r models.ResearchReport) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return errors.New("connection refused")
	}
	return s.MemoryReportStore.Save(ctx, owner, r)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ReportEvent
}

func (p *recordingPublisher) PublishReport(_ context.Context, evt models.ReportEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func testResearchConfig() config.ResearchConfig {
	cfg := config.Default().Research
	cfg.BranchTimeout = 2 * time.Second
	cfg.MarketTimeout = 2 * time.Second
	cfg.SynthesisTimeout = 2 * time.Second
	return cfg
}
