package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"FinResearch/internal/domain/models"
	domrepo "FinResearch/internal/domain/repository"
	dsvc "FinResearch/internal/domain/service"
	"FinResearch/pkg/logger"
	"FinResearch/pkg/util"
)

const DefaultBranchFallback = "Analysis of {topic} is temporarily unavailable. No verified findings could be retrieved for this area."

var errUngrounded = errors.New("completion was not grounded in web search")

// BranchAnalyzer runs one AI call per branch concurrently. A branch that errors,
// times out or returns nothing usable yields fallback text; siblings are unaffected.
type BranchAnalyzer struct {
	ai               dsvc.GenerativeAI
	timeout          time.Duration
	fallback         string
	requireGrounding bool
	metrics          domrepo.Metrics
	log              *logger.Logger
	now              func() time.Time
}

func NewBranchAnalyzer(ai dsvc.GenerativeAI, cfg BranchAnalyzerConfig, metrics domrepo.Metrics, l *logger.Logger) *BranchAnalyzer {
	if l == nil {
		l = logger.Nop()
	}
	fb := cfg.Fallback
	if strings.TrimSpace(fb) == "" {
		fb = DefaultBranchFallback
	}
	return &BranchAnalyzer{
		ai:               ai,
		timeout:          cfg.Timeout,
		fallback:         fb,
		requireGrounding: cfg.RequireGrounding,
		metrics:          metrics,
		log:              l,
		now:              time.Now,
	}
}

type BranchAnalyzerConfig struct {
	Timeout          time.Duration
	Fallback         string
	RequireGrounding bool
}

// Analyze returns exactly one finding per branch, in input order.
func (a *BranchAnalyzer) Analyze(ctx context.Context, branches []models.Branch) []models.BranchFinding {
	type item struct {
		idx     int
		finding models.BranchFinding
	}
	ch := make(chan item, len(branches))
	var wg sync.WaitGroup

	for i, b := range branches {
		wg.Add(1)
		go func(i int, b models.Branch) {
			defer wg.Done()
			ch <- item{i, a.analyzeOne(ctx, b)}
		}(i, b)
	}

	go func() { wg.Wait(); close(ch) }()

	out := make([]models.BranchFinding, len(branches))
	for it := range ch {
		out[it.idx] = it.finding
	}
	return out
}

func (a *BranchAnalyzer) analyzeOne(parent context.Context, b models.Branch) models.BranchFinding {
	ctx := parent
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, a.timeout)
		defer cancel()
	}

	start := time.Now()
	comp, err := a.ai.Complete(ctx, branchPrompt(b, util.Today(a.now())), true)
	if a.metrics != nil {
		a.metrics.RecordLatency("branch", time.Since(start).Seconds())
	}
	if err == nil && a.requireGrounding && !comp.Grounded {
		err = errUngrounded
	}
	if err != nil {
		return a.fail(b, err)
	}

	body := findingsText(comp.Text)
	if strings.TrimSpace(body) == "" {
		return a.fail(b, fmt.Errorf("no findings in answer %q", util.Truncate(comp.Text, 120)))
	}
	a.record("ok")
	return models.BranchFinding{Topic: b.Topic, Text: body, OK: true, Sources: comp.Sources}
}

func (a *BranchAnalyzer) fail(b models.Branch, err error) models.BranchFinding {
	a.log.Warn("branch analysis fell back",
		logger.String("topic", b.Topic),
		logger.Error(err),
	)
	a.record("fallback")
	return models.BranchFinding{
		Topic: b.Topic,
		Text:  strings.ReplaceAll(a.fallback, "{topic}", strings.ToLower(b.Topic)),
		OK:    false,
	}
}

func (a *BranchAnalyzer) record(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordBranch(outcome)
	}
}
