package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"FinResearch/internal/domain/models"
	dsvc "FinResearch/internal/domain/service"
	"FinResearch/pkg/logger"

	"golang.org/x/sync/errgroup"
)

var competitorTicker = regexp.MustCompile(`^[A-Z]{1,5}$`)

// CompetitorFinder asks the AI provider for peer tickers and formats their market data.
type CompetitorFinder struct {
	ai      dsvc.GenerativeAI
	market  *MarketAdapter
	max     int
	limit   int
	timeout time.Duration
	log     *logger.Logger
}

// NewCompetitorFinder bounds peer market lookups to limit concurrent calls.
func NewCompetitorFinder(ai dsvc.GenerativeAI, market *MarketAdapter, max, limit int, timeout time.Duration, l *logger.Logger) *CompetitorFinder {
	if l == nil {
		l = logger.Nop()
	}
	if max <= 0 {
		max = 5
	}
	if limit <= 0 {
		limit = 1
	}
	return &CompetitorFinder{ai: ai, market: market, max: max, limit: limit, timeout: timeout, log: l}
}

// Find returns nil when no usable competitor could be resolved.
func (f *CompetitorFinder) Find(ctx context.Context, ticker string) *models.CompetitiveAnalysis {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	global, national, err := f.peers(ctx, ticker)
	if err != nil {
		f.log.Warn("competitor lookup failed", logger.String("ticker", ticker), logger.Error(err))
		return nil
	}

	snaps := f.fetchAll(ctx, append(append([]string(nil), global...), national...))
	out := &models.CompetitiveAnalysis{
		Global:   competitorRows(global, snaps),
		National: competitorRows(national, snaps),
	}
	if len(out.Global) == 0 && len(out.National) == 0 {
		return nil
	}
	return out
}

func (f *CompetitorFinder) peers(ctx context.Context, ticker string) ([]string, []string, error) {
	comp, err := f.ai.Complete(ctx, competitorPrompt(ticker), true)
	if err != nil {
		return nil, nil, err
	}
	body, ok := extractJSON(comp.Text)
	if !ok {
		return nil, nil, errors.New("no competitor JSON in response")
	}
	var payload struct {
		Global   []string `json:"global_competitors"`
		National []string `json:"national_competitors"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, nil, err
	}
	return sanitizeTickers(payload.Global, ticker, f.max), sanitizeTickers(payload.National, ticker, f.max), nil
}

func (f *CompetitorFinder) fetchAll(ctx context.Context, tickers []string) map[string]models.MarketSnapshot {
	var (
		mu  sync.Mutex
		out = make(map[string]models.MarketSnapshot, len(tickers))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		if seen[t] {
			continue
		}
		seen[t] = true
		t := t
		g.Go(func() error {
			snap := f.market.Fetch(gctx, t)
			if snap.Synthetic {
				return nil
			}
			mu.Lock()
			out[t] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func competitorRows(tickers []string, snaps map[string]models.MarketSnapshot) []models.CompetitorData {
	rows := make([]models.CompetitorData, 0, len(tickers))
	for _, t := range tickers {
		snap, ok := snaps[t]
		if !ok {
			continue
		}
		rows = append(rows, models.CompetitorData{
			Ticker:     t,
			Overview:   overviewOf(snap),
			Financials: financialsOf(snap),
		})
	}
	return rows
}

// sanitizeTickers keeps unique, well-formed symbols other than self, up to max.
func sanitizeTickers(in []string, self string, max int) []string {
	out := make([]string, 0, max)
	seen := map[string]bool{self: true}
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if !competitorTicker.MatchString(t) || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}
