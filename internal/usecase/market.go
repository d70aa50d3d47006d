package usecase

import (
	"context"
	"strings"
	"time"

	"FinResearch/internal/domain/models"
	domrepo "FinResearch/internal/domain/repository"
	dsvc "FinResearch/internal/domain/service"
	"FinResearch/pkg/logger"
)

// MarketAdapter wraps a market data provider and never fails: any provider error,
// timeout or missing ticker produces a synthetic snapshot.
type MarketAdapter struct {
	provider dsvc.MarketDataProvider
	timeout  time.Duration
	metrics  domrepo.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewMarketAdapter(provider dsvc.MarketDataProvider, timeout time.Duration, metrics domrepo.Metrics, l *logger.Logger) *MarketAdapter {
	if l == nil {
		l = logger.Nop()
	}
	return &MarketAdapter{provider: provider, timeout: timeout, metrics: metrics, log: l, now: time.Now}
}

func (a *MarketAdapter) Fetch(ctx context.Context, ticker string) models.MarketSnapshot {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || a.provider == nil {
		a.record("skipped")
		return models.SyntheticSnapshot(ticker, a.now().UTC())
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := a.provider.Get(ctx, ticker)
	if a.metrics != nil {
		a.metrics.RecordLatency("market", time.Since(start).Seconds())
	}
	if err != nil {
		a.log.Warn("market data unavailable, using placeholders",
			logger.String("ticker", ticker),
			logger.Error(err),
		)
		a.record("synthetic")
		return models.SyntheticSnapshot(ticker, a.now().UTC())
	}
	snap.Ticker = ticker
	snap.Synthetic = false
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = a.now().UTC()
	}
	a.record("ok")
	return snap
}

func (a *MarketAdapter) record(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordMarket(outcome)
	}
}
