package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"FinResearch/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTickers(t *testing.T) {
	got := sanitizeTickers([]string{"msft", "ACME", "GOOGL", "msft", "BRK.B", "TOOLONG", " orcl ", "IBM", "SAP", "NVDA"}, "ACME", 4)
	assert.Equal(t, []string{"MSFT", "GOOGL", "ORCL", "IBM"}, got)
}

func competitorAI(reply string) *fakeAI {
	return &fakeAI{respond: func(context.Context, string, bool) (models.Completion, error) {
		return models.Completion{Text: reply, Grounded: true}, nil
	}}
}

func TestFindCompetitors(t *testing.T) {
	ai := competitorAI("```json\n{\"global_competitors\": [\"GLBX\", \"INIT\"], \"national_competitors\": [\"GLBX\", \"UMBR\"]}\n```")
	market := &fakeMarketByTicker{fail: map[string]bool{"INIT": true}}
	f := NewCompetitorFinder(ai, NewMarketAdapter(market, time.Second, nil, nil), 5, 2, time.Second, nil)

	out := f.Find(context.Background(), "ACME")
	require.NotNil(t, out)
	require.Len(t, out.Global, 1)
	assert.Equal(t, "GLBX", out.Global[0].Ticker)
	assert.Equal(t, "$10.00", out.Global[0].Price)
	require.Len(t, out.National, 2)
	assert.Equal(t, "UMBR", out.National[1].Ticker)
	// GLBX is listed twice but fetched once
	assert.EqualValues(t, 3, market.calls.Load())
	assert.LessOrEqual(t, market.peak.Load(), int32(2))
}

func TestFindCompetitorsNothingUsable(t *testing.T) {
	f := NewCompetitorFinder(competitorAI("no idea"), NewMarketAdapter(acmeMarket(), time.Second, nil, nil), 5, 2, time.Second, nil)
	assert.Nil(t, f.Find(context.Background(), "ACME"))

	f = NewCompetitorFinder(failingAI(), NewMarketAdapter(acmeMarket(), time.Second, nil, nil), 5, 2, time.Second, nil)
	assert.Nil(t, f.Find(context.Background(), "ACME"))
}

type fakeMarketByTicker struct {
	inflight
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeMarketByTicker) Get(ctx context.Context, ticker string) (models.MarketSnapshot, error) {
	f.calls.Add(1)
	f.enter()
	defer f.leave()
	time.Sleep(10 * time.Millisecond)
	if f.fail[ticker] {
		return models.MarketSnapshot{}, errors.New("unknown symbol")
	}
	return models.MarketSnapshot{Ticker: ticker, Name: str(ticker + " Inc"), Price: f64(10)}, nil
}
