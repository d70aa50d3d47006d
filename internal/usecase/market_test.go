package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarketAdapterNormalizesTicker(t *testing.T) {
	m := acmeMarket()
	a := NewMarketAdapter(m, time.Second, nil, nil)

	s := a.Fetch(context.Background(), " acme ")
	assert.False(t, s.Synthetic)
	assert.Equal(t, "ACME", s.Ticker)
	assert.False(t, s.FetchedAt.IsZero())
}

func TestMarketAdapterFallsBackOnError(t *testing.T) {
	a := NewMarketAdapter(&fakeMarket{err: errors.New("boom")}, time.Second, nil, nil)
	s := a.Fetch(context.Background(), "ACME")
	assert.True(t, s.Synthetic)
	assert.Nil(t, s.Price)
}

func TestMarketAdapterTimesOut(t *testing.T) {
	m := acmeMarket()
	m.delay = time.Second
	a := NewMarketAdapter(m, 20*time.Millisecond, nil, nil)

	start := time.Now()
	s := a.Fetch(context.Background(), "ACME")
	assert.True(t, s.Synthetic)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestMarketAdapterWithoutProvider(t *testing.T) {
	s := NewMarketAdapter(nil, time.Second, nil, nil).Fetch(context.Background(), "ACME")
	assert.True(t, s.Synthetic)
}
