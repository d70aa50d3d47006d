package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finnhubServer(t *testing.T, quote string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Finnhub-Token"))
		assert.Equal(t, "ACME", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(quote))
	})
	mux.HandleFunc("/stock/profile2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Acme Corp","ticker":"ACME","finnhubIndustry":"Technology","marketCapitalization":1300,"shareOutstanding":100}`))
	})
	mux.HandleFunc("/stock/metric", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("metric"))
		_, _ = w.Write([]byte(`{"metric":{"epsTTM":1.1,"peTTM":9.09,"revenuePerShareTTM":5.4,"netProfitMarginTTM":-3.7}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGet(t *testing.T) {
	srv := finnhubServer(t, `{"c":10,"d":0.15,"dp":1.5,"t":1700000000}`)
	c := New(srv.URL+"/", "secret", WithRateLimit(100, 10), WithTimeout(time.Second))

	snap, err := c.Get(context.Background(), " acme ")
	require.NoError(t, err)
	assert.Equal(t, "ACME", snap.Ticker)
	assert.False(t, snap.Synthetic)
	require.NotNil(t, snap.Price)
	assert.Equal(t, 10.0, *snap.Price)
	assert.Equal(t, 1.5, *snap.ChangePct)
	assert.Equal(t, "Acme Corp", *snap.Name)
	assert.Equal(t, "Technology", *snap.Sector)
	assert.InDelta(t, 1.3e9, *snap.MarketCap, 1)
	assert.InDelta(t, 5.4e8, *snap.Revenue, 1)
	assert.InDelta(t, -1.998e7, *snap.NetIncome, 1)
	assert.Equal(t, 1.1, *snap.EPS)
	assert.Equal(t, 9.09, *snap.PERatio)
}

func TestClientUnknownSymbol(t *testing.T) {
	srv := finnhubServer(t, `{"c":0,"d":null,"dp":null,"t":0}`)
	c := New(srv.URL, "secret", WithRateLimit(100, 10))

	_, err := c.Get(context.Background(), "ACME")
	assert.ErrorContains(t, err, "unknown symbol")
}

func TestClientQuoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	c := New(srv.URL, "secret", WithRateLimit(100, 10))

	_, err := c.Get(context.Background(), "ACME")
	assert.Error(t, err)
}

func TestClientMissingFundamentals(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":10,"dp":-0.5,"t":1700000000}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL, "secret", WithRateLimit(100, 10))

	snap, err := c.Get(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 10.0, *snap.Price)
	assert.Nil(t, snap.Name)
	assert.Nil(t, snap.MarketCap)
	assert.Nil(t, snap.Revenue)
	assert.Nil(t, snap.EPS)
}

func TestStreamLastPrice(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]string{"type": "ping"})
		_ = conn.WriteJSON(map[string]interface{}{
			"type": "trade",
			"data": []map[string]interface{}{
				{"s": "OTHER", "p": 1.0, "t": 1},
				{"s": sub["symbol"], "p": 12.5, "t": 2},
			},
		})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	s := NewStream("ws"+strings.TrimPrefix(srv.URL, "http"), "secret", time.Second)
	price, err := s.LastPrice(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 12.5, price)
}

func TestStreamTimesOutWithoutTrades(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	s := NewStream("ws"+strings.TrimPrefix(srv.URL, "http"), "secret", 100*time.Millisecond)
	_, err := s.LastPrice(context.Background(), "ACME")
	assert.Error(t, err)
}
