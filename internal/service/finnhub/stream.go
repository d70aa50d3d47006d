package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Stream reads last-trade prices from the Finnhub websocket feed.
// Each LastPrice call opens its own connection, so a Stream is safe for concurrent use.
type Stream struct {
	url    string
	apiKey string
	wait   time.Duration
	dialer *websocket.Dialer
}

// NewStream creates a feed reader that waits at most wait for a trade.
func NewStream(url, apiKey string, wait time.Duration) *Stream {
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &Stream{url: url, apiKey: apiKey, wait: wait, dialer: websocket.DefaultDialer}
}

type fhTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type fhMessage struct {
	Type string    `json:"type"`
	Data []fhTrade `json:"data"`
}

// LastPrice subscribes to symbol and returns the price of the first trade received.
// Outside market hours no trade arrives and the call times out.
func (s *Stream) LastPrice(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	conn, _, err := s.dialer.DialContext(ctx, fmt.Sprintf("%s?token=%s", s.url, s.apiKey), nil)
	if err != nil {
		return 0, fmt.Errorf("finnhub stream connect: %w", err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(dl)
	}
	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "symbol": symbol}); err != nil {
		return 0, fmt.Errorf("finnhub stream subscribe %s: %w", symbol, err)
	}
	defer func() {
		_ = conn.WriteJSON(map[string]string{"type": "unsubscribe", "symbol": symbol})
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("finnhub stream read: %w", err)
		}
		var m fhMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			continue
		}
		for i := len(m.Data) - 1; i >= 0; i-- {
			if m.Data[i].S == symbol && m.Data[i].P > 0 {
				return m.Data[i].P, nil
			}
		}
	}
}
