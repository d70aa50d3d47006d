package finnhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinResearch/internal/domain/models"
	dsvc "FinResearch/internal/domain/service"
	svcmetrics "FinResearch/internal/service/metrics"
	xhttp "FinResearch/pkg/http"
	applogger "FinResearch/pkg/logger"

	"golang.org/x/time/rate"
)

const provider = "finnhub"

// Client implements MarketDataProvider backed by the Finnhub REST API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	stream  *Stream
	log     *applogger.Logger
	now     func() time.Time
}

type Option func(*Client)

// WithRateLimit caps outbound requests per second with the given burst.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(d))
	}
}

// WithStream enables last-trade price refresh over the websocket feed.
func WithStream(s *Stream) Option {
	return func(c *Client) { c.stream = s }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Finnhub REST client.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(8 * time.Second)),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		log:     applogger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ dsvc.MarketDataProvider = (*Client)(nil)

type quoteResponse struct {
	C  float64  `json:"c"`
	D  *float64 `json:"d"`
	DP *float64 `json:"dp"`
	T  int64    `json:"t"`
}

type profileResponse struct {
	Name              string   `json:"name"`
	Ticker            string   `json:"ticker"`
	Industry          string   `json:"finnhubIndustry"`
	MarketCap         *float64 `json:"marketCapitalization"` // millions
	SharesOutstanding *float64 `json:"shareOutstanding"`     // millions
}

type metricResponse struct {
	Metric map[string]interface{} `json:"metric"`
}

// Get fetches quote, profile and fundamentals for ticker.
// Only a quote failure is an error; profile and metric failures leave fields nil.
func (c *Client) Get(ctx context.Context, ticker string) (models.MarketSnapshot, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	snap := models.MarketSnapshot{Ticker: symbol, FetchedAt: c.now()}

	var q quoteResponse
	if err := c.get(ctx, "quote", "/quote", symbol, &q); err != nil {
		return snap, err
	}
	if q.C == 0 && q.T == 0 {
		return snap, fmt.Errorf("finnhub: unknown symbol %q", symbol)
	}
	snap.Price = ptr(q.C)
	snap.ChangePct = q.DP

	var p profileResponse
	if err := c.get(ctx, "profile", "/stock/profile2", symbol, &p); err != nil {
		c.log.Warn("finnhub profile unavailable", applogger.String("ticker", symbol), applogger.Error(err))
	} else {
		if p.Name != "" {
			snap.Name = ptr(p.Name)
		}
		if p.Industry != "" {
			snap.Sector = ptr(p.Industry)
		}
		if p.MarketCap != nil && *p.MarketCap > 0 {
			snap.MarketCap = ptr(*p.MarketCap * 1e6)
		}
	}

	var m metricResponse
	if err := c.get(ctx, "metric", "/stock/metric", symbol, &m, "metric", "all"); err != nil {
		c.log.Warn("finnhub metrics unavailable", applogger.String("ticker", symbol), applogger.Error(err))
	} else {
		applyMetrics(&snap, m.Metric, p.SharesOutstanding)
	}

	if c.stream != nil {
		if price, err := c.stream.LastPrice(ctx, symbol); err == nil {
			snap.Price = ptr(price)
		} else {
			c.log.Debug("finnhub live price skipped", applogger.String("ticker", symbol), applogger.Error(err))
		}
	}
	return snap, nil
}

func applyMetrics(snap *models.MarketSnapshot, m map[string]interface{}, sharesMillions *float64) {
	snap.EPS = firstNumber(m, "epsTTM", "epsBasicExclExtraItemsTTM")
	snap.PERatio = firstNumber(m, "peTTM", "peBasicExclExtraTTM")

	rps := firstNumber(m, "revenuePerShareTTM")
	if rps == nil || sharesMillions == nil || *sharesMillions <= 0 {
		return
	}
	revenue := *rps * *sharesMillions * 1e6
	snap.Revenue = ptr(revenue)
	if margin := firstNumber(m, "netProfitMarginTTM"); margin != nil {
		snap.NetIncome = ptr(revenue * *margin / 100)
	}
}

func firstNumber(m map[string]interface{}, keys ...string) *float64 {
	for _, k := range keys {
		if v, ok := m[k].(float64); ok {
			return ptr(v)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path, symbol string, dest interface{}, extra ...string) (err error) {
	start := time.Now()
	defer func() { svcmetrics.Observe(provider, op, start, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("finnhub %s: rate limit: %w", op, err)
	}
	q := map[string][]string{"symbol": {symbol}}
	for i := 0; i+1 < len(extra); i += 2 {
		q[extra[i]] = []string{extra[i+1]}
	}
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     map[string]string{"X-Finnhub-Token": c.apiKey},
		QueryParams: q,
	}, dest); err != nil {
		return fmt.Errorf("finnhub %s: %w", op, err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
