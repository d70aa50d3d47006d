package di

import (
	"context"
	"fmt"
	"time"

	"FinResearch/internal/domain/repository"
	dsvc "FinResearch/internal/domain/service"
	"FinResearch/internal/handler/api"
	internalrepo "FinResearch/internal/repository"
	"FinResearch/internal/service/ai"
	"FinResearch/internal/service/cache"
	"FinResearch/internal/service/feed"
	"FinResearch/internal/service/finnhub"
	svcmetrics "FinResearch/internal/service/metrics"
	"FinResearch/internal/service/ratelimit"
	"FinResearch/internal/usecase"
	pkgch "FinResearch/pkg/clickhouse"
	"FinResearch/pkg/config"
	xhttp "FinResearch/pkg/http"
	pkgkafka "FinResearch/pkg/kafka"
	applogger "FinResearch/pkg/logger"
	"FinResearch/pkg/metrics"
	"FinResearch/pkg/server"
)

// ProvideLogger builds the application logger. Error entries are batched to
// Kafka when a producer is available.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, nil, err
	}
	if producer == nil {
		return l, func() {}, nil
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval: cfg.Logging.FlushEvery,
		Topic:        cfg.Logging.ErrorTopic,
		Publisher:    producer,
	})
	return l, l.RemoveCollector, nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	svcmetrics.Register()
	return metrics.New(nil)
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithLinger(cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideAI creates the configured generative AI provider.
func ProvideAI(cfg *config.Config, l *applogger.Logger) (dsvc.GenerativeAI, error) {
	provider, err := ai.New(context.Background(), cfg.AI, l)
	if err != nil {
		return nil, fmt.Errorf("ai provider: %w", err)
	}
	return provider, nil
}

// ProvideMarketData creates the market data provider; nil means every snapshot is synthetic.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) dsvc.MarketDataProvider {
	if cfg.Market.Provider == "none" {
		return nil
	}
	opts := []finnhub.Option{
		finnhub.WithRateLimit(cfg.Market.RatePerSec, cfg.Market.Burst),
		finnhub.WithTimeout(cfg.Market.Timeout),
		finnhub.WithLogger(l.With(applogger.String("component", "finnhub"))),
	}
	if cfg.Market.LivePrice {
		opts = append(opts, finnhub.WithStream(finnhub.NewStream(cfg.Market.WebSocketURL, cfg.Market.APIKey, 2*time.Second)))
	}
	return finnhub.New(cfg.Market.BaseURL, cfg.Market.APIKey, opts...)
}

// ProvideByteCache creates the cache used for report reads and pending reports.
// It returns nil for cache "none".
func ProvideByteCache(cfg *config.Config) (cache.BytesCache, func()) {
	redisCache := func() *cache.RedisCache {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "finresearch:",
		})
	}
	switch cfg.Store.Cache {
	case "redis":
		rc := redisCache()
		return rc, func() { _ = rc.Close() }
	case "layered":
		rc := redisCache()
		lc := cache.NewLayeredCache(rc, cache.DefaultL1TTL)
		return lc, func() {
			_ = lc.Close()
			_ = rc.Close()
		}
	case "none":
		return nil, func() {}
	default:
		tc := cache.NewTTLCache()
		return tc, func() { _ = tc.Close() }
	}
}

// ProvideReportStore opens the configured store, ensures its schema and puts
// the byte cache in front of it.
func ProvideReportStore(cfg *config.Config, bc cache.BytesCache, l *applogger.Logger) (repository.ReportStore, func(), error) {
	var store repository.ReportStore
	switch cfg.Store.Driver {
	case "postgres", "sqlite3":
		s, err := internalrepo.OpenSQLReportStore(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case "clickhouse":
		ch := cfg.Store.ClickHouse
		ctx, cancel := context.WithTimeout(context.Background(), ch.Timeout)
		defer cancel()
		client, err := pkgch.NewClient(ctx,
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithHTTP(ch.UseHTTP),
			pkgch.WithTimeouts(ch.Timeout, ch.Timeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		chStore := internalrepo.NewClickHouseReportStore(client)
		chStore.SetLogger(l.With(applogger.String("component", "clickhouse")))
		store = chStore
	default:
		store = internalrepo.NewMemoryReportStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("report store init: %w", err)
	}
	l.Info("report store ready", applogger.String("driver", cfg.Store.Driver), applogger.String("cache", cfg.Store.Cache))

	if bc != nil {
		store = internalrepo.NewCachedReportStore(store, bc, cfg.Store.CacheTTL, l)
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvidePendingReports keeps unsaved reports; without a shared cache they stay in process.
func ProvidePendingReports(cfg *config.Config, bc cache.BytesCache) (*usecase.PendingReports, func()) {
	if bc != nil {
		return usecase.NewPendingReports(bc, cfg.Store.PendingTTL), func() {}
	}
	tc := cache.NewTTLCache()
	return usecase.NewPendingReports(tc, cfg.Store.PendingTTL), func() { _ = tc.Close() }
}

func ProvideHub(l *applogger.Logger) *feed.Hub {
	return feed.NewHub(l.With(applogger.String("component", "feed")))
}

// ProvideEventPublisher fans delivered reports out to websocket subscribers and Kafka.
func ProvideEventPublisher(cfg *config.Config, hub *feed.Hub, producer *pkgkafka.Producer) repository.EventPublisher {
	pubs := usecase.Publishers{hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.ReportTopic))
	}
	return pubs
}

func ProvideResearchUseCase(
	cfg *config.Config,
	provider dsvc.GenerativeAI,
	market dsvc.MarketDataProvider,
	store repository.ReportStore,
	pending *usecase.PendingReports,
	events repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ResearchUseCase {
	return usecase.NewResearchUseCase(cfg.Research, provider, market, store, pending, events, m, l)
}

// ProvideKafkaConsumer creates the research job consumer when enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.LoggingHook{Log: l}))
	return consumer, nil
}

func ProvideKafkaResearchHandler(cfg *config.Config, uc *usecase.ResearchUseCase, l *applogger.Logger) *usecase.KafkaResearchHandler {
	return usecase.NewKafkaResearchHandler(cfg.Kafka.RequestTopic, uc, l)
}

func ProvideHTTPHandler(l *applogger.Logger, uc *usecase.ResearchUseCase, hub *feed.Hub) xhttp.Handler {
	return api.NewResearchEchoHandler(l, uc, hub)
}

// ProvideRateLimiter limits research creation per client; nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	limiter *ratelimit.Limiter,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaResearchHandler,
) *server.App {
	app := server.New(cfg, l, handler, limiter)
	if consumer != nil {
		app.SetConsumer(consumer, kh)
	}
	return app
}
