package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"FinResearch/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level      string        `yaml:"level" default:"info"`
		Format     string        `yaml:"format" default:"console"`
		Output     string        `yaml:"output" default:"stdout"`
		ErrorTopic string        `yaml:"error_topic" default:"research.logs"`
		FlushEvery time.Duration `yaml:"flush_every" default:"30s"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"10"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"0.2"`
	} `yaml:"ratelimit"`
	Research ResearchConfig `yaml:"research"`
	AI       AIConfig       `yaml:"ai"`
	Market   MarketConfig   `yaml:"market"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// ResearchConfig drives branch planning, timeouts and fallback copy.
type ResearchConfig struct {
	BranchCount      int           `yaml:"branch_count" default:"4"`
	Topics           []string      `yaml:"topics"`
	QueryTemplate    string        `yaml:"query_template"`
	BranchFallback   string        `yaml:"branch_fallback"`
	BranchTimeout    time.Duration `yaml:"branch_timeout" default:"45s"`
	MarketTimeout    time.Duration `yaml:"market_timeout" default:"10s"`
	SynthesisTimeout time.Duration `yaml:"synthesis_timeout" default:"90s"`
	RequireGrounding bool          `yaml:"require_grounding"`
	Competitors      struct {
		Enabled bool          `yaml:"enabled"`
		Max     int           `yaml:"max" default:"5"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"competitors"`
}

type AIConfig struct {
	Provider string `yaml:"provider" default:"gemini"`
	Gemini   struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model" default:"gemini-2.5-flash"`
	} `yaml:"gemini"`
	Claude struct {
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model" default:"claude-sonnet-4-20250514"`
		MaxTokens int    `yaml:"max_tokens" default:"4096"`
	} `yaml:"claude"`
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url" default:"https://api.openai.com/v1"`
		Model   string `yaml:"model" default:"gpt-4o-mini"`
	} `yaml:"openai"`
}

type MarketConfig struct {
	Provider     string        `yaml:"provider" default:"finnhub"`
	BaseURL      string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
	WebSocketURL string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout" default:"8s"`
	RatePerSec   float64       `yaml:"rate_per_sec" default:"1"`
	Burst        int           `yaml:"burst" default:"5"`
	LivePrice    bool          `yaml:"live_price"`
}

type StoreConfig struct {
	Driver     string        `yaml:"driver" default:"memory"`
	DSN        string        `yaml:"dsn"`
	Cache      string        `yaml:"cache" default:"memory"`
	CacheTTL   time.Duration `yaml:"cache_ttl" default:"10m"`
	PendingTTL time.Duration `yaml:"pending_ttl" default:"1h"`
	ClickHouse struct {
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"9000"`
		Database string        `yaml:"database" default:"research"`
		User     string        `yaml:"user" default:"default"`
		Password string        `yaml:"password"`
		UseHTTP  bool          `yaml:"use_http"`
		Timeout  time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"clickhouse"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	ReportTopic  string   `yaml:"report_topic" default:"research.reports"`
	RequestTopic string   `yaml:"request_topic" default:"research.requests"`
	RequiredAcks int      `yaml:"required_acks" default:"1"`
	Compression  string   `yaml:"compression" default:"snappy"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"10ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		Enabled    bool          `yaml:"enabled"`
		GroupID    string        `yaml:"group_id" default:"finresearch"`
		Workers    int           `yaml:"workers" default:"2"`
		BufferSize int           `yaml:"buffer_size" default:"16"`
		RetryMax   int           `yaml:"retry_max" default:"2"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
		DLQTopic   string        `yaml:"dlq_topic" default:"research.requests.dlq"`
	} `yaml:"consumer"`
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

func parse(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.Gemini.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AI.Claude.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Market.APIKey = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Research.BranchCount < 3 || c.Research.BranchCount > 6 {
		return fmt.Errorf("research.branch_count must be between 3 and 6, got %d", c.Research.BranchCount)
	}
	if n := len(c.Research.Topics); n > 0 && n < c.Research.BranchCount {
		return fmt.Errorf("research.topics has %d entries, branch_count needs %d", n, c.Research.BranchCount)
	}
	switch c.AI.Provider {
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("ai.gemini.api_key is required")
		}
	case "claude":
		if c.AI.Claude.APIKey == "" {
			return fmt.Errorf("ai.claude.api_key is required")
		}
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai.openai.api_key is required")
		}
	case "mock":
	default:
		return fmt.Errorf("ai.provider must be 'gemini', 'claude', 'openai' or 'mock', got '%s'", c.AI.Provider)
	}
	if c.Research.RequireGrounding && c.AI.Provider != "gemini" && c.AI.Provider != "mock" {
		return fmt.Errorf("research.require_grounding needs a grounding-capable provider, got '%s'", c.AI.Provider)
	}
	if c.Market.Provider != "finnhub" && c.Market.Provider != "none" {
		return fmt.Errorf("market.provider must be 'finnhub' or 'none', got '%s'", c.Market.Provider)
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres", "sqlite3":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver '%s'", c.Store.Driver)
		}
	case "clickhouse":
	default:
		return fmt.Errorf("store.driver must be 'memory', 'postgres', 'sqlite3' or 'clickhouse', got '%s'", c.Store.Driver)
	}
	if c.Store.Cache != "memory" && c.Store.Cache != "redis" && c.Store.Cache != "layered" && c.Store.Cache != "none" {
		return fmt.Errorf("store.cache must be 'memory', 'redis', 'layered' or 'none', got '%s'", c.Store.Cache)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
