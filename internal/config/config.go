package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Solana RPC node configuration
	Solana SolanaConfig

	// Price API configuration
	Price PriceConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Analyzer configuration
	Analyzer AnalyzerConfig

	// Logging configuration
	Log LogConfig
}

// SolanaConfig holds Solana RPC connection settings
type SolanaConfig struct {
	RPCURL         string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	Commitment     string        `envconfig:"SOLANA_COMMITMENT" default:"confirmed"`
	RequestTimeout time.Duration `envconfig:"SOLANA_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"SOLANA_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"SOLANA_RETRY_DELAY" default:"1s"`
}

// PriceConfig holds price API settings
type PriceConfig struct {
	BaseURL            string        `envconfig:"PRICE_API_URL" default:"https://price.jup.ag/v4/price"`
	RequestTimeout     time.Duration `envconfig:"PRICE_REQUEST_TIMEOUT" default:"10s"`
	CurrentCacheTTL    time.Duration `envconfig:"PRICE_CURRENT_CACHE_TTL" default:"30s"`
	HistoricalCacheTTL time.Duration `envconfig:"PRICE_HISTORICAL_CACHE_TTL" default:"1h"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"10"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
}

// AnalyzerConfig holds settings for the history walk and transaction fan-out
type AnalyzerConfig struct {
	PageSize         int           `envconfig:"ANALYZER_PAGE_SIZE" default:"100"`
	PaceEvery        int           `envconfig:"ANALYZER_PACE_EVERY" default:"5"`
	PacePause        time.Duration `envconfig:"ANALYZER_PACE_PAUSE" default:"500ms"`
	FetchConcurrency int           `envconfig:"ANALYZER_FETCH_CONCURRENCY" default:"0"`

	// Additional swap program IDs (comma-separated base58 keys)
	ExtraProgramIDs []string `envconfig:"ANALYZER_EXTRA_PROGRAM_IDS"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// A missing .env is fine, the environment alone is enough
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot enforce on its own
func (c *Config) Validate() error {
	if c.Solana.RPCURL == "" {
		return errors.New("SOLANA_RPC_URL must not be empty")
	}
	if c.Solana.MaxRetries < 0 {
		return fmt.Errorf("SOLANA_MAX_RETRIES must be >= 0, got %d", c.Solana.MaxRetries)
	}
	if c.Analyzer.PageSize <= 0 || c.Analyzer.PageSize > 1000 {
		return fmt.Errorf("ANALYZER_PAGE_SIZE must be in 1..1000, got %d", c.Analyzer.PageSize)
	}
	if c.Analyzer.PaceEvery <= 0 {
		return fmt.Errorf("ANALYZER_PACE_EVERY must be > 0, got %d", c.Analyzer.PaceEvery)
	}
	if c.Analyzer.FetchConcurrency < 0 {
		return fmt.Errorf("ANALYZER_FETCH_CONCURRENCY must be >= 0, got %d", c.Analyzer.FetchConcurrency)
	}
	return nil
}

// Addr returns the Redis address in host:port form
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
