package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/application/services"
	"github.com/bimakw/wallet-analyzer/internal/config"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/ledger"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/price"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/retry"
)

// App holds the wired components shared by the API server and the CLI
type App struct {
	Ledger   *ledger.Client
	Cache    *cache.RedisCache // nil when Redis is unreachable
	Analysis *services.AnalysisService
}

// New connects to the ledger node and Redis and builds the analysis service.
// Redis is optional; the ledger node is not.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ledgerClient, err := ledger.NewClient(cfg.Solana, logger)
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	}

	programs, err := ledger.NewDefaultProgramRegistry(cfg.Analyzer.ExtraProgramIDs)
	if err != nil {
		ledgerClient.Close()
		if redisCache != nil {
			_ = redisCache.Close()
		}
		return nil, fmt.Errorf("failed to build program registry: %w", err)
	}

	priceClient := price.NewClient(cfg.Price, redisCache, logger)
	classifier := ledger.NewClassifier(programs, priceClient, logger)

	policy := retry.Policy{
		MaxRetries:   cfg.Solana.MaxRetries,
		InitialDelay: cfg.Solana.RetryDelay,
	}

	analysis := services.NewAnalysisService(ledgerClient, classifier, redisCache, cfg.Analyzer, policy, logger)

	logger.Info("Analysis stack ready",
		zap.Int("recognized_programs", programs.Len()),
		zap.Bool("cache_enabled", redisCache != nil),
	)

	return &App{
		Ledger:   ledgerClient,
		Cache:    redisCache,
		Analysis: analysis,
	}, nil
}

// Close releases the ledger and cache connections
func (a *App) Close() {
	a.Ledger.Close()
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
