package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/config"
	"github.com/bimakw/wallet-analyzer/internal/domain/repositories"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/metrics"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/retry"
)

// Ensure Client implements PriceRepository
var _ repositories.PriceRepository = (*Client)(nil)

// errNoPrice means the API answered but carried no usable price for the token
var errNoPrice = errors.New("no price in response")

// priceResponse is the shape of the price API: {"data": {"<id>": {"price": n}}}
type priceResponse struct {
	Data map[string]*struct {
		Price *float64 `json:"price"`
	} `json:"data"`
}

// Client resolves token prices from a Jupiter-style price API.
// All lookups are best effort and never return errors to callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.RedisCache
	config     config.PriceConfig
	logger     *zap.Logger
}

// NewClient creates a price client. cache may be nil.
func NewClient(cfg config.PriceConfig, cache *cache.RedisCache, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cache:  cache,
		config: cfg,
		logger: logger,
	}
}

// CurrentPrice returns the latest price of a token, or 0 when unknown
func (c *Client) CurrentPrice(ctx context.Context, tokenAddress string) float64 {
	cacheKey := cache.CurrentPriceKey(tokenAddress)
	if c.cache != nil {
		var cached float64
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached
		}
	}

	price, err := c.fetchPrice(ctx, tokenAddress, nil)
	if err != nil {
		metrics.PriceFallbacks.WithLabelValues("current_zero").Inc()
		c.logger.Warn("Failed to fetch current price",
			zap.String("token", tokenAddress),
			zap.Error(err),
		)
		return 0
	}

	if c.cache != nil {
		if err := c.cache.SetWithTTL(ctx, cacheKey, price, c.config.CurrentCacheTTL); err != nil {
			c.logger.Warn("Failed to cache current price", zap.Error(err))
		}
	}

	return price
}

// HistoricalPrice returns the price at ts. When the API has no price for that
// time, or the call fails, it falls back to the current price.
func (c *Client) HistoricalPrice(ctx context.Context, ts time.Time, tokenAddress string) float64 {
	cacheKey := cache.HistoricalPriceKey(tokenAddress, ts.UnixMilli())
	if c.cache != nil {
		var cached float64
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached
		}
	}

	price, err := c.fetchPrice(ctx, tokenAddress, &ts)
	if err != nil {
		metrics.PriceFallbacks.WithLabelValues("historical_to_current").Inc()
		c.logger.Debug("Historical price unavailable, using current price",
			zap.String("token", tokenAddress),
			zap.Time("timestamp", ts),
			zap.Error(err),
		)
		return c.CurrentPrice(ctx, tokenAddress)
	}

	if c.cache != nil {
		if err := c.cache.SetWithTTL(ctx, cacheKey, price, c.config.HistoricalCacheTTL); err != nil {
			c.logger.Warn("Failed to cache historical price", zap.Error(err))
		}
	}

	return price
}

// fetchPrice performs one lookup. A nil ts asks for the current price.
func (c *Client) fetchPrice(ctx context.Context, tokenAddress string, ts *time.Time) (float64, error) {
	query := url.Values{}
	query.Set("ids", tokenAddress)
	if ts != nil {
		query.Set("timestamp", strconv.FormatInt(ts.UnixMilli(), 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("price api status %d: %w", resp.StatusCode, retry.ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("price api status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var decoded priceResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}

	entry, ok := decoded.Data[tokenAddress]
	if !ok || entry == nil || entry.Price == nil || *entry.Price == 0 {
		return 0, errNoPrice
	}

	return *entry.Price, nil
}
