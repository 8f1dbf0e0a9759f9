package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-analyzer/internal/config"
	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/domain/repositories"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/ledger"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/metrics"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/retry"
)

// Input errors. All of them wrap ErrInvalidInput.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrMissingAddress       = fmt.Errorf("%w: wallet and token address are required", ErrInvalidInput)
	ErrInvalidAddress       = fmt.Errorf("%w: malformed address", ErrInvalidInput)
	ErrInvalidWalletAddress = fmt.Errorf("%w (wallet)", ErrInvalidAddress)
	ErrInvalidTokenAddress  = fmt.Errorf("%w (token)", ErrInvalidAddress)
)

// AnalysisService runs the 24h trading analysis of one wallet in one token
type AnalysisService struct {
	ledger     repositories.LedgerRepository
	paginator  *ledger.HistoryPaginator
	classifier *ledger.Classifier
	cache      *cache.RedisCache
	config     config.AnalyzerConfig
	txPolicy   retry.Policy
	logger     *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAnalysisService creates a new analysis service. cache may be nil.
func NewAnalysisService(
	ledgerRepo repositories.LedgerRepository,
	classifier *ledger.Classifier,
	cache *cache.RedisCache,
	cfg config.AnalyzerConfig,
	policy retry.Policy,
	logger *zap.Logger,
) *AnalysisService {
	txPolicy := policy
	if txPolicy.OnRetry == nil {
		txPolicy.OnRetry = func(attempt int, delay time.Duration, err error) {
			metrics.UpstreamRetries.WithLabelValues("getTransaction").Inc()
			logger.Warn("Rate limited while fetching transaction, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}
	}

	if cfg.PaceEvery <= 0 {
		cfg.PaceEvery = 5
	}

	return &AnalysisService{
		ledger:     ledgerRepo,
		paginator:  ledger.NewHistoryPaginator(ledgerRepo, policy, cfg.PageSize, logger),
		classifier: classifier,
		cache:      cache,
		config:     cfg,
		txPolicy:   txPolicy,
		logger:     logger,
		now:        time.Now,
		sleep:      pause,
	}
}

// AnalysisResponse is the API response for an analysis
type AnalysisResponse struct {
	Data AnalysisDTO `json:"data"`
}

// AnalysisDTO is the API representation of one analysis
type AnalysisDTO struct {
	AnalysisID   string           `json:"analysis_id"`
	Wallet       string           `json:"wallet"`
	TokenAddress string           `json:"token_address"`
	Summary      entities.Summary `json:"summary"`
	Timeframe    TimeframeDTO     `json:"timeframe"`
}

// TimeframeDTO echoes the analyzed window
type TimeframeDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ValidateAddresses checks that both addresses are present base58 public keys
func ValidateAddresses(wallet, tokenAddress string) error {
	if wallet == "" || tokenAddress == "" {
		return ErrMissingAddress
	}
	if _, err := solana.PublicKeyFromBase58(wallet); err != nil {
		return ErrInvalidWalletAddress
	}
	if _, err := solana.PublicKeyFromBase58(tokenAddress); err != nil {
		return ErrInvalidTokenAddress
	}
	return nil
}

// Analyze summarizes the significant trades of wallet in tokenAddress over the last 24 hours.
// Invalid input returns an error wrapping ErrInvalidInput before any upstream call.
func (s *AnalysisService) Analyze(ctx context.Context, wallet, tokenAddress string) (*AnalysisResponse, error) {
	if err := ValidateAddresses(wallet, tokenAddress); err != nil {
		metrics.AnalysesTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	start := time.Now()
	analysisID := uuid.NewString()
	logger := s.logger.With(
		zap.String("analysis_id", analysisID),
		zap.String("wallet", wallet),
		zap.String("token", tokenAddress),
	)

	logger.Info("Starting analysis")

	response, err := s.analyze(ctx, logger, analysisID, wallet, tokenAddress)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.Observe(elapsed.Seconds())

	logger.Info("Analysis complete",
		zap.Int("significant_trades", response.Data.Summary.SignificantTradeCount),
		zap.Duration("elapsed", elapsed),
	)

	return response, nil
}

func (s *AnalysisService) analyze(ctx context.Context, logger *zap.Logger, analysisID, wallet, tokenAddress string) (*AnalysisResponse, error) {
	supply, err := s.tokenSupply(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}

	window := entities.NewAnalysisWindow(s.now())

	signatures, err := s.paginator.Collect(ctx, wallet, window.From)
	if err != nil {
		return nil, fmt.Errorf("failed to collect signatures: %w", err)
	}
	metrics.SignaturesScanned.Observe(float64(len(signatures)))

	logger.Debug("Collected signatures", zap.Int("count", len(signatures)))

	trades, err := s.collectTrades(ctx, signatures, wallet, tokenAddress, supply)
	if err != nil {
		return nil, err
	}

	significant := FilterSignificant(trades)
	summary := RoundSummary(AggregateTrades(significant))

	logger.Debug("Aggregated trades",
		zap.Int("trades", len(trades)),
		zap.Int("significant", len(significant)),
	)

	return &AnalysisResponse{
		Data: AnalysisDTO{
			AnalysisID:   analysisID,
			Wallet:       wallet,
			TokenAddress: tokenAddress,
			Summary:      summary,
			Timeframe: TimeframeDTO{
				From: window.From.UTC().Format(time.RFC3339),
				To:   window.To.UTC().Format(time.RFC3339),
			},
		},
	}, nil
}

// tokenSupply returns the human readable total supply, cached when a cache is configured
func (s *AnalysisService) tokenSupply(ctx context.Context, mint string) (float64, error) {
	cacheKey := cache.TokenSupplyKey(mint)

	if s.cache != nil {
		var cached entities.TokenSupply
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached.UIAmount, nil
		}
	}

	supply, err := s.ledger.GetTokenSupply(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get token supply: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, supply); err != nil {
			s.logger.Warn("Failed to cache token supply", zap.Error(err))
		}
	}

	return supply.UIAmount, nil
}

// collectTrades fetches and classifies every signature concurrently.
// The dispatch loop pauses before every PaceEvery-th dispatch, starting with the first.
func (s *AnalysisService) collectTrades(ctx context.Context, signatures []entities.SignatureRecord, wallet, tokenAddress string, supply float64) ([]entities.Trade, error) {
	results := make([]*entities.Trade, len(signatures))

	g, gctx := errgroup.WithContext(ctx)
	if s.config.FetchConcurrency > 0 {
		g.SetLimit(s.config.FetchConcurrency)
	}

	var dispatchErr error
	for i, sig := range signatures {
		if i%s.config.PaceEvery == 0 {
			if err := s.sleep(gctx, s.config.PacePause); err != nil {
				dispatchErr = err
				break
			}
		}

		i, sig := i, sig
		g.Go(func() error {
			trade, err := s.processSignature(gctx, sig.Signature, wallet, tokenAddress, supply)
			if err != nil {
				return err
			}
			results[i] = trade
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}

	trades := make([]entities.Trade, 0, len(results))
	for _, t := range results {
		if t != nil {
			trades = append(trades, *t)
		}
	}
	return trades, nil
}

// processSignature returns the trade of one signature, or nil when there is none
func (s *AnalysisService) processSignature(ctx context.Context, signature, wallet, tokenAddress string, supply float64) (*entities.Trade, error) {
	tx, err := retry.Do(ctx, s.txPolicy, func(ctx context.Context) (*entities.Transaction, error) {
		return s.ledger.GetParsedTransaction(ctx, signature)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", signature, err)
	}

	if tx == nil {
		metrics.TransactionsTotal.WithLabelValues("not_found").Inc()
		return nil, nil
	}

	trade, err := s.classifier.Classify(ctx, tx, wallet, tokenAddress, supply)
	if errors.Is(err, ledger.ErrNotApplicable) {
		metrics.TransactionsTotal.WithLabelValues(ledger.SkipReason(err)).Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to classify transaction %s: %w", signature, err)
	}

	metrics.TransactionsTotal.WithLabelValues(string(trade.Type)).Inc()
	return trade, nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
