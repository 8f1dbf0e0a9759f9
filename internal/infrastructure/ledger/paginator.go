/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/domain/repositories"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/metrics"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/retry"
)

// DefaultPageSize is the number of signatures requested per page
const DefaultPageSize = 100

// HistoryPaginator walks an account's signature history backwards in time
type HistoryPaginator struct {
	ledger   repositories.LedgerRepository
	policy   retry.Policy
	pageSize int
	logger   *zap.Logger
}

// NewHistoryPaginator creates a paginator. A non-positive pageSize uses DefaultPageSize.
func NewHistoryPaginator(ledger repositories.LedgerRepository, policy retry.Policy, pageSize int, logger *zap.Logger) *HistoryPaginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			metrics.UpstreamRetries.WithLabelValues("getSignaturesForAddress").Inc()
			logger.Warn("Rate limited while fetching signatures, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}
	}

	return &HistoryPaginator{
		ledger:   ledger,
		policy:   policy,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Collect returns the signatures of account with a block time at or after cutoff,
// newest first. Signatures without a block time are treated as infinitely old.
func (p *HistoryPaginator) Collect(ctx context.Context, account string, cutoff time.Time) ([]entities.SignatureRecord, error) {
	window := entities.AnalysisWindow{From: cutoff}
	collected := make([]entities.SignatureRecord, 0)
	before := ""

	for page := 1; ; page++ {
		query := entities.SignatureQuery{Limit: p.pageSize, Before: before}

		records, err := retry.Do(ctx, p.policy, func(ctx context.Context) ([]entities.SignatureRecord, error) {
			return p.ledger.GetSignaturesForAddress(ctx, account, query)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch signature page %d: %w", page, err)
		}

		p.logger.Debug("Fetched signature page",
			zap.String("account", account),
			zap.Int("page", page),
			zap.Int("count", len(records)),
			zap.String("before", before),
		)

		if len(records) == 0 || !window.Includes(records[len(records)-1].BlockTimeOrZero()) {
			for _, r := range records {
				if window.Includes(r.BlockTimeOrZero()) {
					collected = append(collected, r)
				}
			}
			return collected, nil
		}

		collected = append(collected, records...)
		before = records[len(records)-1].Signature
	}
}
