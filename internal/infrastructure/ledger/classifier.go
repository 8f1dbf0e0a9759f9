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
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/domain/repositories"
)

// ErrNotApplicable marks a transaction that does not produce a trade.
// It is a skip signal, not a failure.
var ErrNotApplicable = errors.New("transaction not applicable")

var (
	ErrMalformedTransaction  = fmt.Errorf("%w: missing block time, meta or signature", ErrNotApplicable)
	ErrIrrelevantTransaction = fmt.Errorf("%w: no recognized program", ErrNotApplicable)
	ErrNoBalanceChange       = fmt.Errorf("%w: balance unchanged", ErrNotApplicable)
)

// Classifier turns a parsed transaction into a buy or sell of one token for one wallet
type Classifier struct {
	programs *ProgramRegistry
	prices   repositories.PriceRepository
	logger   *zap.Logger
}

// NewClassifier creates a classifier
func NewClassifier(programs *ProgramRegistry, prices repositories.PriceRepository, logger *zap.Logger) *Classifier {
	return &Classifier{
		programs: programs,
		prices:   prices,
		logger:   logger,
	}
}

// Classify returns the trade a transaction represents for wallet in token.
// Transactions without a trade return an error wrapping ErrNotApplicable.
func (c *Classifier) Classify(ctx context.Context, tx *entities.Transaction, wallet, token string, totalSupply float64) (*entities.Trade, error) {
	if tx == nil || tx.BlockTime == nil || tx.Meta == nil || tx.PrimarySignature() == "" {
		return nil, ErrMalformedTransaction
	}

	if !c.IsRelevant(tx) {
		return nil, ErrIrrelevantTransaction
	}

	pre := balanceOf(tx.Meta.PreTokenBalances, token, wallet)
	post := balanceOf(tx.Meta.PostTokenBalances, token, wallet)

	if pre.Equal(post) {
		return nil, ErrNoBalanceChange
	}

	delta := post.Sub(pre)
	tradeType := entities.TradeTypeSell
	if delta.IsPositive() {
		tradeType = entities.TradeTypeBuy
	}
	amount := delta.Abs().InexactFloat64()

	timestamp := tx.Time()
	price := c.prices.HistoricalPrice(ctx, timestamp, token)

	trade := &entities.Trade{
		Signature: tx.PrimarySignature(),
		Timestamp: timestamp,
		Type:      tradeType,
		Amount:    amount,
		Price:     price,
		USDValue:  amount * price,
		MarketCap: price * totalSupply,
	}

	c.logger.Debug("Classified transaction",
		zap.String("signature", trade.Signature),
		zap.String("type", string(trade.Type)),
		zap.Float64("amount", trade.Amount),
		zap.Float64("price", trade.Price),
	)

	return trade, nil
}

// IsRelevant reports whether any top-level instruction targets a recognized program
func (c *Classifier) IsRelevant(tx *entities.Transaction) bool {
	for _, ix := range tx.Instructions {
		if c.programs.Recognizes(ix.ProgramID) {
			return true
		}
	}
	return false
}

// balanceOf returns the first matching balance, or zero when the owner has no entry
func balanceOf(balances []entities.TokenBalance, mint, owner string) decimal.Decimal {
	if b, ok := entities.FindTokenBalance(balances, mint, owner); ok {
		return b.UIAmount
	}
	return decimal.Zero
}

// SkipReason returns a short label for a not-applicable error, for metrics
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedTransaction):
		return "malformed"
	case errors.Is(err, ErrIrrelevantTransaction):
		return "irrelevant"
	case errors.Is(err, ErrNoBalanceChange):
		return "no_balance_change"
	default:
		return "other"
	}
}
