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
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/config"
	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/domain/repositories"
)

// Ensure Client implements LedgerRepository
var _ repositories.LedgerRepository = (*Client)(nil)

// Client talks JSON-RPC 2.0 to a Solana node. It does not retry;
// callers decide which calls go through the rate-limit retry wrapper.
type Client struct {
	rpc    *rpc.Client
	config config.SolanaConfig
	logger *zap.Logger
}

// NewClient connects to the node and logs its version
func NewClient(cfg config.SolanaConfig, logger *zap.Logger) (*Client, error) {
	rpcClient, err := rpc.DialHTTPWithClient(cfg.RPCURL, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Solana node: %w", err)
	}

	c := &Client{
		rpc:    rpcClient,
		config: cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	var version struct {
		SolanaCore string `json:"solana-core"`
		FeatureSet uint32 `json:"feature-set"`
	}
	if err := c.rpc.CallContext(ctx, &version, "getVersion"); err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to get node version: %w", err)
	}

	logger.Info("Connected to Solana node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("version", version.SolanaCore),
		zap.String("commitment", cfg.Commitment),
	)

	return c, nil
}

// Close closes the RPC client
func (c *Client) Close() {
	c.rpc.Close()
}

// HealthCheck asks the node whether it is in sync
func (c *Client) HealthCheck(ctx context.Context) error {
	var status string
	if err := c.rpc.CallContext(ctx, &status, "getHealth"); err != nil {
		return fmt.Errorf("node unhealthy: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("node unhealthy: %s", status)
	}
	return nil
}

// GetTokenSupply returns the total supply of a mint
func (c *Client) GetTokenSupply(ctx context.Context, mint string) (*entities.TokenSupply, error) {
	var result rpcContextResult[rpcTokenAmount]

	err := c.rpc.CallContext(ctx, &result, "getTokenSupply", mint, map[string]interface{}{
		"commitment": c.config.Commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get token supply for %s: %w", mint, err)
	}

	return &entities.TokenSupply{
		Amount:   result.Value.Amount,
		Decimals: result.Value.Decimals,
		UIAmount: result.Value.uiAmount().InexactFloat64(),
	}, nil
}

// GetSignaturesForAddress returns one page of signatures for an account, newest first
func (c *Client) GetSignaturesForAddress(ctx context.Context, account string, query entities.SignatureQuery) ([]entities.SignatureRecord, error) {
	opts := map[string]interface{}{
		"limit":      query.Limit,
		"commitment": c.config.Commitment,
	}
	if query.Before != "" {
		opts["before"] = query.Before
	}

	var infos []rpcSignatureInfo
	if err := c.rpc.CallContext(ctx, &infos, "getSignaturesForAddress", account, opts); err != nil {
		return nil, fmt.Errorf("failed to get signatures for %s: %w", account, err)
	}

	records := make([]entities.SignatureRecord, len(infos))
	for i, info := range infos {
		records[i] = info.toEntity()
	}

	return records, nil
}

// GetParsedTransaction returns a transaction in jsonParsed encoding, or nil if unknown
func (c *Client) GetParsedTransaction(ctx context.Context, signature string) (*entities.Transaction, error) {
	var tx *rpcTransaction

	err := c.rpc.CallContext(ctx, &tx, "getTransaction", signature, map[string]interface{}{
		"encoding":                       "jsonParsed",
		"commitment":                     c.config.Commitment,
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}

	if tx == nil {
		return nil, nil
	}

	return tx.toEntity(), nil
}
