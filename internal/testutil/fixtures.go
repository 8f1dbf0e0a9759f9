package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
)

// Common test addresses
const (
	WalletAddress      = "83astBRguLMdt2h5U1Tpdq5tjFoJ6noeGwaY3mDLVcri"
	OtherWalletAddress = "4Qkev8aNZcqFNSRhQzwyLMFSsi94jHqE8WNVTJzTP99F"
	BonkMint           = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	USDCMint           = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	RaydiumProgramID   = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	OrcaProgramID      = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	TokenProgramID     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	SystemProgramID    = "11111111111111111111111111111111"
)

// BaseTime is the reference "now" used by fixtures
var BaseTime = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// CreateTestTransaction creates a Raydium swap in which WalletAddress moves from
// 0 to 100 BonkMint, one hour before BaseTime
func CreateTestTransaction(opts ...TransactionOption) *entities.Transaction {
	tx := &entities.Transaction{
		Signatures: []string{"5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"},
		Slot:       268000000,
		BlockTime:  Int64Ptr(BaseTime.Add(-time.Hour).Unix()),
		Meta: &entities.TransactionMeta{
			PreTokenBalances:  []entities.TokenBalance{},
			PostTokenBalances: []entities.TokenBalance{Balance(WalletAddress, BonkMint, "100")},
		},
		Instructions: []entities.Instruction{{ProgramID: RaydiumProgramID}},
	}

	for _, opt := range opts {
		opt(tx)
	}

	return tx
}

type TransactionOption func(*entities.Transaction)

func WithSignature(sig string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Signatures = []string{sig}
	}
}

func WithBlockTime(ts time.Time) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.BlockTime = Int64Ptr(ts.Unix())
	}
}

func WithoutBlockTime() TransactionOption {
	return func(tx *entities.Transaction) {
		tx.BlockTime = nil
	}
}

func WithoutMeta() TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Meta = nil
	}
}

func WithPrograms(programIDs ...string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Instructions = make([]entities.Instruction, len(programIDs))
		for i, id := range programIDs {
			tx.Instructions[i] = entities.Instruction{ProgramID: id}
		}
	}
}

func WithPreBalances(balances ...entities.TokenBalance) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Meta.PreTokenBalances = balances
	}
}

func WithPostBalances(balances ...entities.TokenBalance) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Meta.PostTokenBalances = balances
	}
}

// WithBalanceChange sets the wallet's BonkMint balance before and after
func WithBalanceChange(owner, pre, post string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Meta.PreTokenBalances = []entities.TokenBalance{Balance(owner, BonkMint, pre)}
		tx.Meta.PostTokenBalances = []entities.TokenBalance{Balance(owner, BonkMint, post)}
	}
}

// Balance builds a token balance snapshot from a decimal string
func Balance(owner, mint, amount string) entities.TokenBalance {
	return entities.TokenBalance{
		Mint:     mint,
		Owner:    owner,
		UIAmount: decimal.RequireFromString(amount),
	}
}

// CreateTestTrade creates a 2000 USD buy of 1000 units at 2.0
func CreateTestTrade(opts ...TradeOption) entities.Trade {
	t := entities.Trade{
		Signature: "trade-sig",
		Timestamp: BaseTime.Add(-time.Hour),
		Type:      entities.TradeTypeBuy,
		Amount:    1000,
		Price:     2.0,
		USDValue:  2000,
		MarketCap: 2_000_000_000,
	}

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

type TradeOption func(*entities.Trade)

func WithTradeSignature(sig string) TradeOption {
	return func(t *entities.Trade) {
		t.Signature = sig
	}
}

func WithTradeType(tradeType entities.TradeType) TradeOption {
	return func(t *entities.Trade) {
		t.Type = tradeType
	}
}

// WithFill sets amount and price and recomputes the USD value
func WithFill(amount, price float64) TradeOption {
	return func(t *entities.Trade) {
		t.Amount = amount
		t.Price = price
		t.USDValue = amount * price
	}
}

func WithUSDValue(v float64) TradeOption {
	return func(t *entities.Trade) {
		t.USDValue = v
	}
}

func WithMarketCap(mc float64) TradeOption {
	return func(t *entities.Trade) {
		t.MarketCap = mc
	}
}
