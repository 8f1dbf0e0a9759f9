package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a confirmed ledger transaction decoded from jsonParsed encoding.
// Consumers treat it as read-only.
type Transaction struct {
	Signatures   []string
	Slot         uint64
	BlockTime    *int64
	Meta         *TransactionMeta
	Instructions []Instruction
}

// TransactionMeta holds execution metadata including token balance snapshots
type TransactionMeta struct {
	Err               any
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// Instruction is a top-level instruction of a transaction message
type Instruction struct {
	ProgramID string
	Program   string // parser name reported by the node, e.g. "spl-token"
}

// TokenBalance is a per-owner, per-mint balance snapshot
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	UIAmount     decimal.Decimal
}

// PrimarySignature returns the first signature or "" when there is none
func (t *Transaction) PrimarySignature() string {
	if len(t.Signatures) == 0 {
		return ""
	}
	return t.Signatures[0]
}

// Time returns the block time as a time.Time. Callers must check BlockTime first.
func (t *Transaction) Time() time.Time {
	return time.Unix(*t.BlockTime, 0)
}

// FindTokenBalance returns the first balance matching mint and owner
func FindTokenBalance(balances []TokenBalance, mint, owner string) (TokenBalance, bool) {
	for _, b := range balances {
		if b.Mint == mint && b.Owner == owner {
			return b, true
		}
	}
	return TokenBalance{}, false
}
