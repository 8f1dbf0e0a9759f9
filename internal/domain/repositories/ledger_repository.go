package repositories

import (
	"context"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
)

// LedgerRepository defines the read operations needed from the ledger RPC node
type LedgerRepository interface {
	// GetTokenSupply returns the total supply of a mint
	GetTokenSupply(ctx context.Context, mint string) (*entities.TokenSupply, error)

	// GetSignaturesForAddress returns one page of signatures, newest first
	GetSignaturesForAddress(ctx context.Context, account string, query entities.SignatureQuery) ([]entities.SignatureRecord, error)

	// GetParsedTransaction returns a parsed transaction, or nil if the node does not know it
	GetParsedTransaction(ctx context.Context, signature string) (*entities.Transaction, error)
}
