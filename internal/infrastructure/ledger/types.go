/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
)

// JSON shapes returned by the Solana JSON-RPC API (jsonParsed encoding)

type rpcContextResult[T any] struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

type rpcTokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       int      `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

type rpcSignatureInfo struct {
	Signature          string      `json:"signature"`
	Slot               uint64      `json:"slot"`
	Err                interface{} `json:"err"`
	Memo               *string     `json:"memo"`
	BlockTime          *int64      `json:"blockTime"`
	ConfirmationStatus string      `json:"confirmationStatus"`
}

type rpcTokenBalance struct {
	AccountIndex  int            `json:"accountIndex"`
	Mint          string         `json:"mint"`
	Owner         string         `json:"owner"`
	ProgramID     string         `json:"programId"`
	UITokenAmount rpcTokenAmount `json:"uiTokenAmount"`
}

type rpcTransactionMeta struct {
	Err               interface{}       `json:"err"`
	Fee               uint64            `json:"fee"`
	PreTokenBalances  []rpcTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []rpcTokenBalance `json:"postTokenBalances"`
}

type rpcInstruction struct {
	ProgramID string `json:"programId"`
	Program   string `json:"program,omitempty"`
}

type rpcTransaction struct {
	Slot        uint64              `json:"slot"`
	BlockTime   *int64              `json:"blockTime"`
	Meta        *rpcTransactionMeta `json:"meta"`
	Transaction struct {
		Signatures []string `json:"signatures"`
		Message    struct {
			Instructions []rpcInstruction `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

// uiAmount returns the human readable amount, preferring the exact string form
func (a rpcTokenAmount) uiAmount() decimal.Decimal {
	if a.UIAmountString != "" {
		if d, err := decimal.NewFromString(a.UIAmountString); err == nil {
			return d
		}
	}
	if a.UIAmount != nil {
		return decimal.NewFromFloat(*a.UIAmount)
	}
	return decimal.Zero
}

func (s rpcSignatureInfo) toEntity() entities.SignatureRecord {
	return entities.SignatureRecord{
		Signature: s.Signature,
		BlockTime: s.BlockTime,
	}
}

func (b rpcTokenBalance) toEntity() entities.TokenBalance {
	return entities.TokenBalance{
		AccountIndex: b.AccountIndex,
		Mint:         b.Mint,
		Owner:        b.Owner,
		UIAmount:     b.UITokenAmount.uiAmount(),
	}
}

func (t *rpcTransaction) toEntity() *entities.Transaction {
	tx := &entities.Transaction{
		Signatures:   t.Transaction.Signatures,
		Slot:         t.Slot,
		BlockTime:    t.BlockTime,
		Instructions: make([]entities.Instruction, len(t.Transaction.Message.Instructions)),
	}

	for i, ix := range t.Transaction.Message.Instructions {
		tx.Instructions[i] = entities.Instruction{
			ProgramID: ix.ProgramID,
			Program:   ix.Program,
		}
	}

	if t.Meta != nil {
		tx.Meta = &entities.TransactionMeta{
			Err:               t.Meta.Err,
			PreTokenBalances:  toTokenBalances(t.Meta.PreTokenBalances),
			PostTokenBalances: toTokenBalances(t.Meta.PostTokenBalances),
		}
	}

	return tx
}

func toTokenBalances(in []rpcTokenBalance) []entities.TokenBalance {
	out := make([]entities.TokenBalance, len(in))
	for i, b := range in {
		out[i] = b.toEntity()
	}
	return out
}
