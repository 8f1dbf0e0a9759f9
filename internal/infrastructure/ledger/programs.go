/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramKind tells why a program makes a transaction relevant
type ProgramKind string

const (
	ProgramKindSwap     ProgramKind = "swap"
	ProgramKindTransfer ProgramKind = "transfer"
)

// Well-known program IDs
var (
	RaydiumAMMv4ProgramID  = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OrcaWhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
)

// KnownProgram is a program whose instructions mark a transaction as a possible trade
type KnownProgram struct {
	Name string
	ID   solana.PublicKey
	Kind ProgramKind
}

// ProgramRegistry is the set of recognized programs. It is read-only once built.
type ProgramRegistry struct {
	programs map[string]KnownProgram
}

// DefaultPrograms returns the venues recognized out of the box
func DefaultPrograms() []KnownProgram {
	return []KnownProgram{
		{Name: "raydium-amm-v4", ID: RaydiumAMMv4ProgramID, Kind: ProgramKindSwap},
		{Name: "orca-whirlpool", ID: OrcaWhirlpoolProgramID, Kind: ProgramKindSwap},
		{Name: "spl-token", ID: solana.TokenProgramID, Kind: ProgramKindTransfer},
	}
}

// NewProgramRegistry builds a registry from a list of programs
func NewProgramRegistry(programs ...KnownProgram) *ProgramRegistry {
	r := &ProgramRegistry{programs: make(map[string]KnownProgram, len(programs))}
	for _, p := range programs {
		r.programs[p.ID.String()] = p
	}
	return r
}

// NewDefaultProgramRegistry builds the default registry plus extra swap program IDs
func NewDefaultProgramRegistry(extraSwapProgramIDs []string) (*ProgramRegistry, error) {
	programs := DefaultPrograms()

	for _, id := range extraSwapProgramIDs {
		key, err := solana.PublicKeyFromBase58(id)
		if err != nil {
			return nil, fmt.Errorf("invalid program ID %q: %w", id, err)
		}
		programs = append(programs, KnownProgram{
			Name: "custom:" + id,
			ID:   key,
			Kind: ProgramKindSwap,
		})
	}

	return NewProgramRegistry(programs...), nil
}

// Lookup returns the known program for a base58 program ID
func (r *ProgramRegistry) Lookup(programID string) (KnownProgram, bool) {
	p, ok := r.programs[programID]
	return p, ok
}

// Recognizes reports whether the program ID is in the registry
func (r *ProgramRegistry) Recognizes(programID string) bool {
	_, ok := r.programs[programID]
	return ok
}

// Len returns the number of registered programs
func (r *ProgramRegistry) Len() int {
	return len(r.programs)
}
