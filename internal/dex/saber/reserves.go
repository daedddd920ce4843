// internal/dex/saber/reserves.go
package saber

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
)

// SwapReserves are the pool balances and LP supply at one read.
type SwapReserves struct {
	AmountA  uint64
	AmountB  uint64
	LPSupply uint64
}

// Refresh reads both vaults and the LP mint. The pool is not modified.
func (s *StableSwap) Refresh(ctx context.Context, ledger solbc.Ledger) (*SwapReserves, error) {
	addresses := []solana.PublicKey{s.TokenAccountA, s.TokenAccountB, s.PoolMint}
	accounts, err := ledger.GetAccounts(ctx, addresses)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(addresses) {
		return nil, fmt.Errorf("ledger returned %d accounts for %d addresses", len(accounts), len(addresses))
	}
	for i, acc := range accounts {
		if acc == nil {
			return nil, fmt.Errorf("pool %s account %s: %w", s.Address, addresses[i], solbc.ErrAccountNotFound)
		}
	}

	a, err := spltoken.ParseTokenAccount(accounts[0].Data, addresses[0])
	if err != nil {
		return nil, fmt.Errorf("token account A: %w", err)
	}
	b, err := spltoken.ParseTokenAccount(accounts[1].Data, addresses[1])
	if err != nil {
		return nil, fmt.Errorf("token account B: %w", err)
	}
	mint, err := spltoken.ParseMint(accounts[2].Data, addresses[2])
	if err != nil {
		return nil, fmt.Errorf("pool mint: %w", err)
	}

	return &SwapReserves{AmountA: a.Amount, AmountB: b.Amount, LPSupply: mint.Supply}, nil
}
