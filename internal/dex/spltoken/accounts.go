// internal/dex/spltoken/accounts.go
package spltoken

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

var (
	TokenAccountLayout = layout.Layout{Name: "TokenAccount", Span: 165, AccountSize: 165}
	MintLayout         = layout.Layout{Name: "Mint", Span: 82, AccountSize: 82}
)

// Account states.
const (
	StateUninitialized uint8 = iota
	StateInitialized
	StateFrozen
)

type tokenAccountRecord struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       solana.PublicKey
}

type mintRecord struct {
	MintAuthorityOption   uint32
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         bool
	FreezeAuthorityOption uint32
	FreezeAuthority       solana.PublicKey
}

// TokenAccount is a read-once snapshot of an SPL token account.
type TokenAccount struct {
	Address  solana.PublicKey
	Mint     solana.PublicKey
	Owner    solana.PublicKey
	Amount   uint64
	State    uint8
	IsNative bool
}

// Mint is a snapshot of an SPL mint.
type Mint struct {
	Address       solana.PublicKey
	MintAuthority *solana.PublicKey
	Supply        uint64
	Decimals      uint8
	IsInitialized bool
}

// ParseTokenAccount decodes a 165-byte token account.
func ParseTokenAccount(data []byte, address solana.PublicKey) (*TokenAccount, error) {
	var rec tokenAccountRecord
	if err := layout.Decode(TokenAccountLayout, data, &rec); err != nil {
		return nil, err
	}
	return &TokenAccount{
		Address:  address,
		Mint:     rec.Mint,
		Owner:    rec.Owner,
		Amount:   rec.Amount,
		State:    rec.State,
		IsNative: rec.IsNativeOption != 0,
	}, nil
}

// ParseMint decodes an 82-byte mint.
func ParseMint(data []byte, address solana.PublicKey) (*Mint, error) {
	var rec mintRecord
	if err := layout.Decode(MintLayout, data, &rec); err != nil {
		return nil, err
	}
	m := &Mint{
		Address:       address,
		Supply:        rec.Supply,
		Decimals:      rec.Decimals,
		IsInitialized: rec.IsInitialized,
	}
	if rec.MintAuthorityOption != 0 {
		authority := rec.MintAuthority
		m.MintAuthority = &authority
	}
	return m, nil
}

// ListByOwner returns every token account held by owner.
func ListByOwner(ctx context.Context, ledger solbc.Ledger, owner solana.PublicKey) ([]*TokenAccount, error) {
	accounts, err := ledger.GetTokenAccountsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]*TokenAccount, 0, len(accounts))
	for _, acc := range accounts {
		ta, err := ParseTokenAccount(acc.Data, acc.Address)
		if err != nil {
			return nil, fmt.Errorf("token account %s: %w", acc.Address, err)
		}
		out = append(out, ta)
	}
	return out, nil
}

// BalancesByMint sums owner's token balances per mint.
func BalancesByMint(accounts []*TokenAccount) map[solana.PublicKey]uint64 {
	out := make(map[solana.PublicKey]uint64, len(accounts))
	for _, ta := range accounts {
		out[ta.Mint] += ta.Amount
	}
	return out
}

// GetMints fetches and decodes mints in input order.
func GetMints(ctx context.Context, ledger solbc.Ledger, addresses []solana.PublicKey) ([]*Mint, error) {
	accounts, err := ledger.GetAccounts(ctx, addresses)
	if err != nil {
		return nil, err
	}
	out := make([]*Mint, len(addresses))
	for i, acc := range accounts {
		if acc == nil {
			return nil, fmt.Errorf("mint %s: %w", addresses[i], solbc.ErrAccountNotFound)
		}
		m, err := ParseMint(acc.Data, acc.Address)
		if err != nil {
			return nil, fmt.Errorf("mint %s: %w", addresses[i], err)
		}
		out[i] = m
	}
	return out, nil
}
