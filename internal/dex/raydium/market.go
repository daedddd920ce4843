// internal/dex/raydium/market.go
package raydium

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/serum"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
)

// Market holds the order-book accounts a swap or withdrawal passes through.
type Market struct {
	Address     solana.PublicKey
	ProgramID   solana.PublicKey
	Bids        solana.PublicKey
	Asks        solana.PublicKey
	EventQueue  solana.PublicKey
	CoinVault   solana.PublicKey
	PcVault     solana.PublicKey
	VaultSigner solana.PublicKey
}

// ParseMarket decodes a serum market account and derives its vault signer.
func ParseMarket(data []byte, address, programID solana.PublicKey) (*Market, error) {
	var m serum.MarketV2
	if err := m.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode market %s: %w", address, err)
	}

	signer, err := VaultSigner(address, uint64(m.VaultSignerNonce), programID)
	if err != nil {
		return nil, err
	}

	return &Market{
		Address:     address,
		ProgramID:   programID,
		Bids:        m.Bids,
		Asks:        m.Asks,
		EventQueue:  m.EventQueue,
		CoinVault:   m.BaseVault,
		PcVault:     m.QuoteVault,
		VaultSigner: signer,
	}, nil
}

// VaultSigner derives the market's vault authority from [market, nonce].
func VaultSigner(market solana.PublicKey, nonce uint64, programID solana.PublicKey) (solana.PublicKey, error) {
	var nonceLE [8]byte
	binary.LittleEndian.PutUint64(nonceLE[:], nonce)

	signer, err := solana.CreateProgramAddress([][]byte{market[:], nonceLE[:]}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive vault signer for market %s: %w", market, err)
	}
	return signer, nil
}

// LoadMarket fetches the serum market a pool trades against.
func LoadMarket(ctx context.Context, ledger solbc.Ledger, pool *Pool) (*Market, error) {
	acc, err := ledger.GetAccount(ctx, pool.SerumMarket)
	if err != nil {
		return nil, fmt.Errorf("failed to load market %s: %w", pool.SerumMarket, err)
	}
	return ParseMarket(acc.Data, pool.SerumMarket, pool.SerumProgramID)
}
