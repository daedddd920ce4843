// internal/blockchain/solbc/types.go
package solbc

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// DefaultBatchSize is the number of addresses sent in one getMultipleAccounts call.
const DefaultBatchSize = 96

// Account is a raw account as returned by the node.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Memcmp restricts program-account discovery to accounts whose bytes at
// Offset equal Bytes.
type Memcmp struct {
	Offset uint64
	Bytes  []byte
}

// Ledger is everything the dex packages need from the chain.
type Ledger interface {
	// GetAccount returns ErrAccountNotFound when the address is empty.
	GetAccount(ctx context.Context, address solana.PublicKey) (*Account, error)

	// GetAccounts preserves input order; missing accounts come back as nil.
	GetAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*Account, error)

	// FindProgramAccounts lists accounts owned by program with exactly size
	// bytes of data and, when filter is set, matching bytes at filter.Offset.
	FindProgramAccounts(ctx context.Context, program solana.PublicKey, size uint64, filter *Memcmp) ([]*Account, error)

	// GetAccountOwner reports the owning program of address, or nil when the
	// account does not exist.
	GetAccountOwner(ctx context.Context, address solana.PublicKey) (*solana.PublicKey, error)

	// GetTokenAccountsByOwner lists SPL token accounts held by owner.
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]*Account, error)
}
