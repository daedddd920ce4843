// internal/dex/raydium/errors.go
package raydium

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrUnknownVersion is matched by VersionError and ProgramError.
	ErrUnknownVersion = errors.New("unknown raydium pool version")

	// ErrEmptyReserve means an effective reserve is zero or negative, so no
	// quote exists.
	ErrEmptyReserve = errors.New("pool reserve is empty")

	// ErrMintNotInPool is returned when a swap names a mint the pool does
	// not trade.
	ErrMintNotInPool = errors.New("mint is not traded by pool")

	// ErrMissingQuantities means a v3 liquidity instruction was requested
	// for a pool whose amm quantities account is unknown.
	ErrMissingQuantities = errors.New("v3 pool has no amm quantities account")

	// ErrInvalidPool is returned by ValidatePoolAccounts.
	ErrInvalidPool = errors.New("invalid pool")
)

// VersionError reports a pool version other than 3 or 4.
type VersionError struct {
	Version uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unknown raydium pool version %d", e.Version)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrUnknownVersion
}

// ProgramError reports a pool account owned by neither AMM program.
type ProgramError struct {
	Program solana.PublicKey
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("account owner %s is not a raydium amm program", e.Program)
}

func (e *ProgramError) Is(target error) bool {
	return target == ErrUnknownVersion
}
