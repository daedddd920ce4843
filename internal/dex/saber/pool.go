// internal/dex/saber/pool.go
package saber

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

// Side selects one of the two pool tokens.
type Side uint8

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// ParseSide accepts "A" or "B" in either case.
func ParseSide(s string) (Side, error) {
	switch s {
	case "A", "a":
		return SideA, nil
	case "B", "b":
		return SideB, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidSide)
	}
}

// Fees is the fee block trailing the swap state.
type Fees struct {
	AdminTradeFeeNumerator      uint64
	AdminTradeFeeDenominator    uint64
	AdminWithdrawFeeNumerator   uint64
	AdminWithdrawFeeDenominator uint64
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	WithdrawFeeNumerator        uint64
	WithdrawFeeDenominator      uint64
}

// StableSwap is a snapshot of a stable-swap pool plus the optional wrap and
// farm links discovery attaches. Nil links mean no association.
type StableSwap struct {
	Address   solana.PublicKey
	Authority solana.PublicKey

	IsInitialized       bool
	IsPaused            bool
	Nonce               uint8
	InitialAmpFactor    uint64
	TargetAmpFactor     uint64
	StartRampTs         int64
	StopRampTs          int64
	FutureAdminDeadline int64
	FutureAdminKey      solana.PublicKey
	AdminKey            solana.PublicKey
	TokenAccountA       solana.PublicKey
	TokenAccountB       solana.PublicKey
	PoolMint            solana.PublicKey
	MintA               solana.PublicKey
	MintB               solana.PublicKey
	AdminFeeAccountA    solana.PublicKey
	AdminFeeAccountB    solana.PublicKey
	Fees                Fees

	WrapA *WrapInfo
	WrapB *WrapInfo
	Farm  *Farm
}

// ParseStableSwap decodes a swap account and derives its authority.
func ParseStableSwap(data []byte, address solana.PublicKey) (*StableSwap, error) {
	var rec swapInfoRecord
	if err := layout.Decode(SwapInfoLayout, data, &rec); err != nil {
		return nil, err
	}

	authority, _, err := solana.FindProgramAddress([][]byte{address[:]}, SwapProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive swap authority for %s: %w", address, err)
	}

	return &StableSwap{
		Address:             address,
		Authority:           authority,
		IsInitialized:       rec.IsInitialized,
		IsPaused:            rec.IsPaused,
		Nonce:               rec.Nonce,
		InitialAmpFactor:    rec.InitialAmpFactor,
		TargetAmpFactor:     rec.TargetAmpFactor,
		StartRampTs:         rec.StartRampTs,
		StopRampTs:          rec.StopRampTs,
		FutureAdminDeadline: rec.FutureAdminDeadline,
		FutureAdminKey:      rec.FutureAdminKey,
		AdminKey:            rec.AdminKey,
		TokenAccountA:       rec.TokenAccountA,
		TokenAccountB:       rec.TokenAccountB,
		PoolMint:            rec.PoolMint,
		MintA:               rec.MintA,
		MintB:               rec.MintB,
		AdminFeeAccountA:    rec.AdminFeeAccountA,
		AdminFeeAccountB:    rec.AdminFeeAccountB,
		Fees:                rec.Fees,
	}, nil
}

// Mint returns the mint of side.
func (s *StableSwap) Mint(side Side) (solana.PublicKey, error) {
	switch side {
	case SideA:
		return s.MintA, nil
	case SideB:
		return s.MintB, nil
	default:
		return solana.PublicKey{}, ErrInvalidSide
	}
}

// Wrap returns the wrap link of side, nil when the side is not wrapped.
func (s *StableSwap) Wrap(side Side) *WrapInfo {
	switch side {
	case SideA:
		return s.WrapA
	case SideB:
		return s.WrapB
	default:
		return nil
	}
}

// IsFarming reports whether a farm accepts this pool's LP token.
func (s *StableSwap) IsFarming() bool {
	return s.Farm != nil
}

// RequireFarm returns the farm link or a MissingAssociationError.
func (s *StableSwap) RequireFarm() (*Farm, error) {
	if s.Farm == nil {
		return nil, &MissingAssociationError{Pool: s.Address, Kind: "farm"}
	}
	return s.Farm, nil
}

// withdrawAccounts returns the base, quote and admin fee accounts for a
// single-sided withdrawal into side.
func (s *StableSwap) withdrawAccounts(side Side) (base, quote, fee solana.PublicKey, err error) {
	switch side {
	case SideA:
		return s.TokenAccountA, s.TokenAccountB, s.AdminFeeAccountA, nil
	case SideB:
		return s.TokenAccountB, s.TokenAccountA, s.AdminFeeAccountB, nil
	default:
		return base, quote, fee, ErrInvalidSide
	}
}
