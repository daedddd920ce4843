// internal/dex/saber/wrap.go
package saber

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

// WrapInfo links an underlying mint to a wrapped mint with more decimals.
// Authority is the wrapper account's own address.
type WrapInfo struct {
	Authority              solana.PublicKey
	Decimals               uint8
	Multiplier             uint64
	UnderlyingMint         solana.PublicKey
	UnderlyingTokenAccount solana.PublicKey
	WrappedMint            solana.PublicKey
}

// ParseWrapInfo decodes a wrapper account. The caller fills in Authority.
func ParseWrapInfo(data []byte) (*WrapInfo, error) {
	var rec wrapInfoRecord
	if err := layout.Decode(WrapInfoLayout, data, &rec); err != nil {
		return nil, err
	}
	return &WrapInfo{
		Decimals:               rec.Decimals,
		Multiplier:             rec.Multiplier,
		UnderlyingMint:         rec.UnderlyingMint,
		UnderlyingTokenAccount: rec.UnderlyingTokenAccount,
		WrappedMint:            rec.WrappedMint,
	}, nil
}

// WrapAmount is underlying × multiplier.
func WrapAmount(underlying, multiplier uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(underlying), new(big.Int).SetUint64(multiplier))
}

// UnwrapAmount is wrapped ÷ multiplier, remainder discarded. A zero
// multiplier unwraps to zero.
func UnwrapAmount(wrapped, multiplier uint64) uint64 {
	if multiplier == 0 {
		return 0
	}
	return wrapped / multiplier
}
