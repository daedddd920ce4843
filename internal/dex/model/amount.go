// internal/dex/model/amount.go
package model

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a human amount below zero is converted
// to base units.
var ErrNegativeAmount = errors.New("amount must not be negative")

// TokenAmount is a raw on-chain amount together with the mint precision
// needed to display it.
type TokenAmount struct {
	Mint     solana.PublicKey
	Raw      uint64
	Decimals uint8
}

// Human returns the amount in whole tokens.
func (a TokenAmount) Human() decimal.Decimal {
	return ToHuman(new(big.Int).SetUint64(a.Raw), a.Decimals)
}

func (a TokenAmount) String() string {
	return a.Human().String()
}

// ToHuman divides raw by 10^decimals without rounding.
func ToHuman(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FromHuman converts a whole-token amount to base units, truncating digits
// beyond the mint precision.
func FromHuman(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	raw := amount.Shift(int32(decimals)).Truncate(0).BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows u64 at %d decimals", amount, decimals)
	}
	return raw.Uint64(), nil
}

// ParseHuman parses a decimal string such as "12.5" into base units.
func ParseHuman(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromHuman(d, decimals)
}

// ApplySlippage lowers an expected output by bps basis points, rounding
// down. It is the usual way to derive a minimum-out argument from a quote.
func ApplySlippage(expected uint64, bps uint16) uint64 {
	if bps >= 10_000 {
		return 0
	}
	out := new(big.Int).SetUint64(expected)
	out.Mul(out, big.NewInt(int64(10_000-bps)))
	out.Quo(out, big.NewInt(10_000))
	return out.Uint64()
}
