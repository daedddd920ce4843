// internal/dex/raydium/pool.go
package raydium

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

// Side names the token a swap pays in. Coin is the pool's base token and
// Pc its quote token.
type Side uint8

const (
	SideCoin Side = iota
	SidePc
)

func (s Side) String() string {
	if s == SidePc {
		return "pc"
	}
	return "coin"
}

// Fees holds the pool's fee ratios.
type Fees struct {
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
}

// Pool is an immutable snapshot of a constant-product AMM account. It holds
// no reserve balances; call Refresh to get a RefreshedPool that can quote.
type Pool struct {
	Address solana.PublicKey
	Version uint8

	Status              uint64
	Nonce               uint64
	OrderNum            uint64
	Depth               uint64
	CoinDecimals        uint64
	PcDecimals          uint64
	State               uint64
	ResetFlag           uint64
	MinSize             uint64
	VolMaxCutRatio      uint64
	AmountWaveRatio     uint64
	CoinLotSize         uint64
	PcLotSize           uint64
	MinPriceMultiplier  uint64
	MaxPriceMultiplier  uint64
	SystemDecimalsValue uint64
	Fees                Fees

	NeedTakePnlCoin      uint64
	NeedTakePnlPc        uint64
	TotalPnlPc           uint64
	TotalPnlCoin         uint64
	PoolTotalDepositPc   *big.Int
	PoolTotalDepositCoin *big.Int

	PoolCoinTokenAccount   solana.PublicKey
	PoolPcTokenAccount     solana.PublicKey
	CoinMint               solana.PublicKey
	PcMint                 solana.PublicKey
	LpMint                 solana.PublicKey
	AmmOpenOrders          solana.PublicKey
	SerumMarket            solana.PublicKey
	SerumProgramID         solana.PublicKey
	AmmTargetOrders        solana.PublicKey
	PoolWithdrawQueue      solana.PublicKey
	PoolTempLpTokenAccount solana.PublicKey
	AmmOwner               solana.PublicKey
	PnlOwner               solana.PublicKey

	// AmmQuantities replaces the target-orders slot of liquidity
	// instructions on v3 pools. It is not stored in the pool account and
	// comes from a PoolCache pool list.
	AmmQuantities solana.PublicKey
}

// ParsePool decodes an AMM account. The version is taken from owner, the
// program the account belongs to.
func ParsePool(data []byte, address, owner solana.PublicKey) (*Pool, error) {
	version, err := VersionOf(owner)
	if err != nil {
		return nil, err
	}

	var rec ammInfoV4
	if err := layout.Decode(AmmInfoLayout, data, &rec); err != nil {
		return nil, err
	}

	return &Pool{
		Address:             address,
		Version:             version,
		Status:              rec.Status,
		Nonce:               rec.Nonce,
		OrderNum:            rec.OrderNum,
		Depth:               rec.Depth,
		CoinDecimals:        rec.CoinDecimals,
		PcDecimals:          rec.PcDecimals,
		State:               rec.State,
		ResetFlag:           rec.ResetFlag,
		MinSize:             rec.MinSize,
		VolMaxCutRatio:      rec.VolMaxCutRatio,
		AmountWaveRatio:     rec.AmountWaveRatio,
		CoinLotSize:         rec.CoinLotSize,
		PcLotSize:           rec.PcLotSize,
		MinPriceMultiplier:  rec.MinPriceMultiplier,
		MaxPriceMultiplier:  rec.MaxPriceMultiplier,
		SystemDecimalsValue: rec.SystemDecimalsValue,
		Fees: Fees{
			MinSeparateNumerator:   rec.MinSeparateNumerator,
			MinSeparateDenominator: rec.MinSeparateDenominator,
			TradeFeeNumerator:      rec.TradeFeeNumerator,
			TradeFeeDenominator:    rec.TradeFeeDenominator,
			PnlNumerator:           rec.PnlNumerator,
			PnlDenominator:         rec.PnlDenominator,
			SwapFeeNumerator:       rec.SwapFeeNumerator,
			SwapFeeDenominator:     rec.SwapFeeDenominator,
		},
		NeedTakePnlCoin:        rec.NeedTakePnlCoin,
		NeedTakePnlPc:          rec.NeedTakePnlPc,
		TotalPnlPc:             rec.TotalPnlPc,
		TotalPnlCoin:           rec.TotalPnlCoin,
		PoolTotalDepositPc:     rec.PoolTotalDepositPc.BigInt(),
		PoolTotalDepositCoin:   rec.PoolTotalDepositCoin.BigInt(),
		PoolCoinTokenAccount:   rec.PoolCoinTokenAccount,
		PoolPcTokenAccount:     rec.PoolPcTokenAccount,
		CoinMint:               rec.CoinMint,
		PcMint:                 rec.PcMint,
		LpMint:                 rec.LpMint,
		AmmOpenOrders:          rec.AmmOpenOrders,
		SerumMarket:            rec.SerumMarket,
		SerumProgramID:         rec.SerumProgramID,
		AmmTargetOrders:        rec.AmmTargetOrders,
		PoolWithdrawQueue:      rec.PoolWithdrawQueue,
		PoolTempLpTokenAccount: rec.PoolTempLpTokenAccount,
		AmmOwner:               rec.AmmOwner,
		PnlOwner:               rec.PnlOwner,
	}, nil
}

// ProgramID returns the AMM program that owns the pool.
func (p *Pool) ProgramID() (solana.PublicKey, error) {
	return ProgramID(p.Version)
}

// SideOf reports which side of the pool mint is on.
func (p *Pool) SideOf(mint solana.PublicKey) (Side, error) {
	switch {
	case mint.Equals(p.CoinMint):
		return SideCoin, nil
	case mint.Equals(p.PcMint):
		return SidePc, nil
	default:
		return 0, ErrMintNotInPool
	}
}

// ValidatePoolAccounts checks that every account a swap or liquidity
// instruction references is set.
func ValidatePoolAccounts(pool *Pool) error {
	accounts := []struct {
		name string
		key  solana.PublicKey
	}{
		{"address", pool.Address},
		{"coin vault", pool.PoolCoinTokenAccount},
		{"pc vault", pool.PoolPcTokenAccount},
		{"coin mint", pool.CoinMint},
		{"pc mint", pool.PcMint},
		{"lp mint", pool.LpMint},
		{"open orders", pool.AmmOpenOrders},
		{"serum market", pool.SerumMarket},
	}
	for _, acc := range accounts {
		if acc.key.IsZero() {
			return fmt.Errorf("%w: %s is zero", ErrInvalidPool, acc.name)
		}
	}
	return nil
}
