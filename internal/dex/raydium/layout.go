// internal/dex/raydium/layout.go
package raydium

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

// AmmInfoLayout is the v4 AMM state account.
var AmmInfoLayout = layout.Layout{Name: "AmmInfoV4", Span: 752, AccountSize: 752}

// ammInfoV4 mirrors the on-chain field order.
type ammInfoV4 struct {
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

	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64

	NeedTakePnlCoin      uint64
	NeedTakePnlPc        uint64
	TotalPnlPc           uint64
	TotalPnlCoin         uint64
	PoolTotalDepositPc   bin.Uint128
	PoolTotalDepositCoin bin.Uint128
	SwapCoinInAmount     bin.Uint128
	SwapPcOutAmount      bin.Uint128
	SwapCoin2PcFee       uint64
	SwapPcInAmount       bin.Uint128
	SwapCoinOutAmount    bin.Uint128
	SwapPc2CoinFee       uint64

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
}

// swapArgs, depositArgs and withdrawArgs are the tag-prefixed instruction
// payloads.
type swapArgs struct {
	Instruction  uint8
	AmountIn     uint64
	MinAmountOut uint64
}

type depositArgs struct {
	Instruction   uint8
	MaxCoinAmount uint64
	MaxPcAmount   uint64
	FixedFromCoin uint64
}

type withdrawArgs struct {
	Instruction uint8
	Amount      uint64
}
