// internal/dex/saber/layout.go
package saber

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

var (
	SwapInfoLayout = layout.Layout{Name: "SwapInfo", Span: 395, AccountSize: 395}
	WrapInfoLayout = layout.Layout{Name: "WrapInfo", Prefix: layout.AnchorPrefix, Span: 105, AccountSize: 114}
	FarmLayout     = layout.Layout{Name: "Farm", Prefix: layout.AnchorPrefix, Span: 132, AccountSize: 140}
	MinerLayout    = layout.Layout{Name: "Miner", Prefix: layout.AnchorPrefix, Span: 137, AccountSize: 145}
)

// Discovery filter offsets.
const (
	adminKeyOffset = 75
	rewarderOffset = layout.AnchorPrefix
	ownerOffset    = layout.AnchorPrefix + 32
)

type swapInfoRecord struct {
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
}

type wrapInfoRecord struct {
	Decimals               uint8
	Multiplier             uint64
	UnderlyingMint         solana.PublicKey
	UnderlyingTokenAccount solana.PublicKey
	WrappedMint            solana.PublicKey
}

type farmRecord struct {
	Rewarder              solana.PublicKey
	TokenMint             solana.PublicKey
	Bump                  uint8
	Index                 uint16
	TokenMintDecimals     uint8
	FamineTs              int64
	LastUpdateTs          int64
	RewardsPerTokenStored bin.Uint128
	AnnualRewardsRate     uint64
	RewardsShare          uint64
	TotalTokensDeposited  uint64
	NumMiners             uint64
}

type minerRecord struct {
	Farm                solana.PublicKey
	Owner               solana.PublicKey
	Bump                uint8
	Vault               solana.PublicKey
	RewardsEarned       uint64
	RewardsPerTokenPaid bin.Uint128
	Balance             uint64
	Index               uint64
}

type depositArgs struct {
	Instruction   uint8
	AmountA       uint64
	AmountB       uint64
	MinMintAmount uint64
}

type withdrawOneArgs struct {
	Instruction     uint8
	PoolTokenAmount uint64
	MinAmountOut    uint64
}

// anchorAmountArgs is an Anchor selector followed by one u64.
type anchorAmountArgs struct {
	Selector [8]byte
	Amount   uint64
}
