// internal/dex/raydium/instructions.go
package raydium

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

// SwapInstructionAccounts lists every account a swap touches.
type SwapInstructionAccounts struct {
	ProgramID solana.PublicKey

	AmmID                solana.PublicKey
	AmmAuthority         solana.PublicKey
	AmmOpenOrders        solana.PublicKey
	AmmTargetOrders      solana.PublicKey
	PoolCoinTokenAccount solana.PublicKey
	PoolPcTokenAccount   solana.PublicKey

	SerumProgramID   solana.PublicKey
	SerumMarket      solana.PublicKey
	SerumBids        solana.PublicKey
	SerumAsks        solana.PublicKey
	SerumEventQueue  solana.PublicKey
	SerumCoinVault   solana.PublicKey
	SerumPcVault     solana.PublicKey
	SerumVaultSigner solana.PublicKey

	UserSourceTokenAccount solana.PublicKey
	UserDestTokenAccount   solana.PublicKey
	UserOwner              solana.PublicKey
}

func (a *SwapInstructionAccounts) buildAccountMetas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		// amm
		solana.NewAccountMeta(a.AmmID, true, false),
		solana.NewAccountMeta(a.AmmAuthority, false, false),
		solana.NewAccountMeta(a.AmmOpenOrders, true, false),
		solana.NewAccountMeta(a.AmmTargetOrders, true, false),
		solana.NewAccountMeta(a.PoolCoinTokenAccount, true, false),
		solana.NewAccountMeta(a.PoolPcTokenAccount, true, false),
		// serum
		solana.NewAccountMeta(a.SerumProgramID, false, false),
		solana.NewAccountMeta(a.SerumMarket, true, false),
		solana.NewAccountMeta(a.SerumBids, true, false),
		solana.NewAccountMeta(a.SerumAsks, true, false),
		solana.NewAccountMeta(a.SerumEventQueue, true, false),
		solana.NewAccountMeta(a.SerumCoinVault, true, false),
		solana.NewAccountMeta(a.SerumPcVault, true, false),
		solana.NewAccountMeta(a.SerumVaultSigner, false, false),
		// user
		solana.NewAccountMeta(a.UserSourceTokenAccount, true, false),
		solana.NewAccountMeta(a.UserDestTokenAccount, true, false),
		solana.NewAccountMeta(a.UserOwner, false, true),
	}
}

// BuildSwapInstruction builds a swap with 18 accounts.
func BuildSwapInstruction(accounts *SwapInstructionAccounts, amountIn, minAmountOut uint64) solana.Instruction {
	data := layout.MustEncode(swapArgs{
		Instruction:  uint8(InstructionTypeSwap),
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
	})
	return solana.NewInstruction(accounts.ProgramID, accounts.buildAccountMetas(), data)
}

// DepositParams are the add-liquidity arguments. FixedFromCoin is 0 when
// the coin amount is fixed and 1 when the pc amount is.
type DepositParams struct {
	MaxCoinAmount uint64
	MaxPcAmount   uint64
	FixedFromCoin uint64
}

// DepositInstructionAccounts lists the accounts of an add-liquidity call.
// AmmQuantities is read by v3 pools and AmmTargetOrders by v4.
type DepositInstructionAccounts struct {
	ProgramID solana.PublicKey

	AmmID                solana.PublicKey
	AmmAuthority         solana.PublicKey
	AmmOpenOrders        solana.PublicKey
	AmmQuantities        solana.PublicKey
	AmmTargetOrders      solana.PublicKey
	LpMint               solana.PublicKey
	PoolCoinTokenAccount solana.PublicKey
	PoolPcTokenAccount   solana.PublicKey

	SerumMarket solana.PublicKey

	UserCoinTokenAccount solana.PublicKey
	UserPcTokenAccount   solana.PublicKey
	UserLpTokenAccount   solana.PublicKey
	UserOwner            solana.PublicKey
}

func (a *DepositInstructionAccounts) buildAccountMetas(slot5 solana.PublicKey) solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(a.AmmID, true, false),
		solana.NewAccountMeta(a.AmmAuthority, false, false),
		solana.NewAccountMeta(a.AmmOpenOrders, false, false),
		solana.NewAccountMeta(slot5, true, false), // quantities or target orders
		solana.NewAccountMeta(a.LpMint, true, false),
		solana.NewAccountMeta(a.PoolCoinTokenAccount, true, false),
		solana.NewAccountMeta(a.PoolPcTokenAccount, true, false),
		solana.NewAccountMeta(a.SerumMarket, false, false),
		solana.NewAccountMeta(a.UserCoinTokenAccount, true, false),
		solana.NewAccountMeta(a.UserPcTokenAccount, true, false),
		solana.NewAccountMeta(a.UserLpTokenAccount, true, false),
		solana.NewAccountMeta(a.UserOwner, false, true),
	}
}

// BuildDepositInstruction builds add-liquidity for a pool of version. The two
// versions differ only in account 5.
func BuildDepositInstruction(version uint8, accounts *DepositInstructionAccounts, params DepositParams) (solana.Instruction, error) {
	slot5, err := liquiditySlot(version, accounts.AmmQuantities, accounts.AmmTargetOrders)
	if err != nil {
		return nil, err
	}

	data := layout.MustEncode(depositArgs{
		Instruction:   uint8(InstructionTypeDeposit),
		MaxCoinAmount: params.MaxCoinAmount,
		MaxPcAmount:   params.MaxPcAmount,
		FixedFromCoin: params.FixedFromCoin,
	})
	return solana.NewInstruction(accounts.ProgramID, accounts.buildAccountMetas(slot5), data), nil
}

// WithdrawParams are the remove-liquidity arguments.
type WithdrawParams struct {
	LPAmount uint64
}

// WithdrawInstructionAccounts lists the accounts of a remove-liquidity call.
// AmmQuantities is read by v3 pools and AmmTargetOrders by v4.
type WithdrawInstructionAccounts struct {
	ProgramID solana.PublicKey

	AmmID                  solana.PublicKey
	AmmAuthority           solana.PublicKey
	AmmOpenOrders          solana.PublicKey
	AmmQuantities          solana.PublicKey
	AmmTargetOrders        solana.PublicKey
	LpMint                 solana.PublicKey
	PoolCoinTokenAccount   solana.PublicKey
	PoolPcTokenAccount     solana.PublicKey
	PoolWithdrawQueue      solana.PublicKey
	PoolTempLpTokenAccount solana.PublicKey

	SerumProgramID   solana.PublicKey
	SerumMarket      solana.PublicKey
	SerumCoinVault   solana.PublicKey
	SerumPcVault     solana.PublicKey
	SerumVaultSigner solana.PublicKey

	UserLpTokenAccount   solana.PublicKey
	UserCoinTokenAccount solana.PublicKey
	UserPcTokenAccount   solana.PublicKey
	UserOwner            solana.PublicKey
}

func (a *WithdrawInstructionAccounts) buildAccountMetas(slot5 solana.PublicKey) solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		// amm
		solana.NewAccountMeta(a.AmmID, true, false),
		solana.NewAccountMeta(a.AmmAuthority, false, false),
		solana.NewAccountMeta(a.AmmOpenOrders, true, false),
		solana.NewAccountMeta(slot5, true, false), // quantities or target orders
		solana.NewAccountMeta(a.LpMint, true, false),
		solana.NewAccountMeta(a.PoolCoinTokenAccount, true, false),
		solana.NewAccountMeta(a.PoolPcTokenAccount, true, false),
		solana.NewAccountMeta(a.PoolWithdrawQueue, true, false),
		solana.NewAccountMeta(a.PoolTempLpTokenAccount, true, false),
		// serum
		solana.NewAccountMeta(a.SerumProgramID, false, false),
		solana.NewAccountMeta(a.SerumMarket, true, false),
		solana.NewAccountMeta(a.SerumCoinVault, true, false),
		solana.NewAccountMeta(a.SerumPcVault, true, false),
		solana.NewAccountMeta(a.SerumVaultSigner, false, false),
		// user
		solana.NewAccountMeta(a.UserLpTokenAccount, true, false),
		solana.NewAccountMeta(a.UserCoinTokenAccount, true, false),
		solana.NewAccountMeta(a.UserPcTokenAccount, true, false),
		solana.NewAccountMeta(a.UserOwner, false, true),
	}
}

// BuildWithdrawInstruction builds remove-liquidity for a pool of version.
func BuildWithdrawInstruction(version uint8, accounts *WithdrawInstructionAccounts, params WithdrawParams) (solana.Instruction, error) {
	slot5, err := liquiditySlot(version, accounts.AmmQuantities, accounts.AmmTargetOrders)
	if err != nil {
		return nil, err
	}

	data := layout.MustEncode(withdrawArgs{
		Instruction: uint8(InstructionTypeWithdraw),
		Amount:      params.LPAmount,
	})
	return solana.NewInstruction(accounts.ProgramID, accounts.buildAccountMetas(slot5), data), nil
}

// liquiditySlot picks account 5 of add/remove liquidity: amm quantities on
// v3, target orders on v4.
func liquiditySlot(version uint8, quantities, targetOrders solana.PublicKey) (solana.PublicKey, error) {
	switch version {
	case VersionV3:
		if quantities.IsZero() {
			return solana.PublicKey{}, ErrMissingQuantities
		}
		return quantities, nil
	case VersionV4:
		return targetOrders, nil
	default:
		return solana.PublicKey{}, &VersionError{Version: version}
	}
}
