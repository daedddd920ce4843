// internal/dex/saber/instructions.go
package saber

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

func anchorAmount(selector [8]byte, amount uint64) []byte {
	return layout.MustEncode(anchorAmountArgs{Selector: selector, Amount: amount})
}

// DepositInstruction adds liquidity from sourceA and sourceB and mints at
// least minMintAmount LP tokens into lpAccount.
func DepositInstruction(pool *StableSwap, amountA, amountB, minMintAmount uint64, owner, sourceA, sourceB, lpAccount solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: pool.Address},
		{PublicKey: pool.Authority},
		{PublicKey: owner, IsSigner: true},
		{PublicKey: sourceA, IsWritable: true},
		{PublicKey: sourceB, IsWritable: true},
		{PublicKey: pool.TokenAccountA, IsWritable: true},
		{PublicKey: pool.TokenAccountB, IsWritable: true},
		{PublicKey: pool.PoolMint, IsWritable: true},
		{PublicKey: lpAccount, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.SysVarClockPubkey},
	}

	data := layout.MustEncode(depositArgs{
		Instruction:   tagDeposit,
		AmountA:       amountA,
		AmountB:       amountB,
		MinMintAmount: minMintAmount,
	})
	return solana.NewInstruction(SwapProgramID, accounts, data)
}

// WithdrawOneInstruction burns lpAmount LP tokens for one side's token.
func WithdrawOneInstruction(pool *StableSwap, side Side, lpAmount, minAmountOut uint64, owner, lpSource, receive solana.PublicKey) (solana.Instruction, error) {
	base, quote, fee, err := pool.withdrawAccounts(side)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: pool.Address},
		{PublicKey: pool.Authority},
		{PublicKey: owner, IsSigner: true},
		{PublicKey: pool.PoolMint, IsWritable: true},
		{PublicKey: lpSource, IsWritable: true},
		{PublicKey: base, IsWritable: true},
		{PublicKey: quote, IsWritable: true},
		{PublicKey: receive, IsWritable: true},
		{PublicKey: fee, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.SysVarClockPubkey},
	}

	data := layout.MustEncode(withdrawOneArgs{
		Instruction:     tagWithdrawOne,
		PoolTokenAmount: lpAmount,
		MinAmountOut:    minAmountOut,
	})
	return solana.NewInstruction(SwapProgramID, accounts, data), nil
}

// WrapInstruction wraps amount underlying tokens from wrapIn into wrapOut.
// A zero amount yields no instruction.
func WrapInstruction(w *WrapInfo, owner solana.PublicKey, amount uint64, wrapIn, wrapOut solana.PublicKey) []solana.Instruction {
	if amount == 0 {
		return nil
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: w.Authority, IsWritable: true},
		{PublicKey: w.WrappedMint, IsWritable: true},
		{PublicKey: w.UnderlyingTokenAccount, IsWritable: true},
		{PublicKey: owner, IsSigner: true},
		{PublicKey: wrapIn, IsWritable: true},
		{PublicKey: wrapOut, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
	}
	return []solana.Instruction{
		solana.NewInstruction(WrapProgramID, accounts, anchorAmount(SelectorWrap, amount)),
	}
}

// UnwrapInstruction unwraps the whole balance of wrapped into underlying.
func UnwrapInstruction(w *WrapInfo, owner, wrapped, underlying solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: w.Authority, IsWritable: true},
		{PublicKey: w.WrappedMint, IsWritable: true},
		{PublicKey: w.UnderlyingTokenAccount, IsWritable: true},
		{PublicKey: owner, IsSigner: true},
		{PublicKey: underlying, IsWritable: true},
		{PublicKey: wrapped, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
	}
	selector := SelectorUnwrap
	return solana.NewInstruction(WrapProgramID, accounts, selector[:])
}

// stakeAccounts is the account list shared by stake_tokens and
// withdraw_tokens.
func stakeAccounts(farm *Farm, owner solana.PublicKey) ([]*solana.AccountMeta, error) {
	miner, _, vault, err := minerAccounts(farm, owner)
	if err != nil {
		return nil, err
	}
	lpAccount, _, err := solana.FindAssociatedTokenAddress(owner, farm.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive staking account: %w", err)
	}

	return []*solana.AccountMeta{
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: miner, IsWritable: true},
		{PublicKey: farm.Address, IsWritable: true},
		{PublicKey: vault, IsWritable: true},
		{PublicKey: lpAccount, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: farm.Rewarder},
	}, nil
}

// StakeInstruction moves amount staking tokens from owner's associated
// account into the miner vault.
func StakeInstruction(farm *Farm, owner solana.PublicKey, amount uint64) (solana.Instruction, error) {
	accounts, err := stakeAccounts(farm, owner)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(QuarryMineID, accounts, anchorAmount(SelectorStake, amount)), nil
}

// UnstakeInstruction moves amount staking tokens back to owner.
func UnstakeInstruction(farm *Farm, owner solana.PublicKey, amount uint64) (solana.Instruction, error) {
	accounts, err := stakeAccounts(farm, owner)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(QuarryMineID, accounts, anchorAmount(SelectorUnstake, amount)), nil
}

// CreateMinerInstruction initializes owner's miner in farm. The miner vault
// must already exist.
func CreateMinerInstruction(farm *Farm, owner solana.PublicKey) (solana.Instruction, error) {
	miner, bump, vault, err := minerAccounts(farm, owner)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: miner, IsWritable: true},
		{PublicKey: farm.Address, IsWritable: true},
		{PublicKey: farm.Rewarder},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: farm.TokenMint},
		{PublicKey: vault, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
	}
	return solana.NewInstruction(QuarryMineID, accounts, anchorAmount(SelectorCreateMiner, uint64(bump))), nil
}

// ClaimInstructions claims IOU rewards from the farm and then redeems them
// for SBR. The order is fixed: the redeem reads the IOU the claim mints.
func ClaimInstructions(farm *Farm, owner solana.PublicKey) ([]solana.Instruction, error) {
	miner, _, vault, err := minerAccounts(farm, owner)
	if err != nil {
		return nil, err
	}
	lpAccount, _, err := solana.FindAssociatedTokenAddress(owner, farm.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive staking account: %w", err)
	}
	iouAccount, _, err := solana.FindAssociatedTokenAddress(owner, IOUMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive IOU account: %w", err)
	}
	sbrAccount, _, err := solana.FindAssociatedTokenAddress(owner, SBRMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive SBR account: %w", err)
	}

	claim := []*solana.AccountMeta{
		{PublicKey: saberMintWrapper, IsWritable: true},
		{PublicKey: quarryMintWrapper},
		{PublicKey: saberFarmMinter, IsWritable: true},
		{PublicKey: IOUMint, IsWritable: true},
		{PublicKey: iouAccount, IsWritable: true},
		{PublicKey: claimFeeTokenAccount, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: miner, IsWritable: true},
		{PublicKey: farm.Address, IsWritable: true},
		{PublicKey: vault, IsWritable: true},
		{PublicKey: lpAccount, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: farm.Rewarder},
	}

	redeem := []*solana.AccountMeta{
		{PublicKey: redeemer},
		{PublicKey: IOUMint, IsWritable: true},
		{PublicKey: SBRMint, IsWritable: true},
		{PublicKey: redeemerVault, IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: iouAccount, IsWritable: true},
		{PublicKey: sbrAccount, IsWritable: true},
		{PublicKey: mintProxyState},
		{PublicKey: mintProxyProgram},
		{PublicKey: mintProxyAuthority},
		{PublicKey: redeemerMinterState, IsWritable: true},
	}

	claimSel, redeemSel := SelectorClaimRewards, SelectorRedeem
	return []solana.Instruction{
		solana.NewInstruction(QuarryMineID, claim, claimSel[:]),
		solana.NewInstruction(RedeemProgramID, redeem, redeemSel[:]),
	}, nil
}
