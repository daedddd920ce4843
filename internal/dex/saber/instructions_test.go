package saber

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc/solbctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectors(t *testing.T) {
	tests := map[string][8]byte{
		"f223c68952e1f2b6": SelectorWrap,
		"60f6a682e5322b46": SelectorUnwrap,
		"887e5ba228830d7f": SelectorStake,
		"0204e13d13b66aaa": SelectorUnstake,
		"7e179d01935ef545": SelectorCreateMiner,
		"0490844774179750": SelectorClaimRewards,
		"dbeee821de003643": SelectorRedeem,
	}
	for want, got := range tests {
		assert.Equal(t, want, hex.EncodeToString(got[:]))
	}
}

func TestDepositInstruction(t *testing.T) {
	pool := testPool(t)
	owner, srcA, srcB, lp := solbctest.Key(), solbctest.Key(), solbctest.Key(), solbctest.Key()

	ix := DepositInstruction(pool, 100, 200, 150, owner, srcA, srcB, lp)
	assert.Equal(t, SwapProgramID, ix.ProgramID())
	assert.Equal(t, []solana.PublicKey{
		pool.Address, pool.Authority, owner, srcA, srcB,
		pool.TokenAccountA, pool.TokenAccountB, pool.PoolMint, lp,
		solana.TokenProgramID, solana.SysVarClockPubkey,
	}, metaKeys(ix))

	accounts := ix.Accounts()
	assert.True(t, accounts[2].IsSigner)
	assert.False(t, accounts[2].IsWritable, "depositor signs without being written")
	for i := 3; i <= 8; i++ {
		assert.True(t, accounts[i].IsWritable, "account %d", i)
	}
	assert.False(t, accounts[0].IsWritable)

	data := ixData(t, ix)
	require.Len(t, data, 25)
	assert.Equal(t, byte(2), data[0])
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(200), binary.LittleEndian.Uint64(data[9:17]))
	assert.Equal(t, uint64(150), binary.LittleEndian.Uint64(data[17:25]))
}

func TestWithdrawOneInstruction(t *testing.T) {
	pool := testPool(t)
	owner, lp, receive := solbctest.Key(), solbctest.Key(), solbctest.Key()

	ixA, err := WithdrawOneInstruction(pool, SideA, 77, 70, owner, lp, receive)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{
		pool.Address, pool.Authority, owner, pool.PoolMint, lp,
		pool.TokenAccountA, pool.TokenAccountB, receive, pool.AdminFeeAccountA,
		solana.TokenProgramID, solana.SysVarClockPubkey,
	}, metaKeys(ixA))
	assert.Equal(t, append([]byte{4}, 77, 0, 0, 0, 0, 0, 0, 0, 70, 0, 0, 0, 0, 0, 0, 0), ixData(t, ixA))

	ixB, err := WithdrawOneInstruction(pool, SideB, 77, 70, owner, lp, receive)
	require.NoError(t, err)
	keys := metaKeys(ixB)
	assert.Equal(t, pool.TokenAccountB, keys[5])
	assert.Equal(t, pool.TokenAccountA, keys[6])
	assert.Equal(t, pool.AdminFeeAccountB, keys[8])

	_, err = WithdrawOneInstruction(pool, Side(9), 1, 1, owner, lp, receive)
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestWrapInstructions(t *testing.T) {
	w := testWrap(t, solbctest.Key(), 1_000)
	owner, in, out := solbctest.Key(), solbctest.Key(), solbctest.Key()

	assert.Empty(t, WrapInstruction(w, owner, 0, in, out))

	ixs := WrapInstruction(w, owner, 5, in, out)
	require.Len(t, ixs, 1)
	assert.Equal(t, WrapProgramID, ixs[0].ProgramID())
	assert.Equal(t, []solana.PublicKey{
		w.Authority, w.WrappedMint, w.UnderlyingTokenAccount, owner, in, out, solana.TokenProgramID,
	}, metaKeys(ixs[0]))
	assert.Equal(t, "f223c68952e1f2b60500000000000000", hex.EncodeToString(ixData(t, ixs[0])))

	unwrap := UnwrapInstruction(w, owner, out, in)
	assert.Equal(t, []solana.PublicKey{
		w.Authority, w.WrappedMint, w.UnderlyingTokenAccount, owner, in, out, solana.TokenProgramID,
	}, metaKeys(unwrap))
	assert.Equal(t, "60f6a682e5322b46", hex.EncodeToString(ixData(t, unwrap)))
	assert.True(t, unwrap.Accounts()[3].IsSigner)
}

func TestStakeInstructions(t *testing.T) {
	farm := testFarm(t, solbctest.Key())
	owner := solbctest.Key()

	miner, bump, err := MinerAddress(farm.Address, owner)
	require.NoError(t, err)
	vault := ata(t, miner, farm.TokenMint)

	stake, err := StakeInstruction(farm, owner, 9)
	require.NoError(t, err)
	want := []solana.PublicKey{
		owner, miner, farm.Address, vault, ata(t, owner, farm.TokenMint), solana.TokenProgramID, Rewarder,
	}
	assert.Equal(t, QuarryMineID, stake.ProgramID())
	assert.Equal(t, want, metaKeys(stake))
	assert.Equal(t, "887e5ba228830d7f0900000000000000", hex.EncodeToString(ixData(t, stake)))
	assert.True(t, stake.Accounts()[0].IsSigner)
	assert.True(t, stake.Accounts()[0].IsWritable)
	assert.False(t, stake.Accounts()[6].IsWritable)

	unstake, err := UnstakeInstruction(farm, owner, 9)
	require.NoError(t, err)
	assert.Equal(t, want, metaKeys(unstake))
	assert.Equal(t, "0204e13d13b66aaa0900000000000000", hex.EncodeToString(ixData(t, unstake)))

	create, err := CreateMinerInstruction(farm, owner)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{
		owner, miner, farm.Address, Rewarder, solana.SystemProgramID, owner, farm.TokenMint, vault, solana.TokenProgramID,
	}, metaKeys(create))
	data := ixData(t, create)
	require.Len(t, data, 16)
	assert.Equal(t, "7e179d01935ef545", hex.EncodeToString(data[:8]))
	assert.Equal(t, uint64(bump), binary.LittleEndian.Uint64(data[8:]))
}

func TestClaimInstructionsOrder(t *testing.T) {
	farm := testFarm(t, solbctest.Key())
	owner := solbctest.Key()

	ixs, err := ClaimInstructions(farm, owner)
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	claim, redeem := ixs[0], ixs[1]
	assert.Equal(t, QuarryMineID, claim.ProgramID())
	assert.Equal(t, RedeemProgramID, redeem.ProgramID())
	assert.Equal(t, "0490844774179750", hex.EncodeToString(ixData(t, claim)))
	assert.Equal(t, "dbeee821de003643", hex.EncodeToString(ixData(t, redeem)))

	iou := ata(t, owner, IOUMint)
	claimKeys := metaKeys(claim)
	require.Len(t, claimKeys, 13)
	assert.Equal(t, IOUMint, claimKeys[3])
	assert.Equal(t, iou, claimKeys[4])
	assert.Equal(t, owner, claimKeys[6])
	assert.Equal(t, farm.Address, claimKeys[8])
	assert.Equal(t, Rewarder, claimKeys[12])

	redeemKeys := metaKeys(redeem)
	require.Len(t, redeemKeys, 12)
	assert.Equal(t, SBRMint, redeemKeys[2])
	assert.Equal(t, owner, redeemKeys[5])
	assert.Equal(t, iou, redeemKeys[6])
	assert.Equal(t, ata(t, owner, SBRMint), redeemKeys[7])
	assert.True(t, redeem.Accounts()[5].IsSigner)
	assert.True(t, redeem.Accounts()[11].IsWritable)
}
