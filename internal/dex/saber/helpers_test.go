package saber

import (
	"encoding/hex"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc/solbctest"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
	"github.com/stretchr/testify/require"
)

// accountData encodes rec behind l's prefix and pads it to the account size.
func accountData(t *testing.T, l layout.Layout, rec interface{}) []byte {
	t.Helper()
	payload, err := layout.Encode(rec)
	require.NoError(t, err)
	require.Len(t, payload, l.Span)

	data := make([]byte, l.AccountSize)
	copy(data[l.Prefix:], payload)
	return data
}

func testSwapRecord() swapInfoRecord {
	return swapInfoRecord{
		IsInitialized:    true,
		Nonce:            253,
		InitialAmpFactor: 100,
		TargetAmpFactor:  200,
		StartRampTs:      1_600_000_000,
		StopRampTs:       1_700_000_000,
		FutureAdminKey:   solbctest.Key(),
		AdminKey:         AdminKey,
		TokenAccountA:    solbctest.Key(),
		TokenAccountB:    solbctest.Key(),
		PoolMint:         solbctest.Key(),
		MintA:            solbctest.Key(),
		MintB:            solbctest.Key(),
		AdminFeeAccountA: solbctest.Key(),
		AdminFeeAccountB: solbctest.Key(),
		Fees: Fees{
			TradeFeeNumerator:   4,
			TradeFeeDenominator: 10_000,
		},
	}
}

func swapAccount(t *testing.T, rec swapInfoRecord) *solbc.Account {
	t.Helper()
	return &solbc.Account{
		Address: solbctest.Key(),
		Owner:   SwapProgramID,
		Data:    accountData(t, SwapInfoLayout, rec),
	}
}

func testPool(t *testing.T) *StableSwap {
	t.Helper()
	acc := swapAccount(t, testSwapRecord())
	pool, err := ParseStableSwap(acc.Data, acc.Address)
	require.NoError(t, err)
	return pool
}

func wrapAccount(t *testing.T, wrappedMint solana.PublicKey, multiplier uint64) *solbc.Account {
	t.Helper()
	return &solbc.Account{
		Address: solbctest.Key(),
		Owner:   WrapProgramID,
		Data: accountData(t, WrapInfoLayout, wrapInfoRecord{
			Decimals:               9,
			Multiplier:             multiplier,
			UnderlyingMint:         solbctest.Key(),
			UnderlyingTokenAccount: solbctest.Key(),
			WrappedMint:            wrappedMint,
		}),
	}
}

func testWrap(t *testing.T, wrappedMint solana.PublicKey, multiplier uint64) *WrapInfo {
	t.Helper()
	acc := wrapAccount(t, wrappedMint, multiplier)
	w, err := ParseWrapInfo(acc.Data)
	require.NoError(t, err)
	w.Authority = acc.Address
	return w
}

func farmAccount(t *testing.T, tokenMint solana.PublicKey, stored bin.Uint128) *solbc.Account {
	t.Helper()
	return &solbc.Account{
		Address: solbctest.Key(),
		Owner:   QuarryMineID,
		Data: accountData(t, FarmLayout, farmRecord{
			Rewarder:              Rewarder,
			TokenMint:             tokenMint,
			Bump:                  255,
			Index:                 7,
			TokenMintDecimals:     6,
			FamineTs:              1 << 40,
			LastUpdateTs:          1_650_000_000,
			RewardsPerTokenStored: stored,
			AnnualRewardsRate:     1_000_000,
			RewardsShare:          10,
			TotalTokensDeposited:  5_000,
			NumMiners:             3,
		}),
	}
}

func testFarm(t *testing.T, tokenMint solana.PublicKey) *Farm {
	t.Helper()
	acc := farmAccount(t, tokenMint, bin.Uint128{Hi: 1000})
	f, err := ParseFarm(acc.Data, acc.Address)
	require.NoError(t, err)
	return f
}

func minerAccount(t *testing.T, farm, owner solana.PublicKey, balance uint64) *solbc.Account {
	t.Helper()
	return &solbc.Account{
		Address: solbctest.Key(),
		Owner:   QuarryMineID,
		Data: accountData(t, MinerLayout, minerRecord{
			Farm:    farm,
			Owner:   owner,
			Bump:    254,
			Vault:   solbctest.Key(),
			Balance: balance,
			Index:   1,
		}),
	}
}

func ata(t *testing.T, owner, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	return addr
}

func metaKeys(ix solana.Instruction) []solana.PublicKey {
	accounts := ix.Accounts()
	out := make([]solana.PublicKey, len(accounts))
	for i, a := range accounts {
		out[i] = a.PublicKey
	}
	return out
}

func ixData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func hexData(t *testing.T, ix solana.Instruction) string {
	t.Helper()
	return hex.EncodeToString(ixData(t, ix))
}
