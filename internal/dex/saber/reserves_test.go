package saber

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc/solbctest"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultAccount(address, mint solana.PublicKey, amount uint64) *solbc.Account {
	data := make([]byte, spltoken.TokenAccountLayout.AccountSize)
	copy(data[0:32], mint[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = spltoken.StateInitialized
	return &solbc.Account{Address: address, Owner: solana.TokenProgramID, Data: data}
}

func lpMintAccount(address solana.PublicKey, supply uint64) *solbc.Account {
	data := make([]byte, spltoken.MintLayout.AccountSize)
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = 6
	data[45] = 1
	return &solbc.Account{Address: address, Owner: solana.TokenProgramID, Data: data}
}

func TestStableSwapRefresh(t *testing.T) {
	pool := testPool(t)
	ledger := new(solbctest.MockLedger)
	ledger.On("GetAccounts", context.Background(), []solana.PublicKey{pool.TokenAccountA, pool.TokenAccountB, pool.PoolMint}).
		Return([]*solbc.Account{
			vaultAccount(pool.TokenAccountA, pool.MintA, 1_000),
			vaultAccount(pool.TokenAccountB, pool.MintB, 2_500),
			lpMintAccount(pool.PoolMint, 3_400),
		}, nil)

	before := *pool
	reserves, err := pool.Refresh(context.Background(), ledger)
	require.NoError(t, err)
	assert.Equal(t, SwapReserves{AmountA: 1_000, AmountB: 2_500, LPSupply: 3_400}, *reserves)
	assert.Equal(t, before, *pool)
}

func TestStableSwapRefreshMissingVault(t *testing.T) {
	pool := testPool(t)
	ledger := new(solbctest.MockLedger)
	ledger.On("GetAccounts", context.Background(), []solana.PublicKey{pool.TokenAccountA, pool.TokenAccountB, pool.PoolMint}).
		Return([]*solbc.Account{vaultAccount(pool.TokenAccountA, pool.MintA, 1), nil, lpMintAccount(pool.PoolMint, 1)}, nil)

	_, err := pool.Refresh(context.Background(), ledger)
	assert.ErrorIs(t, err, solbc.ErrAccountNotFound)
}

func TestStableSwapRefreshIOError(t *testing.T) {
	pool := testPool(t)
	ledger := new(solbctest.MockLedger)
	ledger.On("GetAccounts", context.Background(), []solana.PublicKey{pool.TokenAccountA, pool.TokenAccountB, pool.PoolMint}).
		Return(nil, &solbc.IOError{Method: "getMultipleAccounts", Err: errors.New("503")})

	_, err := pool.Refresh(context.Background(), ledger)
	assert.ErrorIs(t, err, solbc.ErrExternalIO)
}
