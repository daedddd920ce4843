package spltoken

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc/solbctest"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TokenAccountData builds a raw token account the way the token program
// lays it out.
func tokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = StateInitialized
	return data
}

func TestParseTokenAccount(t *testing.T) {
	mint, owner, addr := solbctest.Key(), solbctest.Key(), solbctest.Key()

	ta, err := ParseTokenAccount(tokenAccountData(mint, owner, 123_456), addr)
	require.NoError(t, err)
	assert.Equal(t, addr, ta.Address)
	assert.Equal(t, mint, ta.Mint)
	assert.Equal(t, owner, ta.Owner)
	assert.Equal(t, uint64(123_456), ta.Amount)
	assert.Equal(t, StateInitialized, ta.State)
	assert.False(t, ta.IsNative)
}

func TestParseTokenAccountShort(t *testing.T) {
	_, err := ParseTokenAccount(make([]byte, 164), solbctest.Key())
	assert.True(t, errors.Is(err, layout.ErrLayoutMismatch))
}

func TestParseMint(t *testing.T) {
	authority := solbctest.Key()
	data := make([]byte, 82)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority[:])
	binary.LittleEndian.PutUint64(data[36:44], 1_000_000_000)
	data[44] = 6
	data[45] = 1

	m, err := ParseMint(data, solana.SolMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), m.Supply)
	assert.Equal(t, uint8(6), m.Decimals)
	assert.True(t, m.IsInitialized)
	require.NotNil(t, m.MintAuthority)
	assert.Equal(t, authority, *m.MintAuthority)

	data[0] = 0
	m, err = ParseMint(data, solana.SolMint)
	require.NoError(t, err)
	assert.Nil(t, m.MintAuthority)
}

func TestListByOwnerAndBalances(t *testing.T) {
	owner := solbctest.Key()
	mintA, mintB := solbctest.Key(), solbctest.Key()

	ledger := new(solbctest.MockLedger)
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner).Return([]*solbc.Account{
		{Address: solbctest.Key(), Data: tokenAccountData(mintA, owner, 10)},
		{Address: solbctest.Key(), Data: tokenAccountData(mintB, owner, 7)},
		{Address: solbctest.Key(), Data: tokenAccountData(mintA, owner, 5)},
	}, nil)

	accounts, err := ListByOwner(context.Background(), ledger, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	balances := BalancesByMint(accounts)
	assert.Equal(t, uint64(15), balances[mintA])
	assert.Equal(t, uint64(7), balances[mintB])
}

func TestGetMintsMissing(t *testing.T) {
	ledger := new(solbctest.MockLedger)
	ledger.ServeAccounts()

	_, err := GetMints(context.Background(), ledger, []solana.PublicKey{solbctest.Key()})
	assert.ErrorIs(t, err, solbc.ErrAccountNotFound)
}

func TestCreateATAInstruction(t *testing.T) {
	payer, owner, mint := solbctest.Key(), solbctest.Key(), solbctest.Key()

	ix, ata, err := CreateATAInstruction(payer, owner, mint)
	require.NoError(t, err)

	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, want, ata)
	assert.Equal(t, ATAInitProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Empty(t, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 8)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.Equal(t, owner, accounts[2].PublicKey)
	assert.Equal(t, mint, accounts[3].PublicKey)
	assert.False(t, accounts[3].IsWritable)
	assert.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)
	assert.Equal(t, solana.SysVarRentPubkey, accounts[6].PublicKey)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, accounts[7].PublicKey)
}

func TestWrapNativeInstructions(t *testing.T) {
	owner := solbctest.Key()

	ixs, ata, err := WrapNativeInstructions(owner, 5_000)
	require.NoError(t, err)
	require.Len(t, ixs, 3)

	assert.Equal(t, ATAInitProgramID, ixs[0].ProgramID())
	assert.Equal(t, solana.SystemProgramID, ixs[1].ProgramID())
	assert.Equal(t, solana.TokenProgramID, ixs[2].ProgramID())

	transfer := ixs[1].Accounts()
	assert.Equal(t, owner, transfer[0].PublicKey)
	assert.Equal(t, ata, transfer[1].PublicKey)

	data, err := ixs[1].Data()
	require.NoError(t, err)
	// system transfer: u32 tag 2, u64 lamports
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(5_000), binary.LittleEndian.Uint64(data[4:12]))

	assert.Equal(t, ata, ixs[2].Accounts()[0].PublicKey)
}

func TestCloseAccountInstruction(t *testing.T) {
	account, owner := solbctest.Key(), solbctest.Key()

	ix := CloseAccountInstruction(account, owner)
	assert.Equal(t, solana.TokenProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, account, accounts[0].PublicKey)
	assert.Equal(t, owner, accounts[1].PublicKey)
	assert.Equal(t, owner, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsSigner)

	assert.True(t, IsNativeMint(solana.SolMint))
	assert.False(t, IsNativeMint(account))
}
