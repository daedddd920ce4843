package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	w, err := NewWallet(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)
	assert.Equal(t, key.PublicKey(), w.Payer())
	assert.Equal(t, key.PublicKey().String(), w.String())
}

func TestNewWalletRejectsBadKeys(t *testing.T) {
	_, err := NewWallet("not-base58-0OIl")
	assert.Error(t, err)

	_, err = NewWallet("3yZe7d")
	assert.ErrorContains(t, err, "invalid private key length")
}

func TestLoad(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	w, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)

	w, err = Load("", key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)

	_, err = Load("", "")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestGetATA(t *testing.T) {
	w := fromPrivateKey(solana.NewWallet().PrivateKey)
	mint := solana.SolMint

	want, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)

	got, err := w.GetATA(mint)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := w.GetATA(mint)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Len(t, w.ataCache, 1)
}

func TestSignTransaction(t *testing.T) {
	w := fromPrivateKey(solana.NewWallet().PrivateKey)

	ix := solana.NewInstruction(solana.SystemProgramID,
		solana.AccountMetaSlice{solana.Meta(w.PublicKey).SIGNER().WRITE()},
		[]byte{0})
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(w.Payer()))
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.False(t, tx.Signatures[0].IsZero())
}
