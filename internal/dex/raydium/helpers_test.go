package raydium

import (
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc/solbctest"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/batch"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serumProgram = solana.MPK("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")

func testPoolRecord() ammInfoV4 {
	return ammInfoV4{
		Status:                 1,
		Nonce:                  254,
		CoinDecimals:           6,
		PcDecimals:             6,
		SwapFeeNumerator:       25,
		SwapFeeDenominator:     10_000,
		NeedTakePnlCoin:        0,
		NeedTakePnlPc:          0,
		PoolTotalDepositPc:     bin.Uint128{Lo: 7, Hi: 1},
		PoolCoinTokenAccount:   solbctest.Key(),
		PoolPcTokenAccount:     solbctest.Key(),
		CoinMint:               solbctest.Key(),
		PcMint:                 solbctest.Key(),
		LpMint:                 solbctest.Key(),
		AmmOpenOrders:          solbctest.Key(),
		SerumMarket:            solbctest.Key(),
		SerumProgramID:         serumProgram,
		AmmTargetOrders:        solbctest.Key(),
		PoolWithdrawQueue:      solbctest.Key(),
		PoolTempLpTokenAccount: solbctest.Key(),
		AmmOwner:               solbctest.Key(),
		PnlOwner:               solbctest.Key(),
	}
}

func testPool(t *testing.T) (*Pool, []byte) {
	t.Helper()
	data, err := layout.Encode(testPoolRecord())
	require.NoError(t, err)
	require.Len(t, data, AmmInfoLayout.Span)

	pool, err := ParsePool(data, solbctest.Key(), ProgramIDV4)
	require.NoError(t, err)
	return pool, data
}

func tokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return data
}

// openOrdersData lays out a serum open orders account with the given
// native totals.
func openOrdersData(baseTotal, quoteTotal uint64) []byte {
	data := make([]byte, 3228)
	binary.LittleEndian.PutUint64(data[85:93], baseTotal)
	binary.LittleEndian.PutUint64(data[101:109], quoteTotal)
	return data
}

type testMarket struct {
	Address    solana.PublicKey
	Nonce      uint64
	Bids       solana.PublicKey
	Asks       solana.PublicKey
	EventQueue solana.PublicKey
	BaseVault  solana.PublicKey
	QuoteVault solana.PublicKey
	Signer     solana.PublicKey
}

// newTestMarket picks a nonce that yields an off-curve vault signer, the
// way the order book does when a market is created.
func newTestMarket(t *testing.T, address solana.PublicKey) testMarket {
	t.Helper()
	m := testMarket{
		Address:    address,
		Bids:       solbctest.Key(),
		Asks:       solbctest.Key(),
		EventQueue: solbctest.Key(),
		BaseVault:  solbctest.Key(),
		QuoteVault: solbctest.Key(),
	}
	for nonce := uint64(0); nonce < 256; nonce++ {
		signer, err := VaultSigner(address, nonce, serumProgram)
		if err == nil {
			m.Nonce, m.Signer = nonce, signer
			return m
		}
	}
	t.Fatal("no vault signer nonce found")
	return m
}

func (m testMarket) data() []byte {
	data := make([]byte, 388)
	copy(data[13:45], m.Address[:])
	binary.LittleEndian.PutUint64(data[45:53], m.Nonce)
	copy(data[117:149], m.BaseVault[:])
	copy(data[165:197], m.QuoteVault[:])
	copy(data[253:285], m.EventQueue[:])
	copy(data[285:317], m.Bids[:])
	copy(data[317:349], m.Asks[:])
	return data
}

func (m testMarket) account() *solbc.Account {
	return &solbc.Account{Address: m.Address, Owner: serumProgram, Data: m.data()}
}

func metaKeys(ix solana.Instruction) []solana.PublicKey {
	accounts := ix.Accounts()
	out := make([]solana.PublicKey, len(accounts))
	for i, a := range accounts {
		out[i] = a.PublicKey
	}
	return out
}

// assertCreatedBeforeUse checks that no instruction references an account
// the batch creates before its create has run.
func assertCreatedBeforeUse(t *testing.T, b *batch.Batch) {
	t.Helper()
	createdAt := make(map[solana.PublicKey]int)
	for i, addr := range b.CreatedAddresses() {
		createdAt[addr] = i
	}

	creates := len(b.Phase(batch.PhaseCreate))
	for i, ix := range b.Instructions() {
		if i < creates {
			continue
		}
		for _, meta := range ix.Accounts() {
			if at, ok := createdAt[meta.PublicKey]; ok {
				assert.Less(t, at, i, "instruction %d uses %s before it is created", i, meta.PublicKey)
			}
		}
	}
}
