package raydium

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc/solbctest"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/batch"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func swapFixture(t *testing.T) (*Pool, testMarket, *Assembler) {
	t.Helper()
	pool, _ := testPool(t)
	market := newTestMarket(t, pool.SerumMarket)

	ledger := new(solbctest.MockLedger)
	ledger.ServeAccounts(market.account())
	return pool, market, NewAssembler(ledger, zap.NewNop())
}

func ata(t *testing.T, owner, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	return addr
}

func TestSwapBatch(t *testing.T) {
	pool, market, asm := swapFixture(t)
	owner := solbctest.Key()

	b, err := asm.Swap(context.Background(), pool, SwapParams{
		FromMint:     pool.CoinMint,
		ToMint:       pool.PcMint,
		Owner:        owner,
		AmountIn:     10_000,
		MinAmountOut: 19_000,
	})
	require.NoError(t, err)

	ixs := b.Instructions()
	require.Len(t, ixs, 2)
	assert.Equal(t, spltoken.ATAInitProgramID, ixs[0].ProgramID())
	assert.Equal(t, []solana.PublicKey{ata(t, owner, pool.PcMint)}, b.CreatedAddresses())

	swap := ixs[1]
	assert.Equal(t, ProgramIDV4, swap.ProgramID())
	keys := metaKeys(swap)
	assert.Equal(t, AmmAuthority, keys[2])
	assert.Equal(t, market.Bids, keys[9])
	assert.Equal(t, market.Asks, keys[10])
	assert.Equal(t, market.EventQueue, keys[11])
	assert.Equal(t, market.BaseVault, keys[12])
	assert.Equal(t, market.QuoteVault, keys[13])
	assert.Equal(t, market.Signer, keys[14])
	assert.Equal(t, ata(t, owner, pool.CoinMint), keys[15])
	assert.Equal(t, ata(t, owner, pool.PcMint), keys[16])
	assert.Equal(t, owner, keys[17])
}

func TestSwapFromNativeWrapsAndCloses(t *testing.T) {
	pool, _, asm := swapFixture(t)
	pool.CoinMint = solana.SolMint
	owner := solbctest.Key()
	source := solbctest.Key()

	b, err := asm.Swap(context.Background(), pool, SwapParams{
		FromMint:    solana.SolMint,
		ToMint:      pool.PcMint,
		Owner:       owner,
		AmountIn:    5_000,
		FromAccount: &source,
	})
	require.NoError(t, err)

	nativeATA := ata(t, owner, solana.SolMint)
	assert.Equal(t, []solana.PublicKey{ata(t, owner, pool.PcMint), nativeATA}, b.CreatedAddresses())

	wraps := b.Phase(batch.PhaseWrap)
	require.Len(t, wraps, 2)
	assert.Equal(t, solana.SystemProgramID, wraps[0].ProgramID())
	assert.Equal(t, nativeATA, wraps[0].Accounts()[1].PublicKey)

	require.Len(t, b.Phase(batch.PhaseCore), 1)
	assert.Equal(t, source, metaKeys(b.Phase(batch.PhaseCore)[0])[15])

	cleanup := b.Phase(batch.PhaseCleanup)
	require.Len(t, cleanup, 1)
	assert.Equal(t, source, cleanup[0].Accounts()[0].PublicKey)

	ixs := b.Instructions()
	assert.Equal(t, solana.TokenProgramID, ixs[len(ixs)-1].ProgramID())
}

func TestSwapToNativeClosesDestination(t *testing.T) {
	pool, _, asm := swapFixture(t)
	pool.PcMint = solana.SolMint
	owner := solbctest.Key()

	b, err := asm.Swap(context.Background(), pool, SwapParams{
		FromMint: pool.CoinMint,
		ToMint:   solana.SolMint,
		Owner:    owner,
		AmountIn: 1,
	})
	require.NoError(t, err)

	assert.Empty(t, b.Phase(batch.PhaseWrap))
	cleanup := b.Phase(batch.PhaseCleanup)
	require.Len(t, cleanup, 1)
	assert.Equal(t, ata(t, owner, solana.SolMint), cleanup[0].Accounts()[0].PublicKey)
}

func TestSwapRejectsForeignMint(t *testing.T) {
	pool, _, asm := swapFixture(t)

	_, err := asm.Swap(context.Background(), pool, SwapParams{
		FromMint: solbctest.Key(),
		ToMint:   pool.PcMint,
		Owner:    solbctest.Key(),
	})
	assert.ErrorIs(t, err, ErrMintNotInPool)
}

func TestSwapMissingMarket(t *testing.T) {
	pool, _ := testPool(t)
	ledger := new(solbctest.MockLedger)
	ledger.ServeAccounts()

	_, err := NewAssembler(ledger, zap.NewNop()).Swap(context.Background(), pool, SwapParams{
		FromMint: pool.CoinMint,
		ToMint:   pool.PcMint,
		Owner:    solbctest.Key(),
	})
	assert.ErrorIs(t, err, solbc.ErrAccountNotFound)
}

func TestAddLiquidityCreatesAccountsFirst(t *testing.T) {
	pool, _, asm := swapFixture(t)
	owner := solbctest.Key()

	b, err := asm.AddLiquidity(pool, owner, 100, 200, 0)
	require.NoError(t, err)
	require.Equal(t, 4, b.Len())

	userCoin, userPc, userLp := ata(t, owner, pool.CoinMint), ata(t, owner, pool.PcMint), ata(t, owner, pool.LpMint)
	assert.Equal(t, []solana.PublicKey{userCoin, userPc, userLp}, b.CreatedAddresses())
	assert.Empty(t, b.Phase(batch.PhaseWrap))
	assert.Empty(t, b.Phase(batch.PhaseCleanup))
	assertCreatedBeforeUse(t, b)

	core := metaKeys(b.Phase(batch.PhaseCore)[0])
	assert.Equal(t, pool.AmmTargetOrders, core[4])
	assert.Equal(t, userCoin, core[9])
	assert.Equal(t, userPc, core[10])
	assert.Equal(t, userLp, core[11])
}

func TestAddLiquidityWrapsNativeSide(t *testing.T) {
	pool, _, asm := swapFixture(t)
	pool.PcMint = solana.SolMint
	owner := solbctest.Key()

	b, err := asm.AddLiquidity(pool, owner, 100, 5_000, 1)
	require.NoError(t, err)
	assertCreatedBeforeUse(t, b)

	native := ata(t, owner, solana.SolMint)
	assert.True(t, b.Creates(native))

	wraps := b.Phase(batch.PhaseWrap)
	require.Len(t, wraps, 2)
	assert.Equal(t, solana.SystemProgramID, wraps[0].ProgramID())
	assert.Equal(t, native, wraps[0].Accounts()[1].PublicKey)
	data, err := wraps[0].Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), binary.LittleEndian.Uint64(data[4:12]))

	assert.Equal(t, native, metaKeys(b.Phase(batch.PhaseCore)[0])[10])

	cleanup := b.Phase(batch.PhaseCleanup)
	require.Len(t, cleanup, 1)
	assert.Equal(t, native, cleanup[0].Accounts()[0].PublicKey)

	ixs := b.Instructions()
	assert.Equal(t, solana.TokenProgramID, ixs[len(ixs)-1].ProgramID())
}

func TestAddLiquidityV3(t *testing.T) {
	pool, _, asm := swapFixture(t)
	pool.Version = VersionV3
	owner := solbctest.Key()

	_, err := asm.AddLiquidity(pool, owner, 100, 200, 0)
	assert.ErrorIs(t, err, ErrMissingQuantities)

	pool.AmmQuantities = solbctest.Key()
	b, err := asm.AddLiquidity(pool, owner, 100, 200, 0)
	require.NoError(t, err)
	core := b.Phase(batch.PhaseCore)[0]
	assert.Equal(t, ProgramIDV3, core.ProgramID())
	assert.Equal(t, pool.AmmQuantities, metaKeys(core)[4])
}

func TestRemoveLiquidityBatch(t *testing.T) {
	pool, market, asm := swapFixture(t)
	owner := solbctest.Key()

	b, err := asm.RemoveLiquidity(context.Background(), pool, owner, 50)
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())
	assertCreatedBeforeUse(t, b)

	core := metaKeys(b.Phase(batch.PhaseCore)[0])
	assert.Equal(t, market.Signer, core[14])
	assert.Equal(t, ata(t, owner, pool.LpMint), core[15])
	assert.Equal(t, ata(t, owner, pool.CoinMint), core[16])
	assert.Equal(t, ata(t, owner, pool.PcMint), core[17])
}

func TestRemoveLiquidityUnwrapsNativeSide(t *testing.T) {
	pool, _, asm := swapFixture(t)
	pool.CoinMint = solana.SolMint
	owner := solbctest.Key()

	b, err := asm.RemoveLiquidity(context.Background(), pool, owner, 50)
	require.NoError(t, err)
	assertCreatedBeforeUse(t, b)

	cleanup := b.Phase(batch.PhaseCleanup)
	require.Len(t, cleanup, 1)
	assert.Equal(t, ata(t, owner, solana.SolMint), cleanup[0].Accounts()[0].PublicKey)
}
