package raydium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshed(coin, pc uint64) *RefreshedPool {
	return &RefreshedPool{
		Pool:     &Pool{Version: VersionV4},
		Reserves: Reserves{CoinAmount: coin, PcAmount: pc},
	}
}

func TestQuoteKnownValues(t *testing.T) {
	out, err := refreshed(1_000_000, 2_000_000).Quote(SideCoin, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(19_802), out)
}

func TestQuoteFromPcSide(t *testing.T) {
	// x1 = 2,000,000 pc, y1 = 1,000,000 coin: 1,000,000 - floor(2e12/2,020,000) = 9,901
	out, err := refreshed(1_000_000, 2_000_000).Quote(SidePc, 20_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_901), out)
}

func TestQuoteUsesEffectiveReserves(t *testing.T) {
	r := &RefreshedPool{
		Pool: &Pool{NeedTakePnlCoin: 500, NeedTakePnlPc: 1_000},
		Reserves: Reserves{
			CoinAmount:     900_000,
			CoinOrderTotal: 100_500,
			PcAmount:       1_900_000,
			PcOrderTotal:   101_000,
		},
	}
	out, err := r.Quote(SideCoin, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(19_802), out)
}

func TestQuoteDiminishingReturns(t *testing.T) {
	r := refreshed(1_000_000, 2_000_000)

	prev := uint64(0)
	for _, in := range []uint64{1, 10, 1_000, 10_000, 100_000, 1_000_000, 1 << 40} {
		out, err := r.Quote(SideCoin, in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out, prev)
		assert.Less(t, out, r.Reserves.PcAmount)
		prev = out
	}

	small, err := r.Quote(SideCoin, 10_000)
	require.NoError(t, err)
	large, err := r.Quote(SideCoin, 20_000)
	require.NoError(t, err)
	assert.Less(t, large-small, small)
}

func TestQuoteFloors(t *testing.T) {
	// 3 * 3 = 9; 9 / 4 = 2.25 floors to 2; out = 3 - 2 = 1
	out, err := refreshed(3, 3).Quote(SideCoin, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out)

	out, err = refreshed(1_000_000, 2_000_000).Quote(SideCoin, 0)
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestQuoteEmptyReserve(t *testing.T) {
	_, err := refreshed(0, 2_000_000).Quote(SideCoin, 10)
	assert.ErrorIs(t, err, ErrEmptyReserve)

	r := refreshed(100, 100)
	r.Pool.NeedTakePnlPc = 200
	_, err = r.Quote(SideCoin, 10)
	assert.ErrorIs(t, err, ErrEmptyReserve)
}

func TestQuoteMint(t *testing.T) {
	pool, _ := testPool(t)
	r := &RefreshedPool{Pool: pool, Reserves: Reserves{CoinAmount: 1_000_000, PcAmount: 2_000_000}}

	out, err := r.QuoteMint(pool.CoinMint, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(19_802), out)

	_, err = r.QuoteMint(pool.LpMint, 10_000)
	assert.ErrorIs(t, err, ErrMintNotInPool)
}
