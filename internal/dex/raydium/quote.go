// internal/dex/raydium/quote.go
package raydium

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// effective returns balance + order total - needTakePnl for each side.
func (r *RefreshedPool) effective() (coin, pc *big.Int) {
	coin = new(big.Int).SetUint64(r.Reserves.CoinAmount)
	coin.Add(coin, new(big.Int).SetUint64(r.Reserves.CoinOrderTotal))
	coin.Sub(coin, new(big.Int).SetUint64(r.NeedTakePnlCoin))

	pc = new(big.Int).SetUint64(r.Reserves.PcAmount)
	pc.Add(pc, new(big.Int).SetUint64(r.Reserves.PcOrderTotal))
	pc.Sub(pc, new(big.Int).SetUint64(r.NeedTakePnlPc))
	return coin, pc
}

// Quote returns the output of swapping amountIn of side for the other token.
// The result is floored, so it never exceeds what the pool pays and never
// exceeds the output reserve.
func (r *RefreshedPool) Quote(side Side, amountIn uint64) (uint64, error) {
	coin, pc := r.effective()
	in, out := coin, pc
	if side == SidePc {
		in, out = pc, coin
	}
	return constantProductOut(in, out, amountIn)
}

// QuoteMint is Quote keyed by the input mint.
func (r *RefreshedPool) QuoteMint(fromMint solana.PublicKey, amountIn uint64) (uint64, error) {
	side, err := r.SideOf(fromMint)
	if err != nil {
		return 0, err
	}
	return r.Quote(side, amountIn)
}

// constantProductOut computes y1 - floor(x1*y1 / (x1+in)).
func constantProductOut(x1, y1 *big.Int, amountIn uint64) (uint64, error) {
	if x1.Sign() <= 0 || y1.Sign() <= 0 {
		return 0, ErrEmptyReserve
	}
	k := new(big.Int).Mul(x1, y1)
	x2 := new(big.Int).Add(x1, new(big.Int).SetUint64(amountIn))
	y2 := new(big.Int).Quo(k, x2)
	return new(big.Int).Sub(y1, y2).Uint64(), nil
}
