// internal/dex/raydium/reserves.go
package raydium

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/serum"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
)

// Reserves are the balances a quote is computed from.
type Reserves struct {
	CoinAmount     uint64
	PcAmount       uint64
	CoinOrderTotal uint64
	PcOrderTotal   uint64
}

// RefreshedPool pairs a pool snapshot with reserves read at one point in
// time. Quotes are only available on this type.
type RefreshedPool struct {
	*Pool
	Reserves Reserves
}

// refreshAccounts lists the accounts a refresh reads, in fetch order.
func (p *Pool) refreshAccounts() []solana.PublicKey {
	return []solana.PublicKey{p.PoolPcTokenAccount, p.PoolCoinTokenAccount, p.AmmOpenOrders}
}

// Refresh reads the pool vaults and open orders and returns a new
// RefreshedPool. The receiver is not modified.
func (p *Pool) Refresh(ctx context.Context, ledger solbc.Ledger) (*RefreshedPool, error) {
	refreshed, err := RefreshAll(ctx, ledger, []*Pool{p})
	if err != nil {
		return nil, err
	}
	return refreshed[0], nil
}

// RefreshAll refreshes many pools with one batched account fetch.
func RefreshAll(ctx context.Context, ledger solbc.Ledger, pools []*Pool) ([]*RefreshedPool, error) {
	addresses := make([]solana.PublicKey, 0, len(pools)*3)
	for _, p := range pools {
		addresses = append(addresses, p.refreshAccounts()...)
	}

	accounts, err := ledger.GetAccounts(ctx, addresses)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(addresses) {
		return nil, fmt.Errorf("ledger returned %d accounts for %d addresses", len(accounts), len(addresses))
	}

	out := make([]*RefreshedPool, len(pools))
	for i, p := range pools {
		reserves, err := decodeReserves(addresses[i*3:i*3+3], accounts[i*3:i*3+3])
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.Address, err)
		}
		out[i] = &RefreshedPool{Pool: p, Reserves: reserves}
	}
	return out, nil
}

func decodeReserves(addresses []solana.PublicKey, accounts []*solbc.Account) (Reserves, error) {
	for i, acc := range accounts {
		if acc == nil {
			return Reserves{}, fmt.Errorf("account %s: %w", addresses[i], solbc.ErrAccountNotFound)
		}
	}

	pc, err := spltoken.ParseTokenAccount(accounts[0].Data, addresses[0])
	if err != nil {
		return Reserves{}, fmt.Errorf("pc vault: %w", err)
	}
	coin, err := spltoken.ParseTokenAccount(accounts[1].Data, addresses[1])
	if err != nil {
		return Reserves{}, fmt.Errorf("coin vault: %w", err)
	}

	var orders serum.OpenOrders
	if err := orders.Decode(accounts[2].Data); err != nil {
		return Reserves{}, fmt.Errorf("open orders: %w", err)
	}

	return Reserves{
		CoinAmount:     coin.Amount,
		PcAmount:       pc.Amount,
		CoinOrderTotal: uint64(orders.NativeBaseTokenTotal),
		PcOrderTotal:   uint64(orders.NativeQuoteTokenTotal),
	}, nil
}
