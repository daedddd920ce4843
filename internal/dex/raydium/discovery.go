// internal/dex/raydium/discovery.go
package raydium

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"go.uber.org/zap"
)

// Discovery reads pool accounts from the ledger and caches them.
type Discovery struct {
	ledger solbc.Ledger
	cache  *PoolCache
	logger *zap.Logger
}

// NewDiscovery creates a Discovery over ledger with an empty cache.
func NewDiscovery(ledger solbc.Ledger, logger *zap.Logger) *Discovery {
	return &Discovery{
		ledger: ledger,
		cache:  NewPoolCache(logger),
		logger: logger.Named("raydium-discovery"),
	}
}

// Cache exposes the pool cache, e.g. to load a pool list.
func (d *Discovery) Cache() *PoolCache {
	return d.cache
}

// GetPool returns a cached pool or fetches and parses it. The version comes
// from the account owner.
func (d *Discovery) GetPool(ctx context.Context, address solana.PublicKey) (*Pool, error) {
	if pool, ok := d.cache.GetPool(address); ok {
		return pool, nil
	}

	acc, err := d.ledger.GetAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool %s: %w", address, err)
	}
	pool, err := ParsePool(acc.Data, address, acc.Owner)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", address, err)
	}
	d.cache.Apply(pool)

	if err := d.cache.AddPool(pool); err != nil {
		return nil, fmt.Errorf("pool %s: %w", address, err)
	}
	return pool, nil
}

// GetRefreshedPool is GetPool followed by Refresh.
func (d *Discovery) GetRefreshedPool(ctx context.Context, address solana.PublicKey) (*RefreshedPool, error) {
	pool, err := d.GetPool(ctx, address)
	if err != nil {
		return nil, err
	}
	return pool.Refresh(ctx, d.ledger)
}

// ListPools returns every account of the v4 program with the pool size.
// Pools failing account validation are skipped.
func (d *Discovery) ListPools(ctx context.Context) ([]*Pool, error) {
	accounts, err := d.ledger.FindProgramAccounts(ctx, ProgramIDV4, uint64(AmmInfoLayout.AccountSize), nil)
	if err != nil {
		return nil, err
	}

	pools := make([]*Pool, 0, len(accounts))
	for _, acc := range accounts {
		pool, err := ParsePool(acc.Data, acc.Address, ProgramIDV4)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", acc.Address, err)
		}
		d.cache.Apply(pool)
		if err := d.cache.AddPool(pool); err != nil {
			d.logger.Debug("Skipping pool", zap.String("pool", acc.Address.String()), zap.Error(err))
			continue
		}
		pools = append(pools, pool)
	}

	d.logger.Debug("Listed pools", zap.Int("count", len(pools)))
	return pools, nil
}

// FindPool returns the pool trading mintA against mintB, listing the v4
// program when the cache has no match.
func (d *Discovery) FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*Pool, error) {
	if pool, ok := d.cache.GetPoolByMints(mintA, mintB); ok {
		return pool, nil
	}
	pools, err := d.ListPools(ctx)
	if err != nil {
		return nil, err
	}
	if pool, ok := FindPoolByMints(pools, mintA, mintB); ok {
		return pool, nil
	}
	return nil, fmt.Errorf("no pool for %s/%s: %w", mintA, mintB, solbc.ErrAccountNotFound)
}

// FindPoolByMints returns the first listed pool trading mintA against mintB
// in either order.
func FindPoolByMints(pools []*Pool, mintA, mintB solana.PublicKey) (*Pool, bool) {
	for _, p := range pools {
		if (p.CoinMint.Equals(mintA) && p.PcMint.Equals(mintB)) ||
			(p.CoinMint.Equals(mintB) && p.PcMint.Equals(mintA)) {
			return p, true
		}
	}
	return nil, false
}
