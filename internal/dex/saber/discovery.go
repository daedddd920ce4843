// internal/dex/saber/discovery.go
package saber

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DiscoveryConfig controls which pools discovery returns.
type DiscoveryConfig struct {
	// Rewarder selects the farms linked to pools.
	Rewarder solana.PublicKey
	// AdminFilter restricts pools to those administered by AdminKey.
	AdminFilter bool
	// Denylist pools are never returned by ListPools.
	Denylist []solana.PublicKey
}

// DefaultDiscoveryConfig is the curated Saber setup.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Rewarder: Rewarder,
		Denylist: append([]solana.PublicKey(nil), DefaultDenylist...),
	}
}

// ListMinersOptions filters ListMinersForOwner.
type ListMinersOptions struct {
	NonZeroOnly bool
}

// Discovery lists and links stable-swap pools, wrappers, farms and miners.
type Discovery struct {
	ledger   solbc.Ledger
	cfg      DiscoveryConfig
	denylist map[solana.PublicKey]struct{}
	logger   *zap.Logger
}

// NewDiscovery creates a Discovery over ledger.
func NewDiscovery(ledger solbc.Ledger, cfg DiscoveryConfig, logger *zap.Logger) *Discovery {
	deny := make(map[solana.PublicKey]struct{}, len(cfg.Denylist))
	for _, addr := range cfg.Denylist {
		deny[addr] = struct{}{}
	}
	return &Discovery{
		ledger:   ledger,
		cfg:      cfg,
		denylist: deny,
		logger:   logger.Named("saber-discovery"),
	}
}

// Denied reports whether address is on the denylist.
func (d *Discovery) Denied(address solana.PublicKey) bool {
	_, ok := d.denylist[address]
	return ok
}

// ListPools returns every live pool with its wrap and farm links. Denylisted
// and paused pools are skipped.
func (d *Discovery) ListPools(ctx context.Context) ([]*StableSwap, error) {
	var (
		accounts []*solbc.Account
		wraps    []*WrapInfo
		farms    []*Farm
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var filter *solbc.Memcmp
		if d.cfg.AdminFilter {
			filter = &solbc.Memcmp{Offset: adminKeyOffset, Bytes: AdminKey.Bytes()}
		}
		var err error
		accounts, err = d.ledger.FindProgramAccounts(gctx, SwapProgramID, uint64(SwapInfoLayout.AccountSize), filter)
		return err
	})
	g.Go(func() error {
		var err error
		wraps, err = d.ListWrapInfos(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		farms, err = d.ListFarms(gctx, d.cfg.Rewarder)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pools := make([]*StableSwap, 0, len(accounts))
	var denied, paused int
	for _, acc := range accounts {
		if d.Denied(acc.Address) {
			denied++
			continue
		}
		pool, err := ParseStableSwap(acc.Data, acc.Address)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", acc.Address, err)
		}
		if pool.IsPaused {
			paused++
			continue
		}
		pools = append(pools, pool)
	}

	Link(pools, wraps, farms, d.logger)

	d.logger.Debug("Listed pools",
		zap.Int("count", len(pools)),
		zap.Int("denied", denied),
		zap.Int("paused", paused),
		zap.Int("wraps", len(wraps)),
		zap.Int("farms", len(farms)))
	return pools, nil
}

// GetPool fetches one pool with its links. Paused and denylisted pools are
// returned as is.
func (d *Discovery) GetPool(ctx context.Context, address solana.PublicKey) (*StableSwap, error) {
	var (
		pool  *StableSwap
		wraps []*WrapInfo
		farms []*Farm
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := d.ledger.GetAccount(gctx, address)
		if err != nil {
			return fmt.Errorf("failed to fetch pool %s: %w", address, err)
		}
		pool, err = ParseStableSwap(acc.Data, address)
		return err
	})
	g.Go(func() error {
		var err error
		wraps, err = d.ListWrapInfos(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		farms, err = d.ListFarms(gctx, d.cfg.Rewarder)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Link([]*StableSwap{pool}, wraps, farms, d.logger)
	return pool, nil
}

// ListWrapInfos returns every wrapper account.
func (d *Discovery) ListWrapInfos(ctx context.Context) ([]*WrapInfo, error) {
	accounts, err := d.ledger.FindProgramAccounts(ctx, WrapProgramID, uint64(WrapInfoLayout.AccountSize), nil)
	if err != nil {
		return nil, err
	}

	wraps := make([]*WrapInfo, 0, len(accounts))
	for _, acc := range accounts {
		w, err := ParseWrapInfo(acc.Data)
		if err != nil {
			return nil, fmt.Errorf("wrapper %s: %w", acc.Address, err)
		}
		w.Authority = acc.Address
		wraps = append(wraps, w)
	}
	return wraps, nil
}

// ListFarms returns the farms of rewarder.
func (d *Discovery) ListFarms(ctx context.Context, rewarder solana.PublicKey) ([]*Farm, error) {
	filter := &solbc.Memcmp{Offset: rewarderOffset, Bytes: rewarder.Bytes()}
	accounts, err := d.ledger.FindProgramAccounts(ctx, QuarryMineID, uint64(FarmLayout.AccountSize), filter)
	if err != nil {
		return nil, err
	}

	farms := make([]*Farm, 0, len(accounts))
	for _, acc := range accounts {
		f, err := ParseFarm(acc.Data, acc.Address)
		if err != nil {
			return nil, fmt.Errorf("farm %s: %w", acc.Address, err)
		}
		farms = append(farms, f)
	}
	return farms, nil
}

// ListMinersForOwner returns owner's miners across all farms.
func (d *Discovery) ListMinersForOwner(ctx context.Context, owner solana.PublicKey, opts ListMinersOptions) ([]*Miner, error) {
	filter := &solbc.Memcmp{Offset: ownerOffset, Bytes: owner.Bytes()}
	accounts, err := d.ledger.FindProgramAccounts(ctx, QuarryMineID, uint64(MinerLayout.AccountSize), filter)
	if err != nil {
		return nil, err
	}

	miners := make([]*Miner, 0, len(accounts))
	for _, acc := range accounts {
		m, err := ParseMiner(acc.Data, acc.Address)
		if err != nil {
			return nil, fmt.Errorf("miner %s: %w", acc.Address, err)
		}
		if opts.NonZeroOnly && m.Balance == 0 {
			continue
		}
		miners = append(miners, m)
	}
	return miners, nil
}

// FindPoolByLPMint returns the first pool minting lpMint.
func FindPoolByLPMint(pools []*StableSwap, lpMint solana.PublicKey) (*StableSwap, bool) {
	for _, p := range pools {
		if p.PoolMint.Equals(lpMint) {
			return p, true
		}
	}
	return nil, false
}

// FindPoolByFarm returns the first pool linked to farm.
func FindPoolByFarm(pools []*StableSwap, farm solana.PublicKey) (*StableSwap, bool) {
	for _, p := range pools {
		if p.Farm != nil && p.Farm.Address.Equals(farm) {
			return p, true
		}
	}
	return nil, false
}
