// internal/dex/raydium/pool_cache.go
package raydium

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// PoolList is the static pool list format: official and unofficial
// entries keyed by pool id.
type PoolList struct {
	Official   []PoolJSONInfo `json:"official"`
	Unofficial []PoolJSONInfo `json:"unOfficial"`
}

// PoolJSONInfo carries what a pool account does not: the v3 amm
// quantities account.
type PoolJSONInfo struct {
	ID            string `json:"id"`
	Version       int    `json:"version"`
	AmmQuantities string `json:"ammQuantities,omitempty"`
}

type knownPool struct {
	version       uint8
	ammQuantities solana.PublicKey
}

// PoolCache holds parsed pools by address and by mint pair, plus the
// entries of a loaded pool list.
type PoolCache struct {
	pools  map[solana.PublicKey]*Pool
	byPair map[string]*Pool
	known  map[solana.PublicKey]knownPool
	mu     sync.RWMutex
	logger *zap.Logger
}

func NewPoolCache(logger *zap.Logger) *PoolCache {
	return &PoolCache{
		pools:  make(map[solana.PublicKey]*Pool),
		byPair: make(map[string]*Pool),
		known:  make(map[solana.PublicKey]knownPool),
		logger: logger.Named("pool-cache"),
	}
}

// LoadPoolsFromFile reads a PoolList JSON file.
func (pc *PoolCache) LoadPoolsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pools file: %w", err)
	}
	return pc.LoadPools(data)
}

// LoadPools registers every entry of a PoolList document. Entries with a
// bad id, version or quantities key fail the whole load.
func (pc *PoolCache) LoadPools(data []byte) error {
	var list PoolList
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to unmarshal pools: %w", err)
	}

	known := make(map[solana.PublicKey]knownPool, len(list.Official)+len(list.Unofficial))
	for _, info := range append(list.Official, list.Unofficial...) {
		id, entry, err := convertJSONInfo(info)
		if err != nil {
			return err
		}
		known[id] = entry
	}

	pc.mu.Lock()
	for id, entry := range known {
		pc.known[id] = entry
	}
	pc.mu.Unlock()

	pc.logger.Debug("Pool list loaded", zap.Int("entries", len(known)))
	return nil
}

func convertJSONInfo(info PoolJSONInfo) (solana.PublicKey, knownPool, error) {
	id, err := solana.PublicKeyFromBase58(info.ID)
	if err != nil {
		return solana.PublicKey{}, knownPool{}, fmt.Errorf("invalid pool id %q: %w", info.ID, err)
	}

	var entry knownPool
	switch info.Version {
	case 3:
		entry.version = VersionV3
	case 4:
		entry.version = VersionV4
	default:
		return solana.PublicKey{}, knownPool{}, fmt.Errorf("pool %s: %w", id, &VersionError{Version: uint8(info.Version)})
	}

	if info.AmmQuantities != "" {
		if entry.ammQuantities, err = solana.PublicKeyFromBase58(info.AmmQuantities); err != nil {
			return solana.PublicKey{}, knownPool{}, fmt.Errorf("pool %s: invalid ammQuantities: %w", id, err)
		}
	}
	return id, entry, nil
}

// Apply copies list data onto a freshly parsed pool. A v3 pool missing from
// the list keeps a zero AmmQuantities and cannot build liquidity
// instructions.
func (pc *PoolCache) Apply(pool *Pool) {
	pc.mu.RLock()
	entry, ok := pc.known[pool.Address]
	pc.mu.RUnlock()

	if !ok {
		if pool.Version == VersionV3 {
			pc.logger.Warn("v3 pool is not in the pool list", zap.String("pool", pool.Address.String()))
		}
		return
	}
	if entry.version != pool.Version {
		pc.logger.Warn("Pool list version differs from account owner",
			zap.String("pool", pool.Address.String()),
			zap.Uint8("list_version", entry.version),
			zap.Uint8("owner_version", pool.Version))
	}
	pool.AmmQuantities = entry.ammQuantities
}

// AddPool caches pool under its address and mint pair.
func (pc *PoolCache) AddPool(pool *Pool) error {
	if pool == nil {
		return fmt.Errorf("cannot add nil pool")
	}
	if err := ValidatePoolAccounts(pool); err != nil {
		return err
	}

	pc.mu.Lock()
	pc.pools[pool.Address] = pool
	pc.byPair[pairKey(pool.CoinMint, pool.PcMint)] = pool
	pc.mu.Unlock()
	return nil
}

// GetPool returns a cached pool by address.
func (pc *PoolCache) GetPool(address solana.PublicKey) (*Pool, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	pool, ok := pc.pools[address]
	return pool, ok
}

// GetPoolByMints returns the cached pool trading mintA against mintB in
// either order.
func (pc *PoolCache) GetPoolByMints(mintA, mintB solana.PublicKey) (*Pool, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pool, ok := pc.byPair[pairKey(mintA, mintB)]; ok {
		return pool, true
	}
	pool, ok := pc.byPair[pairKey(mintB, mintA)]
	return pool, ok
}

// GetPoolsCount returns how many pools are cached.
func (pc *PoolCache) GetPoolsCount() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.pools)
}

// IsLoaded reports whether a pool list has been loaded.
func (pc *PoolCache) IsLoaded() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.known) > 0
}

func pairKey(coin, pc solana.PublicKey) string {
	return fmt.Sprintf("%s-%s", coin, pc)
}
