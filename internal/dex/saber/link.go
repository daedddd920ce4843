// internal/dex/saber/link.go
package saber

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Link attaches wrap and farm associations to every pool. A side is linked
// to the first wrap whose wrapped mint equals the side's mint, and a pool to
// the first farm accepting its LP mint. Later duplicates are ignored with a
// warning.
func Link(pools []*StableSwap, wraps []*WrapInfo, farms []*Farm, logger *zap.Logger) {
	wrapByMint := make(map[solana.PublicKey]*WrapInfo, len(wraps))
	for _, w := range wraps {
		if first, ok := wrapByMint[w.WrappedMint]; ok {
			logger.Warn("Duplicate wrapper for mint, keeping first",
				zap.String("mint", w.WrappedMint.String()),
				zap.String("kept", first.Authority.String()),
				zap.String("ignored", w.Authority.String()))
			continue
		}
		wrapByMint[w.WrappedMint] = w
	}

	farmByMint := make(map[solana.PublicKey]*Farm, len(farms))
	for _, f := range farms {
		if first, ok := farmByMint[f.TokenMint]; ok {
			logger.Warn("Duplicate farm for mint, keeping first",
				zap.String("mint", f.TokenMint.String()),
				zap.String("kept", first.Address.String()),
				zap.String("ignored", f.Address.String()))
			continue
		}
		farmByMint[f.TokenMint] = f
	}

	for _, p := range pools {
		p.WrapA = wrapByMint[p.MintA]
		p.WrapB = wrapByMint[p.MintB]
		p.Farm = farmByMint[p.PoolMint]
	}
}
