// internal/dex/saber/assembler.go
package saber

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/batch"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
	"go.uber.org/zap"
)

// Assembler turns stable-swap and farm actions into instruction batches.
type Assembler struct {
	ledger solbc.Ledger
	logger *zap.Logger
}

// NewAssembler creates an assembler that probes miners through ledger.
func NewAssembler(ledger solbc.Ledger, logger *zap.Logger) *Assembler {
	return &Assembler{
		ledger: ledger,
		logger: logger.Named("saber-assembler"),
	}
}

// createATA adds an idempotent create of owner's account for mint, paid by
// owner, and returns the account address.
func createATA(b *batch.Batch, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ix, ata, err := spltoken.CreateATAInstruction(owner, owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	b.AddCreate(ata, ix)
	return ata, nil
}

// Deposit adds amountA and amountB to the pool. Native sides are funded
// from lamports and closed afterwards, wrapped sides are wrapped from the
// owner's underlying tokens, and when the pool is farmed the minimum LP
// amount is staked right away.
func (a *Assembler) Deposit(ctx context.Context, pool *StableSwap, amountA, amountB, minMintAmount uint64, owner solana.PublicKey) (*batch.Batch, error) {
	b := batch.New()

	sourceA, err := createATA(b, owner, pool.MintA)
	if err != nil {
		return nil, err
	}
	sourceB, err := createATA(b, owner, pool.MintB)
	if err != nil {
		return nil, err
	}
	lpAccount, err := createATA(b, owner, pool.PoolMint)
	if err != nil {
		return nil, err
	}

	sides := []struct {
		side   Side
		mint   solana.PublicKey
		source solana.PublicKey
		amount uint64
	}{
		{SideA, pool.MintA, sourceA, amountA},
		{SideB, pool.MintB, sourceB, amountB},
	}
	for _, s := range sides {
		if spltoken.IsNativeMint(s.mint) {
			b.Add(batch.PhaseWrap, spltoken.FundNativeInstructions(owner, s.source, s.amount)...)
			b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(s.source, owner))
		}
		if w := pool.Wrap(s.side); w != nil {
			underlying, err := createATA(b, owner, w.UnderlyingMint)
			if err != nil {
				return nil, err
			}
			b.Add(batch.PhaseWrap, WrapInstruction(w, owner, UnwrapAmount(s.amount, w.Multiplier), underlying, s.source)...)
		}
	}

	b.Add(batch.PhaseCore, DepositInstruction(pool, amountA, amountB, minMintAmount, owner, sourceA, sourceB, lpAccount))

	if pool.Farm != nil {
		stake, err := a.Stake(ctx, pool.Farm, owner, minMintAmount)
		if err != nil {
			return nil, err
		}
		b.Merge(stake)
	}

	a.logger.Debug("Deposit batch assembled",
		zap.String("pool", pool.Address.String()),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB),
		zap.Uint64("min_mint_amount", minMintAmount),
		zap.Bool("farming", pool.Farm != nil),
		zap.Int("instructions", b.Len()))
	return b, nil
}

// Withdraw burns LP tokens for one side's token. A non-zero farmAmount is
// unstaked first and added to lpAmount. A wrapped side is unwrapped into
// the owner's underlying account and a native side is closed to lamports.
func (a *Assembler) Withdraw(ctx context.Context, pool *StableSwap, side Side, farmAmount, lpAmount, minAmountOut uint64, owner solana.PublicKey) (*batch.Batch, error) {
	receiveMint, err := pool.Mint(side)
	if err != nil {
		return nil, err
	}

	b := batch.New()
	lpAccount, err := createATA(b, owner, pool.PoolMint)
	if err != nil {
		return nil, err
	}
	receive, err := createATA(b, owner, receiveMint)
	if err != nil {
		return nil, err
	}

	if farmAmount != 0 {
		farm, err := pool.RequireFarm()
		if err != nil {
			return nil, err
		}
		unstake, err := a.Unstake(farm, owner, farmAmount)
		if err != nil {
			return nil, err
		}
		b.Merge(unstake)

		total := lpAmount + farmAmount
		if total < lpAmount {
			return nil, fmt.Errorf("withdraw amount overflows u64: %d + %d", lpAmount, farmAmount)
		}
		lpAmount = total
	}

	if lpAmount != 0 {
		ix, err := WithdrawOneInstruction(pool, side, lpAmount, minAmountOut, owner, lpAccount, receive)
		if err != nil {
			return nil, err
		}
		b.Add(batch.PhaseCore, ix)
	}

	if w := pool.Wrap(side); w != nil {
		underlying, err := createATA(b, owner, w.UnderlyingMint)
		if err != nil {
			return nil, err
		}
		b.Add(batch.PhaseUnwrap, UnwrapInstruction(w, owner, receive, underlying))
	}

	if spltoken.IsNativeMint(receiveMint) {
		b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(receive, owner))
	}

	a.logger.Debug("Withdraw batch assembled",
		zap.String("pool", pool.Address.String()),
		zap.Stringer("side", side),
		zap.Uint64("farm_amount", farmAmount),
		zap.Uint64("lp_amount", lpAmount),
		zap.Uint64("min_amount_out", minAmountOut),
		zap.Int("instructions", b.Len()))
	return b, nil
}

// CreateMiner returns the creates for owner's miner and its vault, or an
// empty batch when the miner already exists.
func (a *Assembler) CreateMiner(ctx context.Context, farm *Farm, owner solana.PublicKey) (*batch.Batch, error) {
	b := batch.New()

	miner, _, vault, err := minerAccounts(farm, owner)
	if err != nil {
		return nil, err
	}

	programOwner, err := a.ledger.GetAccountOwner(ctx, miner)
	if err != nil {
		return nil, fmt.Errorf("failed to probe miner %s: %w", miner, err)
	}
	if programOwner != nil && programOwner.Equals(QuarryMineID) {
		return b, nil
	}

	createVault, _, err := spltoken.CreateATAInstruction(owner, miner, farm.TokenMint)
	if err != nil {
		return nil, err
	}
	b.AddCreate(vault, createVault)

	createMiner, err := CreateMinerInstruction(farm, owner)
	if err != nil {
		return nil, err
	}
	b.AddCreate(miner, createMiner)

	a.logger.Debug("Miner will be created",
		zap.String("farm", farm.Address.String()),
		zap.String("miner", miner.String()))
	return b, nil
}

// Stake creates the miner if needed and stakes amount tokens.
func (a *Assembler) Stake(ctx context.Context, farm *Farm, owner solana.PublicKey, amount uint64) (*batch.Batch, error) {
	b, err := a.CreateMiner(ctx, farm, owner)
	if err != nil {
		return nil, err
	}
	ix, err := StakeInstruction(farm, owner, amount)
	if err != nil {
		return nil, err
	}
	b.Add(batch.PhaseCore, ix)
	return b, nil
}

// Unstake withdraws amount tokens from the miner into owner's associated
// account. Zero yields an empty batch.
func (a *Assembler) Unstake(farm *Farm, owner solana.PublicKey, amount uint64) (*batch.Batch, error) {
	b := batch.New()
	if amount == 0 {
		return b, nil
	}
	if _, err := createATA(b, owner, farm.TokenMint); err != nil {
		return nil, err
	}
	ix, err := UnstakeInstruction(farm, owner, amount)
	if err != nil {
		return nil, err
	}
	b.Add(batch.PhaseCore, ix)
	return b, nil
}

// Claim claims farm rewards as IOU, redeems them for SBR and closes the
// emptied IOU account.
func (a *Assembler) Claim(ctx context.Context, farm *Farm, owner solana.PublicKey) (*batch.Batch, error) {
	b, err := a.CreateMiner(ctx, farm, owner)
	if err != nil {
		return nil, err
	}

	iouAccount, err := createATA(b, owner, IOUMint)
	if err != nil {
		return nil, err
	}
	if _, err := createATA(b, owner, SBRMint); err != nil {
		return nil, err
	}

	ixs, err := ClaimInstructions(farm, owner)
	if err != nil {
		return nil, err
	}
	b.Add(batch.PhaseCore, ixs...)
	b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(iouAccount, owner))

	a.logger.Debug("Claim batch assembled",
		zap.String("farm", farm.Address.String()),
		zap.Int("instructions", b.Len()))
	return b, nil
}
