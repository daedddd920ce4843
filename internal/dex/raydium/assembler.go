// internal/dex/raydium/assembler.go
package raydium

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/batch"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
	"go.uber.org/zap"
)

// Assembler turns pool operations into instruction batches.
type Assembler struct {
	ledger solbc.Ledger
	logger *zap.Logger
}

// NewAssembler creates an assembler reading markets through ledger.
func NewAssembler(ledger solbc.Ledger, logger *zap.Logger) *Assembler {
	return &Assembler{
		ledger: ledger,
		logger: logger.Named("raydium-assembler"),
	}
}

// SwapParams describes one swap. FromAccount defaults to the owner's
// associated account for FromMint.
type SwapParams struct {
	FromMint     solana.PublicKey
	ToMint       solana.PublicKey
	Owner        solana.PublicKey
	AmountIn     uint64
	MinAmountOut uint64
	FromAccount  *solana.PublicKey
}

// Swap builds: create destination ATA, wrap SOL when paying in SOL, the
// swap itself, then close any wrapped-SOL account the swap used.
func (a *Assembler) Swap(ctx context.Context, pool *Pool, params SwapParams) (*batch.Batch, error) {
	if _, err := pool.SideOf(params.FromMint); err != nil {
		return nil, fmt.Errorf("from mint %s: %w", params.FromMint, err)
	}
	if _, err := pool.SideOf(params.ToMint); err != nil {
		return nil, fmt.Errorf("to mint %s: %w", params.ToMint, err)
	}
	programID, err := pool.ProgramID()
	if err != nil {
		return nil, err
	}

	owner := params.Owner
	b := batch.New()

	createTo, toAccount, err := spltoken.CreateATAInstruction(owner, owner, params.ToMint)
	if err != nil {
		return nil, err
	}
	b.AddCreate(toAccount, createTo)

	var fromAccount solana.PublicKey
	if params.FromAccount != nil {
		fromAccount = *params.FromAccount
	} else {
		fromAccount, _, err = solana.FindAssociatedTokenAddress(owner, params.FromMint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive source account: %w", err)
		}
	}

	if spltoken.IsNativeMint(params.FromMint) {
		createNative, nativeAccount, err := spltoken.CreateATAInstruction(owner, owner, solana.SolMint)
		if err != nil {
			return nil, err
		}
		b.AddCreate(nativeAccount, createNative)
		b.Add(batch.PhaseWrap, spltoken.FundNativeInstructions(owner, nativeAccount, params.AmountIn)...)
		b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(fromAccount, owner))
	}
	if spltoken.IsNativeMint(params.ToMint) {
		b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(toAccount, owner))
	}

	market, err := LoadMarket(ctx, a.ledger, pool)
	if err != nil {
		return nil, err
	}

	b.Add(batch.PhaseCore, BuildSwapInstruction(&SwapInstructionAccounts{
		ProgramID:              programID,
		AmmID:                  pool.Address,
		AmmAuthority:           AmmAuthority,
		AmmOpenOrders:          pool.AmmOpenOrders,
		AmmTargetOrders:        pool.AmmTargetOrders,
		PoolCoinTokenAccount:   pool.PoolCoinTokenAccount,
		PoolPcTokenAccount:     pool.PoolPcTokenAccount,
		SerumProgramID:         pool.SerumProgramID,
		SerumMarket:            pool.SerumMarket,
		SerumBids:              market.Bids,
		SerumAsks:              market.Asks,
		SerumEventQueue:        market.EventQueue,
		SerumCoinVault:         market.CoinVault,
		SerumPcVault:           market.PcVault,
		SerumVaultSigner:       market.VaultSigner,
		UserSourceTokenAccount: fromAccount,
		UserDestTokenAccount:   toAccount,
		UserOwner:              owner,
	}, params.AmountIn, params.MinAmountOut))

	a.logger.Debug("Swap batch assembled",
		zap.String("pool", pool.Address.String()),
		zap.String("from_mint", params.FromMint.String()),
		zap.String("to_mint", params.ToMint.String()),
		zap.Uint64("amount_in", params.AmountIn),
		zap.Uint64("min_amount_out", params.MinAmountOut),
		zap.Int("instructions", b.Len()))

	return b, nil
}

func createATA(b *batch.Batch, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ix, ata, err := spltoken.CreateATAInstruction(owner, owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	b.AddCreate(ata, ix)
	return ata, nil
}

// AddLiquidity deposits up to maxCoinAmount and maxPcAmount from the
// owner's associated accounts. Coin, pc and LP accounts are created first.
// A native side is funded with its maximum amount before the deposit and
// closed afterwards, returning whatever the pool did not take.
func (a *Assembler) AddLiquidity(pool *Pool, owner solana.PublicKey, maxCoinAmount, maxPcAmount, fixedFromCoin uint64) (*batch.Batch, error) {
	programID, err := pool.ProgramID()
	if err != nil {
		return nil, err
	}

	logger := a.logger.With(
		zap.String("pool", pool.Address.String()),
		zap.Uint64("max_coin_amount", maxCoinAmount),
		zap.Uint64("max_pc_amount", maxPcAmount),
	)
	logger.Debug("Building deposit instruction")

	b := batch.New()
	userCoin, err := a.depositSource(b, owner, pool.CoinMint, maxCoinAmount)
	if err != nil {
		return nil, err
	}
	userPc, err := a.depositSource(b, owner, pool.PcMint, maxPcAmount)
	if err != nil {
		return nil, err
	}
	userLp, err := createATA(b, owner, pool.LpMint)
	if err != nil {
		return nil, err
	}

	ix, err := BuildDepositInstruction(pool.Version, &DepositInstructionAccounts{
		ProgramID:            programID,
		AmmID:                pool.Address,
		AmmAuthority:         AmmAuthority,
		AmmOpenOrders:        pool.AmmOpenOrders,
		AmmQuantities:        pool.AmmQuantities,
		AmmTargetOrders:      pool.AmmTargetOrders,
		LpMint:               pool.LpMint,
		PoolCoinTokenAccount: pool.PoolCoinTokenAccount,
		PoolPcTokenAccount:   pool.PoolPcTokenAccount,
		SerumMarket:          pool.SerumMarket,
		UserCoinTokenAccount: userCoin,
		UserPcTokenAccount:   userPc,
		UserLpTokenAccount:   userLp,
		UserOwner:            owner,
	}, DepositParams{
		MaxCoinAmount: maxCoinAmount,
		MaxPcAmount:   maxPcAmount,
		FixedFromCoin: fixedFromCoin,
	})
	if err != nil {
		return nil, err
	}
	b.Add(batch.PhaseCore, ix)

	logger.Debug("Deposit batch assembled", zap.Int("instructions", b.Len()))
	return b, nil
}

// depositSource creates owner's account for mint. Native SOL is wrapped
// with amount lamports and closed in cleanup.
func (a *Assembler) depositSource(b *batch.Batch, owner, mint solana.PublicKey, amount uint64) (solana.PublicKey, error) {
	if !spltoken.IsNativeMint(mint) {
		return createATA(b, owner, mint)
	}

	wrap, ata, err := spltoken.WrapNativeInstructions(owner, amount)
	if err != nil {
		return solana.PublicKey{}, err
	}
	b.AddCreate(ata, wrap[0])
	b.Add(batch.PhaseWrap, wrap[1:]...)
	b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(ata, owner))
	return ata, nil
}

// RemoveLiquidity burns amount LP tokens into the owner's coin and pc
// accounts, creating them first. A native side is closed afterwards so the
// owner receives SOL.
func (a *Assembler) RemoveLiquidity(ctx context.Context, pool *Pool, owner solana.PublicKey, amount uint64) (*batch.Batch, error) {
	programID, err := pool.ProgramID()
	if err != nil {
		return nil, err
	}

	logger := a.logger.With(
		zap.String("pool", pool.Address.String()),
		zap.Uint64("lp_amount", amount),
	)
	logger.Debug("Building withdraw instruction")

	b := batch.New()
	userCoin, err := createATA(b, owner, pool.CoinMint)
	if err != nil {
		return nil, err
	}
	userPc, err := createATA(b, owner, pool.PcMint)
	if err != nil {
		return nil, err
	}
	for _, acc := range []struct {
		mint, ata solana.PublicKey
	}{{pool.CoinMint, userCoin}, {pool.PcMint, userPc}} {
		if spltoken.IsNativeMint(acc.mint) {
			b.Add(batch.PhaseCleanup, spltoken.CloseAccountInstruction(acc.ata, owner))
		}
	}

	userLp, _, err := solana.FindAssociatedTokenAddress(owner, pool.LpMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive lp account: %w", err)
	}

	market, err := LoadMarket(ctx, a.ledger, pool)
	if err != nil {
		return nil, err
	}

	ix, err := BuildWithdrawInstruction(pool.Version, &WithdrawInstructionAccounts{
		ProgramID:              programID,
		AmmID:                  pool.Address,
		AmmAuthority:           AmmAuthority,
		AmmOpenOrders:          pool.AmmOpenOrders,
		AmmQuantities:          pool.AmmQuantities,
		AmmTargetOrders:        pool.AmmTargetOrders,
		LpMint:                 pool.LpMint,
		PoolCoinTokenAccount:   pool.PoolCoinTokenAccount,
		PoolPcTokenAccount:     pool.PoolPcTokenAccount,
		PoolWithdrawQueue:      pool.PoolWithdrawQueue,
		PoolTempLpTokenAccount: pool.PoolTempLpTokenAccount,
		SerumProgramID:         pool.SerumProgramID,
		SerumMarket:            pool.SerumMarket,
		SerumCoinVault:         market.CoinVault,
		SerumPcVault:           market.PcVault,
		SerumVaultSigner:       market.VaultSigner,
		UserLpTokenAccount:     userLp,
		UserCoinTokenAccount:   userCoin,
		UserPcTokenAccount:     userPc,
		UserOwner:              owner,
	}, WithdrawParams{LPAmount: amount})
	if err != nil {
		return nil, err
	}
	b.Add(batch.PhaseCore, ix)

	logger.Debug("Withdraw batch assembled", zap.Int("instructions", b.Len()))
	return b, nil
}
