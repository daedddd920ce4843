// internal/bot/compound.go
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/batch"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/model"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/saber"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
	"go.uber.org/zap"
)

// ErrTargetPoolNotFound is returned when the reinvest pool is not among the
// listed pools.
var ErrTargetPoolNotFound = errors.New("target pool not found")

// Sender submits one batch as a transaction.
type Sender interface {
	Send(ctx context.Context, instructions []solana.Instruction, signer solbc.Signer) (solana.Signature, error)
}

// PoolSource loads a constant-product pool with fresh reserves.
type PoolSource interface {
	GetRefreshedPool(ctx context.Context, address solana.PublicKey) (*raydium.RefreshedPool, error)
}

// Swapper builds a constant-product swap.
type Swapper interface {
	Swap(ctx context.Context, pool *raydium.Pool, params raydium.SwapParams) (*batch.Batch, error)
}

// CompoundConfig selects where rewards are sold and reinvested.
type CompoundConfig struct {
	SBRAmm      solana.PublicKey
	TargetPool  solana.PublicKey
	SlippageBps uint16
	Workers     int
	DryRun      bool
}

// DefaultCompoundConfig sells on the SBR/USDC pool and reinvests into
// USDC-UST.
func DefaultCompoundConfig() CompoundConfig {
	return CompoundConfig{
		SBRAmm:      raydium.SBRAmmID,
		TargetPool:  saber.USDCUSTPool,
		SlippageBps: 50,
		Workers:     4,
	}
}

// Step is the outcome of one submitted batch.
type Step struct {
	Name         string
	Target       solana.PublicKey
	Instructions int
	Signature    solana.Signature
	Err          error
}

// Report lists the steps of one compound run in execution order.
type Report struct {
	Claims  []Step
	Swap    *Step
	Deposit *Step
	Stakes  []Step

	SBRSold     uint64
	MinReceived uint64
}

// Failed reports whether any step returned an error.
func (r *Report) Failed() bool {
	for _, s := range r.Steps() {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Steps flattens the report.
func (r *Report) Steps() []Step {
	out := append([]Step{}, r.Claims...)
	if r.Swap != nil {
		out = append(out, *r.Swap)
	}
	if r.Deposit != nil {
		out = append(out, *r.Deposit)
	}
	return append(out, r.Stakes...)
}

// Compounder claims farm rewards, sells them and stakes the proceeds.
type Compounder struct {
	ledger  solbc.Ledger
	sender  Sender
	signer  solbc.Signer
	pools   PoolSource
	swapper Swapper
	saber   *saber.Assembler
	cfg     CompoundConfig
	logger  *zap.Logger

	shutdown *ShutdownHandler
}

func NewCompounder(
	ledger solbc.Ledger,
	sender Sender,
	signer solbc.Signer,
	pools PoolSource,
	swapper Swapper,
	cfg CompoundConfig,
	logger *zap.Logger,
) *Compounder {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Compounder{
		ledger:  ledger,
		sender:  sender,
		signer:  signer,
		pools:   pools,
		swapper: swapper,
		saber:   saber.NewAssembler(ledger, logger),
		cfg:     cfg,
		logger:  logger.Named("compound"),
	}
}

// SetShutdownHandler registers the claim workers of later runs with sh so a
// shutdown drains them.
func (c *Compounder) SetShutdownHandler(sh *ShutdownHandler) {
	c.shutdown = sh
}

// Run compounds every miner of the signer that has a stake:
// claim → sell SBR → deposit into the target pool → stake LP.
// A failed claim is recorded and the run goes on; later steps stop the run.
func (c *Compounder) Run(ctx context.Context, pools []*saber.StableSwap, miners []*saber.Miner) (*Report, error) {
	owner := c.signer.Payer()
	report := &Report{}

	report.Claims = c.claimAll(ctx, pools, miners, owner)

	balances, err := c.balances(ctx, owner)
	if err != nil {
		return report, err
	}
	sbr := balances[saber.SBRMint]
	if sbr == 0 {
		c.logger.Info("No SBR to compound")
		return report, nil
	}

	target, ok := findPool(pools, c.cfg.TargetPool)
	if !ok {
		return report, fmt.Errorf("%w: %s", ErrTargetPoolNotFound, c.cfg.TargetPool)
	}

	proceedsMint, minOut, err := c.sell(ctx, owner, sbr, report)
	if err != nil {
		return report, err
	}
	report.SBRSold = sbr
	report.MinReceived = minOut

	if err := c.deposit(ctx, target, proceedsMint, minOut, owner, report); err != nil {
		return report, err
	}

	if err := c.stakeAll(ctx, pools, owner, report); err != nil {
		return report, err
	}
	return report, nil
}

// claimAll claims every staked miner whose farm belongs to a known pool,
// running up to cfg.Workers claims at once.
func (c *Compounder) claimAll(ctx context.Context, pools []*saber.StableSwap, miners []*saber.Miner, owner solana.PublicKey) []Step {
	var farms []*saber.Farm
	for _, m := range miners {
		if m.Balance == 0 {
			continue
		}
		pool, ok := saber.FindPoolByFarm(pools, m.Farm)
		if !ok {
			c.logger.Debug("Skipping miner of unknown farm",
				zap.String("miner", m.Address.String()),
				zap.String("farm", m.Farm.String()))
			continue
		}
		farms = append(farms, pool.Farm)
	}
	if len(farms) == 0 {
		return nil
	}

	jobs := make(chan claimJob, len(farms))
	for i, f := range farms {
		jobs <- claimJob{index: i, farm: f}
	}
	close(jobs)

	results := make([]Step, len(farms))
	pool := NewWorkerPool(ctx, c.logger, jobs, func(ctx context.Context, job claimJob) {
		results[job.index] = c.claim(ctx, job.farm, owner)
	})
	pool.Start(c.cfg.Workers)
	if c.shutdown != nil {
		c.shutdown.Add("claim-workers", pool)
	}
	pool.Wait()

	for i := range results {
		if results[i].Name == "" {
			results[i] = Step{Name: "claim", Target: farms[i].Address, Err: ctx.Err()}
		}
	}
	return results
}

type claimJob struct {
	index int
	farm  *saber.Farm
}

func (c *Compounder) claim(ctx context.Context, farm *saber.Farm, owner solana.PublicKey) Step {
	c.logger.Info("Compound step", zap.String("step", "claim"), zap.String("farm", farm.Address.String()))
	b, err := c.saber.Claim(ctx, farm, owner)
	if err != nil {
		return Step{Name: "claim", Target: farm.Address, Err: err}
	}
	step := c.submit(ctx, "claim", farm.Address, b)
	if step.Err != nil {
		c.logger.Warn("Claim failed", zap.String("farm", farm.Address.String()), zap.Error(step.Err))
	}
	return step
}

// sell swaps amount SBR on the configured pool and returns the proceeds mint
// and the guaranteed minimum received.
func (c *Compounder) sell(ctx context.Context, owner solana.PublicKey, amount uint64, report *Report) (solana.PublicKey, uint64, error) {
	c.logger.Info("Compound step", zap.String("step", "swap"), zap.String("farm", c.cfg.SBRAmm.String()))

	refreshed, err := c.pools.GetRefreshedPool(ctx, c.cfg.SBRAmm)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to load SBR pool: %w", err)
	}
	side, err := refreshed.SideOf(saber.SBRMint)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	toMint := refreshed.PcMint
	if side == raydium.SidePc {
		toMint = refreshed.CoinMint
	}

	quote, err := refreshed.Quote(side, amount)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	minOut := model.ApplySlippage(quote, c.cfg.SlippageBps)
	if minOut == 0 {
		return solana.PublicKey{}, 0, fmt.Errorf("selling %d SBR yields nothing", amount)
	}

	b, err := c.swapper.Swap(ctx, refreshed.Pool, raydium.SwapParams{
		FromMint:     saber.SBRMint,
		ToMint:       toMint,
		Owner:        owner,
		AmountIn:     amount,
		MinAmountOut: minOut,
	})
	if err != nil {
		return solana.PublicKey{}, 0, err
	}

	step := c.submit(ctx, "swap", c.cfg.SBRAmm, b)
	report.Swap = &step
	if step.Err != nil {
		return solana.PublicKey{}, 0, step.Err
	}

	c.logger.Debug("SBR sold",
		zap.Uint64("amount_in", amount),
		zap.Uint64("quote", quote),
		zap.Uint64("min_out", minOut))
	return toMint, minOut, nil
}

// deposit adds amount of mint to its side of target. Staking happens in
// stakeAll once the LP balance is known.
func (c *Compounder) deposit(ctx context.Context, target *saber.StableSwap, mint solana.PublicKey, amount uint64, owner solana.PublicKey, report *Report) error {
	c.logger.Info("Compound step", zap.String("step", "deposit"), zap.String("farm", target.Address.String()))

	var amountA, amountB uint64
	switch {
	case target.MintA.Equals(mint):
		amountA = amount
	case target.MintB.Equals(mint):
		amountB = amount
	default:
		return fmt.Errorf("pool %s does not trade %s", target.Address, mint)
	}

	unfarmed := *target
	unfarmed.Farm = nil
	b, err := c.saber.Deposit(ctx, &unfarmed, amountA, amountB, 0, owner)
	if err != nil {
		return err
	}

	step := c.submit(ctx, "deposit", target.Address, b)
	report.Deposit = &step
	return step.Err
}

// stakeAll stakes the whole LP balance of every farmed pool.
func (c *Compounder) stakeAll(ctx context.Context, pools []*saber.StableSwap, owner solana.PublicKey, report *Report) error {
	balances, err := c.balances(ctx, owner)
	if err != nil {
		return err
	}

	for _, pool := range pools {
		if !pool.IsFarming() {
			continue
		}
		lp := balances[pool.PoolMint]
		if lp == 0 {
			continue
		}

		c.logger.Info("Compound step", zap.String("step", "stake"), zap.String("farm", pool.Farm.Address.String()))
		b, err := c.saber.Stake(ctx, pool.Farm, owner, lp)
		if err != nil {
			return err
		}
		step := c.submit(ctx, "stake", pool.Farm.Address, b)
		report.Stakes = append(report.Stakes, step)
		if step.Err != nil {
			return step.Err
		}
	}
	return nil
}

func (c *Compounder) balances(ctx context.Context, owner solana.PublicKey) (map[solana.PublicKey]uint64, error) {
	accounts, err := spltoken.ListByOwner(ctx, c.ledger, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read token balances: %w", err)
	}
	return spltoken.BalancesByMint(accounts), nil
}

// submit sends b, or only logs it in dry-run mode.
func (c *Compounder) submit(ctx context.Context, name string, target solana.PublicKey, b *batch.Batch) Step {
	step := Step{Name: name, Target: target, Instructions: b.Len()}
	if b.Empty() {
		return step
	}

	c.logger.Info("Batch assembled",
		zap.String("operation", name),
		zap.Int("instructions", b.Len()),
		zap.Bool("dry_run", c.cfg.DryRun))
	if c.cfg.DryRun {
		return step
	}

	sig, err := c.sender.Send(ctx, b.Instructions(), c.signer)
	step.Signature = sig
	step.Err = err
	return step
}

func findPool(pools []*saber.StableSwap, address solana.PublicKey) (*saber.StableSwap, bool) {
	for _, p := range pools {
		if p.Address.Equals(address) {
			return p, true
		}
	}
	return nil, false
}
