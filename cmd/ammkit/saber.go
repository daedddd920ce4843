package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/saber"
	"github.com/rovshanmuradov/solana-amm-kit/internal/export"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func poolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List stable-swap pools with their wrap and farm links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pools, err := a.saber.ListPools(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("Listed pools", zap.Int("count", len(pools)))

			rows := export.PoolRows(pools)
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POOL\tMINT A\tMINT B\tAMP\tFEE BPS\tFARM")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", r.Address, r.MintA, r.MintB, r.AmpFactor, r.TradeFeeBps, r.Farm)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if opts, ok := a.exportOptions(); ok {
				path, err := export.NewPositionExporter(a.log.Logger).ExportPools(rows, opts)
				if err != nil {
					return err
				}
				fmt.Println("exported to", path)
			}
			return nil
		},
	}
}

func farmsCmd(a *app) *cobra.Command {
	var rewarder string
	cmd := &cobra.Command{
		Use:   "farms",
		Short: "List the farms of a rewarder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := saber.Rewarder
			if rewarder != "" {
				var err error
				if key, err = parseKey("rewarder", rewarder); err != nil {
					return err
				}
			} else if configured, ok, err := a.cfg.RewarderKey(); err != nil {
				return err
			} else if ok {
				key = configured
			}

			farms, err := a.saber.ListFarms(cmd.Context(), key)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FARM\tLP MINT\tTOTAL STAKED\tMINERS")
			for _, f := range farms {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", f.Address, f.TokenMint, f.TotalTokensDeposited, f.NumMiners)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&rewarder, "rewarder", "", "rewarder address (defaults to the Saber rewarder)")
	return cmd
}

func minersCmd(a *app) *cobra.Command {
	var (
		ownerFlag string
		lpMint    string
		nonZero   bool
	)
	cmd := &cobra.Command{
		Use:   "miners",
		Short: "List an owner's farm positions with unclaimed rewards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			owner, err := a.owner(ownerFlag)
			if err != nil {
				return err
			}

			pools, err := a.saber.ListPools(ctx)
			if err != nil {
				return err
			}
			miners, err := a.saber.ListMinersForOwner(ctx, owner, saber.ListMinersOptions{NonZeroOnly: nonZero})
			if err != nil {
				return err
			}

			positions, err := export.Positions(pools, miners)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MINER\tPOOL\tLP MINT\tSTAKED\tUNCLAIMED SBR")
			for _, p := range positions {
				if lpMint != "" && p.LPMint != lpMint {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Miner, p.Pool, p.LPMint, p.Staked, p.Unclaimed)
			}
			fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", export.TotalUnclaimed(positions))
			if err := tw.Flush(); err != nil {
				return err
			}

			if opts, ok := a.exportOptions(); ok {
				opts.LPMint = lpMint
				opts.NonZeroOnly = nonZero
				path, err := export.NewPositionExporter(a.log.Logger).ExportPositions(positions, opts)
				if err != nil {
					return err
				}
				fmt.Println("exported to", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerFlag, "owner", "", "owner address (defaults to the wallet)")
	cmd.Flags().StringVar(&lpMint, "lp-mint", "", "only show positions in this LP mint")
	cmd.Flags().BoolVar(&nonZero, "nonzero", false, "skip miners with nothing staked")
	return cmd
}

func depositCmd(a *app) *cobra.Command {
	var minMint string
	cmd := &cobra.Command{
		Use:   "deposit <pool> <amount-a> <amount-b>",
		Short: "Deposit into a stable-swap pool and stake the LP when it is farmed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, owner, err := a.poolAndOwner(ctx, args[0])
			if err != nil {
				return err
			}

			amountA, err := a.parseSideAmount(ctx, pool, saber.SideA, args[1])
			if err != nil {
				return err
			}
			amountB, err := a.parseSideAmount(ctx, pool, saber.SideB, args[2])
			if err != nil {
				return err
			}
			minMintAmount, err := a.parseAmount(ctx, pool.PoolMint, minMint)
			if err != nil {
				return err
			}

			b, err := saber.NewAssembler(a.client, a.log.Logger).Deposit(ctx, pool, amountA, amountB, minMintAmount, owner)
			if err != nil {
				return err
			}
			return a.submit(ctx, "deposit", b)
		},
	}
	cmd.Flags().StringVar(&minMint, "min-mint", "0", "minimum LP tokens to receive")
	return cmd
}

func withdrawCmd(a *app) *cobra.Command {
	var (
		farmAmount string
		minOut     string
	)
	cmd := &cobra.Command{
		Use:   "withdraw <pool> <side> <lp-amount>",
		Short: "Withdraw one side of a stable-swap pool, unstaking first when asked",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, owner, err := a.poolAndOwner(ctx, args[0])
			if err != nil {
				return err
			}
			side, err := saber.ParseSide(args[1])
			if err != nil {
				return err
			}

			lpAmount, err := a.parseAmount(ctx, pool.PoolMint, args[2])
			if err != nil {
				return err
			}
			unfarm, err := a.parseAmount(ctx, pool.PoolMint, farmAmount)
			if err != nil {
				return err
			}
			minAmountOut, err := a.parseSideAmount(ctx, pool, side, minOut)
			if err != nil {
				return err
			}

			b, err := saber.NewAssembler(a.client, a.log.Logger).Withdraw(ctx, pool, side, unfarm, lpAmount, minAmountOut, owner)
			if err != nil {
				return err
			}
			return a.submit(ctx, "withdraw", b)
		},
	}
	cmd.Flags().StringVar(&farmAmount, "farm-amount", "0", "LP tokens to unstake before withdrawing")
	cmd.Flags().StringVar(&minOut, "min-out", "0", "minimum tokens to receive")
	return cmd
}

func stakeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stake <pool> <lp-amount>",
		Short: "Stake LP tokens into the pool's farm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, owner, err := a.poolAndOwner(ctx, args[0])
			if err != nil {
				return err
			}
			farm, err := pool.RequireFarm()
			if err != nil {
				return err
			}
			amount, err := a.parseAmount(ctx, pool.PoolMint, args[1])
			if err != nil {
				return err
			}

			b, err := saber.NewAssembler(a.client, a.log.Logger).Stake(ctx, farm, owner, amount)
			if err != nil {
				return err
			}
			return a.submit(ctx, "stake", b)
		},
	}
}

func unstakeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unstake <pool> <lp-amount>",
		Short: "Unstake LP tokens from the pool's farm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, owner, err := a.poolAndOwner(ctx, args[0])
			if err != nil {
				return err
			}
			farm, err := pool.RequireFarm()
			if err != nil {
				return err
			}
			amount, err := a.parseAmount(ctx, pool.PoolMint, args[1])
			if err != nil {
				return err
			}

			b, err := saber.NewAssembler(a.client, a.log.Logger).Unstake(farm, owner, amount)
			if err != nil {
				return err
			}
			return a.submit(ctx, "unstake", b)
		},
	}
}

func claimCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <pool>",
		Short: "Claim farm rewards and redeem them to SBR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, owner, err := a.poolAndOwner(ctx, args[0])
			if err != nil {
				return err
			}
			farm, err := pool.RequireFarm()
			if err != nil {
				return err
			}

			b, err := saber.NewAssembler(a.client, a.log.Logger).Claim(ctx, farm, owner)
			if err != nil {
				return err
			}
			return a.submit(ctx, "claim", b)
		},
	}
}

// poolAndOwner loads a linked pool and the wallet that will sign for it.
func (a *app) poolAndOwner(ctx context.Context, address string) (*saber.StableSwap, solana.PublicKey, error) {
	key, err := parseKey("pool", address)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if a.saber.Denied(key) {
		a.log.Warn("Pool is deprecated", zap.String("pool", key.String()))
	}

	w, err := a.signer()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	pool, err := a.saber.GetPool(ctx, key)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if pool.IsPaused {
		a.log.Warn("Pool is paused", zap.String("pool", key.String()))
	}
	return pool, w.Payer(), nil
}

// parseSideAmount reads an amount of side's pool token. Wrapped sides are
// quoted in the wrapped mint's decimals.
func (a *app) parseSideAmount(ctx context.Context, pool *saber.StableSwap, side saber.Side, s string) (uint64, error) {
	mint, err := pool.Mint(side)
	if err != nil {
		return 0, err
	}
	return a.parseAmount(ctx, mint, s)
}
