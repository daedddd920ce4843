package main

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/model"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/raydium"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func raydiumCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raydium",
		Short: "Constant-product AMM operations",
	}
	cmd.AddCommand(
		raydiumFindCmd(a),
		raydiumQuoteCmd(a),
		raydiumSwapCmd(a),
		raydiumAddLiquidityCmd(a),
		raydiumRemoveLiquidityCmd(a),
	)
	return cmd
}

func raydiumFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <mint-a> <mint-b>",
		Short: "Find the pool trading two mints",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			mintB, err := parseKey("mint", args[1])
			if err != nil {
				return err
			}
			pool, err := a.raydium.FindPool(cmd.Context(), mintA, mintB)
			if err != nil {
				return err
			}
			fmt.Printf("%s  v%d  coin %s  pc %s  lp %s\n", pool.Address, pool.Version, pool.CoinMint, pool.PcMint, pool.LpMint)
			return nil
		},
	}
}

func raydiumQuoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <pool> <from-mint> <amount>",
		Short: "Quote a swap against current reserves",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, from, amountIn, err := a.swapArgs(cmd, args)
			if err != nil {
				return err
			}
			out, err := pool.QuoteMint(from, amountIn)
			if err != nil {
				return err
			}

			to, outDecimals := otherSide(pool, from)
			fmt.Printf("%s %s -> %s %s\n",
				humanAmount(amountIn, inDecimals(pool, from)), from,
				humanAmount(out, outDecimals), to)
			return nil
		},
	}
}

func raydiumSwapCmd(a *app) *cobra.Command {
	var slippageBps int
	cmd := &cobra.Command{
		Use:   "swap <pool> <from-mint> <amount>",
		Short: "Swap with a slippage-bounded minimum output",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, from, amountIn, err := a.swapArgs(cmd, args)
			if err != nil {
				return err
			}
			w, err := a.signer()
			if err != nil {
				return err
			}

			bps := a.cfg.SlippageBps
			if cmd.Flags().Changed("slippage-bps") {
				bps = slippageBps
			}
			if bps < 0 || bps > 10_000 {
				return fmt.Errorf("slippage-bps %d out of range [0, 10000]", bps)
			}

			quote, err := pool.QuoteMint(from, amountIn)
			if err != nil {
				return err
			}
			minOut := model.ApplySlippage(quote, uint16(bps))
			to, _ := otherSide(pool, from)

			a.log.Debug("Swap quoted",
				zap.Uint64("amount_in", amountIn),
				zap.Uint64("quote", quote),
				zap.Uint64("min_out", minOut))

			b, err := raydium.NewAssembler(a.client, a.log.Logger).Swap(ctx, pool.Pool, raydium.SwapParams{
				FromMint:     from,
				ToMint:       to,
				Owner:        w.Payer(),
				AmountIn:     amountIn,
				MinAmountOut: minOut,
			})
			if err != nil {
				return err
			}
			return a.submit(ctx, "swap", b)
		},
	}
	cmd.Flags().IntVar(&slippageBps, "slippage-bps", 0, "slippage tolerance (defaults to slippage_bps from config)")
	return cmd
}

func raydiumAddLiquidityCmd(a *app) *cobra.Command {
	var fixedSide string
	cmd := &cobra.Command{
		Use:   "add-liquidity <pool> <max-coin> <max-pc>",
		Short: "Add liquidity from the wallet's coin and pc accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := parseKey("pool", args[0])
			if err != nil {
				return err
			}
			w, err := a.signer()
			if err != nil {
				return err
			}
			pool, err := a.raydium.GetPool(ctx, key)
			if err != nil {
				return err
			}

			maxCoin, err := model.ParseHuman(args[1], uint8(pool.CoinDecimals))
			if err != nil {
				return err
			}
			maxPc, err := model.ParseHuman(args[2], uint8(pool.PcDecimals))
			if err != nil {
				return err
			}

			var fixedFromCoin uint64
			switch fixedSide {
			case "coin":
			case "pc":
				fixedFromCoin = 1
			default:
				return fmt.Errorf("fixed-side must be coin or pc, got %q", fixedSide)
			}

			b, err := raydium.NewAssembler(a.client, a.log.Logger).AddLiquidity(pool, w.Payer(), maxCoin, maxPc, fixedFromCoin)
			if err != nil {
				return err
			}
			return a.submit(ctx, "add_liquidity", b)
		},
	}
	cmd.Flags().StringVar(&fixedSide, "fixed-side", "coin", "side whose amount is fixed (coin, pc)")
	return cmd
}

func raydiumRemoveLiquidityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-liquidity <pool> <lp-amount>",
		Short: "Burn LP tokens into the wallet's coin and pc accounts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := parseKey("pool", args[0])
			if err != nil {
				return err
			}
			w, err := a.signer()
			if err != nil {
				return err
			}
			pool, err := a.raydium.GetPool(ctx, key)
			if err != nil {
				return err
			}
			amount, err := a.parseAmount(ctx, pool.LpMint, args[1])
			if err != nil {
				return err
			}

			b, err := raydium.NewAssembler(a.client, a.log.Logger).RemoveLiquidity(ctx, pool, w.Payer(), amount)
			if err != nil {
				return err
			}
			return a.submit(ctx, "remove_liquidity", b)
		},
	}
}

// swapArgs resolves <pool> <from-mint> <amount> against fresh reserves.
func (a *app) swapArgs(cmd *cobra.Command, args []string) (*raydium.RefreshedPool, solana.PublicKey, uint64, error) {
	key, err := parseKey("pool", args[0])
	if err != nil {
		return nil, solana.PublicKey{}, 0, err
	}
	from, err := parseKey("from mint", args[1])
	if err != nil {
		return nil, solana.PublicKey{}, 0, err
	}

	pool, err := a.raydium.GetRefreshedPool(cmd.Context(), key)
	if err != nil {
		return nil, solana.PublicKey{}, 0, err
	}
	if _, err := pool.SideOf(from); err != nil {
		return nil, solana.PublicKey{}, 0, err
	}

	amountIn, err := model.ParseHuman(args[2], inDecimals(pool, from))
	if err != nil {
		return nil, solana.PublicKey{}, 0, err
	}
	return pool, from, amountIn, nil
}

func inDecimals(pool *raydium.RefreshedPool, from solana.PublicKey) uint8 {
	if from.Equals(pool.CoinMint) {
		return uint8(pool.CoinDecimals)
	}
	return uint8(pool.PcDecimals)
}

// otherSide returns the output mint and decimals for a swap from mint.
func otherSide(pool *raydium.RefreshedPool, from solana.PublicKey) (solana.PublicKey, uint8) {
	if from.Equals(pool.CoinMint) {
		return pool.PcMint, uint8(pool.PcDecimals)
	}
	return pool.CoinMint, uint8(pool.CoinDecimals)
}

func humanAmount(raw uint64, decimals uint8) string {
	return model.ToHuman(new(big.Int).SetUint64(raw), decimals).String()
}
