package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/bot"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/saber"
	"github.com/spf13/cobra"
)

func compoundCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "compound",
		Short: "Claim rewards, sell SBR, deposit the proceeds and stake every LP balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			a.shutdown.AddFunc("compound", func() error {
				cancel()
				return nil
			})

			w, err := a.signer()
			if err != nil {
				return err
			}

			cfg := bot.DefaultCompoundConfig()
			cfg.SlippageBps = uint16(a.cfg.SlippageBps)
			cfg.Workers = a.cfg.Concurrency
			cfg.DryRun = !a.send
			if key, ok, err := a.cfg.SBRAmmKey(); err != nil {
				return fmt.Errorf("invalid raydium.sbr_amm: %w", err)
			} else if ok {
				cfg.SBRAmm = key
			}
			if target != "" {
				if cfg.TargetPool, err = parseKey("target pool", target); err != nil {
					return err
				}
			}

			pools, err := a.saber.ListPools(ctx)
			if err != nil {
				return err
			}
			miners, err := a.saber.ListMinersForOwner(ctx, w.Payer(), saber.ListMinersOptions{NonZeroOnly: true})
			if err != nil {
				return err
			}

			log := a.log.WithOperation("compound")
			compounder := bot.NewCompounder(
				a.client,
				a.client,
				w,
				a.raydium,
				raydium.NewAssembler(a.client, log),
				cfg,
				log,
			)
			compounder.SetShutdownHandler(a.shutdown)

			report, runErr := compounder.Run(ctx, pools, miners)
			if report != nil {
				printReport(report)
			}
			if runErr != nil {
				return runErr
			}
			if report.Failed() {
				log.Warn("Compound finished with failed steps")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "stable-swap pool to reinvest into (defaults to USDC-UST)")
	return cmd
}

func printReport(r *bot.Report) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tTARGET\tIXS\tSIGNATURE\tERROR")
	for _, s := range r.Steps() {
		sig, errText := "-", ""
		if s.Err != nil {
			errText = s.Err.Error()
		} else if s.Signature != (solana.Signature{}) {
			sig = s.Signature.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Name, s.Target, s.Instructions, sig, errText)
	}
	_ = tw.Flush()
	if r.SBRSold > 0 {
		fmt.Printf("sold %d SBR base units for at least %d\n", r.SBRSold, r.MinReceived)
	}
}
