package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:               "ammkit",
		Short:             "Raydium, Saber and Quarry client toolkit",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path (defaults and AMMKIT_* env when empty)")
	root.PersistentFlags().BoolVar(&a.send, "send", false, "submit transactions instead of printing them")
	root.PersistentFlags().StringVar(&a.exportDir, "export-dir", "", "write listings to this directory")
	root.PersistentFlags().StringVar(&a.exportFormat, "format", "csv", "export format (csv, json)")

	root.AddCommand(
		poolsCmd(a),
		farmsCmd(a),
		minersCmd(a),
		depositCmd(a),
		withdrawCmd(a),
		stakeCmd(a),
		unstakeCmd(a),
		claimCmd(a),
		raydiumCmd(a),
		compoundCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
