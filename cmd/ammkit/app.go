package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-amm-kit/internal/bot"
	"github.com/rovshanmuradov/solana-amm-kit/internal/config"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/batch"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/model"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/saber"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/spltoken"
	"github.com/rovshanmuradov/solana-amm-kit/internal/export"
	"github.com/rovshanmuradov/solana-amm-kit/internal/logger"
	"github.com/rovshanmuradov/solana-amm-kit/internal/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the services shared by every command.
type app struct {
	configPath   string
	send         bool
	exportDir    string
	exportFormat string

	cfg      *config.Config
	log      *logger.Logger
	client   *solbc.Client
	saber    *saber.Discovery
	raydium  *raydium.Discovery
	shutdown *bot.ShutdownHandler

	wallet *wallet.Wallet
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadConfig(a.configPath)
	} else {
		a.cfg, err = config.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a.log, err = logger.New(&logger.Config{
		LogFile:     a.cfg.Log.File,
		MaxSize:     a.cfg.Log.MaxSize,
		MaxAge:      a.cfg.Log.MaxAge,
		MaxBackups:  a.cfg.Log.MaxBackups,
		Compress:    a.cfg.Log.Compress,
		Development: a.cfg.Log.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.shutdown = bot.NewShutdownHandler(a.log.Logger, 0)
	a.shutdown.AddFunc("logger", a.log.Sync)
	go a.shutdown.HandleShutdown(cmd.Context())

	a.client = solbc.NewClient(a.cfg.RPCURL, solbc.Options{
		BatchSize:      a.cfg.BatchSize,
		Concurrency:    a.cfg.Concurrency,
		Retries:        a.cfg.Retries,
		RequestTimeout: a.cfg.RequestTimeoutDuration(),
		Commitment:     rpc.CommitmentType(a.cfg.Commitment),
	}, a.log.WithComponent("rpc"))

	discovery, err := discoveryConfig(a.cfg)
	if err != nil {
		return err
	}
	a.saber = saber.NewDiscovery(a.client, discovery, a.log.Logger)
	a.raydium = raydium.NewDiscovery(a.client, a.log.Logger)
	if a.cfg.Raydium.PoolsFile != "" {
		if err := a.raydium.Cache().LoadPoolsFromFile(a.cfg.Raydium.PoolsFile); err != nil {
			return err
		}
	}

	a.log.Debug("Initialized",
		zap.String("command", cmd.Name()),
		zap.String("rpc_url", a.cfg.RPCURL),
		zap.Bool("send", a.send))
	return nil
}

func (a *app) close() {
	if a.shutdown == nil {
		return
	}
	for _, err := range a.shutdown.Shutdown() {
		fmt.Fprintln(os.Stderr, err)
	}
}

// discoveryConfig applies the saber section on top of the curated defaults.
// Configured deprecated pools extend the built-in denylist.
func discoveryConfig(cfg *config.Config) (saber.DiscoveryConfig, error) {
	out := saber.DefaultDiscoveryConfig()
	out.AdminFilter = cfg.Saber.AdminFilter

	rewarder, ok, err := cfg.RewarderKey()
	if err != nil {
		return out, fmt.Errorf("invalid saber.rewarder: %w", err)
	}
	if ok {
		out.Rewarder = rewarder
	}

	deprecated, err := cfg.DeprecatedPoolKeys()
	if err != nil {
		return out, err
	}
	out.Denylist = append(out.Denylist, deprecated...)
	return out, nil
}

func (a *app) signer() (*wallet.Wallet, error) {
	if a.wallet != nil {
		return a.wallet, nil
	}
	w, err := wallet.Load(a.cfg.KeypairPath, a.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	a.log.Debug("Wallet loaded", zap.String("wallet", w.Payer().String()))
	a.wallet = w
	return w, nil
}

// owner resolves --owner, falling back to the configured wallet.
func (a *app) owner(flag string) (solana.PublicKey, error) {
	if flag != "" {
		return parseKey("owner", flag)
	}
	w, err := a.signer()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return w.Payer(), nil
}

// submit sends b with the wallet, or prints it when --send is off.
func (a *app) submit(ctx context.Context, operation string, b *batch.Batch) error {
	if b.Empty() {
		fmt.Println("nothing to do")
		return nil
	}
	a.log.Info("Batch assembled",
		zap.String("operation", operation),
		zap.Int("instructions", b.Len()),
		zap.Bool("dry_run", !a.send))

	if !a.send {
		for i, ix := range b.Instructions() {
			fmt.Printf("%2d  %s  %d accounts\n", i, ix.ProgramID(), len(ix.Accounts()))
		}
		fmt.Println("dry run, pass --send to submit")
		return nil
	}

	w, err := a.signer()
	if err != nil {
		return err
	}
	end := a.log.TrackPerformance(operation)
	sig, err := a.client.Send(ctx, b.Instructions(), w)
	end()
	if err != nil {
		a.log.LogError("Transaction failed", err, zap.String("operation", operation))
		return err
	}
	a.log.WithSignature(sig.String()).Info("Transaction confirmed", zap.String("operation", operation))
	fmt.Println(sig)
	return nil
}

// parseAmount reads a human amount of mint into base units.
func (a *app) parseAmount(ctx context.Context, mint solana.PublicKey, s string) (uint64, error) {
	decimals, err := a.decimals(ctx, mint)
	if err != nil {
		return 0, err
	}
	return model.ParseHuman(s, decimals)
}

func (a *app) decimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	mints, err := spltoken.GetMints(ctx, a.client, []solana.PublicKey{mint})
	if err != nil {
		return 0, err
	}
	return mints[0].Decimals, nil
}

func (a *app) exportOptions() (export.ExportOptions, bool) {
	if a.exportDir == "" {
		return export.ExportOptions{}, false
	}
	return export.ExportOptions{
		Format:    export.ExportFormat(a.exportFormat),
		OutputDir: a.exportDir,
	}, true
}

func parseKey(name, s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return key, nil
}
