package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Kuber-code/Arrakis-Assessment/internal/chain"
	"github.com/Kuber-code/Arrakis-Assessment/internal/config"
	"github.com/Kuber-code/Arrakis-Assessment/internal/pipeline"
)

func main() {
	root := &cobra.Command{
		Use:          "analyzer",
		Short:        "Migration execution-quality and vault performance analysis",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(
		newVerifyCmd(),
		newMetadataCmd(),
		newLocateCmd(),
		newEthUSDCmd(),
		newSlippagePreCmd(),
		newSlippagePostCmd(),
		newExecutionQualityCmd(),
		newLiquidityCmd(),
		newVaultCmd(),
		newVaultReportCmd(),
		newReportCmd(),
		newProbeCmd(),
		newExportCmd(),
		newRunCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// stageCmd builds a subcommand that runs one pipeline stage.
func stageCmd(name, short string, flags ...func(*pflag.FlagSet)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, func(ctx context.Context, p *pipeline.Pipeline) error {
				return p.RunStage(ctx, name)
			})
		},
	}
	baseFlags(cmd.Flags())
	for _, add := range flags {
		add(cmd.Flags())
	}
	return cmd
}

func runPipeline(cmd *cobra.Command, run func(context.Context, *pipeline.Pipeline) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Offline stages run without an endpoint; the pipeline rejects RPC stages when client is nil.
	var client pipeline.Client
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{
			RequestInterval: cfg.RPC.RequestInterval,
			MaxRetries:      cfg.RPC.MaxRetries,
			RetryBackoff:    cfg.RPC.RetryBackoff,
			Logger:          logger,
		})
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		client = chainClient
	}

	logger.Info("analyzer start",
		zap.String("command", cmd.Name()),
		zap.String("rpc", pipeline.RedactURL(cfg.RPCURL)),
		zap.String("root", cfg.Root),
	)
	if err := run(ctx, pipeline.New(cfg, client, logger)); err != nil {
		logger.Error("analyzer failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}
	return nil
}

func baseFlags(f *pflag.FlagSet) {
	f.String("root", ".", "artifact root directory (data/, figures/, reports/)")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
}

func rpcFlags(f *pflag.FlagSet) {
	f.String("rpc", "", "Ethereum RPC URL (or RPC_URL)")
	f.Uint64("chain-id", 1, "expected chain id")
	f.Duration("request-interval", 250*time.Millisecond, "minimum interval between RPC requests")
	f.Int("max-retries", 5, "maximum retry attempts per RPC call")
	f.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
}

func addressFlags(f *pflag.FlagSet) {
	f.String("pair", config.DefaultPair, "UniV2 pair address")
	f.String("vault", config.DefaultVault, "Arrakis vault address")
	f.String("quoter", config.DefaultQuoter, "UniV4 quoter address")
	f.String("v3-factory", config.DefaultV3Factory, "UniV3 factory address")
	f.String("weth", config.DefaultWETH, "WETH address")
	f.String("usdc", config.DefaultUSDC, "USDC address")
	f.String("pool-manager", config.DefaultPoolManager, "UniV4 PoolManager address")
}

func locateFlags(f *pflag.FlagSet) {
	f.Uint64("from", 0, "first block to scan, 0 means to-lookback")
	f.Uint64("lookback", 2_000_000, "blocks to scan back from --to when --from is 0")
	f.Uint64("batch-size", 2000, "blocks per eth_getLogs request")
	f.Uint64("min-split", 20, "smallest block range when splitting a rejected request")
	f.Float64("drop-threshold", 0.5, "minimum quote-reserve drop fraction of a candidate")
	f.Uint64("confirm-window", 2000, "blocks after a candidate to look for destination liquidity")
	f.Duration("bin-interval", 30*time.Minute, "reserve bin width")
	f.String("pool-id", "", "destination UniV4 pool id, derived from the vault module when empty")
}

func toFlag(f *pflag.FlagSet) {
	f.Uint64("to", 0, "last block, 0 means latest")
}

func sizeFlags(f *pflag.FlagSet) {
	f.StringSlice("sizes", []string{"1000", "5000", "10000", "50000"}, "USD trade sizes (comma-separated)")
}

func oracleFlags(f *pflag.FlagSet) {
	f.Uint32("v3-fee", 500, "fee tier of the WETH/USDC UniV3 pool used for ETH/USD")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
