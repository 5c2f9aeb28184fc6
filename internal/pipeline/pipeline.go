package pipeline

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/config"
	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// Client is the RPC surface of every online stage.
type Client interface {
	dex.ContractCaller
	scan.LogFilterer
	ChainID(ctx context.Context) (uint64, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Stage is one step of the pipeline with its declared inputs.
type Stage struct {
	Name   string
	RPC    bool
	Inputs func(l storage.Layout) []string
	Run    func(p *Pipeline, ctx context.Context) error
}

// Stages lists the steps of a full run in order.
var Stages = []Stage{
	{Name: "verify", RPC: true, Run: (*Pipeline).Verify},
	{Name: "metadata", RPC: true, Run: (*Pipeline).Metadata},
	{Name: "locate", RPC: true, Inputs: raw(storage.PairMetadata), Run: (*Pipeline).Locate},
	{Name: "eth-usd", RPC: true, Inputs: processed(storage.ReserveBins), Run: (*Pipeline).EthUSD},
	{
		Name: "slippage-pre",
		Inputs: func(l storage.Layout) []string {
			return []string{
				l.Processed(storage.SyncTimeseries), l.Raw(storage.PairMetadata),
				l.Raw(storage.MigrationRecord), l.Processed(storage.EthUSDSeries),
			}
		},
		Run: (*Pipeline).SlippagePre,
	},
	{Name: "slippage-post", RPC: true, Inputs: raw(storage.PairMetadata, storage.MigrationRecord), Run: (*Pipeline).SlippagePost},
	{Name: "execution-quality", Inputs: processed(storage.SlippagePre, storage.SlippagePost), Run: (*Pipeline).ExecutionQuality},
	{Name: "liquidity", RPC: true, Run: (*Pipeline).Liquidity},
	{Name: "vault", RPC: true, Inputs: raw(storage.PairMetadata, storage.MigrationRecord), Run: (*Pipeline).Vault},
	{Name: "vault-report", Inputs: processed(storage.VaultTimeseries), Run: (*Pipeline).VaultReport},
	{
		Name: "report",
		Inputs: func(l storage.Layout) []string {
			return []string{
				l.Raw(storage.MigrationRecord), l.Raw(storage.PairMetadata),
				l.Processed(storage.ExecutionComparison), l.Processed(storage.VaultSummary),
			}
		},
		Run: (*Pipeline).Report,
	},
}

// Diagnostics are stages outside a full run.
var Diagnostics = []Stage{
	{Name: "probe", RPC: true, Run: (*Pipeline).Probe},
}

func raw(names ...string) func(storage.Layout) []string {
	return func(l storage.Layout) []string {
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = l.Raw(name)
		}
		return out
	}
}

func processed(names ...string) func(storage.Layout) []string {
	return func(l storage.Layout) []string {
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = l.Processed(name)
		}
		return out
	}
}

// Pipeline runs stages against one artifact root. client may be nil for offline stages.
type Pipeline struct {
	cfg    config.Config
	layout storage.Layout
	client Client
	tokens *dex.TokenMetaCache
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg config.Config, client Client, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:    cfg,
		layout: storage.NewLayout(cfg.Root),
		client: client,
		tokens: dex.NewTokenMetaCache(),
		logger: logger,
		now:    time.Now,
	}
}

// Layout returns the artifact layout of this run.
func (p *Pipeline) Layout() storage.Layout {
	return p.layout
}

// Lookup finds a stage by name among Stages and Diagnostics.
func Lookup(name string) (Stage, bool) {
	for _, list := range [][]Stage{Stages, Diagnostics} {
		for _, stage := range list {
			if stage.Name == name {
				return stage, true
			}
		}
	}
	return Stage{}, false
}

// RunStage checks the stage's requirements and inputs, then runs it.
func (p *Pipeline) RunStage(ctx context.Context, name string) error {
	stage, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown stage %q", name)
	}
	return p.run(ctx, stage)
}

// RunAll runs every stage of Stages in order and stops at the first failure.
func (p *Pipeline) RunAll(ctx context.Context) error {
	if err := p.CheckConfig(true); err != nil {
		return err
	}
	started := p.now()
	for i, stage := range Stages {
		p.logger.Info("stage start", zap.Int("step", i+1), zap.Int("steps", len(Stages)), zap.String("stage", stage.Name))
		if err := p.run(ctx, stage); err != nil {
			return err
		}
	}
	p.logger.Info("pipeline done", zap.Duration("elapsed", p.now().Sub(started)))
	return nil
}

// CheckConfig reports ErrMissingConfig for settings every online stage needs.
func (p *Pipeline) CheckConfig(rpc bool) error {
	if rpc && p.client == nil {
		return fmt.Errorf("%w: rpc url (RPC_URL) is required", ErrMissingConfig)
	}
	if p.cfg.Root == "" {
		return fmt.Errorf("%w: root directory", ErrMissingConfig)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, stage Stage) error {
	if err := p.CheckConfig(stage.RPC); err != nil {
		return fmt.Errorf("%s: %w", stage.Name, err)
	}
	if stage.Inputs != nil {
		if err := storage.RequireFiles(stage.Inputs(p.layout)...); err != nil {
			return fmt.Errorf("%s: %w", stage.Name, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	started := p.now()
	if err := stage.Run(p, ctx); err != nil {
		return fmt.Errorf("%s: %w", stage.Name, err)
	}
	p.logger.Info("stage done", zap.String("stage", stage.Name), zap.Duration("elapsed", p.now().Sub(started)))
	return nil
}

func (p *Pipeline) stamp() string {
	return p.now().UTC().Format(time.RFC3339)
}
