package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/pricing"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// pool is the destination pool as seen through the vault module.
type pool struct {
	vault  *dex.Vault
	module *dex.Module
	key    model.PoolKey
	base   model.TokenMeta
	eth    model.TokenMeta
}

func (p *Pipeline) readMeta() (model.PairMetadata, error) {
	var meta model.PairMetadata
	if err := storage.ReadJSON(p.layout.Raw(storage.PairMetadata), &meta); err != nil {
		return model.PairMetadata{}, err
	}
	return meta, nil
}

func (p *Pipeline) readRecord() (model.MigrationRecord, error) {
	var record model.MigrationRecord
	if err := storage.ReadJSON(p.layout.Raw(storage.MigrationRecord), &record); err != nil {
		return model.MigrationRecord{}, err
	}
	if record.Selected.MigrationBlock == 0 {
		return model.MigrationRecord{}, fmt.Errorf("migration record has no block")
	}
	return record, nil
}

// vaultModule detects the active module of the configured vault at the latest block.
func (p *Pipeline) vaultModule(ctx context.Context) (*dex.Vault, *dex.Module, error) {
	address, err := scan.ParseAddress("vault", p.cfg.Addresses.Vault)
	if err != nil {
		return nil, nil, err
	}
	vault := dex.NewVault(p.client, address, p.logger)
	moduleAddress, err := vault.DetectModule(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	return vault, dex.NewModule(p.client, moduleAddress), nil
}

// resolvePool reads the module's pool key and pairs the base token of the source pair with its
// counterpart in the pool, which may be native ETH.
func (p *Pipeline) resolvePool(ctx context.Context, meta model.PairMetadata) (pool, error) {
	vault, module, err := p.vaultModule(ctx)
	if err != nil {
		return pool{}, err
	}
	key, err := module.PoolKey(ctx, 0)
	if err != nil {
		return pool{}, fmt.Errorf("pool key: %w", err)
	}
	base, _, _, err := meta.Split(p.cfg.Addresses.WETH)
	if err != nil {
		return pool{}, err
	}
	other, err := key.Other(base.Address)
	if err != nil {
		return pool{}, fmt.Errorf("destination pool %s: %w", key, err)
	}
	eth, err := p.tokens.Fetch(ctx, p.client, common.HexToAddress(other), p.logger)
	if err != nil {
		return pool{}, fmt.Errorf("eth side metadata: %w", err)
	}
	p.logger.Info("destination pool",
		zap.String("module", module.Address().Hex()),
		zap.String("pool_key", key.String()),
		zap.String("base", base.Symbol),
		zap.String("eth", eth.Symbol),
	)
	return pool{vault: vault, module: module, key: key, base: base.TokenMeta, eth: eth}, nil
}

func (p *Pipeline) quoter() (*dex.Quoter, error) {
	address, err := scan.ParseAddress("quoter", p.cfg.Addresses.Quoter)
	if err != nil {
		return nil, err
	}
	return dex.NewQuoter(p.client, address), nil
}

// ethUSD resolves the WETH/USDC UniV3 pool used as the ETH/USD oracle.
func (p *Pipeline) ethUSD(ctx context.Context) (*pricing.EthUSD, error) {
	factory, err := scan.ParseAddress("v3-factory", p.cfg.Addresses.V3Factory)
	if err != nil {
		return nil, err
	}
	weth, err := scan.ParseAddress("weth", p.cfg.Addresses.WETH)
	if err != nil {
		return nil, err
	}
	usdc, err := scan.ParseAddress("usdc", p.cfg.Addresses.USDC)
	if err != nil {
		return nil, err
	}
	return pricing.ResolveEthUSD(ctx, p.client, factory, weth, usdc, p.cfg.Slippage.V3Fee, p.tokens)
}
