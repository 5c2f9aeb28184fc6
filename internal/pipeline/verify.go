package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

type namedAddress struct {
	name  string
	value string
}

func (p *Pipeline) addresses() []namedAddress {
	a := p.cfg.Addresses
	return []namedAddress{
		{"pair", a.Pair},
		{"vault", a.Vault},
		{"quoter", a.Quoter},
		{"v3-factory", a.V3Factory},
		{"weth", a.WETH},
		{"usdc", a.USDC},
		{"pool-manager", a.PoolManager},
	}
}

// Verify checks the chain id and that every configured address holds bytecode. The report is
// written before an address without code fails the stage.
func (p *Pipeline) Verify(ctx context.Context) error {
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	if p.cfg.ChainID != 0 && chainID != p.cfg.ChainID {
		return fmt.Errorf("chain id %d does not match configured %d", chainID, p.cfg.ChainID)
	}
	block, err := p.client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}

	report := model.AddressVerification{
		RunID:       uuid.NewString(),
		GeneratedAt: p.stamp(),
		RPC:         RedactURL(p.cfg.RPCURL),
		ChainID:     chainID,
		BlockNumber: block,
	}
	var missing []string
	for _, named := range p.addresses() {
		address, err := scan.ParseAddress(named.name, named.value)
		if err != nil {
			return err
		}
		code, err := p.client.CodeAt(ctx, address, dex.BlockArg(block))
		if err != nil {
			return fmt.Errorf("code at %s: %w", named.name, err)
		}
		check := model.AddressCheck{Name: named.name, Address: address.Hex(), HasCode: len(code) > 0, CodeSize: len(code)}
		if !check.HasCode {
			missing = append(missing, named.name)
		}
		p.logger.Info("address checked", zap.String("name", named.name), zap.String("address", check.Address), zap.Int("code_size", check.CodeSize))
		report.Checks = append(report.Checks, check)
	}
	if err := storage.WriteJSON(p.layout.Raw(storage.AddressVerification), report); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("no bytecode at %s", strings.Join(missing, ", "))
	}
	return nil
}

// RedactURL keeps the scheme and host of an RPC URL. Any path is replaced as a whole, since
// providers put keys in different segments. Query and credentials are dropped.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	out := u.Scheme + "://" + u.Host
	if strings.Trim(u.Path, "/") == "" {
		return out
	}
	return out + "/<redacted>"
}

// Metadata reads the pair's tokens and reserves at the configured block, or latest.
func (p *Pipeline) Metadata(ctx context.Context) error {
	pair, err := scan.ParseAddress("pair", p.cfg.Addresses.Pair)
	if err != nil {
		return err
	}
	block := p.cfg.MetadataBlock
	if block == 0 {
		block, err = p.client.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}
	meta, err := dex.FetchPairMeta(ctx, p.client, pair, block, p.tokens, p.logger)
	if err != nil {
		return fmt.Errorf("pair metadata: %w", err)
	}
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	meta.ChainID = chainID
	meta.BlockNumber = block
	if _, _, _, err := meta.Split(p.cfg.Addresses.WETH); err != nil {
		return err
	}
	p.logger.Info("pair metadata",
		zap.Uint64("block", block),
		zap.String("token0", meta.Token0.Symbol),
		zap.String("token1", meta.Token1.Symbol),
		zap.String("reserve0", meta.Token0.ReserveRaw),
		zap.String("reserve1", meta.Token1.ReserveRaw),
	)
	return storage.WriteJSON(p.layout.Raw(storage.PairMetadata), meta)
}

// Probe calls the diagnostic getters on the vault at the latest block.
func (p *Pipeline) Probe(ctx context.Context) error {
	vault, err := scan.ParseAddress("vault", p.cfg.Addresses.Vault)
	if err != nil {
		return err
	}
	block, err := p.client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}
	results := dex.Probe(ctx, p.client, vault, block, dex.DefaultVaultProbes)
	ok := 0
	for _, res := range results {
		if res.Status == "ok" {
			ok++
		}
	}
	p.logger.Info("vault probed", zap.Uint64("block", block), zap.Int("selectors", len(results)), zap.Int("ok", ok))
	return storage.WriteJSON(p.layout.Raw(storage.InterfaceProbe), model.InterfaceProbe{
		BlockNumber: block,
		Target:      vault.Hex(),
		Results:     results,
	})
}
