package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// ModuleGetters are the vault methods tried, in order, to find the active module.
var ModuleGetters = []string{"module", "activeModule", "getModule", "strategy"}

// ErrModuleNotFound means no module getter returned a non-zero address.
var ErrModuleNotFound = errors.New("arrakis module not found")

// Vault reads an Arrakis vault and its UniV4 module.
type Vault struct {
	caller  ContractCaller
	address common.Address
	logger  *zap.Logger
}

func NewVault(caller ContractCaller, address common.Address, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{caller: caller, address: address, logger: logger}
}

func (v *Vault) Address() common.Address {
	return v.address
}

// DetectModule returns the first non-zero module address exposed by the vault.
func (v *Vault) DetectModule(ctx context.Context, block uint64) (common.Address, error) {
	vaultABI, err := arrakisVaultABI.get()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse vault abi: %w", err)
	}
	for _, getter := range ModuleGetters {
		values, err := callMethod(ctx, v.caller, v.address, vaultABI, getter, BlockArg(block))
		if err != nil {
			v.logger.Debug("module getter failed", zap.String("getter", getter), zap.Error(err))
			continue
		}
		module, err := asAddress(values[0])
		if err != nil || module == (common.Address{}) {
			continue
		}
		v.logger.Info("vault module detected", zap.String("getter", getter), zap.String("module", module.Hex()))
		return module, nil
	}
	return common.Address{}, fmt.Errorf("%w: tried %v on %s", ErrModuleNotFound, ModuleGetters, v.address.Hex())
}

// TotalUnderlying returns the two raw underlying amounts. Their token order is not guaranteed.
func (v *Vault) TotalUnderlying(ctx context.Context, block uint64) (*big.Int, *big.Int, error) {
	vaultABI, err := arrakisVaultABI.get()
	if err != nil {
		return nil, nil, fmt.Errorf("parse vault abi: %w", err)
	}
	values, err := callMethod(ctx, v.caller, v.address, vaultABI, "totalUnderlying", BlockArg(block))
	if err != nil {
		return nil, nil, err
	}
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("unexpected totalUnderlying values: %d", len(values))
	}
	u0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, err
	}
	u1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, err
	}
	return u0, u1, nil
}

// Module reads an Arrakis UniV4 module.
type Module struct {
	caller  ContractCaller
	address common.Address
}

func NewModule(caller ContractCaller, address common.Address) *Module {
	return &Module{caller: caller, address: address}
}

func (m *Module) Address() common.Address {
	return m.address
}

// PoolKey reads the module's UniV4 pool key.
func (m *Module) PoolKey(ctx context.Context, block uint64) (model.PoolKey, error) {
	moduleABI, err := ArrakisModuleABI()
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("parse module abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, moduleABI, "poolKey", BlockArg(block))
	if err != nil {
		return model.PoolKey{}, err
	}
	if len(values) != 5 {
		return model.PoolKey{}, fmt.Errorf("unexpected poolKey values: %d", len(values))
	}
	c0, err := asAddress(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("currency0: %w", err)
	}
	c1, err := asAddress(values[1])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("currency1: %w", err)
	}
	feeInt, err := asBigInt(values[2])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("fee: %w", err)
	}
	fee, err := uint24FromBig(feeInt)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("fee: %w", err)
	}
	spacingInt, err := asBigInt(values[3])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("tick spacing: %w", err)
	}
	hooks, err := asAddress(values[4])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("hooks: %w", err)
	}
	return model.PoolKey{
		Currency0:   c0.Hex(),
		Currency1:   c1.Hex(),
		Fee:         fee,
		TickSpacing: spacing,
		Hooks:       hooks.Hex(),
	}, nil
}

// PoolManager reads the PoolManager address the module trades through.
func (m *Module) PoolManager(ctx context.Context, block uint64) (common.Address, error) {
	moduleABI, err := ArrakisModuleABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse module abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, moduleABI, "poolManager", BlockArg(block))
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

type rangeTuple struct {
	TickLower *big.Int `json:"tickLower"`
	TickUpper *big.Int `json:"tickUpper"`
}

// Ranges reads the module's active tick ranges.
func (m *Module) Ranges(ctx context.Context, block uint64) ([]model.TickRange, error) {
	moduleABI, err := ArrakisModuleABI()
	if err != nil {
		return nil, fmt.Errorf("parse module abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, moduleABI, "getRanges", BlockArg(block))
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected getRanges values: %d", len(values))
	}
	raw, ok := abi.ConvertType(values[0], new([]rangeTuple)).(*[]rangeTuple)
	if !ok || raw == nil {
		return nil, fmt.Errorf("unsupported getRanges type %T", values[0])
	}
	ranges := make([]model.TickRange, 0, len(*raw))
	for i, r := range *raw {
		lower, err := int24FromBig(r.TickLower)
		if err != nil {
			return nil, fmt.Errorf("range %d lower: %w", i, err)
		}
		upper, err := int24FromBig(r.TickUpper)
		if err != nil {
			return nil, fmt.Errorf("range %d upper: %w", i, err)
		}
		ranges = append(ranges, model.TickRange{TickLower: lower, TickUpper: upper})
	}
	return ranges, nil
}
