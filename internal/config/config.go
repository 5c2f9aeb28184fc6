package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Mainnet defaults for the analysed contracts.
const (
	DefaultPair        = "0xC09bf2B1Bc8725903C509e8CAeef9190857215A8"
	DefaultVault       = "0x90bdE935Ce7FEB6636aFD5A1A0340af45EEAe600"
	DefaultQuoter      = "0x52F0E24D1c21C8A0cB1e5a5dD6198556BD9E1203"
	DefaultV3Factory   = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	DefaultWETH        = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultUSDC        = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	DefaultPoolManager = "0x000000000004444c5dc75cB358380D2e3dE08A90"
)

// Addresses are the contracts the pipeline reads.
type Addresses struct {
	Pair        string
	Vault       string
	Quoter      string
	V3Factory   string
	WETH        string
	USDC        string
	PoolManager string
}

// RPCConfig tunes request pacing and retries.
type RPCConfig struct {
	RequestInterval time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
}

// LocateConfig drives the migration-block locator.
type LocateConfig struct {
	FromBlock     uint64
	ToBlock       uint64
	Lookback      uint64
	BatchSize     uint64
	MinSplit      uint64
	DropThreshold float64
	ConfirmWindow uint64
	BinInterval   time.Duration
	PoolID        string
}

// SlippageConfig drives both slippage samplers.
type SlippageConfig struct {
	Sizes     []float64
	MaxPoints int
	Stride    uint64
	V3Fee     uint32
}

// Config holds configuration values loaded from flags, env, .env, or config file.
type Config struct {
	RPCURL        string
	ChainID       uint64
	Root          string
	LogLevel      string
	MetadataBlock uint64
	Addresses     Addresses
	RPC           RPCConfig
	Locate        LocateConfig
	Slippage      SlippageConfig
	BinWidth      int
	VaultStride   uint64
}

// ExportConfig holds configuration for the Postgres export.
type ExportConfig struct {
	Root      string
	Vault     string
	PGDSN     string
	BatchSize int
	LogLevel  string
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("chain-id", uint64(1))
		v.SetDefault("root", ".")
		v.SetDefault("log-level", "info")

		v.SetDefault("pair", DefaultPair)
		v.SetDefault("vault", DefaultVault)
		v.SetDefault("quoter", DefaultQuoter)
		v.SetDefault("v3-factory", DefaultV3Factory)
		v.SetDefault("weth", DefaultWETH)
		v.SetDefault("usdc", DefaultUSDC)
		v.SetDefault("pool-manager", DefaultPoolManager)

		v.SetDefault("request-interval", 250*time.Millisecond)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)

		v.SetDefault("lookback", uint64(2_000_000))
		v.SetDefault("batch-size", uint64(2000))
		v.SetDefault("min-split", uint64(20))
		v.SetDefault("drop-threshold", 0.5)
		v.SetDefault("confirm-window", uint64(2000))
		v.SetDefault("bin-interval", 30*time.Minute)

		v.SetDefault("sizes", "1000,5000,10000,50000")
		v.SetDefault("max-points", 800)
		v.SetDefault("post-stride", uint64(300))
		v.SetDefault("v3-fee", uint32(500))

		v.SetDefault("vault-stride", uint64(600))
	})
	if err != nil {
		return Config{}, err
	}

	sizes, err := parseFloats(getStringSlice(v, "sizes"))
	if err != nil {
		return Config{}, fmt.Errorf("parse sizes: %w", err)
	}

	cfg := Config{
		RPCURL:        strings.TrimSpace(v.GetString("rpc")),
		ChainID:       v.GetUint64("chain-id"),
		Root:          v.GetString("root"),
		LogLevel:      v.GetString("log-level"),
		MetadataBlock: v.GetUint64("block"),
		Addresses: Addresses{
			Pair:        v.GetString("pair"),
			Vault:       v.GetString("vault"),
			Quoter:      v.GetString("quoter"),
			V3Factory:   v.GetString("v3-factory"),
			WETH:        v.GetString("weth"),
			USDC:        v.GetString("usdc"),
			PoolManager: v.GetString("pool-manager"),
		},
		RPC: RPCConfig{
			RequestInterval: v.GetDuration("request-interval"),
			MaxRetries:      v.GetInt("max-retries"),
			RetryBackoff:    v.GetDuration("retry-backoff"),
		},
		Locate: LocateConfig{
			FromBlock:     v.GetUint64("from"),
			ToBlock:       v.GetUint64("to"),
			Lookback:      v.GetUint64("lookback"),
			BatchSize:     v.GetUint64("batch-size"),
			MinSplit:      v.GetUint64("min-split"),
			DropThreshold: v.GetFloat64("drop-threshold"),
			ConfirmWindow: v.GetUint64("confirm-window"),
			BinInterval:   v.GetDuration("bin-interval"),
			PoolID:        v.GetString("pool-id"),
		},
		Slippage: SlippageConfig{
			Sizes:     sizes,
			MaxPoints: v.GetInt("max-points"),
			Stride:    v.GetUint64("post-stride"),
			V3Fee:     v.GetUint32("v3-fee"),
		},
		BinWidth:    v.GetInt("bin-width"),
		VaultStride: v.GetUint64("vault-stride"),
	}

	return cfg, nil
}

// LoadExport merges .env, config file, environment variables, and flags into ExportConfig.
func LoadExport(cfgFile string, flags *pflag.FlagSet) (ExportConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("root", ".")
		v.SetDefault("vault", DefaultVault)
		v.SetDefault("batch-size", 1000)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return ExportConfig{}, err
	}

	cfg := ExportConfig{
		Root:      v.GetString("root"),
		Vault:     v.GetString("vault"),
		PGDSN:     v.GetString("pg-dsn"),
		BatchSize: v.GetInt("batch-size"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("rpc", "ANALYZER_RPC", "RPC_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("pg-dsn", "ANALYZER_PG_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		if len(typed) == 1 {
			return splitAndClean(typed[0])
		}
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseFloats(items []string) ([]float64, error) {
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, err
		}
		if f <= 0 {
			return nil, fmt.Errorf("size must be positive: %s", item)
		}
		out = append(out, f)
	}
	return out, nil
}
