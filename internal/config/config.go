package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration
type Config struct {
	Token   TokenConfig   `yaml:"token"`
	Tax     TaxConfig     `yaml:"tax"`
	Limits  LimitsConfig  `yaml:"limits"`
	Wallets WalletsConfig `yaml:"wallets"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TokenConfig describes the token to mint at startup
type TokenConfig struct {
	Name          string `yaml:"name"`
	Symbol        string `yaml:"symbol"`
	Decimals      uint8  `yaml:"decimals"`
	InitialSupply uint64 `yaml:"initial_supply"` // whole tokens
}

// TaxConfig holds the initial tax schedule in integer percent
type TaxConfig struct {
	Buy      uint64 `yaml:"buy"`
	Sell     uint64 `yaml:"sell"`
	Transfer uint64 `yaml:"transfer"`
}

// LimitsConfig holds the initial caps as percent of initial supply
type LimitsConfig struct {
	MaxTxPercent     uint64 `yaml:"max_tx_percent"`
	MaxWalletPercent uint64 `yaml:"max_wallet_percent"`
}

// WalletsConfig holds the privileged addresses
type WalletsConfig struct {
	Owner     string `yaml:"owner"`
	Tax       string `yaml:"tax"`
	Liquidity string `yaml:"liquidity"`
}

// APIConfig defines API server configuration
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig defines receipt history storage
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"` // json or console
	Development bool   `yaml:"development"`
}

// Load reads and parses a YAML config file, applying defaults and
// validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyDefaults fills unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Token.Name == "" {
		c.Token.Name = "Sekisho"
	}
	if c.Token.Symbol == "" {
		c.Token.Symbol = "SKS"
	}
	if c.Token.Decimals == 0 {
		c.Token.Decimals = 18
	}
	if c.Token.InitialSupply == 0 {
		c.Token.InitialSupply = 1_000_000
	}

	if c.Tax.Buy == 0 && c.Tax.Sell == 0 && c.Tax.Transfer == 0 {
		c.Tax = TaxConfig{Buy: 3, Sell: 5, Transfer: 1}
	}
	if c.Limits.MaxTxPercent == 0 {
		c.Limits.MaxTxPercent = 1
	}
	if c.Limits.MaxWalletPercent == 0 {
		c.Limits.MaxWalletPercent = 2
	}

	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "sekisho.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.Wallets.Owner) {
		return fmt.Errorf("invalid owner wallet address: %q", c.Wallets.Owner)
	}
	if !common.IsHexAddress(c.Wallets.Tax) {
		return fmt.Errorf("invalid tax wallet address: %q", c.Wallets.Tax)
	}
	if !common.IsHexAddress(c.Wallets.Liquidity) {
		return fmt.Errorf("invalid liquidity wallet address: %q", c.Wallets.Liquidity)
	}
	if c.Limits.MaxTxPercent > 100 || c.Limits.MaxWalletPercent > 100 {
		return fmt.Errorf("limit percentages must not exceed 100")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log encoding: %q", c.Log.Encoding)
	}
	return nil
}

// OwnerAddress returns the parsed owner wallet address.
func (c *Config) OwnerAddress() common.Address { return common.HexToAddress(c.Wallets.Owner) }

// TaxAddress returns the parsed tax wallet address.
func (c *Config) TaxAddress() common.Address { return common.HexToAddress(c.Wallets.Tax) }

// LiquidityAddress returns the parsed liquidity wallet address.
func (c *Config) LiquidityAddress() common.Address { return common.HexToAddress(c.Wallets.Liquidity) }

// InitialSupplyBaseUnits returns the initial supply scaled by the
// token's decimals.
func (c *Config) InitialSupplyBaseUnits() *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(c.Token.Decimals)), nil)
	return new(big.Int).Mul(new(big.Int).SetUint64(c.Token.InitialSupply), scale)
}
