// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/raydium-listener/internal/dex/raydium"
)

type Config struct {
	RPCEndpoint              string `mapstructure:"rpc_endpoint"`
	RPCWebsocketEndpoint     string `mapstructure:"rpc_websocket_endpoint"`
	CommitmentLevel          string `mapstructure:"commitment_level"`
	QuoteMint                string `mapstructure:"quote_mint"`
	UseSnipeList             bool   `mapstructure:"use_snipe_list"`
	SnipeListPath            string `mapstructure:"snipe_list_path"`
	SnipeListRefreshInterval int    `mapstructure:"snipe_list_refresh_interval"`
	CheckIfMintIsRenounced   bool   `mapstructure:"check_if_mint_is_renounced"`
	DebugLogging             bool   `mapstructure:"debug_logging"`
	LogFile                  string `mapstructure:"log_file"`
	MetricsAddr              string `mapstructure:"metrics_addr"`
	License                  string `mapstructure:"license"`
	KeygenAccountID          string `mapstructure:"keygen_account_id"`
	KeygenProductID          string `mapstructure:"keygen_product_id"`
	KeygenProductToken       string `mapstructure:"keygen_product_token"`
}

const (
	DefaultRPCEndpoint              = "https://api.mainnet-beta.solana.com"
	DefaultRPCWebsocketEndpoint     = "wss://api.mainnet-beta.solana.com"
	DefaultCommitmentLevel          = "confirmed"
	DefaultQuoteMint                = "WSOL"
	DefaultSnipeListRefreshInterval = 30000
)

// LoadConfig reads the optional config file at path and overlays environment variables.
// An empty path uses the environment and defaults only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_endpoint":                DefaultRPCEndpoint,
		"rpc_websocket_endpoint":      DefaultRPCWebsocketEndpoint,
		"commitment_level":            DefaultCommitmentLevel,
		"quote_mint":                  DefaultQuoteMint,
		"use_snipe_list":              false,
		"snipe_list_path":             "",
		"snipe_list_refresh_interval": DefaultSnipeListRefreshInterval,
		"check_if_mint_is_renounced":  false,
		"debug_logging":               false,
		"log_file":                    "",
		"metrics_addr":                "",
		"license":                     "",
		"keygen_account_id":           "",
		"keygen_product_id":           "",
		"keygen_product_token":        "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.CommitmentLevel = strings.ToLower(strings.TrimSpace(cfg.CommitmentLevel))
	cfg.QuoteMint = strings.ToUpper(strings.TrimSpace(cfg.QuoteMint))

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if err := validateURL(cfg.RPCEndpoint, "http"); err != nil {
		return fmt.Errorf("invalid rpc_endpoint: %w", err)
	}
	if err := validateURL(cfg.RPCWebsocketEndpoint, "ws"); err != nil {
		return fmt.Errorf("invalid rpc_websocket_endpoint: %w", err)
	}
	switch rpc.CommitmentType(cfg.CommitmentLevel) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment_level %q", cfg.CommitmentLevel)
	}
	if _, ok := raydium.QuoteMintBySymbol(cfg.QuoteMint); !ok {
		return fmt.Errorf("unsupported quote_mint %q", cfg.QuoteMint)
	}
	if cfg.UseSnipeList && cfg.SnipeListRefreshInterval <= 0 {
		return errors.New("invalid snipe_list_refresh_interval")
	}
	if cfg.License != "" && (cfg.KeygenAccountID == "" || cfg.KeygenProductID == "") {
		return errors.New("license requires keygen_account_id and keygen_product_id")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// Commitment returns the validated commitment level.
func (c *Config) Commitment() rpc.CommitmentType {
	return rpc.CommitmentType(c.CommitmentLevel)
}

// QuoteMintKey resolves QuoteMint to its mint address.
func (c *Config) QuoteMintKey() solana.PublicKey {
	key, _ := raydium.QuoteMintBySymbol(c.QuoteMint)
	return key
}

// RefreshInterval converts SnipeListRefreshInterval from milliseconds.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.SnipeListRefreshInterval) * time.Millisecond
}

// LicenseEnabled reports whether a Keygen license check should run at startup.
func (c *Config) LicenseEnabled() bool {
	return c.License != ""
}
