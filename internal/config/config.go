// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	Commitment     string        `mapstructure:"commitment"`
	BatchSize      int           `mapstructure:"batch_size"`
	Concurrency    int           `mapstructure:"concurrency"`
	Retries        int           `mapstructure:"retries"`
	RequestTimeout int           `mapstructure:"request_timeout"` // milliseconds
	KeypairPath    string        `mapstructure:"keypair_path"`
	PrivateKey     string        `mapstructure:"private_key"`
	SlippageBps    int           `mapstructure:"slippage_bps"`
	Saber          SaberConfig   `mapstructure:"saber"`
	Raydium        RaydiumConfig `mapstructure:"raydium"`
	Log            LogConfig     `mapstructure:"log"`
}

type SaberConfig struct {
	Rewarder        string   `mapstructure:"rewarder"`
	AdminFilter     bool     `mapstructure:"admin_filter"`
	DeprecatedPools []string `mapstructure:"deprecated_pools"`
}

type RaydiumConfig struct {
	SBRAmm    string `mapstructure:"sbr_amm"`
	PoolsFile string `mapstructure:"pools_file"` // JSON pool list, needed for v3 liquidity
}

type LogConfig struct {
	File        string `mapstructure:"file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxBackups  int    `mapstructure:"max_backups"`
	Compress    bool   `mapstructure:"compress"`
	Development bool   `mapstructure:"development"`
}

const (
	DefaultRPCURL         = "https://api.mainnet-beta.solana.com"
	DefaultCommitment     = "confirmed"
	DefaultBatchSize      = 96
	DefaultConcurrency    = 4
	DefaultRetries        = 3
	DefaultRequestTimeout = 15000
	DefaultSlippageBps    = 50
	DefaultLogFile        = "ammkit.log"
)

// maxBatchSize is the getMultipleAccounts limit of public nodes.
const maxBatchSize = 100

var commitments = map[string]bool{
	"processed": true,
	"confirmed": true,
	"finalized": true,
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return finish(v)
}

// Default builds a configuration from defaults and the environment alone,
// for running without a config file.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	return finish(v)
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"rpc_url":         DefaultRPCURL,
		"commitment":      DefaultCommitment,
		"batch_size":      DefaultBatchSize,
		"concurrency":     DefaultConcurrency,
		"retries":         DefaultRetries,
		"request_timeout": DefaultRequestTimeout,
		"slippage_bps":    DefaultSlippageBps,
		"log.file":        DefaultLogFile,
		"log.max_size":    100,
		"log.max_age":     7,
		"log.max_backups": 3,
		"log.compress":    true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// RequestTimeoutDuration converts RequestTimeout to a duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// RewarderKey returns the configured Saber rewarder, or ok=false when unset.
func (c *Config) RewarderKey() (key solana.PublicKey, ok bool, err error) {
	if c.Saber.Rewarder == "" {
		return solana.PublicKey{}, false, nil
	}
	key, err = solana.PublicKeyFromBase58(c.Saber.Rewarder)
	return key, err == nil, err
}

// DeprecatedPoolKeys parses saber.deprecated_pools.
func (c *Config) DeprecatedPoolKeys() ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(c.Saber.DeprecatedPools))
	for _, s := range c.Saber.DeprecatedPools {
		key, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("invalid deprecated pool %q: %w", s, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SBRAmmKey returns the configured SBR pool, or ok=false when unset.
func (c *Config) SBRAmmKey() (key solana.PublicKey, ok bool, err error) {
	if c.Raydium.SBRAmm == "" {
		return solana.PublicKey{}, false, nil
	}
	key, err = solana.PublicKeyFromBase58(c.Raydium.SBRAmm)
	return key, err == nil, err
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if !commitments[cfg.Commitment] {
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if _, _, err := cfg.RewarderKey(); err != nil {
		return errors.New("invalid saber.rewarder")
	}
	if _, err := cfg.DeprecatedPoolKeys(); err != nil {
		return err
	}
	if _, _, err := cfg.SBRAmmKey(); err != nil {
		return errors.New("invalid raydium.sbr_amm")
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.BatchSize <= 0 || cfg.BatchSize > maxBatchSize {
		return errors.New("invalid batch_size")
	}
	if cfg.Concurrency <= 0 {
		return errors.New("invalid concurrency")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.SlippageBps < 0 || cfg.SlippageBps > 10_000 {
		return errors.New("invalid slippage_bps")
	}
	if cfg.Log.MaxSize < 0 || cfg.Log.MaxAge < 0 || cfg.Log.MaxBackups < 0 {
		return errors.New("invalid log rotation settings")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("AMMKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envRPC := v.GetString("RPC_URL"); envRPC != "" {
		cfg.RPCURL = strings.TrimSpace(envRPC)
	}
	if envKey := v.GetString("PRIVATE_KEY"); envKey != "" {
		cfg.PrivateKey = envKey
	}
	if envPath := v.GetString("KEYPAIR_PATH"); envPath != "" {
		cfg.KeypairPath = envPath
	}
	if envCommitment := v.GetString("COMMITMENT"); envCommitment != "" {
		cfg.Commitment = strings.ToLower(envCommitment)
	}

	envDeprecated := v.GetString("SABER_DEPRECATED_POOLS")
	if envDeprecated != "" {
		var pools []string
		for _, p := range strings.Split(envDeprecated, ",") {
			clean := strings.TrimSpace(p)
			if clean != "" {
				pools = append(pools, clean)
			}
		}
		if len(pools) > 0 {
			cfg.Saber.DeprecatedPools = pools
		}
	}
	return nil
}
