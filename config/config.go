package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// 1Click backend
	JWTToken    string
	BaseURL     string
	HTTPTimeout time.Duration

	// Swap engine
	OriginAsset       string
	OriginChain       string
	OriginDecimals    int
	DestinationChain  string
	Referral          string
	SlippageTolerance int
	DebounceDelay     time.Duration
	PollInterval      time.Duration
	PollTimeout       time.Duration

	// Wallets
	EVMRPCURL        string
	EVMPrivateKey    string
	EVMChainID       int64
	SolanaRPCURL     string
	SolanaPrivateKey string

	// Store
	StorePath string
	RedisAddr string
	RedisDB   int
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".nova-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://1click.chaindefuser.com")
	viper.SetDefault("http_timeout", "120s")
	viper.SetDefault("origin_asset", "nep141:wrap.near")
	viper.SetDefault("origin_chain", "near")
	viper.SetDefault("origin_decimals", 24)
	viper.SetDefault("destination_chain", "near")
	viper.SetDefault("referral", "nova")
	viper.SetDefault("slippage_tolerance", 100)
	viper.SetDefault("debounce_delay", "400ms")
	viper.SetDefault("poll_interval", "5s")
	viper.SetDefault("poll_timeout", "10m")
	viper.SetDefault("evm_chain_id", 1)

	// Read from environment variables
	viper.SetEnvPrefix("NOVA_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	// Create config struct
	cfg := &Config{
		JWTToken:    viper.GetString("jwt_token"),
		BaseURL:     viper.GetString("base_url"),
		HTTPTimeout: viper.GetDuration("http_timeout"),

		OriginAsset:       viper.GetString("origin_asset"),
		OriginChain:       viper.GetString("origin_chain"),
		OriginDecimals:    viper.GetInt("origin_decimals"),
		DestinationChain:  viper.GetString("destination_chain"),
		Referral:          viper.GetString("referral"),
		SlippageTolerance: viper.GetInt("slippage_tolerance"),
		DebounceDelay:     viper.GetDuration("debounce_delay"),
		PollInterval:      viper.GetDuration("poll_interval"),
		PollTimeout:       viper.GetDuration("poll_timeout"),

		EVMRPCURL:        viper.GetString("evm_rpc_url"),
		EVMPrivateKey:    viper.GetString("evm_private_key"),
		EVMChainID:       viper.GetInt64("evm_chain_id"),
		SolanaRPCURL:     viper.GetString("solana_rpc_url"),
		SolanaPrivateKey: viper.GetString("solana_private_key"),

		StorePath: viper.GetString("store_path"),
		RedisAddr: viper.GetString("redis_addr"),
		RedisDB:   viper.GetInt("redis_db"),
	}

	// Validate JWT token
	if cfg.JWTToken == "" {
		return nil, fmt.Errorf("JWT token not found. Please set NOVA_SWAP_JWT_TOKEN environment variable or create a .nova-swap.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
