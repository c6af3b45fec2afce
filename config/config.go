// Package config loads the service configuration from the
// environment, with defaults suitable for the public devnet.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Environment variable names.
var (
	RPCURL             = "SOLANA_RPC_URL"
	WalletPath         = "WALLET_PATH"
	Port               = "PORT"
	Cluster            = "SOLANA_CLUSTER"
	SubmitTimeout      = "SUBMIT_TIMEOUT"
	ConfirmTimeout     = "CONFIRM_TIMEOUT"
	MaxBuildAttempts   = "MAX_BUILD_ATTEMPTS"
	MinBalanceLamports = "MIN_BALANCE_LAMPORTS"
	LogLevel           = "LOG_LEVEL"

	defaultRPCURL             = "https://api.devnet.solana.com"
	defaultWalletPath         = "devnet-wallet.json"
	defaultPort               = 3001
	defaultCluster            = "devnet"
	defaultSubmitTimeout      = 15 * time.Second
	defaultConfirmTimeout     = 60 * time.Second
	defaultMaxBuildAttempts   = 3
	defaultMinBalanceLamports = 0
	defaultLogLevel           = "info"
)

// Config is the full configuration surface of the mint service.
type Config struct {
	RPCURL             string
	WalletPath         string
	Port               int
	Cluster            string
	SubmitTimeout      time.Duration
	ConfirmTimeout     time.Duration
	MaxBuildAttempts   int
	MinBalanceLamports uint64
	LogLevel           string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	viper.SetDefault(RPCURL, defaultRPCURL)
	viper.SetDefault(WalletPath, defaultWalletPath)
	viper.SetDefault(Port, defaultPort)
	viper.SetDefault(Cluster, defaultCluster)
	viper.SetDefault(SubmitTimeout, defaultSubmitTimeout)
	viper.SetDefault(ConfirmTimeout, defaultConfirmTimeout)
	viper.SetDefault(MaxBuildAttempts, defaultMaxBuildAttempts)
	viper.SetDefault(MinBalanceLamports, defaultMinBalanceLamports)
	viper.SetDefault(LogLevel, defaultLogLevel)

	viper.AutomaticEnv()

	cfg := &Config{
		RPCURL:             viper.GetString(RPCURL),
		WalletPath:         viper.GetString(WalletPath),
		Port:               viper.GetInt(Port),
		Cluster:            viper.GetString(Cluster),
		SubmitTimeout:      viper.GetDuration(SubmitTimeout),
		ConfirmTimeout:     viper.GetDuration(ConfirmTimeout),
		MaxBuildAttempts:   viper.GetInt(MaxBuildAttempts),
		MinBalanceLamports: viper.GetUint64(MinBalanceLamports),
		LogLevel:           viper.GetString(LogLevel),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%s must not be empty", RPCURL)
	}
	if cfg.Cluster == "" {
		return nil, fmt.Errorf("%s must not be empty", Cluster)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%s out of range: %d", Port, cfg.Port)
	}
	if cfg.MaxBuildAttempts <= 0 {
		return nil, fmt.Errorf("%s must be positive", MaxBuildAttempts)
	}
	return cfg, nil
}
