package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultRPCURL, cfg.RPCURL)
	assert.Equal(t, defaultWalletPath, cfg.WalletPath)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultCluster, cfg.Cluster)
	assert.Equal(t, defaultSubmitTimeout, cfg.SubmitTimeout)
	assert.Equal(t, defaultConfirmTimeout, cfg.ConfirmTimeout)
	assert.Equal(t, defaultMaxBuildAttempts, cfg.MaxBuildAttempts)
	assert.EqualValues(t, defaultMinBalanceLamports, cfg.MinBalanceLamports)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(RPCURL, "http://localhost:8899")
	t.Setenv(Port, "8080")
	t.Setenv(SubmitTimeout, "5s")
	t.Setenv(MaxBuildAttempts, "5")
	t.Setenv(MinBalanceLamports, "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.RPCURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "5s", cfg.SubmitTimeout.String())
	assert.Equal(t, 5, cfg.MaxBuildAttempts)
	assert.EqualValues(t, 5000, cfg.MinBalanceLamports)
	// untouched keys keep their defaults
	assert.Equal(t, defaultCluster, cfg.Cluster)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: Port, value: "70000"},
		{name: "negative port", key: Port, value: "-1"},
		{name: "zero build attempts", key: MaxBuildAttempts, value: "0"},
		{name: "negative build attempts", key: MaxBuildAttempts, value: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
