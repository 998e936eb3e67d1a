// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that an empty builder yields the defaults.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultMaxPayloadBytes), cfg.Sync.MaxPayloadBytes)
	assert.Equal(t, DefaultHistoryRetention, cfg.Sync.HistoryRetention)
	assert.Equal(t, BlobBackendMemory, cfg.Storage.BlobBackend)
	assert.Equal(t, DefaultTokenDuration, cfg.App.TokenDuration)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_FirstSourceWins verifies merge priority: a field set by an earlier
// source is not overridden by a later one.
func TestBuild_FirstSourceWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "env"}},
		&StructuredConfig{App: App{Version: "file", TokenIssuer: "issuer"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.App.Version)
	assert.Equal(t, "issuer", cfg.App.TokenIssuer)
}

func TestBuild_BackendInferredFromStorage(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Storage: Storage{DB: DB{DSN: "postgres://x"}}})

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, BlobBackendSQL, cfg.Storage.BlobBackend)
	assert.Equal(t, DriverPostgres, cfg.Storage.DB.Driver)

	b = newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Storage: Storage{Files: Files{BinaryDataDir: "/data"}}})

	cfg, err = b.build()
	require.NoError(t, err)
	assert.Equal(t, BlobBackendFile, cfg.Storage.BlobBackend)
}

// ── withEnv / withFlags ───────────────────────────────────────────────────────

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("APP_VERSION", "env-version")
	t.Setenv("SYNC_HISTORY_RETENTION", "3")

	b := newConfigBuilder().withEnv()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-version", b.configs[0].App.Version)
	assert.Equal(t, 3, b.configs[0].Sync.HistoryRetention)
}

func TestWithEnv_SetsErrorOnBadValue(t *testing.T) {
	t.Setenv("SYNC_HISTORY_RETENTION", "many")

	b := newConfigBuilder().withEnv()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

func TestWithFlags_AppendsParsedFlags(t *testing.T) {
	b := newConfigBuilder().withFlags([]string{"-retention", "5"})

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, 5, b.configs[0].Sync.HistoryRetention)
}

func TestWithFlags_SetsErrorOnUnknownFlag(t *testing.T) {
	b := newConfigBuilder().withFlags([]string{"-nope"})
	assert.Error(t, b.err)
}

// ── withFile ──────────────────────────────────────────────────────────────────

func TestWithFile_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withFile()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithFile_AppendsConfig(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{"app":{"version":"file-version"}}`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{ConfigFilePath: path})
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "file-version", b.configs[1].App.Version)
}

func TestWithFile_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{ConfigFilePath: "/nonexistent/config.json"})
	b.withFile()

	assert.Error(t, b.err)
}

// ── GetStructuredConfig ───────────────────────────────────────────────────────

func TestGetStructuredConfig_EnvFlagsAndFile(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
app:
  token_issuer: from-file
  token_duration: 2h
server:
  grpc_address: "127.0.0.1:9090"
`)
	t.Setenv("APP_TOKEN_SIGN_KEY", "secret")
	t.Setenv("APP_TOKEN_ISSUER", "from-env")

	cfg, err := GetStructuredConfig([]string{"-a", "localhost:8080", "-c", path})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.App.TokenIssuer)
	assert.Equal(t, 2*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.GRPCAddress)
}

func TestGetStructuredConfig_InvalidFails(t *testing.T) {
	_, err := GetStructuredConfig([]string{"-a", "localhost:8080"})
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

func TestGetClientConfig_UsesAdapterSettings(t *testing.T) {
	t.Setenv("ADAPTER_ADDRESS", "http://localhost:8080")

	cfg, err := GetClientConfig([]string{"-device", "laptop", "-token", "abc", "notes"})
	require.NoError(t, err)

	assert.Equal(t, []string{"notes"}, cfg.Args)

	assert.Equal(t, "http://localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "laptop", cfg.Adapter.DeviceID)
	assert.Equal(t, "abc", cfg.Adapter.Token)
	assert.Equal(t, DefaultAdapterRetries, cfg.Adapter.MaxRetries)
}

func TestGetClientConfig_RequiresAddress(t *testing.T) {
	_, err := GetClientConfig(nil)
	assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
}
