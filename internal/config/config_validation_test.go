// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validServerConfig() *StructuredConfig {
	cfg := &StructuredConfig{
		App:    App{TokenSignKey: "key", TokenIssuer: "issuer"},
		Server: Server{HTTPAddress: "localhost:8080"},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(cfg *StructuredConfig) {}},
		{name: "no sign key", mutate: func(cfg *StructuredConfig) { cfg.App.TokenSignKey = "" }, wantErr: ErrInvalidAppConfigs},
		{name: "no listener", mutate: func(cfg *StructuredConfig) { cfg.Server.HTTPAddress = "" }, wantErr: ErrInvalidServerConfigs},
		{name: "sql without dsn", mutate: func(cfg *StructuredConfig) { cfg.Storage.BlobBackend = BlobBackendSQL }, wantErr: ErrInvalidStorageConfigs},
		{name: "file without dir", mutate: func(cfg *StructuredConfig) { cfg.Storage.BlobBackend = BlobBackendFile }, wantErr: ErrInvalidStorageConfigs},
		{name: "unknown backend", mutate: func(cfg *StructuredConfig) { cfg.Storage.BlobBackend = "s3" }, wantErr: ErrInvalidStorageConfigs},
		{name: "unknown driver", mutate: func(cfg *StructuredConfig) {
			cfg.Storage.DB = DB{DSN: "x", Driver: "mysql"}
		}, wantErr: ErrInvalidStorageConfigs},
		{name: "negative retention", mutate: func(cfg *StructuredConfig) { cfg.Sync.HistoryRetention = -1 }, wantErr: ErrInvalidSyncConfigs},
		{name: "telemetry without endpoint", mutate: func(cfg *StructuredConfig) { cfg.Telemetry.Enabled = true }, wantErr: ErrInvalidTelemetryConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validServerConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
