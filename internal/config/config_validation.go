// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the merged [StructuredConfig] can start a server.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" {
		return fmt.Errorf("%w: token sign key and issuer are required", ErrInvalidAppConfigs)
	}

	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		return fmt.Errorf("%w: no listen address", ErrInvalidServerConfigs)
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit", ErrInvalidServerConfigs)
	}

	switch cfg.Storage.BlobBackend {
	case BlobBackendSQL:
		if cfg.Storage.DB.DSN == "" {
			return fmt.Errorf("%w: sql blob backend needs a DSN", ErrInvalidStorageConfigs)
		}
	case BlobBackendFile:
		if cfg.Storage.Files.BinaryDataDir == "" {
			return fmt.Errorf("%w: file blob backend needs a directory", ErrInvalidStorageConfigs)
		}
	case BlobBackendMemory:
	default:
		return fmt.Errorf("%w: unknown blob backend %q", ErrInvalidStorageConfigs, cfg.Storage.BlobBackend)
	}

	if cfg.Storage.DB.DSN != "" && cfg.Storage.DB.Driver != DriverPostgres && cfg.Storage.DB.Driver != DriverSQLite {
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Sync.MaxPayloadBytes < 0 || cfg.Sync.HistoryRetention < 0 || cfg.Sync.PruneWorkers < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidSyncConfigs)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("%w: telemetry endpoint is required", ErrInvalidTelemetryConfigs)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Adapter.MaxRetries < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.WatchDebounce <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
