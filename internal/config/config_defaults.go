// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Defaults applied to fields left empty by every configuration source.
const (
	DefaultMaxPayloadBytes  = 5 * 1024 * 1024
	DefaultHistoryRetention = 10
	DefaultPruneWorkers     = 4
	DefaultTokenDuration    = 24 * time.Hour
	DefaultRequestTimeout   = 30 * time.Second
	DefaultTelemetryEvery   = 30 * time.Second
	DefaultRateBurst        = 20
	DefaultAdapterRetries   = 3
	DefaultWatchDebounce    = 500 * time.Millisecond
	DefaultCORSOrigin       = "*"
	DefaultVersion          = "dev"
)

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = DefaultTokenDuration
	}
	if cfg.App.Version == "" {
		cfg.App.Version = DefaultVersion
	}

	if cfg.Storage.BlobBackend == "" {
		switch {
		case cfg.Storage.DB.DSN != "":
			cfg.Storage.BlobBackend = BlobBackendSQL
		case cfg.Storage.Files.BinaryDataDir != "":
			cfg.Storage.BlobBackend = BlobBackendFile
		default:
			cfg.Storage.BlobBackend = BlobBackendMemory
		}
	}
	if cfg.Storage.DB.DSN != "" && cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = DriverPostgres
	}

	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = DefaultCORSOrigin
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}

	if cfg.Sync.MaxPayloadBytes == 0 {
		cfg.Sync.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if cfg.Sync.HistoryRetention == 0 {
		cfg.Sync.HistoryRetention = DefaultHistoryRetention
	}
	if cfg.Sync.PruneWorkers == 0 {
		cfg.Sync.PruneWorkers = DefaultPruneWorkers
	}

	if cfg.Telemetry.Interval == 0 {
		cfg.Telemetry.Interval = DefaultTelemetryEvery
	}

	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Adapter.MaxRetries == 0 {
		cfg.Adapter.MaxRetries = DefaultAdapterRetries
	}

	if cfg.Workers.WatchDebounce == 0 {
		cfg.Workers.WatchDebounce = DefaultWatchDebounce
	}
}
