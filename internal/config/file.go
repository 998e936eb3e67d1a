// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a config file. The same tags serve
// JSON and YAML documents.
type fileConfig struct {
	App struct {
		TokenSignKey        string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer         string   `json:"token_issuer" yaml:"token_issuer"`
		TokenDuration       Duration `json:"token_duration" yaml:"token_duration"`
		HashKey             string   `json:"hash_key" yaml:"hash_key"`
		Version             string   `json:"version" yaml:"version"`
		DefaultEntitlements []string `json:"default_entitlements" yaml:"default_entitlements"`
		LogLevel            string   `json:"log_level" yaml:"log_level"`
	} `json:"app" yaml:"app"`

	Storage struct {
		DB struct {
			DSN    string `json:"dsn" yaml:"dsn"`
			Driver string `json:"driver" yaml:"driver"`
		} `json:"db" yaml:"db"`

		Files struct {
			BinaryDataDir string `json:"binary_data_dir" yaml:"binary_data_dir"`
		} `json:"files" yaml:"files"`

		BlobBackend string `json:"blob_backend" yaml:"blob_backend"`
	} `json:"storage" yaml:"storage"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		CORSOrigin     string   `json:"cors_origin" yaml:"cors_origin"`
		RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"`
		RateBurst      int      `json:"rate_burst" yaml:"rate_burst"`
	} `json:"server" yaml:"server"`

	Sync struct {
		MaxPayloadBytes  int64  `json:"max_payload_bytes" yaml:"max_payload_bytes"`
		HistoryRetention int    `json:"history_retention" yaml:"history_retention"`
		PruneWorkers     int    `json:"prune_workers" yaml:"prune_workers"`
		SchemaDir        string `json:"schema_dir" yaml:"schema_dir"`
	} `json:"sync" yaml:"sync"`

	Telemetry struct {
		Enabled  bool     `json:"enabled" yaml:"enabled"`
		Endpoint string   `json:"endpoint" yaml:"endpoint"`
		Insecure bool     `json:"insecure" yaml:"insecure"`
		Interval Duration `json:"interval" yaml:"interval"`
	} `json:"telemetry" yaml:"telemetry"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		Token          string   `json:"token" yaml:"token"`
		MaxRetries     int      `json:"max_retries" yaml:"max_retries"`
		DeviceID       string   `json:"device_id" yaml:"device_id"`
	} `json:"adapter" yaml:"adapter"`

	Workers struct {
		WatchDebounce Duration `json:"watch_debounce" yaml:"watch_debounce"`
	} `json:"workers" yaml:"workers"`
}

// parseFile reads a config file. Files ending in ".yaml" or ".yml" are
// decoded as YAML, anything else as JSON.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:        fc.App.TokenSignKey,
			TokenIssuer:         fc.App.TokenIssuer,
			TokenDuration:       time.Duration(fc.App.TokenDuration),
			HashKey:             fc.App.HashKey,
			Version:             fc.App.Version,
			DefaultEntitlements: fc.App.DefaultEntitlements,
			LogLevel:            fc.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{
				DSN:    fc.Storage.DB.DSN,
				Driver: fc.Storage.DB.Driver,
			},
			Files: Files{
				BinaryDataDir: fc.Storage.Files.BinaryDataDir,
			},
			BlobBackend: fc.Storage.BlobBackend,
		},
		Server: Server{
			HTTPAddress:    fc.Server.HTTPAddress,
			GRPCAddress:    fc.Server.GRPCAddress,
			RequestTimeout: time.Duration(fc.Server.RequestTimeout),
			CORSOrigin:     fc.Server.CORSOrigin,
			RateLimit:      fc.Server.RateLimit,
			RateBurst:      fc.Server.RateBurst,
		},
		Sync: Sync{
			MaxPayloadBytes:  fc.Sync.MaxPayloadBytes,
			HistoryRetention: fc.Sync.HistoryRetention,
			PruneWorkers:     fc.Sync.PruneWorkers,
			SchemaDir:        fc.Sync.SchemaDir,
		},
		Telemetry: Telemetry{
			Enabled:  fc.Telemetry.Enabled,
			Endpoint: fc.Telemetry.Endpoint,
			Insecure: fc.Telemetry.Insecure,
			Interval: time.Duration(fc.Telemetry.Interval),
		},
		Adapter: Adapter{
			HTTPAddress:    fc.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
			Token:          fc.Adapter.Token,
			MaxRetries:     fc.Adapter.MaxRetries,
			DeviceID:       fc.Adapter.DeviceID,
		},
		Workers: Workers{
			WatchDebounce: time.Duration(fc.Workers.WatchDebounce),
		},
	}
}

// Duration is a wrapper around time.Duration that decodes from strings such
// as "1h" or "30s" as well as from integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	parsed, err := parseDurationValue(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}

	parsed, err := parseDurationValue(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func parseDurationValue(v any) (Duration, error) {
	switch value := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return Duration(time.Duration(value)), nil
	case int:
		return Duration(time.Duration(value)), nil
	case string:
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, err
		}
		return Duration(d), nil
	default:
		return 0, fmt.Errorf("invalid duration %v", v)
	}
}
