// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"os"
)

// ClientConfig is the client-side view of [StructuredConfig].
type ClientConfig struct {
	// App carries the integrity hash key and the log level.
	App App
	// Adapter holds the server address, token and retry policy.
	Adapter Adapter
	// Workers holds the file watcher settings.
	Workers Workers
	// Args are the command operands following the flags.
	Args []string
}

// GetClientConfig builds and validates the client configuration from the
// same sources as the server. When no device id is configured the host name
// is used.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags(args).
		withFile().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App:     cfg.App,
		Adapter: cfg.Adapter,
		Workers: cfg.Workers,
		Args:    cfg.Args,
	}

	if clientCfg.Adapter.DeviceID == "" {
		if host, err := os.Hostname(); err == nil {
			clientCfg.Adapter.DeviceID = host
		}
	}

	return clientCfg, clientCfg.validate()
}
