// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), config.Telemetry{}, "test", logger.Nop())
	require.NoError(t, err)

	assert.IsType(t, noop.MeterProvider{}, p.meterProvider)
	assert.NotNil(t, p.Meter("sync"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_Enabled(t *testing.T) {
	cfg := config.Telemetry{
		Enabled:  true,
		Endpoint: "http://127.0.0.1:4318",
		Insecure: true,
		Interval: time.Hour,
	}

	p, err := NewProvider(context.Background(), cfg, "test", logger.Nop())
	require.NoError(t, err)

	assert.IsType(t, &sdkmetric.MeterProvider{}, p.meterProvider)

	counter, err := p.Meter("sync").Int64Counter("test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	// no collector is listening, so only make sure shutdown returns
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = p.Shutdown(ctx)
}

func TestStripScheme(t *testing.T) {
	tests := map[string]string{
		"collector:4318":         "collector:4318",
		"http://collector:4318":  "collector:4318",
		"https://collector:4318": "collector:4318",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripScheme(in), in)
	}
}
