// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/mock"
	"github.com/MKhiriev/go-sync-keeper/models"
)

func newMeteredSyncService(t *testing.T) (SyncService, *mock.MockSyncService, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	inner := mock.NewMockSyncService(gomock.NewController(t))
	wrapped := NewSyncMetricsService(provider.Meter("test"), logger.Nop()).Wrap(inner)
	return wrapped, inner, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func counterValue(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected aggregation %T", m.Data)

	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestSyncMetricsService_RecordsOutcomes(t *testing.T) {
	svc, inner, reader := newMeteredSyncService(t)
	ctx := context.Background()
	req := models.PushRequest{Data: json.RawMessage(`{"a":1}`), DeviceID: "d"}

	inner.EXPECT().Push(ctx, alice, testApp, req).Return(models.PushResult{Version: 1}, nil)
	inner.EXPECT().Push(ctx, alice, testApp, req).Return(models.PushResult{}, &ConflictError{LocalVersion: 1, ServerVersion: 2})
	inner.EXPECT().Pull(ctx, alice, testApp, "").Return(models.PullResult{}, ErrNoData)
	inner.EXPECT().Meta(ctx, alice, "../x").Return(models.MetaResult{}, ErrInvalidApp)
	inner.EXPECT().Purge(ctx, alice, testApp).Return(models.PurgeResult{Deleted: 3}, nil)

	res, err := svc.Push(ctx, alice, testApp, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Version, "results pass through untouched")

	_, err = svc.Push(ctx, alice, testApp, req)
	assert.Equal(t, CodeConflict, ErrorCode(err))

	_, err = svc.Pull(ctx, alice, testApp, "")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = svc.Meta(ctx, alice, "../x")
	assert.ErrorIs(t, err, ErrInvalidApp)

	purged, err := svc.Purge(ctx, alice, testApp)
	require.NoError(t, err)
	assert.Equal(t, 3, purged.Deleted)

	metrics := collect(t, reader)
	ops := metrics["sync.operations"]

	attrs := func(op, code, app string) []attribute.KeyValue {
		return []attribute.KeyValue{
			attribute.String("operation", op),
			attribute.String("code", code),
			attribute.String("app_id", app),
		}
	}
	assert.Equal(t, int64(1), counterValue(t, ops, attrs(operationPush, CodeOK, testApp)...))
	assert.Equal(t, int64(1), counterValue(t, ops, attrs(operationPush, CodeConflict, testApp)...))
	assert.Equal(t, int64(1), counterValue(t, ops, attrs(operationPull, CodeNoData, testApp)...))
	assert.Equal(t, int64(1), counterValue(t, ops, attrs(operationMeta, CodeInvalidApp, "")...))
	assert.Equal(t, int64(1), counterValue(t, ops, attrs(operationPurge, CodeOK, testApp)...))

	durations, ok := metrics["sync.operation.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total uint64
	for _, dp := range durations.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(5), total)

	sizes, ok := metrics["sync.push.payload_size"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, sizes.DataPoints, 1)
	assert.Equal(t, uint64(1), sizes.DataPoints[0].Count, "only accepted pushes are measured")
	assert.Equal(t, int64(len(req.Data)), sizes.DataPoints[0].Sum)
}
