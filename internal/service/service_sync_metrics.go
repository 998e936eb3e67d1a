// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const meterName = "github.com/MKhiriev/go-sync-keeper/internal/service"

// Operation names recorded in the "operation" attribute.
const (
	operationPush  = "push"
	operationPull  = "pull"
	operationMeta  = "meta"
	operationPurge = "purge"
)

// SyncMetricsService records OpenTelemetry metrics around a SyncService:
// an operation counter labelled by outcome code, an operation duration
// histogram and the size of accepted pushes.
type SyncMetricsService struct {
	inner SyncService

	operations  metric.Int64Counter
	duration    metric.Float64Histogram
	payloadSize metric.Int64Histogram
}

// NewSyncMetricsService builds the instruments on meter. Instrument creation
// errors are logged; a failing instrument degrades to a no-op.
func NewSyncMetricsService(meter metric.Meter, log *logger.Logger) SyncServiceWrapper {
	s := &SyncMetricsService{}

	var err error
	s.operations, err = meter.Int64Counter("sync.operations",
		metric.WithDescription("Sync operations by outcome code"),
		metric.WithUnit("{operation}"))
	if err != nil {
		log.Warn().Err(err).Msg("sync.operations instrument unavailable")
	}

	s.duration, err = meter.Float64Histogram("sync.operation.duration",
		metric.WithDescription("Sync operation duration"),
		metric.WithUnit("ms"))
	if err != nil {
		log.Warn().Err(err).Msg("sync.operation.duration instrument unavailable")
	}

	s.payloadSize, err = meter.Int64Histogram("sync.push.payload_size",
		metric.WithDescription("Size of accepted push payloads"),
		metric.WithUnit("By"))
	if err != nil {
		log.Warn().Err(err).Msg("sync.push.payload_size instrument unavailable")
	}

	return s
}

func (s *SyncMetricsService) Wrap(inner SyncService) SyncService {
	s.inner = inner
	return s
}

func (s *SyncMetricsService) Push(ctx context.Context, identity models.Identity, appID string, req models.PushRequest) (models.PushResult, error) {
	start := time.Now()
	result, err := s.inner.Push(ctx, identity, appID, req)
	s.record(ctx, operationPush, appID, start, err)

	if err == nil && s.payloadSize != nil {
		s.payloadSize.Record(ctx, int64(len(req.Data)), metric.WithAttributes(attribute.String("app_id", appID)))
	}
	return result, err
}

func (s *SyncMetricsService) Pull(ctx context.Context, identity models.Identity, appID string, selector string) (models.PullResult, error) {
	start := time.Now()
	result, err := s.inner.Pull(ctx, identity, appID, selector)
	s.record(ctx, operationPull, appID, start, err)
	return result, err
}

func (s *SyncMetricsService) Meta(ctx context.Context, identity models.Identity, appID string) (models.MetaResult, error) {
	start := time.Now()
	result, err := s.inner.Meta(ctx, identity, appID)
	s.record(ctx, operationMeta, appID, start, err)
	return result, err
}

func (s *SyncMetricsService) Purge(ctx context.Context, identity models.Identity, appID string) (models.PurgeResult, error) {
	start := time.Now()
	result, err := s.inner.Purge(ctx, identity, appID)
	s.record(ctx, operationPurge, appID, start, err)
	return result, err
}

func (s *SyncMetricsService) record(ctx context.Context, operation, appID string, start time.Time, err error) {
	code := ErrorCode(err)
	if code == CodeInvalidApp {
		// unvalidated ids would blow up attribute cardinality
		appID = ""
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("code", code),
		attribute.String("app_id", appID),
	)

	if s.operations != nil {
		s.operations.Add(ctx, 1, attrs)
	}
	if s.duration != nil {
		s.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	}
}
