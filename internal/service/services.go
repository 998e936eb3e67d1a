// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the business logic of the sync server: the
// versioned snapshot engine, accounts and entitlements, and build info.
package service

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/validators"
)

type Services struct {
	AuthService    AuthService
	SyncService    SyncService
	AppInfoService AppInfoService
}

// NewServices wires every service. The sync engine is wrapped with the
// metrics decorator recording on meter.
func NewServices(storages *store.Storages, cfg config.StructuredConfig, schemas *validators.Schemas, meter metric.Meter, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	engine := NewSyncService(storages.BlobStore, cfg.Sync, logger, WithSchemas(schemas))

	return &Services{
		AuthService:    NewAuthService(storages.UserRepository, storages.SubscriptionRepository, cfg.App, logger),
		SyncService:    NewSyncMetricsService(meter, logger).Wrap(engine),
		AppInfoService: appInfo,
	}, nil
}
