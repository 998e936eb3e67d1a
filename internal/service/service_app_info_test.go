// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// ---------------------------------------------------------------------------
// NewAppInfoService
// ---------------------------------------------------------------------------

func TestNewAppInfoService_Success(t *testing.T) {
	cfg := config.App{Version: "1.0.0"}

	svc, err := NewAppInfoService(cfg, logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestNewAppInfoService_EmptyVersion_ReturnsError(t *testing.T) {
	cfg := config.App{Version: ""}

	svc, err := NewAppInfoService(cfg, logger.Nop())

	assert.Nil(t, svc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionIsNotSpecified))
}

// ---------------------------------------------------------------------------
// GetAppVersion
// ---------------------------------------------------------------------------

func TestGetAppVersion_ReturnsConfiguredVersion(t *testing.T) {
	cfg := config.App{Version: "3.1.4"}
	svc, err := NewAppInfoService(cfg, logger.Nop())
	require.NoError(t, err)

	got := svc.GetAppVersion(context.Background())

	assert.Equal(t, "3.1.4", got)
}

func TestGetAppVersion_DifferentInstances_IndependentVersions(t *testing.T) {
	svc1, err := NewAppInfoService(config.App{Version: "1.0.0"}, logger.Nop())
	require.NoError(t, err)

	svc2, err := NewAppInfoService(config.App{Version: "2.0.0"}, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", svc1.GetAppVersion(context.Background()))
	assert.Equal(t, "2.0.0", svc2.GetAppVersion(context.Background()))
}

func TestGetAppVersion_VersionWithSpecialChars(t *testing.T) {
	version := "v1.2.3-beta+build.42"
	svc, err := NewAppInfoService(config.App{Version: version}, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, version, svc.GetAppVersion(context.Background()))
}

// ---------------------------------------------------------------------------
// NewServices
// ---------------------------------------------------------------------------

func TestNewServices_WiresEverything(t *testing.T) {
	storages := &store.Storages{
		BlobStore:              store.NewMemoryBlobStore(),
		UserRepository:         store.NewMemoryUserRepository(),
		SubscriptionRepository: store.NewMemorySubscriptionRepository(),
	}
	cfg := config.StructuredConfig{App: testAppConfig()}

	services, err := NewServices(storages, cfg, nil, noop.NewMeterProvider().Meter("test"), logger.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	user, err := services.AuthService.RegisterUser(ctx, models.User{Login: "alice", Password: "p"})
	require.NoError(t, err)
	token, err := services.AuthService.CreateToken(ctx, user)
	require.NoError(t, err)
	identity, err := services.AuthService.Authorize(ctx, token.SignedString)
	require.NoError(t, err)

	res, err := services.SyncService.Push(ctx, identity, "notes", models.PushRequest{Data: []byte(`{}`), DeviceID: "d"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Version)

	assert.Equal(t, "test", services.AppInfoService.GetAppVersion(ctx))
}

func TestNewServices_MissingVersion(t *testing.T) {
	_, err := NewServices(&store.Storages{}, config.StructuredConfig{}, nil, noop.NewMeterProvider().Meter("test"), logger.Nop())

	assert.ErrorIs(t, err, ErrVersionIsNotSpecified)
}
