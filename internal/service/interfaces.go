// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SyncService is the versioned snapshot engine.
//
// Every operation first checks that appID is well formed and that identity
// is entitled to it.
type SyncService interface {
	// Push stores req.Data as the next version of the (user, app) pair.
	// A stale req.LocalVersion yields a *ConflictError and no state change.
	Push(ctx context.Context, identity models.Identity, appID string, req models.PushRequest) (models.PushResult, error)

	// Pull returns the snapshot chosen by selector: "" or "current" for the
	// latest one, or a decimal version number.
	Pull(ctx context.Context, identity models.Identity, appID string, selector string) (models.PullResult, error)

	// Meta returns the sync status without reading any payload.
	Meta(ctx context.Context, identity models.Identity, appID string) (models.MetaResult, error)

	// Purge removes every stored object of the pair. Purging a pair with no
	// data succeeds with zero deletions.
	Purge(ctx context.Context, identity models.Identity, appID string) (models.PurgeResult, error)
}

// AuthService manages accounts, tokens and entitlements.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// Authorize validates a bearer token and resolves the caller's active
	// entitlements.
	Authorize(ctx context.Context, tokenString string) (models.Identity, error)
}

// AppInfoService exposes build information.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
