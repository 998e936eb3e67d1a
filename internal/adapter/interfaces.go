// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client SDK of the sync server.
//
// [ServerAdapter] hides the HTTP API behind typed calls. Error envelopes are
// decoded into the sentinel errors of this package so callers can use
// [errors.Is], and a rejected push surfaces as a [*ConflictError] carrying
// the server state. Network failures and 5xx answers are retried with
// exponential backoff; 4xx answers never are.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter talks to one sync server on behalf of one user.
type ServerAdapter interface {
	// SetToken stores the bearer token sent with every sync call.
	SetToken(token string)

	// Token returns the stored bearer token, or "" when none is set.
	Token() string

	// Register creates an account and stores the issued token.
	Register(ctx context.Context, user models.User) (models.Token, error)

	// Login authenticates and stores the issued token.
	Login(ctx context.Context, user models.User) (models.Token, error)

	// Push uploads a new snapshot of appID. A stale req.LocalVersion fails
	// with a *ConflictError.
	Push(ctx context.Context, appID string, req models.PushRequest) (models.PushResponse, error)

	// Pull downloads a snapshot. An empty version selects the current one.
	Pull(ctx context.Context, appID string, version string) (models.PullResponse, error)

	Meta(ctx context.Context, appID string) (models.MetaResponse, error)

	Purge(ctx context.Context, appID string) (models.PurgeResponse, error)

	// Version returns the server build version.
	Version(ctx context.Context) (string, error)
}
