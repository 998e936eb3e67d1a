// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements the persistence layer: the key-addressed blob
// stores holding sync snapshots and the account repositories used by the
// auth gate.
package store

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// BlobStore is a key-addressed object store.
//
// Keys are slash separated paths. Implementations must be safe for
// concurrent use.
type BlobStore interface {
	// Get returns the blob stored under key or [ErrBlobNotFound].
	Get(ctx context.Context, key string) (models.Blob, error)

	// Put stores blob.Payload and blob.Metadata under blob.Key, replacing
	// any previous object.
	Put(ctx context.Context, blob models.Blob) error

	// Delete removes the object under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns every key starting with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser stores a new user and returns it with UserID and
	// CreatedAt assigned. Returns [ErrLoginAlreadyExists] on duplicates.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByLogin returns the user with the given login or
	// [ErrNoUserWasFound].
	FindUserByLogin(ctx context.Context, login string) (models.User, error)

	// DeleteUser removes the user and, through the foreign key, its
	// subscriptions. Deleting a missing user is not an error.
	DeleteUser(ctx context.Context, userID int64) error
}

// SubscriptionRepository persists the application entitlements of users.
type SubscriptionRepository interface {
	// GrantSubscription creates or replaces the subscription of
	// (sub.UserID, sub.AppID).
	GrantSubscription(ctx context.Context, sub models.Subscription) error

	// ListSubscriptions returns every subscription of userID, active or not.
	ListSubscriptions(ctx context.Context, userID int64) ([]models.Subscription, error)
}
