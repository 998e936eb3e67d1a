// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/models"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	first, err := repo.CreateUser(ctx, models.User{Login: "alice", Password: "secret", PasswordHash: "h1"})
	require.NoError(t, err)
	second, err := repo.CreateUser(ctx, models.User{Login: "bob", PasswordHash: "h2"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.UserID)
	assert.Equal(t, int64(2), second.UserID)
	assert.Empty(t, first.Password)

	_, err = repo.CreateUser(ctx, models.User{Login: "alice"})
	assert.ErrorIs(t, err, ErrLoginAlreadyExists)

	found, err := repo.FindUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", found.PasswordHash)

	_, err = repo.FindUserByLogin(ctx, "carol")
	assert.ErrorIs(t, err, ErrNoUserWasFound)

	require.NoError(t, repo.DeleteUser(ctx, first.UserID))
	_, err = repo.FindUserByLogin(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
	require.NoError(t, repo.DeleteUser(ctx, first.UserID), "deleting twice is fine")

	again, err := repo.CreateUser(ctx, models.User{Login: "alice", PasswordHash: "h3"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), again.UserID)
}

func TestMemorySubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()

	subs, err := repo.ListSubscriptions(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, subs)

	require.NoError(t, repo.GrantSubscription(ctx, models.Subscription{UserID: 1, AppID: "notes", Status: models.SubscriptionActive}))
	require.NoError(t, repo.GrantSubscription(ctx, models.Subscription{UserID: 1, AppID: "budget", Status: models.SubscriptionActive}))
	require.NoError(t, repo.GrantSubscription(ctx, models.Subscription{UserID: 1, AppID: "notes", Status: models.SubscriptionCanceled}))
	require.NoError(t, repo.GrantSubscription(ctx, models.Subscription{UserID: 2, AppID: "notes", Status: models.SubscriptionActive}))

	subs, err = repo.ListSubscriptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "budget", subs[0].AppID)
	assert.Equal(t, "notes", subs[1].AppID)
	assert.Equal(t, models.SubscriptionCanceled, subs[1].Status)
	assert.False(t, subs[1].CreatedAt.IsZero())
}
