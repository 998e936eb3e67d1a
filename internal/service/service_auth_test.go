// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/mock"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/validators"
	"github.com/MKhiriev/go-sync-keeper/models"
)

func testAppConfig() config.App {
	return config.App{
		TokenSignKey:        "test-sign-key",
		TokenIssuer:         "go-sync-keeper-test",
		TokenDuration:       time.Hour,
		Version:             "test",
		DefaultEntitlements: []string{"notes", "todo"},
	}
}

func newMemoryAuthService(t *testing.T, cfg config.App) (AuthService, store.SubscriptionRepository) {
	t.Helper()
	subs := store.NewMemorySubscriptionRepository()
	return NewAuthService(store.NewMemoryUserRepository(), subs, cfg, logger.Nop()), subs
}

// ---------------------------------------------------------------------------
// RegisterUser
// ---------------------------------------------------------------------------

func TestAuthService_RegisterUser(t *testing.T) {
	svc, subs := newMemoryAuthService(t, testAppConfig())
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, models.User{Login: "alice", Password: "s3cret"})
	require.NoError(t, err)

	assert.NotZero(t, user.UserID)
	assert.Empty(t, user.Password, "plain password is never returned")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))

	granted, err := subs.ListSubscriptions(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, granted, 2)
	assert.Equal(t, "notes", granted[0].AppID)
	assert.Equal(t, "todo", granted[1].AppID)
	for _, sub := range granted {
		assert.Equal(t, models.SubscriptionActive, sub.Status)
		assert.Nil(t, sub.ExpiresAt)
	}
}

func TestAuthService_RegisterUser_Duplicate(t *testing.T) {
	svc, _ := newMemoryAuthService(t, testAppConfig())
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, models.User{Login: "alice", Password: "one"})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, models.User{Login: "alice", Password: "two"})
	assert.ErrorIs(t, err, store.ErrLoginAlreadyExists)
}

func TestAuthService_RegisterUser_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		wantErr error
	}{
		{name: "empty login", user: models.User{Password: "p"}, wantErr: validators.ErrEmptyLogin},
		{name: "empty password", user: models.User{Login: "alice"}, wantErr: validators.ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			users := mock.NewMockUserRepository(ctrl)
			subs := mock.NewMockSubscriptionRepository(ctrl)

			svc := NewAuthService(users, subs, testAppConfig(), logger.Nop())
			_, err := svc.RegisterUser(context.Background(), tt.user)

			require.ErrorIs(t, err, ErrInvalidDataProvided)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_RegisterUser_GrantFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	subs := mock.NewMockSubscriptionRepository(ctrl)
	grantErr := errors.New("constraint violated")

	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{UserID: 7, Login: "alice"}, nil)
	subs.EXPECT().GrantSubscription(gomock.Any(), gomock.Any()).Return(grantErr)
	users.EXPECT().DeleteUser(gomock.Any(), int64(7)).Return(nil)

	svc := NewAuthService(users, subs, testAppConfig(), logger.Nop())
	_, err := svc.RegisterUser(context.Background(), models.User{Login: "alice", Password: "p"})

	assert.ErrorIs(t, err, grantErr)
}

func TestAuthService_RegisterUser_RetryAfterGrantFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := store.NewMemoryUserRepository()
	subs := mock.NewMockSubscriptionRepository(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		subs.EXPECT().GrantSubscription(gomock.Any(), gomock.Any()).Return(errors.New("db down")),
		subs.EXPECT().GrantSubscription(gomock.Any(), gomock.Any()).Return(nil).Times(2),
	)

	svc := NewAuthService(users, subs, testAppConfig(), logger.Nop())

	_, err := svc.RegisterUser(ctx, models.User{Login: "alice", Password: "p"})
	require.Error(t, err)

	_, err = users.FindUserByLogin(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNoUserWasFound, "the failed registration must not keep the login")

	user, err := svc.RegisterUser(ctx, models.User{Login: "alice", Password: "p"})
	require.NoError(t, err)
	assert.NotZero(t, user.UserID)
}

func TestAuthService_RegisterUser_RollbackFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	subs := mock.NewMockSubscriptionRepository(ctrl)
	grantErr := errors.New("constraint violated")

	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{UserID: 7, Login: "alice"}, nil)
	subs.EXPECT().GrantSubscription(gomock.Any(), gomock.Any()).Return(grantErr)
	users.EXPECT().DeleteUser(gomock.Any(), int64(7)).Return(errors.New("connection reset"))

	svc := NewAuthService(users, subs, testAppConfig(), logger.Nop())
	_, err := svc.RegisterUser(context.Background(), models.User{Login: "alice", Password: "p"})

	assert.ErrorIs(t, err, grantErr, "the grant failure is what the caller sees")
}

func TestAuthService_RegisterUser_NoDefaultEntitlements(t *testing.T) {
	cfg := testAppConfig()
	cfg.DefaultEntitlements = nil

	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	subs := mock.NewMockSubscriptionRepository(ctrl)

	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (models.User, error) {
			assert.NotEmpty(t, u.PasswordHash)
			assert.Empty(t, u.Password)
			u.UserID = 3
			return u, nil
		})

	svc := NewAuthService(users, subs, cfg, logger.Nop())
	user, err := svc.RegisterUser(context.Background(), models.User{Login: "alice", Password: "p"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login(t *testing.T) {
	svc, _ := newMemoryAuthService(t, testAppConfig())
	ctx := context.Background()

	registered, err := svc.RegisterUser(ctx, models.User{Login: "alice", Password: "s3cret"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		user    models.User
		wantErr error
	}{
		{name: "valid credentials", user: models.User{Login: "alice", Password: "s3cret"}},
		{name: "wrong password", user: models.User{Login: "alice", Password: "nope"}, wantErr: ErrWrongPassword},
		{name: "unknown login", user: models.User{Login: "mallory", Password: "s3cret"}, wantErr: ErrWrongPassword},
		{name: "empty password", user: models.User{Login: "alice"}, wantErr: ErrInvalidDataProvided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Login(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.UserID, user.UserID)
		})
	}
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	dbErr := errors.New("connection reset")

	users.EXPECT().FindUserByLogin(gomock.Any(), "alice").Return(models.User{}, dbErr)

	svc := NewAuthService(users, mock.NewMockSubscriptionRepository(ctrl), testAppConfig(), logger.Nop())
	_, err := svc.Login(context.Background(), models.User{Login: "alice", Password: "p"})

	require.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrWrongPassword)
}

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

func TestAuthService_CreateAndParseToken(t *testing.T) {
	svc, _ := newMemoryAuthService(t, testAppConfig())
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 42})
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)
}

func TestAuthService_CreateToken_MissingKey(t *testing.T) {
	cfg := testAppConfig()
	cfg.TokenSignKey = ""
	svc, _ := newMemoryAuthService(t, cfg)

	_, err := svc.CreateToken(context.Background(), models.User{UserID: 1})

	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}

func TestAuthService_ParseToken_Rejections(t *testing.T) {
	svc, _ := newMemoryAuthService(t, testAppConfig())

	otherCfg := testAppConfig()
	otherCfg.TokenSignKey = "another-key"
	other, _ := newMemoryAuthService(t, otherCfg)
	foreign, err := other.CreateToken(context.Background(), models.User{UserID: 1})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"empty":        "",
		"foreign key":  foreign.SignedString,
		"wrong format": "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(context.Background(), token)
			assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
			assert.Equal(t, CodeUnauthorized, ErrorCode(err))
		})
	}
}

// ---------------------------------------------------------------------------
// Authorize
// ---------------------------------------------------------------------------

func TestAuthService_Authorize(t *testing.T) {
	svc, subs := newMemoryAuthService(t, testAppConfig())
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, models.User{Login: "alice", Password: "p"})
	require.NoError(t, err)

	expired := time.Now().Add(-time.Hour)
	require.NoError(t, subs.GrantSubscription(ctx, models.Subscription{
		UserID: user.UserID, AppID: "calendar", Status: models.SubscriptionActive, ExpiresAt: &expired,
	}))
	require.NoError(t, subs.GrantSubscription(ctx, models.Subscription{
		UserID: user.UserID, AppID: "todo", Status: models.SubscriptionCanceled,
	}))

	token, err := svc.CreateToken(ctx, user)
	require.NoError(t, err)

	identity, err := svc.Authorize(ctx, token.SignedString)
	require.NoError(t, err)

	assert.Equal(t, user.UserID, identity.UserID)
	assert.Equal(t, []string{"notes"}, identity.Entitlements)
	assert.True(t, identity.Entitled("notes"))
	assert.False(t, identity.Entitled("todo"))
	assert.False(t, identity.Entitled("calendar"))
}

func TestAuthService_Authorize_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	subs := mock.NewMockSubscriptionRepository(ctrl)

	svc := NewAuthService(mock.NewMockUserRepository(ctrl), subs, testAppConfig(), logger.Nop())
	_, err := svc.Authorize(context.Background(), "bogus")

	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthService_Authorize_SubscriptionLookupFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	subs := mock.NewMockSubscriptionRepository(ctrl)
	dbErr := errors.New("timeout")

	svc := NewAuthService(mock.NewMockUserRepository(ctrl), subs, testAppConfig(), logger.Nop())
	token, err := svc.CreateToken(context.Background(), models.User{UserID: 5})
	require.NoError(t, err)

	subs.EXPECT().ListSubscriptions(gomock.Any(), int64(5)).Return(nil, dbErr)

	_, err = svc.Authorize(context.Background(), token.SignedString)

	require.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}
