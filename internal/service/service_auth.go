// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/internal/validators"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// authService implements [AuthService].
//
// Passwords are stored as bcrypt hashes. Tokens are HS256 JWTs carrying the
// user id as subject; entitlements are resolved from subscriptions on every
// request, so revoking a subscription takes effect without reissuing tokens.
type authService struct {
	userRepository         store.UserRepository
	subscriptionRepository store.SubscriptionRepository
	validator              validators.Validator

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	// defaultEntitlements are granted to every newly registered user.
	defaultEntitlements []string

	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService constructs an [AuthService]. All state is read-only after
// construction.
func NewAuthService(users store.UserRepository, subscriptions store.SubscriptionRepository, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:         users,
		subscriptionRepository: subscriptions,
		validator:              validators.NewSyncValidator(),
		tokenSignKey:           cfg.TokenSignKey,
		tokenIssuer:            cfg.TokenIssuer,
		tokenDuration:          cfg.TokenDuration,
		defaultEntitlements:    cfg.DefaultEntitlements,
		now:                    time.Now,
		logger:                 logger,
	}
}

// RegisterUser hashes the password, stores the user and grants the
// configured default entitlements.
//
// Returns [ErrInvalidDataProvided] for an empty login or password and a
// wrapped [store.ErrLoginAlreadyExists] when the login is taken. When a grant
// fails the user is deleted again.
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, user); err != nil {
		log.Error().Err(err).Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.Password = ""

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	for _, appID := range a.defaultEntitlements {
		err = a.subscriptionRepository.GrantSubscription(ctx, models.Subscription{
			UserID:    registeredUser.UserID,
			AppID:     appID,
			Status:    models.SubscriptionActive,
			CreatedAt: a.now().UTC(),
		})
		if err != nil {
			log.Err(err).Int64("user_id", registeredUser.UserID).Str("app_id", appID).Msg("granting default entitlement failed")
			a.rollbackUser(ctx, registeredUser.UserID)
			return models.User{}, fmt.Errorf("granting default entitlement %q: %w", appID, err)
		}
	}

	log.Info().Int64("user_id", registeredUser.UserID).Strs("entitlements", a.defaultEntitlements).Msg("user registered")
	return registeredUser, nil
}

// rollbackUser removes a user whose registration could not complete, so the
// login stays free for a retry. It runs even when ctx is already canceled.
func (a *authService) rollbackUser(ctx context.Context, userID int64) {
	if err := a.userRepository.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("failed to remove partially registered user")
	}
}

// Login verifies the credentials and returns the stored user.
//
// An unknown login and a wrong password both yield [ErrWrongPassword] so
// callers cannot probe for existing accounts.
func (a *authService) Login(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, user); err != nil {
		log.Error().Err(err).Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	foundUser, err := a.userRepository.FindUserByLogin(ctx, user.Login)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Info().Str("login", user.Login).Msg("login attempt for unknown user")
		return models.User{}, ErrWrongPassword
	}
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(user.Password)); err != nil {
		log.Info().Int64("id", foundUser.UserID).Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for user.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates tokenString. Every validation failure is reported
// as [ErrTokenIsExpiredOrInvalid].
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token rejected")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// Authorize parses tokenString and collects the app ids of the caller's
// active subscriptions.
func (a *authService) Authorize(ctx context.Context, tokenString string) (models.Identity, error) {
	token, err := a.ParseToken(ctx, tokenString)
	if err != nil {
		return models.Identity{}, err
	}

	subscriptions, err := a.subscriptionRepository.ListSubscriptions(ctx, token.UserID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", token.UserID).Msg("loading subscriptions failed")
		return models.Identity{}, fmt.Errorf("loading subscriptions: %w", err)
	}

	now := a.now()
	identity := models.Identity{UserID: token.UserID, Entitlements: make([]string, 0, len(subscriptions))}
	for _, sub := range subscriptions {
		if sub.ActiveAt(now) {
			identity.Entitlements = append(identity.Entitlements, sub.AppID)
		}
	}

	return identity, nil
}
