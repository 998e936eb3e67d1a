// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// memoryAccounts implements both account repositories in memory.
type memoryAccounts struct {
	mu            sync.RWMutex
	nextID        int64
	users         map[string]models.User
	subscriptions map[int64]map[string]models.Subscription
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{
		users:         make(map[string]models.User),
		subscriptions: make(map[int64]map[string]models.Subscription),
	}
}

// NewMemoryUserRepository constructs an in-memory [UserRepository].
func NewMemoryUserRepository() UserRepository {
	return newMemoryAccounts()
}

// NewMemorySubscriptionRepository constructs an in-memory
// [SubscriptionRepository].
func NewMemorySubscriptionRepository() SubscriptionRepository {
	return newMemoryAccounts()
}

func (m *memoryAccounts) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Login]; ok {
		return models.User{}, ErrLoginAlreadyExists
	}

	m.nextID++
	user.UserID = m.nextID
	user.Password = ""
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.Login] = user
	return user, nil
}

func (m *memoryAccounts) FindUserByLogin(_ context.Context, login string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[login]
	if !ok {
		return models.User{}, ErrNoUserWasFound
	}
	return user, nil
}

func (m *memoryAccounts) DeleteUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for login, user := range m.users {
		if user.UserID == userID {
			delete(m.users, login)
			break
		}
	}
	delete(m.subscriptions, userID)
	return nil
}

func (m *memoryAccounts) GrantSubscription(_ context.Context, sub models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	byApp, ok := m.subscriptions[sub.UserID]
	if !ok {
		byApp = make(map[string]models.Subscription)
		m.subscriptions[sub.UserID] = byApp
	}
	byApp[sub.AppID] = sub
	return nil
}

func (m *memoryAccounts) ListSubscriptions(_ context.Context, userID int64) ([]models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]models.Subscription, 0, len(m.subscriptions[userID]))
	for _, sub := range m.subscriptions[userID] {
		subs = append(subs, sub)
	}
	slices.SortFunc(subs, func(a, b models.Subscription) int {
		return strings.Compare(a.AppID, b.AppID)
	})
	return subs, nil
}
