// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"slices"
	"time"
)

// AllApps is the application id of a subscription that covers every app.
const AllApps = "*"

// Subscription statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// Identity is the authenticated caller as seen by the sync engine.
type Identity struct {
	UserID int64

	// Entitlements lists the application ids the caller may sync.
	// The [AllApps] entry grants every application.
	Entitlements []string
}

// Entitled reports whether the identity may use appID.
func (i Identity) Entitled(appID string) bool {
	return slices.Contains(i.Entitlements, AllApps) || slices.Contains(i.Entitlements, appID)
}

// Subscription grants a user access to one application (or all of them).
type Subscription struct {
	UserID    int64
	AppID     string
	Status    string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the subscription grants access at moment now.
func (s Subscription) ActiveAt(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}
