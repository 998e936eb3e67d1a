// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"time"
)

// Sync engine errors. Each one maps onto one wire error code.
var (
	ErrInvalidApp           = errors.New("invalid application id")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrInvalidData          = errors.New("invalid data")
	ErrMissingDeviceID      = errors.New("deviceId is required")
	ErrDataTooLarge         = errors.New("data exceeds maximum size")
	ErrInvalidVersion       = errors.New("invalid version")
	ErrNoData               = errors.New("no sync data found")
	ErrVersionNotFound      = errors.New("version not found")
	ErrDataNotFound         = errors.New("data not found")
	ErrSyncFailed           = errors.New("sync storage failure")
)

// Auth errors.
var (
	ErrInvalidDataProvided     = errors.New("invalid data provided")
	ErrWrongPassword           = errors.New("wrong password")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
)

// ConflictError is returned by a push whose localVersion is behind the
// server. It carries the server state the caller needs to resolve it.
type ConflictError struct {
	LocalVersion   int64
	ServerVersion  int64
	ServerModified time.Time
	ServerDeviceID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: local version %d is behind server version %d", e.LocalVersion, e.ServerVersion)
}
