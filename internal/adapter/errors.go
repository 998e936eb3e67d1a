// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched by the server error codes.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSubscriptionRequired = errors.New("subscription required")
	ErrInvalidApp           = errors.New("invalid application id")
	ErrInvalidData          = errors.New("invalid data")
	ErrMissingDeviceID      = errors.New("device id required")
	ErrDataTooLarge         = errors.New("data too large")
	ErrInvalidVersion       = errors.New("invalid version")
	ErrConflict             = errors.New("version conflict")
	ErrNoData               = errors.New("no data on server")
	ErrVersionNotFound      = errors.New("version not found")
	ErrDataNotFound         = errors.New("data not found")
	ErrRateLimited          = errors.New("rate limited")
	ErrLoginTaken           = errors.New("login already taken")
	ErrServer               = errors.New("server error")
)

// ErrIntegrityCheckFailed means a signed response did not match its
// HashSHA256 header.
var ErrIntegrityCheckFailed = errors.New("response integrity check failed")

// APIError is a failed call decoded from the server error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string

	kind error
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the sentinel matching Code, or nil for unknown codes.
func (e *APIError) Unwrap() error {
	return e.kind
}

// ConflictError is returned by Push when the server holds a newer version
// than the caller's LocalVersion.
type ConflictError struct {
	LocalVersion   int64
	ServerVersion  int64
	ServerModified time.Time
	ServerDeviceID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: local version %d, server version %d written by %q at %s",
		e.LocalVersion, e.ServerVersion, e.ServerDeviceID, e.ServerModified.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
