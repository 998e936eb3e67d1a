// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by stores and repositories to signal well-known
// failure conditions. Callers should use [errors.Is] to match against them.
var (
	// ErrBlobNotFound is returned by [BlobStore.Get] when no object exists
	// under the requested key.
	ErrBlobNotFound = errors.New("blob was not found")

	// ErrInvalidKey is returned when a key cannot be mapped onto the
	// backend, for example a file store key escaping its root directory.
	ErrInvalidKey = errors.New("invalid blob key")

	// ErrLoginAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same login already exists.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a lookup expected to match a user
	// produces no result.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrUnknownBackend is returned by [NewStorages] for an unsupported
	// blob backend or database driver.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Low-level database operation errors. These are returned (or wrapped) by
// SQL implementations when a statement fails before any domain logic can
// be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT, UPDATE or
	// DELETE fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
