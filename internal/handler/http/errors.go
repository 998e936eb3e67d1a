// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	errInvalidJSON          = errors.New("invalid JSON was passed")
	errIntegrityCheckFailed = errors.New("integrity check failed")
	errRateLimited          = errors.New("too many requests")
	errNoIdentity           = errors.New("no identity in request context")
)

// codeLoginTaken is only produced by registration, so it lives here rather
// than next to the sync codes.
const codeLoginTaken = "LOGIN_TAKEN"
