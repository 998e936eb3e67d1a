// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidData     = errors.New("data must be a JSON object or array")
	ErrMissingDeviceID = errors.New("deviceId is required")
	ErrDeviceIDTooLong = errors.New("deviceId is too long")
	ErrEmptyLogin      = errors.New("login is required")
	ErrLoginTooLong    = errors.New("login is too long")
	ErrEmptyPassword   = errors.New("password is required")

	// ErrSchemaViolation is returned when a payload does not satisfy the
	// JSON Schema registered for its application.
	ErrSchemaViolation = errors.New("payload does not match application schema")
)
