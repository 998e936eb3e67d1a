// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks inbound requests before they reach storage.
//
// A [Validator] validates a value, optionally restricted to named fields.
// [Schemas] adds per-application JSON Schema checks of pushed payloads.
package validators

import "context"

// Validator validates the provided input and optionally restricts
// validation to specific named fields. With no fields every rule runs.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
