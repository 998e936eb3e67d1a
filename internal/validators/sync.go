// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// Field names accepted by [SyncValidator.Validate].
const (
	FieldData     = "data"
	FieldDeviceID = "device_id"
	FieldLogin    = "login"
	FieldPassword = "password"
)

const (
	maxDeviceIDLength = 256
	maxLoginLength    = 128
)

// SyncValidator validates push requests and account credentials.
type SyncValidator struct{}

func NewSyncValidator() Validator {
	return &SyncValidator{}
}

func (v *SyncValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.PushRequest:
		return v.validatePushRequest(value, fields...)
	case *models.PushRequest:
		return v.validatePushRequest(*value, fields...)

	case models.User:
		return v.validateUser(value, fields...)
	case *models.User:
		return v.validateUser(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validatePushRequest checks fields in the order they are listed; data is
// checked before deviceId when both are requested.
func (v *SyncValidator) validatePushRequest(req models.PushRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldData, FieldDeviceID}
	}

	for _, field := range fields {
		switch field {
		case FieldData:
			if !IsStructuredJSON(req.Data) {
				return ErrInvalidData
			}
		case FieldDeviceID:
			if req.DeviceID == "" {
				return ErrMissingDeviceID
			}
			if len(req.DeviceID) > maxDeviceIDLength {
				return ErrDeviceIDTooLong
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	return nil
}

func (v *SyncValidator) validateUser(user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldPassword}
	}

	for _, field := range fields {
		switch field {
		case FieldLogin:
			if user.Login == "" {
				return ErrEmptyLogin
			}
			if len(user.Login) > maxLoginLength {
				return ErrLoginTooLong
			}
		case FieldPassword:
			if user.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	return nil
}

var (
	objectStart = []byte("{")
	arrayStart  = []byte("[")
)

// IsStructuredJSON reports whether raw is a well-formed JSON object or array.
// Scalars and null are rejected.
func IsStructuredJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if !slices.ContainsFunc([][]byte{objectStart, arrayStart}, func(p []byte) bool {
		return bytes.HasPrefix(trimmed, p)
	}) {
		return false
	}
	return json.Valid(trimmed)
}
