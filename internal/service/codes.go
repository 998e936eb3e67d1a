// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

// Wire error codes shared by every transport.
const (
	CodeOK                   = "OK"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodeInvalidApp           = "INVALID_APP"
	CodeInvalidData          = "INVALID_DATA"
	CodeMissingDeviceID      = "MISSING_DEVICE_ID"
	CodeDataTooLarge         = "DATA_TOO_LARGE"
	CodeInvalidVersion       = "INVALID_VERSION"
	CodeConflict             = "CONFLICT"
	CodeNoData               = "NO_DATA"
	CodeVersionNotFound      = "VERSION_NOT_FOUND"
	CodeDataNotFound         = "DATA_NOT_FOUND"
	CodeRateLimited          = "RATE_LIMITED"
	CodeSyncError            = "SYNC_ERROR"
)

var errorCodes = []struct {
	target error
	code   string
}{
	{ErrTokenIsExpiredOrInvalid, CodeUnauthorized},
	{ErrSubscriptionRequired, CodeSubscriptionRequired},
	{ErrInvalidApp, CodeInvalidApp},
	{ErrInvalidData, CodeInvalidData},
	{ErrMissingDeviceID, CodeMissingDeviceID},
	{ErrDataTooLarge, CodeDataTooLarge},
	{ErrInvalidVersion, CodeInvalidVersion},
	{ErrNoData, CodeNoData},
	{ErrVersionNotFound, CodeVersionNotFound},
	{ErrDataNotFound, CodeDataNotFound},
}

// ErrorCode returns the wire code of err. Unknown errors are SYNC_ERROR.
func ErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return CodeConflict
	}

	for _, e := range errorCodes {
		if errors.Is(err, e.target) {
			return e.code
		}
	}
	return CodeSyncError
}
