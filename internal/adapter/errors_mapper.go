// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/models"
)

var codeErrors = map[string]error{
	"UNAUTHORIZED":          ErrUnauthorized,
	"SUBSCRIPTION_REQUIRED": ErrSubscriptionRequired,
	"INVALID_APP":           ErrInvalidApp,
	"INVALID_DATA":          ErrInvalidData,
	"MISSING_DEVICE_ID":     ErrMissingDeviceID,
	"DATA_TOO_LARGE":        ErrDataTooLarge,
	"INVALID_VERSION":       ErrInvalidVersion,
	"CONFLICT":              ErrConflict,
	"NO_DATA":               ErrNoData,
	"VERSION_NOT_FOUND":     ErrVersionNotFound,
	"DATA_NOT_FOUND":        ErrDataNotFound,
	"RATE_LIMITED":          ErrRateLimited,
	"LOGIN_TAKEN":           ErrLoginTaken,
	"SYNC_ERROR":            ErrServer,
}

// statusErrors covers answers without a readable envelope, e.g. from a
// proxy in front of the server.
var statusErrors = map[int]error{
	http.StatusUnauthorized:    ErrUnauthorized,
	http.StatusForbidden:       ErrSubscriptionRequired,
	http.StatusTooManyRequests: ErrRateLimited,
}

// mapHTTPError converts a non-2xx response into an error of this package.
func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body := resp.Body()

	var envelope models.ConflictResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Code == "" {
		return statusError(status, strings.TrimSpace(string(body)))
	}

	if envelope.Code == "CONFLICT" {
		return &ConflictError{
			LocalVersion:   envelope.LocalVersion,
			ServerVersion:  envelope.ServerVersion,
			ServerModified: envelope.ServerModified,
			ServerDeviceID: envelope.ServerDeviceID,
		}
	}

	kind, ok := codeErrors[envelope.Code]
	if !ok {
		kind = statusKind(status)
	}
	return &APIError{Status: status, Code: envelope.Code, Message: envelope.Error, kind: kind}
}

func statusError(status int, body string) error {
	if body == "" {
		body = http.StatusText(status)
	}
	return &APIError{Status: status, Message: body, kind: statusKind(status)}
}

func statusKind(status int) error {
	if kind, ok := statusErrors[status]; ok {
		return kind
	}
	if status >= http.StatusInternalServerError {
		return ErrServer
	}
	return nil
}

// retryable reports whether a failed response may succeed when repeated.
func retryable(resp *resty.Response) bool {
	return resp.StatusCode() >= http.StatusInternalServerError
}
