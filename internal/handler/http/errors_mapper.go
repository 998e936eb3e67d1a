// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

var codeStatusMap = map[string]int{
	service.CodeUnauthorized:         http.StatusUnauthorized,
	service.CodeSubscriptionRequired: http.StatusForbidden,
	service.CodeInvalidApp:           http.StatusBadRequest,
	service.CodeInvalidData:          http.StatusBadRequest,
	service.CodeMissingDeviceID:      http.StatusBadRequest,
	service.CodeDataTooLarge:         http.StatusBadRequest,
	service.CodeInvalidVersion:       http.StatusBadRequest,
	service.CodeConflict:             http.StatusConflict,
	service.CodeNoData:               http.StatusNotFound,
	service.CodeVersionNotFound:      http.StatusNotFound,
	service.CodeDataNotFound:         http.StatusNotFound,
	service.CodeRateLimited:          http.StatusTooManyRequests,
	service.CodeSyncError:            http.StatusInternalServerError,
	codeLoginTaken:                   http.StatusConflict,
}

// errorCode extends [service.ErrorCode] with the errors that only the HTTP
// layer and the account endpoints produce.
func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, errNoIdentity):
		return service.CodeUnauthorized
	case errors.Is(err, service.ErrInvalidDataProvided),
		errors.Is(err, errInvalidJSON),
		errors.Is(err, errIntegrityCheckFailed):
		return service.CodeInvalidData
	case errors.Is(err, store.ErrLoginAlreadyExists):
		return codeLoginTaken
	case errors.Is(err, errRateLimited):
		return service.CodeRateLimited
	}
	return service.ErrorCode(err)
}

func statusFromCode(code string) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError answers with the error envelope matching err. Conflicts carry
// the server state as well. Internal failures are logged and their details
// are not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	status := statusFromCode(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromRequest(r).Err(err).Str("code", code).Msg("request failed")
		message = http.StatusText(status)
	}

	envelope := models.ErrorResponse{Success: false, Error: message, Code: code}

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		utils.WriteJSON(w, models.ConflictResponse{
			ErrorResponse:  envelope,
			LocalVersion:   conflict.LocalVersion,
			ServerVersion:  conflict.ServerVersion,
			ServerModified: conflict.ServerModified,
			ServerDeviceID: conflict.ServerDeviceID,
		}, status)
		return
	}

	utils.WriteJSON(w, envelope, status)
}
