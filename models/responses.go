// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Wire envelopes shared by the HTTP transport and the client SDK. Every
// envelope carries Success so callers can branch without looking at the
// status code.

// PushResponse is returned by POST /sync/{app}/push.
type PushResponse struct {
	Success   bool      `json:"success"`
	Version   int64     `json:"version"`
	Checksum  string    `json:"checksum"`
	Timestamp time.Time `json:"timestamp"`
}

// PullResponse is returned by GET /sync/{app}/pull.
//
// Meta is either a full [SyncMeta] or a [VersionStub] for historical pulls,
// which is why it is kept as raw JSON on the client side.
type PullResponse struct {
	Success           bool            `json:"success"`
	Data              json.RawMessage `json:"data"`
	Meta              json.RawMessage `json:"meta"`
	AvailableVersions []int64         `json:"availableVersions"`
}

// MetaResponse is returned by GET /sync/{app}/meta.
type MetaResponse struct {
	Success           bool      `json:"success"`
	Exists            bool      `json:"exists"`
	Meta              *SyncMeta `json:"meta"`
	AvailableVersions []int64   `json:"availableVersions"`
}

// PurgeResponse is returned by DELETE /sync/{app}.
type PurgeResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

// ErrorResponse is the envelope of every failed call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// ConflictResponse extends ErrorResponse with the server state that caused
// a push to be rejected.
type ConflictResponse struct {
	ErrorResponse

	LocalVersion   int64     `json:"localVersion"`
	ServerVersion  int64     `json:"serverVersion"`
	ServerModified time.Time `json:"serverModified"`
	ServerDeviceID string    `json:"serverDeviceId"`
}

// AuthResponse is returned by register and login. The token is also sent
// in the Authorization header.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}
