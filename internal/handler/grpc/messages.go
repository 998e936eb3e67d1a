// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import "github.com/MKhiriev/go-sync-keeper/models"

// Request messages. Responses reuse the HTTP envelopes from package models.

// PushRequest names the application next to the regular push body.
type PushRequest struct {
	AppID string `json:"appId"`
	models.PushRequest
}

// PullRequest selects a snapshot. An empty Version means the current one.
type PullRequest struct {
	AppID   string `json:"appId"`
	Version string `json:"version,omitempty"`
}

type MetaRequest struct {
	AppID string `json:"appId"`
}

type PurgeRequest struct {
	AppID string `json:"appId"`
}
