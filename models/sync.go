// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// SyncMeta is the metadata record kept for every (user, application) pair.
// It describes the snapshot currently stored under the "current" key.
type SyncMeta struct {
	// Version starts at 1 on the first push and grows by exactly one on
	// every successful push.
	Version int64 `json:"version"`

	// LastModified is the server time of the push that produced Version.
	LastModified time.Time `json:"lastModified"`

	// DeviceID is the opaque identifier supplied by the writer.
	DeviceID string `json:"deviceId"`

	// Checksum is the hex encoded SHA-256 digest of the stored payload.
	Checksum string `json:"checksum"`

	// Size is the byte length of the stored payload.
	Size int64 `json:"size"`
}

// VersionStub is the reduced metadata returned for historical snapshots.
type VersionStub struct {
	Version int64 `json:"version"`
}

// PushRequest is the body of a push call.
type PushRequest struct {
	// Data is the JSON document to store. It must be an object or an array.
	Data json.RawMessage `json:"data"`

	// DeviceID identifies the writing device. Required.
	DeviceID string `json:"deviceId"`

	// LocalVersion is the version the caller last observed. When it is
	// lower than the server version the push is rejected as a conflict.
	LocalVersion *int64 `json:"localVersion,omitempty"`
}

// PushResult describes a successfully stored snapshot.
type PushResult struct {
	Version   int64     `json:"version"`
	Checksum  string    `json:"checksum"`
	Timestamp time.Time `json:"timestamp"`
}

// PullResult is what the sync engine returns for a pull.
//
// For the current version Meta holds the full record. For a historical
// version only Meta.Version is meaningful and Historical is set.
type PullResult struct {
	Data              json.RawMessage
	Meta              SyncMeta
	Historical        bool
	AvailableVersions []int64
}

// MetaResult is the lightweight status of a (user, application) pair.
type MetaResult struct {
	Exists            bool
	Meta              *SyncMeta
	AvailableVersions []int64
}

// PurgeResult reports how many stored objects a purge removed.
type PurgeResult struct {
	Deleted int `json:"deleted"`
}
