// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Blob metadata keys written next to history snapshots.
const (
	BlobMetaVersion   = "version"
	BlobMetaTimestamp = "timestamp"
)

// Blob is a single object held by a blob store.
type Blob struct {
	Key       string
	Payload   []byte
	Metadata  map[string]string
	Size      int64
	UpdatedAt time.Time
}
