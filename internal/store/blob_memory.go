// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// memoryBlobStore keeps blobs in a map. It is used by tests and by servers
// started without any persistent backend.
type memoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]models.Blob
}

// NewMemoryBlobStore constructs an empty in-memory [BlobStore].
func NewMemoryBlobStore() BlobStore {
	return &memoryBlobStore{blobs: make(map[string]models.Blob)}
}

func (s *memoryBlobStore) Get(_ context.Context, key string) (models.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return models.Blob{}, ErrBlobNotFound
	}
	return cloneBlob(blob), nil
}

func (s *memoryBlobStore) Put(_ context.Context, blob models.Blob) error {
	blob = cloneBlob(blob)
	blob.Size = int64(len(blob.Payload))
	if blob.UpdatedAt.IsZero() {
		blob.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.blobs[blob.Key] = blob
	s.mu.Unlock()
	return nil
}

func (s *memoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

func (s *memoryBlobStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for key := range s.blobs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func cloneBlob(blob models.Blob) models.Blob {
	blob.Payload = slices.Clone(blob.Payload)
	blob.Metadata = maps.Clone(blob.Metadata)
	return blob
}
