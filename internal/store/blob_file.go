// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// fileBlobStore maps blob keys onto files below root.
//
// Metadata of "dir/name" lives in the hidden sidecar "dir/.name.meta".
// Payloads are written to a temporary file and renamed into place, so a
// reader never observes a partially written object.
type fileBlobStore struct {
	root   string
	logger *logger.Logger

	// mu serializes writers of the same store. Renames are atomic already,
	// the lock keeps the payload and its sidecar consistent.
	mu sync.RWMutex
}

// NewFileBlobStore constructs a [BlobStore] rooted at dir. The directory is
// created if it does not exist.
func NewFileBlobStore(dir string, logger *logger.Logger) (BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Err(err).Str("func", "NewFileBlobStore").Msg("error creating blob directory")
		return nil, fmt.Errorf("error creating blob directory: %w", err)
	}

	logger.Debug().Str("dir", dir).Msg("creating file blob store")
	return &fileBlobStore{
		root:   dir,
		logger: logger,
	}, nil
}

func (s *fileBlobStore) Get(ctx context.Context, key string) (models.Blob, error) {
	name, err := s.resolve(key)
	if err != nil {
		return models.Blob{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Blob{}, ErrBlobNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*fileBlobStore.Get").Str("key", key).Msg("error reading blob")
		return models.Blob{}, fmt.Errorf("error reading blob: %w", err)
	}

	info, err := os.Stat(name)
	if err != nil {
		return models.Blob{}, fmt.Errorf("error reading blob: %w", err)
	}

	blob := models.Blob{
		Key:       key,
		Payload:   payload,
		Size:      int64(len(payload)),
		UpdatedAt: info.ModTime().UTC(),
	}

	raw, err := os.ReadFile(sidecarName(name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return models.Blob{}, fmt.Errorf("error reading blob metadata: %w", err)
	default:
		if err = json.Unmarshal(raw, &blob.Metadata); err != nil {
			return models.Blob{}, fmt.Errorf("error decoding blob metadata: %w", err)
		}
	}

	return blob, nil
}

func (s *fileBlobStore) Put(ctx context.Context, blob models.Blob) error {
	name, err := s.resolve(blob.Key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = os.MkdirAll(filepath.Dir(name), 0o700); err != nil {
		return fmt.Errorf("error creating blob directory: %w", err)
	}

	meta := sidecarName(name)
	if len(blob.Metadata) > 0 {
		raw, err := json.Marshal(blob.Metadata)
		if err != nil {
			return fmt.Errorf("error encoding blob metadata: %w", err)
		}
		if err = writeFileAtomic(meta, raw); err != nil {
			return err
		}
	} else if err = os.Remove(meta); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error removing blob metadata: %w", err)
	}

	if err = writeFileAtomic(name, blob.Payload); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*fileBlobStore.Put").Str("key", blob.Key).Msg("error writing blob")
		return err
	}

	return nil
}

func (s *fileBlobStore) Delete(ctx context.Context, key string) error {
	name, err := s.resolve(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range []string{name, sidecarName(name)} {
		if err = os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.FromContext(ctx).Err(err).Str("func", "*fileBlobStore.Delete").Str("key", key).Msg("error deleting blob")
			return fmt.Errorf("error deleting blob: %w", err)
		}
	}

	return nil
}

func (s *fileBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk only the deepest directory fully contained in prefix.
	start := s.root
	if dir := path.Dir(prefix); dir != "." && !strings.HasPrefix(dir, "/") && !strings.Contains(dir, "..") {
		start = filepath.Join(s.root, filepath.FromSlash(dir))
	}

	var keys []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*fileBlobStore.List").Str("prefix", prefix).Msg("error listing blobs")
		return nil, fmt.Errorf("error listing blobs: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// resolve maps key onto a path below root.
func (s *fileBlobStore) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	// Hidden base names are reserved for sidecars and temporary files.
	if segments := strings.Split(key, "/"); slices.Contains(segments, "..") ||
		strings.HasPrefix(segments[len(segments)-1], ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func sidecarName(name string) string {
	return filepath.Join(filepath.Dir(name), "."+filepath.Base(name)+".meta")
}

func writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err = os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("error moving file into place: %w", err)
	}

	return nil
}
