// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// Storages bundles every store the server needs.
type Storages struct {
	BlobStore              BlobStore
	UserRepository         UserRepository
	SubscriptionRepository SubscriptionRepository

	db *DB
}

// NewStorages builds the stores selected by cfg.
//
// Accounts live in the database whenever a DSN is configured, otherwise in
// memory. The blob backend is chosen independently by cfg.BlobBackend.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	s := &Storages{}

	if cfg.DB.DSN != "" {
		db, err := NewConnectDB(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err = db.Migrate(); err != nil {
			log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
			db.Close()
			return nil, err
		}

		s.db = db
		s.UserRepository = NewUserRepository(db, log)
		s.SubscriptionRepository = NewSubscriptionRepository(db, log)
	} else {
		accounts := newMemoryAccounts()
		s.UserRepository = accounts
		s.SubscriptionRepository = accounts
	}

	switch cfg.BlobBackend {
	case config.BlobBackendSQL:
		if s.db == nil {
			s.Close()
			return nil, fmt.Errorf("%w: sql blob backend requires a database", ErrUnknownBackend)
		}
		s.BlobStore = NewSQLBlobStore(s.db, log)
	case config.BlobBackendFile:
		blobs, err := NewFileBlobStore(cfg.Files.BinaryDataDir, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.BlobStore = blobs
	case config.BlobBackendMemory, "":
		s.BlobStore = NewMemoryBlobStore()
	default:
		s.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.BlobBackend)
	}

	log.Info().Str("blob_backend", cfg.BlobBackend).Bool("database", s.db != nil).Msg("storages initialized")
	return s, nil
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
