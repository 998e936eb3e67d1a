// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// sqlBlobStore keeps blobs in the "blobs" table of a PostgreSQL or SQLite
// database. Metadata is stored as a JSON object in a text column.
type sqlBlobStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLBlobStore constructs a [BlobStore] backed by db.
func NewSQLBlobStore(db *DB, logger *logger.Logger) BlobStore {
	logger.Debug().Msg("creating sql blob store")
	return &sqlBlobStore{
		db:     db,
		logger: logger,
	}
}

func (s *sqlBlobStore) Get(ctx context.Context, key string) (models.Blob, error) {
	log := logger.FromContext(ctx)

	query, args, err := s.db.builder().
		Select(columnPayload, columnMetadata, columnSize, columnUpdatedAt).
		From(tableBlobs).
		Where(sq.Eq{columnBlobKey: key}).
		ToSql()
	if err != nil {
		return models.Blob{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	blob := models.Blob{Key: key}
	var metadata sql.NullString
	err = s.db.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, args...).
			Scan(&blob.Payload, &metadata, &blob.Size, &blob.UpdatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Blob{}, ErrBlobNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*sqlBlobStore.Get").Str("key", key).Msg("error reading blob")
		return models.Blob{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if metadata.Valid && metadata.String != "" {
		if err = json.Unmarshal([]byte(metadata.String), &blob.Metadata); err != nil {
			log.Err(err).Str("func", "*sqlBlobStore.Get").Str("key", key).Msg("error decoding blob metadata")
			return models.Blob{}, fmt.Errorf("error decoding blob metadata: %w", err)
		}
	}

	return blob, nil
}

func (s *sqlBlobStore) Put(ctx context.Context, blob models.Blob) error {
	log := logger.FromContext(ctx)

	metadata := []byte("{}")
	if len(blob.Metadata) > 0 {
		encoded, err := json.Marshal(blob.Metadata)
		if err != nil {
			return fmt.Errorf("error encoding blob metadata: %w", err)
		}
		metadata = encoded
	}

	updatedAt := blob.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query, args, err := s.db.builder().
		Insert(tableBlobs).
		Columns(columnBlobKey, columnPayload, columnMetadata, columnSize, columnUpdatedAt).
		Values(blob.Key, blob.Payload, string(metadata), int64(len(blob.Payload)), updatedAt).
		Suffix(upsertBlobSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = s.db.withRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", "*sqlBlobStore.Put").Str("key", blob.Key).Msg("error writing blob")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqlBlobStore) Delete(ctx context.Context, key string) error {
	query, args, err := s.db.builder().
		Delete(tableBlobs).
		Where(sq.Eq{columnBlobKey: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = s.db.withRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sqlBlobStore.Delete").Str("key", key).Msg("error deleting blob")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqlBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := s.db.builder().
		Select(columnBlobKey).
		From(tableBlobs).
		Where(sq.Expr(likePrefixExpr, escapeLike(prefix)+"%")).
		OrderBy(columnBlobKey).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var keys []string
	err = s.db.withRetry(ctx, func() error {
		keys = keys[:0]
		rows, queryErr := s.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if scanErr := rows.Scan(&key); scanErr != nil {
				return scanErr
			}
			// LIKE collation may be case-insensitive on some setups.
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		return rows.Err()
	})
	if err != nil {
		log.Err(err).Str("func", "*sqlBlobStore.List").Str("prefix", prefix).Msg("error listing blobs")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return keys, nil
}
