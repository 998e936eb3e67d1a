// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/paths"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/internal/validators"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// SelectorCurrent selects the latest snapshot in [SyncService.Pull].
const SelectorCurrent = "current"

// syncService implements [SyncService] on top of a [store.BlobStore].
//
// It keeps no state between calls. Concurrent pushes to the same pair are
// only coordinated through the optimistic localVersion check.
type syncService struct {
	blobs     store.BlobStore
	validator validators.Validator
	schemas   *validators.Schemas

	maxPayloadBytes int64
	retention       int
	pruneWorkers    int

	now    func() time.Time
	logger *logger.Logger
}

// SyncOption customizes a sync service built by [NewSyncService].
type SyncOption func(*syncService)

// WithSchemas enables per-application payload schemas.
func WithSchemas(schemas *validators.Schemas) SyncOption {
	return func(s *syncService) {
		s.schemas = schemas
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SyncOption {
	return func(s *syncService) {
		s.now = now
	}
}

// NewSyncService constructs the sync engine. Zero limits in cfg fall back
// to the package defaults.
func NewSyncService(blobs store.BlobStore, cfg config.Sync, logger *logger.Logger, opts ...SyncOption) SyncService {
	s := &syncService{
		blobs:           blobs,
		validator:       validators.NewSyncValidator(),
		maxPayloadBytes: cfg.MaxPayloadBytes,
		retention:       cfg.HistoryRetention,
		pruneWorkers:    cfg.PruneWorkers,
		now:             time.Now,
		logger:          logger,
	}
	if s.maxPayloadBytes <= 0 {
		s.maxPayloadBytes = config.DefaultMaxPayloadBytes
	}
	if s.retention <= 0 {
		s.retention = config.DefaultHistoryRetention
	}
	if s.pruneWorkers <= 0 {
		s.pruneWorkers = config.DefaultPruneWorkers
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *syncService) Push(ctx context.Context, identity models.Identity, appID string, req models.PushRequest) (models.PushResult, error) {
	log := logger.FromContext(ctx).GetChildLogger()
	log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int64("user_id", identity.UserID).Str("app_id", appID)
	})

	if err := s.authorize(identity, appID); err != nil {
		return models.PushResult{}, err
	}

	if err := s.validator.Validate(ctx, req, validators.FieldData, validators.FieldDeviceID); err != nil {
		if errors.Is(err, validators.ErrMissingDeviceID) {
			return models.PushResult{}, fmt.Errorf("%w: %w", ErrMissingDeviceID, err)
		}
		return models.PushResult{}, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, req.Data); err != nil {
		return models.PushResult{}, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	payload := compacted.Bytes()

	if int64(len(payload)) > s.maxPayloadBytes {
		log.Warn().Int("size", len(payload)).Int64("limit", s.maxPayloadBytes).Msg("push rejected: payload too large")
		return models.PushResult{}, fmt.Errorf("%w: %d bytes, limit is %d", ErrDataTooLarge, len(payload), s.maxPayloadBytes)
	}

	if err := s.schemas.Validate(ctx, appID, payload); err != nil {
		return models.PushResult{}, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	keys := paths.For(identity.UserID, appID)

	prior, hasPrior, err := s.readMeta(ctx, keys)
	if err != nil {
		return models.PushResult{}, err
	}

	if hasPrior && req.LocalVersion != nil && *req.LocalVersion < prior.Version {
		log.Info().Int64("local_version", *req.LocalVersion).Int64("server_version", prior.Version).Msg("push rejected: conflict")
		return models.PushResult{}, &ConflictError{
			LocalVersion:   *req.LocalVersion,
			ServerVersion:  prior.Version,
			ServerModified: prior.LastModified,
			ServerDeviceID: prior.DeviceID,
		}
	}

	newVersion := int64(1)
	if hasPrior {
		newVersion = prior.Version + 1

		if err = s.archiveCurrent(ctx, keys, prior); err != nil {
			return models.PushResult{}, err
		}
		s.pruneHistory(ctx, keys)
	}

	now := s.now().UTC()
	meta := models.SyncMeta{
		Version:      newVersion,
		LastModified: now,
		DeviceID:     req.DeviceID,
		Checksum:     utils.Checksum(payload),
		Size:         int64(len(payload)),
	}

	err = s.blobs.Put(ctx, models.Blob{
		Key:      keys.Current(),
		Payload:  payload,
		Metadata: versionMetadata(newVersion, now),
	})
	if err != nil {
		log.Err(err).Msg("error writing current snapshot")
		return models.PushResult{}, fmt.Errorf("%w: writing current snapshot: %w", ErrSyncFailed, err)
	}

	// current and meta are written separately; a failure here leaves
	// current one version ahead of meta until the next successful push.
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return models.PushResult{}, fmt.Errorf("%w: encoding meta: %w", ErrSyncFailed, err)
	}
	if err = s.blobs.Put(ctx, models.Blob{Key: keys.Meta(), Payload: rawMeta}); err != nil {
		log.Err(err).Msg("error writing meta record")
		return models.PushResult{}, fmt.Errorf("%w: writing meta: %w", ErrSyncFailed, err)
	}

	log.Info().Int64("version", newVersion).Int64("size", meta.Size).Str("device_id", req.DeviceID).Msg("snapshot pushed")

	return models.PushResult{
		Version:   newVersion,
		Checksum:  meta.Checksum,
		Timestamp: now,
	}, nil
}

func (s *syncService) Pull(ctx context.Context, identity models.Identity, appID string, selector string) (models.PullResult, error) {
	if err := s.authorize(identity, appID); err != nil {
		return models.PullResult{}, err
	}

	keys := paths.For(identity.UserID, appID)

	meta, ok, err := s.readMeta(ctx, keys)
	if err != nil {
		return models.PullResult{}, err
	}
	if !ok {
		return models.PullResult{}, ErrNoData
	}

	history, err := s.historyVersions(ctx, keys)
	if err != nil {
		return models.PullResult{}, err
	}
	available := availableVersions(meta.Version, history)

	version, isCurrent, err := resolveSelector(selector, meta.Version, history)
	if err != nil {
		return models.PullResult{}, err
	}

	key := keys.Current()
	if !isCurrent {
		key = keys.History(version)
	}

	blob, err := s.blobs.Get(ctx, key)
	if errors.Is(err, store.ErrBlobNotFound) {
		logger.FromContext(ctx).Error().Str("key", key).Msg("meta references a missing snapshot")
		return models.PullResult{}, ErrDataNotFound
	}
	if err != nil {
		return models.PullResult{}, fmt.Errorf("%w: reading snapshot: %w", ErrSyncFailed, err)
	}

	result := models.PullResult{
		Data:              blob.Payload,
		Meta:              meta,
		AvailableVersions: available,
	}
	if !isCurrent {
		result.Meta = models.SyncMeta{Version: version}
		result.Historical = true
	}

	return result, nil
}

func (s *syncService) Meta(ctx context.Context, identity models.Identity, appID string) (models.MetaResult, error) {
	if err := s.authorize(identity, appID); err != nil {
		return models.MetaResult{}, err
	}

	keys := paths.For(identity.UserID, appID)

	meta, ok, err := s.readMeta(ctx, keys)
	if err != nil {
		return models.MetaResult{}, err
	}
	if !ok {
		return models.MetaResult{Exists: false, AvailableVersions: []int64{}}, nil
	}

	history, err := s.historyVersions(ctx, keys)
	if err != nil {
		return models.MetaResult{}, err
	}

	return models.MetaResult{
		Exists:            true,
		Meta:              &meta,
		AvailableVersions: availableVersions(meta.Version, history),
	}, nil
}

func (s *syncService) Purge(ctx context.Context, identity models.Identity, appID string) (models.PurgeResult, error) {
	if err := s.authorize(identity, appID); err != nil {
		return models.PurgeResult{}, err
	}

	keys := paths.For(identity.UserID, appID)

	stored, err := s.blobs.List(ctx, keys.Prefix())
	if err != nil {
		return models.PurgeResult{}, fmt.Errorf("%w: listing keys: %w", ErrSyncFailed, err)
	}
	if len(stored) == 0 {
		return models.PurgeResult{}, nil
	}

	// Meta goes first so concurrent readers see NoData rather than a
	// half-deleted history.
	if slices.Contains(stored, keys.Meta()) {
		if err = s.blobs.Delete(ctx, keys.Meta()); err != nil {
			return models.PurgeResult{}, fmt.Errorf("%w: deleting meta: %w", ErrSyncFailed, err)
		}
	}

	p := pool.New().WithErrors().WithMaxGoroutines(s.pruneWorkers)
	for _, key := range stored {
		if key == keys.Meta() {
			continue
		}
		p.Go(func() error {
			return s.blobs.Delete(ctx, key)
		})
	}
	if err = p.Wait(); err != nil {
		logger.FromContext(ctx).Err(err).Str("app_id", appID).Msg("purge incomplete")
		return models.PurgeResult{}, fmt.Errorf("%w: deleting snapshots: %w", ErrSyncFailed, err)
	}

	logger.FromContext(ctx).Info().Int64("user_id", identity.UserID).Str("app_id", appID).Int("deleted", len(stored)).Msg("sync data purged")
	return models.PurgeResult{Deleted: len(stored)}, nil
}

func (s *syncService) authorize(identity models.Identity, appID string) error {
	if !paths.ValidAppID(appID) {
		return ErrInvalidApp
	}
	if !identity.Entitled(appID) {
		return ErrSubscriptionRequired
	}
	return nil
}

// readMeta loads the meta record. ok is false when the record is missing
// or unreadable; a corrupt record is logged and treated as absent.
func (s *syncService) readMeta(ctx context.Context, keys paths.Keys) (models.SyncMeta, bool, error) {
	blob, err := s.blobs.Get(ctx, keys.Meta())
	if errors.Is(err, store.ErrBlobNotFound) {
		return models.SyncMeta{}, false, nil
	}
	if err != nil {
		return models.SyncMeta{}, false, fmt.Errorf("%w: reading meta: %w", ErrSyncFailed, err)
	}

	var meta models.SyncMeta
	if err = json.Unmarshal(blob.Payload, &meta); err != nil || meta.Version < 1 {
		logger.FromContext(ctx).Warn().Err(err).Str("key", keys.Meta()).Msg("corrupt meta record ignored")
		return models.SyncMeta{}, false, nil
	}

	return meta, true, nil
}

// archiveCurrent copies the current snapshot to history(prior.Version).
// A missing current snapshot is skipped; any other failure aborts the push
// before anything was overwritten.
func (s *syncService) archiveCurrent(ctx context.Context, keys paths.Keys, prior models.SyncMeta) error {
	current, err := s.blobs.Get(ctx, keys.Current())
	if errors.Is(err, store.ErrBlobNotFound) {
		logger.FromContext(ctx).Warn().Int64("version", prior.Version).Msg("current snapshot missing, history entry skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading current snapshot: %w", ErrSyncFailed, err)
	}

	archivedAt := prior.LastModified
	if archivedAt.IsZero() {
		archivedAt = s.now().UTC()
	}

	err = s.blobs.Put(ctx, models.Blob{
		Key:      keys.History(prior.Version),
		Payload:  current.Payload,
		Metadata: versionMetadata(prior.Version, archivedAt),
	})
	if err != nil {
		return fmt.Errorf("%w: archiving version %d: %w", ErrSyncFailed, prior.Version, err)
	}

	return nil
}

// pruneHistory deletes the oldest history entries beyond the retention
// limit. Failures are logged and never fail the push.
func (s *syncService) pruneHistory(ctx context.Context, keys paths.Keys) {
	log := logger.FromContext(ctx)

	versions, err := s.historyVersions(ctx, keys)
	if err != nil {
		log.Warn().Err(err).Msg("history listing failed, pruning skipped")
		return
	}
	if len(versions) <= s.retention {
		return
	}

	p := pool.New().WithErrors().WithMaxGoroutines(s.pruneWorkers)
	for _, version := range versions[s.retention:] {
		p.Go(func() error {
			return s.blobs.Delete(ctx, keys.History(version))
		})
	}
	if err = p.Wait(); err != nil {
		log.Warn().Err(err).Msg("history pruning failed")
		return
	}

	log.Debug().Int("pruned", len(versions)-s.retention).Msg("history pruned")
}

// historyVersions lists the versions present in history, newest first.
// Keys that do not parse as a version are ignored.
func (s *syncService) historyVersions(ctx context.Context, keys paths.Keys) ([]int64, error) {
	stored, err := s.blobs.List(ctx, keys.HistoryPrefix())
	if err != nil {
		return nil, fmt.Errorf("%w: listing history: %w", ErrSyncFailed, err)
	}

	versions := make([]int64, 0, len(stored))
	for _, key := range stored {
		if version, ok := paths.ParseHistoryVersion(key); ok {
			versions = append(versions, version)
		}
	}
	slices.Sort(versions)
	slices.Reverse(versions)

	return slices.Compact(versions), nil
}

// availableVersions prepends the current version to the history versions.
func availableVersions(current int64, history []int64) []int64 {
	versions := make([]int64, 0, len(history)+1)
	versions = append(versions, current)
	for _, version := range history {
		if version != current {
			versions = append(versions, version)
		}
	}
	return versions
}

// resolveSelector maps a pull selector onto a version. isCurrent is true
// when the current snapshot was selected.
func resolveSelector(selector string, current int64, history []int64) (version int64, isCurrent bool, err error) {
	if selector == "" || selector == SelectorCurrent {
		return current, true, nil
	}

	version, err = strconv.ParseInt(selector, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidVersion, selector)
	}

	switch {
	case version == current:
		return current, true, nil
	case slices.Contains(history, version):
		return version, false, nil
	default:
		return 0, false, fmt.Errorf("%w: %d", ErrVersionNotFound, version)
	}
}

func versionMetadata(version int64, at time.Time) map[string]string {
	return map[string]string{
		models.BlobMetaVersion:   strconv.FormatInt(version, 10),
		models.BlobMetaTimestamp: at.UTC().Format(time.RFC3339Nano),
	}
}
