// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const defaultDebounce = 500 * time.Millisecond

// WatchConfig describes one watched file.
type WatchConfig struct {
	Path     string
	AppID    string
	DeviceID string

	// Debounce is how long writes must settle before the file is pushed.
	Debounce time.Duration

	// LocalVersion is the version the file content is based on. Nil sends
	// the first push unconditionally.
	LocalVersion *int64
}

// FileWatcher pushes a JSON file to the server whenever it changes.
//
// Every push carries the last version the watcher knows about, so a change
// made on another device in the meantime is reported as a conflict instead
// of being overwritten. A conflict stops the watcher.
type FileWatcher struct {
	adapter adapter.ServerAdapter

	path     string
	appID    string
	deviceID string
	debounce time.Duration

	mu           sync.Mutex
	localVersion *int64
	lastChecksum string

	logger *logger.Logger
}

func NewFileWatcher(a adapter.ServerAdapter, cfg WatchConfig, logger *logger.Logger) (*FileWatcher, error) {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve watched path: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	w := &FileWatcher{
		adapter:  a,
		path:     path,
		appID:    cfg.AppID,
		deviceID: cfg.DeviceID,
		debounce: cfg.Debounce,
		logger:   logger,
	}
	if cfg.LocalVersion != nil {
		v := *cfg.LocalVersion
		w.localVersion = &v
	}
	return w, nil
}

// LocalVersion returns the last version known to be on the server for the
// watched content. ok is false before the first push.
func (w *FileWatcher) LocalVersion() (version int64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.localVersion == nil {
		return 0, false
	}
	return *w.localVersion, true
}

// Run watches the parent directory so editors that replace the file through
// a rename are followed too.
func (w *FileWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	if err = fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info().Str("path", w.path).Str("app", w.appID).Msg("watching file")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("file watcher error")

		case <-fire:
			fire = nil
			if err := w.pushFile(ctx); err != nil {
				var conflict *adapter.ConflictError
				if errors.As(err, &conflict) {
					w.logger.Error().
						Int64("local_version", conflict.LocalVersion).
						Int64("server_version", conflict.ServerVersion).
						Str("server_device", conflict.ServerDeviceID).
						Time("server_modified", conflict.ServerModified).
						Msg("push rejected, the server has newer data; pull before editing again")
					return err
				}
				w.logger.Warn().Err(err).Msg("push failed, waiting for the next change")
			}
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// pushFile uploads the current file content. Invalid JSON and content equal
// to the last pushed one are skipped.
func (w *FileWatcher) pushFile(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.path, err)
	}

	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		w.logger.Warn().Str("path", w.path).Msg("file is not valid JSON, skipping push")
		return nil
	}

	checksum := utils.Checksum(data)

	w.mu.Lock()
	if checksum == w.lastChecksum {
		w.mu.Unlock()
		return nil
	}
	req := models.PushRequest{Data: data, DeviceID: w.deviceID}
	if w.localVersion != nil {
		v := *w.localVersion
		req.LocalVersion = &v
	}
	w.mu.Unlock()

	resp, err := w.adapter.Push(ctx, w.appID, req)
	if err != nil {
		return err
	}

	w.mu.Lock()
	version := resp.Version
	w.localVersion = &version
	w.lastChecksum = checksum
	w.mu.Unlock()

	w.logger.Info().Int64("version", resp.Version).Str("checksum", resp.Checksum).Msg("pushed")
	return nil
}
