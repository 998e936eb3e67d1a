// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/mock"
	"github.com/MKhiriev/go-sync-keeper/models"
)

func newTestWatcher(t *testing.T, a adapter.ServerAdapter, localVersion *int64) (*FileWatcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	w, err := NewFileWatcher(a, WatchConfig{
		Path:         path,
		AppID:        "notes",
		DeviceID:     "laptop",
		Debounce:     20 * time.Millisecond,
		LocalVersion: localVersion,
	}, logger.Nop())
	require.NoError(t, err)
	return w, path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// ── pushFile ────────────────────────────────────────────────────────────────

func TestPushFile_TracksLocalVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockServerAdapter(ctrl)

	start := int64(4)
	w, path := newTestWatcher(t, a, &start)

	gomock.InOrder(
		a.EXPECT().Push(gomock.Any(), "notes", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, req models.PushRequest) (models.PushResponse, error) {
				assert.Equal(t, "laptop", req.DeviceID)
				assert.JSONEq(t, `{"a":1}`, string(req.Data))
				require.NotNil(t, req.LocalVersion)
				assert.Equal(t, int64(4), *req.LocalVersion)
				return models.PushResponse{Success: true, Version: 5}, nil
			}),
		a.EXPECT().Push(gomock.Any(), "notes", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, req models.PushRequest) (models.PushResponse, error) {
				require.NotNil(t, req.LocalVersion)
				assert.Equal(t, int64(5), *req.LocalVersion)
				return models.PushResponse{Success: true, Version: 6}, nil
			}),
	)

	writeFile(t, path, `{"a":1}`)
	require.NoError(t, w.pushFile(context.Background()))

	v, ok := w.LocalVersion()
	require.True(t, ok)
	assert.Equal(t, int64(5), v)

	writeFile(t, path, `{"a":2}`)
	require.NoError(t, w.pushFile(context.Background()))

	v, _ = w.LocalVersion()
	assert.Equal(t, int64(6), v)
}

func TestPushFile_FirstPushWithoutLocalVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockServerAdapter(ctrl)
	w, path := newTestWatcher(t, a, nil)

	a.EXPECT().Push(gomock.Any(), "notes", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.PushRequest) (models.PushResponse, error) {
			assert.Nil(t, req.LocalVersion)
			return models.PushResponse{Version: 1}, nil
		})

	_, ok := w.LocalVersion()
	assert.False(t, ok)

	writeFile(t, path, `[1,2]`)
	require.NoError(t, w.pushFile(context.Background()))
}

func TestPushFile_Skips(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockServerAdapter(ctrl)
	w, path := newTestWatcher(t, a, nil)

	// only the first valid content reaches the server
	a.EXPECT().Push(gomock.Any(), "notes", gomock.Any()).Return(models.PushResponse{Version: 1}, nil).Times(1)

	writeFile(t, path, `{"half":`)
	require.NoError(t, w.pushFile(context.Background()), "invalid JSON is skipped")

	writeFile(t, path, `{"a":1}`)
	require.NoError(t, w.pushFile(context.Background()))

	writeFile(t, path, "{\"a\":1}\n")
	require.NoError(t, w.pushFile(context.Background()), "unchanged content is skipped")
}

func TestPushFile_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	w, _ := newTestWatcher(t, mock.NewMockServerAdapter(ctrl), nil)

	assert.ErrorIs(t, w.pushFile(context.Background()), os.ErrNotExist)
}

func TestPushFile_FailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockServerAdapter(ctrl)
	start := int64(2)
	w, path := newTestWatcher(t, a, &start)

	a.EXPECT().Push(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.PushResponse{}, adapter.ErrServer)
	a.EXPECT().Push(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.PushResponse{Version: 3}, nil)

	writeFile(t, path, `{"a":1}`)
	require.ErrorIs(t, w.pushFile(context.Background()), adapter.ErrServer)

	v, _ := w.LocalVersion()
	assert.Equal(t, int64(2), v)

	// the same content is retried on the next change
	require.NoError(t, w.pushFile(context.Background()))
	v, _ = w.LocalVersion()
	assert.Equal(t, int64(3), v)
}

// ── Run ─────────────────────────────────────────────────────────────────────

func TestRun_PushesOnChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockServerAdapter(ctrl)
	w, path := newTestWatcher(t, a, nil)

	pushed := make(chan models.PushRequest, 4)
	a.EXPECT().Push(gomock.Any(), "notes", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.PushRequest) (models.PushResponse, error) {
			pushed <- req
			return models.PushResponse{Version: 1}, nil
		}).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, `{"note":"hello"}`)

	select {
	case req := <-pushed:
		assert.JSONEq(t, `{"note":"hello"}`, string(req.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("file was not pushed")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_StopsOnConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockServerAdapter(ctrl)
	start := int64(1)
	w, path := newTestWatcher(t, a, &start)

	a.EXPECT().Push(gomock.Any(), "notes", gomock.Any()).
		Return(models.PushResponse{}, &adapter.ConflictError{LocalVersion: 1, ServerVersion: 3, ServerDeviceID: "phone"})

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, `{"a":1}`)

	select {
	case err := <-done:
		require.True(t, errors.Is(err, adapter.ErrConflict), "got %v", err)
		var conflict *adapter.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, int64(3), conflict.ServerVersion)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on conflict")
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	w, err := NewFileWatcher(mock.NewMockServerAdapter(ctrl), WatchConfig{
		Path: filepath.Join(t.TempDir(), "nope", "notes.json"),
	}, logger.Nop())
	require.NoError(t, err)

	assert.Error(t, w.Run(context.Background()))
}
