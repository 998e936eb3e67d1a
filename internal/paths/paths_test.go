// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package paths

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_Layout(t *testing.T) {
	k := For(42, "notes")

	assert.Equal(t, "sync/42/notes/", k.Prefix())
	assert.Equal(t, "sync/42/notes/current.json", k.Current())
	assert.Equal(t, "sync/42/notes/meta.json", k.Meta())
	assert.Equal(t, "sync/42/notes/history/", k.HistoryPrefix())
	assert.Equal(t, "sync/42/notes/history/7.json", k.History(7))
}

func TestFor_Deterministic(t *testing.T) {
	assert.Equal(t, For(1, "a"), For(1, "a"))
}

func TestFor_NoCollisions(t *testing.T) {
	pairs := []struct {
		user int64
		app  string
	}{
		{1, "notes"}, {2, "notes"}, {1, "notes2"}, {12, "notes"}, {1, "2-notes"},
	}

	seen := map[string]bool{}
	for _, p := range pairs {
		k := For(p.user, p.app)
		for _, key := range []string{k.Current(), k.Meta(), k.History(1)} {
			assert.False(t, seen[key], "duplicate key %s", key)
			seen[key] = true
		}
	}

	// a pair's keys never fall under another pair's prefix
	a, b := For(1, "notes"), For(1, "notes2")
	assert.False(t, strings.HasPrefix(b.Current(), a.Prefix()))
}

func TestParseHistoryVersion(t *testing.T) {
	tests := []struct {
		key    string
		want   int64
		wantOK bool
	}{
		{key: "sync/1/notes/history/3.json", want: 3, wantOK: true},
		{key: "sync/1/notes/history/120.json", want: 120, wantOK: true},
		{key: "3.json", want: 3, wantOK: true},
		{key: "sync/1/notes/history/abc.json", wantOK: false},
		{key: "sync/1/notes/history/3.txt", wantOK: false},
		{key: "sync/1/notes/history/.json", wantOK: false},
		{key: "sync/1/notes/history/0.json", wantOK: false},
		{key: "sync/1/notes/history/-2.json", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ParseHistoryVersion(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidAppID(t *testing.T) {
	assert.True(t, ValidAppID("notes"))
	assert.True(t, ValidAppID("my_app-2.0"))
	assert.False(t, ValidAppID(""))
	assert.False(t, ValidAppID("."))
	assert.False(t, ValidAppID(".."))
	assert.False(t, ValidAppID("a/b"))
	assert.False(t, ValidAppID(strings.Repeat("a", 65)))
}
