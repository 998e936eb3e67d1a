// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package paths maps a (user, application) pair to the blob store keys that
// hold its sync state.
//
// Layout:
//
//	sync/{userID}/{appID}/current.json
//	sync/{userID}/{appID}/meta.json
//	sync/{userID}/{appID}/history/{version}.json
//
// Every key is namespaced by user and application, so two pairs never share
// a key as long as appID is a valid application id (see [ValidAppID]).
package paths

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	root             = "sync"
	currentName      = "current.json"
	metaName         = "meta.json"
	historyDir       = "history"
	historyExtension = ".json"
)

var appIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidAppID reports whether appID may be used as a key segment.
// "." and ".." are rejected so ids can never walk a file system layout.
func ValidAppID(appID string) bool {
	if appID == "." || appID == ".." {
		return false
	}
	return appIDPattern.MatchString(appID)
}

// Keys holds the storage keys of one (user, application) pair.
type Keys struct {
	prefix string
}

// For returns the keys of the given pair. It does no I/O and never fails.
func For(userID int64, appID string) Keys {
	return Keys{prefix: root + "/" + strconv.FormatInt(userID, 10) + "/" + appID + "/"}
}

// Prefix is the common prefix of every key of the pair.
func (k Keys) Prefix() string {
	return k.prefix
}

// Current is the key of the latest snapshot.
func (k Keys) Current() string {
	return k.prefix + currentName
}

// Meta is the key of the metadata record.
func (k Keys) Meta() string {
	return k.prefix + metaName
}

// HistoryPrefix is the prefix under which historical snapshots live.
func (k Keys) HistoryPrefix() string {
	return k.prefix + historyDir + "/"
}

// History is the key of the snapshot stored for version.
func (k Keys) History(version int64) string {
	return k.HistoryPrefix() + strconv.FormatInt(version, 10) + historyExtension
}

// ParseHistoryVersion extracts the version from a history key. Keys that
// do not end in "{integer}.json" report ok == false.
func ParseHistoryVersion(key string) (version int64, ok bool) {
	name := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		name = key[i+1:]
	}

	digits, found := strings.CutSuffix(name, historyExtension)
	if !found || digits == "" {
		return 0, false
	}

	version, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || version < 1 {
		return 0, false
	}

	return version, true
}
