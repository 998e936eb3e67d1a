// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

// SyncServiceWrapper decorates a SyncService with extra behavior such as
// metrics.
//
// It lives outside interfaces.go so the generated mocks stay free of a
// dependency on this package.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService
}
