// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

func (h *Handler) Push(ctx context.Context, in *PushRequest) (*models.PushResponse, error) {
	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		return nil, toStatus(ctx, errNoIdentity)
	}

	result, err := h.services.SyncService.Push(ctx, identity, in.AppID, in.PushRequest)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &models.PushResponse{
		Success:   true,
		Version:   result.Version,
		Checksum:  result.Checksum,
		Timestamp: result.Timestamp,
	}, nil
}

// Pull answers like GET /sync/{app}/pull: historical snapshots carry only
// the version in Meta.
func (h *Handler) Pull(ctx context.Context, in *PullRequest) (*models.PullResponse, error) {
	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		return nil, toStatus(ctx, errNoIdentity)
	}

	result, err := h.services.SyncService.Pull(ctx, identity, in.AppID, in.Version)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	var meta any = result.Meta
	if result.Historical {
		meta = models.VersionStub{Version: result.Meta.Version}
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, toStatus(ctx, fmt.Errorf("encoding meta: %w", err))
	}

	return &models.PullResponse{
		Success:           true,
		Data:              result.Data,
		Meta:              rawMeta,
		AvailableVersions: result.AvailableVersions,
	}, nil
}

func (h *Handler) Meta(ctx context.Context, in *MetaRequest) (*models.MetaResponse, error) {
	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		return nil, toStatus(ctx, errNoIdentity)
	}

	result, err := h.services.SyncService.Meta(ctx, identity, in.AppID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &models.MetaResponse{
		Success:           true,
		Exists:            result.Exists,
		Meta:              result.Meta,
		AvailableVersions: result.AvailableVersions,
	}, nil
}

func (h *Handler) Purge(ctx context.Context, in *PurgeRequest) (*models.PurgeResponse, error) {
	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		return nil, toStatus(ctx, errNoIdentity)
	}

	result, err := h.services.SyncService.Purge(ctx, identity, in.AppID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &models.PurgeResponse{Success: true, Deleted: result.Deleted}, nil
}
