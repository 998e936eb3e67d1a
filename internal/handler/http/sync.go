// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const (
	appParam     = "app"
	versionQuery = "version"
)

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, errNoIdentity)
		return
	}

	result, err := h.services.SyncService.Pull(r.Context(), identity, chi.URLParam(r, appParam), r.URL.Query().Get(versionQuery))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var meta any = result.Meta
	if result.Historical {
		meta = models.VersionStub{Version: result.Meta.Version}
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		writeError(w, r, fmt.Errorf("encoding meta: %w", err))
		return
	}

	utils.WriteJSON(w, models.PullResponse{
		Success:           true,
		Data:              result.Data,
		Meta:              rawMeta,
		AvailableVersions: result.AvailableVersions,
	}, http.StatusOK)
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, errNoIdentity)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read push body")
		writeError(w, r, err)
		return
	}

	var req models.PushRequest
	if err = json.Unmarshal(body, &req); err != nil {
		log.Info().Err(err).Msg("invalid JSON was passed")
		writeError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidData, err))
		return
	}

	result, err := h.services.SyncService.Push(r.Context(), identity, chi.URLParam(r, appParam), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.PushResponse{
		Success:   true,
		Version:   result.Version,
		Checksum:  result.Checksum,
		Timestamp: result.Timestamp,
	}, http.StatusOK)
}

func (h *Handler) meta(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, errNoIdentity)
		return
	}

	result, err := h.services.SyncService.Meta(r.Context(), identity, chi.URLParam(r, appParam))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MetaResponse{
		Success:           true,
		Exists:            result.Exists,
		Meta:              result.Meta,
		AvailableVersions: result.AvailableVersions,
	}, http.StatusOK)
}

func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, errNoIdentity)
		return
	}

	result, err := h.services.SyncService.Purge(r.Context(), identity, chi.URLParam(r, appParam))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.PurgeResponse{Success: true, Deleted: result.Deleted}, http.StatusOK)
}
