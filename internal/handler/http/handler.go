// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
)

// pushBodyOverhead is the slack allowed on top of the payload limit for the
// envelope and for whitespace that compaction removes later.
const pushBodyOverhead = 64 << 10

type Handler struct {
	services *service.Services

	cfg     config.Server
	hasher  *utils.Hasher
	limiter *userRateLimiter

	maxPushBody int64

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. The integrity check is enabled when
// cfg.App.HashKey is set and rate limiting when cfg.Server.RateLimit > 0.
func NewHandler(services *service.Services, cfg config.StructuredConfig, logger *logger.Logger) *Handler {
	h := &Handler{
		services:    services,
		cfg:         cfg.Server,
		limiter:     newUserRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
		maxPushBody: cfg.Sync.MaxPayloadBytes*2 + pushBodyOverhead,
		logger:      logger,
	}
	if cfg.App.HashKey != "" {
		h.hasher = utils.NewHasher(cfg.App.HashKey)
	}
	if cfg.Sync.MaxPayloadBytes <= 0 {
		h.maxPushBody = config.DefaultMaxPayloadBytes*2 + pushBodyOverhead
	}

	logger.Info().
		Bool("integrity_check", h.hasher != nil).
		Bool("rate_limit", h.limiter != nil).
		Msg("http handler created")
	return h
}
