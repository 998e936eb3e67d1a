// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package grpc exposes the sync engine as gosynckeeper.v1.SyncService.
//
// Messages are JSON encoded with the codec registered by this package, so
// the service has no protobuf definition. Callers authenticate with the same
// bearer token as the HTTP API, passed in the "authorization" metadata.
// Failures map to gRPC status codes and carry the sync error code in the
// "sync-code" trailer.
package grpc

import (
	"google.golang.org/grpc"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
)

// messageOverhead is the slack allowed on top of the payload limit for the
// request envelope.
const messageOverhead = 64 << 10

// Handler is the gRPC transport handler.
type Handler struct {
	services *service.Services

	maxMessageSize int

	logger *logger.Logger
}

// NewHandler constructs a [Handler]. The receive limit follows the sync
// payload limit.
func NewHandler(services *service.Services, cfg config.StructuredConfig, logger *logger.Logger) *Handler {
	maxPayload := cfg.Sync.MaxPayloadBytes
	if maxPayload <= 0 {
		maxPayload = config.DefaultMaxPayloadBytes
	}

	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services:       services,
		maxMessageSize: int(maxPayload*2 + messageOverhead),
		logger:         logger,
	}
}

// ServerOptions returns the options the gRPC server must be created with.
func (h *Handler) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(h.withLogging, h.withAuth),
		grpc.MaxRecvMsgSize(h.maxMessageSize),
	}
}

// Register attaches the sync service to s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&SyncServiceDesc, h)
}
