// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
)

const (
	authorizationKey = "authorization"
	traceIDKey       = "x-trace-id"
	maxTraceIDLength = 128
)

// withLogging attaches a request logger carrying trace_id and method, then
// logs the outcome of the call.
func (h *Handler) withLogging(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	traceID := firstMetadataValue(ctx, traceIDKey)
	if traceID == "" || len(traceID) > maxTraceIDLength {
		traceID = uuid.NewString()
	}

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID).Str("method", info.FullMethod)
	})
	ctx = l.WithContext(ctx)

	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	l.Info().
		Str("status", code.String()).
		Dur("duration", time.Since(start)).
		Msg("rpc handled")
	return resp, err
}

// withAuth resolves the bearer token from the authorization metadata into an
// identity stored in the context.
func (h *Handler) withAuth(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	tokenString, err := utils.ParseBearerToken(firstMetadataValue(ctx, authorizationKey))
	if err != nil {
		return nil, toStatus(ctx, fmt.Errorf("%w: %w", service.ErrTokenIsExpiredOrInvalid, err))
	}

	identity, err := h.services.AuthService.Authorize(ctx, tokenString)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return handler(utils.WithIdentity(ctx, identity), req)
}

func firstMetadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
