// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
)

var errNoIdentity = errors.New("no identity in context")

// Trailer keys. The sync code is always sent so clients can tell apart
// failures sharing a gRPC status code.
const (
	trailerCode           = "sync-code"
	trailerServerVersion  = "sync-server-version"
	trailerServerModified = "sync-server-modified"
	trailerServerDeviceID = "sync-server-device-id"
)

var codeStatusMap = map[string]codes.Code{
	service.CodeUnauthorized:         codes.Unauthenticated,
	service.CodeSubscriptionRequired: codes.PermissionDenied,
	service.CodeInvalidApp:           codes.InvalidArgument,
	service.CodeInvalidData:          codes.InvalidArgument,
	service.CodeMissingDeviceID:      codes.InvalidArgument,
	service.CodeDataTooLarge:         codes.InvalidArgument,
	service.CodeInvalidVersion:       codes.InvalidArgument,
	service.CodeConflict:             codes.Aborted,
	service.CodeNoData:               codes.NotFound,
	service.CodeVersionNotFound:      codes.NotFound,
	service.CodeDataNotFound:         codes.NotFound,
	service.CodeRateLimited:          codes.ResourceExhausted,
	service.CodeSyncError:            codes.Internal,
}

func errorCode(err error) string {
	if errors.Is(err, errNoIdentity) {
		return service.CodeUnauthorized
	}
	return service.ErrorCode(err)
}

func statusCode(code string) codes.Code {
	if c, ok := codeStatusMap[code]; ok {
		return c
	}
	return codes.Internal
}

// toStatus converts a service error into a gRPC status error and attaches
// the sync code (and conflict state) as trailers.
func toStatus(ctx context.Context, err error) error {
	code := errorCode(err)
	grpcCode := statusCode(code)

	md := metadata.Pairs(trailerCode, code)
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		md.Append(trailerServerVersion, strconv.FormatInt(conflict.ServerVersion, 10))
		md.Append(trailerServerModified, conflict.ServerModified.UTC().Format(time.RFC3339Nano))
		md.Append(trailerServerDeviceID, conflict.ServerDeviceID)
	}
	if tErr := grpc.SetTrailer(ctx, md); tErr != nil {
		logger.FromContext(ctx).Debug().Err(tErr).Msg("failed to set trailer")
	}

	message := err.Error()
	if grpcCode == codes.Internal {
		logger.FromContext(ctx).Err(err).Str("code", code).Msg("rpc failed")
		message = "internal error"
	}
	return status.Error(grpcCode, message)
}
