// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// ServiceName is the fully qualified name of the sync service.
const ServiceName = "gosynckeeper.v1.SyncService"

// Full method names, as seen by interceptors and clients.
const (
	PushMethod  = "/" + ServiceName + "/Push"
	PullMethod  = "/" + ServiceName + "/Pull"
	MetaMethod  = "/" + ServiceName + "/Meta"
	PurgeMethod = "/" + ServiceName + "/Purge"
)

// SyncServiceServer is implemented by [Handler].
type SyncServiceServer interface {
	Push(context.Context, *PushRequest) (*models.PushResponse, error)
	Pull(context.Context, *PullRequest) (*models.PullResponse, error)
	Meta(context.Context, *MetaRequest) (*models.MetaResponse, error)
	Purge(context.Context, *PurgeRequest) (*models.PurgeResponse, error)
}

// SyncServiceDesc describes the service for grpc.Server.RegisterService.
// There is no protobuf definition: messages travel through the JSON codec.
var SyncServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Push", Handler: pushHandler},
		{MethodName: "Pull", Handler: pullHandler},
		{MethodName: "Meta", Handler: metaHandler},
		{MethodName: "Purge", Handler: purgeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gosynckeeper/v1/sync.json",
}

func pushHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PushRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Push(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PushMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Push(ctx, req.(*PushRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pullHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PullRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Pull(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Pull(ctx, req.(*PullRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func metaHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MetaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Meta(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MetaMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Meta(ctx, req.(*MetaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func purgeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PurgeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Purge(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PurgeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Purge(ctx, req.(*PurgeRequest))
	}
	return interceptor(ctx, in, info, handler)
}
