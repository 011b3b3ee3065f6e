package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ResolverServiceName is the fully qualified gRPC service name.
const ResolverServiceName = "mirador.resolver.v1.Resolver"

// Full method names, as they appear on the wire.
const (
	MethodOpen              = "/" + ResolverServiceName + "/Open"
	MethodClose             = "/" + ResolverServiceName + "/Close"
	MethodShowConsent       = "/" + ResolverServiceName + "/ShowConsent"
	MethodToggleConsent     = "/" + ResolverServiceName + "/ToggleConsent"
	MethodConfirmAttempt    = "/" + ResolverServiceName + "/ConfirmAttempt"
	MethodEscalate          = "/" + ResolverServiceName + "/Escalate"
	MethodToggleIncludeLogs = "/" + ResolverServiceName + "/ToggleIncludeLogs"
	MethodSubmitTicket      = "/" + ResolverServiceName + "/SubmitTicket"
	MethodGetSnapshot       = "/" + ResolverServiceName + "/GetSnapshot"
	MethodRecordFailure     = "/" + ResolverServiceName + "/RecordFailure"
	MethodClearFailures     = "/" + ResolverServiceName + "/ClearFailures"
)

// ResolverServer is the server API for the Resolver service. Messages are
// well-known protobuf types so no generated code is needed on either side.
type ResolverServer interface {
	Open(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Close(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ShowConsent(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ToggleConsent(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ConfirmAttempt(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Escalate(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ToggleIncludeLogs(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SubmitTicket(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RecordFailure(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearFailures(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// UnimplementedResolverServer can be embedded to satisfy ResolverServer.
type UnimplementedResolverServer struct{}

func (UnimplementedResolverServer) Open(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Open not implemented")
}
func (UnimplementedResolverServer) Close(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Close not implemented")
}
func (UnimplementedResolverServer) ShowConsent(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ShowConsent not implemented")
}
func (UnimplementedResolverServer) ToggleConsent(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleConsent not implemented")
}
func (UnimplementedResolverServer) ConfirmAttempt(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmAttempt not implemented")
}
func (UnimplementedResolverServer) Escalate(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Escalate not implemented")
}
func (UnimplementedResolverServer) ToggleIncludeLogs(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleIncludeLogs not implemented")
}
func (UnimplementedResolverServer) SubmitTicket(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitTicket not implemented")
}
func (UnimplementedResolverServer) GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSnapshot not implemented")
}
func (UnimplementedResolverServer) RecordFailure(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordFailure not implemented")
}
func (UnimplementedResolverServer) ClearFailures(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearFailures not implemented")
}

// RegisterResolverServer attaches srv to the gRPC registrar.
func RegisterResolverServer(s grpc.ServiceRegistrar, srv ResolverServer) {
	s.RegisterService(&ResolverServiceDesc, srv)
}

func emptyMethod(name, fullMethod string, call func(ResolverServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(emptypb.Empty)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ResolverServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ResolverServer), ctx, req.(*emptypb.Empty))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func structMethod[Out any](name, fullMethod string, call func(ResolverServer, context.Context, *structpb.Struct) (Out, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ResolverServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ResolverServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ResolverServiceDesc describes the Resolver service for grpc.ServiceRegistrar.
var ResolverServiceDesc = grpc.ServiceDesc{
	ServiceName: ResolverServiceName,
	HandlerType: (*ResolverServer)(nil),
	Methods: []grpc.MethodDesc{
		structMethod("Open", MethodOpen, ResolverServer.Open),
		emptyMethod("Close", MethodClose, ResolverServer.Close),
		emptyMethod("ShowConsent", MethodShowConsent, ResolverServer.ShowConsent),
		emptyMethod("ToggleConsent", MethodToggleConsent, ResolverServer.ToggleConsent),
		emptyMethod("ConfirmAttempt", MethodConfirmAttempt, ResolverServer.ConfirmAttempt),
		emptyMethod("Escalate", MethodEscalate, ResolverServer.Escalate),
		emptyMethod("ToggleIncludeLogs", MethodToggleIncludeLogs, ResolverServer.ToggleIncludeLogs),
		emptyMethod("SubmitTicket", MethodSubmitTicket, ResolverServer.SubmitTicket),
		emptyMethod("GetSnapshot", MethodGetSnapshot, ResolverServer.GetSnapshot),
		structMethod("RecordFailure", MethodRecordFailure, ResolverServer.RecordFailure),
		structMethod("ClearFailures", MethodClearFailures, ResolverServer.ClearFailures),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mirador/resolver/v1/resolver.proto",
}

// ResolverClient calls a remote Resolver service.
type ResolverClient struct {
	cc grpc.ClientConnInterface
}

// NewResolverClient wraps an established connection.
func NewResolverClient(cc grpc.ClientConnInterface) *ResolverClient {
	return &ResolverClient{cc: cc}
}

// Open starts a session for the given failure.
func (c *ResolverClient) Open(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodOpen, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Command invokes one of the argument-less session commands, for example MethodEscalate.
func (c *ResolverClient) Command(ctx context.Context, method string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordFailure reports a failed feature interaction.
func (c *ResolverClient) RecordFailure(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodRecordFailure, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearFailures forgets the failure history of a feature.
func (c *ResolverClient) ClearFailures(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MethodClearFailures, in, new(emptypb.Empty), opts...)
}
