package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "credentials.v1.AccountService"

	RegisterFullMethod     = "/" + ServiceName + "/Register"
	AuthenticateFullMethod = "/" + ServiceName + "/Authenticate"
	WhoAmIFullMethod       = "/" + ServiceName + "/WhoAmI"
)

// AccountServiceServer is the server API of credentials.v1.AccountService.
// Payloads are google.protobuf.Struct objects with the same field names as
// the HTTP API.
type AccountServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler: unaryHandler(RegisterFullMethod, newStruct, func(s AccountServiceServer, ctx context.Context, req any) (any, error) {
				return s.Register(ctx, req.(*structpb.Struct))
			}),
		},
		{
			MethodName: "Authenticate",
			Handler: unaryHandler(AuthenticateFullMethod, newStruct, func(s AccountServiceServer, ctx context.Context, req any) (any, error) {
				return s.Authenticate(ctx, req.(*structpb.Struct))
			}),
		},
		{
			MethodName: "WhoAmI",
			Handler: unaryHandler(WhoAmIFullMethod, newEmpty, func(s AccountServiceServer, ctx context.Context, req any) (any, error) {
				return s.WhoAmI(ctx, req.(*emptypb.Empty))
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "credentials/v1/account.proto",
}

func newStruct() any { return new(structpb.Struct) }
func newEmpty() any  { return new(emptypb.Empty) }

type unaryCall func(s AccountServiceServer, ctx context.Context, req any) (any, error)

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler(fullMethod string, newReq func() any, call unaryCall) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}
