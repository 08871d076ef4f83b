package grpc

import (
	"context"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// protectedMethods require a resolved caller.
var protectedMethods = map[string]bool{
	WhoAmIFullMethod: true,
}

// accessGateInterceptor resolves the caller of protected methods from the
// "authorization" metadata and attaches the account to the context.
func (s *GRPCServer) accessGateInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var authorization string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			authorization = values[0]
		}
	}

	account, err := s.gate.Resolve(ctx, authorization)
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(services.ContextWithAccount(ctx, account), req)
}
