package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// accessTokenInterceptor guards every account method except Login. Other
// services on the server, such as health, pass through.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := info.Server.(AccountServiceServer); !ok || info.FullMethod == loginMethod {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, ok := s.account.VerifyToken(ctx, accessToken)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}

	return handler(context.WithValue(ctx, userKey, user), req)
}

func userFromContext(ctx context.Context) (*models.User, error) {
	u, ok := ctx.Value(userKey).(*models.User)
	if !ok || u == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return u, nil
}
