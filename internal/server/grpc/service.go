package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages on this service are google.protobuf.Struct values carrying the
// same JSON shapes as the REST API, so no generated code is needed.
const (
	serviceName = "accountkeeper.AccountService"

	loginMethod         = "/" + serviceName + "/Login"
	getProfileMethod    = "/" + serviceName + "/GetProfile"
	getBalanceMethod    = "/" + serviceName + "/GetBalance"
	updateProfileMethod = "/" + serviceName + "/UpdateProfile"
)

// AccountServiceServer is implemented by GRPCServer.
type AccountServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AccountServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(loginMethod, AccountServiceServer.Login)},
		{MethodName: "GetProfile", Handler: unaryHandler(getProfileMethod, AccountServiceServer.GetProfile)},
		{MethodName: "GetBalance", Handler: unaryHandler(getBalanceMethod, AccountServiceServer.GetBalance)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(updateProfileMethod, AccountServiceServer.UpdateProfile)},
	},
	Metadata: "accountkeeper/account.proto",
}

// AccountServiceClient calls the service over a client connection.
type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

func (c *AccountServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, loginMethod, in, opts...)
}

func (c *AccountServiceClient) GetProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getProfileMethod, in, opts...)
}

func (c *AccountServiceClient) GetBalance(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getBalanceMethod, in, opts...)
}

func (c *AccountServiceClient) UpdateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, updateProfileMethod, in, opts...)
}
