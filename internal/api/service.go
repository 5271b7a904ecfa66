package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "usersvc.v1.AccountService"

// Full method names.
const (
	MethodSignUp  = "/" + ServiceName + "/SignUp"
	MethodSignIn  = "/" + ServiceName + "/SignIn"
	MethodMe      = "/" + ServiceName + "/Me"
	MethodGetUser = "/" + ServiceName + "/GetUser"
	MethodPing    = "/" + ServiceName + "/Ping"
)

// AccountServer is implemented by the gRPC transport.
type AccountServer interface {
	SignUp(context.Context, *SignUpRequest) (*Empty, error)
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	Me(context.Context, *Empty) (*UserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

func RegisterAccountServer(s grpc.ServiceRegistrar, srv AccountServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unary(MethodSignUp, AccountServer.SignUp)},
		{MethodName: "SignIn", Handler: unary(MethodSignIn, AccountServer.SignIn)},
		{MethodName: "Me", Handler: unary(MethodMe, AccountServer.Me)},
		{MethodName: "GetUser", Handler: unary(MethodGetUser, AccountServer.GetUser)},
		{MethodName: "Ping", Handler: unary(MethodPing, AccountServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "usersvc/v1/account.json",
}

// unary adapts a typed server method to grpc.MethodHandler, running it
// through the interceptor chain when one is installed.
func unary[Req, Resp any](fullMethod string, call func(AccountServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
