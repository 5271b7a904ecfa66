package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      api.AccountClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAccountClientService dials endpointURL lazily; the first call opens the
// connection.
func NewAccountClientService(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewAccountClient(conn)
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, req *api.SignUpRequest) error {

	if _, err := s.client.SignUp(ctx, req); err != nil {
		return s.mapError(err)
	}

	return nil

}

// SignIn stores the returned access token for later calls.
func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*api.TokenResponse, error) {

	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()

	return resp, nil

}

func (s *GRPCClient) SignedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) SignOut() {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()
}

func (s *GRPCClient) Me(ctx context.Context) (*api.UserResponse, error) {

	resp, err := s.client.Me(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) GetUser(ctx context.Context, id string) (*api.UserResponse, error) {

	resp, err := s.client.GetUser(ctx, &api.GetUserRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	}

	var details []Detail
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			details = append(details, Detail{Code: info.Reason, Message: info.Metadata["message"]})
		}
	}

	if len(details) == 0 {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return ErrUnauthorized
		case codes.NotFound:
			return ErrNotFound
		}
		details = []Detail{{Code: st.Code().String(), Message: st.Message()}}
	}

	return &ServerError{Status: st.Code(), Details: details}
}
