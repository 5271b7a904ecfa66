package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeServer records the access token of the last call and returns preset
// results.
type fakeServer struct {
	lastToken string

	signUpErr error
	signIn    *api.TokenResponse
	signInErr error
	me        *api.UserResponse
	meErr     error
	pingResp  string
}

func (f *fakeServer) record(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		f.lastToken = v[0]
	} else {
		f.lastToken = ""
	}
}

func (f *fakeServer) SignUp(ctx context.Context, _ *api.SignUpRequest) (*api.Empty, error) {
	f.record(ctx)
	return &api.Empty{}, f.signUpErr
}

func (f *fakeServer) SignIn(ctx context.Context, _ *api.SignInRequest) (*api.TokenResponse, error) {
	f.record(ctx)
	return f.signIn, f.signInErr
}

func (f *fakeServer) Me(ctx context.Context, _ *api.Empty) (*api.UserResponse, error) {
	f.record(ctx)
	return f.me, f.meErr
}

func (f *fakeServer) GetUser(ctx context.Context, req *api.GetUserRequest) (*api.UserResponse, error) {
	f.record(ctx)
	return f.me, f.meErr
}

func (f *fakeServer) Ping(ctx context.Context, _ *api.Empty) (*api.PingResponse, error) {
	f.record(ctx)
	return &api.PingResponse{Status: f.pingResp}, nil
}

func newTestClient(t *testing.T, f *fakeServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	api.RegisterAccountServer(srv, f)
	go func() { _ = srv.Serve(lis) }()

	c := &GRPCClient{endpointURL: "passthrough:///bufnet"}
	require.NoError(t, c.InitGRPCClient(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})))

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
	})
	return c
}

func domainStatus(code codes.Code, reason, message string) error {
	st := status.New(code, message)
	st, _ = st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Metadata: map[string]string{"message": message}})
	return st.Err()
}

func TestSignIn_StoresTokenForLaterCalls(t *testing.T) {
	f := &fakeServer{
		signIn: &api.TokenResponse{AccessToken: "tok-1", Email: "a@x.com"},
		me:     &api.UserResponse{ID: "u1", Email: "a@x.com"},
	}
	c := newTestClient(t, f)
	ctx := context.Background()

	require.False(t, c.SignedIn())
	_, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.lastToken)

	tok, err := c.SignIn(ctx, "a@x.com", "P@ssw0rd1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)
	assert.True(t, c.SignedIn())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
	assert.Equal(t, "tok-1", f.lastToken)

	c.SignOut()
	_, err = c.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, f.lastToken)
}

func TestSignUp_DomainErrorBecomesServerError(t *testing.T) {
	f := &fakeServer{signUpErr: domainStatus(codes.AlreadyExists, "EmailInUse", "Email 'a@x.com' is already in use.")}
	c := newTestClient(t, f)

	err := c.SignUp(context.Background(), &api.SignUpRequest{Email: "a@x.com", Password: "P@ssw0rd1"})

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, codes.AlreadyExists, se.Status)
	assert.True(t, se.HasCode("EmailInUse"))
	assert.Equal(t, "Email 'a@x.com' is already in use.", se.Error())
}

func TestSignIn_InvalidCredentialsMatchesUnauthorized(t *testing.T) {
	f := &fakeServer{signInErr: domainStatus(codes.Unauthenticated, "InvalidCredentials", "Invalid credentials.")}
	c := newTestClient(t, f)

	_, err := c.SignIn(context.Background(), "a@x.com", "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials.", err.Error())
	assert.False(t, c.SignedIn())
}

func TestMe_PlainStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing token", status.Error(codes.Unauthenticated, "missing token"), ErrUnauthorized},
		{"not found", status.Error(codes.NotFound, "not found"), ErrNotFound},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeServer{meErr: tt.err})
			_, err := c.Me(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapError_GenericInternal(t *testing.T) {
	c := &GRPCClient{}
	err := c.mapError(domainStatus(codes.Internal, "error", "There was an error."))

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.HasCode("error"))
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestMapError_NonStatus(t *testing.T) {
	c := &GRPCClient{}
	assert.Nil(t, c.mapError(nil))
	assert.ErrorContains(t, c.mapError(errors.New("x")), "rpc error")
}

func TestPing(t *testing.T) {
	c := newTestClient(t, &fakeServer{pingResp: "OK"})
	assert.NoError(t, c.Ping(context.Background()))

	c = newTestClient(t, &fakeServer{pingResp: "DEGRADED"})
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}
