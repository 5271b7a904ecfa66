package grpc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/metrics"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/server/password"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"github.com/dmitrijs2005/usersvc/internal/timex"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "grpc-transport-test-secret"

type harness struct {
	client  api.AccountClient
	metrics *metrics.Metrics
	logs    *bytes.Buffer
}

// start serves s over an in-memory listener until the test ends.
func start(t *testing.T, s *GRPCServer) api.AccountClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return api.NewAccountClient(conn)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := timex.SystemClock{}
	issuer, err := auth.NewIssuer(auth.IssuerConfig{SecretKey: testSecret, Issuer: "usersvc", Expiry: time.Hour}, clock, nil)
	require.NoError(t, err)
	verifier, err := auth.NewVerifier(testSecret, "usersvc", clock)
	require.NoError(t, err)

	identity := services.NewIdentityService(users.NewMemoryRepository(), password.NewHasher(), password.NewPolicy(), issuer, clock, logging.Nop{})

	logs := &bytes.Buffer{}
	m := metrics.New()
	s := NewGRPCServer("bufnet", logging.New(logs, "debug"), identity, verifier, m)

	return &harness{client: start(t, s), metrics: m, logs: logs}
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

func errorInfos(t *testing.T, err error) []*errdetails.ErrorInfo {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)

	var out []*errdetails.ErrorInfo
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			out = append(out, info)
		}
	}
	return out
}

func TestSignUpSignInMe(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "new@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)

	tok, err := h.client.SignIn(ctx, &api.SignInRequest{Email: "new@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "new@x.com", tok.Email)
	assert.Greater(t, tok.Expires, time.Now().UnixMilli())

	me, err := h.client.Me(withToken(ctx, tok.AccessToken), &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, tok.ID, me.ID)
	assert.Equal(t, "new@x.com", me.Email)
	assert.True(t, me.IsActive)

	byID, err := h.client.GetUser(withToken(ctx, tok.AccessToken), &api.GetUserRequest{ID: tok.ID})
	require.NoError(t, err)
	assert.Equal(t, me.Email, byID.Email)
}

func TestSignUp_RoleAndClaimsReachToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	claims := models.NewClaims()
	claims.Add("perm", "a", "b")
	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "admin@x.com", Password: "P@ssw0rd1", Role: "Admin", Claims: claims})
	require.NoError(t, err)

	tok, err := h.client.SignIn(ctx, &api.SignInRequest{Email: "ADMIN@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", tok.Role)
	values, ok := tok.Claims.Get("perm")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, values)
}

func TestSignUp_DuplicateIsAlreadyExists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "dup@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)

	_, err = h.client.SignUp(ctx, &api.SignUpRequest{Email: "Dup@X.com", Password: "P@ssw0rd1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	infos := errorInfos(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "EmailInUse", infos[0].Reason)
	assert.Equal(t, ErrorDomain, infos[0].Domain)
	assert.Equal(t, "Email 'dup@x.com' is already in use.", infos[0].Metadata["message"])
}

func TestSignUp_WeakPasswordListsEveryRule(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.SignUp(context.Background(), &api.SignUpRequest{Email: "weak@x.com", Password: ""})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	st, _ := status.FromError(err)
	assert.Equal(t, password.NewPolicy().Verify("").Error(), st.Message())
	assert.True(t, strings.HasSuffix(st.Message(), password.MsgRequirements))
	assert.Equal(t, "PasswordPolicyViolation", errorInfos(t, err)[0].Reason)
}

func TestSignUp_InvalidEmailRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.SignUp(context.Background(), &api.SignUpRequest{Email: "not-an-email", Password: "P@ssw0rd1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "InvalidRequest", errorInfos(t, err)[0].Reason)
}

func TestSignUp_SurroundingWhitespaceAccepted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "  Pad@X.com ", Password: "P@ssw0rd1"})
	require.NoError(t, err)

	tok, err := h.client.SignIn(ctx, &api.SignInRequest{Email: "pad@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)
	assert.Equal(t, "pad@x.com", tok.Email)
}

func TestSignIn_FailuresIndistinguishable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "known@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)

	_, errUnknown := h.client.SignIn(ctx, &api.SignInRequest{Email: "ghost@x.com", Password: "P@ssw0rd1"})
	_, errWrong := h.client.SignIn(ctx, &api.SignInRequest{Email: "known@x.com", Password: "nope"})

	assert.Equal(t, codes.Unauthenticated, status.Code(errUnknown))
	assert.Equal(t, codes.Unauthenticated, status.Code(errWrong))
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, "InvalidCredentials", errorInfos(t, errWrong)[0].Reason)
}

func TestMe_RequiresValidToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.Me(ctx, &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.Me(withToken(ctx, "garbage"), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.GetUser(ctx, &api.GetUserRequest{ID: "6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGetUser_NotFoundAndMalformedID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "g@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)
	tok, err := h.client.SignIn(ctx, &api.SignInRequest{Email: "g@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)
	authed := withToken(ctx, tok.AccessToken)

	_, err = h.client.GetUser(authed, &api.GetUserRequest{ID: "6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.client.GetUser(authed, &api.GetUserRequest{ID: "42"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPing_RequestIDAndMetrics(t *testing.T) {
	h := newHarness(t)

	var header metadata.MD
	resp, err := h.client.Ping(context.Background(), &api.Empty{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)

	ids := header.Get(RequestIDHeader)
	require.Len(t, ids, 1)
	assert.Len(t, ids[0], 26)

	n, err := testutil.GatherAndCount(h.metrics.Registry(), "usersvc_grpc_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, h.logs.String(), ids[0])
}

type brokenIdentity struct{ err error }

func (b brokenIdentity) Lookup(context.Context, string) (*services.Identity, error) { return nil, b.err }
func (b brokenIdentity) SignUp(context.Context, services.SignUpDraft) error         { return b.err }
func (b brokenIdentity) SignIn(context.Context, services.Credentials) (*auth.Token, error) {
	return nil, b.err
}

func TestUnclassifiedFailureIsGeneric(t *testing.T) {
	logs := &bytes.Buffer{}
	s := NewGRPCServer("bufnet", logging.New(logs, "debug"),
		brokenIdentity{err: errors.New("db error: connection refused to 10.0.0.5")}, nil, nil)
	client := start(t, s)

	_, err := client.SignIn(context.Background(), &api.SignInRequest{Email: "a@x.com", Password: "x"})
	assert.Equal(t, codes.Internal, status.Code(err))

	st, _ := status.FromError(err)
	assert.Equal(t, "There was an error.", st.Message())
	assert.NotContains(t, err.Error(), "10.0.0.5")

	infos := errorInfos(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "error", infos[0].Reason)

	assert.Contains(t, logs.String(), "connection refused")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, brokenIdentity{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, brokenIdentity{}, nil, nil)

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
