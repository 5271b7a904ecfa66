package grpc

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/apierror"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is set on every ErrorInfo detail.
const ErrorDomain = "usersvc"

var kindCodes = map[common.Kind]codes.Code{
	common.KindEmailInUse:              codes.AlreadyExists,
	common.KindPasswordPolicyViolation: codes.InvalidArgument,
	common.KindInvalidRequest:          codes.InvalidArgument,
	common.KindInvalidCredentials:      codes.Unauthenticated,
	common.KindUserNotActive:           codes.PermissionDenied,
	common.KindMissingSubject:          codes.FailedPrecondition,
	common.KindUserNotFound:            codes.NotFound,
}

func codeFor(kind common.Kind) codes.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return codes.Internal
}

// toStatus converts a workflow error into a gRPC status carrying one
// ErrorInfo per translated entry. Unclassified errors are logged here and
// never reach the caller.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	resp := apierror.Translate(err)
	if !resp.Classified() {
		s.logger.Error(ctx, "unclassified failure",
			"request_id", requestIDFromContext(ctx),
			"error", err.Error())
	}

	st := status.New(codeFor(resp.Kind), resp.Errors[0].Message)
	for _, e := range resp.Errors {
		withDetail, derr := st.WithDetails(&errdetails.ErrorInfo{
			Reason:   e.Code,
			Domain:   ErrorDomain,
			Metadata: map[string]string{"message": e.Message},
		})
		if derr != nil {
			break
		}
		st = withDetail
	}
	return st.Err()
}
