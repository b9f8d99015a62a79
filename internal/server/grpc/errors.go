package grpc

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type codeMapping struct {
	target  error
	code    codes.Code
	message string
}

const internalMessage = "Internal server error"

// codeTable mirrors the HTTP mapping; the first match wins.
var codeTable = []codeMapping{
	{common.ErrorInternal, codes.Internal, internalMessage},
	{common.ErrorValidation, codes.InvalidArgument, "Validation failed"},
	{common.ErrorAlreadyExists, codes.AlreadyExists, "Email already registered"},
	{common.ErrInvalidCredentials, codes.Unauthenticated, "Invalid credentials"},
	{common.ErrorUnauthorized, codes.Unauthenticated, "Unauthorized"},
	{common.ErrInvalidToken, codes.Unauthenticated, "Unauthorized"},
	{common.ErrTokenExpired, codes.Unauthenticated, "Unauthorized"},
	{common.ErrorNotFound, codes.NotFound, "User not found"},
	{common.ErrTooManyAttempts, codes.ResourceExhausted, "Too many login attempts, try again later"},
}

// toStatus converts a service error into a gRPC status error. Validation
// failures carry an errdetails.BadRequest with one violation per field.
func toStatus(err error) error {
	code, message := codes.Internal, internalMessage
	for _, m := range codeTable {
		if errors.Is(err, m.target) {
			code, message = m.code, m.message
			break
		}
	}

	st := status.New(code, message)

	var ve *common.ValidationError
	if code == codes.InvalidArgument && errors.As(err, &ve) {
		br := &errdetails.BadRequest{}
		for _, f := range ve.Fields {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f.Field,
				Description: f.Message,
			})
		}
		if withDetails, derr := st.WithDetails(br); derr == nil {
			st = withDetails
		}
	}

	return st.Err()
}
