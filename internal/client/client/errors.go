package client

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a failed call as reported by the server.
type APIError struct {
	Code    codes.Code
	Message string
	Fields  []common.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Unauthenticated:
		return ErrUnauthorized
	}
	return nil
}

func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	apiErr := &APIError{Code: st.Code(), Message: st.Message()}
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				apiErr.Fields = append(apiErr.Fields, common.FieldError{Field: v.GetField(), Message: v.GetDescription()})
			}
		}
	}
	return apiErr
}
