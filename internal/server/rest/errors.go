package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Details []common.FieldError `json:"details,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	message string
}

const internalMessage = "Internal server error"

// errorTable maps service errors to responses. Order matters: the first
// match wins, and internal errors are checked before anything else because
// they may wrap other sentinels.
var errorTable = []errorMapping{
	{common.ErrorInternal, http.StatusInternalServerError, internalMessage},
	{common.ErrorValidation, http.StatusBadRequest, "Validation failed"},
	{common.ErrorAlreadyExists, http.StatusConflict, "Email already registered"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrorNotFound, http.StatusNotFound, "User not found"},
	{common.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many login attempts, try again later"},
}

// statusFor returns the HTTP status and public message for err. Unknown
// errors are treated as internal.
func statusFor(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, internalMessage
}

// writeError aborts the request with the mapped response. The original
// error is attached to the gin context for the request logger.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, message := statusFor(err)
	resp := errorResponse{Error: message}

	var ve *common.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &ve) {
		resp.Details = ve.Fields
	}

	c.AbortWithStatusJSON(status, resp)
}
