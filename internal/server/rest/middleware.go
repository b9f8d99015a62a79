package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

// Authorizer turns an Authorization header value into an authenticated
// context. auth.Gate implements it.
type Authorizer interface {
	Authorize(ctx context.Context, authorization string) (context.Context, error)
}

// Authenticate rejects requests without a valid bearer token with 401 and
// otherwise stores the verified claims in the request context.
func Authenticate(gate Authorizer, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := gate.Authorize(c.Request.Context(), c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			m.GateRejected(metrics.TransportHTTP)
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

const requestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and logs one line per request. Errors
// attached by handlers are logged with their oops attributes on 5xx.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id, _ = common.MakeRandHexString(8)
		}
		c.Header(requestIDHeader, id)

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		args := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client", c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			if err := c.Errors.Last(); err != nil {
				args = append(args, logging.ErrorAttrs(err.Err)...)
			}
			logger.Error(ctx, "request failed", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "request rejected", args...)
		default:
			logger.Info(ctx, "request served", args...)
		}
	}
}
