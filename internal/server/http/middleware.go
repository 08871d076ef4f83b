package http

import (
	"time"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// RequireAuth resolves the caller through gate and stores the account on the
// request context. Requests that cannot be resolved are aborted.
func RequireAuth(gate AccessGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		account, err := gate.Resolve(ctx, c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(services.ContextWithAccount(ctx, account))
		c.Next()
	}
}

// RequestLogger writes one access log line per request. Headers are not
// logged.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			logger.Error(c.Request.Context(), "request failed", append(args, "errors", c.Errors.String())...)
			return
		}
		logger.Info(c.Request.Context(), "request completed", args...)
	}
}
