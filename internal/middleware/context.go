package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	ctxutil "github.com/looking-sharp/User-Authentication-Microservice/pkg/context"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
)

// ContextMiddleware seeds the request context with tracking values, echoes
// the request id and bounds the request with timeout
func ContextMiddleware(module string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.NewRequestContext(c.Request.Context(), c.Request, c.ClientIP())
		ctx = ctxutil.NewContextWithRequest(ctx, module, c.FullPath())

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, ctxutil.GetRequestID(ctx))

		c.Next()

		logger.DebugWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}
