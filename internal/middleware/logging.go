package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	apperrors "github.com/looking-sharp/User-Authentication-Microservice/internal/errors"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"go.uber.org/zap"
)

// LoggingMiddleware logs HTTP requests through zap
func LoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			// param.Path carries the raw query, which may hold the admin code
			path := param.Request.URL.Path

			logger.LogRequest(
				param.Method,
				path,
				param.StatusCode,
				param.Latency.Milliseconds(),
				param.ClientIP,
				param.Request.UserAgent(),
			)

			if param.ErrorMessage != "" {
				logger.GetLogger().Error("Request error",
					zap.String("error", param.ErrorMessage),
					zap.String("method", param.Method),
					zap.String("path", path),
					zap.Int("status_code", param.StatusCode),
				)
			}

			if param.Latency > time.Second*2 {
				logger.GetLogger().Warn("Slow request detected",
					zap.String("method", param.Method),
					zap.String("path", path),
					zap.Duration("latency", param.Latency),
				)
			}

			return ""
		},
		Output: io.Discard,
		// probes and scrapes would drown the access log
		SkipPaths: []string{"/health", "/metrics"},
	})
}

// RecoveryMiddleware recovers from panics and logs them
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogPanic(recovered)

		c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildErrorResponse(
			constants.MsgInternalError, apperrors.CodeInternal, nil))
	})
}
