package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	apperrors "github.com/looking-sharp/User-Authentication-Microservice/internal/errors"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"go.uber.org/zap"
)

// AdminGate admits requests carrying the admin code in X-Admin-Code or the
// "code" query parameter. An empty configured code hides the admin pages.
func AdminGate(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if code == "" {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		supplied := c.GetHeader(constants.HeaderXAdminCode)
		if supplied == "" {
			supplied = c.Query("code")
		}

		if subtle.ConstantTimeCompare([]byte(supplied), []byte(code)) != 1 {
			logger.GetLogger().Warn("Admin access denied",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(
				constants.MsgAdminUnauthorized, apperrors.CodeUnauthorized, nil))
			return
		}

		c.Next()
	}
}
