package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	apperrors "github.com/looking-sharp/User-Authentication-Microservice/internal/errors"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/validation"
	"go.uber.org/zap"
)

const ginKeyValidatedBody = "validated_body"

// maxBodyBytes bounds what the auth endpoints will read
const maxBodyBytes = 64 << 10

type ValidationMiddleware struct {
	validate *validator.Validate
}

func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateRequestBody decodes the JSON body into factory()'s value and checks
// its validate tags. A missing body decodes as an empty object so the handler
// can report required fields itself.
func (m *ValidationMiddleware) ValidateRequestBody(factory func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
			if err != nil || len(bodyBytes) > maxBodyBytes {
				abortInvalid(c, constants.MsgInvalidRequest, nil)
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		request := factory()

		if len(bytes.TrimSpace(bodyBytes)) > 0 {
			if err := json.Unmarshal(bodyBytes, request); err != nil {
				logger.GetLogger().Debug("Middleware: JSON unmarshaling failed",
					zap.String("path", c.Request.URL.Path),
					zap.Int("body_size", len(bodyBytes)),
					zap.Error(err),
				)
				abortInvalid(c, constants.MsgInvalidRequest, nil)
				return
			}
		}

		if err := m.validate.Struct(request); err != nil {
			messages := validation.Messages(err)
			if len(messages) == 0 {
				messages = []string{constants.MsgInvalidRequest}
			}

			logger.GetLogger().Debug("Middleware: Request validation failed",
				zap.String("path", c.Request.URL.Path),
				zap.Strings("validation_errors", messages),
			)
			abortInvalid(c, messages[0], messages)
			return
		}

		c.Set(ginKeyValidatedBody, request)
		c.Next()
	}
}

func abortInvalid(c *gin.Context, message string, details []string) {
	var d any
	if len(details) > 1 {
		d = details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(message, apperrors.CodeInvalidInput, d))
}

// ValidatedBody returns the request decoded by ValidateRequestBody
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	value, exists := c.Get(ginKeyValidatedBody)
	if !exists {
		return nil, false
	}
	request, ok := value.(*T)
	return request, ok
}
