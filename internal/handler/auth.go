package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/dto"
	apperrors "github.com/looking-sharp/User-Authentication-Microservice/internal/errors"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/middleware"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/service"
	ctxutil "github.com/looking-sharp/User-Authentication-Microservice/pkg/context"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/metrics"
)

type AuthHandler struct {
	authService *service.AuthService
	metrics     *metrics.Metrics
}

func NewAuthHandler(authService *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// fail writes the error body for err and counts the failed operation
func (h *AuthHandler) fail(c *gin.Context, ctx context.Context, operation string, err error) {
	status := apperrors.ToHTTPStatus(err)
	code := apperrors.GetErrorCode(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorWithContext(ctx, "Request failed").
			String("operation", operation).
			Err(err).
			Log()
	} else {
		logger.InfoWithContext(ctx, "Request rejected").
			String("operation", operation).
			String("code", code).
			Log()
	}

	h.metrics.RecordAuth(operation, strings.ToLower(code))
	c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), code, nil))
}

func (h *AuthHandler) succeed(operation string) {
	h.metrics.RecordAuth(operation, "success")
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Register")

	req, ok := middleware.ValidatedBody[dto.RegisterRequest](c)
	if !ok {
		h.fail(c, ctx, "register", apperrors.ErrInvalidInput)
		return
	}

	response, err := h.authService.Register(ctx, req)
	if err != nil {
		h.fail(c, ctx, "register", err)
		return
	}

	h.succeed("register")
	c.JSON(http.StatusCreated, response)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Login")

	req, ok := middleware.ValidatedBody[dto.LoginRequest](c)
	if !ok {
		h.fail(c, ctx, "login", apperrors.ErrInvalidInput)
		return
	}

	response, err := h.authService.Login(ctx, req)
	if err != nil {
		h.fail(c, ctx, "login", err)
		return
	}

	h.succeed("login")
	c.JSON(http.StatusOK, response)
}

// Exists handles GET /auth/exists?email=
func (h *AuthHandler) Exists(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Exists")

	taken, err := h.authService.Exists(ctx, c.Query("email"))
	if err != nil {
		h.fail(c, ctx, "exists", err)
		return
	}

	message := constants.MsgEmailAvailable
	if taken {
		message = constants.MsgEmailTaken
	}

	h.succeed("exists")
	c.JSON(http.StatusOK, dto.ExistsResponse{Message: message, Exists: taken})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Logout")

	message, err := h.authService.Logout(ctx, middleware.BearerToken(c))
	if err != nil {
		h.fail(c, ctx, "logout", err)
		return
	}

	h.succeed("logout")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

// DeleteAccount handles POST /auth/delete-account
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "DeleteAccount")

	identity, err := h.authService.DeleteAccount(ctx, middleware.BearerToken(c))
	if err != nil {
		h.fail(c, ctx, "delete_account", err)
		return
	}

	h.succeed("delete_account")
	c.JSON(http.StatusOK, dto.DeleteAccountResponse{
		Message: constants.MsgAccountDeleted,
		User:    *identity,
	})
}

// Verify handles GET /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Verify")

	identity, err := h.authService.Verify(ctx, middleware.BearerToken(c))
	if err != nil {
		h.fail(c, ctx, "verify", err)
		return
	}

	h.succeed("verify")
	c.JSON(http.StatusOK, dto.VerifyResponse{Valid: true, User: *identity})
}

// UserByShortToken handles GET /auth/user-by-short/:short_token
func (h *AuthHandler) UserByShortToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UserByShortToken")

	user, err := h.authService.LookupByShortToken(ctx, c.Param("short_token"))
	if err != nil {
		h.fail(c, ctx, "lookup_short_token", err)
		return
	}

	h.succeed("lookup_short_token")
	c.JSON(http.StatusOK, user)
}
