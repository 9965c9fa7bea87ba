package router

import (
	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/dto"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/middleware"
)

func (r *Router) authRoutes(engine *gin.Engine) {
	auth := engine.Group("/auth")
	auth.Use(middleware.CORS(r.Config.CORS.AllowedOrigins))
	{
		// Public routes
		auth.POST("/register",
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.RegisterRequest{} }),
			r.authHandler.Register,
		)
		auth.POST("/login",
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.LoginRequest{} }),
			r.authHandler.Login,
		)
		auth.GET("/exists", r.authHandler.Exists)
		auth.GET("/user-by-short/:short_token", r.authHandler.UserByShortToken)

		// Bearer token required
		protected := auth.Group("")
		protected.Use(middleware.RequireBearer())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.POST("/delete-account", r.authHandler.DeleteAccount)
			protected.GET("/verify", r.authHandler.Verify)
		}
	}

	// Preflight requests never match a registered method, so answer them here.
	auth.OPTIONS("/*path", func(c *gin.Context) {})
}
