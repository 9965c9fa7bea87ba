package router

import (
	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/middleware"
)

func (r *Router) adminRoutes(engine *gin.Engine) {
	admin := engine.Group("/admin")
	admin.Use(middleware.AdminGate(r.Config.Admin.Code))
	{
		admin.GET("", r.adminHandler.Tester)
		admin.GET("/users", r.adminHandler.Users)
	}
}
