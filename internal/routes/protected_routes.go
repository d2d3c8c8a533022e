package routes

import (
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/admin"
	"it-solutions-hub/internal/auth"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/middlewares"
)

func RegisterProtectedRoutes(r *gin.Engine, controllerRegistry map[int]any, c *config.Configuration) {
	authGroup := r.Group("/admin")

	authGroup.Use(
		middlewares.CORSMiddleware(c.Admin.AllowedOrigins),
		middlewares.AuthHandler(c.Admin.SigningKey),
	)
	{
		// auth
		authApi := controllerRegistry[constants.Auth].(auth.Api)
		authGroup.POST("/token/refresh", authApi.RefreshToken)

		// record editor
		adminApi := controllerRegistry[constants.Admin].(admin.Api)
		authGroup.GET("/", adminApi.Entities)
		authGroup.GET("/:entity", adminApi.List)
		authGroup.POST("/:entity", adminApi.Create)
		authGroup.GET("/:entity/:id", adminApi.Get)
		authGroup.PUT("/:entity/:id", adminApi.Update)
		authGroup.DELETE("/:entity/:id", adminApi.Delete)
		authGroup.POST("/:entity/:id/image", adminApi.UploadImage)
	}
}
