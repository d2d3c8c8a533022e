package routes

import (
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/auth"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/media"
	"it-solutions-hub/internal/middlewares"
	"it-solutions-hub/internal/sitemap"
)

func RegisterPublicRoutes(r *gin.Engine, controllerRegistry map[int]any, c *config.Configuration) {
	sitemapApi := controllerRegistry[constants.Sitemap].(sitemap.Api)
	r.GET("/sitemap.xml", sitemapApi.Sitemap)

	mediaApi := controllerRegistry[constants.Media].(media.Api)
	r.GET(media.UrlPrefix+"*path", mediaApi.Serve)
	r.HEAD(media.UrlPrefix+"*path", mediaApi.Serve)

	// preflight requests of the admin front end, answered by the CORS middleware
	r.OPTIONS("/admin/*path", middlewares.CORSMiddleware(c.Admin.AllowedOrigins))

	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/admin/login", middlewares.CORSMiddleware(c.Admin.AllowedOrigins), authApi.Login)
}
