package routes

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/routing"
	"it-solutions-hub/internal/site"
)

// InitRouter registers every route. The public site is dispatched by the route table
// from NoRoute, so fixed prefixes (admin, media, sitemap.xml, status) always take precedence over slugs.
func InitRouter(engine *gin.Engine, controllerRegistry map[int]any, c *config.Configuration) error {
	RegisterUtilityRoutes(engine, controllerRegistry)
	RegisterPublicRoutes(engine, controllerRegistry, c)
	RegisterProtectedRoutes(engine, controllerRegistry, c)

	siteApi := controllerRegistry[constants.Site].(site.Api)
	table, err := routing.NewRouteTable(routing.SitePatterns, siteApi.Handlers(), siteApi.NotFound)
	if err != nil {
		return fmt.Errorf("building site routes: %w", err)
	}
	engine.NoRoute(table.Dispatch)

	return nil
}
