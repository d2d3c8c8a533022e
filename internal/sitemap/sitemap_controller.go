package sitemap

import (
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/logging"
	"net/http"
	"time"
)

// Api serves the XML sitemap.
type Api interface {
	Sitemap(c *gin.Context)
}

// Controller answers /sitemap.xml.
type Controller struct {
	*environment.Env
	Generator Generator
	// BaseUrl prefixes every location; when empty the scheme and host of the request are used.
	BaseUrl string
	// TrustForwardedProto honours X-Forwarded-Proto when BaseUrl is empty. Enable only behind a proxy that sets it.
	TrustForwardedProto bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// ensure Controller implements Api
var _ Api = &Controller{}

func (sc *Controller) Sitemap(c *gin.Context) {
	now := time.Now
	if sc.Now != nil {
		now = sc.Now
	}

	items, err := sc.Generator.Items(c.Request.Context(), now())
	if err != nil {
		sc.LogErrorf(logging.GetLogType(constants.LogTypeSitemap), "error building sitemap: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	body, err := Marshal(sc.baseUrl(c), items)
	if err != nil {
		sc.LogErrorf(logging.GetLogType(constants.LogTypeSitemap), "error encoding sitemap: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (sc *Controller) baseUrl(c *gin.Context) string {
	if len(sc.BaseUrl) > 0 {
		return sc.BaseUrl
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if sc.TrustForwardedProto {
		switch proto := c.GetHeader("X-Forwarded-Proto"); proto {
		case "http", "https":
			scheme = proto
		}
	}
	return scheme + "://" + c.Request.Host
}
