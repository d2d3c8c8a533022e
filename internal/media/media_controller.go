package media

import (
	"errors"
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/logging"
	"net/http"
	"strings"
)

// Api serves uploaded originals and their derived variants.
type Api interface {
	Serve(c *gin.Context)
}

// Controller answers /media/*path.
type Controller struct {
	*environment.Env
	Store *Store
}

// ensure Controller implements Api
var _ Api = &Controller{}

// Serve answers /media/derived/<spec>/<path> with the variant, computing it on first request,
// and any other /media/<path> with the original.
func (mc *Controller) Serve(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")

	if rest, ok := strings.CutPrefix(rel, derivedDir+"/"); ok {
		spec, source, found := strings.Cut(rest, "/")
		if !found {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		file, err := mc.Store.Derived(c.Request.Context(), spec, source)
		if err != nil {
			mc.fail(c, rel, err)
			return
		}
		c.Header("Content-Type", "image/jpeg")
		c.File(file)
		return
	}

	// the cache is only reachable through derived URLs
	if strings.HasPrefix(rel, cacheDir+"/") {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	file, err := mc.Store.Original(rel)
	if err != nil {
		mc.fail(c, rel, err)
		return
	}
	c.File(file)
}

func (mc *Controller) fail(c *gin.Context, rel string, err error) {
	if IsNotFound(err) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if errors.Is(err, c.Request.Context().Err()) {
		c.Abort()
		return
	}
	mc.LogErrorf(logging.GetLogType(constants.LogTypeMedia, rel), "error serving media: %v", err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
