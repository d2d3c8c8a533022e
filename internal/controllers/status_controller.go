package controllers

import (
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/api"
	"it-solutions-hub/internal/environment"
	"net/http"
)

type StatusApi interface {
	GetHeartBeat(c *gin.Context)
	GetStatus(c *gin.Context)
}

// StatusController answers the liveness and readiness probes.
type StatusController struct {
	*environment.Env
}

// ensure StatusController implements StatusApi
var _ StatusApi = &StatusController{}

func (sc *StatusController) GetHeartBeat(c *gin.Context) {
	c.AbortWithStatus(http.StatusOK)
}

// GetStatus reports "running" while the database answers, 503 otherwise.
func (sc *StatusController) GetStatus(c *gin.Context) {
	if err := sc.Ping(c.Request.Context()); err != nil {
		sc.LogWarnf(nil, "status: database unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, api.NewErrorResponse("database unreachable"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "running", nil))
}
