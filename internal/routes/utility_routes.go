package routes

import (
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/controllers"
)

func RegisterUtilityRoutes(r *gin.Engine, controllerRegistry map[int]any) {
	statusApi := controllerRegistry[constants.Status].(controllers.StatusApi)
	r.GET("/heartbeat", statusApi.GetHeartBeat)
	r.GET("/status", statusApi.GetStatus)
}
