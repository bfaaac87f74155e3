package realtime

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes registers the realtime event stream route.
func RegisterRoutes(r *gin.Engine, hub *Hub, logger *zap.SugaredLogger) {
	h := NewHandler(hub, logger)

	r.GET("/activities/:id/events", h.Stream)
}
