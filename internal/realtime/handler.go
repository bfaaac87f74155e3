package realtime

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler streams activity events to HTTP clients over server-sent events.
type Handler struct {
	hub    *Hub
	logger *zap.SugaredLogger
}

// NewHandler creates a new realtime handler instance.
func NewHandler(hub *Hub, logger *zap.SugaredLogger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Stream handles GET /activities/:id/events. The connection stays open until
// the client disconnects or the hub shuts down. Clients must re-fetch the
// slots snapshot after (re)connecting; the stream only carries deltas.
func (h *Handler) Stream(c *gin.Context) {
	activityID := c.Param("id")

	sub := h.hub.Subscribe(activityID)
	defer h.hub.Unsubscribe(sub)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.logger.Debugw("observer connected", "activity_id", activityID)

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.Debugw("observer disconnected", "activity_id", activityID)
}
