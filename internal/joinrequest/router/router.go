// Package router provides join request module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/volunhub/volunhub/internal/joinrequest/handler"
	"github.com/volunhub/volunhub/internal/joinrequest/repository"
	"github.com/volunhub/volunhub/internal/joinrequest/service"
	"github.com/volunhub/volunhub/internal/realtime"
)

// RegisterRoutes registers join request module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub realtime.Broadcaster, logger *zap.SugaredLogger) {
	repo := repository.New(db)
	svc := service.New(repo, db, hub, logger)
	h := handler.New(svc, logger)

	r.POST("/activities/:id/join-requests", h.Request)
	r.GET("/activities/:id/join-requests", h.ListByActivity)
	r.GET("/join-requests/:id", h.GetJoinRequest)
	r.POST("/join-requests/:id/approve", h.Approve)
	r.POST("/join-requests/:id/reject", h.Reject)
	r.POST("/join-requests/:id/withdraw", h.Withdraw)
}
