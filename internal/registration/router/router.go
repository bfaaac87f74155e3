// Package router provides registration module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/volunhub/volunhub/internal/realtime"
	"github.com/volunhub/volunhub/internal/registration/handler"
	"github.com/volunhub/volunhub/internal/registration/repository"
	"github.com/volunhub/volunhub/internal/registration/service"
)

// RegisterRoutes registers registration module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub realtime.Broadcaster, logger *zap.SugaredLogger) {
	repo := repository.New(db)
	svc := service.New(repo, db, hub, logger)
	h := handler.New(svc, logger)

	r.POST("/activities/:id/registrations", h.Register)
	r.GET("/activities/:id/registrations", h.ListByActivity)
	r.POST("/activities/:id/unban", h.Unban)
	r.GET("/registrations/:id", h.GetRegistration)
	r.DELETE("/registrations/:id", h.Withdraw)
	r.POST("/registrations/:id/remove", h.Remove)
	r.POST("/registrations/:id/ban", h.Ban)
	r.POST("/registrations/:id/checkin", h.CheckIn)
	r.POST("/registrations/:id/checkout", h.CheckOut)
}
