// Package router provides activity module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/volunhub/volunhub/internal/activity/handler"
	"github.com/volunhub/volunhub/internal/activity/repository"
	"github.com/volunhub/volunhub/internal/activity/service"
)

// RegisterRoutes registers activity module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	r.POST("/activities", h.CreateActivity)
	r.GET("/activities", h.ListActivities)
	r.GET("/activities/:id", h.GetActivity)
	r.PATCH("/activities/:id/capacity", h.UpdateCapacity)
	r.GET("/activities/:id/slots", h.Slots)
}
