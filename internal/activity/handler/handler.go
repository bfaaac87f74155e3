// Package handler provides HTTP handlers for activity endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	"github.com/volunhub/volunhub/internal/activity/service"
)

// Handler handles HTTP requests for activity endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new activity handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// CreateActivity handles POST /activities.
func (h *Handler) CreateActivity(c *gin.Context) {
	var req activityModel.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateActivity(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, activityModel.ErrInvalidCapacity) {
			errorResponse(c, "INVALID_REQUEST", "capacity must be a positive integer", http.StatusBadRequest)
			return
		}
		if errors.Is(err, activityModel.ErrInvalidTimeWindow) {
			errorResponse(c, "INVALID_REQUEST", "end_time must be after start_time", http.StatusBadRequest)
			return
		}
		h.logger.Errorw("error creating activity", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"activity": resp,
	})
}

// ListActivities handles GET /activities.
func (h *Handler) ListActivities(c *gin.Context) {
	resp, err := h.service.ListActivities(c.Request.Context())
	if err != nil {
		h.logger.Errorw("error listing activities", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"activities": resp,
	})
}

// GetActivity handles GET /activities/:id.
func (h *Handler) GetActivity(c *gin.Context) {
	resp, err := h.service.GetActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, activityModel.ErrActivityNotFound) {
			notFoundResponse(c, "activity not found")
			return
		}
		h.logger.Errorw("error getting activity", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"activity": resp,
	})
}

// UpdateCapacity handles PATCH /activities/:id/capacity.
func (h *Handler) UpdateCapacity(c *gin.Context) {
	var req activityModel.UpdateCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.UpdateCapacity(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, activityModel.ErrActivityNotFound) {
			notFoundResponse(c, "activity not found")
			return
		}
		if errors.Is(err, activityModel.ErrInvalidCapacity) {
			errorResponse(c, "INVALID_REQUEST", "capacity must be a positive integer", http.StatusBadRequest)
			return
		}
		if errors.Is(err, activityModel.ErrCapacityBelowRegistered) {
			errorResponse(c, "CAPACITY_BELOW_REGISTERED",
				"capacity cannot be set below current registrations", http.StatusConflict)
			return
		}
		h.logger.Errorw("error updating capacity", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"activity": resp,
	})
}

// Slots handles GET /activities/:id/slots.
func (h *Handler) Slots(c *gin.Context) {
	resp, err := h.service.Slots(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, activityModel.ErrActivityNotFound) {
			notFoundResponse(c, "activity not found")
			return
		}
		h.logger.Errorw("error reading slots", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}
