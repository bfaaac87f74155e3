// Package handler provides HTTP handlers for registration endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	registrationModel "github.com/volunhub/volunhub/internal/registration/model"
	"github.com/volunhub/volunhub/internal/registration/service"
)

// Handler handles HTTP requests for registration endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new registration handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register handles POST /activities/:id/registrations.
func (h *Handler) Register(c *gin.Context) {
	var req registrationModel.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, activityModel.ErrActivityNotFound):
			notFoundResponse(c, "activity not found")
		case errors.Is(err, registrationModel.ErrSubjectBanned):
			errorResponse(c, "BANNED", "subject is banned from this activity", http.StatusForbidden)
		case errors.Is(err, registrationModel.ErrAlreadyRegistered):
			errorResponse(c, "ALREADY_REGISTERED", "subject already registered for this activity", http.StatusConflict)
		case errors.Is(err, activityModel.ErrCapacityExhausted):
			errorResponse(c, "CAPACITY_EXHAUSTED", "no slots remaining", http.StatusConflict)
		default:
			h.logger.Errorw("error creating registration", "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"registration": resp,
	})
}

// Withdraw handles DELETE /registrations/:id.
func (h *Handler) Withdraw(c *gin.Context) {
	err := h.service.Withdraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, registrationModel.ErrRegistrationNotFound):
			notFoundResponse(c, "registration not found")
		case errors.Is(err, registrationModel.ErrInvalidState):
			errorResponse(c, "INVALID_STATE", "registration cannot be withdrawn", http.StatusConflict)
		default:
			h.logger.Errorw("error withdrawing registration", "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Remove handles POST /registrations/:id/remove.
func (h *Handler) Remove(c *gin.Context) {
	h.evict(c, h.service.Remove, "error removing registration")
}

// Ban handles POST /registrations/:id/ban.
func (h *Handler) Ban(c *gin.Context) {
	h.evict(c, h.service.Ban, "error banning registration")
}

// evict implements the shared remove/ban handler path.
func (h *Handler) evict(c *gin.Context, op func(ctx context.Context, registrationID, actorID string) error, logMsg string) {
	var req registrationModel.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := op(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		switch {
		case errors.Is(err, registrationModel.ErrRegistrationNotFound):
			notFoundResponse(c, "registration not found")
		case errors.Is(err, registrationModel.ErrInvalidState):
			errorResponse(c, "INVALID_STATE", "registration is not active", http.StatusConflict)
		default:
			h.logger.Errorw(logMsg, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Unban handles POST /activities/:id/unban.
func (h *Handler) Unban(c *gin.Context) {
	var req registrationModel.UnbanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.Unban(c.Request.Context(), c.Param("id"), req.SubjectID, req.ActorID)
	if err != nil {
		if errors.Is(err, activityModel.ErrActivityNotFound) {
			notFoundResponse(c, "activity not found")
			return
		}
		h.logger.Errorw("error unbanning subject", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckIn handles POST /registrations/:id/checkin.
func (h *Handler) CheckIn(c *gin.Context) {
	var req registrationModel.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), c.Param("id"), req.Token)
	if err != nil {
		h.scanError(c, err, "error checking in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckOut handles POST /registrations/:id/checkout.
func (h *Handler) CheckOut(c *gin.Context) {
	var req registrationModel.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CheckOut(c.Request.Context(), c.Param("id"), req.Token)
	if err != nil {
		h.scanError(c, err, "error checking out")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// scanError maps the shared check-in/check-out error set.
func (h *Handler) scanError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, registrationModel.ErrRegistrationNotFound):
		notFoundResponse(c, "registration not found")
	case errors.Is(err, registrationModel.ErrInvalidToken):
		errorResponse(c, "INVALID_TOKEN", "presented token is invalid", http.StatusBadRequest)
	case errors.Is(err, registrationModel.ErrInvalidState):
		errorResponse(c, "INVALID_STATE", "registration state does not permit this scan", http.StatusConflict)
	case errors.Is(err, registrationModel.ErrWindowClosed):
		errorResponse(c, "EVENT_WINDOW_CLOSED", "activity window is closed", http.StatusGone)
	default:
		h.logger.Errorw(logMsg, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}

// GetRegistration handles GET /registrations/:id.
func (h *Handler) GetRegistration(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, registrationModel.ErrRegistrationNotFound) {
			notFoundResponse(c, "registration not found")
			return
		}
		h.logger.Errorw("error getting registration", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"registration": resp,
	})
}

// ListByActivity handles GET /activities/:id/registrations.
func (h *Handler) ListByActivity(c *gin.Context) {
	resp, err := h.service.ListByActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Errorw("error listing registrations", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"registrations": resp,
	})
}
