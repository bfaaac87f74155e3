// Package handler provides HTTP handlers for join request endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	joinrequestModel "github.com/volunhub/volunhub/internal/joinrequest/model"
	"github.com/volunhub/volunhub/internal/joinrequest/service"
)

// Handler handles HTTP requests for join request endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new join request handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Request handles POST /activities/:id/join-requests.
func (h *Handler) Request(c *gin.Context) {
	var req joinrequestModel.CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Request(c.Request.Context(), c.Param("id"), req.SubjectID)
	if err != nil {
		switch {
		case errors.Is(err, activityModel.ErrActivityNotFound):
			notFoundResponse(c, "activity not found")
		case errors.Is(err, joinrequestModel.ErrAlreadyPending):
			errorResponse(c, "ALREADY_PENDING", "subject already has a pending request", http.StatusConflict)
		default:
			h.logger.Errorw("error creating join request", "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"join_request": resp,
	})
}

// Approve handles POST /join-requests/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve, "error approving join request")
}

// Reject handles POST /join-requests/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject, "error rejecting join request")
}

// decide implements the shared approve/reject handler path.
func (h *Handler) decide(c *gin.Context, op func(ctx context.Context, requestID, actorID string) error, logMsg string) {
	var req joinrequestModel.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := op(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		switch {
		case errors.Is(err, joinrequestModel.ErrJoinRequestNotFound):
			notFoundResponse(c, "join request not found")
		case errors.Is(err, joinrequestModel.ErrInvalidState):
			errorResponse(c, "INVALID_STATE", "join request is not pending", http.StatusConflict)
		default:
			h.logger.Errorw(logMsg, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Withdraw handles POST /join-requests/:id/withdraw.
func (h *Handler) Withdraw(c *gin.Context) {
	var req joinrequestModel.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.Withdraw(c.Request.Context(), c.Param("id"), req.SubjectID)
	if err != nil {
		switch {
		case errors.Is(err, joinrequestModel.ErrJoinRequestNotFound):
			notFoundResponse(c, "join request not found")
		case errors.Is(err, joinrequestModel.ErrNotRequestOwner):
			errorResponse(c, "FORBIDDEN", "only the requesting subject may withdraw", http.StatusForbidden)
		case errors.Is(err, joinrequestModel.ErrInvalidState):
			errorResponse(c, "INVALID_STATE", "join request is not pending", http.StatusConflict)
		default:
			h.logger.Errorw("error withdrawing join request", "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetJoinRequest handles GET /join-requests/:id.
func (h *Handler) GetJoinRequest(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, joinrequestModel.ErrJoinRequestNotFound) {
			notFoundResponse(c, "join request not found")
			return
		}
		h.logger.Errorw("error getting join request", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"join_request": resp,
	})
}

// ListByActivity handles GET /activities/:id/join-requests.
func (h *Handler) ListByActivity(c *gin.Context) {
	resp, err := h.service.ListByActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Errorw("error listing join requests", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"join_requests": resp,
	})
}
