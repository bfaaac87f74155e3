// Package model provides data transfer objects and domain models for the registration module.
package model

import (
	"encoding/json"
	"time"
)

// GroupMember is one additional participant brought along by the registering
// subject. Group size is informational only: a registration consumes exactly
// one slot regardless of how many members it lists.
type GroupMember struct {
	Name    string `json:"name"    binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

// RegisterRequest represents the request to register for an activity.
type RegisterRequest struct {
	SubjectID    string        `json:"subject_id" binding:"required"`
	GroupMembers []GroupMember `json:"group_members"`
}

// ScanRequest carries the presented token for a check-in or check-out scan.
type ScanRequest struct {
	Token string `json:"token" binding:"required"`
}

// ActorRequest identifies the organizer performing a privileged action.
type ActorRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

// UnbanRequest represents the request to lift a subject's ban.
type UnbanRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	ActorID   string `json:"actor_id"   binding:"required"`
}

// RegistrationResponse represents a registration in API responses. The
// check-in token is only included in the creation response; it is the
// credential the subject later presents at the door.
type RegistrationResponse struct {
	ID           string        `json:"id"`
	ActivityID   string        `json:"activity_id"`
	SubjectID    string        `json:"subject_id"`
	GroupMembers []GroupMember `json:"group_members,omitempty"`
	Status       string        `json:"status"`
	CheckInToken string        `json:"check_in_token,omitempty"`
	CheckedInAt  string        `json:"checked_in_at,omitempty"`
	CheckedOutAt string        `json:"checked_out_at,omitempty"`
	CreatedAt    string        `json:"created_at"`
}

// CheckInResponse carries the exit token issued on a successful check-in.
type CheckInResponse struct {
	CheckedInAt   string `json:"checked_in_at"`
	CheckOutToken string `json:"check_out_token"`
}

// CheckOutResponse confirms a completed check-out.
type CheckOutResponse struct {
	CheckedOutAt string `json:"checked_out_at"`
}

// NewRegistrationResponse converts a Registration entity into its API
// representation. includeToken controls whether the check-in token is
// exposed; it is only shown to the subject that created the registration.
func NewRegistrationResponse(r *Registration, includeToken bool) *RegistrationResponse {
	resp := &RegistrationResponse{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		SubjectID:  r.SubjectID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}

	if len(r.GroupMembers) > 0 {
		var members []GroupMember
		if err := json.Unmarshal(r.GroupMembers, &members); err == nil {
			resp.GroupMembers = members
		}
	}
	if includeToken && r.CheckInToken != nil {
		resp.CheckInToken = *r.CheckInToken
	}
	if r.CheckedInAt != nil {
		resp.CheckedInAt = r.CheckedInAt.Format(time.RFC3339)
	}
	if r.CheckedOutAt != nil {
		resp.CheckedOutAt = r.CheckedOutAt.Format(time.RFC3339)
	}
	return resp
}
