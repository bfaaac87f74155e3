package model

import "time"

type CreateJoinRequestRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

type DecisionRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

type WithdrawRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

type JoinRequestResponse struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	SubjectID  string    `json:"subject_id"`
	Status     string    `json:"status"`
	DecidedBy  *string   `json:"decided_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TransitionResponse struct {
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type JoinRequestDetailResponse struct {
	JoinRequestResponse
	History []TransitionResponse `json:"history"`
}

func NewJoinRequestResponse(j *JoinRequest) *JoinRequestResponse {
	return &JoinRequestResponse{
		ID:         j.ID,
		ActivityID: j.ActivityID,
		SubjectID:  j.SubjectID,
		Status:     j.Status,
		DecidedBy:  j.DecidedBy,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

func NewJoinRequestDetailResponse(j *JoinRequest, transitions []JoinRequestTransition) *JoinRequestDetailResponse {
	history := make([]TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		history = append(history, TransitionResponse{
			FromStatus: t.FromStatus,
			ToStatus:   t.ToStatus,
			ActorID:    t.ActorID,
			CreatedAt:  t.CreatedAt,
		})
	}
	return &JoinRequestDetailResponse{
		JoinRequestResponse: *NewJoinRequestResponse(j),
		History:             history,
	}
}
