// Package model provides data transfer objects and domain models for the activity module.
package model

import "time"

// CreateActivityRequest represents the request to create an activity.
// A nil Capacity means unlimited slots.
type CreateActivityRequest struct {
	Name      string    `json:"name"       binding:"required"`
	Capacity  *int      `json:"capacity"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time"   binding:"required"`
}

// UpdateCapacityRequest represents the request to change an activity's
// capacity. A nil Capacity lifts the bound entirely.
type UpdateCapacityRequest struct {
	Capacity *int `json:"capacity"`
}

// ActivityResponse represents an activity in API responses.
type ActivityResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Capacity        *int   `json:"capacity,omitempty"`
	Unlimited       bool   `json:"unlimited"`
	RegisteredCount int    `json:"registered_count"`
	Remaining       *int   `json:"remaining,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	CreatedAt       string `json:"created_at"`
}

// SlotsResponse is the snapshot read of an activity's free slots. Observers
// reconcile against it after (re)connecting to the event stream.
type SlotsResponse struct {
	Remaining *int `json:"remaining,omitempty"`
	Capacity  *int `json:"capacity,omitempty"`
	Unlimited bool `json:"unlimited"`
}

// NewActivityResponse converts an Activity entity into its API representation.
func NewActivityResponse(a *Activity) *ActivityResponse {
	return &ActivityResponse{
		ID:              a.ID,
		Name:            a.Name,
		Capacity:        a.Capacity,
		Unlimited:       a.Unlimited(),
		RegisteredCount: a.RegisteredCount,
		Remaining:       a.Remaining(),
		StartTime:       a.StartTime.Format(time.RFC3339),
		EndTime:         a.EndTime.Format(time.RFC3339),
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
}

// NewSlotsResponse builds the snapshot view of an activity's capacity.
func NewSlotsResponse(a *Activity) *SlotsResponse {
	return &SlotsResponse{
		Remaining: a.Remaining(),
		Capacity:  a.Capacity,
		Unlimited: a.Unlimited(),
	}
}
