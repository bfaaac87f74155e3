package model

import (
	"time"
)

// JoinRequest status values. PENDING is the only state an approver or the
// requester can act on; the three terminal states are final for the record,
// but not for the (activity, subject) pair: a rejected or withdrawn subject
// may reapply with a fresh request.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusWithdrawn = "WITHDRAWN"
)

// JoinRequest represents a subject's request to join an activity's
// organizing team. Matches the join_requests table schema.
type JoinRequest struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(36)"                                       json:"id"`
	ActivityID string    `gorm:"column:activity_id;type:varchar(36);not null;index:idx_join_requests_activity_id" json:"activity_id"`
	SubjectID  string    `gorm:"column:subject_id;type:varchar(255);not null;index:idx_join_requests_subject_id"  json:"subject_id"`
	Status     string    `gorm:"column:status;type:varchar(16);not null;index:idx_join_requests_status"      json:"status"`
	DecidedBy  *string   `gorm:"column:decided_by;type:varchar(255)"                                         json:"decided_by,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"                   json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"                   json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (JoinRequest) TableName() string {
	return "join_requests"
}

// IsPending reports whether the request can still be decided or withdrawn.
func (j *JoinRequest) IsPending() bool {
	return j.Status == StatusPending
}

// JoinRequestTransition is one entry in a request's append-only state log,
// kept for audit display across reapplications.
type JoinRequestTransition struct {
	ID         int64     `gorm:"primaryKey;column:id"                                                        json:"id"`
	RequestID  string    `gorm:"column:request_id;type:varchar(36);not null;index:idx_transitions_request_id" json:"request_id"`
	FromStatus string    `gorm:"column:from_status;type:varchar(16)"                                         json:"from_status"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(16);not null"                                  json:"to_status"`
	ActorID    string    `gorm:"column:actor_id;type:varchar(255);not null"                                  json:"actor_id"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"                   json:"created_at"`
}

// TableName specifies the table name for GORM.
func (JoinRequestTransition) TableName() string {
	return "join_request_transitions"
}
