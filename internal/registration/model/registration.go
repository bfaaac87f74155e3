package model

import (
	"time"

	"gorm.io/datatypes"
)

// Registration status values. ACTIVE is the only state that holds a slot;
// the three terminal states differ in how the subject may come back:
// withdrawn and removed subjects may register again, banned subjects may not.
const (
	StatusActive    = "ACTIVE"
	StatusWithdrawn = "WITHDRAWN"
	StatusRemoved   = "REMOVED"
	StatusBanned    = "BANNED"
)

// Registration represents a subject's claim on one activity slot.
// Matches the registrations table schema.
type Registration struct {
	ID            string         `gorm:"primaryKey;column:id;type:varchar(36)"                                      json:"id"`
	ActivityID    string         `gorm:"column:activity_id;type:varchar(36);not null;index:idx_registrations_activity_id" json:"activity_id"`
	SubjectID     string         `gorm:"column:subject_id;type:varchar(255);not null;index:idx_registrations_subject_id"  json:"subject_id"`
	GroupMembers  datatypes.JSON `gorm:"column:group_members"                                                       json:"group_members,omitempty"`
	Status        string         `gorm:"column:status;type:varchar(16);not null;index:idx_registrations_status"     json:"status"`
	CheckInToken  *string        `gorm:"column:check_in_token;type:varchar(36)"                                     json:"-"`
	CheckOutToken *string        `gorm:"column:check_out_token;type:varchar(36)"                                    json:"-"`
	CheckedInAt   *time.Time     `gorm:"column:checked_in_at;type:timestamptz"                                      json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time     `gorm:"column:checked_out_at;type:timestamptz"                                     json:"checked_out_at,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamptz;not null;default:now()"                  json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamptz;not null;default:now()"                  json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Registration) TableName() string {
	return "registrations"
}

// IsActive reports whether the registration still holds its slot.
func (r *Registration) IsActive() bool {
	return r.Status == StatusActive
}

// CheckedIn reports whether the subject has scanned in.
func (r *Registration) CheckedIn() bool {
	return r.CheckedInAt != nil
}

// CheckedOut reports whether the subject has scanned out.
func (r *Registration) CheckedOut() bool {
	return r.CheckedOutAt != nil
}

// ActivityBan marks a subject as non-registrable for one activity. Rows are
// created on ban and deleted on unban; the pair is unique.
type ActivityBan struct {
	ID         int64     `gorm:"primaryKey;column:id"                                                           json:"id"`
	ActivityID string    `gorm:"column:activity_id;type:varchar(36);not null;uniqueIndex:idx_activity_bans_pair" json:"activity_id"`
	SubjectID  string    `gorm:"column:subject_id;type:varchar(255);not null;uniqueIndex:idx_activity_bans_pair" json:"subject_id"`
	ActorID    string    `gorm:"column:actor_id;type:varchar(255);not null"                                     json:"actor_id"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"                      json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ActivityBan) TableName() string {
	return "activity_bans"
}
