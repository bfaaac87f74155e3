package model

import (
	"time"
)

// Activity represents a capacity-bounded schedulable activity.
// Matches the activities table schema.
type Activity struct {
	ID              string    `gorm:"primaryKey;column:id;type:varchar(36)"                 json:"id"`
	Name            string    `gorm:"column:name;type:varchar(255);not null"                json:"name"`
	Capacity        *int      `gorm:"column:capacity"                                       json:"capacity,omitempty"`
	RegisteredCount int       `gorm:"column:registered_count;not null;default:0"            json:"registered_count"`
	StartTime       time.Time `gorm:"column:start_time;type:timestamptz;not null"           json:"start_time"`
	EndTime         time.Time `gorm:"column:end_time;type:timestamptz;not null"             json:"end_time"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Activity) TableName() string {
	return "activities"
}

// Unlimited reports whether the activity has no capacity bound.
func (a *Activity) Unlimited() bool {
	return a.Capacity == nil
}

// Remaining returns the number of free slots, or nil for unlimited capacity.
func (a *Activity) Remaining() *int {
	if a.Capacity == nil {
		return nil
	}
	remaining := *a.Capacity - a.RegisteredCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// WindowContains reports whether t falls inside the activity's time window.
// Check-in and check-out are only valid inside this window.
func (a *Activity) WindowContains(t time.Time) bool {
	return !t.Before(a.StartTime) && !t.After(a.EndTime)
}
