// Package repository provides data access for the activity module, including
// the capacity ledger. All slot-count mutations in the system go through
// ReserveSlot and ReleaseSlot; nothing else touches registered_count.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
)

// Repository defines the interface for activity data access operations.
type Repository interface {
	// Create inserts a new activity.
	Create(ctx context.Context, name string, capacity *int, startTime, endTime time.Time) (*activityModel.Activity, error)

	// GetByID finds an activity by id.
	GetByID(ctx context.Context, activityID string) (*activityModel.Activity, error)

	// List returns all activities ordered by start time.
	List(ctx context.Context) ([]activityModel.Activity, error)

	// ReserveSlot atomically consumes one slot. The check and the increment
	// are a single conditional UPDATE, so concurrent reservations cannot
	// both succeed past capacity. Returns the activity after the increment.
	ReserveSlot(ctx context.Context, activityID string) (*activityModel.Activity, error)

	// ReleaseSlot atomically frees one slot, bounded below by zero consumed
	// slots. A release without a matching reserve returns ErrReleaseUnderflow
	// and leaves the counter untouched.
	ReleaseSlot(ctx context.Context, activityID string) (*activityModel.Activity, error)

	// UpdateCapacity changes the capacity bound. A finite capacity only
	// applies when it is not below the current registered count; the guard
	// is part of the same conditional UPDATE, so a concurrent registration
	// cannot slip past it. A nil capacity lifts the bound.
	UpdateCapacity(ctx context.Context, activityID string, capacity *int) (*activityModel.Activity, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new activity repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new activity.
func (r *repository) Create(
	ctx context.Context,
	name string,
	capacity *int,
	startTime, endTime time.Time,
) (*activityModel.Activity, error) {
	now := time.Now()
	activity := &activityModel.Activity{
		ID:              uuid.NewString(),
		Name:            name,
		Capacity:        capacity,
		RegisteredCount: 0,
		StartTime:       startTime,
		EndTime:         endTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

// GetByID finds an activity by id.
func (r *repository) GetByID(ctx context.Context, activityID string) (*activityModel.Activity, error) {
	var activity activityModel.Activity
	err := r.db.WithContext(ctx).
		Where("id = ?", activityID).
		First(&activity).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, activityModel.ErrActivityNotFound
		}
		return nil, err
	}

	return &activity, nil
}

// List returns all activities ordered by start time.
func (r *repository) List(ctx context.Context) ([]activityModel.Activity, error) {
	var activities []activityModel.Activity
	err := r.db.WithContext(ctx).
		Order("start_time ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	if activities == nil {
		return []activityModel.Activity{}, nil
	}
	return activities, nil
}

// ReserveSlot atomically consumes one slot.
func (r *repository) ReserveSlot(ctx context.Context, activityID string) (*activityModel.Activity, error) {
	result := r.db.WithContext(ctx).
		Model(&activityModel.Activity{}).
		Where("id = ? AND (capacity IS NULL OR registered_count < capacity)", activityID).
		UpdateColumn("registered_count", gorm.Expr("registered_count + 1"))

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the activity is missing or it is full.
		if _, err := r.GetByID(ctx, activityID); err != nil {
			return nil, err
		}
		return nil, activityModel.ErrCapacityExhausted
	}

	return r.GetByID(ctx, activityID)
}

// ReleaseSlot atomically frees one slot.
func (r *repository) ReleaseSlot(ctx context.Context, activityID string) (*activityModel.Activity, error) {
	result := r.db.WithContext(ctx).
		Model(&activityModel.Activity{}).
		Where("id = ? AND registered_count > 0", activityID).
		UpdateColumn("registered_count", gorm.Expr("registered_count - 1"))

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, activityID); err != nil {
			return nil, err
		}
		return nil, activityModel.ErrReleaseUnderflow
	}

	return r.GetByID(ctx, activityID)
}

// UpdateCapacity changes the capacity bound.
func (r *repository) UpdateCapacity(
	ctx context.Context,
	activityID string,
	capacity *int,
) (*activityModel.Activity, error) {
	query := r.db.WithContext(ctx).Model(&activityModel.Activity{})

	if capacity == nil {
		query = query.Where("id = ?", activityID)
	} else {
		query = query.Where("id = ? AND registered_count <= ?", activityID, *capacity)
	}

	result := query.Updates(map[string]interface{}{
		"capacity":   capacity,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, activityID); err != nil {
			return nil, err
		}
		return nil, activityModel.ErrCapacityBelowRegistered
	}

	return r.GetByID(ctx, activityID)
}
