// Package repository provides data access for the registration module.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	registrationModel "github.com/volunhub/volunhub/internal/registration/model"
)

// Repository defines the interface for registration data access operations.
type Repository interface {
	// Create inserts a new active registration with a fresh check-in token.
	Create(ctx context.Context, activityID, subjectID string, groupMembers datatypes.JSON) (*registrationModel.Registration, error)

	// GetByID finds a registration by id.
	GetByID(ctx context.Context, registrationID string) (*registrationModel.Registration, error)

	// GetActiveBySubject finds the subject's active registration for an
	// activity, or ErrRegistrationNotFound if there is none.
	GetActiveBySubject(ctx context.Context, activityID, subjectID string) (*registrationModel.Registration, error)

	// ListByActivity returns all registrations for an activity, newest first.
	ListByActivity(ctx context.Context, activityID string) ([]registrationModel.Registration, error)

	// MarkInactive moves an active registration to a terminal state and
	// invalidates its tokens.
	MarkInactive(ctx context.Context, registrationID, status string) error

	// SetCheckIn records the check-in time and stores the issued exit token.
	SetCheckIn(ctx context.Context, registrationID string, at time.Time, checkOutToken string) error

	// SetCheckOut records the check-out time and invalidates all tokens.
	SetCheckOut(ctx context.Context, registrationID string, at time.Time) error

	// AddBan marks the subject as non-registrable for the activity.
	// Banning an already banned subject is a no-op.
	AddBan(ctx context.Context, activityID, subjectID, actorID string) error

	// RemoveBan lifts the subject's ban. Safe to call when no ban exists.
	RemoveBan(ctx context.Context, activityID, subjectID string) error

	// IsBanned reports whether the subject is banned from the activity.
	IsBanned(ctx context.Context, activityID, subjectID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new registration repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new active registration with a fresh check-in token.
func (r *repository) Create(
	ctx context.Context,
	activityID, subjectID string,
	groupMembers datatypes.JSON,
) (*registrationModel.Registration, error) {
	now := time.Now()
	token := uuid.NewString()
	registration := &registrationModel.Registration{
		ID:           uuid.NewString(),
		ActivityID:   activityID,
		SubjectID:    subjectID,
		GroupMembers: groupMembers,
		Status:       registrationModel.StatusActive,
		CheckInToken: &token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.db.WithContext(ctx).Create(registration).Error; err != nil {
		return nil, err
	}
	return registration, nil
}

// GetByID finds a registration by id.
func (r *repository) GetByID(ctx context.Context, registrationID string) (*registrationModel.Registration, error) {
	var registration registrationModel.Registration
	err := r.db.WithContext(ctx).
		Where("id = ?", registrationID).
		First(&registration).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registrationModel.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

// GetActiveBySubject finds the subject's active registration for an activity.
func (r *repository) GetActiveBySubject(
	ctx context.Context,
	activityID, subjectID string,
) (*registrationModel.Registration, error) {
	var registration registrationModel.Registration
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND subject_id = ? AND status = ?",
			activityID, subjectID, registrationModel.StatusActive).
		First(&registration).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registrationModel.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

// ListByActivity returns all registrations for an activity, newest first.
func (r *repository) ListByActivity(
	ctx context.Context,
	activityID string,
) ([]registrationModel.Registration, error) {
	var registrations []registrationModel.Registration
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}
	if registrations == nil {
		return []registrationModel.Registration{}, nil
	}
	return registrations, nil
}

// MarkInactive moves an active registration to a terminal state and
// invalidates its tokens. The status guard is part of the WHERE clause, so
// two concurrent terminal transitions cannot both succeed.
func (r *repository) MarkInactive(ctx context.Context, registrationID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&registrationModel.Registration{}).
		Where("id = ? AND status = ?", registrationID, registrationModel.StatusActive).
		Updates(map[string]interface{}{
			"status":          status,
			"check_in_token":  nil,
			"check_out_token": nil,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, registrationID); err != nil {
			return err
		}
		return registrationModel.ErrInvalidState
	}
	return nil
}

// SetCheckIn records the check-in time and stores the issued exit token.
func (r *repository) SetCheckIn(
	ctx context.Context,
	registrationID string,
	at time.Time,
	checkOutToken string,
) error {
	result := r.db.WithContext(ctx).
		Model(&registrationModel.Registration{}).
		Where("id = ? AND status = ? AND checked_in_at IS NULL",
			registrationID, registrationModel.StatusActive).
		Updates(map[string]interface{}{
			"checked_in_at":   at,
			"check_out_token": checkOutToken,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, registrationID); err != nil {
			return err
		}
		return registrationModel.ErrInvalidState
	}
	return nil
}

// SetCheckOut records the check-out time and invalidates all tokens.
func (r *repository) SetCheckOut(ctx context.Context, registrationID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&registrationModel.Registration{}).
		Where("id = ? AND status = ? AND checked_in_at IS NOT NULL AND checked_out_at IS NULL",
			registrationID, registrationModel.StatusActive).
		Updates(map[string]interface{}{
			"checked_out_at":  at,
			"check_in_token":  nil,
			"check_out_token": nil,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, registrationID); err != nil {
			return err
		}
		return registrationModel.ErrInvalidState
	}
	return nil
}

// AddBan marks the subject as non-registrable for the activity.
func (r *repository) AddBan(ctx context.Context, activityID, subjectID, actorID string) error {
	ban := &registrationModel.ActivityBan{
		ActivityID: activityID,
		SubjectID:  subjectID,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ban).Error
}

// RemoveBan lifts the subject's ban.
func (r *repository) RemoveBan(ctx context.Context, activityID, subjectID string) error {
	return r.db.WithContext(ctx).
		Where("activity_id = ? AND subject_id = ?", activityID, subjectID).
		Delete(&registrationModel.ActivityBan{}).Error
}

// IsBanned reports whether the subject is banned from the activity.
func (r *repository) IsBanned(ctx context.Context, activityID, subjectID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&registrationModel.ActivityBan{}).
		Where("activity_id = ? AND subject_id = ?", activityID, subjectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
