// Package repository provides data access for the join request module.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	joinrequestModel "github.com/volunhub/volunhub/internal/joinrequest/model"
)

// Repository defines the interface for join request data access operations.
type Repository interface {
	// Create inserts a new pending join request.
	Create(ctx context.Context, activityID, subjectID string) (*joinrequestModel.JoinRequest, error)

	// GetByID finds a join request by id.
	GetByID(ctx context.Context, requestID string) (*joinrequestModel.JoinRequest, error)

	// GetPending finds the subject's pending request for an activity, or
	// ErrJoinRequestNotFound if there is none.
	GetPending(ctx context.Context, activityID, subjectID string) (*joinrequestModel.JoinRequest, error)

	// ListByActivity returns all join requests for an activity, newest first.
	ListByActivity(ctx context.Context, activityID string) ([]joinrequestModel.JoinRequest, error)

	// UpdateStatus moves a request from one status to another. The expected
	// current status is part of the WHERE clause, so concurrent decisions on
	// the same request cannot both succeed.
	UpdateStatus(ctx context.Context, requestID, from, to string, decidedBy *string) error

	// AddTransition appends one entry to the request's state log.
	AddTransition(ctx context.Context, requestID, from, to, actorID string) error

	// ListTransitions returns the request's state log, oldest first.
	ListTransitions(ctx context.Context, requestID string) ([]joinrequestModel.JoinRequestTransition, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new join request repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new pending join request.
func (r *repository) Create(
	ctx context.Context,
	activityID, subjectID string,
) (*joinrequestModel.JoinRequest, error) {
	now := time.Now()
	request := &joinrequestModel.JoinRequest{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		SubjectID:  subjectID,
		Status:     joinrequestModel.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// GetByID finds a join request by id.
func (r *repository) GetByID(ctx context.Context, requestID string) (*joinrequestModel.JoinRequest, error) {
	var request joinrequestModel.JoinRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&request).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, joinrequestModel.ErrJoinRequestNotFound
		}
		return nil, err
	}

	return &request, nil
}

// GetPending finds the subject's pending request for an activity.
func (r *repository) GetPending(
	ctx context.Context,
	activityID, subjectID string,
) (*joinrequestModel.JoinRequest, error) {
	var request joinrequestModel.JoinRequest
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND subject_id = ? AND status = ?",
			activityID, subjectID, joinrequestModel.StatusPending).
		First(&request).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, joinrequestModel.ErrJoinRequestNotFound
		}
		return nil, err
	}

	return &request, nil
}

// ListByActivity returns all join requests for an activity, newest first.
func (r *repository) ListByActivity(
	ctx context.Context,
	activityID string,
) ([]joinrequestModel.JoinRequest, error) {
	var requests []joinrequestModel.JoinRequest
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	if requests == nil {
		return []joinrequestModel.JoinRequest{}, nil
	}
	return requests, nil
}

// UpdateStatus moves a request from one status to another.
func (r *repository) UpdateStatus(ctx context.Context, requestID, from, to string, decidedBy *string) error {
	result := r.db.WithContext(ctx).
		Model(&joinrequestModel.JoinRequest{}).
		Where("id = ? AND status = ?", requestID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"decided_by": decidedBy,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, requestID); err != nil {
			return err
		}
		return joinrequestModel.ErrInvalidState
	}
	return nil
}

// AddTransition appends one entry to the request's state log.
func (r *repository) AddTransition(ctx context.Context, requestID, from, to, actorID string) error {
	transition := &joinrequestModel.JoinRequestTransition{
		RequestID:  requestID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Create(transition).Error
}

// ListTransitions returns the request's state log, oldest first.
func (r *repository) ListTransitions(
	ctx context.Context,
	requestID string,
) ([]joinrequestModel.JoinRequestTransition, error) {
	var transitions []joinrequestModel.JoinRequestTransition
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	if transitions == nil {
		return []joinrequestModel.JoinRequestTransition{}, nil
	}
	return transitions, nil
}
