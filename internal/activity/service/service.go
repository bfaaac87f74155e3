// Package service provides business logic for the activity module.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	"github.com/volunhub/volunhub/internal/activity/repository"
	"github.com/volunhub/volunhub/pkg/retry"
)

// Service defines the interface for activity business logic operations.
type Service interface {
	// CreateActivity creates a new activity.
	CreateActivity(ctx context.Context, req *activityModel.CreateActivityRequest) (*activityModel.ActivityResponse, error)

	// GetActivity returns a single activity.
	GetActivity(ctx context.Context, activityID string) (*activityModel.ActivityResponse, error)

	// ListActivities returns all activities.
	ListActivities(ctx context.Context) ([]activityModel.ActivityResponse, error)

	// UpdateCapacity changes an activity's capacity bound.
	UpdateCapacity(ctx context.Context, activityID string, req *activityModel.UpdateCapacityRequest) (*activityModel.ActivityResponse, error)

	// Slots returns the free-slot snapshot for an activity. This is the
	// read observers reconcile against after reconnecting to the event
	// stream. Being idempotent, it is the one operation that retries
	// transient store errors internally.
	Slots(ctx context.Context, activityID string) (*activityModel.SlotsResponse, error)
}

type service struct {
	repo     repository.Repository
	retryCfg retry.Config
	logger   *zap.SugaredLogger
}

// New creates a new activity service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:     repo,
		retryCfg: snapshotRetryConfig(),
		logger:   logger,
	}
}

// snapshotRetryConfig bounds retries for the slots snapshot read. Domain
// errors are not retryable, only transient store failures.
func snapshotRetryConfig() retry.Config {
	cfg := retry.PostgresConfig()
	cfg.MaxAttempts = 3
	cfg.InitialDelay = 50 * time.Millisecond
	cfg.MaxDelay = 500 * time.Millisecond
	return cfg
}

// CreateActivity creates a new activity.
func (s *service) CreateActivity(
	ctx context.Context,
	req *activityModel.CreateActivityRequest,
) (*activityModel.ActivityResponse, error) {
	if req.Capacity != nil && *req.Capacity <= 0 {
		return nil, activityModel.ErrInvalidCapacity
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, activityModel.ErrInvalidTimeWindow
	}

	activity, err := s.repo.Create(ctx, req.Name, req.Capacity, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("activity created",
		"activity_id", activity.ID,
		"capacity", activity.Capacity,
	)

	return activityModel.NewActivityResponse(activity), nil
}

// GetActivity returns a single activity.
func (s *service) GetActivity(ctx context.Context, activityID string) (*activityModel.ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return activityModel.NewActivityResponse(activity), nil
}

// ListActivities returns all activities.
func (s *service) ListActivities(ctx context.Context) ([]activityModel.ActivityResponse, error) {
	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]activityModel.ActivityResponse, 0, len(activities))
	for i := range activities {
		responses = append(responses, *activityModel.NewActivityResponse(&activities[i]))
	}
	return responses, nil
}

// UpdateCapacity changes an activity's capacity bound.
func (s *service) UpdateCapacity(
	ctx context.Context,
	activityID string,
	req *activityModel.UpdateCapacityRequest,
) (*activityModel.ActivityResponse, error) {
	if req.Capacity != nil && *req.Capacity <= 0 {
		return nil, activityModel.ErrInvalidCapacity
	}

	activity, err := s.repo.UpdateCapacity(ctx, activityID, req.Capacity)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("activity capacity updated",
		"activity_id", activityID,
		"capacity", req.Capacity,
	)

	return activityModel.NewActivityResponse(activity), nil
}

// Slots returns the free-slot snapshot for an activity.
func (s *service) Slots(ctx context.Context, activityID string) (*activityModel.SlotsResponse, error) {
	activity, err := retry.DoWithResult(ctx, s.retryCfg, func() (*activityModel.Activity, error) {
		return s.repo.GetByID(ctx, activityID)
	})
	if err != nil {
		return nil, err
	}
	return activityModel.NewSlotsResponse(activity), nil
}
