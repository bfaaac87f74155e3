// Package service provides business logic for the join request module: the
// pending/decided state machine, the single-pending rule, and the decision
// events pushed through the realtime broadcaster.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	activityRepository "github.com/volunhub/volunhub/internal/activity/repository"
	joinrequestModel "github.com/volunhub/volunhub/internal/joinrequest/model"
	"github.com/volunhub/volunhub/internal/joinrequest/repository"
	"github.com/volunhub/volunhub/internal/realtime"
)

// Service defines the interface for join request business logic operations.
type Service interface {
	// Request creates a pending join request for the subject. A subject may
	// hold at most one pending request per activity at a time.
	Request(ctx context.Context, activityID, subjectID string) (*joinrequestModel.JoinRequestResponse, error)

	// Approve decides a pending request in the subject's favor.
	Approve(ctx context.Context, requestID, actorID string) error

	// Reject decides a pending request against the subject. The subject may
	// reapply afterwards with a new request.
	Reject(ctx context.Context, requestID, actorID string) error

	// Withdraw retracts a pending request. Only the requesting subject may
	// withdraw it.
	Withdraw(ctx context.Context, requestID, subjectID string) error

	// Get returns a single request with its full state log.
	Get(ctx context.Context, requestID string) (*joinrequestModel.JoinRequestDetailResponse, error)

	// ListByActivity returns all requests for an activity.
	ListByActivity(ctx context.Context, activityID string) ([]joinrequestModel.JoinRequestResponse, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	hub    realtime.Broadcaster
	logger *zap.SugaredLogger
}

// New creates a new join request service instance.
func New(repo repository.Repository, db *gorm.DB, hub realtime.Broadcaster, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		db:     db,
		hub:    hub,
		logger: logger,
	}
}

// Request creates a pending join request for the subject. The single-pending
// check and the insert run in one transaction. Requests from rejected or
// withdrawn subjects always create a fresh record with its own id.
func (s *service) Request(
	ctx context.Context,
	activityID, subjectID string,
) (*joinrequestModel.JoinRequestResponse, error) {
	var request *joinrequestModel.JoinRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		if _, txErr := activityRepository.New(tx).GetByID(ctx, activityID); txErr != nil {
			return txErr
		}

		_, txErr := txRepo.GetPending(ctx, activityID, subjectID)
		if txErr == nil {
			return joinrequestModel.ErrAlreadyPending
		}
		if !errors.Is(txErr, joinrequestModel.ErrJoinRequestNotFound) {
			return txErr
		}

		request, txErr = txRepo.Create(ctx, activityID, subjectID)
		if txErr != nil {
			return txErr
		}

		return txRepo.AddTransition(ctx, request.ID, "", joinrequestModel.StatusPending, subjectID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("join request created",
		"request_id", request.ID,
		"activity_id", activityID,
		"subject_id", subjectID,
	)
	return joinrequestModel.NewJoinRequestResponse(request), nil
}

// Approve decides a pending request in the subject's favor.
func (s *service) Approve(ctx context.Context, requestID, actorID string) error {
	return s.decide(ctx, requestID, actorID, joinrequestModel.StatusApproved, realtime.MembershipApproved)
}

// Reject decides a pending request against the subject.
func (s *service) Reject(ctx context.Context, requestID, actorID string) error {
	return s.decide(ctx, requestID, actorID, joinrequestModel.StatusRejected, realtime.MembershipRejected)
}

// decide implements the shared approve/reject path. The status guard in the
// repository makes concurrent decisions on one request mutually exclusive:
// the loser of the race sees ErrInvalidState. The membership event is
// published only after commit.
func (s *service) decide(
	ctx context.Context,
	requestID, actorID, status string,
	kind realtime.MembershipKind,
) error {
	var activityID, subjectID string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		request, txErr := txRepo.GetByID(ctx, requestID)
		if txErr != nil {
			return txErr
		}
		if !request.IsPending() {
			return joinrequestModel.ErrInvalidState
		}
		activityID = request.ActivityID
		subjectID = request.SubjectID

		if txErr = txRepo.UpdateStatus(ctx, requestID, joinrequestModel.StatusPending, status, &actorID); txErr != nil {
			return txErr
		}

		return txRepo.AddTransition(ctx, requestID, joinrequestModel.StatusPending, status, actorID)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("join request decided",
		"request_id", requestID,
		"activity_id", activityID,
		"subject_id", subjectID,
		"status", status,
		"actor_id", actorID,
	)
	s.hub.Publish(activityID, realtime.NewMembershipChanged(activityID, kind, subjectID))
	return nil
}

// Withdraw retracts a pending request. No membership event is emitted: the
// subject was never a member, and nothing changed for observers.
func (s *service) Withdraw(ctx context.Context, requestID, subjectID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		request, txErr := txRepo.GetByID(ctx, requestID)
		if txErr != nil {
			return txErr
		}
		if request.SubjectID != subjectID {
			return joinrequestModel.ErrNotRequestOwner
		}
		if !request.IsPending() {
			return joinrequestModel.ErrInvalidState
		}

		if txErr = txRepo.UpdateStatus(ctx, requestID, joinrequestModel.StatusPending, joinrequestModel.StatusWithdrawn, nil); txErr != nil {
			return txErr
		}

		return txRepo.AddTransition(ctx, requestID, joinrequestModel.StatusPending, joinrequestModel.StatusWithdrawn, subjectID)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("join request withdrawn", "request_id", requestID, "subject_id", subjectID)
	return nil
}

// Get returns a single request with its full state log.
func (s *service) Get(ctx context.Context, requestID string) (*joinrequestModel.JoinRequestDetailResponse, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	transitions, err := s.repo.ListTransitions(ctx, requestID)
	if err != nil {
		return nil, err
	}

	return joinrequestModel.NewJoinRequestDetailResponse(request, transitions), nil
}

// ListByActivity returns all requests for an activity.
func (s *service) ListByActivity(
	ctx context.Context,
	activityID string,
) ([]joinrequestModel.JoinRequestResponse, error) {
	requests, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	responses := make([]joinrequestModel.JoinRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, *joinrequestModel.NewJoinRequestResponse(&requests[i]))
	}
	return responses, nil
}
