// Package service provides business logic for the registration module: the
// registration lifecycle state machine and its coupling to the capacity
// ledger and the realtime broadcaster.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	activityRepository "github.com/volunhub/volunhub/internal/activity/repository"
	"github.com/volunhub/volunhub/internal/realtime"
	registrationModel "github.com/volunhub/volunhub/internal/registration/model"
	"github.com/volunhub/volunhub/internal/registration/repository"
)

// Service defines the interface for registration business logic operations.
type Service interface {
	// Register claims one slot on the activity for the subject.
	Register(ctx context.Context, activityID string, req *registrationModel.RegisterRequest) (*registrationModel.RegistrationResponse, error)

	// Withdraw is the subject-initiated exit, permitted only before check-in.
	Withdraw(ctx context.Context, registrationID string) error

	// Remove is the organizer-initiated exit; the subject may register again.
	Remove(ctx context.Context, registrationID, actorID string) error

	// Ban is the organizer-initiated exit that also blocks re-registration.
	Ban(ctx context.Context, registrationID, actorID string) error

	// Unban lifts a subject's ban; it does not restore any registration.
	Unban(ctx context.Context, activityID, subjectID, actorID string) error

	// CheckIn validates the presented entry token inside the activity
	// window and issues the exit token.
	CheckIn(ctx context.Context, registrationID, token string) (*registrationModel.CheckInResponse, error)

	// CheckOut validates the presented exit token and completes attendance.
	CheckOut(ctx context.Context, registrationID, token string) (*registrationModel.CheckOutResponse, error)

	// Get returns a single registration.
	Get(ctx context.Context, registrationID string) (*registrationModel.RegistrationResponse, error)

	// ListByActivity returns all registrations for an activity.
	ListByActivity(ctx context.Context, activityID string) ([]registrationModel.RegistrationResponse, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	hub    realtime.Broadcaster
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a new registration service instance.
func New(repo repository.Repository, db *gorm.DB, hub realtime.Broadcaster, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		db:     db,
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// Register claims one slot on the activity for the subject. Ban and
// duplicate checks, the slot reservation, and the insert run in one
// transaction; the slotsChanged event carries the capacity snapshot taken by
// the reservation and is published only after commit.
func (s *service) Register(
	ctx context.Context,
	activityID string,
	req *registrationModel.RegisterRequest,
) (*registrationModel.RegistrationResponse, error) {
	groupMembers, err := marshalGroupMembers(req.GroupMembers)
	if err != nil {
		return nil, fmt.Errorf("marshal group members: %w", err)
	}

	var registration *registrationModel.Registration
	var activity *activityModel.Activity

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)
		txLedger := activityRepository.New(tx)

		banned, txErr := txRepo.IsBanned(ctx, activityID, req.SubjectID)
		if txErr != nil {
			return txErr
		}
		if banned {
			return registrationModel.ErrSubjectBanned
		}

		_, txErr = txRepo.GetActiveBySubject(ctx, activityID, req.SubjectID)
		if txErr == nil {
			return registrationModel.ErrAlreadyRegistered
		}
		if !errors.Is(txErr, registrationModel.ErrRegistrationNotFound) {
			return txErr
		}

		activity, txErr = txLedger.ReserveSlot(ctx, activityID)
		if txErr != nil {
			return txErr
		}

		registration, txErr = txRepo.Create(ctx, activityID, req.SubjectID, groupMembers)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("registration created",
		"registration_id", registration.ID,
		"activity_id", activityID,
		"subject_id", req.SubjectID,
		"group_size", len(req.GroupMembers),
	)
	s.publishSlots(activity)

	return registrationModel.NewRegistrationResponse(registration, true), nil
}

// Withdraw is the subject-initiated exit, permitted only before check-in.
func (s *service) Withdraw(ctx context.Context, registrationID string) error {
	var activity *activityModel.Activity

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		registration, txErr := txRepo.GetByID(ctx, registrationID)
		if txErr != nil {
			return txErr
		}
		if !registration.IsActive() || registration.CheckedIn() {
			// After check-in the subject is committed; no withdrawal.
			return registrationModel.ErrInvalidState
		}

		if txErr = txRepo.MarkInactive(ctx, registrationID, registrationModel.StatusWithdrawn); txErr != nil {
			return txErr
		}

		activity, txErr = s.releaseSlot(ctx, tx, registration.ActivityID)
		return txErr
	})
	if err != nil {
		return err
	}

	s.logger.Infow("registration withdrawn", "registration_id", registrationID)
	s.publishSlots(activity)
	return nil
}

// Remove is the organizer-initiated exit; the subject may register again.
func (s *service) Remove(ctx context.Context, registrationID, actorID string) error {
	return s.evict(ctx, registrationID, actorID, registrationModel.StatusRemoved)
}

// Ban is the organizer-initiated exit that also blocks re-registration.
func (s *service) Ban(ctx context.Context, registrationID, actorID string) error {
	return s.evict(ctx, registrationID, actorID, registrationModel.StatusBanned)
}

// evict implements the shared remove/ban path: terminal state, token
// invalidation, slot release, and the event pair. Ban additionally writes
// the ban marker inside the same transaction.
func (s *service) evict(ctx context.Context, registrationID, actorID, status string) error {
	var activity *activityModel.Activity
	var subjectID, activityID string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		registration, txErr := txRepo.GetByID(ctx, registrationID)
		if txErr != nil {
			return txErr
		}
		if !registration.IsActive() {
			return registrationModel.ErrInvalidState
		}
		subjectID = registration.SubjectID
		activityID = registration.ActivityID

		if txErr = txRepo.MarkInactive(ctx, registrationID, status); txErr != nil {
			return txErr
		}

		if status == registrationModel.StatusBanned {
			if txErr = txRepo.AddBan(ctx, activityID, subjectID, actorID); txErr != nil {
				return txErr
			}
		}

		activity, txErr = s.releaseSlot(ctx, tx, activityID)
		return txErr
	})
	if err != nil {
		return err
	}

	kind := realtime.MembershipRemoved
	if status == registrationModel.StatusBanned {
		kind = realtime.MembershipBanned
	}
	s.logger.Infow("registration evicted",
		"registration_id", registrationID,
		"activity_id", activityID,
		"subject_id", subjectID,
		"kind", kind,
		"actor_id", actorID,
	)
	s.publishSlots(activity)
	s.hub.Publish(activityID, realtime.NewMembershipChanged(activityID, kind, subjectID))
	return nil
}

// Unban lifts a subject's ban. A race with a concurrent register resolves in
// favor of whichever write lands last.
func (s *service) Unban(ctx context.Context, activityID, subjectID, actorID string) error {
	activityRepo := activityRepository.New(s.db)
	if _, err := activityRepo.GetByID(ctx, activityID); err != nil {
		return err
	}

	if err := s.repo.RemoveBan(ctx, activityID, subjectID); err != nil {
		return err
	}

	s.logger.Infow("subject unbanned",
		"activity_id", activityID,
		"subject_id", subjectID,
		"actor_id", actorID,
	)
	s.hub.Publish(activityID, realtime.NewMembershipChanged(activityID, realtime.MembershipUnbanned, subjectID))
	return nil
}

// CheckIn validates the presented entry token inside the activity window and
// issues the exit token.
func (s *service) CheckIn(
	ctx context.Context,
	registrationID, token string,
) (*registrationModel.CheckInResponse, error) {
	now := s.now()
	checkOutToken := uuid.NewString()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)
		txActivities := activityRepository.New(tx)

		registration, txErr := txRepo.GetByID(ctx, registrationID)
		if txErr != nil {
			return txErr
		}
		if !registration.IsActive() || registration.CheckedIn() {
			return registrationModel.ErrInvalidState
		}
		if registration.CheckInToken == nil || *registration.CheckInToken != token {
			return registrationModel.ErrInvalidToken
		}

		activity, txErr := txActivities.GetByID(ctx, registration.ActivityID)
		if txErr != nil {
			return txErr
		}
		if !activity.WindowContains(now) {
			return registrationModel.ErrWindowClosed
		}

		return txRepo.SetCheckIn(ctx, registrationID, now, checkOutToken)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("subject checked in", "registration_id", registrationID)
	return &registrationModel.CheckInResponse{
		CheckedInAt:   now.Format(time.RFC3339),
		CheckOutToken: checkOutToken,
	}, nil
}

// CheckOut validates the presented exit token and completes attendance.
func (s *service) CheckOut(
	ctx context.Context,
	registrationID, token string,
) (*registrationModel.CheckOutResponse, error) {
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)
		txActivities := activityRepository.New(tx)

		registration, txErr := txRepo.GetByID(ctx, registrationID)
		if txErr != nil {
			return txErr
		}
		if !registration.IsActive() || !registration.CheckedIn() || registration.CheckedOut() {
			return registrationModel.ErrInvalidState
		}
		if registration.CheckOutToken == nil || *registration.CheckOutToken != token {
			return registrationModel.ErrInvalidToken
		}

		activity, txErr := txActivities.GetByID(ctx, registration.ActivityID)
		if txErr != nil {
			return txErr
		}
		if !activity.WindowContains(now) {
			return registrationModel.ErrWindowClosed
		}

		return txRepo.SetCheckOut(ctx, registrationID, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("subject checked out", "registration_id", registrationID)
	return &registrationModel.CheckOutResponse{
		CheckedOutAt: now.Format(time.RFC3339),
	}, nil
}

// Get returns a single registration.
func (s *service) Get(ctx context.Context, registrationID string) (*registrationModel.RegistrationResponse, error) {
	registration, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	return registrationModel.NewRegistrationResponse(registration, false), nil
}

// ListByActivity returns all registrations for an activity.
func (s *service) ListByActivity(
	ctx context.Context,
	activityID string,
) ([]registrationModel.RegistrationResponse, error) {
	registrations, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	responses := make([]registrationModel.RegistrationResponse, 0, len(registrations))
	for i := range registrations {
		responses = append(responses, *registrationModel.NewRegistrationResponse(&registrations[i], false))
	}
	return responses, nil
}

// releaseSlot frees the slot held by a leaving registration. An underflow
// here means a release without a matching reserve, which is a bug rather
// than a user error: it is logged loudly and the transaction fails.
func (s *service) releaseSlot(ctx context.Context, tx *gorm.DB, activityID string) (*activityModel.Activity, error) {
	activity, err := activityRepository.New(tx).ReleaseSlot(ctx, activityID)
	if err != nil {
		if errors.Is(err, activityModel.ErrReleaseUnderflow) {
			s.logger.Errorw("capacity ledger invariant violation: release without reserve",
				"activity_id", activityID,
			)
		}
		return nil, err
	}
	return activity, nil
}

// publishSlots emits the slotsChanged event for a committed mutation.
// Broadcast is best-effort: it never fails the operation that triggered it.
func (s *service) publishSlots(activity *activityModel.Activity) {
	if activity == nil {
		return
	}
	s.hub.Publish(activity.ID, realtime.NewSlotsChanged(activity.ID, activity.Remaining(), activity.Capacity))
}

// marshalGroupMembers serializes the group member list for storage. An empty
// group is stored as NULL rather than an empty array.
func marshalGroupMembers(members []registrationModel.GroupMember) (datatypes.JSON, error) {
	if len(members) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
