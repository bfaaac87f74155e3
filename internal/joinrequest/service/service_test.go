package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	activityRepository "github.com/volunhub/volunhub/internal/activity/repository"
	joinrequestModel "github.com/volunhub/volunhub/internal/joinrequest/model"
	"github.com/volunhub/volunhub/internal/joinrequest/repository"
	"github.com/volunhub/volunhub/internal/realtime"
)

type testEnv struct {
	db  *gorm.DB
	hub *realtime.Hub
	svc Service
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection serializes access to the in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&activityModel.Activity{},
		&joinrequestModel.JoinRequest{},
		&joinrequestModel.JoinRequestTransition{},
	)
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	hub := realtime.NewHub(64, logger)
	t.Cleanup(hub.Close)

	return &testEnv{
		db:  db,
		hub: hub,
		svc: New(repository.New(db), db, hub, logger),
	}
}

func (e *testEnv) createActivity(t *testing.T) *activityModel.Activity {
	activity, err := activityRepository.New(e.db).Create(context.Background(), "Tree planting", nil,
		time.Now().Add(time.Hour), time.Now().Add(3*time.Hour))
	require.NoError(t, err)
	return activity
}

func (e *testEnv) request(t *testing.T, activityID, subjectID string) *joinrequestModel.JoinRequestResponse {
	resp, err := e.svc.Request(context.Background(), activityID, subjectID)
	require.NoError(t, err)
	return resp
}

func TestService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)

		resp := env.request(t, activity.ID, "vol-1")

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, joinrequestModel.StatusPending, resp.Status)
		assert.Nil(t, resp.DecidedBy)
	})

	t.Run("duplicate pending request", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		env.request(t, activity.ID, "vol-1")

		_, err := env.svc.Request(ctx, activity.ID, "vol-1")

		assert.ErrorIs(t, err, joinrequestModel.ErrAlreadyPending)
	})

	t.Run("missing activity", func(t *testing.T) {
		env := setupTestEnv(t)

		_, err := env.svc.Request(ctx, "nonexistent", "vol-1")

		assert.ErrorIs(t, err, activityModel.ErrActivityNotFound)
	})

	t.Run("reapply after rejection creates a fresh record", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		first := env.request(t, activity.ID, "vol-1")

		require.NoError(t, env.svc.Reject(ctx, first.ID, "org-1"))

		second := env.request(t, activity.ID, "vol-1")
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, joinrequestModel.StatusPending, second.Status)

		// The rejected record is untouched history.
		found, err := env.svc.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, joinrequestModel.StatusRejected, found.Status)
	})

	t.Run("reapply after withdrawal creates a fresh record", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		first := env.request(t, activity.ID, "vol-1")

		require.NoError(t, env.svc.Withdraw(ctx, first.ID, "vol-1"))

		second := env.request(t, activity.ID, "vol-1")
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("concurrent requests yield one pending", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)

		const attempts = 8
		var wg sync.WaitGroup
		results := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.svc.Request(ctx, activity.ID, "vol-1")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, joinrequestModel.ErrAlreadyPending)
			}
		}
		assert.Equal(t, 1, succeeded)
	})
}

func TestService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("approve records the decider", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		req := env.request(t, activity.ID, "vol-1")

		err := env.svc.Approve(ctx, req.ID, "org-1")

		require.NoError(t, err)
		found, err := env.svc.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, joinrequestModel.StatusApproved, found.Status)
		require.NotNil(t, found.DecidedBy)
		assert.Equal(t, "org-1", *found.DecidedBy)
	})

	t.Run("decision is final", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		req := env.request(t, activity.ID, "vol-1")

		require.NoError(t, env.svc.Approve(ctx, req.ID, "org-1"))

		assert.ErrorIs(t, env.svc.Reject(ctx, req.ID, "org-2"), joinrequestModel.ErrInvalidState)
		assert.ErrorIs(t, env.svc.Approve(ctx, req.ID, "org-2"), joinrequestModel.ErrInvalidState)
		assert.ErrorIs(t, env.svc.Withdraw(ctx, req.ID, "vol-1"), joinrequestModel.ErrInvalidState)
	})

	t.Run("not found", func(t *testing.T) {
		env := setupTestEnv(t)

		err := env.svc.Approve(ctx, "nonexistent", "org-1")

		assert.ErrorIs(t, err, joinrequestModel.ErrJoinRequestNotFound)
	})

	t.Run("publishes a membership event", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		req := env.request(t, activity.ID, "vol-1")

		sub := env.hub.Subscribe(activity.ID)
		defer env.hub.Unsubscribe(sub)

		require.NoError(t, env.svc.Reject(ctx, req.ID, "org-1"))

		select {
		case event := <-sub.Events():
			assert.Equal(t, realtime.EventMembershipChanged, event.Type)
			data := event.Data.(realtime.MembershipChangedData)
			assert.Equal(t, realtime.MembershipRejected, data.Kind)
			assert.Equal(t, "vol-1", data.SubjectID)
		case <-time.After(time.Second):
			t.Fatal("expected a membershipChanged event")
		}
	})

	t.Run("concurrent decisions reach exactly one verdict", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		req := env.request(t, activity.ID, "vol-1")

		var wg sync.WaitGroup
		results := make(chan error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			results <- env.svc.Approve(ctx, req.ID, "org-1")
		}()
		go func() {
			defer wg.Done()
			results <- env.svc.Reject(ctx, req.ID, "org-2")
		}()
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, joinrequestModel.ErrInvalidState)
			}
		}
		assert.Equal(t, 1, succeeded)
	})
}

func TestService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("only the owner may withdraw", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		req := env.request(t, activity.ID, "vol-1")

		err := env.svc.Withdraw(ctx, req.ID, "someone-else")
		assert.ErrorIs(t, err, joinrequestModel.ErrNotRequestOwner)

		require.NoError(t, env.svc.Withdraw(ctx, req.ID, "vol-1"))

		found, err := env.svc.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, joinrequestModel.StatusWithdrawn, found.Status)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("includes the transition history", func(t *testing.T) {
		env := setupTestEnv(t)
		activity := env.createActivity(t)
		req := env.request(t, activity.ID, "vol-1")
		require.NoError(t, env.svc.Approve(ctx, req.ID, "org-1"))

		found, err := env.svc.Get(ctx, req.ID)

		require.NoError(t, err)
		require.Len(t, found.History, 2)
		assert.Equal(t, joinrequestModel.StatusPending, found.History[0].ToStatus)
		assert.Equal(t, "vol-1", found.History[0].ActorID)
		assert.Equal(t, joinrequestModel.StatusPending, found.History[1].FromStatus)
		assert.Equal(t, joinrequestModel.StatusApproved, found.History[1].ToStatus)
		assert.Equal(t, "org-1", found.History[1].ActorID)
	})
}

func TestService_ListByActivity(t *testing.T) {
	ctx := context.Background()

	env := setupTestEnv(t)
	activity := env.createActivity(t)
	env.request(t, activity.ID, "vol-1")
	env.request(t, activity.ID, "vol-2")

	requests, err := env.svc.ListByActivity(ctx, activity.ID)

	require.NoError(t, err)
	assert.Len(t, requests, 2)
}
