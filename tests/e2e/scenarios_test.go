//go:build e2e
// +build e2e

package e2e

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityModel "github.com/volunhub/volunhub/internal/activity/model"
	joinrequestModel "github.com/volunhub/volunhub/internal/joinrequest/model"
	registrationModel "github.com/volunhub/volunhub/internal/registration/model"
)

func intPtr(v int) *int {
	return &v
}

func (s *E2ETestSuite) createActivity(capacity *int) activityModel.ActivityResponse {
	var resp struct {
		Activity activityModel.ActivityResponse `json:"activity"`
	}
	code := s.doJSON(http.MethodPost, "/activities", activityModel.CreateActivityRequest{
		Name:      "Shelter volunteering",
		Capacity:  capacity,
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	}, &resp)
	require.Equal(s.T(), http.StatusCreated, code)
	return resp.Activity
}

func (s *E2ETestSuite) register(activityID, subjectID string) registrationModel.RegistrationResponse {
	var resp struct {
		Registration registrationModel.RegistrationResponse `json:"registration"`
	}
	code := s.doJSON(http.MethodPost, "/activities/"+activityID+"/registrations",
		registrationModel.RegisterRequest{SubjectID: subjectID}, &resp)
	require.Equal(s.T(), http.StatusCreated, code)
	return resp.Registration
}

func (s *E2ETestSuite) TestFullAttendanceFlow() {
	activity := s.createActivity(intPtr(3))
	reg := s.register(activity.ID, "vol-1")
	require.NotEmpty(s.T(), reg.CheckInToken)

	var snapshot activityModel.SlotsResponse
	code := s.doJSON(http.MethodGet, "/activities/"+activity.ID+"/slots", nil, &snapshot)
	require.Equal(s.T(), http.StatusOK, code)
	require.NotNil(s.T(), snapshot.Remaining)
	assert.Equal(s.T(), 2, *snapshot.Remaining)

	var checkIn registrationModel.CheckInResponse
	code = s.doJSON(http.MethodPost, "/registrations/"+reg.ID+"/checkin",
		registrationModel.ScanRequest{Token: reg.CheckInToken}, &checkIn)
	require.Equal(s.T(), http.StatusOK, code)
	require.NotEmpty(s.T(), checkIn.CheckOutToken)

	var checkOut registrationModel.CheckOutResponse
	code = s.doJSON(http.MethodPost, "/registrations/"+reg.ID+"/checkout",
		registrationModel.ScanRequest{Token: checkIn.CheckOutToken}, &checkOut)
	require.Equal(s.T(), http.StatusOK, code)
	assert.NotEmpty(s.T(), checkOut.CheckedOutAt)

	// A used exit token cannot be replayed.
	code = s.doJSON(http.MethodPost, "/registrations/"+reg.ID+"/checkout",
		registrationModel.ScanRequest{Token: checkIn.CheckOutToken}, nil)
	assert.Equal(s.T(), http.StatusConflict, code)
}

func (s *E2ETestSuite) TestCapacityIsNeverOversold() {
	activity := s.createActivity(intPtr(5))

	const attempts = 20
	var wg sync.WaitGroup
	codes := make(chan int, attempts)

	for i := 0; i < attempts; i++ {
		subjectID := fmt.Sprintf("vol-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			code := s.doJSON(http.MethodPost, "/activities/"+activity.ID+"/registrations",
				registrationModel.RegisterRequest{SubjectID: subjectID}, nil)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(s.T(), http.StatusConflict, code)
		}
	}
	assert.Equal(s.T(), 5, created)

	var count int64
	err := s.db.Table("registrations").
		Where("activity_id = ? AND status = ?", activity.ID, "ACTIVE").
		Count(&count).Error
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(5), count)
}

func (s *E2ETestSuite) TestCapacityEditGuard() {
	activity := s.createActivity(intPtr(5))
	s.register(activity.ID, "vol-1")
	s.register(activity.ID, "vol-2")

	code := s.doJSON(http.MethodPatch, "/activities/"+activity.ID+"/capacity",
		activityModel.UpdateCapacityRequest{Capacity: intPtr(1)}, nil)
	assert.Equal(s.T(), http.StatusConflict, code)

	var resp struct {
		Activity activityModel.ActivityResponse `json:"activity"`
	}
	code = s.doJSON(http.MethodPatch, "/activities/"+activity.ID+"/capacity",
		activityModel.UpdateCapacityRequest{Capacity: nil}, &resp)
	require.Equal(s.T(), http.StatusOK, code)
	assert.True(s.T(), resp.Activity.Unlimited)
}

func (s *E2ETestSuite) TestJoinRequestFlow() {
	activity := s.createActivity(nil)

	var created struct {
		JoinRequest joinrequestModel.JoinRequestResponse `json:"join_request"`
	}
	code := s.doJSON(http.MethodPost, "/activities/"+activity.ID+"/join-requests",
		joinrequestModel.CreateJoinRequestRequest{SubjectID: "vol-1"}, &created)
	require.Equal(s.T(), http.StatusCreated, code)

	code = s.doJSON(http.MethodPost, "/activities/"+activity.ID+"/join-requests",
		joinrequestModel.CreateJoinRequestRequest{SubjectID: "vol-1"}, nil)
	assert.Equal(s.T(), http.StatusConflict, code)

	code = s.doJSON(http.MethodPost, "/join-requests/"+created.JoinRequest.ID+"/approve",
		joinrequestModel.DecisionRequest{ActorID: "org-1"}, nil)
	require.Equal(s.T(), http.StatusNoContent, code)

	var detail struct {
		JoinRequest joinrequestModel.JoinRequestDetailResponse `json:"join_request"`
	}
	code = s.doJSON(http.MethodGet, "/join-requests/"+created.JoinRequest.ID, nil, &detail)
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), joinrequestModel.StatusApproved, detail.JoinRequest.Status)
	require.NotNil(s.T(), detail.JoinRequest.DecidedBy)
	assert.Equal(s.T(), "org-1", *detail.JoinRequest.DecidedBy)
}

func (s *E2ETestSuite) TestEventStreamDeliversSlotUpdates() {
	activity := s.createActivity(intPtr(4))

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/activities/"+activity.ID+"/events", nil)
	require.NoError(s.T(), err)

	streamClient := &http.Client{} // no timeout: the stream stays open
	resp, err := streamClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	require.Eventually(s.T(), func() bool {
		return s.hub.SubscriberCount(activity.ID) == 1
	}, 2*time.Second, 20*time.Millisecond)

	s.register(activity.ID, "vol-1")

	found := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(resp.Body)
		for {
			line, readErr := reader.ReadString('\n')
			if readErr != nil {
				return
			}
			if strings.HasPrefix(line, "event:") {
				found <- line
				return
			}
		}
	}()

	select {
	case line := <-found:
		assert.Contains(s.T(), line, "slotsChanged")
	case <-time.After(3 * time.Second):
		s.T().Fatal("timed out waiting for the slotsChanged event")
	}
}
