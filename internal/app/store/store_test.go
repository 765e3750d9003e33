package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/app/models/dto"
	"github.com/emirhan/campuslink/internal/app/session"
	"github.com/emirhan/campuslink/internal/pkg/apperrors"
	"github.com/emirhan/campuslink/internal/pkg/syncbus"
)

func newTestStore(t *testing.T, api *MockAPI) (*MembershipStore, *syncbus.LocalBus) {
	t.Helper()

	sess, err := session.NewStore(session.Options{
		Dir:      t.TempDir(),
		UserKey:  "user",
		TokenKey: "token",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	bus := syncbus.NewLocalBus()
	s := New(api, sess, session.NewSignals(zerolog.Nop()), bus, zerolog.Nop())
	return s, bus
}

func seed(s *MembershipStore, orgs []*models.Organization, events []*models.Event, users []*models.User) {
	s.mu.Lock()
	s.organizations = orgs
	s.events = events
	s.users = users
	s.userIndex = models.NewUserIndex(users)
	s.mu.Unlock()
}

func futureEvent(id int64) *models.Event {
	return &models.Event{
		ID:        id,
		Title:     "Career Fair",
		Date:      time.Now().Add(24 * time.Hour).Format("2006-01-02"),
		StartTime: "09:00",
		EndTime:   "17:00",
	}
}

func pastEvent(id int64) *models.Event {
	return &models.Event{
		ID:        id,
		Title:     "Orientation",
		Date:      time.Now().Add(-24 * time.Hour).Format("2006-01-02"),
		StartTime: "09:00",
		EndTime:   "17:00",
	}
}

func TestFollowOrganization(t *testing.T) {
	api := new(MockAPI)
	api.On("FollowOrganization", mock.Anything, int64(42)).Return(nil)

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1", FollowedOrgs: []int64{1, 2, 3}}
	org := &models.Organization{ID: 42, Name: "Robotics Club", Followers: 10}
	seed(s, []*models.Organization{org}, nil, []*models.User{user})

	err := s.FollowOrganization(context.Background(), "u1", 42)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 42}, user.FollowedOrgs)
	assert.Equal(t, 11, org.Followers)
	assert.True(t, s.IsUserFollowingOrg("u1", 42))
	api.AssertExpectations(t)
}

func TestFollowOrganizationIsSetAdd(t *testing.T) {
	api := new(MockAPI)
	api.On("FollowOrganization", mock.Anything, int64(42)).Return(nil)

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1"}
	org := &models.Organization{ID: 42, Followers: 10}
	seed(s, []*models.Organization{org}, nil, []*models.User{user})

	require.NoError(t, s.FollowOrganization(context.Background(), "u1", 42))
	require.NoError(t, s.FollowOrganization(context.Background(), "u1", 42))

	// Following twice leaves one entry and one increment
	assert.Equal(t, []int64{42}, user.FollowedOrgs)
	assert.Equal(t, 11, org.Followers)
	api.AssertNumberOfCalls(t, "FollowOrganization", 2)
}

func TestFollowOrganizationAPIFailureLeavesStateUntouched(t *testing.T) {
	api := new(MockAPI)
	api.On("FollowOrganization", mock.Anything, int64(42)).
		Return(apperrors.NewAPIFailureError("Organization is suspended"))

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1", FollowedOrgs: []int64{1}}
	org := &models.Organization{ID: 42, Followers: 10}
	seed(s, []*models.Organization{org}, nil, []*models.User{user})

	err := s.FollowOrganization(context.Background(), "u1", 42)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAPIFailure))
	assert.Contains(t, err.Error(), "Organization is suspended")
	assert.Equal(t, []int64{1}, user.FollowedOrgs)
	assert.Equal(t, 10, org.Followers)
}

func TestUnfollowOrganizationFloorsAtZero(t *testing.T) {
	api := new(MockAPI)
	api.On("UnfollowOrganization", mock.Anything, int64(42)).Return(nil)

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1", FollowedOrgs: []int64{42}}
	org := &models.Organization{ID: 42, Followers: 0}
	seed(s, []*models.Organization{org}, nil, []*models.User{user})

	require.NoError(t, s.UnfollowOrganization(context.Background(), "u1", 42))

	assert.Empty(t, user.FollowedOrgs)
	assert.Equal(t, 0, org.Followers)
}

func TestJoinLeaveEventRoundTrip(t *testing.T) {
	api := new(MockAPI)
	api.On("JoinEvent", mock.Anything, int64(5)).Return(nil)
	api.On("LeaveEvent", mock.Anything, int64(5)).Return(nil)

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1"}
	event := futureEvent(5)
	event.Participants = []int64{3}
	event.Registered = 1
	seed(s, nil, []*models.Event{event}, []*models.User{user})

	require.NoError(t, s.JoinEvent(context.Background(), "u1", 5))
	assert.Equal(t, []int64{3, 7}, event.Participants)
	assert.Equal(t, 2, event.Registered)
	assert.Equal(t, []int64{5}, user.JoinedEvents)
	assert.True(t, s.IsUserJoinedEvent("u1", 5))

	require.NoError(t, s.LeaveEvent(context.Background(), "u1", 5))
	assert.Equal(t, []int64{3}, event.Participants)
	assert.Equal(t, 1, event.Registered)
	assert.Empty(t, user.JoinedEvents)
	assert.False(t, s.IsUserJoinedEvent("u1", 5))
}

func TestJoinEventRejectsEndedEventLocally(t *testing.T) {
	api := new(MockAPI)

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1"}
	seed(s, nil, []*models.Event{pastEvent(5)}, []*models.User{user})

	err := s.JoinEvent(context.Background(), "u1", 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEventEnded))
	assert.Contains(t, err.Error(), "Event has ended, registration is closed")
	api.AssertNotCalled(t, "JoinEvent", mock.Anything, mock.Anything)
}

func TestJoinEventUnknownEvent(t *testing.T) {
	api := new(MockAPI)

	s, _ := newTestStore(t, api)
	seed(s, nil, nil, []*models.User{{ID: 7, ObjectID: "u1"}})

	err := s.JoinEvent(context.Background(), "u1", 99)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	api.AssertNotCalled(t, "JoinEvent", mock.Anything, mock.Anything)
}

func TestJoinEventUnknownUserRefFallsBackToZero(t *testing.T) {
	api := new(MockAPI)
	api.On("JoinEvent", mock.Anything, int64(5)).Return(nil)

	s, _ := newTestStore(t, api)
	event := futureEvent(5)
	seed(s, nil, []*models.Event{event}, nil)

	require.NoError(t, s.JoinEvent(context.Background(), "ghost", 5))

	assert.Equal(t, []int64{0}, event.Participants)
	assert.Equal(t, 1, event.Registered)
}

func TestLeaveEventRegisteredFloorsAtZero(t *testing.T) {
	api := new(MockAPI)
	api.On("LeaveEvent", mock.Anything, int64(5)).Return(nil)

	s, _ := newTestStore(t, api)
	user := &models.User{ID: 7, ObjectID: "u1", JoinedEvents: []int64{5}}
	event := futureEvent(5)
	event.Participants = []int64{7}
	event.Registered = 0
	seed(s, nil, []*models.Event{event}, []*models.User{user})

	require.NoError(t, s.LeaveEvent(context.Background(), "u1", 5))

	assert.Empty(t, event.Participants)
	assert.Equal(t, 0, event.Registered)
}

func TestIsUserJoinedEventParticipantsWin(t *testing.T) {
	api := new(MockAPI)

	s, _ := newTestStore(t, api)
	// The user's JoinedEvents claims membership the event does not confirm
	user := &models.User{ID: 7, ObjectID: "u1", JoinedEvents: []int64{5}}
	event := futureEvent(5)
	event.Participants = []int64{3}
	seed(s, nil, []*models.Event{event}, []*models.User{user})

	assert.False(t, s.IsUserJoinedEvent("u1", 5))
}

func TestMembershipQueriesDefaultToFalse(t *testing.T) {
	api := new(MockAPI)

	s, _ := newTestStore(t, api)
	seed(s, []*models.Organization{{ID: 42}}, []*models.Event{futureEvent(5)}, nil)

	assert.False(t, s.IsUserFollowingOrg("nobody", 42))
	assert.False(t, s.IsUserJoinedEvent("nobody", 5))
	assert.False(t, s.IsUserJoinedEvent("nobody", 99))
}

func TestDeleteEventScrubsJoinedEvents(t *testing.T) {
	api := new(MockAPI)
	api.On("DeleteEvent", mock.Anything, int64(5)).Return(nil)

	s, _ := newTestStore(t, api)
	alice := &models.User{ID: 7, ObjectID: "u1", JoinedEvents: []int64{5, 9}}
	bob := &models.User{ID: 8, ObjectID: "u2", JoinedEvents: []int64{5}}
	seed(s, nil, []*models.Event{futureEvent(5), futureEvent(9)}, []*models.User{alice, bob})

	require.NoError(t, s.DeleteEvent(context.Background(), 5))

	assert.Nil(t, s.EventByID(5))
	assert.NotNil(t, s.EventByID(9))
	assert.Equal(t, []int64{9}, alice.JoinedEvents)
	assert.Empty(t, bob.JoinedEvents)
}

func TestDeleteEventScrubsCurrentUserOutsideRoster(t *testing.T) {
	api := new(MockAPI)
	api.On("DeleteEvent", mock.Anything, int64(5)).Return(nil)

	s, _ := newTestStore(t, api)
	// The merged current user is indexed but not part of the student roster
	current := &models.User{ID: 7, ObjectID: "u1", JoinedEvents: []int64{5, 9}}
	seed(s, nil, []*models.Event{futureEvent(5), futureEvent(9)}, nil)
	s.mu.Lock()
	s.currentUser = current
	s.userIndex.Put(current)
	s.mu.Unlock()

	updated := s.signals.OnProfileUpdated()

	require.NoError(t, s.DeleteEvent(context.Background(), 5))

	assert.Equal(t, []int64{9}, current.JoinedEvents)

	select {
	case got := <-updated:
		assert.Equal(t, []int64{9}, got.JoinedEvents)
	default:
		t.Fatal("profile update was not signaled")
	}

	saved, err := s.session.LoadUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, saved.JoinedEvents)
}

func TestCreateEventAppendsServerRecord(t *testing.T) {
	created := futureEvent(11)
	created.OrgID = 42
	created.Registered = 0

	api := new(MockAPI)
	api.On("CreateEvent", mock.Anything, mock.Anything).Return(created, nil)

	s, _ := newTestStore(t, api)
	seed(s, nil, []*models.Event{futureEvent(5)}, nil)

	got, err := s.CreateEvent(context.Background(), &dto.CreateEventRequest{Title: "Career Fair"})

	require.NoError(t, err)
	assert.Same(t, created, got)
	assert.Len(t, s.Events(), 2)
	assert.Same(t, created, s.EventByID(11))
}

func TestUpdateEventReplacesRecord(t *testing.T) {
	updated := futureEvent(5)
	updated.Title = "Career Fair 2026"

	api := new(MockAPI)
	api.On("UpdateEvent", mock.Anything, int64(5), mock.Anything).Return(updated, nil)

	s, _ := newTestStore(t, api)
	seed(s, nil, []*models.Event{futureEvent(5)}, nil)

	_, err := s.UpdateEvent(context.Background(), 5, &dto.UpdateEventRequest{})

	require.NoError(t, err)
	assert.Len(t, s.Events(), 1)
	assert.Equal(t, "Career Fair 2026", s.EventByID(5).Title)
}

func TestUpdateOrganizationRefetchesEvents(t *testing.T) {
	updated := &models.Organization{ID: 42, Name: "Robotics Society"}
	refreshed := []*models.Event{futureEvent(5), futureEvent(6)}

	api := new(MockAPI)
	api.On("UpdateOrganization", mock.Anything, int64(42), mock.Anything).Return(updated, nil)
	api.On("GetEvents", mock.Anything).Return(refreshed, nil)

	s, _ := newTestStore(t, api)
	seed(s, []*models.Organization{{ID: 42, Name: "Robotics Club"}}, []*models.Event{futureEvent(5)}, nil)

	_, err := s.UpdateOrganization(context.Background(), 42, &dto.UpdateOrganizationRequest{})

	require.NoError(t, err)
	assert.Equal(t, "Robotics Society", s.OrganizationByID(42).Name)
	assert.Len(t, s.Events(), 2)
	api.AssertCalled(t, "GetEvents", mock.Anything)
}

func TestUpdateOrganizationSurvivesRefetchFailure(t *testing.T) {
	updated := &models.Organization{ID: 42, Name: "Robotics Society"}

	api := new(MockAPI)
	api.On("UpdateOrganization", mock.Anything, int64(42), mock.Anything).Return(updated, nil)
	api.On("GetEvents", mock.Anything).Return(nil, errors.New("network down"))

	s, _ := newTestStore(t, api)
	seed(s, []*models.Organization{{ID: 42}}, []*models.Event{futureEvent(5)}, nil)

	_, err := s.UpdateOrganization(context.Background(), 42, &dto.UpdateOrganizationRequest{})

	require.NoError(t, err)
	assert.Equal(t, "Robotics Society", s.OrganizationByID(42).Name)
	// Stale denorms stay until the next reload
	assert.Len(t, s.Events(), 1)
}

func TestApproveOrganizationActivatesEntity(t *testing.T) {
	api := new(MockAPI)
	api.On("ApproveOrganization", mock.Anything, int64(3)).Return(nil)

	s, _ := newTestStore(t, api)
	org := &models.Organization{ID: 42, Status: models.OrgStatusPending}
	seed(s, []*models.Organization{org}, nil, nil)
	s.mu.Lock()
	s.approvals = []*models.PendingApproval{{
		ID:       3,
		Type:     models.ApprovalTypeOrganization,
		EntityID: 42,
		Status:   models.ApprovalStatusPending,
	}}
	s.mu.Unlock()

	require.NoError(t, s.ApproveOrganization(context.Background(), 3))

	assert.Equal(t, models.ApprovalStatusApproved, s.PendingApprovals()[0].Status)
	assert.Equal(t, models.OrgStatusActive, org.Status)
}

func TestRejectApprovalRecordsReasonAndDeadline(t *testing.T) {
	api := new(MockAPI)
	api.On("RejectApproval", mock.Anything, int64(3), mock.Anything).Return(nil)

	s, _ := newTestStore(t, api)
	s.mu.Lock()
	s.approvals = []*models.PendingApproval{{
		ID:       3,
		Type:     models.ApprovalTypeOrganization,
		EntityID: 42,
		Status:   models.ApprovalStatusPending,
	}}
	s.mu.Unlock()

	err := s.RejectApproval(context.Background(), 3, &dto.RejectApprovalRequest{
		Reason:            "Missing charter document",
		AllowResubmission: true,
		Deadline:          "2026-10-01",
	})

	require.NoError(t, err)
	approval := s.PendingApprovals()[0]
	assert.Equal(t, models.ApprovalStatusRejected, approval.Status)
	assert.Equal(t, "Missing charter document", approval.RejectionReason)
	require.NotNil(t, approval.ResubmissionDeadline)
	assert.Equal(t, "2026-10-01", approval.ResubmissionDeadline.Format("2006-01-02"))
}

func TestMutationsBroadcastTaggedMessages(t *testing.T) {
	api := new(MockAPI)
	api.On("FollowOrganization", mock.Anything, int64(42)).Return(nil)

	s, bus := newTestStore(t, api)
	seed(s, []*models.Organization{{ID: 42}}, nil, []*models.User{{ID: 7, ObjectID: "u1"}})

	var got []*syncbus.Message
	unsub := bus.Subscribe(func(msg *syncbus.Message) { got = append(got, msg) })
	defer unsub()

	require.NoError(t, s.FollowOrganization(context.Background(), "u1", 42))

	require.Len(t, got, 1)
	assert.Equal(t, syncbus.MessageTypeDataUpdate, got[0].Type)
	assert.Equal(t, syncbus.ActionFollow, got[0].Action)
	assert.Equal(t, int64(42), got[0].OrgID)
	assert.Equal(t, s.Origin(), got[0].Origin)
	assert.False(t, got[0].Timestamp.IsZero())
}
