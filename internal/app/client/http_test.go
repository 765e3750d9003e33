package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirhan/campuslink/internal/app/models/dto"
	"github.com/emirhan/campuslink/internal/pkg/apperrors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewHTTPClient(srv.URL, 5*time.Second, func() string { return "test-token" }, zerolog.Nop())
	return c, srv
}

func TestGetOrganizations(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/organizations", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":42,"name":"Robotics Club","followers":10}]}`))
	})

	orgs, err := c.GetOrganizations(context.Background())

	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, int64(42), orgs[0].ID)
	assert.Equal(t, "Robotics Club", orgs[0].Name)
	assert.Equal(t, 10, orgs[0].Followers)
}

func TestGetEventsUsesEventsKey(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"events":[{"id":5,"title":"Career Fair","participants":[7],"registered":1}]}`))
	})

	events, err := c.GetEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []int64{7}, events[0].Participants)
}

func TestActionFailureSurfacesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/organizations/42/follow", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"Already following this organization"}`))
	})

	err := c.FollowOrganization(context.Background(), 42)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAPIFailure))
	assert.Contains(t, err.Error(), "Already following this organization")
}

func TestActionFailureWithoutMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false}`))
	})

	err := c.JoinEvent(context.Background(), 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "the request could not be completed")
}

func TestNonJSONResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	})

	_, err := c.GetProfile(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadResponse))
}

func TestTransportErrorWrapped(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.GetOrganizations(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrRequestFailed))
}

func TestCreateEventSendsMultipartForm(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/events", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Career Fair", r.FormValue("title"))
		assert.Equal(t, "2026-10-01", r.FormValue("date"))
		assert.Equal(t, "42", r.FormValue("orgId"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "poster.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":11,"title":"Career Fair","orgId":42}}`))
	})

	created, err := c.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Career Fair",
		Date:      "2026-10-01",
		StartTime: "09:00",
		EndTime:   "17:00",
		OrgID:     42,
		Capacity:  200,
		ImageName: "poster.png",
		Image:     []byte("fake png bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, int64(42), created.OrgID)
}

func TestRejectApprovalPostsBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/3/reject", r.URL.Path)

		var body dto.RejectApprovalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Missing charter document", body.Reason)
		assert.True(t, body.AllowResubmission)
		assert.Equal(t, "2026-10-01", body.Deadline)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	})

	err := c.RejectApproval(context.Background(), 3, &dto.RejectApprovalRequest{
		Reason:            "Missing charter document",
		AllowResubmission: true,
		Deadline:          "2026-10-01",
	})

	require.NoError(t, err)
}
