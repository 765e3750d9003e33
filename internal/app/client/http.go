package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/app/models/dto"
	"github.com/emirhan/campuslink/internal/pkg/apperrors"
)

// HTTPClient implements APIClient over JSON/HTTP
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenProvider
	logger  zerolog.Logger
}

// NewHTTPClient creates an API client for the given base URL
// (e.g. http://localhost:5000/api).
func NewHTTPClient(baseURL string, timeout time.Duration, token TokenProvider, logger zerolog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		token:   token,
		logger:  logger,
	}
}

// GetOrganizations retrieves all organizations (public)
func (c *HTTPClient) GetOrganizations(ctx context.Context) ([]*models.Organization, error) {
	var resp dto.OrganizationListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/organizations", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Data, nil
}

// GetEvents retrieves all events (public)
func (c *HTTPClient) GetEvents(ctx context.Context) ([]*models.Event, error) {
	var resp dto.EventListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/events", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Events, nil
}

// GetStudents retrieves the full student roster
func (c *HTTPClient) GetStudents(ctx context.Context) ([]*models.User, error) {
	var resp dto.StudentListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/students", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Data, nil
}

// GetProfile retrieves the current authenticated user
func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	var resp dto.ProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Data, nil
}

// GetApprovals retrieves pending approval requests
func (c *HTTPClient) GetApprovals(ctx context.Context) ([]*models.PendingApproval, error) {
	var resp dto.ApprovalListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/approvals", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Data, nil
}

// FollowOrganization registers the acting user as a follower
func (c *HTTPClient) FollowOrganization(ctx context.Context, orgID int64) error {
	return c.doAction(ctx, "/organizations/"+formatID(orgID)+"/follow", nil)
}

// UnfollowOrganization removes the acting user as a follower
func (c *HTTPClient) UnfollowOrganization(ctx context.Context, orgID int64) error {
	return c.doAction(ctx, "/organizations/"+formatID(orgID)+"/unfollow", nil)
}

// JoinEvent registers the acting user for the event
func (c *HTTPClient) JoinEvent(ctx context.Context, eventID int64) error {
	return c.doAction(ctx, "/events/"+formatID(eventID)+"/join", nil)
}

// LeaveEvent removes the acting user from the event
func (c *HTTPClient) LeaveEvent(ctx context.Context, eventID int64) error {
	return c.doAction(ctx, "/events/"+formatID(eventID)+"/leave", nil)
}

// CreateEvent submits a new event as a multipart form so the image can ride
// along, and returns the canonical server record.
func (c *HTTPClient) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	fields := map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"date":        req.Date,
		"startTime":   req.StartTime,
		"endTime":     req.EndTime,
		"location":    req.Location,
		"orgId":       formatID(req.OrgID),
		"capacity":    strconv.Itoa(req.Capacity),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	if len(req.Image) > 0 {
		part, err := form.CreateFormFile("image", req.ImageName)
		if err != nil {
			return nil, fmt.Errorf("failed to attach image: %w", err)
		}
		if _, err := part.Write(req.Image); err != nil {
			return nil, fmt.Errorf("failed to attach image: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	var resp dto.EventResponse
	if err := c.send(httpReq, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Data, nil
}

// UpdateEvent replaces an event's editable fields
func (c *HTTPClient) UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*models.Event, error) {
	var resp dto.EventResponse
	if err := c.doJSON(ctx, http.MethodPut, "/events/"+formatID(id), req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Data, nil
}

// DeleteEvent removes an event
func (c *HTTPClient) DeleteEvent(ctx context.Context, id int64) error {
	var resp dto.StatusResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/events/"+formatID(id), nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return apperrors.NewAPIFailureError(resp.Message)
	}
	return nil
}

// UpdateOrganization patches an organization's fields
func (c *HTTPClient) UpdateOrganization(ctx context.Context, id int64, req *dto.UpdateOrganizationRequest) (*models.Organization, error) {
	var resp dto.OrganizationResponse
	if err := c.doJSON(ctx, http.MethodPut, "/organizations/"+formatID(id), req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Organization == nil {
		return nil, apperrors.NewAPIFailureError(resp.Message)
	}
	return resp.Organization, nil
}

// ApproveOrganization approves a pending organization
func (c *HTTPClient) ApproveOrganization(ctx context.Context, id int64) error {
	return c.doAction(ctx, "/organizations/"+formatID(id)+"/approve", nil)
}

// RejectApproval rejects a pending approval with an optional reason
func (c *HTTPClient) RejectApproval(ctx context.Context, id int64, req *dto.RejectApprovalRequest) error {
	return c.doAction(ctx, "/organizations/"+formatID(id)+"/reject", req)
}

// doAction POSTs to an action endpoint returning the minimal envelope
func (c *HTTPClient) doAction(ctx context.Context, path string, body interface{}) error {
	var resp dto.StatusResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return apperrors.NewAPIFailureError(resp.Message)
	}
	return nil
}

// doJSON performs a JSON round trip against the API
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to serialize request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out interface{}) error {
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("API request failed")
		return apperrors.NewCustomError(apperrors.ErrRequestFailed, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewCustomError(apperrors.ErrBadResponse, "failed to read response body")
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("url", req.URL.String()).
			Msg("API returned a non-JSON body")
		return apperrors.NewCustomError(apperrors.ErrBadResponse, "unexpected response from server")
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Msg("API request completed")
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
