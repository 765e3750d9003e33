package dto

import "github.com/emirhan/campuslink/internal/app/models"

// StatusResponse is the minimal envelope returned by action endpoints
// (follow, unfollow, join, leave, approve, reject).
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OrganizationListResponse is returned by GET /organizations
type OrganizationListResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    []*models.Organization `json:"data"`
}

// EventListResponse is returned by GET /events. The backend uses "events"
// rather than "data" for this one endpoint.
type EventListResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Events  []*models.Event `json:"events"`
}

// StudentListResponse is returned by GET /students
type StudentListResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    []*models.User `json:"data"`
}

// EventResponse is returned by event create/update calls; Data carries the
// canonical server-assigned record.
type EventResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    *models.Event `json:"data"`
}

// OrganizationResponse is returned by PUT /organizations/{id}
type OrganizationResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message,omitempty"`
	Organization *models.Organization `json:"organization"`
}

// ProfileResponse is returned by GET /auth/profile
type ProfileResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    *models.User `json:"data"`
}

// ApprovalListResponse is returned by GET /approvals
type ApprovalListResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message,omitempty"`
	Data    []*models.PendingApproval `json:"data"`
}
