package dto

// CreateEventRequest is submitted as a multipart form so the event image can
// ride along with the fields. Registered and participants are never sent; the
// server assigns both.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location,omitempty"`
	OrgID       int64  `json:"orgId"`
	Capacity    int    `json:"capacity"`

	// Optional image payload; sent as the "image" form file when non-empty.
	ImageName string `json:"-"`
	Image     []byte `json:"-"`
}

// UpdateEventRequest carries the editable event fields for PUT /events/{id}
type UpdateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location,omitempty"`
	Capacity    int    `json:"capacity"`
}

// UpdateOrganizationRequest carries the editable organization fields for
// PUT /organizations/{id}
type UpdateOrganizationRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	President   string `json:"president,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
}

// RejectApprovalRequest is the body of POST /organizations/{id}/reject
type RejectApprovalRequest struct {
	Reason            string `json:"reason,omitempty"`
	AllowResubmission bool   `json:"allowResubmission"`
	Deadline          string `json:"deadline,omitempty"`
}
