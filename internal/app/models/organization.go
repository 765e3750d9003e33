package models

// OrgStatus defines the lifecycle status of an organization
type OrgStatus string

const (
	OrgStatusPending   OrgStatus = "pending"
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
	OrgStatusRejected  OrgStatus = "rejected"
)

// Organization represents a student-run organization.
// Followers is a denormalized count; the authoritative relation is the set of
// users whose FollowedOrgs contains this organization's ID. The two are
// reconciled on every full reload.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Founded     string    `json:"founded,omitempty"`
	President   string    `json:"president,omitempty"`
	Email       string    `json:"email,omitempty"`
	Website     string    `json:"website,omitempty"`
	Social      *Social   `json:"social,omitempty"`
	Status      OrgStatus `json:"status"`
	Followers   int       `json:"followers"`
	Members     int       `json:"members"` // self-reported, not derived
}

// Social holds an organization's social media links
type Social struct {
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}
