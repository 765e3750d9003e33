package models

import "time"

// ApprovalType defines what kind of entity an approval request concerns
type ApprovalType string

const (
	ApprovalTypeOrganization ApprovalType = "organization"
	ApprovalTypeStudent      ApprovalType = "student"
)

// ApprovalStatus defines the state of an approval request
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// PendingApproval represents a registration awaiting admin review.
// EntityID references the organization or user being approved.
type PendingApproval struct {
	ID                   int64          `json:"id"`
	Type                 ApprovalType   `json:"type"`
	Status               ApprovalStatus `json:"status"`
	EntityID             int64          `json:"entityId"`
	ApplicantName        string         `json:"applicantName,omitempty"`
	ApplicantEmail       string         `json:"applicantEmail,omitempty"`
	SubmittedAt          time.Time      `json:"submittedAt"`
	RejectionReason      string         `json:"rejectionReason,omitempty"`
	ResubmissionDeadline *time.Time     `json:"resubmissionDeadline,omitempty"`
}
