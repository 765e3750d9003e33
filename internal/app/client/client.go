package client

import (
	"context"

	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/app/models/dto"
)

// APIClient is the boundary to the platform's REST backend. Implementations
// must report logical failures ({success:false, message}) as errors carrying
// the server message, identically to transport failures; callers never
// inspect envelopes.
type APIClient interface {
	// Public bulk reads
	GetOrganizations(ctx context.Context) ([]*models.Organization, error)
	GetEvents(ctx context.Context) ([]*models.Event, error)

	// Authenticated reads
	GetStudents(ctx context.Context) ([]*models.User, error)
	GetProfile(ctx context.Context) (*models.User, error)
	GetApprovals(ctx context.Context) ([]*models.PendingApproval, error)

	// Follow relationship
	FollowOrganization(ctx context.Context, orgID int64) error
	UnfollowOrganization(ctx context.Context, orgID int64) error

	// Event participation
	JoinEvent(ctx context.Context, eventID int64) error
	LeaveEvent(ctx context.Context, eventID int64) error

	// Event management. CreateEvent returns the canonical server-assigned
	// record; clients must never construct the new event themselves.
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	// Organization management
	UpdateOrganization(ctx context.Context, id int64, req *dto.UpdateOrganizationRequest) (*models.Organization, error)

	// Approval workflow
	ApproveOrganization(ctx context.Context, id int64) error
	RejectApproval(ctx context.Context, id int64, req *dto.RejectApprovalRequest) error
}

// TokenProvider supplies the current bearer token, or "" when there is no
// session. It is consulted per request so a refreshed login takes effect
// without rebuilding the client.
type TokenProvider func() string
