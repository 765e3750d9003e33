package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emirhan/campuslink/internal/app/client"
	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/app/session"
	"github.com/emirhan/campuslink/internal/pkg/syncbus"
)

// MembershipStore holds the client's copy of the platform data and keeps the
// denormalized views consistent across mutations: the acting user's
// membership arrays, each organization's follower counter, and each event's
// registered counter plus participants array.
//
// Mutations follow one template: call the API; on failure return the error
// with no local change; on success apply the in-memory patch, persist the
// acting user's snapshot when it was touched, and broadcast a data-update so
// other contexts reload. State is only ever patched after the server
// confirms, which is what makes rollback unnecessary.
type MembershipStore struct {
	api     client.APIClient
	session *session.Store
	signals *session.Signals
	bus     syncbus.Bus
	logger  zerolog.Logger

	// origin tags outgoing bus messages so this store can ignore its own
	// broadcasts when they echo back through the relay.
	origin string

	mu            sync.RWMutex
	organizations []*models.Organization
	events        []*models.Event
	users         []*models.User
	approvals     []*models.PendingApproval
	userIndex     *models.UserIndex
	currentUser   *models.User

	// Authenticated bootstrap bookkeeping: loaded is the one-shot flag,
	// reloading/pending coalesce invalidations arriving mid-load.
	authLoaded    bool
	authReloading bool
	authPending   bool

	unsubscribe []func()
}

// New creates a MembershipStore over the given collaborators. The bus and
// session store may not be nil; use a LocalBus and a temp-dir session in
// tests.
func New(api client.APIClient, sess *session.Store, signals *session.Signals, bus syncbus.Bus, logger zerolog.Logger) *MembershipStore {
	return &MembershipStore{
		api:       api,
		session:   sess,
		signals:   signals,
		bus:       bus,
		logger:    logger,
		origin:    uuid.NewString(),
		userIndex: models.NewUserIndex(nil),
	}
}

// Origin returns the identifier this store stamps on outgoing bus messages
func (s *MembershipStore) Origin() string {
	return s.origin
}

// Organizations returns the current organization collection
func (s *MembershipStore) Organizations() []*models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organization, len(s.organizations))
	copy(out, s.organizations)
	return out
}

// Events returns the current event collection
func (s *MembershipStore) Events() []*models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Users returns the current user collection
func (s *MembershipStore) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, len(s.users))
	copy(out, s.users)
	return out
}

// PendingApprovals returns the current approval collection
func (s *MembershipStore) PendingApprovals() []*models.PendingApproval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.PendingApproval, len(s.approvals))
	copy(out, s.approvals)
	return out
}

// CurrentUser returns the authenticated user record, or nil without a session
func (s *MembershipStore) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

// OrganizationByID returns the organization with the given id, or nil
func (s *MembershipStore) OrganizationByID(id int64) *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findOrg(id)
}

// EventByID returns the event with the given id, or nil
func (s *MembershipStore) EventByID(id int64) *models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findEvent(id)
}

// IsUserFollowingOrg reports whether the referenced user follows the
// organization. Unknown users resolve to false; the query never fails.
func (s *MembershipStore) IsUserFollowingOrg(userRef string, orgID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.userIndex.Resolve(userRef)
	if user == nil {
		return false
	}
	return user.IsFollowing(orgID)
}

// IsUserJoinedEvent reports whether the referenced user participates in the
// event. The event's participants array is authoritative; the user's own
// JoinedEvents can lag it under concurrent multi-device use and is consulted
// only as a cross-check for logging. Unknown users or events resolve to
// false; the query never fails.
func (s *MembershipStore) IsUserJoinedEvent(userRef string, eventID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.userIndex.Resolve(userRef)
	if user == nil {
		return false
	}

	event := s.findEvent(eventID)
	if event == nil {
		return false
	}

	joined := event.HasParticipant(user.ID)

	claims := false
	for _, id := range user.JoinedEvents {
		if id == eventID {
			claims = true
			break
		}
	}
	if claims != joined {
		s.logger.Debug().
			Int64("eventID", eventID).
			Int64("userID", user.ID).
			Bool("participants", joined).
			Bool("joinedEvents", claims).
			Msg("Membership arrays disagree, participants wins")
	}

	return joined
}

// findOrg expects s.mu held
func (s *MembershipStore) findOrg(id int64) *models.Organization {
	for _, org := range s.organizations {
		if org.ID == id {
			return org
		}
	}
	return nil
}

// findEvent expects s.mu held
func (s *MembershipStore) findEvent(id int64) *models.Event {
	for _, event := range s.events {
		if event.ID == id {
			return event
		}
	}
	return nil
}

// findApproval expects s.mu held
func (s *MembershipStore) findApproval(id int64) *models.PendingApproval {
	for _, approval := range s.approvals {
		if approval.ID == id {
			return approval
		}
	}
	return nil
}
