package store

import (
	"context"
	"time"

	"github.com/emirhan/campuslink/internal/app/lifecycle"
	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/app/models/dto"
	"github.com/emirhan/campuslink/internal/pkg/apperrors"
	"github.com/emirhan/campuslink/internal/pkg/syncbus"
)

// FollowOrganization records the referenced user as a follower of the
// organization. Set-add semantics: following an organization twice leaves
// FollowedOrgs with one entry and the follower counter incremented once.
func (s *MembershipStore) FollowOrganization(ctx context.Context, userRef string, orgID int64) error {
	if err := s.api.FollowOrganization(ctx, orgID); err != nil {
		return err
	}

	s.mu.Lock()
	user := s.userIndex.Resolve(userRef)
	if user != nil && !user.IsFollowing(orgID) {
		user.FollowedOrgs = append(user.FollowedOrgs, orgID)
		if org := s.findOrg(orgID); org != nil {
			org.Followers++
		}
	}
	s.mu.Unlock()

	s.persistActingUser(ctx, user)
	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionFollow, OrgID: orgID, UserID: userRef})
	return nil
}

// UnfollowOrganization removes the follow relationship. The follower counter
// floors at zero; drift beyond that self-heals on the next full reload.
func (s *MembershipStore) UnfollowOrganization(ctx context.Context, userRef string, orgID int64) error {
	if err := s.api.UnfollowOrganization(ctx, orgID); err != nil {
		return err
	}

	s.mu.Lock()
	user := s.userIndex.Resolve(userRef)
	if user != nil && user.IsFollowing(orgID) {
		user.FollowedOrgs = removeID(user.FollowedOrgs, orgID)
		if org := s.findOrg(orgID); org != nil && org.Followers > 0 {
			org.Followers--
		}
	}
	s.mu.Unlock()

	s.persistActingUser(ctx, user)
	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionUnfollow, OrgID: orgID, UserID: userRef})
	return nil
}

// JoinEvent registers the referenced user for the event. The lifecycle gate
// rejects ended events before the API is called; a stale UI that bypasses it
// still hits the server's own check. The numeric participant id is resolved
// through the user index and falls back to 0 when the reference matches
// nobody, rather than failing the mutation.
func (s *MembershipStore) JoinEvent(ctx context.Context, userRef string, eventID int64) error {
	s.mu.RLock()
	event := s.findEvent(eventID)
	s.mu.RUnlock()
	if event == nil {
		return apperrors.NewResourceNotFoundError("Event not found")
	}

	if status := lifecycle.Evaluate(event, time.Now()); !status.CanJoin {
		return apperrors.NewCustomError(apperrors.ErrEventEnded, "Event has ended, registration is closed")
	}

	if err := s.api.JoinEvent(ctx, eventID); err != nil {
		return err
	}

	s.mu.Lock()
	numericID := s.userIndex.NumericID(userRef)
	user := s.userIndex.Resolve(userRef)
	if event := s.findEvent(eventID); event != nil && !event.HasParticipant(numericID) {
		event.Participants = append(event.Participants, numericID)
		event.Registered++
	}
	if user != nil && !containsID(user.JoinedEvents, eventID) {
		user.JoinedEvents = append(user.JoinedEvents, eventID)
	}
	s.mu.Unlock()

	s.persistActingUser(ctx, user)
	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionJoinEvent, EventID: eventID, UserID: userRef})
	return nil
}

// LeaveEvent removes the referenced user from the event. Gated the same way
// as JoinEvent; the registered counter floors at zero.
func (s *MembershipStore) LeaveEvent(ctx context.Context, userRef string, eventID int64) error {
	s.mu.RLock()
	event := s.findEvent(eventID)
	s.mu.RUnlock()
	if event == nil {
		return apperrors.NewResourceNotFoundError("Event not found")
	}

	if status := lifecycle.Evaluate(event, time.Now()); !status.CanLeave {
		return apperrors.NewCustomError(apperrors.ErrEventEnded, "Event has ended, registration is closed")
	}

	if err := s.api.LeaveEvent(ctx, eventID); err != nil {
		return err
	}

	s.mu.Lock()
	numericID := s.userIndex.NumericID(userRef)
	user := s.userIndex.Resolve(userRef)
	if event := s.findEvent(eventID); event != nil && event.HasParticipant(numericID) {
		event.Participants = removeID(event.Participants, numericID)
		if event.Registered > 0 {
			event.Registered--
		}
	}
	if user != nil && containsID(user.JoinedEvents, eventID) {
		user.JoinedEvents = removeID(user.JoinedEvents, eventID)
	}
	s.mu.Unlock()

	s.persistActingUser(ctx, user)
	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionLeaveEvent, EventID: eventID, UserID: userRef})
	return nil
}

// CreateEvent submits a new event and appends the canonical server record to
// the collection. The event is never constructed client-side: registered and
// participants must originate from the server.
func (s *MembershipStore) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, error) {
	created, err := s.api.CreateEvent(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.events = append(s.events, created)
	s.mu.Unlock()

	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionCreateEvent, EventID: created.ID, OrgID: created.OrgID})
	return created, nil
}

// UpdateEvent replaces the event with the server's canonical updated record
func (s *MembershipStore) UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*models.Event, error) {
	updated, err := s.api.UpdateEvent(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i, event := range s.events {
		if event.ID == id {
			s.events[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionUpdateEvent, EventID: id, OrgID: updated.OrgID})
	return updated, nil
}

// DeleteEvent removes the event and scrubs its id from every user's
// JoinedEvents so no dangling references remain. The event's own participants
// array is moot once the event is gone.
func (s *MembershipStore) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.api.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i, event := range s.events {
		if event.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			break
		}
	}
	var touchedCurrent *models.User
	for _, user := range s.users {
		if containsID(user.JoinedEvents, id) {
			user.JoinedEvents = removeID(user.JoinedEvents, id)
			if s.currentUser != nil && user.ObjectID == s.currentUser.ObjectID {
				touchedCurrent = user
			}
		}
	}
	// The merged current user lives outside the student roster and needs its
	// own scrub.
	if s.currentUser != nil && touchedCurrent == nil && containsID(s.currentUser.JoinedEvents, id) {
		s.currentUser.JoinedEvents = removeID(s.currentUser.JoinedEvents, id)
		touchedCurrent = s.currentUser
	}
	s.mu.Unlock()

	s.persistActingUser(ctx, touchedCurrent)
	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionDeleteEvent, EventID: id})
	return nil
}

// UpdateOrganization patches the organization, then re-fetches the full
// event list: the backend denormalizes organization fields onto events, so
// patching events locally would leave them stale.
func (s *MembershipStore) UpdateOrganization(ctx context.Context, id int64, req *dto.UpdateOrganizationRequest) (*models.Organization, error) {
	updated, err := s.api.UpdateOrganization(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i, org := range s.organizations {
		if org.ID == id {
			s.organizations[i] = updated
			break
		}
	}
	s.mu.Unlock()

	events, err := s.api.GetEvents(ctx)
	if err != nil {
		// The organization update itself succeeded; stale event denorms heal
		// on the next reload.
		s.logger.Warn().Err(err).
			Int64("orgID", id).
			Msg("Failed to refresh events after organization update")
	} else {
		s.mu.Lock()
		s.events = events
		s.mu.Unlock()
	}

	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionUpdateOrganization, OrgID: id})
	return updated, nil
}

// ApproveOrganization flips the pending approval to approved and the linked
// entity to active: the organization for organization-type approvals, the
// user account for student-type ones.
func (s *MembershipStore) ApproveOrganization(ctx context.Context, id int64) error {
	if err := s.api.ApproveOrganization(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if approval := s.findApproval(id); approval != nil {
		approval.Status = models.ApprovalStatusApproved
		switch approval.Type {
		case models.ApprovalTypeOrganization:
			if org := s.findOrg(approval.EntityID); org != nil {
				org.Status = models.OrgStatusActive
			}
		case models.ApprovalTypeStudent:
			for _, user := range s.users {
				if user.ID == approval.EntityID {
					user.Status = models.UserStatusActive
					break
				}
			}
		}
	}
	s.mu.Unlock()

	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionApprove, OrgID: id})
	return nil
}

// RejectApproval flips the pending approval to rejected, recording the
// reason and optional resubmission deadline.
func (s *MembershipStore) RejectApproval(ctx context.Context, id int64, req *dto.RejectApprovalRequest) error {
	if err := s.api.RejectApproval(ctx, id, req); err != nil {
		return err
	}

	s.mu.Lock()
	if approval := s.findApproval(id); approval != nil {
		approval.Status = models.ApprovalStatusRejected
		if req != nil {
			approval.RejectionReason = req.Reason
			if req.AllowResubmission && req.Deadline != "" {
				if deadline, err := time.Parse("2006-01-02", req.Deadline); err == nil {
					approval.ResubmissionDeadline = &deadline
				}
			}
		}
	}
	s.mu.Unlock()

	s.broadcast(ctx, &syncbus.Message{Action: syncbus.ActionReject, OrgID: id})
	return nil
}

// persistActingUser serializes the user to the durable snapshot and emits a
// profileUpdated signal when the patched record belongs to the session's
// current user. Other local observers (header and dashboard equivalents)
// refresh off that signal.
func (s *MembershipStore) persistActingUser(ctx context.Context, user *models.User) {
	if user == nil {
		return
	}

	s.mu.RLock()
	isCurrent := s.currentUser != nil && user.ObjectID == s.currentUser.ObjectID
	s.mu.RUnlock()
	if !isCurrent {
		return
	}

	if err := s.session.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist user snapshot")
	}
	s.signals.EmitProfileUpdated(user)
}

// broadcast publishes a data-update message tagged with this store's origin.
// Publish failures are logged, never surfaced: the mutation already
// succeeded, and other contexts reconcile on their next reload regardless.
func (s *MembershipStore) broadcast(ctx context.Context, msg *syncbus.Message) {
	msg.Type = syncbus.MessageTypeDataUpdate
	msg.Origin = s.origin
	msg.Timestamp = time.Now()

	if err := s.bus.Publish(ctx, msg); err != nil {
		s.logger.Warn().Err(err).
			Str("action", msg.Action).
			Msg("Failed to broadcast data update")
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
