package store

import (
	"context"
	"errors"
	"time"

	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/app/session"
	"github.com/emirhan/campuslink/internal/pkg/apperrors"
	"github.com/emirhan/campuslink/internal/pkg/syncbus"
)

// LoadPublicData loads the unauthenticated collections: organizations and
// events. Called on mount before any session exists.
func (s *MembershipStore) LoadPublicData(ctx context.Context) error {
	orgs, err := s.api.GetOrganizations(ctx)
	if err != nil {
		return err
	}

	events, err := s.api.GetEvents(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.organizations = orgs
	s.events = events
	s.mu.Unlock()

	s.logger.Info().
		Int("organizations", len(orgs)).
		Int("events", len(events)).
		Msg("Public data loaded")
	return nil
}

// LoadAuthData loads the authenticated collections: the current user's
// profile and the full student roster, merged against the locally cached
// snapshot. Guarded by a one-shot flag so repeated calls are free; an
// invalidation (login, external snapshot write, bus message) resets the flag
// via InvalidateAuth. Calls arriving while a load is in flight coalesce into
// one follow-up pass instead of running concurrently.
//
// Failures are logged and the flag is set anyway: with a persistently broken
// backend, retry storms would be worse than running on stale data until the
// next intentional invalidation.
func (s *MembershipStore) LoadAuthData(ctx context.Context) error {
	s.mu.Lock()
	if s.authLoaded {
		s.mu.Unlock()
		return nil
	}
	if s.authReloading {
		s.authPending = true
		s.mu.Unlock()
		return nil
	}
	s.authReloading = true
	s.mu.Unlock()

	for {
		err := s.loadAuthOnce(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Authenticated data load failed, keeping cached state")
		}

		s.mu.Lock()
		s.authLoaded = true
		if s.authPending {
			s.authPending = false
			s.authLoaded = false
			s.mu.Unlock()
			continue
		}
		s.authReloading = false
		s.mu.Unlock()
		return nil
	}
}

// InvalidateAuth resets the one-shot flag so the next LoadAuthData call (or
// the coalesced follow-up of an in-flight one) fetches fresh data.
func (s *MembershipStore) InvalidateAuth() {
	s.mu.Lock()
	if s.authReloading {
		s.authPending = true
	}
	s.authLoaded = false
	s.mu.Unlock()
}

func (s *MembershipStore) loadAuthOnce(ctx context.Context) error {
	token, err := s.session.LoadToken(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoSession) {
			s.logger.Debug().Msg("No persisted session, skipping authenticated load")
			return nil
		}
		return err
	}
	if !session.TokenUsable(token, time.Now()) {
		s.logger.Info().Msg("Persisted token expired, skipping authenticated load")
		return nil
	}

	fresh, err := s.api.GetProfile(ctx)
	if err != nil {
		return err
	}

	students, err := s.api.GetStudents(ctx)
	if err != nil {
		return err
	}

	// Approvals are admin-facing; a failure here should not block the rest of
	// the authenticated state.
	approvals, err := s.api.GetApprovals(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load pending approvals")
		approvals = nil
	}

	cached, err := s.session.LoadUser(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNoSession) {
		s.logger.Warn().Err(err).Msg("Ignoring unreadable cached snapshot")
		cached = nil
	}
	merged := mergeUser(fresh, cached)

	s.mu.Lock()
	s.users = students
	s.approvals = approvals
	s.currentUser = merged
	s.userIndex = models.NewUserIndex(students)
	s.userIndex.Put(merged)
	s.mu.Unlock()

	if err := s.session.SaveUser(ctx, merged); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist merged snapshot")
	}

	s.logger.Info().
		Int("students", len(students)).
		Int("approvals", len(approvals)).
		Str("user", merged.ObjectID).
		Msg("Authenticated data loaded")
	return nil
}

// mergeUser combines a fresh database record with the locally cached
// snapshot. Database-sourced fields always win: role and the membership
// arrays reflect server-confirmed state. Locally cached presentation
// preferences survive only where the fresh record lacks them.
func mergeUser(fresh, cached *models.User) *models.User {
	if fresh == nil {
		return cached
	}
	merged := *fresh
	if cached == nil {
		return &merged
	}

	if merged.Bio == "" {
		merged.Bio = cached.Bio
	}
	if len(merged.Interests) == 0 {
		merged.Interests = cached.Interests
	}
	if merged.AvatarURL == "" {
		merged.AvatarURL = cached.AvatarURL
	}
	if merged.Phone == "" {
		merged.Phone = cached.Phone
	}
	if merged.Website == "" {
		merged.Website = cached.Website
	}
	return &merged
}

// Start wires the store to its invalidation sources: login events, external
// snapshot writes, and data-update messages from other contexts. Each fires
// an invalidate-and-reload; the store's own bus messages are dropped by
// origin. Stop undoes the wiring.
func (s *MembershipStore) Start(ctx context.Context) {
	unsubBus := s.bus.Subscribe(func(msg *syncbus.Message) {
		if msg.Origin == s.origin {
			return
		}
		if msg.Type != syncbus.MessageTypeDataUpdate {
			return
		}
		s.logger.Debug().
			Str("action", msg.Action).
			Str("origin", msg.Origin).
			Msg("Data update from another context, reloading")
		s.InvalidateAuth()
		if err := s.LoadAuthData(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Reload after data update failed")
		}
	})
	s.unsubscribe = append(s.unsubscribe, unsubBus)

	logins := s.signals.OnLoginSuccess()
	snapshots := s.signals.OnSnapshotChanged()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case login, ok := <-logins:
				if !ok {
					return
				}
				if err := s.session.SaveToken(ctx, login.Token); err != nil {
					s.logger.Error().Err(err).Msg("Failed to persist session token")
				}
				if login.User != nil {
					if err := s.session.SaveUser(ctx, login.User); err != nil {
						s.logger.Error().Err(err).Msg("Failed to persist user snapshot")
					}
				}
				s.InvalidateAuth()
				if err := s.LoadAuthData(ctx); err != nil {
					s.logger.Error().Err(err).Msg("Reload after login failed")
				}
			case _, ok := <-snapshots:
				if !ok {
					return
				}
				s.InvalidateAuth()
				if err := s.LoadAuthData(ctx); err != nil {
					s.logger.Error().Err(err).Msg("Reload after snapshot change failed")
				}
			}
		}
	}()
}

// Stop removes the store's bus subscriptions
func (s *MembershipStore) Stop() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}
