package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/emirhan/campuslink/internal/app/models"
)

// LoginEvent carries the result of a successful login
type LoginEvent struct {
	User  *models.User
	Token string
}

// Signals is the same-process notification fabric between independent
// components (header, dashboards, the membership store). It replaces prop
// threading: a component that changes the profile emits, everyone else
// refreshes. Deliveries are non-blocking; a subscriber that cannot keep up
// misses the signal and catches up on its next full reload.
type Signals struct {
	mu sync.RWMutex

	profileUpdated  []chan *models.User
	loginSuccess    []chan LoginEvent
	snapshotChanged []chan struct{}

	logger zerolog.Logger
}

// NewSignals creates a signal emitter
func NewSignals(logger zerolog.Logger) *Signals {
	return &Signals{logger: logger}
}

// OnProfileUpdated returns a channel receiving the fresh user record after
// every mutation that touched the acting user.
func (s *Signals) OnProfileUpdated() <-chan *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan *models.User, 4)
	s.profileUpdated = append(s.profileUpdated, ch)
	return ch
}

// OnLoginSuccess returns a channel receiving login events
func (s *Signals) OnLoginSuccess() <-chan LoginEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan LoginEvent, 4)
	s.loginSuccess = append(s.loginSuccess, ch)
	return ch
}

// OnSnapshotChanged returns a channel signaled when the persisted user
// snapshot was rewritten by another process.
func (s *Signals) OnSnapshotChanged() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 4)
	s.snapshotChanged = append(s.snapshotChanged, ch)
	return ch
}

// EmitProfileUpdated notifies subscribers of a fresh user record
func (s *Signals) EmitProfileUpdated(user *models.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.profileUpdated {
		select {
		case ch <- user:
		default:
			s.logger.Warn().Msg("Skipped slow profileUpdated subscriber")
		}
	}
}

// EmitLoginSuccess notifies subscribers of a successful login
func (s *Signals) EmitLoginSuccess(user *models.User, token string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.loginSuccess {
		select {
		case ch <- LoginEvent{User: user, Token: token}:
		default:
			s.logger.Warn().Msg("Skipped slow loginSuccess subscriber")
		}
	}
}

// EmitSnapshotChanged notifies subscribers of an external snapshot rewrite
func (s *Signals) EmitSnapshotChanged() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.snapshotChanged {
		select {
		case ch <- struct{}{}:
		default:
			s.logger.Warn().Msg("Skipped slow snapshotChanged subscriber")
		}
	}
}
