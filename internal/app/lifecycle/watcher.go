package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/emirhan/campuslink/internal/app/models"
)

// Transition describes an observed change of an event's temporal state
// between two evaluations.
type Transition struct {
	EventID int64
	From    State
	To      State
	Status  Status
}

// Source supplies the events to watch on every tick. The store's Events
// accessor satisfies this.
type Source func() []*models.Event

// TransitionFunc is invoked once per event whose state changed since the
// previous tick.
type TransitionFunc func(Transition)

// Watcher periodically re-evaluates event lifecycles and reports transitions.
// Evaluation is pure, so the watcher is the only thing that turns wall-clock
// progression into callbacks; views tear it down with Stop when they go away.
type Watcher struct {
	source   Source
	onChange TransitionFunc
	interval time.Duration
	cron     *cron.Cron
	logger   zerolog.Logger

	mu   sync.Mutex
	seen map[int64]State
}

// NewWatcher creates a watcher over the given source. The callback may be nil,
// in which case transitions are only logged.
func NewWatcher(source Source, interval time.Duration, onChange TransitionFunc, logger zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		source:   source,
		onChange: onChange,
		interval: interval,
		cron:     cron.New(cron.WithLocation(time.Local)),
		logger:   logger,
		seen:     make(map[int64]State),
	}
}

// Start registers the periodic evaluation job and runs an immediate first
// pass so callers do not wait a full interval for the initial state.
func (w *Watcher) Start() error {
	spec := fmt.Sprintf("@every %s", w.interval)
	if _, err := w.cron.AddFunc(spec, w.tick); err != nil {
		return fmt.Errorf("failed to register lifecycle job: %w", err)
	}

	w.tick()
	w.cron.Start()

	w.logger.Info().
		Dur("interval", w.interval).
		Msg("Lifecycle watcher started")
	return nil
}

// Stop halts the periodic evaluation. Running ticks complete before return.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info().Msg("Lifecycle watcher stopped")
}

// Tick forces an immediate evaluation pass. Exposed for callers that want to
// refresh on demand rather than waiting for the next interval.
func (w *Watcher) Tick() {
	w.tick()
}

func (w *Watcher) tick() {
	now := time.Now()
	events := w.source()

	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[int64]State, len(events))
	for _, event := range events {
		status := Evaluate(event, now)
		current[event.ID] = status.State

		prev, known := w.seen[event.ID]
		if known && prev == status.State {
			continue
		}

		w.logger.Debug().
			Int64("eventID", event.ID).
			Str("from", string(prev)).
			Str("to", string(status.State)).
			Msg("Event lifecycle state changed")

		if w.onChange != nil && known {
			w.onChange(Transition{
				EventID: event.ID,
				From:    prev,
				To:      status.State,
				Status:  status,
			})
		}
	}

	// Forget events that disappeared from the source so a later reappearance
	// is treated as fresh rather than as a transition.
	w.seen = current
}
