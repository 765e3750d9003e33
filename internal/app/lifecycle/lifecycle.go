package lifecycle

import (
	"fmt"
	"time"

	"github.com/emirhan/campuslink/internal/app/models"
)

// State is the temporal state of an event at a given instant
type State string

const (
	StateUpcoming State = "upcoming"
	StateStarted  State = "started"
	StateEnded    State = "ended"
)

// Status is the full evaluation result for an event. State and the boolean
// flags are the behavioral contract; Text and Color are presentation hints.
type Status struct {
	State          State
	CanJoin        bool
	CanLeave       bool
	CanViewDetails bool
	Text           string
	Color          string
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// combine concatenates the event's date with a wall-clock time of day. No
// timezone conversion happens; both values are interpreted in local time.
func combine(date, clock string) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, time.Local)
}

// Evaluate computes the temporal status of an event at the given instant.
// It is a pure function of (date, startTime, endTime, now) and must be
// re-evaluated periodically by anything displaying its result, since it
// changes with wall-clock progression alone.
//
// The interval is half-open: an evaluation at exactly start reports started,
// at exactly end reports ended. A zero-duration event (start == end) goes
// straight from upcoming to ended.
func Evaluate(event *models.Event, now time.Time) Status {
	start, errStart := combine(event.Date, event.StartTime)
	end, errEnd := combine(event.Date, event.EndTime)
	if errStart != nil || errEnd != nil {
		// Unparseable schedules read as already ended, never as joinable.
		return Status{
			State:          StateEnded,
			CanViewDetails: true,
			Text:           "Event Ended",
			Color:          "gray",
		}
	}

	switch {
	case now.Before(start):
		return Status{
			State:          StateUpcoming,
			CanJoin:        true,
			CanLeave:       true,
			CanViewDetails: true,
			Text:           countdownText(start.Sub(now)),
			Color:          "blue",
		}
	case now.Before(end):
		return Status{
			State:          StateStarted,
			CanJoin:        true,
			CanLeave:       true,
			CanViewDetails: true,
			Text:           "Event Started",
			Color:          "green",
		}
	default:
		return Status{
			State:          StateEnded,
			CanViewDetails: true,
			Text:           "Event Ended",
			Color:          "gray",
		}
	}
}

// countdownText renders the remaining time until start. Hours and minutes are
// truncated, not rounded, so 59m59s reads as 0h 59m.
func countdownText(until time.Duration) string {
	hours := int(until / time.Hour)
	minutes := int((until % time.Hour) / time.Minute)
	return fmt.Sprintf("Upcoming %dh %dm", hours, minutes)
}
