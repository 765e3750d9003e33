package models

// EventStatus defines the administrative status of an event.
// This is independent of the temporal state computed by the lifecycle package.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// Event represents a scheduled organization event.
// Date, StartTime and EndTime are local wall-clock values with no timezone
// ("2006-01-02" and "15:04"); they are concatenated naively when the lifecycle
// is evaluated. Participants is the authoritative membership record;
// Registered must equal len(Participants) and both are patched together.
type Event struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Date         string      `json:"date"`
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	Location     string      `json:"location,omitempty"`
	OrgID        int64       `json:"orgId"`
	OrgName      string      `json:"orgName,omitempty"`
	Capacity     int         `json:"capacity"`
	Registered   int         `json:"registered"`
	Participants []int64     `json:"participants"`
	ImageURL     string      `json:"imageUrl,omitempty"`
	Status       EventStatus `json:"status"`
}

// HasParticipant reports whether the given numeric user ID is recorded as a
// participant of the event.
func (e *Event) HasParticipant(userID int64) bool {
	for _, id := range e.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
