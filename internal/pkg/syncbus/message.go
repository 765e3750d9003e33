package syncbus

import "time"

// MessageTypeDataUpdate is the only message type on the data-sync channel.
// Receivers treat every message as "invalidate and reload authenticated
// data"; the action and ids are carried for logging, not for fine-grained
// patching.
const MessageTypeDataUpdate = "data-update"

// Actions carried on data-update messages
const (
	ActionFollow             = "follow"
	ActionUnfollow           = "unfollow"
	ActionJoinEvent          = "join-event"
	ActionLeaveEvent         = "leave-event"
	ActionCreateEvent        = "create-event"
	ActionUpdateEvent        = "update-event"
	ActionDeleteEvent        = "delete-event"
	ActionUpdateOrganization = "update-organization"
	ActionApprove            = "approve"
	ActionReject             = "reject"
)

// Message is the wire format of the data-sync channel
type Message struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	OrgID     int64     `json:"orgId,omitempty"`
	EventID   int64     `json:"eventId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
