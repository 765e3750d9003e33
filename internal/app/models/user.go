package models

// RoleType defines the user role
type RoleType string

const (
	RoleStudent      RoleType = "student"
	RoleOrganization RoleType = "organization"
	RoleAdmin        RoleType = "admin"
)

// UserStatus defines the account status of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// User represents a platform account. The backend exposes two parallel
// identifiers: a numeric ID and a string ObjectID. Callers may hold either
// one, so lookups go through UserIndex rather than comparing fields ad hoc.
//
// JoinedEvents is derived and may lag the events' Participants arrays under
// concurrent edits; reads that answer "is this user in this event" must
// consult the event, not this field.
type User struct {
	ID           int64      `json:"id"`
	ObjectID     string     `json:"_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         RoleType   `json:"role"`
	Status       UserStatus `json:"status"`
	FollowedOrgs []int64    `json:"followedOrgs"`
	JoinedEvents []int64    `json:"joinedEvents"`

	// Presentation preferences, cached locally and preserved across reloads
	// when the fresh record lacks them.
	Bio       string   `json:"bio,omitempty"`
	Interests []string `json:"interests,omitempty"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Website   string   `json:"website,omitempty"`

	// Organization-shaped fields carried on organization-role accounts while
	// the organization entity has not been materialized yet (status pending).
	OrgName   string `json:"orgName,omitempty"`
	OrgType   string `json:"orgType,omitempty"`
	President string `json:"president,omitempty"`
}

// IsFollowing reports whether the user's FollowedOrgs contains the given
// organization ID.
func (u *User) IsFollowing(orgID int64) bool {
	for _, id := range u.FollowedOrgs {
		if id == orgID {
			return true
		}
	}
	return false
}
