package models

import "strconv"

// UserIndex resolves users by either identifier space. Call sites historically
// received a mix of numeric IDs and string ObjectIDs depending on where the
// value originated, so the index keeps a bidirectional mapping instead of
// string-comparing both fields at every lookup.
type UserIndex struct {
	byObjectID map[string]*User
	byNumeric  map[int64]*User
}

// NewUserIndex builds an index over the given users. Later entries win on
// duplicate keys, matching last-write-wins snapshot semantics.
func NewUserIndex(users []*User) *UserIndex {
	idx := &UserIndex{
		byObjectID: make(map[string]*User, len(users)),
		byNumeric:  make(map[int64]*User, len(users)),
	}
	for _, u := range users {
		idx.Put(u)
	}
	return idx
}

// Put adds or replaces a user in both key spaces.
func (idx *UserIndex) Put(u *User) {
	if u == nil {
		return
	}
	if u.ObjectID != "" {
		idx.byObjectID[u.ObjectID] = u
	}
	if u.ID != 0 {
		idx.byNumeric[u.ID] = u
	}
}

// Remove drops a user from both key spaces.
func (idx *UserIndex) Remove(u *User) {
	if u == nil {
		return
	}
	delete(idx.byObjectID, u.ObjectID)
	delete(idx.byNumeric, u.ID)
}

// Resolve looks a user up by an opaque reference: the string ObjectID, or the
// decimal form of the numeric ID. Returns nil when no user matches; callers
// treat a miss as a safe default, never an error.
func (idx *UserIndex) Resolve(ref string) *User {
	if u, ok := idx.byObjectID[ref]; ok {
		return u
	}
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if u, ok := idx.byNumeric[n]; ok {
			return u
		}
	}
	return nil
}

// NumericID resolves a reference to the numeric ID used in event participant
// arrays. A reference that matches no user resolves to 0 rather than failing
// the surrounding mutation.
func (idx *UserIndex) NumericID(ref string) int64 {
	if u := idx.Resolve(ref); u != nil {
		return u.ID
	}
	return 0
}
