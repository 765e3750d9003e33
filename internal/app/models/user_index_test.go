package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIndexResolvesBothKeySpaces(t *testing.T) {
	ayse := &User{ID: 7, ObjectID: "u1", Name: "Ayşe"}
	idx := NewUserIndex([]*User{ayse})

	assert.Same(t, ayse, idx.Resolve("u1"))
	assert.Same(t, ayse, idx.Resolve("7"))
	assert.Nil(t, idx.Resolve("unknown"))
	assert.Nil(t, idx.Resolve("99"))
}

func TestUserIndexNumericIDFallsBackToZero(t *testing.T) {
	idx := NewUserIndex([]*User{{ID: 7, ObjectID: "u1"}})

	assert.Equal(t, int64(7), idx.NumericID("u1"))
	assert.Equal(t, int64(7), idx.NumericID("7"))
	assert.Equal(t, int64(0), idx.NumericID("ghost"))
}

func TestUserIndexPutAndRemove(t *testing.T) {
	idx := NewUserIndex(nil)
	user := &User{ID: 7, ObjectID: "u1"}

	idx.Put(user)
	assert.Same(t, user, idx.Resolve("u1"))

	// Replacing by the same keys points both spaces at the new record
	replacement := &User{ID: 7, ObjectID: "u1", Name: "Updated"}
	idx.Put(replacement)
	assert.Same(t, replacement, idx.Resolve("7"))

	idx.Remove(replacement)
	assert.Nil(t, idx.Resolve("u1"))
	assert.Nil(t, idx.Resolve("7"))
}
