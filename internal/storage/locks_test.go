package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentLockKeyStable(t *testing.T) {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, AssignmentLockKey(d), AssignmentLockKey(d))

	// Time-of-day and timezone must not change the key, only the calendar date.
	jkt := time.FixedZone("WIB", 7*3600)
	sameDay := time.Date(2024, 6, 1, 23, 59, 59, 0, jkt)
	assert.Equal(t, AssignmentLockKey(d), AssignmentLockKey(sameDay))
}

func TestAssignmentLockKeyDiffersByDate(t *testing.T) {
	d1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, AssignmentLockKey(d1), AssignmentLockKey(d2))
}
