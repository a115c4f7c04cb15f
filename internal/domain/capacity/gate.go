// Package capacity decides whether an activity can take one more enrollment.
//
// The decision is pure. Stores evaluate it inside the same transaction that reads the
// live enrollment count and inserts the new record, so the read, the comparison and the
// write form one atomic unit. Counts are always derived from live records.
package capacity

import (
	"errors"

	"clubhouse/internal/domain/schedule"
)

// ErrInvalidCapacity is returned for capacities below one.
var ErrInvalidCapacity = errors.New("capacity must be at least 1")

// Snapshot is what the gate needs to know about an activity at decision time.
type Snapshot struct {
	ActivityID string
	// Open is nil when the activity's lifecycle allows enrollment, or the rejection otherwise.
	Open     error
	Enrolled bool // the person already holds a record for this activity
	Count    int  // live enrollment records
	Capacity int
}

// Admit applies the enrollment preconditions in order: lifecycle, duplicate, capacity.
// PRE: Count was read in the transaction that will insert the record
// POST: nil means inserting one record keeps Count+1 <= Capacity
func Admit(s Snapshot) error {
	if s.Open != nil {
		return s.Open
	}
	if s.Enrolled {
		return schedule.Reject(schedule.KindDuplicateRegistration, "already enrolled in %s", s.ActivityID)
	}
	if s.Count >= s.Capacity {
		return schedule.Reject(schedule.KindCapacityExceeded, "%s is full (%d/%d)", s.ActivityID, s.Count, s.Capacity)
	}
	return nil
}

// Resize validates changing an activity's capacity while count records are live.
// POST: nil iff newCapacity >= count and newCapacity >= 1
func Resize(count, newCapacity int) error {
	if err := Validate(newCapacity); err != nil {
		return err
	}
	if newCapacity < count {
		return schedule.Reject(schedule.KindCapacityBelowEnrollment, "capacity %d is below the %d enrolled", newCapacity, count)
	}
	return nil
}

// Validate checks a declared capacity.
func Validate(c int) error {
	if c < 1 {
		return ErrInvalidCapacity
	}
	return nil
}

// Remaining returns the number of free places, never negative.
func Remaining(count, capacity int) int {
	if count >= capacity {
		return 0
	}
	return capacity - count
}
