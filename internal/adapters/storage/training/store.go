package training

import (
	"context"

	"clubhouse/internal/domain/lifecycle"
	domain "clubhouse/internal/domain/training"
)

// MutateFunc computes a session's next state from its current state and live
// enrollment count, or rejects the change. It runs inside the store's transaction.
type MutateFunc func(current domain.Session, enrolled int) (domain.Session, error)

// OpenFunc decides whether a session currently accepts a new attendance record.
type OpenFunc func(s domain.Session) error

// Store persists training sessions and their attendance records.
//
// Update, Enroll and MarkAttendance read the session, its live record count and the
// target record, then write, all in one transaction; no concurrent writer can
// interleave between the check and the write.
type Store interface {
	Create(ctx context.Context, s domain.Session) error
	GetByID(ctx context.Context, id string) (domain.Session, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Session, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (domain.Session, error)
	Delete(ctx context.Context, id string) error

	Enroll(ctx context.Context, rec domain.AttendanceRecord, open OpenFunc) error
	Unenroll(ctx context.Context, sessionID, athleteID string, open OpenFunc) (bool, error)
	MarkAttendance(ctx context.Context, rec domain.AttendanceRecord, open OpenFunc) (domain.AttendanceRecord, bool, error)
	ListRecords(ctx context.Context, sessionID string) ([]domain.AttendanceRecord, error)
	CountEnrolled(ctx context.Context, sessionIDs []string) (map[string]int, error)
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Discipline string
	CoachID    string
	Status     lifecycle.SessionStatus
	FromDate   string // inclusive YYYY-MM-DD
	ToDate     string // inclusive YYYY-MM-DD
	Limit      int
	Offset     int
}
