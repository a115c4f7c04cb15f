package lifecycle

import (
	"strings"
	"time"

	"clubhouse/internal/domain/schedule"
)

// SessionStatus is the status of a training session.
type SessionStatus string

// Session status constants
const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// EventStatus is the status of a club event.
type EventStatus string

// Event status constants
const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// AttendanceStatus is the mark on one athlete's attendance record.
// The values are flat: any of them may follow any other while the session is open.
type AttendanceStatus string

// Attendance status constants
const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// InitialAttendance is the mark given to a record created by enrollment.
const InitialAttendance = AttendanceAbsent

// Sessions is the training session machine: scheduled -> completed | cancelled.
var Sessions = newMachine("training session", SessionScheduled, map[SessionStatus][]SessionStatus{
	SessionScheduled: {SessionCompleted, SessionCancelled},
	SessionCompleted: nil,
	SessionCancelled: nil,
})

// Events is the event machine: upcoming -> ongoing -> completed, with cancellation
// allowed from upcoming and ongoing.
var Events = newMachine("event", EventUpcoming, map[EventStatus][]EventStatus{
	EventUpcoming:  {EventOngoing, EventCancelled},
	EventOngoing:   {EventCompleted, EventCancelled},
	EventCompleted: nil,
	EventCancelled: nil,
})

// ValidAttendance contains all valid attendance marks.
var ValidAttendance = []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused}

// ParseAttendance maps raw input onto an AttendanceStatus.
// POST: returns a KindInvalidTransition rejection for values outside the enumeration
func ParseAttendance(raw string) (AttendanceStatus, error) {
	for _, v := range ValidAttendance {
		if normalizeRaw(raw) == string(v) {
			return v, nil
		}
	}
	return "", schedule.Reject(schedule.KindInvalidTransition, "%q is not an attendance status", raw)
}

// MarkAttendance validates setting an attendance mark on a record of a session in status s.
// POST: KindSessionClosed when the session is terminal, KindInvalidTransition for an
// unknown mark, nil otherwise
func MarkAttendance(s SessionStatus, mark AttendanceStatus) error {
	if Sessions.Terminal(s) {
		return schedule.Reject(schedule.KindSessionClosed, "session is %s; attendance is read-only", s)
	}
	if _, err := ParseAttendance(string(mark)); err != nil {
		return err
	}
	return nil
}

// SessionOpenForEnrollment rejects enrollment on a cancelled or completed session.
// Attendance records of a closed session are read-only, so a new one cannot be added either.
func SessionOpenForEnrollment(s SessionStatus) error {
	if Sessions.Terminal(s) {
		return schedule.Reject(schedule.KindSessionClosed, "session is %s", s)
	}
	return nil
}

// EventOpenForEnrollment rejects registration on a cancelled event, and on a completed
// event whose window ended before now.
func EventOpenForEnrollment(s EventStatus, windowEnd, now time.Time) error {
	switch s {
	case EventCancelled:
		return schedule.Reject(schedule.KindSessionClosed, "event is cancelled")
	case EventCompleted:
		if !windowEnd.After(now) {
			return schedule.Reject(schedule.KindSessionClosed, "event is completed and its window has passed")
		}
	}
	return nil
}

func normalizeRaw(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
