package training

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/lifecycle"
)

// Layouts for the date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Max length and range constants.
const (
	MaxLocationLength  = 200
	MaxDurationMinutes = 24 * 60
)

// Domain errors
var (
	ErrEmptyCoach       = errors.New("session must have a coach")
	ErrEmptyLocation    = errors.New("session location cannot be empty")
	ErrInvalidDate      = errors.New("session date must be YYYY-MM-DD")
	ErrInvalidTime      = errors.New("session time must be HH:MM")
	ErrInvalidDuration  = errors.New("session duration must be between 1 and 1440 minutes")
	ErrEmptyAthlete     = errors.New("attendance must be associated with an athlete")
	ErrEmptySessionID   = errors.New("attendance must be associated with a session")
	ErrDisciplineNotSet = errors.New("session discipline cannot be empty")
	ErrLocationTooLong  = errors.New("session location cannot exceed 200 characters")
)

// Session is one scheduled training session.
// INVARIANT: live attendance records never exceed MaxCapacity
// INVARIANT: CoachID was eligible for Discipline when assigned
type Session struct {
	ID              string
	Discipline      discipline.Key
	CoachID         string
	Location        string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	DurationMinutes int
	MaxCapacity     int
	Status          lifecycle.SessionStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error describing the first violation otherwise
func (s *Session) Validate() error {
	if s.Discipline == "" {
		return ErrDisciplineNotSet
	}
	if strings.TrimSpace(s.CoachID) == "" {
		return ErrEmptyCoach
	}
	if strings.TrimSpace(s.Location) == "" {
		return ErrEmptyLocation
	}
	if utf8.RuneCountInString(s.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, s.Time); err != nil {
		return ErrInvalidTime
	}
	if s.DurationMinutes < 1 || s.DurationMinutes > MaxDurationMinutes {
		return ErrInvalidDuration
	}
	if err := capacity.Validate(s.MaxCapacity); err != nil {
		return err
	}
	if !lifecycle.Sessions.Known(s.Status) {
		return fmt.Errorf("unknown session status %q", s.Status)
	}
	return nil
}

// StartsAt returns the session start in loc.
// PRE: Date and Time are valid
func (s *Session) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, loc)
}

// EndsAt returns the session end in loc.
func (s *Session) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := s.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(s.DurationMinutes) * time.Minute), nil
}

// IsClosed reports whether the session reached a terminal status.
func (s *Session) IsClosed() bool {
	return lifecycle.Sessions.Terminal(s.Status)
}

// AttendanceRecord is one athlete's enrollment in a session and its mark.
// INVARIANT: at most one record per (SessionID, AthleteID)
type AttendanceRecord struct {
	ID        string
	SessionID string
	AthleteID string
	Status    lifecycle.AttendanceStatus
	UpdatedAt time.Time
}

// Validate checks if the AttendanceRecord has valid data.
// PRE: record is populated
// POST: Returns nil if valid, error otherwise
func (a *AttendanceRecord) Validate() error {
	if strings.TrimSpace(a.SessionID) == "" {
		return ErrEmptySessionID
	}
	if strings.TrimSpace(a.AthleteID) == "" {
		return ErrEmptyAthlete
	}
	if _, err := lifecycle.ParseAttendance(string(a.Status)); err != nil {
		return err
	}
	return nil
}

// Patch carries the optional fields of a session edit. Nil fields are left unchanged.
type Patch struct {
	Discipline      *string
	CoachID         *string
	Location        *string
	Date            *string
	Time            *string
	DurationMinutes *int
	MaxCapacity     *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Discipline == nil && p.CoachID == nil && p.Location == nil && p.Date == nil &&
		p.Time == nil && p.DurationMinutes == nil && p.MaxCapacity == nil
}

// Apply returns s with the patch's non-nil fields applied. Capacity is applied as well;
// callers check it against live enrollment before persisting.
// POST: s itself is not modified
func (p Patch) Apply(s Session) Session {
	if p.Discipline != nil {
		s.Discipline = discipline.Normalize(*p.Discipline)
	}
	if p.CoachID != nil {
		s.CoachID = strings.TrimSpace(*p.CoachID)
	}
	if p.Location != nil {
		s.Location = strings.TrimSpace(*p.Location)
	}
	if p.Date != nil {
		s.Date = strings.TrimSpace(*p.Date)
	}
	if p.Time != nil {
		s.Time = strings.TrimSpace(*p.Time)
	}
	if p.DurationMinutes != nil {
		s.DurationMinutes = *p.DurationMinutes
	}
	if p.MaxCapacity != nil {
		s.MaxCapacity = *p.MaxCapacity
	}
	return s
}

// ChangesAssignment reports whether applying p to s alters the discipline or the coach,
// which is when eligibility must be re-checked.
func (p Patch) ChangesAssignment(s Session) bool {
	next := p.Apply(s)
	return next.Discipline != s.Discipline || next.CoachID != s.CoachID
}
