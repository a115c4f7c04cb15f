package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/lifecycle"
)

// Event type constants.
const (
	TypeCompetition = "competition"
	TypeSocial      = "social"
	TypeMeeting     = "meeting"
	TypeClinic      = "clinic"
	TypeOther       = "other"
)

// ValidTypes contains all valid event types.
var ValidTypes = []string{TypeCompetition, TypeSocial, TypeMeeting, TypeClinic, TypeOther}

// Layouts for the date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxLocationLength    = 200
)

// Domain errors
var (
	ErrEmptyTitle   = errors.New("event title cannot be empty")
	ErrInvalidType  = errors.New("event type must be one of: competition, social, meeting, clinic, other")
	ErrInvalidDate  = errors.New("event date must be YYYY-MM-DD")
	ErrInvalidTime  = errors.New("event time must be HH:MM")
	ErrEmptyPerson  = errors.New("participant must be associated with a person")
	ErrEmptyEventID = errors.New("participant must be associated with an event")

	ErrTitleTooLong       = errors.New("event title cannot exceed 200 characters")
	ErrDescriptionTooLong = errors.New("event description cannot exceed 2000 characters")
	ErrLocationTooLong    = errors.New("event location cannot exceed 200 characters")
)

// Event is a club event open to participants of any role.
// Description is markdown.
// INVARIANT: live participant records never exceed Capacity
type Event struct {
	ID          string
	Title       string
	Type        string
	Description string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Location    string
	Capacity    int
	Status      lifecycle.EventStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseType maps raw input onto a valid event type.
func ParseType(raw string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range ValidTypes {
		if t == v {
			return t, nil
		}
	}
	return "", ErrInvalidType
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if _, err := ParseType(e.Type); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if utf8.RuneCountInString(e.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, e.Time); err != nil {
		return ErrInvalidTime
	}
	if err := capacity.Validate(e.Capacity); err != nil {
		return err
	}
	if !lifecycle.Events.Known(e.Status) {
		return fmt.Errorf("unknown event status %q", e.Status)
	}
	return nil
}

// StartsAt returns the event start in loc.
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
}

// WindowEnd returns the end of the event's registration window: midnight after its date.
func (e *Event) WindowEnd(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, e.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1), nil
}

// IsClosed reports whether the event reached a terminal status.
func (e *Event) IsClosed() bool {
	return lifecycle.Events.Terminal(e.Status)
}

// ParticipantRecord is one person's registration for an event. Its existence is its status.
// INVARIANT: at most one record per (EventID, PersonID)
type ParticipantRecord struct {
	ID           string
	EventID      string
	PersonID     string
	RegisteredAt time.Time
}

// Validate checks if the ParticipantRecord has valid data.
func (p *ParticipantRecord) Validate() error {
	if strings.TrimSpace(p.EventID) == "" {
		return ErrEmptyEventID
	}
	if strings.TrimSpace(p.PersonID) == "" {
		return ErrEmptyPerson
	}
	return nil
}

// Patch carries the optional fields of an event edit. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Type        *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
	Capacity    *int
}

// Apply returns e with the patch's non-nil fields applied.
// POST: e itself is not modified
func (p Patch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Type != nil {
		e.Type = strings.ToLower(strings.TrimSpace(*p.Type))
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = strings.TrimSpace(*p.Date)
	}
	if p.Time != nil {
		e.Time = strings.TrimSpace(*p.Time)
	}
	if p.Location != nil {
		e.Location = strings.TrimSpace(*p.Location)
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	return e
}
