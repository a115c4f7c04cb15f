package person

import (
	"errors"
	"strings"
	"unicode/utf8"

	"clubhouse/internal/domain/discipline"
)

// Max length constants for directory fields.
const (
	MaxNameLength = 100
)

// Role is the directory role of a Person.
type Role string

// Role constants
const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleAthlete, RoleCoach, RoleStaff, RoleManager, RoleAdmin}

// Domain errors
var (
	ErrEmptyID      = errors.New("person ID cannot be empty")
	ErrEmptyName    = errors.New("person name cannot be empty")
	ErrInvalidRole  = errors.New("role must be one of: athlete, coach, staff, manager, admin")
	ErrEmptyTeamID  = errors.New("team ID cannot be empty")
	ErrCoachNotRole = errors.New("team coach must be a person with role coach")
)

// ParseRole maps a raw role string onto a Role, ignoring case and padding.
// PRE: none
// POST: returns a valid Role or ErrInvalidRole
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, v := range ValidRoles {
		if r == v {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// Person is a member of the club directory as the scheduling core sees it.
// Sports keeps the declared order; every entry is a normalized discipline key.
type Person struct {
	ID     string
	Name   string
	Role   Role
	Sports []discipline.Key
	TeamID string // empty when not on a team
}

// Validate checks if the Person has valid data.
// PRE: Person struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Person) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return errors.New("person name cannot exceed 100 characters")
	}
	if _, err := ParseRole(string(p.Role)); err != nil {
		return err
	}
	for _, s := range p.Sports {
		if s == "" {
			return discipline.ErrEmpty
		}
	}
	return nil
}

// IsCoach reports whether the person holds the coach role.
func (p *Person) IsCoach() bool {
	return p.Role == RoleCoach
}

// CanSchedule reports whether the person may create and manage activities.
func (p *Person) CanSchedule() bool {
	return p.Role == RoleManager || p.Role == RoleAdmin
}

// DeclaresSport reports whether k is among the person's declared sports.
func (p *Person) DeclaresSport(k discipline.Key) bool {
	for _, s := range p.Sports {
		if s == k {
			return true
		}
	}
	return false
}

// SetSports replaces Sports with the normalized, de-duplicated form of raw,
// keeping first-seen order.
// POST: Sports holds no empty or duplicate keys
func (p *Person) SetSports(raw []string) {
	seen := make(discipline.Set, len(raw))
	out := make([]discipline.Key, 0, len(raw))
	for _, r := range raw {
		k := discipline.Normalize(r)
		if k == "" || seen.Has(k) {
			continue
		}
		seen.Add(k)
		out = append(out, k)
	}
	p.Sports = out
}

// Team is a club team with one discipline and at most one assigned coach.
type Team struct {
	ID         string
	Name       string
	Discipline discipline.Key
	CoachID    string // empty when no coach is assigned
}

// Validate checks if the Team has valid data.
// PRE: Team struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyTeamID
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("team name cannot be empty")
	}
	if t.Discipline == "" {
		return discipline.ErrEmpty
	}
	return nil
}

// HasCoach reports whether a coach is assigned.
func (t *Team) HasCoach() bool {
	return t.CoachID != ""
}
