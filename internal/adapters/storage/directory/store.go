package directory

import (
	"context"

	"clubhouse/internal/domain/person"
)

// Store reads and seeds the club directory: people, their sports, and teams.
type Store interface {
	GetPerson(ctx context.Context, id string) (person.Person, error)
	ListPeople(ctx context.Context, filter ListFilter) ([]person.Person, error)
	ListCoaches(ctx context.Context) ([]person.Person, error)
	SavePerson(ctx context.Context, p person.Person) error
	GetTeam(ctx context.Context, id string) (person.Team, error)
	ListTeams(ctx context.Context) ([]person.Team, error)
	SaveTeam(ctx context.Context, t person.Team) error
}

// ListFilter carries filtering parameters for ListPeople.
type ListFilter struct {
	Role   person.Role // empty means any role
	Limit  int
	Offset int
}
