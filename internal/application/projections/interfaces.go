package projections

import (
	"context"

	"clubhouse/internal/adapters/storage/directory"
	eventStore "clubhouse/internal/adapters/storage/event"
	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/training"
)

// DirectoryStore interface for directory queries.
type DirectoryStore interface {
	GetPerson(ctx context.Context, id string) (person.Person, error)
	ListPeople(ctx context.Context, filter directory.ListFilter) ([]person.Person, error)
	ListCoaches(ctx context.Context) ([]person.Person, error)
	ListTeams(ctx context.Context) ([]person.Team, error)
}

// SessionStore interface for training session queries.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (training.Session, error)
	List(ctx context.Context, filter trainingStore.ListFilter) ([]training.Session, error)
	ListRecords(ctx context.Context, sessionID string) ([]training.AttendanceRecord, error)
	CountEnrolled(ctx context.Context, sessionIDs []string) (map[string]int, error)
}

// EventStore interface for event queries.
type EventStore interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, filter eventStore.ListFilter) ([]event.Event, error)
	ListParticipants(ctx context.Context, eventID string) ([]event.ParticipantRecord, error)
	CountRegistered(ctx context.Context, eventIDs []string) (map[string]int, error)
}
