package event

import (
	"context"

	domain "clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
)

// MutateFunc computes an event's next state from its current state and live
// participant count, or rejects the change. It runs inside the store's transaction.
type MutateFunc func(current domain.Event, registered int) (domain.Event, error)

// OpenFunc decides whether an event currently accepts a new participant.
type OpenFunc func(e domain.Event) error

// Store persists club events and their participant records.
type Store interface {
	Create(ctx context.Context, e domain.Event) error
	GetByID(ctx context.Context, id string) (domain.Event, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Event, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (domain.Event, error)
	Delete(ctx context.Context, id string) error

	Register(ctx context.Context, rec domain.ParticipantRecord, open OpenFunc) error
	Unregister(ctx context.Context, eventID, personID string) (bool, error)
	ListParticipants(ctx context.Context, eventID string) ([]domain.ParticipantRecord, error)
	CountRegistered(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Type     string
	Status   lifecycle.EventStatus
	FromDate string // inclusive YYYY-MM-DD
	ToDate   string // inclusive YYYY-MM-DD
	Limit    int
	Offset   int
}
