package projections

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/person"
)

// GetEventQuery carries query parameters.
type GetEventQuery struct {
	ID string
}

// ParticipantView is one registration joined with the person's name and role.
type ParticipantView struct {
	PersonID     string
	Name         string
	Role         person.Role
	RegisteredAt time.Time
}

// EventView is an event with its live registrations and rendered description.
type EventView struct {
	Event           event.Event
	DescriptionHTML string
	Registered      int
	Remaining       int
	Participants    []ParticipantView
}

// GetEventDeps holds dependencies for GetEvent.
type GetEventDeps struct {
	Events    EventStore
	Directory DirectoryStore
}

// QueryGetEvent loads an event with its participants in registration order.
// PRE: ID is non-empty
// POST: Registered equals len(Participants); DescriptionHTML is sanitized
func QueryGetEvent(ctx context.Context, query GetEventQuery, deps GetEventDeps) (EventView, error) {
	e, err := deps.Events.GetByID(ctx, query.ID)
	if err != nil {
		return EventView{}, err
	}

	var (
		records []event.ParticipantRecord
		people  map[string]person.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = deps.Events.ListParticipants(gctx, e.ID)
		return err
	})
	g.Go(func() error {
		var err error
		people, err = peopleByID(gctx, deps.Directory)
		return err
	})
	if err := g.Wait(); err != nil {
		return EventView{}, err
	}

	html, err := RenderDescription(e.Description)
	if err != nil {
		return EventView{}, err
	}

	view := EventView{
		Event:           e,
		DescriptionHTML: html,
		Registered:      len(records),
		Remaining:       capacity.Remaining(len(records), e.Capacity),
		Participants:    make([]ParticipantView, 0, len(records)),
	}
	for _, r := range records {
		p := people[r.PersonID]
		view.Participants = append(view.Participants, ParticipantView{
			PersonID:     r.PersonID,
			Name:         p.Name,
			Role:         p.Role,
			RegisteredAt: r.RegisteredAt,
		})
	}
	sort.SliceStable(view.Participants, func(i, j int) bool {
		return view.Participants[i].RegisteredAt.Before(view.Participants[j].RegisteredAt)
	})
	return view, nil
}
