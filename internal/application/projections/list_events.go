package projections

import (
	"context"
	"fmt"

	eventStore "clubhouse/internal/adapters/storage/event"
	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
)

// ListEventsQuery carries query parameters. Empty fields match everything.
type ListEventsQuery struct {
	Type   string
	Status string
	From   string
	To     string
	Limit  int
	Offset int
}

// EventSummary is an event with its live registration count.
type EventSummary struct {
	Event      event.Event
	Registered int
	Remaining  int
}

// ListEventsResult carries the query result.
type ListEventsResult struct {
	Events []EventSummary
}

// ListEventsDeps holds dependencies for ListEvents.
type ListEventsDeps struct {
	Events EventStore
}

// QueryListEvents lists events in date order with counts derived from live records.
// POST: ErrInvalidFilter for an unknown type or status, or a malformed date
func QueryListEvents(ctx context.Context, query ListEventsQuery, deps ListEventsDeps) (ListEventsResult, error) {
	filter := eventStore.ListFilter{
		FromDate: query.From,
		ToDate:   query.To,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	if query.Type != "" {
		t, err := event.ParseType(query.Type)
		if err != nil {
			return ListEventsResult{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		filter.Type = t
	}
	if query.Status != "" {
		s, ok := lifecycle.Events.Parse(query.Status)
		if !ok {
			return ListEventsResult{}, fmt.Errorf("%w: unknown event status %q", ErrInvalidFilter, query.Status)
		}
		filter.Status = s
	}
	if err := checkDate("from", query.From); err != nil {
		return ListEventsResult{}, err
	}
	if err := checkDate("to", query.To); err != nil {
		return ListEventsResult{}, err
	}

	events, err := deps.Events.List(ctx, filter)
	if err != nil {
		return ListEventsResult{}, err
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := deps.Events.CountRegistered(ctx, ids)
	if err != nil {
		return ListEventsResult{}, err
	}

	out := make([]EventSummary, 0, len(events))
	for _, e := range events {
		n := counts[e.ID]
		out = append(out, EventSummary{Event: e, Registered: n, Remaining: capacity.Remaining(n, e.Capacity)})
	}
	return ListEventsResult{Events: out}, nil
}
