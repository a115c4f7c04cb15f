package orchestrators

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/schedule"
)

// CreateEventInput carries the fields of a new event.
type CreateEventInput struct {
	Title       string
	Type        string
	Description string // markdown
	Date        string
	Time        string
	Location    string
	Capacity    int
}

// ExecuteCreateEvent schedules a new club event in its initial status.
// POST: the stored event is Upcoming with no participants
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps EventDeps) (event.Event, error) {
	rt := deps.runtime()

	typ, err := event.ParseType(input.Type)
	if err != nil {
		return event.Event{}, err
	}
	now := rt.now()
	e := event.Event{
		ID:          rt.newID(),
		Title:       strings.TrimSpace(input.Title),
		Type:        typ,
		Description: input.Description,
		Date:        strings.TrimSpace(input.Date),
		Time:        strings.TrimSpace(input.Time),
		Location:    strings.TrimSpace(input.Location),
		Capacity:    input.Capacity,
		Status:      lifecycle.Events.Initial(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return event.Event{}, err
	}
	if err := deps.Events.Create(ctx, e); err != nil {
		return event.Event{}, err
	}

	rt.logger().Info("event created",
		zap.String("event", "event_created"),
		zap.String("event_id", e.ID),
		zap.String("type", e.Type),
		zap.Int("capacity", e.Capacity),
	)
	return e, nil
}

// UpdateEventInput carries a partial edit of an event.
type UpdateEventInput struct {
	ID    string
	Patch event.Patch
}

// ExecuteUpdateEvent edits an event that has not reached a terminal status.
// POST: a capacity change below the live participant count returns CapacityBelowEnrollment
func ExecuteUpdateEvent(ctx context.Context, input UpdateEventInput, deps EventDeps) (event.Event, error) {
	rt := deps.runtime()

	updated, err := deps.Events.Update(ctx, input.ID, func(cur event.Event, registered int) (event.Event, error) {
		if cur.IsClosed() {
			return event.Event{}, schedule.Reject(schedule.KindSessionClosed, "event %s is %s", cur.ID, cur.Status)
		}
		next := input.Patch.Apply(cur)
		if err := next.Validate(); err != nil {
			return event.Event{}, err
		}
		if next.Capacity != cur.Capacity {
			if err := capacity.Resize(registered, next.Capacity); err != nil {
				return event.Event{}, err
			}
		}
		next.UpdatedAt = rt.now()
		return next, nil
	})
	if err != nil {
		logRejection(rt.logger(), "event_update_rejected", err, zap.String("event_id", input.ID))
		return event.Event{}, err
	}

	rt.logger().Info("event updated", zap.String("event", "event_updated"), zap.String("event_id", updated.ID))
	return updated, nil
}

// DeleteEventInput identifies the event to delete.
type DeleteEventInput struct {
	ID string
}

// ExecuteDeleteEvent deletes an event and its participant records.
// POST: NotFound if the event does not exist
func ExecuteDeleteEvent(ctx context.Context, input DeleteEventInput, deps EventDeps) error {
	if err := deps.Events.Delete(ctx, input.ID); err != nil {
		return err
	}
	deps.runtime().logger().Info("event deleted", zap.String("event", "event_deleted"), zap.String("event_id", input.ID))
	return nil
}
