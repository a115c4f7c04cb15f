package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/schedule"
)

// ChangeEventStatusInput names the event and its requested status.
type ChangeEventStatusInput struct {
	ID     string
	Status string
}

// ExecuteChangeEventStatus moves an event along its lifecycle. Participant records
// survive cancellation.
// POST: InvalidTransition for any move outside the event transition table
func ExecuteChangeEventStatus(ctx context.Context, input ChangeEventStatusInput, deps EventDeps) (event.Event, error) {
	rt := deps.runtime()

	to, ok := lifecycle.Events.Parse(input.Status)
	if !ok {
		return event.Event{}, schedule.Reject(schedule.KindInvalidTransition, "%q is not an event status", input.Status)
	}

	updated, err := deps.Events.Update(ctx, input.ID, func(cur event.Event, _ int) (event.Event, error) {
		if err := lifecycle.Events.Transition(cur.Status, to); err != nil {
			return event.Event{}, err
		}
		cur.Status = to
		cur.UpdatedAt = rt.now()
		return cur, nil
	})
	rt.metrics().RecordStatusTransition(activityEvent, string(to), outcome(err))
	if err != nil {
		logRejection(rt.logger(), "event_status_rejected", err, zap.String("event_id", input.ID), zap.String("to", string(to)))
		return event.Event{}, err
	}

	rt.logger().Info("event status changed",
		zap.String("event", "status_changed"),
		zap.String("activity", activityEvent),
		zap.String("event_id", updated.ID),
		zap.String("to", string(to)),
	)
	return updated, nil
}
