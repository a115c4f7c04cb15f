package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
)

// RegisterParticipantInput names the event and the person to register.
type RegisterParticipantInput struct {
	EventID  string
	PersonID string
}

// ExecuteRegisterParticipant registers a known person of any role for an event
// through the capacity gate.
// POST: live participants never exceed the event's capacity
func ExecuteRegisterParticipant(ctx context.Context, input RegisterParticipantInput, deps EventDeps) (event.ParticipantRecord, error) {
	rt := deps.runtime()
	log := rt.logger()

	if _, err := deps.Directory.GetPerson(ctx, input.PersonID); err != nil {
		return event.ParticipantRecord{}, err
	}

	now := rt.now()
	rec := event.ParticipantRecord{
		ID:           rt.newID(),
		EventID:      input.EventID,
		PersonID:     input.PersonID,
		RegisteredAt: now,
	}
	if err := rec.Validate(); err != nil {
		return event.ParticipantRecord{}, err
	}

	loc := rt.location()
	err := deps.Events.Register(ctx, rec, func(e event.Event) error {
		end, err := e.WindowEnd(loc)
		if err != nil {
			return err
		}
		return lifecycle.EventOpenForEnrollment(e.Status, end, now)
	})
	rt.metrics().RecordEnrollment(activityEvent, outcome(err))
	if err != nil {
		logRejection(log, "participant_register_rejected", err, zap.String("event_id", input.EventID), zap.String("person_id", input.PersonID))
		return event.ParticipantRecord{}, err
	}

	log.Info("participant registered",
		zap.String("event", "participant_registered"),
		zap.String("event_id", rec.EventID),
		zap.String("person_id", rec.PersonID),
	)
	return rec, nil
}

// UnregisterParticipantInput names the event and the person to remove.
type UnregisterParticipantInput struct {
	EventID  string
	PersonID string
}

// ExecuteUnregisterParticipant removes the person's registration if present.
// POST: a second call is a no-op that reports removed=false without error
func ExecuteUnregisterParticipant(ctx context.Context, input UnregisterParticipantInput, deps EventDeps) (bool, error) {
	removed, err := deps.Events.Unregister(ctx, input.EventID, input.PersonID)
	if err != nil {
		return false, err
	}
	if removed {
		deps.runtime().logger().Info("participant unregistered",
			zap.String("event", "participant_unregistered"),
			zap.String("event_id", input.EventID),
			zap.String("person_id", input.PersonID),
		)
	}
	return removed, nil
}
