package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/eligibility"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
	"clubhouse/internal/domain/training"
)

// UpdateTrainingSessionInput carries a partial edit of a session.
type UpdateTrainingSessionInput struct {
	ID    string
	Patch training.Patch
}

// ExecuteUpdateTrainingSession edits a session that has not reached a terminal status.
// PRE: ID names an existing session
// POST: when discipline or coach change, the resulting coach is eligible, with the
// current coach always counted as eligible for an edit that keeps them;
// a capacity change never drops below the live enrollment count
func ExecuteUpdateTrainingSession(ctx context.Context, input UpdateTrainingSessionInput, deps SessionDeps) (training.Session, error) {
	rt := deps.runtime()
	log := rt.logger()

	if input.Patch.IsEmpty() {
		return deps.Sessions.GetByID(ctx, input.ID)
	}

	var resolver *eligibility.Resolver
	if input.Patch.Discipline != nil || input.Patch.CoachID != nil {
		var err error
		if resolver, err = LoadResolver(ctx, deps.Directory); err != nil {
			return training.Session{}, err
		}
	}

	updated, err := deps.Sessions.Update(ctx, input.ID, func(cur training.Session, enrolled int) (training.Session, error) {
		if cur.IsClosed() {
			return training.Session{}, schedule.Reject(schedule.KindSessionClosed, "session %s is %s", cur.ID, cur.Status)
		}
		next := input.Patch.Apply(cur)
		if err := next.Validate(); err != nil {
			return training.Session{}, err
		}
		if resolver != nil && input.Patch.ChangesAssignment(cur) {
			var opts []eligibility.Option
			if next.CoachID == cur.CoachID {
				opts = append(opts, eligibility.WithRetained(person.Person{ID: cur.CoachID, Role: person.RoleCoach}))
			}
			if err := checkCoach(resolver, next.Discipline, next.CoachID, opts...); err != nil {
				return training.Session{}, err
			}
		}
		if next.MaxCapacity != cur.MaxCapacity {
			if err := capacity.Resize(enrolled, next.MaxCapacity); err != nil {
				return training.Session{}, err
			}
		}
		next.UpdatedAt = rt.now()
		return next, nil
	})
	if err != nil {
		logRejection(log, "session_update_rejected", err, zap.String("session_id", input.ID))
		return training.Session{}, err
	}

	log.Info("session updated", zap.String("event", "session_updated"), zap.String("session_id", updated.ID))
	return updated, nil
}

// DeleteTrainingSessionInput identifies the session to delete.
type DeleteTrainingSessionInput struct {
	ID string
}

// ExecuteDeleteTrainingSession deletes a session and its attendance records.
// POST: NotFound if the session does not exist
func ExecuteDeleteTrainingSession(ctx context.Context, input DeleteTrainingSessionInput, deps SessionDeps) error {
	if err := deps.Sessions.Delete(ctx, input.ID); err != nil {
		return err
	}
	deps.runtime().logger().Info("session deleted", zap.String("event", "session_deleted"), zap.String("session_id", input.ID))
	return nil
}
