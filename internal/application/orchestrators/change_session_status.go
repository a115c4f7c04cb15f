package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/schedule"
	"clubhouse/internal/domain/training"
)

// ChangeSessionStatusInput names the session and its requested status.
type ChangeSessionStatusInput struct {
	ID     string
	Status string
}

// ExecuteChangeSessionStatus moves a session along its lifecycle.
// POST: of two racing transitions from Scheduled exactly one applies; the other
// returns InvalidTransition
func ExecuteChangeSessionStatus(ctx context.Context, input ChangeSessionStatusInput, deps SessionDeps) (training.Session, error) {
	rt := deps.runtime()

	to, ok := lifecycle.Sessions.Parse(input.Status)
	if !ok {
		return training.Session{}, schedule.Reject(schedule.KindInvalidTransition, "%q is not a session status", input.Status)
	}

	updated, err := deps.Sessions.Update(ctx, input.ID, func(cur training.Session, _ int) (training.Session, error) {
		if err := lifecycle.Sessions.Transition(cur.Status, to); err != nil {
			return training.Session{}, err
		}
		cur.Status = to
		cur.UpdatedAt = rt.now()
		return cur, nil
	})
	rt.metrics().RecordStatusTransition(activityTraining, string(to), outcome(err))
	if err != nil {
		logRejection(rt.logger(), "session_status_rejected", err, zap.String("session_id", input.ID), zap.String("to", string(to)))
		return training.Session{}, err
	}

	rt.logger().Info("session status changed",
		zap.String("event", "status_changed"),
		zap.String("activity", activityTraining),
		zap.String("session_id", updated.ID),
		zap.String("to", string(to)),
	)
	return updated, nil
}
