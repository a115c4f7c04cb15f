package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/training"
)

// MarkAttendanceInput carries one attendance mark.
type MarkAttendanceInput struct {
	SessionID string
	AthleteID string
	Status    string
}

// MarkAttendanceResult reports the stored record and whether marking enrolled the athlete.
type MarkAttendanceResult struct {
	Record   training.AttendanceRecord
	Enrolled bool
}

// ExecuteMarkAttendance sets an athlete's attendance mark on a session that is not terminal.
// An athlete without a record is enrolled through the capacity gate with the given mark.
// POST: SessionClosed on Completed or Cancelled sessions; the record is unchanged
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps SessionDeps) (MarkAttendanceResult, error) {
	rt := deps.runtime()
	log := rt.logger()

	mark, err := lifecycle.ParseAttendance(input.Status)
	if err != nil {
		return MarkAttendanceResult{}, err
	}
	if _, err := deps.Directory.GetPerson(ctx, input.AthleteID); err != nil {
		return MarkAttendanceResult{}, err
	}

	rec := training.AttendanceRecord{
		ID:        rt.newID(),
		SessionID: input.SessionID,
		AthleteID: input.AthleteID,
		Status:    mark,
		UpdatedAt: rt.now(),
	}
	stored, created, err := deps.Sessions.MarkAttendance(ctx, rec, func(s training.Session) error {
		return lifecycle.MarkAttendance(s.Status, mark)
	})
	if created || err != nil {
		rt.metrics().RecordEnrollment(activityTraining, outcome(err))
	}
	if err != nil {
		logRejection(log, "attendance_rejected", err, zap.String("session_id", input.SessionID), zap.String("athlete_id", input.AthleteID))
		return MarkAttendanceResult{}, err
	}

	log.Info("attendance marked",
		zap.String("event", "attendance_marked"),
		zap.String("session_id", stored.SessionID),
		zap.String("athlete_id", stored.AthleteID),
		zap.String("status", string(stored.Status)),
		zap.Bool("walk_in", created),
	)
	return MarkAttendanceResult{Record: stored, Enrolled: created}, nil
}
