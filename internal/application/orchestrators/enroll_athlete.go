package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/training"
)

// EnrollAthleteInput names the session and the athlete to enroll.
type EnrollAthleteInput struct {
	SessionID string
	AthleteID string
}

func sessionOpen(s training.Session) error {
	return lifecycle.SessionOpenForEnrollment(s.Status)
}

// ExecuteEnrollAthlete enrolls a known person in a session through the capacity gate.
// PRE: AthleteID is known to the directory
// POST: a new record with the initial attendance status exists, or the gate's rejection is returned
func ExecuteEnrollAthlete(ctx context.Context, input EnrollAthleteInput, deps SessionDeps) (training.AttendanceRecord, error) {
	rt := deps.runtime()
	log := rt.logger()

	if _, err := deps.Directory.GetPerson(ctx, input.AthleteID); err != nil {
		return training.AttendanceRecord{}, err
	}

	rec := training.AttendanceRecord{
		ID:        rt.newID(),
		SessionID: input.SessionID,
		AthleteID: input.AthleteID,
		Status:    lifecycle.InitialAttendance,
		UpdatedAt: rt.now(),
	}
	if err := rec.Validate(); err != nil {
		return training.AttendanceRecord{}, err
	}

	err := deps.Sessions.Enroll(ctx, rec, sessionOpen)
	rt.metrics().RecordEnrollment(activityTraining, outcome(err))
	if err != nil {
		logRejection(log, "athlete_enroll_rejected", err, zap.String("session_id", input.SessionID), zap.String("athlete_id", input.AthleteID))
		return training.AttendanceRecord{}, err
	}

	log.Info("athlete enrolled",
		zap.String("event", "athlete_enrolled"),
		zap.String("session_id", rec.SessionID),
		zap.String("athlete_id", rec.AthleteID),
	)
	return rec, nil
}

// UnenrollAthleteInput names the session and the athlete to remove.
type UnenrollAthleteInput struct {
	SessionID string
	AthleteID string
}

// ExecuteUnenrollAthlete removes the athlete's record if present.
// POST: calling it twice leaves the same state as calling it once; the second call
// reports removed=false and no error. Records of a terminal session are read-only.
func ExecuteUnenrollAthlete(ctx context.Context, input UnenrollAthleteInput, deps SessionDeps) (bool, error) {
	removed, err := deps.Sessions.Unenroll(ctx, input.SessionID, input.AthleteID, sessionOpen)
	if err != nil {
		return false, err
	}
	if removed {
		deps.runtime().logger().Info("athlete unenrolled",
			zap.String("event", "athlete_unenrolled"),
			zap.String("session_id", input.SessionID),
			zap.String("athlete_id", input.AthleteID),
		)
	}
	return removed, nil
}
