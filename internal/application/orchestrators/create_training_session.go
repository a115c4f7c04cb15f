package orchestrators

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/training"
)

// CreateTrainingSessionInput carries the fields of a new session.
type CreateTrainingSessionInput struct {
	Discipline      string
	CoachID         string // empty asks the core to reject with NoEligibleCoach or IneligibleCoach
	Location        string
	Date            string
	Time            string
	DurationMinutes int
	MaxCapacity     int
}

// ExecuteCreateTrainingSession schedules a new training session.
// PRE: Discipline is a non-empty discipline name
// POST: the stored session is Scheduled and its coach is eligible for its discipline
func ExecuteCreateTrainingSession(ctx context.Context, input CreateTrainingSessionInput, deps SessionDeps) (training.Session, error) {
	rt := deps.runtime()
	log := rt.logger()

	key, err := discipline.Parse(input.Discipline)
	if err != nil {
		return training.Session{}, err
	}

	resolver, err := LoadResolver(ctx, deps.Directory)
	if err != nil {
		return training.Session{}, err
	}
	coachID := strings.TrimSpace(input.CoachID)
	if err := checkCoach(resolver, key, coachID); err != nil {
		logRejection(log, "session_create_rejected", err, zap.String("discipline", key.String()), zap.String("coach_id", coachID))
		return training.Session{}, err
	}

	now := rt.now()
	s := training.Session{
		ID:              rt.newID(),
		Discipline:      key,
		CoachID:         coachID,
		Location:        strings.TrimSpace(input.Location),
		Date:            strings.TrimSpace(input.Date),
		Time:            strings.TrimSpace(input.Time),
		DurationMinutes: input.DurationMinutes,
		MaxCapacity:     input.MaxCapacity,
		Status:          lifecycle.Sessions.Initial(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Validate(); err != nil {
		return training.Session{}, err
	}
	if err := deps.Sessions.Create(ctx, s); err != nil {
		return training.Session{}, err
	}

	log.Info("session created",
		zap.String("event", "session_created"),
		zap.String("session_id", s.ID),
		zap.String("discipline", s.Discipline.String()),
		zap.String("coach_id", s.CoachID),
		zap.Int("max_capacity", s.MaxCapacity),
	)
	return s, nil
}
