package projections

import (
	"context"
	"fmt"

	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/training"
)

// ListTrainingSessionsQuery carries query parameters. Empty fields match everything.
type ListTrainingSessionsQuery struct {
	Discipline string
	CoachID    string
	Status     string
	From       string
	To         string
	Limit      int
	Offset     int
}

// TrainingSessionSummary is a session with its live enrollment count.
type TrainingSessionSummary struct {
	Session   training.Session
	Enrolled  int
	Remaining int
}

// ListTrainingSessionsResult carries the query result.
type ListTrainingSessionsResult struct {
	Sessions []TrainingSessionSummary
}

// ListTrainingSessionsDeps holds dependencies for ListTrainingSessions.
type ListTrainingSessionsDeps struct {
	Sessions SessionStore
}

// QueryListTrainingSessions lists sessions in date order with counts derived from live records.
// POST: ErrInvalidFilter for an unknown status or a malformed date
func QueryListTrainingSessions(ctx context.Context, query ListTrainingSessionsQuery, deps ListTrainingSessionsDeps) (ListTrainingSessionsResult, error) {
	filter := trainingStore.ListFilter{
		Discipline: discipline.Normalize(query.Discipline).String(),
		CoachID:    query.CoachID,
		FromDate:   query.From,
		ToDate:     query.To,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	if query.Status != "" {
		s, ok := lifecycle.Sessions.Parse(query.Status)
		if !ok {
			return ListTrainingSessionsResult{}, fmt.Errorf("%w: unknown session status %q", ErrInvalidFilter, query.Status)
		}
		filter.Status = s
	}
	if err := checkDate("from", query.From); err != nil {
		return ListTrainingSessionsResult{}, err
	}
	if err := checkDate("to", query.To); err != nil {
		return ListTrainingSessionsResult{}, err
	}

	sessions, err := deps.Sessions.List(ctx, filter)
	if err != nil {
		return ListTrainingSessionsResult{}, err
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	counts, err := deps.Sessions.CountEnrolled(ctx, ids)
	if err != nil {
		return ListTrainingSessionsResult{}, err
	}

	out := make([]TrainingSessionSummary, 0, len(sessions))
	for _, s := range sessions {
		n := counts[s.ID]
		out = append(out, TrainingSessionSummary{Session: s, Enrolled: n, Remaining: capacity.Remaining(n, s.MaxCapacity)})
	}
	return ListTrainingSessionsResult{Sessions: out}, nil
}
