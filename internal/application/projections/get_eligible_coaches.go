package projections

import (
	"context"
	"errors"

	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/eligibility"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
)

// GetEligibleCoachesQuery carries query parameters.
type GetEligibleCoachesQuery struct {
	Discipline string
	SessionID  string // when set, the session's current coach is kept in the result
}

// CoachOption is one selectable coach.
type CoachOption struct {
	ID     string
	Name   string
	Sports []discipline.Key
	TeamID string
}

// GetEligibleCoachesResult carries the query result.
type GetEligibleCoachesResult struct {
	Discipline discipline.Key
	Display    string
	Coaches    []CoachOption
}

// GetEligibleCoachesDeps holds dependencies for GetEligibleCoaches.
type GetEligibleCoachesDeps struct {
	Directory DirectoryStore
	Sessions  SessionStore // only read when SessionID is set
}

// QueryGetEligibleCoaches lists the coaches who may run a session of the discipline.
// PRE: Discipline is non-empty
// POST: Coaches is ordered by name; an empty list is a valid answer
// INVARIANT: with SessionID set, the session's assigned coach is always listed
func QueryGetEligibleCoaches(ctx context.Context, query GetEligibleCoachesQuery, deps GetEligibleCoachesDeps) (GetEligibleCoachesResult, error) {
	key, err := discipline.Parse(query.Discipline)
	if err != nil {
		return GetEligibleCoachesResult{}, err
	}
	resolver, err := loadResolver(ctx, deps.Directory)
	if err != nil {
		return GetEligibleCoachesResult{}, err
	}

	var opts []eligibility.Option
	if query.SessionID != "" {
		sess, err := deps.Sessions.GetByID(ctx, query.SessionID)
		if err != nil {
			return GetEligibleCoachesResult{}, err
		}
		current, err := deps.Directory.GetPerson(ctx, sess.CoachID)
		switch {
		case errors.Is(err, schedule.ErrNotFound):
			current = person.Person{ID: sess.CoachID, Role: person.RoleCoach}
		case err != nil:
			return GetEligibleCoachesResult{}, err
		}
		opts = append(opts, eligibility.WithRetained(current))
	}

	coaches := resolver.EligibleCoaches(key, opts...)
	result := GetEligibleCoachesResult{
		Discipline: key,
		Display:    key.Display(),
		Coaches:    make([]CoachOption, 0, len(coaches)),
	}
	for _, c := range coaches {
		result.Coaches = append(result.Coaches, CoachOption{ID: c.ID, Name: c.Name, Sports: c.Sports, TeamID: c.TeamID})
	}
	return result, nil
}
