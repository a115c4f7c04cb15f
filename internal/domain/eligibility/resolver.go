// Package eligibility answers which coaches may run a session of a discipline.
//
// A coach qualifies for discipline D when any of these hold:
//   - they are the assigned coach of a team whose discipline is D;
//   - D is among their declared sports;
//   - their own team (Person.TeamID) has discipline D.
//
// The resolver is a pure view over a directory snapshot; it never mutates or caches across snapshots.
package eligibility

import (
	"sort"

	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/person"
)

// Resolver evaluates eligibility over one snapshot of the directory.
type Resolver struct {
	coaches  map[string]person.Person
	teams    []person.Team
	teamByID map[string]person.Team
}

// NewResolver builds a Resolver from the directory's coaches and teams.
// People whose role is not coach are ignored, so callers may pass an unfiltered list.
// PRE: disciplines on people and teams are normalized keys
// POST: returns a ready Resolver; inputs are not retained by reference
func NewResolver(people []person.Person, teams []person.Team) *Resolver {
	r := &Resolver{
		coaches:  make(map[string]person.Person, len(people)),
		teams:    append([]person.Team(nil), teams...),
		teamByID: make(map[string]person.Team, len(teams)),
	}
	for _, p := range people {
		if p.IsCoach() {
			r.coaches[p.ID] = p
		}
	}
	for _, t := range teams {
		r.teamByID[t.ID] = t
	}
	return r
}

// Option adjusts a single EligibleCoaches query.
type Option func(*query)

type query struct {
	retained *person.Person
}

// WithRetained forces the currently assigned coach into the result, so that editing an
// existing session never invalidates its own assignment.
func WithRetained(current person.Person) Option {
	return func(q *query) {
		if current.ID != "" {
			c := current
			q.retained = &c
		}
	}
}

// EligibleCoaches returns the coaches qualified for k, de-duplicated by ID and
// ordered by name then ID. An empty result is a valid answer.
// PRE: k is a normalized key
// POST: every returned person is a coach qualified for k, or the retained coach
func (r *Resolver) EligibleCoaches(k discipline.Key, opts ...Option) []person.Person {
	var q query
	for _, o := range opts {
		o(&q)
	}

	found := make(map[string]person.Person)
	if k != "" {
		for _, t := range r.teams {
			if t.Discipline != k || !t.HasCoach() {
				continue
			}
			if c, ok := r.coaches[t.CoachID]; ok {
				found[c.ID] = c
			}
		}
		for id, c := range r.coaches {
			if _, done := found[id]; done {
				continue
			}
			if r.qualifiesDirectly(c, k) {
				found[id] = c
			}
		}
	}
	if q.retained != nil {
		found[q.retained.ID] = *q.retained
	}

	out := make([]person.Person, 0, len(found))
	for _, c := range found {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IsEligible reports whether coachID is in EligibleCoaches(k, opts...).
func (r *Resolver) IsEligible(k discipline.Key, coachID string, opts ...Option) bool {
	if coachID == "" {
		return false
	}
	for _, c := range r.EligibleCoaches(k, opts...) {
		if c.ID == coachID {
			return true
		}
	}
	return false
}

// DerivedDisciplines returns every discipline with at least one eligible coach.
// POST: for each returned k, EligibleCoaches(k) is non-empty
func (r *Resolver) DerivedDisciplines() discipline.Set {
	out := make(discipline.Set)
	for _, t := range r.teams {
		if _, ok := r.coaches[t.CoachID]; ok && t.HasCoach() {
			out.Add(t.Discipline)
		}
	}
	for _, c := range r.coaches {
		for _, s := range c.Sports {
			out.Add(s)
		}
		if t, ok := r.teamByID[c.TeamID]; ok {
			out.Add(t.Discipline)
		}
	}
	return out
}

// qualifiesDirectly covers the declared-sport and own-team rules.
func (r *Resolver) qualifiesDirectly(c person.Person, k discipline.Key) bool {
	if c.DeclaresSport(k) {
		return true
	}
	if c.TeamID == "" {
		return false
	}
	t, ok := r.teamByID[c.TeamID]
	return ok && t.Discipline == k
}
