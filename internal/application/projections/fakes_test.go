package projections

import (
	"context"
	"sort"

	"clubhouse/internal/adapters/storage/directory"
	eventStore "clubhouse/internal/adapters/storage/event"
	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
	"clubhouse/internal/domain/training"
)

type fakeDirectory struct {
	people []person.Person
	teams  []person.Team
	err    error
}

// GetPerson returns a seeded person by ID.
// PRE: id is non-empty
// POST: Returns the person or a NotFound rejection
func (f *fakeDirectory) GetPerson(_ context.Context, id string) (person.Person, error) {
	for _, p := range f.people {
		if p.ID == id {
			return p, nil
		}
	}
	return person.Person{}, schedule.NotFound("person", id)
}

func (f *fakeDirectory) ListPeople(_ context.Context, _ directory.ListFilter) ([]person.Person, error) {
	return f.people, f.err
}

// ListCoaches returns seeded people with the coach role.
func (f *fakeDirectory) ListCoaches(_ context.Context) ([]person.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []person.Person
	for _, p := range f.people {
		if p.IsCoach() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ListTeams(_ context.Context) ([]person.Team, error) {
	return f.teams, f.err
}

type fakeSessions struct {
	sessions []training.Session
	records  map[string][]training.AttendanceRecord
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (training.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return training.Session{}, schedule.NotFound("session", id)
}

// List applies the status and discipline filters and orders by date.
func (f *fakeSessions) List(_ context.Context, filter trainingStore.ListFilter) ([]training.Session, error) {
	var out []training.Session
	for _, s := range f.sessions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Discipline != "" && string(s.Discipline) != filter.Discipline {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeSessions) ListRecords(_ context.Context, sessionID string) ([]training.AttendanceRecord, error) {
	return f.records[sessionID], nil
}

func (f *fakeSessions) CountEnrolled(_ context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		out[id] = len(f.records[id])
	}
	return out, nil
}

type fakeEvents struct {
	events       []event.Event
	participants map[string][]event.ParticipantRecord
	lastFilter   eventStore.ListFilter
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (event.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return event.Event{}, schedule.NotFound("event", id)
}

func (f *fakeEvents) List(_ context.Context, filter eventStore.ListFilter) ([]event.Event, error) {
	f.lastFilter = filter
	return f.events, nil
}

func (f *fakeEvents) ListParticipants(_ context.Context, eventID string) ([]event.ParticipantRecord, error) {
	return f.participants[eventID], nil
}

func (f *fakeEvents) CountRegistered(_ context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		out[id] = len(f.participants[id])
	}
	return out, nil
}
