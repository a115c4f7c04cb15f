package projections

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/training"
)

// GetTrainingSessionQuery carries query parameters.
type GetTrainingSessionQuery struct {
	ID string
}

// AttendeeView is one attendance record joined with the athlete's name.
type AttendeeView struct {
	AthleteID string
	Name      string
	Status    lifecycle.AttendanceStatus
	UpdatedAt time.Time
}

// TrainingSessionView is a session with its live enrollment.
type TrainingSessionView struct {
	Session   training.Session
	CoachName string
	Enrolled  int
	Remaining int
	Attendees []AttendeeView
}

// GetTrainingSessionDeps holds dependencies for GetTrainingSession.
type GetTrainingSessionDeps struct {
	Sessions  SessionStore
	Directory DirectoryStore
}

// QueryGetTrainingSession loads a session, its attendance and the names behind it.
// PRE: ID is non-empty
// POST: Enrolled equals len(Attendees); Attendees are ordered by name
func QueryGetTrainingSession(ctx context.Context, query GetTrainingSessionQuery, deps GetTrainingSessionDeps) (TrainingSessionView, error) {
	sess, err := deps.Sessions.GetByID(ctx, query.ID)
	if err != nil {
		return TrainingSessionView{}, err
	}

	var (
		records []training.AttendanceRecord
		people  map[string]person.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = deps.Sessions.ListRecords(gctx, sess.ID)
		return err
	})
	g.Go(func() error {
		var err error
		people, err = peopleByID(gctx, deps.Directory)
		return err
	})
	if err := g.Wait(); err != nil {
		return TrainingSessionView{}, err
	}

	view := TrainingSessionView{
		Session:   sess,
		CoachName: people[sess.CoachID].Name,
		Enrolled:  len(records),
		Remaining: capacity.Remaining(len(records), sess.MaxCapacity),
		Attendees: make([]AttendeeView, 0, len(records)),
	}
	for _, r := range records {
		view.Attendees = append(view.Attendees, AttendeeView{
			AthleteID: r.AthleteID,
			Name:      people[r.AthleteID].Name,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
		})
	}
	sort.Slice(view.Attendees, func(i, j int) bool {
		a, b := view.Attendees[i], view.Attendees[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.AthleteID < b.AthleteID
	})
	return view, nil
}
