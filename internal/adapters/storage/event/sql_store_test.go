package event_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/adapters/storage/event"
	"clubhouse/internal/adapters/storage/storagetest"
	domain "clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/schedule"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type SQLiteStoreSuite struct {
	suite.Suite
	store *event.SQLStore
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.store = event.NewSQLStore(storagetest.OpenSQLite(s.T()), storage.SQLite,
		storage.RetryPolicy{Attempts: 10, Backoff: time.Millisecond})
}

func newEvent(id string, capacity int) domain.Event {
	return domain.Event{
		ID:          id,
		Title:       "Club Dinner",
		Type:        domain.TypeSocial,
		Description: "Bring a *plate*.",
		Date:        "2026-05-20",
		Time:        "19:00",
		Location:    "Clubhouse",
		Capacity:    capacity,
		Status:      lifecycle.EventUpcoming,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
}

func participant(eventID, personID string) domain.ParticipantRecord {
	return domain.ParticipantRecord{ID: eventID + "/" + personID, EventID: eventID, PersonID: personID, RegisteredAt: fixedNow}
}

func open(e domain.Event) error {
	end, _ := e.WindowEnd(time.UTC)
	return lifecycle.EventOpenForEnrollment(e.Status, end, fixedNow)
}

func (s *SQLiteStoreSuite) TestCreateGetDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newEvent("e1", 10)))

	got, err := s.store.GetByID(ctx, "e1")
	s.Require().NoError(err)
	s.Equal("Bring a *plate*.", got.Description)
	s.Equal(lifecycle.EventUpcoming, got.Status)

	s.Require().NoError(s.store.Delete(ctx, "e1"))
	_, err = s.store.GetByID(ctx, "e1")
	s.ErrorIs(err, schedule.ErrNotFound)
}

func (s *SQLiteStoreSuite) TestRegister_Rules() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newEvent("e1", 2)))

	s.Require().NoError(s.store.Register(ctx, participant("e1", "p1"), open))
	s.ErrorIs(s.store.Register(ctx, participant("e1", "p1"), open), schedule.ErrDuplicateRegistration)
	s.Require().NoError(s.store.Register(ctx, participant("e1", "p2"), open))
	s.ErrorIs(s.store.Register(ctx, participant("e1", "p3"), open), schedule.ErrCapacityExceeded)

	removed, err := s.store.Unregister(ctx, "e1", "p2")
	s.Require().NoError(err)
	s.True(removed)
	removed, err = s.store.Unregister(ctx, "e1", "p2")
	s.Require().NoError(err)
	s.False(removed)

	s.NoError(s.store.Register(ctx, participant("e1", "p3"), open))

	people, err := s.store.ListParticipants(ctx, "e1")
	s.Require().NoError(err)
	s.Len(people, 2)
}

func (s *SQLiteStoreSuite) TestRegister_CancelledEvent() {
	ctx := context.Background()
	e := newEvent("e1", 2)
	e.Status = lifecycle.EventCancelled
	s.Require().NoError(s.store.Create(ctx, e))

	s.ErrorIs(s.store.Register(ctx, participant("e1", "p1"), open), schedule.ErrSessionClosed)
}

func (s *SQLiteStoreSuite) TestUpdate_CapacityChange() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newEvent("e1", 3)))
	s.Require().NoError(s.store.Register(ctx, participant("e1", "p1"), open))
	s.Require().NoError(s.store.Register(ctx, participant("e1", "p2"), open))

	var seen int
	got, err := s.store.Update(ctx, "e1", func(cur domain.Event, registered int) (domain.Event, error) {
		seen = registered
		cur.Capacity = 2
		cur.Title = "Club Dinner (full)"
		return cur, nil
	})
	s.Require().NoError(err)
	s.Equal(2, seen)
	s.Equal(2, got.Capacity)

	counts, err := s.store.CountRegistered(ctx, []string{"e1", "e2"})
	s.Require().NoError(err)
	s.Equal(map[string]int{"e1": 2}, counts)
}

func (s *SQLiteStoreSuite) TestList_Filters() {
	ctx := context.Background()
	a := newEvent("a", 5)
	b := newEvent("b", 5)
	b.Type = domain.TypeCompetition
	b.Date = "2026-06-01"
	s.Require().NoError(s.store.Create(ctx, b))
	s.Require().NoError(s.store.Create(ctx, a))

	all, err := s.store.List(ctx, event.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("a", all[0].ID)

	comps, err := s.store.List(ctx, event.ListFilter{Type: domain.TypeCompetition})
	s.Require().NoError(err)
	s.Require().Len(comps, 1)
	s.Equal("b", comps[0].ID)
}

func (s *SQLiteStoreSuite) TestRegister_ConcurrentRespectsCapacity() {
	ctx := context.Background()
	const places, contenders = 3, 20
	s.Require().NoError(s.store.Create(ctx, newEvent("e1", places)))

	var admitted atomic.Int32
	var g errgroup.Group
	for i := 0; i < contenders; i++ {
		personID := fmt.Sprintf("p%02d", i)
		g.Go(func() error {
			err := s.store.Register(ctx, participant("e1", personID), open)
			if err == nil {
				admitted.Add(1)
				return nil
			}
			if errors.Is(err, schedule.ErrCapacityExceeded) {
				return nil
			}
			return err
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(places), admitted.Load())
}
