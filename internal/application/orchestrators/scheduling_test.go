package orchestrators_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"clubhouse/internal/adapters/storage"
	eventStore "clubhouse/internal/adapters/storage/event"
	"clubhouse/internal/adapters/storage/storagetest"
	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/orchestrators/mocks"
	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/lifecycle"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
	"clubhouse/internal/domain/training"
)

var testClock = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// recordingMetrics captures what the orchestrators report.
type recordingMetrics struct {
	mu          sync.Mutex
	enrollments []string
	transitions []string
}

func (r *recordingMetrics) RecordEnrollment(activity, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments = append(r.enrollments, activity+":"+outcome)
}

func (r *recordingMetrics) RecordStatusTransition(activity, to, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, activity+":"+to+":"+outcome)
}

func (r *recordingMetrics) RecordStoreRetry()                         {}
func (r *recordingMetrics) ObserveQuery(string, time.Duration)        {}
func (r *recordingMetrics) ObserveRequest(string, int, time.Duration) {}

type SchedulingSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	directory *mocks.MockDirectoryReader
	metrics   *recordingMetrics
	logs      *observer.ObservedLogs
	sessions  orchestrators.SessionDeps
	events    orchestrators.EventDeps
	people    map[string]person.Person
	coaches   []person.Person
	teams     []person.Team
	nextID    int
}

func TestSchedulingSuite(t *testing.T) {
	suite.Run(t, new(SchedulingSuite))
}

func (s *SchedulingSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.directory = mocks.NewMockDirectoryReader(s.ctrl)
	s.metrics = &recordingMetrics{}
	s.nextID = 0

	coach := func(id, name string, sports ...string) person.Person {
		p := person.Person{ID: id, Name: name, Role: person.RoleCoach}
		p.SetSports(sports)
		return p
	}
	s.coaches = []person.Person{
		coach("c1", "Casey", "Tennis"),
		coach("c2", "Dana", "Football"),
	}
	s.teams = []person.Team{{ID: "t1", Name: "Strikers", Discipline: "football", CoachID: "c2"}}
	s.people = map[string]person.Person{}
	for _, c := range s.coaches {
		s.people[c.ID] = c
	}
	for i := 1; i <= 15; i++ {
		id := fmt.Sprintf("a%d", i)
		s.people[id] = person.Person{ID: id, Name: "Athlete " + id, Role: person.RoleAthlete}
	}

	s.directory.EXPECT().ListCoaches(gomock.Any()).DoAndReturn(func(context.Context) ([]person.Person, error) {
		return s.coaches, nil
	}).AnyTimes()
	s.directory.EXPECT().ListTeams(gomock.Any()).DoAndReturn(func(context.Context) ([]person.Team, error) {
		return s.teams, nil
	}).AnyTimes()
	s.directory.EXPECT().GetPerson(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id string) (person.Person, error) {
		p, ok := s.people[id]
		if !ok {
			return person.Person{}, schedule.NotFound("person", id)
		}
		return p, nil
	}).AnyTimes()

	core, logs := observer.New(zap.InfoLevel)
	s.logs = logs
	db := storagetest.OpenSQLite(s.T())
	retry := storage.RetryPolicy{Attempts: 10, Backoff: time.Millisecond}
	genID := func() string {
		s.nextID++
		return fmt.Sprintf("id-%03d", s.nextID)
	}
	now := func() time.Time { return testClock }

	s.sessions = orchestrators.SessionDeps{
		Directory:  s.directory,
		Sessions:   trainingStore.NewSQLStore(db, storage.SQLite, retry),
		Logger:     zap.New(core),
		Metrics:    s.metrics,
		GenerateID: genID,
		Now:        now,
	}
	s.events = orchestrators.EventDeps{
		Directory:  s.directory,
		Events:     eventStore.NewSQLStore(db, storage.SQLite, retry),
		Logger:     zap.New(core),
		Metrics:    s.metrics,
		GenerateID: genID,
		Now:        now,
	}
}

func (s *SchedulingSuite) createSession(disc, coachID string, capacity int) training.Session {
	sess, err := orchestrators.ExecuteCreateTrainingSession(context.Background(), orchestrators.CreateTrainingSessionInput{
		Discipline: disc, CoachID: coachID, Location: "Court 1", Date: "2026-03-10", Time: "18:00",
		DurationMinutes: 60, MaxCapacity: capacity,
	}, s.sessions)
	s.Require().NoError(err)
	return sess
}

func (s *SchedulingSuite) enroll(sessionID, athleteID string) error {
	_, err := orchestrators.ExecuteEnrollAthlete(context.Background(),
		orchestrators.EnrollAthleteInput{SessionID: sessionID, AthleteID: athleteID}, s.sessions)
	return err
}

// TestTennisCapacityScenario walks the capacity scenario end to end.
func (s *SchedulingSuite) TestTennisCapacityScenario() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 2)
	s.Equal(discipline.Key("tennis"), sess.Discipline)
	s.Equal(lifecycle.SessionScheduled, sess.Status)

	s.Require().NoError(s.enroll(sess.ID, "a1"))
	s.Require().NoError(s.enroll(sess.ID, "a2"))
	s.ErrorIs(s.enroll(sess.ID, "a3"), schedule.ErrCapacityExceeded)

	removed, err := orchestrators.ExecuteUnenrollAthlete(ctx, orchestrators.UnenrollAthleteInput{SessionID: sess.ID, AthleteID: "a1"}, s.sessions)
	s.Require().NoError(err)
	s.True(removed)
	s.NoError(s.enroll(sess.ID, "a3"))

	s.Equal([]string{"training:ok", "training:ok", "training:rejected", "training:ok"}, s.metrics.enrollments)
}

// TestChessHasNoEligibleCoach covers creation against a discipline nobody coaches.
func (s *SchedulingSuite) TestChessHasNoEligibleCoach() {
	ctx := context.Background()
	input := orchestrators.CreateTrainingSessionInput{
		Discipline: "Chess", Location: "Hall", Date: "2026-03-10", Time: "18:00", DurationMinutes: 60, MaxCapacity: 8,
	}
	_, err := orchestrators.ExecuteCreateTrainingSession(ctx, input, s.sessions)
	s.ErrorIs(err, schedule.ErrNoEligibleCoach)

	input.CoachID = "c1"
	_, err = orchestrators.ExecuteCreateTrainingSession(ctx, input, s.sessions)
	s.ErrorIs(err, schedule.ErrIneligibleCoach)

	s.NotEmpty(s.logs.FilterField(zap.String("event", "session_create_rejected")).All())
}

func (s *SchedulingSuite) TestCreate_CoachEligibility() {
	ctx := context.Background()
	base := orchestrators.CreateTrainingSessionInput{
		Location: "Pitch", Date: "2026-03-10", Time: "18:00", DurationMinutes: 90, MaxCapacity: 20,
	}

	tests := []struct {
		name       string
		discipline string
		coachID    string
		wantErr    error
	}{
		{"team coach qualifies", "FOOTBALL", "c2", nil},
		{"declared sport qualifies", " tennis ", "c1", nil},
		{"coach of another discipline", "Football", "c1", schedule.ErrIneligibleCoach},
		{"missing coach with eligible set", "Football", "", schedule.ErrIneligibleCoach},
		{"unknown coach", "Tennis", "ghost", schedule.ErrIneligibleCoach},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := base
			in.Discipline = tt.discipline
			in.CoachID = tt.coachID
			_, err := orchestrators.ExecuteCreateTrainingSession(ctx, in, s.sessions)
			if tt.wantErr == nil {
				s.NoError(err)
				return
			}
			s.ErrorIs(err, tt.wantErr)
		})
	}
}

func (s *SchedulingSuite) TestUpdate_RetainsCurrentCoach() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 4)

	// c1 stops declaring tennis; an in-place edit keeps the assignment valid.
	s.coaches[0].Sports = nil
	loc := "Court 9"
	updated, err := orchestrators.ExecuteUpdateTrainingSession(ctx, orchestrators.UpdateTrainingSessionInput{
		ID: sess.ID, Patch: training.Patch{Location: &loc},
	}, s.sessions)
	s.Require().NoError(err)
	s.Equal("Court 9", updated.Location)

	// Discipline change keeping the coach is allowed by the carve-out.
	disc := "Padel"
	updated, err = orchestrators.ExecuteUpdateTrainingSession(ctx, orchestrators.UpdateTrainingSessionInput{
		ID: sess.ID, Patch: training.Patch{Discipline: &disc},
	}, s.sessions)
	s.Require().NoError(err)
	s.Equal(discipline.Key("padel"), updated.Discipline)

	// Swapping to a coach who does not qualify is rejected.
	other := "c2"
	_, err = orchestrators.ExecuteUpdateTrainingSession(ctx, orchestrators.UpdateTrainingSessionInput{
		ID: sess.ID, Patch: training.Patch{CoachID: &other},
	}, s.sessions)
	s.ErrorIs(err, schedule.ErrIneligibleCoach)
}

func (s *SchedulingSuite) TestUpdate_CapacityAndClosed() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 3)
	s.Require().NoError(s.enroll(sess.ID, "a1"))
	s.Require().NoError(s.enroll(sess.ID, "a2"))

	one := 1
	_, err := orchestrators.ExecuteUpdateTrainingSession(ctx, orchestrators.UpdateTrainingSessionInput{
		ID: sess.ID, Patch: training.Patch{MaxCapacity: &one},
	}, s.sessions)
	s.ErrorIs(err, schedule.ErrCapacityBelowEnrollment)

	_, err = orchestrators.ExecuteChangeSessionStatus(ctx, orchestrators.ChangeSessionStatusInput{ID: sess.ID, Status: "Cancelled"}, s.sessions)
	s.Require().NoError(err)

	two := 2
	_, err = orchestrators.ExecuteUpdateTrainingSession(ctx, orchestrators.UpdateTrainingSessionInput{
		ID: sess.ID, Patch: training.Patch{MaxCapacity: &two},
	}, s.sessions)
	s.ErrorIs(err, schedule.ErrSessionClosed)
}

// TestCompletedSessionRejectsAttendance covers terminal immutability for sessions.
func (s *SchedulingSuite) TestCompletedSessionRejectsAttendance() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 5)
	s.Require().NoError(s.enroll(sess.ID, "a1"))

	_, err := orchestrators.ExecuteChangeSessionStatus(ctx, orchestrators.ChangeSessionStatusInput{ID: sess.ID, Status: "Completed"}, s.sessions)
	s.Require().NoError(err)

	_, err = orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{SessionID: sess.ID, AthleteID: "a1", Status: "Present"}, s.sessions)
	s.ErrorIs(err, schedule.ErrSessionClosed)

	_, err = orchestrators.ExecuteChangeSessionStatus(ctx, orchestrators.ChangeSessionStatusInput{ID: sess.ID, Status: "Cancelled"}, s.sessions)
	s.ErrorIs(err, schedule.ErrInvalidTransition)

	s.ErrorIs(s.enroll(sess.ID, "a2"), schedule.ErrSessionClosed)
	_, err = orchestrators.ExecuteUnenrollAthlete(ctx, orchestrators.UnenrollAthleteInput{SessionID: sess.ID, AthleteID: "a1"}, s.sessions)
	s.ErrorIs(err, schedule.ErrSessionClosed)

	s.Equal([]string{"training:completed:ok", "training:cancelled:rejected"}, s.metrics.transitions)
}

func (s *SchedulingSuite) TestMarkAttendance() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 1)
	s.Require().NoError(s.enroll(sess.ID, "a1"))

	res, err := orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{SessionID: sess.ID, AthleteID: "a1", Status: "late"}, s.sessions)
	s.Require().NoError(err)
	s.False(res.Enrolled)
	s.Equal(lifecycle.AttendanceLate, res.Record.Status)

	_, err = orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{SessionID: sess.ID, AthleteID: "a1", Status: "asleep"}, s.sessions)
	s.ErrorIs(err, schedule.ErrInvalidTransition)

	_, err = orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{SessionID: sess.ID, AthleteID: "a2", Status: "present"}, s.sessions)
	s.ErrorIs(err, schedule.ErrCapacityExceeded)

	_, err = orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{SessionID: sess.ID, AthleteID: "nobody", Status: "present"}, s.sessions)
	s.ErrorIs(err, schedule.ErrNotFound)
}

func (s *SchedulingSuite) TestMarkAttendance_WalkInEnrolls() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 2)

	res, err := orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{SessionID: sess.ID, AthleteID: "a4", Status: "present"}, s.sessions)
	s.Require().NoError(err)
	s.True(res.Enrolled)
	s.Equal(lifecycle.AttendancePresent, res.Record.Status)
}

func (s *SchedulingSuite) TestEnroll_UnknownPersonAndSession() {
	sess := s.createSession("Tennis", "c1", 2)
	s.ErrorIs(s.enroll(sess.ID, "ghost"), schedule.ErrNotFound)
	s.ErrorIs(s.enroll("no-such-session", "a1"), schedule.ErrNotFound)
}

func (s *SchedulingSuite) TestDeleteSession() {
	ctx := context.Background()
	sess := s.createSession("Tennis", "c1", 2)
	s.Require().NoError(s.enroll(sess.ID, "a1"))

	s.Require().NoError(orchestrators.ExecuteDeleteTrainingSession(ctx, orchestrators.DeleteTrainingSessionInput{ID: sess.ID}, s.sessions))
	s.ErrorIs(orchestrators.ExecuteDeleteTrainingSession(ctx, orchestrators.DeleteTrainingSessionInput{ID: sess.ID}, s.sessions), schedule.ErrNotFound)
}

func (s *SchedulingSuite) createEvent(capacity int) event.Event {
	e, err := orchestrators.ExecuteCreateEvent(context.Background(), orchestrators.CreateEventInput{
		Title: "Season Launch", Type: "Social", Date: "2026-03-20", Time: "18:30", Location: "Clubhouse", Capacity: capacity,
	}, s.events)
	s.Require().NoError(err)
	return e
}

func (s *SchedulingSuite) register(eventID, personID string) error {
	_, err := orchestrators.ExecuteRegisterParticipant(context.Background(),
		orchestrators.RegisterParticipantInput{EventID: eventID, PersonID: personID}, s.events)
	return err
}

// TestEventCapacityReduction covers reducing capacity under live registrations.
func (s *SchedulingSuite) TestEventCapacityReduction() {
	ctx := context.Background()
	e := s.createEvent(50)
	for i := 1; i <= 12; i++ {
		s.Require().NoError(s.register(e.ID, fmt.Sprintf("a%d", i)))
	}

	ten, twelve := 10, 12
	_, err := orchestrators.ExecuteUpdateEvent(ctx, orchestrators.UpdateEventInput{ID: e.ID, Patch: event.Patch{Capacity: &ten}}, s.events)
	s.ErrorIs(err, schedule.ErrCapacityBelowEnrollment)

	updated, err := orchestrators.ExecuteUpdateEvent(ctx, orchestrators.UpdateEventInput{ID: e.ID, Patch: event.Patch{Capacity: &twelve}}, s.events)
	s.Require().NoError(err)
	s.Equal(12, updated.Capacity)

	s.ErrorIs(s.register(e.ID, "a13"), schedule.ErrCapacityExceeded)
}

func (s *SchedulingSuite) TestEventRegistration() {
	ctx := context.Background()
	e := s.createEvent(5)

	s.Require().NoError(s.register(e.ID, "c1"))
	s.ErrorIs(s.register(e.ID, "c1"), schedule.ErrDuplicateRegistration)
	s.ErrorIs(s.register(e.ID, "ghost"), schedule.ErrNotFound)

	in := orchestrators.UnregisterParticipantInput{EventID: e.ID, PersonID: "c1"}
	removed, err := orchestrators.ExecuteUnregisterParticipant(ctx, in, s.events)
	s.Require().NoError(err)
	s.True(removed)
	removed, err = orchestrators.ExecuteUnregisterParticipant(ctx, in, s.events)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *SchedulingSuite) TestEventLifecycle() {
	ctx := context.Background()
	e := s.createEvent(5)
	s.Require().NoError(s.register(e.ID, "a1"))

	change := func(status string) error {
		_, err := orchestrators.ExecuteChangeEventStatus(ctx, orchestrators.ChangeEventStatusInput{ID: e.ID, Status: status}, s.events)
		return err
	}
	s.ErrorIs(change("completed"), schedule.ErrInvalidTransition)
	s.ErrorIs(change("postponed"), schedule.ErrInvalidTransition)
	s.Require().NoError(change("ongoing"))
	s.Require().NoError(change("completed"))
	s.ErrorIs(change("cancelled"), schedule.ErrInvalidTransition)

	// The window runs to midnight after the event date, still ahead of the test clock.
	s.NoError(s.register(e.ID, "a2"))

	s.events.Now = func() time.Time { return time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC) }
	s.ErrorIs(s.register(e.ID, "a3"), schedule.ErrSessionClosed)
}

func (s *SchedulingSuite) TestCancelledEventKeepsParticipants() {
	ctx := context.Background()
	e := s.createEvent(5)
	s.Require().NoError(s.register(e.ID, "a1"))

	_, err := orchestrators.ExecuteChangeEventStatus(ctx, orchestrators.ChangeEventStatusInput{ID: e.ID, Status: "Cancelled"}, s.events)
	s.Require().NoError(err)
	s.ErrorIs(s.register(e.ID, "a2"), schedule.ErrSessionClosed)

	participants, err := s.events.Events.ListParticipants(ctx, e.ID)
	s.Require().NoError(err)
	s.Len(participants, 1)

	title := "Renamed"
	_, err = orchestrators.ExecuteUpdateEvent(ctx, orchestrators.UpdateEventInput{ID: e.ID, Patch: event.Patch{Title: &title}}, s.events)
	s.ErrorIs(err, schedule.ErrSessionClosed)
}

func (s *SchedulingSuite) TestCreateEvent_Validation() {
	_, err := orchestrators.ExecuteCreateEvent(context.Background(), orchestrators.CreateEventInput{
		Title: "Gala", Type: "rave", Date: "2026-03-20", Time: "18:30", Capacity: 5,
	}, s.events)
	s.ErrorIs(err, event.ErrInvalidType)

	_, err = orchestrators.ExecuteCreateEvent(context.Background(), orchestrators.CreateEventInput{
		Title: "", Type: "meeting", Date: "2026-03-20", Time: "18:30", Capacity: 5,
	}, s.events)
	s.ErrorIs(err, event.ErrEmptyTitle)
}
