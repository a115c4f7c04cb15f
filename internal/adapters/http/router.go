package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/adapters/storage/directory"
	eventStore "clubhouse/internal/adapters/storage/event"
	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/metrics"
)

// Deps holds everything the router needs. Zero values fall back to no-op logging,
// no-op metrics and UTC.
type Deps struct {
	Directory directory.Store
	Sessions  trainingStore.Store
	Events    eventStore.Store

	Logger      *zap.Logger
	Metrics     metrics.Recorder
	Gatherer    prometheus.Gatherer
	ReportError middleware.ErrorReporter
	Ping        func(ctx context.Context) error

	Location   *time.Location
	Now        func() time.Time
	GenerateID func() string

	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	RateLimiter    *middleware.RateLimiter
	SlowRequest    time.Duration
}

// server carries Deps into the handlers.
type server struct {
	Deps
	log *zap.Logger
}

// Role sets for the actor guard.
var (
	anyRole       = person.ValidRoles
	schedulers    = []person.Role{person.RoleManager, person.RoleAdmin}
	attendanceOps = []person.Role{person.RoleManager, person.RoleAdmin, person.RoleCoach}
)

// NewRouter wires HTTP handlers for the scheduling service.
// Middleware order: Recover -> Timing -> SecurityHeaders -> RateLimit -> CSRF -> actor guard -> handler.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	s := &server{Deps: deps, log: deps.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recover(s.log, deps.ReportError))
	r.Use(middleware.Timing(s.log, deps.Metrics, deps.SlowRequest))
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", s.handleHealthz)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(middleware.RateLimit(deps.RateLimiter))
		}
		if len(deps.CSRFKey) > 0 {
			r.Use(middleware.CSRF(deps.CSRFKey, deps.SecureCookies, deps.TrustedOrigins))
		}
		lookup := middleware.ActorLookup(deps.Directory.GetPerson)

		r.With(middleware.RequireRole(lookup, anyRole...)).Group(func(r chi.Router) {
			r.Get("/disciplines", s.handleAvailableDisciplines)
			r.Get("/disciplines/{discipline}/coaches", s.handleEligibleCoaches)
			r.Get("/sessions", s.handleListSessions)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Get("/events", s.handleListEvents)
			r.Get("/events/{id}", s.handleGetEvent)
		})

		r.With(middleware.RequireRole(lookup, attendanceOps...)).Group(func(r chi.Router) {
			r.Put("/sessions/{id}/attendance/{athleteID}", s.handleMarkAttendance)
			r.Get("/sessions/{id}/roster.xlsx", s.handleExportRoster)
		})

		r.With(middleware.RequireRole(lookup, schedulers...)).Group(func(r chi.Router) {
			r.Post("/sessions", s.handleCreateSession)
			r.Patch("/sessions/{id}", s.handleUpdateSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Post("/sessions/{id}/status", s.handleChangeSessionStatus)
			r.Post("/sessions/{id}/enrollments", s.handleEnrollAthlete)
			r.Delete("/sessions/{id}/enrollments/{athleteID}", s.handleUnenrollAthlete)

			r.Post("/events", s.handleCreateEvent)
			r.Patch("/events/{id}", s.handleUpdateEvent)
			r.Delete("/events/{id}", s.handleDeleteEvent)
			r.Post("/events/{id}/status", s.handleChangeEventStatus)
			r.Post("/events/{id}/participants", s.handleRegisterParticipant)
			r.Delete("/events/{id}/participants/{personID}", s.handleUnregisterParticipant)
		})
	})
	return r
}

func (s *server) sessionDeps() orchestrators.SessionDeps {
	return orchestrators.SessionDeps{
		Directory:  s.Directory,
		Sessions:   s.Sessions,
		Logger:     s.log,
		Metrics:    s.Metrics,
		GenerateID: s.GenerateID,
		Now:        s.Now,
		Location:   s.Location,
	}
}

func (s *server) eventDeps() orchestrators.EventDeps {
	return orchestrators.EventDeps{
		Directory:  s.Directory,
		Events:     s.Events,
		Logger:     s.log,
		Metrics:    s.Metrics,
		GenerateID: s.GenerateID,
		Now:        s.Now,
		Location:   s.Location,
	}
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.Ping != nil {
		if err := s.Ping(r.Context()); err != nil {
			s.log.Warn("health check failed", zap.String("event", "healthz_failed"), zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
