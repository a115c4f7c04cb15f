package orchestrators

//go:generate mockgen -source=scheduling_deps.go -destination=mocks/directory.go -package=mocks DirectoryReader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	eventStore "clubhouse/internal/adapters/storage/event"
	trainingStore "clubhouse/internal/adapters/storage/training"
	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/eligibility"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
	"clubhouse/internal/metrics"
)

// Activity labels used in logs and metrics.
const (
	activityTraining = "training"
	activityEvent    = "event"
)

// DirectoryReader is the read-only view of the club directory the scheduling core needs.
type DirectoryReader interface {
	GetPerson(ctx context.Context, id string) (person.Person, error)
	ListCoaches(ctx context.Context) ([]person.Person, error)
	ListTeams(ctx context.Context) ([]person.Team, error)
}

// Clock and identity hooks shared by every scheduling Deps. Zero values fall back to
// time.Now, uuid.NewString and UTC.
type runtimeDeps struct {
	Logger     *zap.Logger
	Metrics    metrics.Recorder
	GenerateID func() string
	Now        func() time.Time
	Location   *time.Location
}

func (d runtimeDeps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d runtimeDeps) metrics() metrics.Recorder {
	if d.Metrics == nil {
		return metrics.Nop{}
	}
	return d.Metrics
}

func (d runtimeDeps) newID() string {
	if d.GenerateID == nil {
		return uuid.NewString()
	}
	return d.GenerateID()
}

func (d runtimeDeps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now()
}

func (d runtimeDeps) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

// SessionDeps holds dependencies for the training session orchestrators.
type SessionDeps struct {
	Directory DirectoryReader
	Sessions  trainingStore.Store
	Logger    *zap.Logger
	Metrics   metrics.Recorder
	// GenerateID and Now are injectable for deterministic tests.
	GenerateID func() string
	Now        func() time.Time
	Location   *time.Location
}

func (d SessionDeps) runtime() runtimeDeps {
	return runtimeDeps{Logger: d.Logger, Metrics: d.Metrics, GenerateID: d.GenerateID, Now: d.Now, Location: d.Location}
}

// EventDeps holds dependencies for the event orchestrators.
type EventDeps struct {
	Directory  DirectoryReader
	Events     eventStore.Store
	Logger     *zap.Logger
	Metrics    metrics.Recorder
	GenerateID func() string
	Now        func() time.Time
	Location   *time.Location
}

func (d EventDeps) runtime() runtimeDeps {
	return runtimeDeps{Logger: d.Logger, Metrics: d.Metrics, GenerateID: d.GenerateID, Now: d.Now, Location: d.Location}
}

// LoadResolver snapshots the directory into an eligibility resolver.
func LoadResolver(ctx context.Context, dir DirectoryReader) (*eligibility.Resolver, error) {
	coaches, err := dir.ListCoaches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	teams, err := dir.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return eligibility.NewResolver(coaches, teams), nil
}

// checkCoach applies the creation rule for a coach assignment.
// POST: NoEligibleCoach only when nobody qualifies and no coach was supplied;
// IneligibleCoach for every other coach outside the eligible set
func checkCoach(r *eligibility.Resolver, k discipline.Key, coachID string, opts ...eligibility.Option) error {
	if coachID == "" {
		if len(r.EligibleCoaches(k, opts...)) == 0 {
			return schedule.Reject(schedule.KindNoEligibleCoach, "no coach can run %s", k.Display())
		}
		return schedule.Reject(schedule.KindIneligibleCoach, "a coach is required for %s", k.Display())
	}
	if !r.IsEligible(k, coachID, opts...) {
		return schedule.Reject(schedule.KindIneligibleCoach, "coach %s is not eligible for %s", coachID, k.Display())
	}
	return nil
}

// outcome labels err for metrics.
func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	if _, ok := schedule.KindOf(err); ok {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}

// logRejection logs err at info when it is an expected rejection and at error otherwise.
func logRejection(log *zap.Logger, event string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("event", event), zap.Error(err))
	if kind, ok := schedule.KindOf(err); ok {
		log.Info("scheduling rejected", append(fields, zap.String("kind", string(kind)))...)
		return
	}
	log.Error("scheduling failed", fields...)
}
