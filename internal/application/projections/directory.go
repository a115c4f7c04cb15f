package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"clubhouse/internal/adapters/storage/directory"
	"clubhouse/internal/domain/eligibility"
	"clubhouse/internal/domain/person"
)

// ErrInvalidFilter is returned when a list query carries an unusable filter value.
var ErrInvalidFilter = errors.New("invalid filter")

// loadResolver reads coaches and teams concurrently and builds a resolver over them.
func loadResolver(ctx context.Context, dir DirectoryStore) (*eligibility.Resolver, error) {
	var (
		coaches []person.Person
		teams   []person.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coaches, err = dir.ListCoaches(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = dir.ListTeams(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}
	return eligibility.NewResolver(coaches, teams), nil
}

// peopleByID indexes the whole directory for name lookups.
func peopleByID(ctx context.Context, dir DirectoryStore) (map[string]person.Person, error) {
	people, err := dir.ListPeople(ctx, directory.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	out := make(map[string]person.Person, len(people))
	for _, p := range people {
		out[p.ID] = p
	}
	return out, nil
}

func checkDate(field, v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidFilter, field)
	}
	return nil
}
