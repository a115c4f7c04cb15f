package projections

import (
	"context"

	"clubhouse/internal/domain/discipline"
)

// DisciplineOption is one discipline a scheduler may select.
type DisciplineOption struct {
	Key     discipline.Key
	Display string
}

// GetAvailableDisciplinesResult carries the query result.
type GetAvailableDisciplinesResult struct {
	Disciplines []DisciplineOption
}

// GetAvailableDisciplinesDeps holds dependencies for GetAvailableDisciplines.
type GetAvailableDisciplinesDeps struct {
	Directory DirectoryStore
}

// QueryGetAvailableDisciplines lists every discipline that currently has an eligible coach.
// POST: Disciplines is sorted by key and holds no duplicates
func QueryGetAvailableDisciplines(ctx context.Context, deps GetAvailableDisciplinesDeps) (GetAvailableDisciplinesResult, error) {
	resolver, err := loadResolver(ctx, deps.Directory)
	if err != nil {
		return GetAvailableDisciplinesResult{}, err
	}
	keys := resolver.DerivedDisciplines().Sorted()
	out := make([]DisciplineOption, 0, len(keys))
	for _, k := range keys {
		out = append(out, DisciplineOption{Key: k, Display: k.Display()})
	}
	return GetAvailableDisciplinesResult{Disciplines: out}, nil
}
