package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
)

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db      storage.SQLDB
	dialect storage.Dialect
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a directory store for dialect.
func NewSQLStore(db storage.SQLDB, dialect storage.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// NewSQLiteStore creates a directory store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) *SQLStore {
	return NewSQLStore(db, storage.SQLite)
}

// GetPerson retrieves a person and their declared sports.
// PRE: id is non-empty
// POST: returns a NotFound rejection if no such person exists
func (s *SQLStore) GetPerson(ctx context.Context, id string) (person.Person, error) {
	var p person.Person
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind("SELECT id, name, role, team_id FROM person WHERE id = ?"), id,
	).Scan(&p.ID, &p.Name, &p.Role, &p.TeamID)
	if errors.Is(err, sql.ErrNoRows) {
		return person.Person{}, schedule.NotFound("person", id)
	}
	if err != nil {
		return person.Person{}, fmt.Errorf("get person: %w", err)
	}

	sports, err := s.sportsFor(ctx, []string{id})
	if err != nil {
		return person.Person{}, err
	}
	p.Sports = sports[id]
	return p, nil
}

// ListPeople lists people ordered by name, optionally restricted to one role.
func (s *SQLStore) ListPeople(ctx context.Context, filter ListFilter) ([]person.Person, error) {
	query := "SELECT id, name, role, team_id FROM person"
	var args []any
	if filter.Role != "" {
		query += " WHERE role = ?"
		args = append(args, string(filter.Role))
	}
	query += " ORDER BY name, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	return s.listPeople(ctx, query, args...)
}

// ListCoaches lists every person holding the coach role.
func (s *SQLStore) ListCoaches(ctx context.Context) ([]person.Person, error) {
	return s.ListPeople(ctx, ListFilter{Role: person.RoleCoach})
}

func (s *SQLStore) listPeople(ctx context.Context, query string, args ...any) ([]person.Person, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []person.Person
	var ids []string
	for rows.Next() {
		var p person.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.TeamID); err != nil {
			return nil, err
		}
		people = append(people, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return people, nil
	}

	sports, err := s.sportsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range people {
		people[i].Sports = sports[people[i].ID]
	}
	return people, nil
}

// sportsFor loads declared sports for ids in declared order.
func (s *SQLStore) sportsFor(ctx context.Context, ids []string) (map[string][]discipline.Key, error) {
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}
	query := "SELECT person_id, sport FROM person_sport WHERE person_id IN (" + string(placeholders) + ") ORDER BY person_id, position"

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]discipline.Key, len(ids))
	for rows.Next() {
		var id string
		var sport discipline.Key
		if err := rows.Scan(&id, &sport); err != nil {
			return nil, err
		}
		out[id] = append(out[id], sport)
	}
	return out, rows.Err()
}

// SavePerson upserts a person and replaces their sports.
// PRE: p has been validated
// POST: the stored sports equal p.Sports in order
func (s *SQLStore) SavePerson(ctx context.Context, p person.Person) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.dialect.Rebind(
			`INSERT INTO person (id, name, role, team_id) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, role = excluded.role, team_id = excluded.team_id`),
			p.ID, p.Name, string(p.Role), p.TeamID)
		if err != nil {
			return fmt.Errorf("save person: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind("DELETE FROM person_sport WHERE person_id = ?"), p.ID); err != nil {
			return fmt.Errorf("clear sports: %w", err)
		}
		for i, sport := range p.Sports {
			if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
				"INSERT INTO person_sport (person_id, sport, position) VALUES (?, ?, ?)"),
				p.ID, string(sport), i); err != nil {
				return fmt.Errorf("save sport: %w", err)
			}
		}
		return nil
	})
}

// GetTeam retrieves a team by ID.
func (s *SQLStore) GetTeam(ctx context.Context, id string) (person.Team, error) {
	var t person.Team
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind("SELECT id, name, discipline, coach_id FROM team WHERE id = ?"), id,
	).Scan(&t.ID, &t.Name, &t.Discipline, &t.CoachID)
	if errors.Is(err, sql.ErrNoRows) {
		return person.Team{}, schedule.NotFound("team", id)
	}
	if err != nil {
		return person.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// ListTeams lists every team ordered by name.
func (s *SQLStore) ListTeams(ctx context.Context) ([]person.Team, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, discipline, coach_id FROM team ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []person.Team
	for rows.Next() {
		var t person.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Discipline, &t.CoachID); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// SaveTeam upserts a team.
// PRE: t has been validated
func (s *SQLStore) SaveTeam(ctx context.Context, t person.Team) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO team (id, name, discipline, coach_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, discipline = excluded.discipline, coach_id = excluded.coach_id`),
		t.ID, t.Name, string(t.Discipline), t.CoachID)
	if err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}
