package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/capacity"
	domain "clubhouse/internal/domain/event"
	"clubhouse/internal/domain/schedule"
)

const eventColumns = "id, title, event_type, description, event_date, event_time, location, capacity, status, created_at, updated_at"

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db      storage.SQLDB
	dialect storage.Dialect
	retry   storage.RetryPolicy
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates an event store for dialect using retry for contended writes.
func NewSQLStore(db storage.SQLDB, dialect storage.Dialect, retry storage.RetryPolicy) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, retry: retry}
}

// NewSQLiteStore creates an event store backed by SQLite with the default retry policy.
func NewSQLiteStore(db storage.SQLDB) *SQLStore {
	return NewSQLStore(db, storage.SQLite, storage.DefaultRetryPolicy)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Title, &e.Type, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Capacity, &e.Status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Event{}, err
	}
	if e.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if e.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return e, nil
}

// Create inserts a new event.
// PRE: e has been validated
func (s *SQLStore) Create(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		"INSERT INTO club_event ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		e.ID, e.Title, e.Type, e.Description, e.Date, e.Time, e.Location, e.Capacity, string(e.Status),
		storage.FormatTime(e.CreatedAt), storage.FormatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its ID.
// POST: returns a NotFound rejection if no such event exists
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, s.dialect.Rebind("SELECT "+eventColumns+" FROM club_event WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, schedule.NotFound("event", id)
	}
	return e, err
}

// List returns events matching filter ordered by date and time.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Event, error) {
	var where []string
	var args []any
	if filter.Type != "" {
		where = append(where, "event_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.FromDate != "" {
		where = append(where, "event_date >= ?")
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		where = append(where, "event_date <= ?")
		args = append(args, filter.ToDate)
	}

	query := "SELECT " + eventColumns + " FROM club_event"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_date, event_time, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) lockEvent(ctx context.Context, tx *sql.Tx, id string) (domain.Event, error) {
	e, err := scanEvent(tx.QueryRowContext(ctx, s.dialect.Rebind("SELECT "+eventColumns+" FROM club_event WHERE id = ?"+s.dialect.ForUpdate()), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, schedule.NotFound("event", id)
	}
	return e, err
}

func (s *SQLStore) countParticipants(ctx context.Context, tx *sql.Tx, eventID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, s.dialect.Rebind("SELECT COUNT(*) FROM event_participant WHERE event_id = ?"), eventID).Scan(&n)
	return n, err
}

// Update applies mutate to the event under its row lock.
// PRE: mutate validates the result and checks capacity against registered
// POST: the write succeeds only if the stored status still equals the status mutate saw
func (s *SQLStore) Update(ctx context.Context, id string, mutate MutateFunc) (domain.Event, error) {
	var next domain.Event
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			current, err := s.lockEvent(ctx, tx, id)
			if err != nil {
				return err
			}
			registered, err := s.countParticipants(ctx, tx, id)
			if err != nil {
				return err
			}
			next, err = mutate(current, registered)
			if err != nil {
				return err
			}
			next.ID = current.ID
			next.CreatedAt = current.CreatedAt

			res, err := tx.ExecContext(ctx, s.dialect.Rebind(
				`UPDATE club_event SET title = ?, event_type = ?, description = ?, event_date = ?, event_time = ?,
				location = ?, capacity = ?, status = ?, updated_at = ?
				WHERE id = ? AND status = ?`),
				next.Title, next.Type, next.Description, next.Date, next.Time,
				next.Location, next.Capacity, string(next.Status), storage.FormatTime(next.UpdatedAt),
				id, string(current.Status))
			if err != nil {
				return fmt.Errorf("update event: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return schedule.Reject(schedule.KindInvalidTransition, "event %s changed status concurrently", id)
			}
			return nil
		})
	})
	if err != nil {
		return domain.Event{}, err
	}
	return next, nil
}

// Delete removes an event and, by cascade, its participant records.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind("DELETE FROM club_event WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.NotFound("event", id)
	}
	return nil
}

// Register inserts rec if the event is open, the person is not yet registered and a place is free.
// PRE: rec has been validated
// POST: live participant records never exceed the event's Capacity
func (s *SQLStore) Register(ctx context.Context, rec domain.ParticipantRecord, open OpenFunc) error {
	return s.retry.Do(ctx, func(ctx context.Context) error {
		return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			e, err := s.lockEvent(ctx, tx, rec.EventID)
			if err != nil {
				return err
			}
			var exists int
			if err := tx.QueryRowContext(ctx, s.dialect.Rebind(
				"SELECT COUNT(*) FROM event_participant WHERE event_id = ? AND person_id = ?"),
				rec.EventID, rec.PersonID).Scan(&exists); err != nil {
				return err
			}
			count, err := s.countParticipants(ctx, tx, rec.EventID)
			if err != nil {
				return err
			}
			var openErr error
			if open != nil {
				openErr = open(e)
			}
			if err := capacity.Admit(capacity.Snapshot{
				ActivityID: "event " + e.ID,
				Open:       openErr,
				Enrolled:   exists > 0,
				Count:      count,
				Capacity:   e.Capacity,
			}); err != nil {
				return err
			}

			_, err = tx.ExecContext(ctx, s.dialect.Rebind(
				"INSERT INTO event_participant (id, event_id, person_id, registered_at) VALUES (?, ?, ?, ?)"),
				rec.ID, rec.EventID, rec.PersonID, storage.FormatTime(rec.RegisteredAt))
			if storage.IsUniqueViolation(err) {
				return schedule.Reject(schedule.KindDuplicateRegistration, "%s already registered for event %s", rec.PersonID, rec.EventID)
			}
			return err
		})
	})
}

// Unregister deletes the person's participant record if present.
// POST: removed reports whether a record existed
func (s *SQLStore) Unregister(ctx context.Context, eventID, personID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		"DELETE FROM event_participant WHERE event_id = ? AND person_id = ?"), eventID, personID)
	if err != nil {
		return false, fmt.Errorf("unregister: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListParticipants returns an event's participants in registration order.
func (s *SQLStore) ListParticipants(ctx context.Context, eventID string) ([]domain.ParticipantRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		"SELECT id, event_id, person_id, registered_at FROM event_participant WHERE event_id = ? ORDER BY registered_at, person_id"), eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []domain.ParticipantRecord
	for rows.Next() {
		var rec domain.ParticipantRecord
		var registeredAt string
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.PersonID, &registeredAt); err != nil {
			return nil, err
		}
		if rec.RegisteredAt, err = storage.ParseTime(registeredAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountRegistered returns the live participant count per event. Events without participants are absent.
func (s *SQLStore) CountRegistered(ctx context.Context, eventIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}
	query := "SELECT event_id, COUNT(*) FROM event_participant WHERE event_id IN (?" +
		strings.Repeat(", ?", len(eventIDs)-1) + ") GROUP BY event_id"

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("count registered: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
