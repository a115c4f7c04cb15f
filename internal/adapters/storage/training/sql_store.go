package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/schedule"
	domain "clubhouse/internal/domain/training"
)

const sessionColumns = "id, discipline, coach_id, location, session_date, session_time, duration_minutes, max_capacity, status, created_at, updated_at"

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db      storage.SQLDB
	dialect storage.Dialect
	retry   storage.RetryPolicy
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a training store for dialect using retry for contended writes.
func NewSQLStore(db storage.SQLDB, dialect storage.Dialect, retry storage.RetryPolicy) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, retry: retry}
}

// NewSQLiteStore creates a training store backed by SQLite with the default retry policy.
func NewSQLiteStore(db storage.SQLDB) *SQLStore {
	return NewSQLStore(db, storage.SQLite, storage.DefaultRetryPolicy)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var s domain.Session
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.Discipline, &s.CoachID, &s.Location, &s.Date, &s.Time,
		&s.DurationMinutes, &s.MaxCapacity, &s.Status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Session{}, err
	}
	if s.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if s.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return s, nil
}

// Create inserts a new session.
// PRE: s has been validated
func (s *SQLStore) Create(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		"INSERT INTO training_session ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		sess.ID, string(sess.Discipline), sess.CoachID, sess.Location, sess.Date, sess.Time,
		sess.DurationMinutes, sess.MaxCapacity, string(sess.Status),
		storage.FormatTime(sess.CreatedAt), storage.FormatTime(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID.
// POST: returns a NotFound rejection if no such session exists
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind("SELECT "+sessionColumns+" FROM training_session WHERE id = ?"), id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, schedule.NotFound("session", id)
	}
	return sess, err
}

// List returns sessions matching filter ordered by date and time.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	var where []string
	var args []any
	if filter.Discipline != "" {
		where = append(where, "discipline = ?")
		args = append(args, filter.Discipline)
	}
	if filter.CoachID != "" {
		where = append(where, "coach_id = ?")
		args = append(args, filter.CoachID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.FromDate != "" {
		where = append(where, "session_date >= ?")
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		where = append(where, "session_date <= ?")
		args = append(args, filter.ToDate)
	}

	query := "SELECT " + sessionColumns + " FROM training_session"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY session_date, session_time, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// lockSession reads a session inside tx, holding its row lock until tx ends.
func (s *SQLStore) lockSession(ctx context.Context, tx *sql.Tx, id string) (domain.Session, error) {
	row := tx.QueryRowContext(ctx, s.dialect.Rebind("SELECT "+sessionColumns+" FROM training_session WHERE id = ?"+s.dialect.ForUpdate()), id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, schedule.NotFound("session", id)
	}
	return sess, err
}

func (s *SQLStore) countRecords(ctx context.Context, tx *sql.Tx, sessionID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, s.dialect.Rebind("SELECT COUNT(*) FROM attendance_record WHERE session_id = ?"), sessionID).Scan(&n)
	return n, err
}

// findRecord returns the athlete's record for the session, or ok=false.
func (s *SQLStore) findRecord(ctx context.Context, tx *sql.Tx, sessionID, athleteID string) (domain.AttendanceRecord, bool, error) {
	var rec domain.AttendanceRecord
	var updatedAt string
	err := tx.QueryRowContext(ctx, s.dialect.Rebind(
		"SELECT id, session_id, athlete_id, status, updated_at FROM attendance_record WHERE session_id = ? AND athlete_id = ?"),
		sessionID, athleteID).Scan(&rec.ID, &rec.SessionID, &rec.AthleteID, &rec.Status, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AttendanceRecord{}, false, nil
	}
	if err != nil {
		return domain.AttendanceRecord{}, false, err
	}
	rec.UpdatedAt, err = storage.ParseTime(updatedAt)
	return rec, true, err
}

// Update applies mutate to the session under its row lock.
// PRE: mutate validates the result and checks capacity against enrolled
// POST: the write succeeds only if the stored status still equals the status mutate saw
func (s *SQLStore) Update(ctx context.Context, id string, mutate MutateFunc) (domain.Session, error) {
	var next domain.Session
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			current, err := s.lockSession(ctx, tx, id)
			if err != nil {
				return err
			}
			enrolled, err := s.countRecords(ctx, tx, id)
			if err != nil {
				return err
			}
			next, err = mutate(current, enrolled)
			if err != nil {
				return err
			}
			next.ID = current.ID
			next.CreatedAt = current.CreatedAt

			res, err := tx.ExecContext(ctx, s.dialect.Rebind(
				`UPDATE training_session SET discipline = ?, coach_id = ?, location = ?, session_date = ?, session_time = ?,
				duration_minutes = ?, max_capacity = ?, status = ?, updated_at = ?
				WHERE id = ? AND status = ?`),
				string(next.Discipline), next.CoachID, next.Location, next.Date, next.Time,
				next.DurationMinutes, next.MaxCapacity, string(next.Status), storage.FormatTime(next.UpdatedAt),
				id, string(current.Status))
			if err != nil {
				return fmt.Errorf("update session: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return schedule.Reject(schedule.KindInvalidTransition, "session %s changed status concurrently", id)
			}
			return nil
		})
	})
	if err != nil {
		return domain.Session{}, err
	}
	return next, nil
}

// Delete removes a session and, by cascade, its attendance records.
// POST: returns a NotFound rejection if no such session exists
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind("DELETE FROM training_session WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.NotFound("session", id)
	}
	return nil
}

// admit runs the capacity gate against sess inside tx.
func (s *SQLStore) admit(ctx context.Context, tx *sql.Tx, sess domain.Session, open OpenFunc, existing bool) error {
	count, err := s.countRecords(ctx, tx, sess.ID)
	if err != nil {
		return err
	}
	var openErr error
	if open != nil {
		openErr = open(sess)
	}
	return capacity.Admit(capacity.Snapshot{
		ActivityID: "session " + sess.ID,
		Open:       openErr,
		Enrolled:   existing,
		Count:      count,
		Capacity:   sess.MaxCapacity,
	})
}

func (s *SQLStore) insertRecord(ctx context.Context, tx *sql.Tx, rec domain.AttendanceRecord) error {
	_, err := tx.ExecContext(ctx, s.dialect.Rebind(
		"INSERT INTO attendance_record (id, session_id, athlete_id, status, updated_at) VALUES (?, ?, ?, ?, ?)"),
		rec.ID, rec.SessionID, rec.AthleteID, string(rec.Status), storage.FormatTime(rec.UpdatedAt))
	if storage.IsUniqueViolation(err) {
		return schedule.Reject(schedule.KindDuplicateRegistration, "athlete %s already enrolled in session %s", rec.AthleteID, rec.SessionID)
	}
	return err
}

// Enroll inserts rec if the session is open, the athlete holds no record and a place is free.
// PRE: rec has been validated
// POST: live records never exceed the session's MaxCapacity
func (s *SQLStore) Enroll(ctx context.Context, rec domain.AttendanceRecord, open OpenFunc) error {
	return s.retry.Do(ctx, func(ctx context.Context) error {
		return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			sess, err := s.lockSession(ctx, tx, rec.SessionID)
			if err != nil {
				return err
			}
			_, exists, err := s.findRecord(ctx, tx, rec.SessionID, rec.AthleteID)
			if err != nil {
				return err
			}
			if err := s.admit(ctx, tx, sess, open, exists); err != nil {
				return err
			}
			return s.insertRecord(ctx, tx, rec)
		})
	})
}

// Unenroll deletes the athlete's record if present. open, when non-nil, is checked
// against the locked session first.
// POST: removed reports whether a record existed
func (s *SQLStore) Unenroll(ctx context.Context, sessionID, athleteID string, open OpenFunc) (bool, error) {
	var removed bool
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			sess, err := s.lockSession(ctx, tx, sessionID)
			if err != nil {
				return err
			}
			if open != nil {
				if err := open(sess); err != nil {
					return err
				}
			}
			res, err := tx.ExecContext(ctx, s.dialect.Rebind(
				"DELETE FROM attendance_record WHERE session_id = ? AND athlete_id = ?"), sessionID, athleteID)
			if err != nil {
				return fmt.Errorf("unenroll: %w", err)
			}
			n, _ := res.RowsAffected()
			removed = n > 0
			return nil
		})
	})
	return removed, err
}

// MarkAttendance sets rec.Status on the athlete's record. If the athlete holds no record,
// rec is inserted through the capacity gate.
// PRE: open rejects closed sessions; rec.ID is used only when a record is created
// POST: created reports whether a new record was inserted
func (s *SQLStore) MarkAttendance(ctx context.Context, rec domain.AttendanceRecord, open OpenFunc) (domain.AttendanceRecord, bool, error) {
	var out domain.AttendanceRecord
	var created bool
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		created = false
		return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			sess, err := s.lockSession(ctx, tx, rec.SessionID)
			if err != nil {
				return err
			}
			if open != nil {
				if err := open(sess); err != nil {
					return err
				}
			}
			existing, ok, err := s.findRecord(ctx, tx, rec.SessionID, rec.AthleteID)
			if err != nil {
				return err
			}
			if ok {
				existing.Status = rec.Status
				existing.UpdatedAt = rec.UpdatedAt
				if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
					"UPDATE attendance_record SET status = ?, updated_at = ? WHERE id = ?"),
					string(existing.Status), storage.FormatTime(existing.UpdatedAt), existing.ID); err != nil {
					return fmt.Errorf("mark attendance: %w", err)
				}
				out = existing
				return nil
			}
			if err := s.admit(ctx, tx, sess, nil, false); err != nil {
				return err
			}
			if err := s.insertRecord(ctx, tx, rec); err != nil {
				return err
			}
			out, created = rec, true
			return nil
		})
	})
	if err != nil {
		return domain.AttendanceRecord{}, false, err
	}
	return out, created, nil
}

// ListRecords returns a session's attendance records ordered by athlete.
func (s *SQLStore) ListRecords(ctx context.Context, sessionID string) ([]domain.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		"SELECT id, session_id, athlete_id, status, updated_at FROM attendance_record WHERE session_id = ? ORDER BY athlete_id"), sessionID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		var updatedAt string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.AthleteID, &rec.Status, &updatedAt); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountEnrolled returns the live record count per session. Sessions without records are absent.
func (s *SQLStore) CountEnrolled(ctx context.Context, sessionIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	query := "SELECT session_id, COUNT(*) FROM attendance_record WHERE session_id IN (?" +
		strings.Repeat(", ?", len(sessionIDs)-1) + ") GROUP BY session_id"

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("count enrolled: %w", err)
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
