package attendance

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a record. The (student_id, session_id) UNIQUE constraint is
// what makes redemption idempotent: when the pair already exists, the insert
// is a no-op and ErrAlreadyMarked is returned. Two racing requests for the
// same pair resolve entirely inside Postgres; exactly one sees the row come
// back.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, student_id, session_id, marked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, session_id) DO NOTHING
		RETURNING marked_at
	`, rec.ID, rec.StudentID, rec.SessionID, rec.MarkedAt)
	if err := row.Scan(&rec.MarkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrAlreadyMarked
		}
		return Record{}, err
	}
	return rec, nil
}

// List returns records matching the optional session and student filters,
// enriched with student and session labels. The join drops records whose
// session was deleted.
func (r *Repository) List(ctx context.Context, sessionID, studentID string) ([]RecordDetail, error) {
	query := `
		SELECT a.id, a.student_id, a.session_id, a.marked_at,
		       u.name, u.email, s.subject, s.scheduled_at
		FROM attendance_records a
		JOIN users u ON u.id = a.student_id
		JOIN sessions s ON s.id = a.session_id
	`
	args := []any{}
	clauses := []string{}
	if sessionID != "" {
		args = append(args, sessionID)
		clauses = append(clauses, "a.session_id = $1")
	}
	if studentID != "" {
		args = append(args, studentID)
		if len(args) == 1 {
			clauses = append(clauses, "a.student_id = $1")
		} else {
			clauses = append(clauses, "a.student_id = $2")
		}
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY a.marked_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []RecordDetail
	for rows.Next() {
		var d RecordDetail
		if err := rows.Scan(&d.ID, &d.StudentID, &d.SessionID, &d.MarkedAt,
			&d.StudentName, &d.StudentEmail, &d.Subject, &d.ScheduledAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
