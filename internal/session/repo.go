package session

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists sessions in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new session.
func (r *Repository) Insert(ctx context.Context, s Session) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (id, subject, scheduled_at, code, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.Subject, s.ScheduledAt, s.Code, s.ExpiresAt, s.CreatedBy)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// FindByCode resolves a redemption code to its session, or nil.
func (r *Repository) FindByCode(ctx context.Context, code string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, subject, scheduled_at, code, expires_at, created_by, created_at
		FROM sessions WHERE code = $1
	`, code)
	return scanSession(row)
}

// FindByID returns the session with the given id, or nil.
func (r *Repository) FindByID(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, subject, scheduled_at, code, expires_at, created_by, created_at
		FROM sessions WHERE id = $1
	`, id)
	return scanSession(row)
}

// Delete removes a session. Attendance records referencing it are left in
// place and filtered out of listings.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// ListAll returns every session, newest first. Expired sessions stay listed;
// expiry is enforced at redemption time only.
func (r *Repository) ListAll(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject, scheduled_at, code, expires_at, created_by, created_at
		FROM sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Subject, &s.ScheduledAt, &s.Code, &s.ExpiresAt, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	if err := row.Scan(&s.ID, &s.Subject, &s.ScheduledAt, &s.Code, &s.ExpiresAt, &s.CreatedBy, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
