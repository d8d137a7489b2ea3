package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/session"
)

// Redemption errors, all surfaced to clients as bad requests with distinct
// messages. None are retried server-side; client retries are safe because the
// write is idempotent.
var (
	ErrInvalidCode    = errors.New("invalid code: session not found")
	ErrSessionExpired = errors.New("session has expired")
	ErrAlreadyMarked  = errors.New("attendance already marked for this session")
)

// Record is one attendance mark. Created exactly once per (student, session)
// and immutable thereafter.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	SessionID string    `json:"sessionId"`
	MarkedAt  time.Time `json:"timestamp"`
}

// RecordDetail is a record joined with its student and session labels.
type RecordDetail struct {
	Record
	StudentName  string    `json:"studentName"`
	StudentEmail string    `json:"studentEmail"`
	Subject      string    `json:"subject"`
	ScheduledAt  time.Time `json:"date"`
}

// SessionResolver resolves a redemption code to its session.
type SessionResolver interface {
	FindByCode(ctx context.Context, code string) (*session.Session, error)
}

// Store is the persistence surface the engine needs. Insert must enforce the
// (student, session) uniqueness atomically and return ErrAlreadyMarked on the
// duplicate branch.
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context, sessionID, studentID string) ([]RecordDetail, error)
}

// Engine validates presented codes and performs the at-most-once attendance
// write.
type Engine struct {
	sessions SessionResolver
	store    Store
	now      func() time.Time
}

// NewEngine creates an engine. The clock is the server's; client-supplied
// times are never consulted.
func NewEngine(sessions SessionResolver, store Store) *Engine {
	return &Engine{sessions: sessions, store: store, now: time.Now}
}

// Redeem converts a valid, unexpired code plus an authenticated student id
// into exactly one attendance record. Each step short-circuits to its error:
// unknown code, expired session, or an existing record for the pair.
func (e *Engine) Redeem(ctx context.Context, studentID, code string) (Record, error) {
	s, err := e.sessions.FindByCode(ctx, code)
	if err != nil {
		return Record{}, err
	}
	if s == nil {
		return Record{}, ErrInvalidCode
	}

	now := e.now().UTC()
	if now.After(s.ExpiresAt) {
		return Record{}, fmt.Errorf("%w at %s, current time %s",
			ErrSessionExpired, s.ExpiresAt.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	rec := Record{
		ID:        uuid.NewString(),
		StudentID: studentID,
		SessionID: s.ID,
		MarkedAt:  now,
	}
	return e.store.Insert(ctx, rec)
}

// List returns records matching the filters.
func (e *Engine) List(ctx context.Context, sessionID, studentID string) ([]RecordDetail, error) {
	return e.store.List(ctx, sessionID, studentID)
}
