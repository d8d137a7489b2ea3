package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/apperr"
	"rollcall/internal/auth"
)

// MaxSubjectLen bounds the free-text subject label.
const MaxSubjectLen = 100

// Session is a redeemable attendance unit. It is never mutated after
// creation; the only lifecycle transition is deletion by its creator.
type Session struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	ScheduledAt time.Time `json:"date"`
	Code        string    `json:"qrCodeData"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is the persistence surface the registry needs.
type Store interface {
	Insert(ctx context.Context, s Session) (Session, error)
	FindByCode(ctx context.Context, code string) (*Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]Session, error)
}

// Registry creates, resolves, and deletes sessions.
type Registry struct {
	store Store
}

// NewRegistry creates a registry backed by a store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Create validates the input, generates a fresh globally-unique redemption
// code, and persists the session. Codes are uuids backed by a UNIQUE column,
// so one is never reused.
func (r *Registry) Create(ctx context.Context, subject string, scheduledAt, expiresAt time.Time, createdBy string) (Session, error) {
	if subject == "" {
		return Session{}, apperr.Validation("subject is required")
	}
	if len(subject) > MaxSubjectLen {
		return Session{}, apperr.Validation("subject cannot be more than 100 characters")
	}
	if scheduledAt.IsZero() {
		return Session{}, apperr.Validation("date is required")
	}
	if expiresAt.IsZero() {
		return Session{}, apperr.Validation("expiresAt is required")
	}
	if !expiresAt.After(scheduledAt) {
		return Session{}, apperr.Validation("expiresAt must be after date")
	}

	s := Session{
		ID:          uuid.NewString(),
		Subject:     subject,
		ScheduledAt: scheduledAt,
		Code:        uuid.NewString(),
		ExpiresAt:   expiresAt,
		CreatedBy:   createdBy,
	}
	return r.store.Insert(ctx, s)
}

// FindByCode resolves a redemption code, or nil when unknown.
func (r *Registry) FindByCode(ctx context.Context, code string) (*Session, error) {
	return r.store.FindByCode(ctx, code)
}

// Get returns the session with the given id.
func (r *Registry) Get(ctx context.Context, id string) (Session, error) {
	s, err := r.store.FindByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s == nil {
		return Session{}, apperr.NotFound("session not found")
	}
	return *s, nil
}

// Delete removes a session. Only the creating admin may delete: non-admins
// are always refused, and so are admins who did not create it.
func (r *Registry) Delete(ctx context.Context, id string, requester auth.Identity) error {
	s, err := r.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return apperr.NotFound("session not found")
	}
	if !requester.IsAdmin() || s.CreatedBy != requester.ID {
		return apperr.Forbidden("not authorized to delete this session")
	}
	return r.store.Delete(ctx, id)
}

// ListAll returns every session, newest first.
func (r *Registry) ListAll(ctx context.Context) ([]Session, error) {
	return r.store.ListAll(ctx)
}
