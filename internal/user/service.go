package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/apperr"
	"rollcall/internal/auth"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	ListStudents(ctx context.Context) ([]User, error)
}

// Service handles registration, login, and lookups.
type Service struct {
	store  Store
	hasher *auth.Hasher
}

// NewService creates a service backed by a store.
func NewService(store Store, hasher *auth.Hasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// Register creates a new account. The role defaults to student and only the
// known roles are accepted.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (User, error) {
	if role == "" {
		role = auth.RoleStudent
	}
	if role != auth.RoleStudent && role != auth.RoleAdmin {
		return User{}, apperr.Validation("role must be student or admin")
	}
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	return s.store.Insert(ctx, u)
}

// Login checks credentials and returns the account. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	if err := s.hasher.VerifyPassword(password, u.PasswordHash); err != nil {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	return *u, nil
}

// GetByID returns the account with the given id.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, apperr.NotFound("student not found")
	}
	return *u, nil
}

// ListStudents returns all non-admin accounts.
func (s *Service) ListStudents(ctx context.Context) ([]User, error) {
	return s.store.ListStudents(ctx)
}
