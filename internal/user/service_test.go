package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/apperr"
	"rollcall/internal/auth"
)

// memStore mimics the users table with its UNIQUE email constraint.
type memStore struct {
	mu    sync.Mutex
	users map[string]User // keyed by id
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]User)}
}

func (m *memStore) Insert(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return User{}, apperr.Conflict("email already registered")
		}
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *memStore) ListStudents(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if u.Role != auth.RoleAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, auth.NewHasher(4)), store
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStudent, u.Role)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "secret1", u.PasswordHash, "password must be stored hashed")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1", "superuser")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other Ana", "ana@example.com", "secret2", "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	registered, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1", auth.RoleAdmin)
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Login(context.Background(), "ana@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "unknown email must look like a bad password")
}

func TestListStudentsExcludesAdmins(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1", auth.RoleAdmin)
	require.NoError(t, err)
	student, err := svc.Register(context.Background(), "Ben", "ben@example.com", "secret1", "")
	require.NoError(t, err)

	students, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, student.ID, students[0].ID)
}
