package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/session"
)

type fakeResolver struct {
	sessions map[string]*session.Session
}

func (f *fakeResolver) FindByCode(_ context.Context, code string) (*session.Session, error) {
	return f.sessions[code], nil
}

// memStore mimics the attendance table with its (student_id, session_id)
// UNIQUE constraint, the way Postgres resolves racing inserts.
type memStore struct {
	mu      sync.Mutex
	records map[[2]string]Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[[2]string]Record)}
}

func (m *memStore) Insert(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{rec.StudentID, rec.SessionID}
	if _, exists := m.records[key]; exists {
		return Record{}, ErrAlreadyMarked
	}
	m.records[key] = rec
	return rec, nil
}

func (m *memStore) List(_ context.Context, sessionID, studentID string) ([]RecordDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RecordDetail
	for _, rec := range m.records {
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		if studentID != "" && rec.StudentID != studentID {
			continue
		}
		out = append(out, RecordDetail{Record: rec})
	}
	return out, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func newTestEngine(sessions map[string]*session.Session, store *memStore, now time.Time) *Engine {
	e := NewEngine(&fakeResolver{sessions: sessions}, store)
	e.now = func() time.Time { return now }
	return e
}

func TestRedeemSuccess(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{
		"code-1": {ID: "sess-1", ExpiresAt: now.Add(time.Hour)},
	}, store, now)

	rec, err := e.Redeem(context.Background(), "student-1", "code-1")
	require.NoError(t, err)
	assert.Equal(t, "student-1", rec.StudentID)
	assert.Equal(t, "sess-1", rec.SessionID)
	assert.Equal(t, now, rec.MarkedAt)
	assert.NotEmpty(t, rec.ID)
}

func TestRedeemInvalidCode(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{}, store, now)

	_, err := e.Redeem(context.Background(), "student-1", "no-such-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Zero(t, store.count())
}

func TestRedeemExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	expiresAt := now.Add(-10 * time.Minute)
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{
		"code-1": {ID: "sess-1", ExpiresAt: expiresAt},
	}, store, now)

	_, err := e.Redeem(context.Background(), "student-1", "code-1")
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Contains(t, err.Error(), expiresAt.Format(time.RFC3339), "message must carry the expiry time")
	assert.Contains(t, err.Error(), now.Format(time.RFC3339), "message must carry the current time")
	assert.Zero(t, store.count(), "an expired redemption must never create a record")
}

func TestRedeemAtExpiryBoundary(t *testing.T) {
	// now == expiresAt is not strictly after expiry, so the redemption holds.
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{
		"code-1": {ID: "sess-1", ExpiresAt: now},
	}, store, now)

	_, err := e.Redeem(context.Background(), "student-1", "code-1")
	assert.NoError(t, err)
}

func TestRedeemDuplicate(t *testing.T) {
	now := time.Now().UTC()
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{
		"code-1": {ID: "sess-1", ExpiresAt: now.Add(time.Hour)},
	}, store, now)

	_, err := e.Redeem(context.Background(), "student-1", "code-1")
	require.NoError(t, err)

	_, err = e.Redeem(context.Background(), "student-1", "code-1")
	assert.ErrorIs(t, err, ErrAlreadyMarked)
	assert.Equal(t, 1, store.count())
}

func TestRedeemConcurrentSameStudent(t *testing.T) {
	const attempts = 16

	now := time.Now().UTC()
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{
		"code-1": {ID: "sess-1", ExpiresAt: now.Add(time.Hour)},
	}, store, now)

	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Redeem(context.Background(), "student-1", "code-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyMarked):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent redemption must win")
	assert.Equal(t, attempts-1, duplicates)
	assert.Equal(t, 1, store.count())
}

func TestRedeemDistinctStudents(t *testing.T) {
	now := time.Now().UTC()
	store := newMemStore()
	e := newTestEngine(map[string]*session.Session{
		"code-1": {ID: "sess-1", ExpiresAt: now.Add(time.Hour)},
	}, store, now)

	_, err := e.Redeem(context.Background(), "student-1", "code-1")
	require.NoError(t, err)
	_, err = e.Redeem(context.Background(), "student-2", "code-1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.count())
}
