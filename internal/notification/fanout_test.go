package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rollcall/internal/queue"
	"rollcall/internal/user"
)

type fakeStudents struct {
	students []user.User
}

func (f *fakeStudents) ListStudents(context.Context) ([]user.User, error) {
	return f.students, nil
}

type fakeStore struct {
	mu      sync.Mutex
	batches [][]Notification
}

func (f *fakeStore) InsertBatch(_ context.Context, batch []Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeStore) all() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Notification
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func TestDeliverOnePerStudent(t *testing.T) {
	students := &fakeStudents{students: []user.User{
		{ID: "s1", Name: "Ana"},
		{ID: "s2", Name: "Ben"},
	}}
	store := &fakeStore{}
	d := NewDeliverer(students, store, zap.NewNop())

	evt := SessionCreatedEvent{
		SessionID:   "sess-1",
		Subject:     "Math 101",
		ScheduledAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, d.Deliver(context.Background(), evt))

	all := store.all()
	require.Len(t, all, 2)
	recipients := map[string]bool{}
	for _, n := range all {
		recipients[n.RecipientID] = true
		assert.Equal(t, "session", n.Kind)
		assert.Equal(t, "sess-1", n.RelatedID)
		assert.Contains(t, n.Message, "Math 101")
		assert.NotEmpty(t, n.ID)
	}
	assert.True(t, recipients["s1"])
	assert.True(t, recipients["s2"])
}

func TestDeliverNoStudents(t *testing.T) {
	store := &fakeStore{}
	d := NewDeliverer(&fakeStudents{}, store, zap.NewNop())

	require.NoError(t, d.Deliver(context.Background(), SessionCreatedEvent{SessionID: "sess-1"}))
	assert.Empty(t, store.all())
}

func TestWorkerDeliversPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewInMemory(4)
	store := &fakeStore{}
	d := NewDeliverer(&fakeStudents{students: []user.User{{ID: "s1"}}}, store, zap.NewNop())
	w := NewWorker(q, d, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	p := NewPublisher(q, zap.NewNop())
	p.SessionCreated(ctx, SessionCreatedEvent{SessionID: "sess-1", Subject: "Math 101", ScheduledAt: time.Now()})

	require.Eventually(t, func() bool {
		return len(store.all()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWorkerIgnoresOtherMessageTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := queue.NewInMemory(4)
	store := &fakeStore{}
	w := NewWorker(q, NewDeliverer(&fakeStudents{students: []user.User{{ID: "s1"}}}, store, zap.NewNop()), zap.NewNop())

	require.NoError(t, q.Publish(ctx, queue.Message{Type: "unrelated"}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.all())
	cancel()
	<-done
}
