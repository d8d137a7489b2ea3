package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rollcall/internal/metrics"
	"rollcall/internal/queue"
	"rollcall/internal/user"
)

// EventSessionCreated is the queue message type for the fan-out.
const EventSessionCreated = "session_created"

// SessionCreatedEvent is the payload published when an admin creates a
// session.
type SessionCreatedEvent struct {
	SessionID   string    `json:"sessionId"`
	Subject     string    `json:"subject"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// Publisher emits session-created events. Publishing is best-effort: failures
// are logged and never surfaced to the caller, so session creation cannot be
// rolled back by a fan-out fault.
type Publisher struct {
	q   queue.Queue
	log *zap.Logger
}

// NewPublisher creates a publisher.
func NewPublisher(q queue.Queue, log *zap.Logger) *Publisher {
	return &Publisher{q: q, log: log}
}

// SessionCreated publishes the event for a newly created session.
func (p *Publisher) SessionCreated(ctx context.Context, evt SessionCreatedEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		p.log.Error("marshal session event", zap.Error(err))
		return
	}
	if err := p.q.Publish(ctx, queue.Message{Type: EventSessionCreated, Body: body}); err != nil {
		p.log.Error("publish session event", zap.String("session_id", evt.SessionID), zap.Error(err))
	}
}

// StudentLister returns the identities to fan out to.
type StudentLister interface {
	ListStudents(ctx context.Context) ([]user.User, error)
}

// Store is the persistence surface the deliverer needs.
type Store interface {
	InsertBatch(ctx context.Context, batch []Notification) error
}

// Deliverer turns one session-created event into one notification per
// non-admin user.
type Deliverer struct {
	students StudentLister
	store    Store
	log      *zap.Logger
}

// NewDeliverer creates a deliverer.
func NewDeliverer(students StudentLister, store Store, log *zap.Logger) *Deliverer {
	return &Deliverer{students: students, store: store, log: log}
}

// Deliver writes the notification batch for one event.
func (d *Deliverer) Deliver(ctx context.Context, evt SessionCreatedEvent) error {
	students, err := d.students.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}
	if len(students) == 0 {
		return nil
	}

	when := evt.ScheduledAt.Format("Jan 2, 2006 at 15:04")
	batch := make([]Notification, 0, len(students))
	for _, st := range students {
		batch = append(batch, Notification{
			ID:          uuid.NewString(),
			RecipientID: st.ID,
			Title:       "New Attendance Session",
			Message:     fmt.Sprintf("A new attendance session for %q has been created for %s.", evt.Subject, when),
			Kind:        "session",
			RelatedID:   evt.SessionID,
		})
	}
	if err := d.store.InsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	metrics.NotificationsFanned.Add(float64(len(batch)))
	d.log.Info("session notifications delivered",
		zap.String("session_id", evt.SessionID), zap.Int("count", len(batch)))
	return nil
}

// Worker consumes session-created events from a queue and delivers them.
type Worker struct {
	q         queue.Queue
	deliverer *Deliverer
	log       *zap.Logger
}

// NewWorker creates a worker.
func NewWorker(q queue.Queue, deliverer *Deliverer, log *zap.Logger) *Worker {
	return &Worker{q: q, deliverer: deliverer, log: log}
}

// Run consumes until ctx is cancelled. Delivery failures are logged and the
// loop keeps going; the events are best-effort by contract.
func (w *Worker) Run(ctx context.Context) error {
	messages, err := w.q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("queue consume init: %w", err)
	}
	w.log.Info("notification worker started")
	for msg := range messages {
		if msg.Type != EventSessionCreated {
			continue
		}
		var evt SessionCreatedEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			w.log.Warn("malformed session event", zap.Error(err))
			continue
		}
		if err := w.deliverer.Deliver(ctx, evt); err != nil {
			w.log.Error("deliver session event", zap.String("session_id", evt.SessionID), zap.Error(err))
		}
	}
	w.log.Info("notification worker stopped")
	return nil
}
