package notification

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Notification is one inbox entry, delivered by polling.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Kind        string    `json:"type"`
	RelatedID   string    `json:"relatedId,omitempty"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository persists notifications in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertBatch writes a batch of notifications in one statement.
func (r *Repository) InsertBatch(ctx context.Context, batch []Notification) error {
	if len(batch) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications (id, recipient_id, title, message, kind, related_id) VALUES `)
	args := make([]any, 0, len(batch)*6)
	for i, n := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		sb.WriteString(placeholders(base+1, 6))
		args = append(args, n.ID, n.RecipientID, n.Title, n.Message, n.Kind, nullable(n.RelatedID))
	}
	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// ListByRecipient returns up to limit notifications for the recipient,
// newest first.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID string, limit int, unreadOnly bool) ([]Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, recipient_id, title, message, kind, COALESCE(related_id, ''), is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	args := []any{recipientID}
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT $2"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Kind, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

// CountUnread returns the number of unread notifications for the recipient.
func (r *Repository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE
	`, recipientID).Scan(&count)
	return count, err
}

// FindByID returns the notification with the given id, or nil.
func (r *Repository) FindByID(ctx context.Context, id string) (*Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, recipient_id, title, message, kind, COALESCE(related_id, ''), is_read, created_at
		FROM notifications WHERE id = $1
	`, id)
	var n Notification
	if err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Kind, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// SetRead updates the read flag of one notification.
func (r *Repository) SetRead(ctx context.Context, id string, isRead bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = $2 WHERE id = $1`, id, isRead)
	return err
}

// MarkAllRead marks every unread notification for the recipient and returns
// how many were updated.
func (r *Repository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE
	`, recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a notification.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	return err
}

func placeholders(start, n int) string {
	var sb strings.Builder
	sb.WriteString("(")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("$")
		sb.WriteString(strconv.Itoa(start + i))
	}
	sb.WriteString(")")
	return sb.String()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
