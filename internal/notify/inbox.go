package notify

import (
	"context"
	"fmt"

	"github.com/porchlight-social/porchlight/internal/models"
)

// InboxStore is the slice of the notification store inbox reads use.
type InboxStore interface {
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, id, recipientID int64) (bool, error)
	MarkAllRead(ctx context.Context, recipientID int64) error
}

// Inbox serves one account's notification list. Every operation is
// scoped to the recipient; a notification can only be acknowledged by
// the account it was addressed to.
type Inbox struct {
	store     InboxStore
	retention int
}

// NewInbox creates an inbox over the given store. retention caps how
// many notifications a single list call returns.
func NewInbox(store InboxStore, retention int) *Inbox {
	return &Inbox{store: store, retention: retention}
}

// List returns the newest notifications for one recipient, newest
// first, capped at the retention limit.
func (i *Inbox) List(ctx context.Context, recipientID int64) ([]*models.Notification, error) {
	notifs, err := i.store.ListByRecipient(ctx, recipientID, i.retention)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifs, nil
}

// Unread returns the recipient's unread count.
func (i *Inbox) Unread(ctx context.Context, recipientID int64) (int64, error) {
	count, err := i.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead acknowledges one notification. Acknowledging a notification
// that belongs to another account, or one that does not exist, fails
// with ErrNotifyForbidden.
func (i *Inbox) MarkRead(ctx context.Context, id, recipientID int64) error {
	ok, err := i.store.MarkRead(ctx, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		return models.ErrNotifyForbidden
	}
	return nil
}

// MarkAllRead acknowledges every notification for one recipient.
func (i *Inbox) MarkAllRead(ctx context.Context, recipientID int64) error {
	if err := i.store.MarkAllRead(ctx, recipientID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
