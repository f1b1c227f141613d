// Package notify turns completed engagement actions into persisted
// notification records. Fanout is strictly best-effort: a failure here
// never unwinds the primary write that triggered it.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/internal/realtime"
	"github.com/porchlight-social/porchlight/pkg/logging"
)

// Store is the slice of the notification store fanout writes to.
type Store interface {
	Create(ctx context.Context, notif *models.Notification) error
}

// MentionResolver maps free text to mentioned account ids.
type MentionResolver interface {
	Resolve(ctx context.Context, text string) ([]int64, error)
}

// Fanout produces notification records for engagement actions.
type Fanout struct {
	resolver MentionResolver
	store    Store
	bus      realtime.Bus
	logger   *zap.Logger
}

// NewFanout creates a fanout. The bus may be nil when no realtime
// delivery is wired.
func NewFanout(resolver MentionResolver, store Store, bus realtime.Bus) *Fanout {
	return &Fanout{
		resolver: resolver,
		store:    store,
		bus:      bus,
		logger:   logging.WithComponent("notify-fanout"),
	}
}

// PostMentions notifies every account mentioned in a freshly created
// post, excluding the author. One notification per distinct recipient.
func (f *Fanout) PostMentions(ctx context.Context, authorID, postID int64, body string) error {
	return f.mentions(ctx, models.NotifyKindMentionPost, authorID, postID, nil, body)
}

// ReplyMentions notifies every account mentioned in a freshly created
// reply, excluding the reply's author.
func (f *Fanout) ReplyMentions(ctx context.Context, authorID, postID, replyID int64, body string) error {
	return f.mentions(ctx, models.NotifyKindMentionReply, authorID, postID, &replyID, body)
}

func (f *Fanout) mentions(ctx context.Context, kind int16, authorID, postID int64, replyID *int64, body string) error {
	recipients, err := f.resolver.Resolve(ctx, body)
	if err != nil {
		return err
	}

	preview := Preview(body)
	var errs []error
	for _, recipientID := range recipients {
		if recipientID == authorID {
			// A self-mention never notifies.
			continue
		}
		notif := &models.Notification{
			Kind:        kind,
			RecipientID: recipientID,
			SenderID:    authorID,
			PostID:      sql.NullInt64{Int64: postID, Valid: true},
			Content:     sql.NullString{String: preview, Valid: true},
			CreatedAt:   time.Now().UTC(),
		}
		if replyID != nil {
			notif.ReplyID = sql.NullInt64{Int64: *replyID, Valid: true}
		}
		if err := f.write(ctx, notif); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Engagement notifies the original post's author of a like, echo, or
// reply. A self-directed event is suppressed entirely: no record is
// created. Only reply notifications carry a content preview.
func (f *Fanout) Engagement(ctx context.Context, kind int16, senderID, recipientID, postID int64, replyID *int64, content string) error {
	if senderID == recipientID {
		return nil
	}

	notif := &models.Notification{
		Kind:        kind,
		RecipientID: recipientID,
		SenderID:    senderID,
		PostID:      sql.NullInt64{Int64: postID, Valid: true},
		CreatedAt:   time.Now().UTC(),
	}
	if replyID != nil {
		notif.ReplyID = sql.NullInt64{Int64: *replyID, Valid: true}
	}
	if kind == models.NotifyKindReply && content != "" {
		notif.Content = sql.NullString{String: Preview(content), Valid: true}
	}

	return f.write(ctx, notif)
}

// write persists the notification and pushes it onto the recipient's
// change stream. A publish failure is logged, never returned: the row
// is already durable and the client will see it on its next load.
func (f *Fanout) write(ctx context.Context, notif *models.Notification) error {
	if err := f.store.Create(ctx, notif); err != nil {
		return err
	}

	f.logger.Debug("Notification written",
		zap.String("kind", models.NotifyKindName(notif.Kind)),
		zap.Int64("recipient_id", notif.RecipientID),
		zap.Int64("sender_id", notif.SenderID))

	if f.bus != nil {
		ev, err := realtime.NewEvent(realtime.ChannelNotifications, realtime.OpInsert, notif, nil)
		if err == nil {
			err = f.bus.Publish(ctx, realtime.NotificationTopic(notif.RecipientID), ev)
		}
		if err != nil {
			f.logger.Warn("Failed to publish notification event",
				zap.Int64("recipient_id", notif.RecipientID),
				zap.Error(err))
		}
	}
	return nil
}

// Preview returns a rune-safe prefix of body bounded by the
// notification preview limit.
func Preview(body string) string {
	runes := []rune(body)
	if len(runes) <= models.PreviewLen {
		return body
	}
	return string(runes[:models.PreviewLen])
}
