package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/internal/notify"
	"github.com/porchlight-social/porchlight/internal/realtime"
	"github.com/porchlight-social/porchlight/pkg/logging"
)

// PostWriteStore is the slice of the post store the write path uses.
type PostWriteStore interface {
	PostLookup
	Create(ctx context.Context, post *models.Post) error
}

// LikeWriteStore writes and removes like rows. Create reports whether a
// row was actually inserted; a duplicate pair is a no-op.
type LikeWriteStore interface {
	Create(ctx context.Context, like *models.Like) (bool, error)
	Delete(ctx context.Context, postID, userID int64) (bool, error)
}

// EchoWriteStore writes and removes echo rows with the same idempotency
// contract as likes.
type EchoWriteStore interface {
	Create(ctx context.Context, echo *models.Echo) (bool, error)
	Delete(ctx context.Context, postID, userID int64) (bool, error)
}

// Actions is the write-through path for user engagement. Every primary
// write is atomic from the user's perspective: it either lands and is
// acknowledged, or fails with no state change. Fanout and realtime
// publication run after the write and never affect its outcome.
type Actions struct {
	posts  PostWriteStore
	likes  LikeWriteStore
	echoes EchoWriteStore
	fanout *notify.Fanout
	bus    realtime.Bus
	logger *zap.Logger
}

// NewActions creates the engagement write path. fanout and bus may be
// nil in tests.
func NewActions(posts PostWriteStore, likes LikeWriteStore, echoes EchoWriteStore, fanout *notify.Fanout, bus realtime.Bus) *Actions {
	return &Actions{
		posts:  posts,
		likes:  likes,
		echoes: echoes,
		fanout: fanout,
		bus:    bus,
		logger: logging.WithComponent("feed-actions"),
	}
}

// CreatePost validates and writes a new post, then runs mention fanout
// best-effort.
func (a *Actions) CreatePost(ctx context.Context, authorID int64, body string) (*models.Post, error) {
	if err := models.ValidateBody(body); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	a.publish(ctx, realtime.ChannelPosts, realtime.OpInsert, post, nil)

	if a.fanout != nil {
		if err := a.fanout.PostMentions(ctx, authorID, post.ID, body); err != nil {
			a.logger.Error("Post mention fanout failed",
				zap.Int64("post_id", post.ID), zap.Error(err))
		}
	}
	return post, nil
}

// Like records that a user liked a post. Liking twice is a no-op:
// no duplicate row, no second notification, no second event.
func (a *Actions) Like(ctx context.Context, userID, postID int64) error {
	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to resolve post: %w", err)
	}
	if post == nil {
		return models.ErrNotFound
	}

	like := &models.Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
	created, err := a.likes.Create(ctx, like)
	if err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	if !created {
		return nil
	}

	a.publish(ctx, realtime.ChannelLikes, realtime.OpInsert, like, nil)
	a.engagementFanout(ctx, models.NotifyKindLike, userID, post.AuthorID, postID)
	return nil
}

// Unlike removes a like. The notification already sent for the like is
// never retracted.
func (a *Actions) Unlike(ctx context.Context, userID, postID int64) error {
	removed, err := a.likes.Delete(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	if removed {
		a.publish(ctx, realtime.ChannelLikes, realtime.OpDelete, nil,
			&models.Like{PostID: postID, UserID: userID})
	}
	return nil
}

// EchoPost rebroadcasts a post. Echoing one's own post is permitted;
// echoing the same post twice is a no-op.
func (a *Actions) EchoPost(ctx context.Context, userID, postID int64) error {
	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to resolve post: %w", err)
	}
	if post == nil {
		return models.ErrNotFound
	}

	echo := &models.Echo{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
	created, err := a.echoes.Create(ctx, echo)
	if err != nil {
		return fmt.Errorf("failed to create echo: %w", err)
	}
	if !created {
		return nil
	}

	a.publish(ctx, realtime.ChannelEchoes, realtime.OpInsert, echo, nil)
	a.engagementFanout(ctx, models.NotifyKindEcho, userID, post.AuthorID, postID)
	return nil
}

// Unecho removes an echo. As with unlike, the echo notification stays.
func (a *Actions) Unecho(ctx context.Context, userID, postID int64) error {
	removed, err := a.echoes.Delete(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove echo: %w", err)
	}
	if removed {
		a.publish(ctx, realtime.ChannelEchoes, realtime.OpDelete, nil,
			&models.Echo{PostID: postID, UserID: userID})
	}
	return nil
}

func (a *Actions) engagementFanout(ctx context.Context, kind int16, senderID, recipientID, postID int64) {
	if a.fanout == nil {
		return
	}
	if err := a.fanout.Engagement(ctx, kind, senderID, recipientID, postID, nil, ""); err != nil {
		a.logger.Error("Engagement fanout failed",
			zap.String("kind", models.NotifyKindName(kind)),
			zap.Int64("post_id", postID),
			zap.Error(err))
	}
}

func (a *Actions) publish(ctx context.Context, channel realtime.Channel, op realtime.Op, newRow, oldRow interface{}) {
	if a.bus == nil {
		return
	}
	ev, err := realtime.NewEvent(channel, op, newRow, oldRow)
	if err == nil {
		err = a.bus.Publish(ctx, realtime.Topic(channel), ev)
	}
	if err != nil {
		a.logger.Warn("Failed to publish change event",
			zap.String("channel", string(channel)), zap.Error(err))
	}
}
