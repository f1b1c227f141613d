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

// ReplyStore is the slice of the reply store thread loading and
// submission use.
type ReplyStore interface {
	ListByPostID(ctx context.Context, postID int64) ([]*models.Reply, error)
	Create(ctx context.Context, reply *models.Reply) error
}

// PostLookup resolves single posts.
type PostLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
}

// ReplyView is one reply paired with its author snapshot.
type ReplyView struct {
	Reply  models.Reply    `json:"reply"`
	Author *models.Profile `json:"author,omitempty"`
}

// ThreadManager lazily loads and mutates the reply thread of a single
// post. Threads read top-to-bottom as a conversation, oldest first,
// the inverse of the feed's ordering.
type ThreadManager struct {
	replies  ReplyStore
	posts    PostLookup
	profiles ProfileStore
	fanout   *notify.Fanout
	bus      realtime.Bus
	logger   *zap.Logger
}

// NewThreadManager creates a thread manager. fanout and bus may be nil
// for read-only use.
func NewThreadManager(replies ReplyStore, posts PostLookup, profiles ProfileStore, fanout *notify.Fanout, bus realtime.Bus) *ThreadManager {
	return &ThreadManager{
		replies:  replies,
		posts:    posts,
		profiles: profiles,
		fanout:   fanout,
		bus:      bus,
		logger:   logging.WithComponent("reply-thread"),
	}
}

// Load fetches every reply for one post, oldest first, with authors
// resolved in a single batched call. A lookup failure aborts the load.
func (t *ThreadManager) Load(ctx context.Context, postID int64) ([]ReplyView, error) {
	replies, err := t.replies.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	authorIDs := make([]int64, 0, len(replies))
	seen := make(map[int64]bool)
	for _, r := range replies {
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}
	profiles, err := t.profiles.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reply authors: %w", err)
	}
	byID := make(map[int64]*models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	views := make([]ReplyView, 0, len(replies))
	for _, r := range replies {
		views = append(views, ReplyView{Reply: *r, Author: byID[r.AuthorID]})
	}
	return views, nil
}

// Submit validates and writes a new reply, runs fanout, and returns the
// freshly reloaded thread. The reply write is atomic from the caller's
// view; fanout failures are logged and never surfaced.
func (t *ThreadManager) Submit(ctx context.Context, authorID, postID int64, body string) ([]ReplyView, error) {
	if err := models.ValidateBody(body); err != nil {
		return nil, err
	}

	post, err := t.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parent post: %w", err)
	}
	if post == nil {
		return nil, models.ErrNotFound
	}

	reply := &models.Reply{
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.replies.Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}

	// The reply is durable; everything past this point is best-effort.
	if t.fanout != nil {
		if err := t.fanout.Engagement(ctx, models.NotifyKindReply, authorID, post.AuthorID, postID, &reply.ID, body); err != nil {
			t.logger.Error("Reply notification fanout failed",
				zap.Int64("post_id", postID), zap.Error(err))
		}
		if err := t.fanout.ReplyMentions(ctx, authorID, postID, reply.ID, body); err != nil {
			t.logger.Error("Reply mention fanout failed",
				zap.Int64("reply_id", reply.ID), zap.Error(err))
		}
	}
	t.publish(ctx, reply)

	// Re-run the fetch for the thread: a full reload, not an
	// incremental patch.
	return t.Load(ctx, postID)
}

func (t *ThreadManager) publish(ctx context.Context, reply *models.Reply) {
	if t.bus == nil {
		return
	}
	ev, err := realtime.NewEvent(realtime.ChannelReplies, realtime.OpInsert, reply, nil)
	if err == nil {
		err = t.bus.Publish(ctx, realtime.Topic(realtime.ChannelReplies), ev)
	}
	if err != nil {
		t.logger.Warn("Failed to publish reply event",
			zap.Int64("reply_id", reply.ID), zap.Error(err))
	}
}
