package feed

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/pkg/logging"
	"github.com/porchlight-social/porchlight/pkg/telemetry"
)

// PostStore is the slice of the post store composition reads.
type PostStore interface {
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Post, error)
}

// EchoStore is the slice of the echo store composition reads.
type EchoStore interface {
	ListRecent(ctx context.Context, limit int) ([]*models.Echo, error)
	CountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error)
	PostIDsEchoedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

// LikeStore is the slice of the like store composition reads.
type LikeStore interface {
	CountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error)
	PostIDsLikedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

// ReplyCounter counts replies per post.
type ReplyCounter interface {
	CountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error)
}

// ProfileStore batch-resolves profiles.
type ProfileStore interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Profile, error)
}

// Composer builds a viewer's timeline from a bounded window of recent
// posts and recent echoes.
type Composer struct {
	posts    PostStore
	echoes   EchoStore
	likes    LikeStore
	replies  ReplyCounter
	profiles ProfileStore
	window   int
	logger   *zap.Logger
}

// NewComposer creates a composer. window caps both the post fetch and
// the echo fetch.
func NewComposer(posts PostStore, echoes EchoStore, likes LikeStore, replies ReplyCounter, profiles ProfileStore, window int) *Composer {
	return &Composer{
		posts:    posts,
		echoes:   echoes,
		likes:    likes,
		replies:  replies,
		profiles: profiles,
		window:   window,
		logger:   logging.WithComponent("timeline-composer"),
	}
}

// Compose builds the ordered feed for one viewer. Any lookup failure
// aborts the whole composition; a partial feed is never returned.
func (c *Composer) Compose(ctx context.Context, viewerID int64) ([]FeedItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.compose")
	defer span.End()

	posts, err := c.posts.ListRecent(ctx, c.window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent posts: %w", err)
	}
	echoes, err := c.echoes.ListRecent(ctx, c.window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent echoes: %w", err)
	}

	// Posts indexed by id; echo targets outside the post window are
	// pulled in one extra batched lookup.
	postsByID := make(map[int64]*models.Post, len(posts))
	for _, p := range posts {
		postsByID[p.ID] = p
	}
	var missing []int64
	for _, e := range echoes {
		if _, ok := postsByID[e.PostID]; !ok {
			missing = append(missing, e.PostID)
		}
	}
	if len(missing) > 0 {
		extra, err := c.posts.GetByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch echoed posts: %w", err)
		}
		for _, p := range extra {
			postsByID[p.ID] = p
		}
	}

	// Echoes whose target post cannot be resolved are dropped silently.
	kept := echoes[:0]
	for _, e := range echoes {
		if _, ok := postsByID[e.PostID]; ok {
			kept = append(kept, e)
		} else {
			c.logger.Debug("Dropping echo of unresolvable post",
				zap.Int64("post_id", e.PostID),
				zap.Int64("user_id", e.UserID))
		}
	}
	echoes = kept

	// One profile lookup for post authors and echoers together.
	profileIDs := make([]int64, 0, len(posts)+len(echoes))
	seenProfile := make(map[int64]bool)
	addProfile := func(id int64) {
		if !seenProfile[id] {
			seenProfile[id] = true
			profileIDs = append(profileIDs, id)
		}
	}
	for _, p := range postsByID {
		addProfile(p.AuthorID)
	}
	for _, e := range echoes {
		addProfile(e.UserID)
	}
	profiles, err := c.profiles.GetByIDs(ctx, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profiles: %w", err)
	}
	profilesByID := make(map[int64]*models.Profile, len(profiles))
	for _, p := range profiles {
		profilesByID[p.ID] = p
	}

	// Engagement metrics over the union of touched post ids: one
	// batched query per metric, keyed by the original post id.
	touched := make([]int64, 0, len(postsByID))
	for id := range postsByID {
		touched = append(touched, id)
	}
	likeCounts, err := c.likes.CountByPostIDs(ctx, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	replyCounts, err := c.replies.CountByPostIDs(ctx, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to count replies: %w", err)
	}
	echoCounts, err := c.echoes.CountByPostIDs(ctx, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to count echoes: %w", err)
	}
	viewerLikes, err := c.likes.PostIDsLikedBy(ctx, viewerID, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve viewer likes: %w", err)
	}
	viewerEchoes, err := c.echoes.PostIDsEchoedBy(ctx, viewerID, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve viewer echoes: %w", err)
	}

	// One item per fetched post, one per kept echo.
	items := make([]FeedItem, 0, len(posts)+len(echoes))
	build := func(kind ItemKind, post *models.Post) FeedItem {
		return FeedItem{
			Kind:            kind,
			Post:            *post,
			Author:          profilesByID[post.AuthorID],
			EventAt:         post.CreatedAt,
			LikeCount:       likeCounts[post.ID],
			ReplyCount:      replyCounts[post.ID],
			EchoCount:       echoCounts[post.ID],
			ViewerHasLiked:  viewerLikes[post.ID],
			ViewerHasEchoed: viewerEchoes[post.ID],
		}
	}
	for _, p := range posts {
		items = append(items, build(ItemKindPost, p))
	}
	for _, e := range echoes {
		item := build(ItemKindEcho, postsByID[e.PostID])
		item.EchoedBy = profilesByID[e.UserID]
		item.EventAt = e.CreatedAt
		items = append(items, item)
	}

	// Each item sorts by its own event time, newest first; ties keep
	// their insertion order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EventAt.After(items[j].EventAt)
	})

	return items, nil
}
