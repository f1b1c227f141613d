// Package feed builds and maintains the unified timeline: original
// posts and echoes merged into one chronologically ordered list with
// live engagement counters.
package feed

import (
	"time"

	"github.com/porchlight-social/porchlight/internal/models"
)

// ItemKind distinguishes an original post row from an echo row.
type ItemKind string

// Feed item kinds.
const (
	ItemKindPost ItemKind = "post"
	ItemKindEcho ItemKind = "echo"
)

// FeedItem is one display-ready row of the timeline: an original post
// or an echo wrapping one. Counters and viewer flags always belong to
// the original post, never to the echo wrapper, so the same underlying
// post may appear several times in one feed each carrying identical
// engagement numbers.
type FeedItem struct {
	Kind ItemKind `json:"kind"`

	// Post is the original post; Post.ID is the counter identity.
	Post   models.Post     `json:"post"`
	Author *models.Profile `json:"author,omitempty"`

	// EchoedBy is set only on echo rows.
	EchoedBy *models.Profile `json:"echoed_by,omitempty"`

	// EventAt orders the feed: the post's own creation time for a post
	// row, the echo's creation time for an echo row.
	EventAt time.Time `json:"event_at"`

	LikeCount  int64 `json:"like_count"`
	ReplyCount int64 `json:"reply_count"`
	EchoCount  int64 `json:"echo_count"`

	ViewerHasLiked  bool `json:"viewer_has_liked"`
	ViewerHasEchoed bool `json:"viewer_has_echoed"`
}

// FeedState is a composed timeline plus the delta-processing flags that
// keep it live.
type FeedState struct {
	Items []FeedItem

	// RecomputeNeeded is raised when row membership changed (an echo
	// appeared or disappeared) and incremental patching can no longer
	// keep the list correct; the next read must come from a full
	// composition.
	RecomputeNeeded bool
}

// NotificationState is a viewer's in-memory notification list.
type NotificationState struct {
	Items  []models.Notification
	Unread int
}
