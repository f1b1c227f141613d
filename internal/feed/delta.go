package feed

import (
	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/internal/realtime"
)

// ReduceFeed applies one change event to a composed feed and returns
// the next state. It is a pure function: the input state is never
// mutated, lists are rebuilt, and no I/O happens, so the reducer is
// testable without any live transport. Undecodable events leave the
// state unchanged.
func ReduceFeed(state FeedState, viewerID int64, ev realtime.Event) FeedState {
	switch ev.Channel {
	case realtime.ChannelPosts:
		if ev.Op != realtime.OpInsert {
			return state
		}
		var post models.Post
		if err := ev.DecodeNew(&post); err != nil {
			return state
		}
		return prependPost(state, post)

	case realtime.ChannelLikes:
		var like models.Like
		delta, ok := rowDelta(ev, &like)
		if !ok {
			return state
		}
		return applyLike(state, like, delta, viewerID)

	case realtime.ChannelEchoes:
		var echo models.Echo
		delta, ok := rowDelta(ev, &echo)
		if !ok {
			return state
		}
		return echoChanged(state, echo, delta, viewerID)

	case realtime.ChannelReplies:
		if ev.Op != realtime.OpInsert {
			return state
		}
		var reply models.Reply
		if err := ev.DecodeNew(&reply); err != nil {
			return state
		}
		return applyReply(state, reply)
	}
	return state
}

// rowDelta maps an insert to +1 and a delete to -1, decoding whichever
// row describes the change.
func rowDelta(ev realtime.Event, row interface{}) (int64, bool) {
	switch ev.Op {
	case realtime.OpInsert:
		if err := ev.DecodeNew(row); err != nil {
			return 0, false
		}
		return 1, true
	case realtime.OpDelete:
		if err := ev.DecodeOld(row); err != nil {
			return 0, false
		}
		return -1, true
	}
	return 0, false
}

// prependPost puts a freshly created post at the top of the feed with
// zero counts and cleared viewer flags. Existing items keep their order.
func prependPost(state FeedState, post models.Post) FeedState {
	items := make([]FeedItem, 0, len(state.Items)+1)
	items = append(items, FeedItem{
		Kind:    ItemKindPost,
		Post:    post,
		EventAt: post.CreatedAt,
	})
	items = append(items, state.Items...)
	state.Items = items
	return state
}

// applyLike adjusts the like counter on every item whose original post
// matches: the post may appear as itself and as any number of echoes,
// and all of them show the same number. Counters floor at zero. The
// viewer flag moves only when the acting user is the viewer.
func applyLike(state FeedState, like models.Like, delta int64, viewerID int64) FeedState {
	state.Items = mapItems(state.Items, like.PostID, func(item FeedItem) FeedItem {
		item.LikeCount = floorZero(item.LikeCount + delta)
		if like.UserID == viewerID {
			item.ViewerHasLiked = delta > 0
		}
		return item
	})
	return state
}

// echoChanged is the explicit "echo changed ⇒ recompute" path. The
// counters patch incrementally like any other metric, but an echo also
// adds or removes a feed row, which incremental patching cannot do
// without risking duplicate or stale entries, so the state is marked
// for a full recompute.
func echoChanged(state FeedState, echo models.Echo, delta int64, viewerID int64) FeedState {
	state.Items = mapItems(state.Items, echo.PostID, func(item FeedItem) FeedItem {
		item.EchoCount = floorZero(item.EchoCount + delta)
		if echo.UserID == viewerID {
			item.ViewerHasEchoed = delta > 0
		}
		return item
	})
	state.RecomputeNeeded = true
	return state
}

// applyReply bumps the reply counter on every item wrapping the parent
// post.
func applyReply(state FeedState, reply models.Reply) FeedState {
	state.Items = mapItems(state.Items, reply.PostID, func(item FeedItem) FeedItem {
		item.ReplyCount++
		return item
	})
	return state
}

// mapItems rebuilds the item list, transforming items whose original
// post id matches. Zero matches is a valid outcome.
func mapItems(items []FeedItem, postID int64, fn func(FeedItem) FeedItem) []FeedItem {
	next := make([]FeedItem, len(items))
	for i, item := range items {
		if item.Post.ID == postID {
			next[i] = fn(item)
		} else {
			next[i] = item
		}
	}
	return next
}

func floorZero(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// ReduceNotifications applies one notification change event to a
// viewer's in-memory notification list: inserts prepend, the list is
// trimmed to the retention cap, and the unread counter grows. The
// stream is already recipient-scoped, so no recipient check happens
// here.
func ReduceNotifications(state NotificationState, retention int, ev realtime.Event) NotificationState {
	if ev.Channel != realtime.ChannelNotifications || ev.Op != realtime.OpInsert {
		return state
	}
	var notif models.Notification
	if err := ev.DecodeNew(&notif); err != nil {
		return state
	}

	items := make([]models.Notification, 0, len(state.Items)+1)
	items = append(items, notif)
	items = append(items, state.Items...)
	if retention > 0 && len(items) > retention {
		items = items[:retention]
	}
	state.Items = items
	state.Unread++
	return state
}
