package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/internal/realtime"
	"github.com/porchlight-social/porchlight/pkg/logging"
)

// ToggleKind names the two reversible engagement actions.
type ToggleKind string

// Toggle kinds.
const (
	ToggleLike ToggleKind = "like"
	ToggleEcho ToggleKind = "echo"
)

type toggleKey struct {
	postID int64
	kind   ToggleKind
}

// LiveFeed keeps one viewer's composed feed and notification list
// consistent as change events arrive. All state mutation happens on a
// single event-loop goroutine; reads take a snapshot under a lock.
type LiveFeed struct {
	composer  *Composer
	bus       realtime.Bus
	viewerID  int64
	retention int
	logger    *zap.Logger

	sub    realtime.Subscription
	events chan realtime.Event
	done   chan struct{}
	once   sync.Once

	mu      sync.RWMutex
	feed    FeedState
	notifs  NotificationState
	loadErr error
	toggles map[toggleKey]bool
}

// NewLiveFeed creates a live view for one viewer.
func NewLiveFeed(composer *Composer, bus realtime.Bus, viewerID int64, retention int) *LiveFeed {
	return &LiveFeed{
		composer:  composer,
		bus:       bus,
		viewerID:  viewerID,
		retention: retention,
		logger:    logging.WithComponent("live-feed").With(zap.Int64("viewer_id", viewerID)),
		events:    make(chan realtime.Event, 64),
		done:      make(chan struct{}),
		toggles:   make(map[toggleKey]bool),
	}
}

// Start composes the initial snapshot and begins consuming change
// events. It must be called once, before any read.
func (l *LiveFeed) Start(ctx context.Context) error {
	items, err := l.composer.Compose(ctx, l.viewerID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.feed = FeedState{Items: items}
	l.mu.Unlock()

	sub, err := l.bus.Subscribe(ctx,
		realtime.Topic(realtime.ChannelPosts),
		realtime.Topic(realtime.ChannelLikes),
		realtime.Topic(realtime.ChannelEchoes),
		realtime.Topic(realtime.ChannelReplies),
		realtime.NotificationTopic(l.viewerID),
	)
	if err != nil {
		return err
	}
	l.sub = sub

	sub.OnEvent(func(ev realtime.Event) {
		select {
		case l.events <- ev:
		case <-l.done:
		}
	})

	go l.loop(ctx)
	return nil
}

// loop is the single thread of control that owns the view state.
// Events are applied in delivery order per channel.
func (l *LiveFeed) loop(ctx context.Context) {
	for {
		select {
		case <-l.done:
			return
		case ev := <-l.events:
			l.apply(ctx, ev)
		}
	}
}

func (l *LiveFeed) apply(ctx context.Context, ev realtime.Event) {
	l.mu.Lock()
	if ev.Channel == realtime.ChannelNotifications {
		l.notifs = ReduceNotifications(l.notifs, l.retention, ev)
		l.mu.Unlock()
		return
	}
	l.feed = ReduceFeed(l.feed, l.viewerID, ev)
	recompute := l.feed.RecomputeNeeded
	l.mu.Unlock()

	if recompute {
		l.recompute(ctx)
	}
}

// recompute rebuilds the whole feed after an echo changed row
// membership. On failure the previous items stay visible and the error
// is surfaced through Snapshot.
func (l *LiveFeed) recompute(ctx context.Context) {
	items, err := l.composer.Compose(ctx, l.viewerID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.logger.Error("Feed recompute failed", zap.Error(err))
		l.feed.RecomputeNeeded = false
		l.loadErr = err
		return
	}
	l.feed = FeedState{Items: items}
	l.loadErr = nil
}

// Snapshot returns a copy of the current feed. The error, when set,
// marks an error view state, distinct from a valid empty feed.
func (l *LiveFeed) Snapshot() ([]FeedItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	items := make([]FeedItem, len(l.feed.Items))
	copy(items, l.feed.Items)
	return items, nil
}

// Notifications returns a copy of the notification list and the unread
// count.
func (l *LiveFeed) Notifications() ([]models.Notification, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := make([]models.Notification, len(l.notifs.Items))
	copy(items, l.notifs.Items)
	return items, l.notifs.Unread
}

// SeedNotifications installs the initial notification list, usually
// from a storage read at view start.
func (l *LiveFeed) SeedNotifications(items []models.Notification, unread int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifs = NotificationState{Items: items, Unread: unread}
}

// BeginToggle reserves the (post, kind) toggle slot. Exactly one
// like/echo toggle per post may be in flight; a second concurrent
// attempt fails with ErrToggleInFlight until the first releases. The
// returned func releases the slot and must be called when the write
// resolves, success or failure.
func (l *LiveFeed) BeginToggle(kind ToggleKind, postID int64) (func(), error) {
	key := toggleKey{postID: postID, kind: kind}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.toggles[key] {
		return nil, models.ErrToggleInFlight
	}
	l.toggles[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.toggles, key)
			l.mu.Unlock()
		})
	}, nil
}

// Close tears the view down: the subscription ends and no event applies
// after it returns. Safe to call more than once.
func (l *LiveFeed) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		if l.sub != nil {
			err = l.sub.Close()
		}
	})
	return err
}
