package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/porchlight-social/porchlight/internal/models"
	"github.com/porchlight-social/porchlight/internal/realtime"
)

// fakeStore records created notifications.
type fakeStore struct {
	created []*models.Notification
	err     error
}

func (s *fakeStore) Create(_ context.Context, notif *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, notif)
	return nil
}

// fakeResolver resolves every text to a fixed id set.
type fakeResolver struct {
	ids []int64
	err error
}

func (r *fakeResolver) Resolve(context.Context, string) ([]int64, error) {
	return r.ids, r.err
}

func TestPostMentionsExcludesAuthor(t *testing.T) {
	// "hello @alice and @bob, cc @alice" resolved to alice=1, bob=2;
	// the author is alice and must not be notified of their own text.
	store := &fakeStore{}
	f := NewFanout(&fakeResolver{ids: []int64{1, 2}}, store, nil)

	if err := f.PostMentions(context.Background(), 1, 10, "hello @alice and @bob, cc @alice"); err != nil {
		t.Fatalf("PostMentions() error = %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(store.created))
	}
	n := store.created[0]
	if n.Kind != models.NotifyKindMentionPost {
		t.Errorf("kind = %s, want mention_post", models.NotifyKindName(n.Kind))
	}
	if n.RecipientID != 2 || n.SenderID != 1 {
		t.Errorf("recipient/sender = %d/%d, want 2/1", n.RecipientID, n.SenderID)
	}
	if !n.PostID.Valid || n.PostID.Int64 != 10 {
		t.Errorf("post id = %+v, want 10", n.PostID)
	}
	if n.ReplyID.Valid {
		t.Error("post mention must not carry a reply id")
	}
}

func TestMentionRoundTrip(t *testing.T) {
	// Author (id 3) mentions two existing handles; exactly 2 deduped
	// mention_post notifications.
	store := &fakeStore{}
	f := NewFanout(&fakeResolver{ids: []int64{1, 2}}, store, nil)

	if err := f.PostMentions(context.Background(), 3, 10, "hello @alice and @bob, cc @alice"); err != nil {
		t.Fatalf("PostMentions() error = %v", err)
	}
	if len(store.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(store.created))
	}
	for _, n := range store.created {
		if n.Kind != models.NotifyKindMentionPost {
			t.Errorf("kind = %s, want mention_post", models.NotifyKindName(n.Kind))
		}
		if n.RecipientID == 3 {
			t.Error("author must never be a recipient")
		}
	}
}

func TestReplyMentionsCarryReplyID(t *testing.T) {
	store := &fakeStore{}
	f := NewFanout(&fakeResolver{ids: []int64{5}}, store, nil)

	if err := f.ReplyMentions(context.Background(), 1, 10, 77, "ping @eve"); err != nil {
		t.Fatalf("ReplyMentions() error = %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(store.created))
	}
	n := store.created[0]
	if n.Kind != models.NotifyKindMentionReply {
		t.Errorf("kind = %s, want mention_reply", models.NotifyKindName(n.Kind))
	}
	if !n.ReplyID.Valid || n.ReplyID.Int64 != 77 {
		t.Errorf("reply id = %+v, want 77", n.ReplyID)
	}
}

func TestEngagementSelfSuppression(t *testing.T) {
	store := &fakeStore{}
	f := NewFanout(&fakeResolver{}, store, nil)

	// User 4 likes their own post: zero notifications.
	if err := f.Engagement(context.Background(), models.NotifyKindLike, 4, 4, 10, nil, ""); err != nil {
		t.Fatalf("Engagement() error = %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("self-engagement produced %d notifications, want 0", len(store.created))
	}
}

func TestEngagementContentOnlyForReply(t *testing.T) {
	store := &fakeStore{}
	f := NewFanout(&fakeResolver{}, store, nil)
	ctx := context.Background()

	replyID := int64(9)
	if err := f.Engagement(ctx, models.NotifyKindLike, 1, 2, 10, nil, "ignored"); err != nil {
		t.Fatal(err)
	}
	if err := f.Engagement(ctx, models.NotifyKindEcho, 1, 2, 10, nil, "ignored"); err != nil {
		t.Fatal(err)
	}
	if err := f.Engagement(ctx, models.NotifyKindReply, 1, 2, 10, &replyID, "nice post"); err != nil {
		t.Fatal(err)
	}

	if len(store.created) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(store.created))
	}
	if store.created[0].Content.Valid || store.created[1].Content.Valid {
		t.Error("like/echo notifications must not carry content")
	}
	reply := store.created[2]
	if !reply.Content.Valid || reply.Content.String != "nice post" {
		t.Errorf("reply content = %+v, want %q", reply.Content, "nice post")
	}
	if !reply.ReplyID.Valid || reply.ReplyID.Int64 != 9 {
		t.Errorf("reply id = %+v, want 9", reply.ReplyID)
	}
}

func TestMentionsResolverError(t *testing.T) {
	wantErr := errors.New("resolver down")
	f := NewFanout(&fakeResolver{err: wantErr}, &fakeStore{}, nil)

	if err := f.PostMentions(context.Background(), 1, 10, "@alice"); !errors.Is(err, wantErr) {
		t.Errorf("PostMentions() error = %v, want %v", err, wantErr)
	}
}

func TestMentionsStoreErrorReported(t *testing.T) {
	wantErr := errors.New("insert failed")
	f := NewFanout(&fakeResolver{ids: []int64{2}}, &fakeStore{err: wantErr}, nil)

	if err := f.PostMentions(context.Background(), 1, 10, "@bob"); !errors.Is(err, wantErr) {
		t.Errorf("PostMentions() error = %v, want %v", err, wantErr)
	}
}

func TestFanoutPublishesToRecipientTopic(t *testing.T) {
	store := &fakeStore{}
	bus := realtime.NewMemoryBus()
	ctx := context.Background()

	sub, _ := bus.Subscribe(ctx, realtime.NotificationTopic(2))
	var got []realtime.Event
	sub.OnEvent(func(ev realtime.Event) { got = append(got, ev) })

	f := NewFanout(&fakeResolver{}, store, bus)
	if err := f.Engagement(ctx, models.NotifyKindEcho, 1, 2, 10, nil, ""); err != nil {
		t.Fatalf("Engagement() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(got))
	}
	var n models.Notification
	if err := got[0].DecodeNew(&n); err != nil {
		t.Fatalf("DecodeNew() error = %v", err)
	}
	if n.Kind != models.NotifyKindEcho || n.RecipientID != 2 {
		t.Errorf("published notification = %+v", n)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int // rune length of the preview
	}{
		{"short body unchanged", "hello", 5},
		{"exactly at limit", strings.Repeat("a", 100), 100},
		{"truncated", strings.Repeat("a", 250), 100},
		{"multibyte runes", strings.Repeat("é", 150), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Preview(tt.body)
			if n := len([]rune(got)); n != tt.want {
				t.Errorf("Preview() rune length = %d, want %d", n, tt.want)
			}
			if !strings.HasPrefix(tt.body, got) {
				t.Error("Preview() must be a prefix of the body")
			}
		})
	}
}
