package notify

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/porchlight-social/porchlight/internal/models"
)

type fakeInboxStore struct {
	notifs []*models.Notification
	err    error
}

func (s *fakeInboxStore) ListByRecipient(_ context.Context, recipientID int64, limit int) ([]*models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Notification
	for _, n := range s.notifs {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeInboxStore) CountUnread(_ context.Context, recipientID int64) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var count int64
	for _, n := range s.notifs {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeInboxStore) MarkRead(_ context.Context, id, recipientID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, n := range s.notifs {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeInboxStore) MarkAllRead(_ context.Context, recipientID int64) error {
	if s.err != nil {
		return s.err
	}
	for _, n := range s.notifs {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func seededInbox(retention int) (*Inbox, *fakeInboxStore) {
	store := &fakeInboxStore{notifs: []*models.Notification{
		{ID: 1, RecipientID: 1, SenderID: 2, Kind: models.NotifyKindLike},
		{ID: 2, RecipientID: 1, SenderID: 3, Kind: models.NotifyKindEcho},
		{ID: 3, RecipientID: 2, SenderID: 1, Kind: models.NotifyKindMentionPost},
	}}
	return NewInbox(store, retention), store
}

func TestInboxList(t *testing.T) {
	inbox, _ := seededInbox(100)

	notifs, err := inbox.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notifs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifs))
	}
	if notifs[0].ID != 2 || notifs[1].ID != 1 {
		t.Errorf("list not newest-first: %d, %d", notifs[0].ID, notifs[1].ID)
	}
}

func TestInboxListRetentionCap(t *testing.T) {
	inbox, _ := seededInbox(1)

	notifs, err := inbox.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notifs) != 1 || notifs[0].ID != 2 {
		t.Fatalf("expected only the newest notification, got %+v", notifs)
	}
}

func TestInboxUnread(t *testing.T) {
	inbox, store := seededInbox(100)

	count, err := inbox.Unread(context.Background(), 1)
	if err != nil {
		t.Fatalf("Unread failed: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	if err := inbox.MarkRead(context.Background(), 1, 1); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	count, _ = inbox.Unread(context.Background(), 1)
	if count != 1 {
		t.Errorf("unread after mark = %d, want 1", count)
	}

	if err := inbox.MarkAllRead(context.Background(), 1); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	count, _ = inbox.Unread(context.Background(), 1)
	if count != 0 {
		t.Errorf("unread after mark all = %d, want 0", count)
	}
	// Another recipient's inbox is untouched.
	for _, n := range store.notifs {
		if n.RecipientID == 2 && n.Read {
			t.Error("mark-all leaked into another recipient's inbox")
		}
	}
}

func TestInboxMarkReadScoping(t *testing.T) {
	inbox, _ := seededInbox(100)

	// Notification 3 belongs to recipient 2; recipient 1 cannot ack it.
	if err := inbox.MarkRead(context.Background(), 3, 1); !errors.Is(err, models.ErrNotifyForbidden) {
		t.Errorf("foreign ack: err = %v, want ErrNotifyForbidden", err)
	}
	if err := inbox.MarkRead(context.Background(), 404, 1); !errors.Is(err, models.ErrNotifyForbidden) {
		t.Errorf("missing id: err = %v, want ErrNotifyForbidden", err)
	}
}

func TestInboxStoreFailure(t *testing.T) {
	store := &fakeInboxStore{err: errors.New("store down")}
	inbox := NewInbox(store, 100)

	if _, err := inbox.List(context.Background(), 1); err == nil {
		t.Error("List should surface store errors")
	}
	if _, err := inbox.Unread(context.Background(), 1); err == nil {
		t.Error("Unread should surface store errors")
	}
	if err := inbox.MarkRead(context.Background(), 1, 1); err == nil {
		t.Error("MarkRead should surface store errors")
	}
	if err := inbox.MarkAllRead(context.Background(), 1); err == nil {
		t.Error("MarkAllRead should surface store errors")
	}
}
