// Package realtime carries row-change events from the write path to
// subscribed live views. Each table has its own channel; delivery order
// is preserved within a channel and unconstrained across channels.
package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Channel identifies one change stream.
type Channel string

// Subscribed channels, one per table the engine watches.
const (
	ChannelPosts         Channel = "posts"
	ChannelLikes         Channel = "likes"
	ChannelEchoes        Channel = "echoes"
	ChannelReplies       Channel = "replies"
	ChannelNotifications Channel = "notifications"
)

// Op is the kind of row change an event describes.
type Op string

// Row-change operations.
const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one row change on one channel. New carries the row after the
// change (insert/update), Old the row before it (update/delete).
type Event struct {
	Channel Channel         `json:"channel"`
	Op      Op              `json:"op"`
	New     json.RawMessage `json:"new,omitempty"`
	Old     json.RawMessage `json:"old,omitempty"`
}

// NewEvent builds an event, marshaling the given rows. Either row may
// be nil.
func NewEvent(channel Channel, op Op, newRow, oldRow interface{}) (Event, error) {
	ev := Event{Channel: channel, Op: op}
	if newRow != nil {
		raw, err := json.Marshal(newRow)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal new row: %w", err)
		}
		ev.New = raw
	}
	if oldRow != nil {
		raw, err := json.Marshal(oldRow)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal old row: %w", err)
		}
		ev.Old = raw
	}
	return ev, nil
}

// DecodeNew unmarshals the post-change row into v.
func (e Event) DecodeNew(v interface{}) error {
	if e.New == nil {
		return fmt.Errorf("event has no new row")
	}
	return json.Unmarshal(e.New, v)
}

// DecodeOld unmarshals the pre-change row into v.
func (e Event) DecodeOld(v interface{}) error {
	if e.Old == nil {
		return fmt.Errorf("event has no old row")
	}
	return json.Unmarshal(e.Old, v)
}

// Row returns whichever row describes the change: New for inserts and
// updates, Old for deletes.
func (e Event) Row() json.RawMessage {
	if e.Op == OpDelete {
		return e.Old
	}
	return e.New
}

// Topic returns the transport topic for a channel.
func Topic(channel Channel) string {
	return string(channel)
}

// NotificationTopic returns the recipient-scoped topic for notification
// events. The scoping happens server-side so a client only ever sees
// its own notifications.
func NotificationTopic(recipientID int64) string {
	return string(ChannelNotifications) + ":" + strconv.FormatInt(recipientID, 10)
}
