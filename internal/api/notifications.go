package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/porchlight-social/porchlight/internal/notify"
	"github.com/porchlight-social/porchlight/internal/session"
)

// NotificationsAPI provides notification inbox methods
type NotificationsAPI struct {
	inbox *notify.Inbox
}

// NewNotificationsAPI creates a new notifications API
func NewNotificationsAPI(inbox *notify.Inbox) *NotificationsAPI {
	return &NotificationsAPI{inbox: inbox}
}

// List handles notifications.list
func (n *NotificationsAPI) List(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(params)
	if err != nil {
		return nil, err
	}
	notifs, err := n.inbox.List(ctx.Request.Context(), viewer.AccountID)
	if err != nil {
		return nil, err
	}
	return gin.H{"notifications": notifs}, nil
}

// Unread handles notifications.unread
func (n *NotificationsAPI) Unread(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(params)
	if err != nil {
		return nil, err
	}
	count, err := n.inbox.Unread(ctx.Request.Context(), viewer.AccountID)
	if err != nil {
		return nil, err
	}
	return gin.H{"unread": count}, nil
}

// MarkRead handles notifications.mark_read
func (n *NotificationsAPI) MarkRead(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return nil, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}
	id, ok := int64Param(pMap, "id")
	if !ok {
		return nil, NewError(ErrInvalidParams, "missing required parameter: id")
	}

	if err := n.inbox.MarkRead(ctx.Request.Context(), id, viewer.AccountID); err != nil {
		return nil, err
	}
	return gin.H{"id": id, "ok": true}, nil
}

// MarkAllRead handles notifications.mark_all_read
func (n *NotificationsAPI) MarkAllRead(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(params)
	if err != nil {
		return nil, err
	}
	if err := n.inbox.MarkAllRead(ctx.Request.Context(), viewer.AccountID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

// requireViewer decodes params and insists on a viewer identity
func requireViewer(params json.RawMessage) (session.Viewer, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return session.Viewer{}, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return session.Viewer{}, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}
	return viewer, nil
}
