package api

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/porchlight-social/porchlight/internal/feed"
	"github.com/porchlight-social/porchlight/internal/session"
)

// EngageAPI provides the write methods: posting, liking, echoing and
// replying
type EngageAPI struct {
	actions *feed.Actions
	threads *feed.ThreadManager
}

// NewEngageAPI creates a new engagement API
func NewEngageAPI(actions *feed.Actions, threads *feed.ThreadManager) *EngageAPI {
	return &EngageAPI{actions: actions, threads: threads}
}

// CreatePost handles post.create
func (e *EngageAPI) CreatePost(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return nil, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}
	body, _ := pMap["body"].(string)

	post, err := e.actions.CreatePost(ctx.Request.Context(), viewer.AccountID, body)
	if err != nil {
		return nil, err
	}
	return gin.H{"post": post}, nil
}

// Like handles post.like
func (e *EngageAPI) Like(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return e.toggle(ctx, params, e.actions.Like)
}

// Unlike handles post.unlike
func (e *EngageAPI) Unlike(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return e.toggle(ctx, params, e.actions.Unlike)
}

// Echo handles post.echo
func (e *EngageAPI) Echo(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return e.toggle(ctx, params, e.actions.EchoPost)
}

// Unecho handles post.unecho
func (e *EngageAPI) Unecho(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return e.toggle(ctx, params, e.actions.Unecho)
}

// CreateReply handles reply.create
func (e *EngageAPI) CreateReply(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return nil, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}
	postID, ok := int64Param(pMap, "post_id")
	if !ok {
		return nil, NewError(ErrInvalidParams, "missing required parameter: post_id")
	}
	body, _ := pMap["body"].(string)

	replies, err := e.threads.Submit(ctx.Request.Context(), viewer.AccountID, postID, body)
	if err != nil {
		return nil, err
	}
	return gin.H{"post_id": postID, "replies": replies}, nil
}

func (e *EngageAPI) toggle(ctx *gin.Context, params json.RawMessage, fn func(ctx context.Context, userID, postID int64) error) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return nil, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}
	postID, ok := int64Param(pMap, "post_id")
	if !ok {
		return nil, NewError(ErrInvalidParams, "missing required parameter: post_id")
	}

	if err := fn(ctx.Request.Context(), viewer.AccountID, postID); err != nil {
		return nil, err
	}
	return gin.H{"post_id": postID, "ok": true}, nil
}
