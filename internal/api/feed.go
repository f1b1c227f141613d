package api

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/internal/cache"
	"github.com/porchlight-social/porchlight/internal/feed"
	"github.com/porchlight-social/porchlight/internal/session"
	"github.com/porchlight-social/porchlight/pkg/config"
	"github.com/porchlight-social/porchlight/pkg/logging"
)

// FeedAPI provides timeline and thread read methods
type FeedAPI struct {
	composer *feed.Composer
	threads  *feed.ThreadManager
	cache    *cache.Cache
	cfg      *config.FeedConfig
	logger   *zap.Logger
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(composer *feed.Composer, threads *feed.ThreadManager, redisCache *cache.Cache, cfg *config.FeedConfig) *FeedAPI {
	return &FeedAPI{
		composer: composer,
		threads:  threads,
		cache:    redisCache,
		cfg:      cfg,
		logger:   logging.GetLogger().With(zap.String("component", "feed-api")),
	}
}

// GetTimeline handles feed.get_timeline
func (f *FeedAPI) GetTimeline(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	viewer := session.FromParams(pMap)
	if !viewer.Known() {
		return nil, NewError(ErrInvalidParams, "missing required parameter: viewer_id")
	}

	// Snapshots are cached briefly per viewer; the realtime channel
	// covers freshness in between.
	cacheKey := cache.HashKey("feed_get_timeline", fmt.Sprintf("%d", viewer.AccountID))
	if f.cache != nil {
		var cached []feed.FeedItem
		if err := f.cache.GetJSON(cacheKey, &cached); err == nil {
			return gin.H{"items": cached}, nil
		}
	}

	items, err := f.composer.Compose(ctx.Request.Context(), viewer.AccountID)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.SetJSON(cacheKey, items, f.cfg.SnapshotTTL); err != nil {
			f.logger.Warn("Failed to cache timeline snapshot", zap.Error(err))
		}
	}
	return gin.H{"items": items}, nil
}

// GetThread handles feed.get_thread
func (f *FeedAPI) GetThread(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	pMap, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	postID, ok := int64Param(pMap, "post_id")
	if !ok {
		return nil, NewError(ErrInvalidParams, "missing required parameter: post_id")
	}

	replies, err := f.threads.Load(ctx.Request.Context(), postID)
	if err != nil {
		return nil, err
	}
	return gin.H{"post_id": postID, "replies": replies}, nil
}

// decodeParams unpacks JSON-RPC params into a generic map
func decodeParams(params json.RawMessage) (map[string]interface{}, error) {
	pMap := make(map[string]interface{})
	if len(params) == 0 {
		return pMap, nil
	}
	if err := json.Unmarshal(params, &pMap); err != nil {
		return nil, NewError(ErrInvalidParams, "invalid parameters format")
	}
	return pMap, nil
}

// int64Param reads a positive integer parameter
func int64Param(pMap map[string]interface{}, key string) (int64, bool) {
	raw, ok := pMap[key].(float64)
	if !ok || raw <= 0 {
		return 0, false
	}
	return int64(raw), true
}
