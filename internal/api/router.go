package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/internal/cache"
	"github.com/porchlight-social/porchlight/internal/db"
	"github.com/porchlight-social/porchlight/internal/feed"
	"github.com/porchlight-social/porchlight/internal/mentions"
	"github.com/porchlight-social/porchlight/internal/notify"
	"github.com/porchlight-social/porchlight/internal/realtime"
	"github.com/porchlight-social/porchlight/pkg/config"
	"github.com/porchlight-social/porchlight/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	bus     realtime.Bus
	cfg     *config.FeedConfig
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, bus realtime.Bus, cfg *config.FeedConfig) *Router {
	handler := NewJSONRPCHandler()
	router := &Router{
		handler: handler,
		db:      database,
		cache:   redisCache,
		bus:     bus,
		cfg:     cfg,
		logger:  logging.GetLogger().With(zap.String("component", "api-router")),
	}

	// Register all API methods
	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	repo := db.NewRepository(r.db.DB)

	profileRepo := db.NewProfileRepository(repo)
	postRepo := db.NewPostRepository(repo)
	echoRepo := db.NewEchoRepository(repo)
	likeRepo := db.NewLikeRepository(repo)
	replyRepo := db.NewReplyRepository(repo)
	notifRepo := db.NewNotificationRepository(repo)

	resolver := mentions.NewResolver(profileRepo)
	fanout := notify.NewFanout(resolver, notifRepo, r.bus)
	inbox := notify.NewInbox(notifRepo, r.cfg.NotifyRetention)

	composer := feed.NewComposer(postRepo, echoRepo, likeRepo, replyRepo, profileRepo, r.cfg.WindowSize)
	threads := feed.NewThreadManager(replyRepo, postRepo, profileRepo, fanout, r.bus)
	actions := feed.NewActions(postRepo, likeRepo, echoRepo, fanout, r.bus)

	// Feed API
	feedAPI := NewFeedAPI(composer, threads, r.cache, r.cfg)
	r.handler.RegisterMethod("feed.get_timeline", feedAPI.GetTimeline)
	r.handler.RegisterMethod("feed.get_thread", feedAPI.GetThread)

	// Engagement API
	engageAPI := NewEngageAPI(actions, threads)
	r.handler.RegisterMethod("post.create", engageAPI.CreatePost)
	r.handler.RegisterMethod("post.like", engageAPI.Like)
	r.handler.RegisterMethod("post.unlike", engageAPI.Unlike)
	r.handler.RegisterMethod("post.echo", engageAPI.Echo)
	r.handler.RegisterMethod("post.unecho", engageAPI.Unecho)
	r.handler.RegisterMethod("reply.create", engageAPI.CreateReply)

	// Notifications API
	notifAPI := NewNotificationsAPI(inbox)
	r.handler.RegisterMethod("notifications.list", notifAPI.List)
	r.handler.RegisterMethod("notifications.unread", notifAPI.Unread)
	r.handler.RegisterMethod("notifications.mark_read", notifAPI.MarkRead)
	r.handler.RegisterMethod("notifications.mark_all_read", notifAPI.MarkAllRead)

	// Profile API
	profileAPI := NewProfileAPI(profileRepo)
	r.handler.RegisterMethod("profile.get", profileAPI.Get)
	r.handler.RegisterMethod("profile.update", profileAPI.Update)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "porchlight-api",
	})
}
