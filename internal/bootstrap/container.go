package bootstrap

import (
	"context"
	"fmt"
	"time"

	"notes-versioning-be/internal/config"
	"notes-versioning-be/internal/controller"
	"notes-versioning-be/internal/handler"
	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/internal/pkg/serverutils"
	"notes-versioning-be/internal/pkg/token"
	"notes-versioning-be/internal/repository/cache"
	"notes-versioning-be/internal/repository/memory"
	"notes-versioning-be/internal/repository/unitofwork"
	"notes-versioning-be/internal/service"
	"notes-versioning-be/internal/websocket"

	pktNats "notes-versioning-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	NoteController     controller.INoteController
	AuthController     controller.IAuthController
	VersionFeedHandler *handler.VersionFeedHandler

	// Background services, started by main.go
	ConsumerService service.IConsumerService
	FeedHub         *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	tokens, err := token.NewManager(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	c := &Container{Logger: sysLogger}

	// 2. Event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// relay must stay an untyped nil when NATS is off
	var relay service.EventRelay
	if cfg.App.NatsURL != "" {
		if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
			sysLogger.Warn("Bootstrap", "NATS unavailable, version events stay in-process", map[string]interface{}{"error": err.Error()})
		} else {
			relay = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	revoked := cache.NewRevokedTokenRepository(rdb)
	if revoked.Enabled() {
		c.closers = append(c.closers, func() { _ = revoked.Close() })
	}

	feedHub := websocket.NewHub(rdb, sysLogger)

	accounts := memory.NewAccountCache(cfg.Security.AccountCacheTTL)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.EventsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventsTopic, relay, feedHub, sysLogger)

	var denylist service.TokenDenylist
	if revoked.Enabled() {
		denylist = revoked
	}
	authService := service.NewAuthService(uowFactory, tokens, accounts, denylist, sysLogger)
	noteService := service.NewNoteService(uowFactory, publisherService, sysLogger, cfg.Versioning)

	// 5. Controllers
	requireAuth := serverutils.NewJwtMiddleware(authService)
	loginLimiter := serverutils.NewIPRateLimiter(cfg.Security.LoginRatePerMinute)

	c.AuthController = controller.NewAuthController(authService, requireAuth, loginLimiter.Middleware())
	c.NoteController = controller.NewNoteController(noteService, requireAuth)
	c.VersionFeedHandler = handler.NewVersionFeedHandler(authService, feedHub, sysLogger)
	c.ConsumerService = consumerService
	c.FeedHub = feedHub

	return c, nil
}

// Close releases bus, NATS and Redis connections in reverse order. The feed
// hub stops with the context passed to its Run.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// connectRedis returns nil when Redis is not configured or not reachable.
// Logout then only drops the client-side token and the feed hub stays local.
func connectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Bootstrap", "Redis unavailable, token revocation disabled", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
