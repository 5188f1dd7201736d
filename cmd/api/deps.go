package main

import (
	"context"

	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/config"
	"vidhub-go/internal/events"
	"vidhub-go/internal/infra/database"
	infraES "vidhub-go/internal/infra/elasticsearch"
	infraKafka "vidhub-go/internal/infra/kafka"
	infraMinio "vidhub-go/internal/infra/minio"
	infraMongo "vidhub-go/internal/infra/mongo"
	infraRedis "vidhub-go/internal/infra/redis"
	"vidhub-go/internal/repository"
	"vidhub-go/internal/repository/memrepo"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repoSet struct {
	videos        service.VideoRepo
	comments      service.CommentRepo
	likes         service.LikeRepo
	playlists     service.PlaylistRepo
	users         service.UserRepo
	subscriptions service.SubscriptionRepo
}

type deps struct {
	repos       *repoSet
	redis       *redis.Client
	storage     service.ObjectStorage
	searchIndex service.SearchIndex
	kafka       bool
}

// initDeps 按配置初始化存储与可选依赖。
// 主存储失败直接退出；Redis、MinIO、Kafka、Elasticsearch 失败只告警并降级
func initDeps(cfg *config.Config) (*deps, func()) {
	var closers []func() error
	d := &deps{}

	if cfg.Storage.InMemory() {
		logger.Warn("Using in-memory storage, data will be lost on restart")
		d.repos = &repoSet{
			videos:        memrepo.NewVideos(),
			comments:      memrepo.NewComments(),
			likes:         memrepo.NewLikes(),
			playlists:     memrepo.NewPlaylists(),
			users:         memrepo.NewUsers(),
			subscriptions: memrepo.NewSubscriptions(),
		}
	} else {
		// 账号与订阅：PostgreSQL
		if err := database.Init(&cfg.Database, cfg.App.Mode == "debug"); err != nil {
			logger.Fatal("Failed to init database", zap.Error(err))
		}
		closers = append(closers, database.Close)
		if err := database.AutoMigrate(); err != nil {
			logger.Fatal("Failed to auto migrate", zap.Error(err))
		}

		// 视频、评论、点赞、播放列表：MongoDB
		if err := infraMongo.Init(&cfg.Mongo); err != nil {
			logger.Fatal("Failed to init mongodb", zap.Error(err))
		}
		closers = append(closers, infraMongo.Close)

		db := database.Get()
		mdb := infraMongo.DB()
		d.repos = &repoSet{
			videos:        repository.NewVideoRepository(mdb),
			comments:      repository.NewCommentRepository(mdb),
			likes:         repository.NewLikeRepository(mdb),
			playlists:     repository.NewPlaylistRepository(mdb),
			users:         repository.NewUserRepository(db),
			subscriptions: repository.NewSubscriptionRepository(db),
		}
	}

	// 初始化Redis（可选，失败则缓存与限流退化为进程内）
	if cfg.Redis.Enabled {
		if err := infraRedis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis init failed, cache disabled", zap.Error(err))
		} else {
			d.redis = infraRedis.Get()
			closers = append(closers, infraRedis.Close)
		}
	}

	// 初始化MinIO（可选，未启用时上传接口返回 503）
	if cfg.MinIO.Enabled {
		if err := infraMinio.Init(&cfg.MinIO); err != nil {
			logger.Warn("MinIO init failed, upload disabled", zap.Error(err))
		} else {
			d.storage = infraMinio.NewStorage()
		}
	}

	// 初始化Kafka生产者（可选，索引同步改为进程内订阅）
	if cfg.Kafka.Enabled {
		if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
			logger.Warn("Kafka producer init failed", zap.Error(err))
		} else {
			d.kafka = true
			closers = append(closers, infraKafka.CloseProducer)
		}
	}

	// 初始化 Elasticsearch（可选，失败则搜索降级到 MongoDB 聚合）
	if cfg.Elasticsearch.Enabled {
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Warn("Elasticsearch init failed, search will fallback to mongo", zap.Error(err))
		} else {
			closers = append(closers, infraES.Close)
			if err := infraES.InitIndexes(cfg.Elasticsearch.VideoIndex()); err != nil {
				logger.Warn("Elasticsearch index init failed", zap.Error(err))
			}
			d.searchIndex = infraES.NewVideoIndex(cfg.Elasticsearch.VideoIndex())
		}
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Close resource failed", zap.Error(err))
			}
		}
	}
	return d, cleanup
}

// newEventBus 注册事件订阅者：缓存失效、Kafka 投递；
// 没有 Kafka 但有 Elasticsearch 时在进程内同步索引
func newEventBus(cfg *config.Config, d *deps) *events.Bus {
	bus := events.NewBus()

	cache := service.NewCacheService(d.redis)
	if cache.Enabled() {
		bus.Subscribe("cache", 512, cache.InvalidationHandler())
	}

	switch {
	case d.kafka:
		bus.Subscribe("kafka", 1024, infraKafka.EventSink(cfg.Kafka.Topic("engagement")))
	case d.searchIndex != nil:
		sync := service.NewIndexSyncService(d.repos.videos, d.searchIndex)
		bus.Subscribe("index", 1024, func(ctx context.Context, ev events.Event) error {
			return sync.HandleEvent(ctx, &ev)
		})
	}
	return bus
}

// newLimiter 有 Redis 时多实例共享计数，否则按进程计数
func newLimiter(d *deps) middleware.Limiter {
	if d.redis != nil {
		return middleware.NewRedisLimiter(d.redis)
	}
	return middleware.NewMemoryLimiter()
}
