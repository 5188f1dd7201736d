package mongo

import (
	"context"
	"fmt"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// 集合名
const (
	CollectionVideos    = "videos"
	CollectionComments  = "comments"
	CollectionLikes     = "likes"
	CollectionPlaylists = "playlists"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// Init 连接 MongoDB 并创建索引
func Init(cfg *config.MongoConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.TimeoutDuration()).
		SetTimeout(cfg.TimeoutDuration())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect mongodb: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	client = c
	db = c.Database(cfg.Database)

	if err := EnsureIndexes(ctx, db); err != nil {
		return err
	}

	logger.Info("MongoDB connected",
		zap.String("database", cfg.Database),
		zap.Uint64("max_pool_size", cfg.MaxPoolSize),
	)
	return nil
}

// EnsureIndexes 创建业务依赖的索引（唯一约束、排序、全文检索）
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionVideos: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uq_videos_id")},
			{Keys: bson.D{{Key: "owner", Value: 1}}, Options: options.Index().SetName("idx_videos_owner")},
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("idx_videos_category")},
			{Keys: bson.D{{Key: "year", Value: 1}}, Options: options.Index().SetName("idx_videos_year")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_videos_created_at")},
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "description", Value: "text"},
					{Key: "category", Value: "text"},
				},
				Options: options.Index().
					SetName("txt_videos_search").
					SetWeights(bson.D{{Key: "title", Value: 10}, {Key: "description", Value: 2}, {Key: "category", Value: 1}}),
			},
		},
		CollectionComments: {
			{Keys: bson.D{{Key: "videoId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_comments_video_created")},
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetName("idx_comments_user")},
		},
		CollectionLikes: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "videoId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uq_likes_user_video")},
			{Keys: bson.D{{Key: "videoId", Value: 1}}, Options: options.Index().SetName("idx_likes_video")},
		},
		CollectionPlaylists: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uq_playlists_user_name")},
		},
	}

	for coll, models := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	logger.Info("MongoDB indexes ensured")
	return nil
}

// DB 获取数据库实例
func DB() *mongo.Database {
	return db
}

// Ping 健康检查
func Ping(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("mongodb client not initialized")
	}
	return client.Ping(ctx, nil)
}

// Close 断开连接
func Close() error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("MongoDB connection closed")
	return client.Disconnect(ctx)
}
