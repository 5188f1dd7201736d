package service

import (
	"context"
	"io"
	"time"

	"vidhub-go/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 服务层依赖的存储接口，MongoDB/PostgreSQL 仓储与 memrepo 均实现这些接口。

type VideoRepo interface {
	Create(ctx context.Context, v *model.Video) error
	GetByRef(ctx context.Context, ref string) (*model.Video, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Video, error)
	List(ctx context.Context, skip, limit int) ([]model.Video, int64, error)
	ListAll(ctx context.Context) ([]model.Video, error)
	ListByOwner(ctx context.Context, owner int64) ([]model.Video, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, oid primitive.ObjectID, upd *model.VideoUpdate) (*model.Video, error)
	Delete(ctx context.Context, oid primitive.ObjectID) error
	IncrementViews(ctx context.Context, oid primitive.ObjectID) (int64, error)
	AdjustLikes(ctx context.Context, oid primitive.ObjectID, delta int64) (int64, error)
	MigrateLegacyViews(ctx context.Context) (int, error)
	Search(ctx context.Context, q *model.SearchQuery) ([]model.VideoHit, int64, error)
	Distinct(ctx context.Context, field string) ([]string, error)
}

type CommentRepo interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByVideo(ctx context.Context, videoID string, before *time.Time, limit int) ([]model.Comment, error)
	DeleteByVideo(ctx context.Context, videoID string) (int64, error)
	CountByVideos(ctx context.Context, videoIDs []string) (int64, error)
}

type LikeRepo interface {
	Create(ctx context.Context, userID int64, videoID string) error
	Delete(ctx context.Context, userID int64, videoID string) (bool, error)
	Exists(ctx context.Context, userID int64, videoID string) (bool, error)
	DeleteByVideo(ctx context.Context, videoID string) (int64, error)
}

type PlaylistRepo interface {
	Create(ctx context.Context, p *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Playlist, error)
	Update(ctx context.Context, id primitive.ObjectID, name, thumbnail *string) (*model.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, id primitive.ObjectID, videoID string) (bool, error)
	RemoveVideo(ctx context.Context, id primitive.ObjectID, videoID string) (bool, error)
}

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	List(ctx context.Context, skip, limit int) ([]model.User, int64, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
}

type SubscriptionRepo interface {
	Create(ctx context.Context, subscriberID, channelID int64) error
	Delete(ctx context.Context, subscriberID, channelID int64) (bool, error)
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
	ListChannels(ctx context.Context, subscriberID int64, skip, limit int) ([]int64, int64, error)
	CountSubscribers(ctx context.Context, channelID int64) (int64, error)
}

// SearchIndex 全文检索后端（Elasticsearch）
type SearchIndex interface {
	Search(ctx context.Context, q *model.SearchQuery) ([]string, map[string]float64, int64, error)
	Upsert(ctx context.Context, v *model.Video) error
	Remove(ctx context.Context, videoID string) error
	BulkUpsert(ctx context.Context, videos []model.Video) (success, failed int, err error)
}

// ObjectStorage 视频与封面文件存储（MinIO）
type ObjectStorage interface {
	Put(ctx context.Context, kind, objectName string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, kind, url string) error
}
