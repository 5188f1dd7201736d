package repository

import (
	"context"
	"time"

	infraMongo "vidhub-go/internal/infra/mongo"
	"vidhub-go/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LikeRepository struct {
	coll *mongo.Collection
}

func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{coll: db.Collection(infraMongo.CollectionLikes)}
}

// Create 插入点赞记录；(user, videoId) 唯一索引冲突时返回 Conflict
func (r *LikeRepository) Create(ctx context.Context, userID int64, videoID string) error {
	_, err := r.coll.InsertOne(ctx, &model.Like{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		VideoID:   videoID,
		CreatedAt: time.Now().UTC(),
	})
	return translate(err)
}

// Delete 返回是否真的删除了记录
func (r *LikeRepository) Delete(ctx context.Context, userID int64, videoID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user": userID, "videoId": videoID})
	if err != nil {
		return false, translate(err)
	}
	return res.DeletedCount > 0, nil
}

func (r *LikeRepository) Exists(ctx context.Context, userID int64, videoID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"user": userID, "videoId": videoID})
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

// DeleteByVideo 级联删除某视频的全部点赞
func (r *LikeRepository) DeleteByVideo(ctx context.Context, videoID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"videoId": videoID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}
