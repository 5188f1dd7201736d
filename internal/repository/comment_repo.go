package repository

import (
	"context"
	"time"

	"vidhub-go/internal/errs"
	infraMongo "vidhub-go/internal/infra/mongo"
	"vidhub-go/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{coll: db.Collection(infraMongo.CollectionComments)}
}

// Create 发表评论，写入后 c.ID 为新生成的主键
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

// GetByID 非法 ID 视为不存在
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.Wrap(errs.ErrNotFound, err)
	}
	var c model.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return errs.Wrap(errs.ErrNotFound, mongo.ErrNoDocuments)
	}
	return nil
}

// ListByVideo 按创建时间倒序取评论；before 非空时只取更早的评论（游标分页）
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID string, before *time.Time, limit int) ([]model.Comment, error) {
	filter := bson.M{"videoId": videoID}
	if before != nil {
		filter["createdAt"] = bson.M{"$lt": *before}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	comments := []model.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

// DeleteByVideo 级联删除某视频下的全部评论
func (r *CommentRepository) DeleteByVideo(ctx context.Context, videoID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"videoId": videoID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

// CountByVideos 统计多个视频的评论总数
func (r *CommentRepository) CountByVideos(ctx context.Context, videoIDs []string) (int64, error) {
	if len(videoIDs) == 0 {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"videoId": bson.M{"$in": videoIDs}})
	return n, translate(err)
}
