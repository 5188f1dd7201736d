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

type PlaylistRepository struct {
	coll *mongo.Collection
}

func NewPlaylistRepository(db *mongo.Database) *PlaylistRepository {
	return &PlaylistRepository{coll: db.Collection(infraMongo.CollectionPlaylists)}
}

// Create 同一用户下重名返回 Conflict
func (r *PlaylistRepository) Create(ctx context.Context, p *model.Playlist) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Videos == nil {
		p.Videos = []string{}
	}
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *PlaylistRepository) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.Wrap(errs.ErrNotFound, err)
	}
	var p model.Playlist
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ListByUser 按创建时间倒序
func (r *PlaylistRepository) ListByUser(ctx context.Context, userID int64) ([]model.Playlist, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	playlists := []model.Playlist{}
	if err := cur.All(ctx, &playlists); err != nil {
		return nil, translate(err)
	}
	return playlists, nil
}

// Update 修改名称或封面，nil 表示不修改
func (r *PlaylistRepository) Update(ctx context.Context, id primitive.ObjectID, name, thumbnail *string) (*model.Playlist, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if thumbnail != nil {
		set["thumbnail"] = *thumbnail
	}

	var p model.Playlist
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PlaylistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return errs.Wrap(errs.ErrNotFound, mongo.ErrNoDocuments)
	}
	return nil
}

// AddVideo 条件追加；返回 false 表示视频已在列表中
func (r *PlaylistRepository) AddVideo(ctx context.Context, id primitive.ObjectID, videoID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "videos": bson.M{"$ne": videoID}},
		bson.M{
			"$push": bson.M{"videos": videoID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, translate(err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	return false, r.mustExist(ctx, id)
}

// RemoveVideo 返回 false 表示视频不在列表中
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, id primitive.ObjectID, videoID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "videos": videoID},
		bson.M{
			"$pull": bson.M{"videos": videoID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, translate(err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	return false, r.mustExist(ctx, id)
}

func (r *PlaylistRepository) mustExist(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return errs.Wrap(errs.ErrNotFound, mongo.ErrNoDocuments)
	}
	return nil
}
