package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidhub-go/internal/errs"
	infraMongo "vidhub-go/internal/infra/mongo"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/viewcount"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type VideoRepository struct {
	coll *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{coll: db.Collection(infraMongo.CollectionVideos)}
}

func (r *VideoRepository) findOne(ctx context.Context, filter bson.M) (*model.Video, error) {
	var v model.Video
	if err := r.coll.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// GetByRef 按应用 ID 查询；找不到且 ref 形如 ObjectID 时，再按存储主键兜底查询（兼容旧链接）
func (r *VideoRepository) GetByRef(ctx context.Context, ref string) (*model.Video, error) {
	v, err := r.findOne(ctx, bson.M{"id": ref})
	if err == nil || !errors.Is(err, errs.ErrNotFound) {
		return v, err
	}

	oid, perr := primitive.ObjectIDFromHex(ref)
	if perr != nil {
		return nil, err
	}
	v, err = r.findOne(ctx, bson.M{"_id": oid})
	if err == nil {
		logger.Debug("Video resolved by legacy ObjectID", zap.String("ref", ref), zap.String("video_id", v.ID))
	}
	return v, err
}

// GetByIDs 批量查询，不保证顺序
func (r *VideoRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}}, nil)
}

func (r *VideoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Video, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	var videos []model.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, translate(err)
	}
	return videos, nil
}

// Create 新建视频，应用 ID 重复时返回 Conflict
func (r *VideoRepository) Create(ctx context.Context, v *model.Video) error {
	if v.ObjectID.IsZero() {
		v.ObjectID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, v)
	return translate(err)
}

// List 按创建时间倒序分页
func (r *VideoRepository) List(ctx context.Context, skip, limit int) ([]model.Video, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, translate(err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	videos, err := r.find(ctx, bson.M{}, opts)
	return videos, total, err
}

// ListAll 全量读取（索引重建用）
func (r *VideoRepository) ListAll(ctx context.Context) ([]model.Video, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListByOwner 某用户上传的视频
func (r *VideoRepository) ListByOwner(ctx context.Context, owner int64) ([]model.Video, error) {
	return r.find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// Count 视频总数
func (r *VideoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}

// Update 部分更新元数据，返回更新后的文档
func (r *VideoRepository) Update(ctx context.Context, oid primitive.ObjectID, upd *model.VideoUpdate) (*model.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	put := func(key string, val *string) {
		if val != nil {
			set[key] = *val
		}
	}
	put("title", upd.Title)
	put("description", upd.Description)
	put("thumbnail", upd.Thumbnail)
	put("url", upd.URL)
	put("duration", upd.Duration)
	put("category", upd.Category)
	put("year", upd.Year)
	put("rating", upd.Rating)

	var v model.Video
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&v)
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// Delete 删除视频文档
func (r *VideoRepository) Delete(ctx context.Context, oid primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return errs.Wrap(errs.ErrNotFound, mongo.ErrNoDocuments)
	}
	return nil
}

type viewsProjection struct {
	Views model.ViewCount `bson:"views"`
}

type likesProjection struct {
	LikesCount int64 `bson:"likesCount"`
}

// IncrementViews 播放量原子 +1，返回新值。
// 旧数据 views 仍为字符串时 $inc 会报类型错误，此时转为整数并 +1（同时完成迁移）。
func (r *VideoRepository) IncrementViews(ctx context.Context, oid primitive.ObjectID) (int64, error) {
	for attempt := 0; attempt < 3; attempt++ {
		var out viewsProjection
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": oid},
			bson.M{"$inc": bson.M{"views": 1}},
			options.FindOneAndUpdate().
				SetReturnDocument(options.After).
				SetProjection(bson.M{"views": 1}),
		).Decode(&out)
		if err == nil {
			return int64(out.Views), nil
		}
		if !isTypeMismatch(err) {
			return 0, translate(err)
		}

		n, done, err := r.incrementLegacyViews(ctx, oid)
		if err != nil {
			return 0, err
		}
		if done {
			return n, nil
		}
	}
	return 0, fmt.Errorf("increment views for %s: too much contention", oid.Hex())
}

// incrementLegacyViews 对字符串形式的 views 做条件写：只有值未被他人修改时才生效
func (r *VideoRepository) incrementLegacyViews(ctx context.Context, oid primitive.ObjectID) (int64, bool, error) {
	var raw bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"views": 1})).Decode(&raw)
	if err != nil {
		return 0, false, translate(err)
	}
	old, ok := raw["views"].(string)
	if !ok {
		// 已被并发迁移，回到 $inc
		return 0, false, nil
	}

	next := viewcount.MustParse(old) + 1
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "views": old},
		bson.M{"$set": bson.M{"views": next}},
	)
	if err != nil {
		return 0, false, translate(err)
	}
	if res.MatchedCount == 0 {
		return 0, false, nil
	}
	logger.Info("Legacy string views migrated on increment",
		zap.String("object_id", oid.Hex()),
		zap.String("old", old),
		zap.Int64("new", next),
	)
	return next, true, nil
}

// MigrateLegacyViews 把所有字符串形式的 views 转为整数，返回迁移条数
func (r *VideoRepository) MigrateLegacyViews(ctx context.Context) (int, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"views": bson.M{"$type": "string"}},
		options.Find().SetProjection(bson.M{"views": 1}),
	)
	if err != nil {
		return 0, translate(err)
	}
	defer cur.Close(ctx)

	migrated := 0
	for cur.Next(ctx) {
		var doc struct {
			ID    primitive.ObjectID `bson:"_id"`
			Views string             `bson:"views"`
		}
		if err := cur.Decode(&doc); err != nil {
			return migrated, translate(err)
		}

		n, perr := viewcount.Parse(doc.Views)
		if perr != nil {
			logger.Warn("Unparseable legacy views, resetting to 0",
				zap.String("object_id", doc.ID.Hex()),
				zap.String("views", doc.Views),
			)
		}
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": doc.ID, "views": doc.Views},
			bson.M{"$set": bson.M{"views": n}},
		)
		if err != nil {
			return migrated, translate(err)
		}
		migrated += int(res.ModifiedCount)
	}
	return migrated, translate(cur.Err())
}

// AdjustLikes 点赞计数增减，减少时不会低于 0，返回最新计数
func (r *VideoRepository) AdjustLikes(ctx context.Context, oid primitive.ObjectID, delta int64) (int64, error) {
	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["likesCount"] = bson.M{"$gte": -delta}
	}

	var out likesProjection
	err := r.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"likesCount": delta}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"likesCount": 1}),
	).Decode(&out)
	if err == nil {
		return out.LikesCount, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) || delta >= 0 {
		return 0, translate(err)
	}

	// 计数已经为 0，保持下限
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"likesCount": 1})).Decode(&out)
	if err != nil {
		return 0, translate(err)
	}
	return out.LikesCount, nil
}

// Search 过滤、排序、分页；total 在 skip/limit 之前统计
func (r *VideoRepository) Search(ctx context.Context, q *model.SearchQuery) ([]model.VideoHit, int64, error) {
	match := SearchMatch(q)

	countCur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$count", Value: "total"}},
	})
	if err != nil {
		return nil, 0, translate(err)
	}
	var counted []struct {
		Total int64 `bson:"total"`
	}
	if err := countCur.All(ctx, &counted); err != nil {
		return nil, 0, translate(err)
	}
	var total int64
	if len(counted) > 0 {
		total = counted[0].Total
	}
	if total == 0 {
		return []model.VideoHit{}, 0, nil
	}

	cur, err := r.coll.Aggregate(ctx, SearchPipeline(q))
	if err != nil {
		return nil, 0, translate(err)
	}
	defer cur.Close(ctx)

	hits := []model.VideoHit{}
	if err := cur.All(ctx, &hits); err != nil {
		return nil, 0, translate(err)
	}
	return hits, total, nil
}

// SearchMatch 构造 $match 条件：文本、分类、年份三者取交集
func SearchMatch(q *model.SearchQuery) bson.M {
	match := bson.M{}
	if q.HasText() {
		match["$text"] = bson.M{"$search": q.Text}
	}
	if q.Category != "" {
		match["category"] = q.Category
	}
	if q.Year != "" {
		match["year"] = q.Year
	}
	return match
}

// SearchPipeline 构造完整聚合管道
func SearchPipeline(q *model.SearchQuery) mongo.Pipeline {
	addFields := bson.M{"viewsNumeric": ViewsNumericExpr("$views")}
	if q.HasText() {
		addFields["score"] = bson.M{"$meta": "textScore"}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: SearchMatch(q)}},
		{{Key: "$addFields", Value: addFields}},
		{{Key: "$sort", Value: SearchSort(q)}},
		{{Key: "$skip", Value: int64(q.Skip)}},
		{{Key: "$limit", Value: int64(q.Limit)}},
	}
}

// SearchSort 排序规则；_id 作为最终稳定排序键
func SearchSort(q *model.SearchQuery) bson.D {
	switch {
	case q.Sort == model.SortViews:
		return bson.D{{Key: "viewsNumeric", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	case q.Sort == model.SortRelevance && q.HasText():
		return bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// ViewsNumericExpr 查询时把 views 统一换算为数值：
// 数值原样返回；字符串按 K/M/B 后缀解析，后缀前允许空格（与 viewcount.Parse 规则一致）；
// 负数与其他情况为 0。
func ViewsNumericExpr(field string) bson.M {
	str := bson.M{"$toLower": bson.M{"$trim": bson.M{"input": field}}}

	decode := bson.M{"$let": bson.M{
		"vars": bson.M{"s": str},
		"in": bson.M{"$let": bson.M{
			"vars": bson.M{
				"n":    bson.M{"$strLenCP": "$$s"},
				"last": bson.M{"$substrCP": bson.A{"$$s", bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{bson.M{"$strLenCP": "$$s"}, 1}}}}, 1}},
			},
			"in": bson.M{"$let": bson.M{
				"vars": bson.M{
					"mult": bson.M{"$switch": bson.M{
						"branches": bson.A{
							bson.M{"case": bson.M{"$eq": bson.A{"$$last", "k"}}, "then": 1000},
							bson.M{"case": bson.M{"$eq": bson.A{"$$last", "m"}}, "then": 1000000},
							bson.M{"case": bson.M{"$eq": bson.A{"$$last", "b"}}, "then": 1000000000},
						},
						"default": 1,
					}},
				},
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$n", 0}},
					0,
					bson.M{"$toLong": bson.M{"$round": bson.A{
						bson.M{"$multiply": bson.A{bson.M{"$max": bson.A{0,
							bson.M{"$convert": bson.M{
								"input": bson.M{"$cond": bson.A{
									bson.M{"$eq": bson.A{"$$mult", 1}},
									"$$s",
									bson.M{"$trim": bson.M{"input": bson.M{"$substrCP": bson.A{"$$s", 0, bson.M{"$subtract": bson.A{"$$n", 1}}}}}},
								}},
								"to":      "double",
								"onError": 0,
								"onNull":  0,
							}}}},
							"$$mult",
						}},
						0,
					}}},
				}},
			}},
		}},
	}}

	return bson.M{"$switch": bson.M{
		"branches": bson.A{
			bson.M{
				"case": bson.M{"$in": bson.A{bson.M{"$type": field}, bson.A{"int", "long", "double", "decimal"}}},
				"then": bson.M{"$toLong": field},
			},
			bson.M{
				"case": bson.M{"$eq": bson.A{bson.M{"$type": field}, "string"}},
				"then": decode,
			},
		},
		"default": 0,
	}}
}

// Distinct 某字段的去重取值（过滤空值），数值统一转为字符串
func (r *VideoRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, field, bson.M{field: bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, translate(err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case int32, int64, float64:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out, nil
}
