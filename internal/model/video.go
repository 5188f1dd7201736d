package model

import (
	"fmt"
	"math"
	"time"

	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/viewcount"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
	"go.uber.org/zap"
)

// 视频分级
const (
	RatingG    = "G"
	RatingPG   = "PG"
	RatingPG13 = "PG-13"
	RatingR    = "R"
	RatingNC17 = "NC-17"
)

// VideoID 视频的应用层标识（如 "trend-1"），点赞、评论、播放列表都按它引用视频。
// MongoDB 的 _id 只在仓储内部使用
type VideoID = string

// DefaultCategory 未指定分类时使用
const DefaultCategory = "Uncategorized"

// ValidRating 检查分级是否合法
func ValidRating(r string) bool {
	switch r {
	case RatingG, RatingPG, RatingPG13, RatingR, RatingNC17:
		return true
	}
	return false
}

// ViewCount 整数播放量。
// 旧数据里 views 可能是 "1.2K" 这样的字符串，解码时按展示格式还原为整数，
// 无法解析的字符串按 0 处理，和聚合查询、迁移的处理一致。
type ViewCount int64

// UnmarshalBSONValue 兼容 int32/int64/double/string/null 五种存储形式
func (v *ViewCount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	val := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.Int32:
		*v = ViewCount(val.Int32())
	case bsontype.Int64:
		*v = ViewCount(val.Int64())
	case bsontype.Double:
		*v = ViewCount(math.Round(val.Double()))
	case bsontype.String:
		n, err := viewcount.Parse(val.StringValue())
		if err != nil {
			logger.Warn("Unparseable legacy views, treating as 0",
				zap.String("views", val.StringValue()),
				zap.Error(err),
			)
			n = 0
		}
		*v = ViewCount(n)
	case bsontype.Null, bsontype.Undefined:
		*v = 0
	default:
		return fmt.Errorf("cannot decode %s into ViewCount", t)
	}
	return nil
}

// Video 视频文档（MongoDB videos 集合）
//
// ObjectID 是存储层主键；ID 是对外的应用标识（如 "trend-1"、"user-1718000000000"），
// 所有接口都以 ID 为准。
type Video struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Thumbnail   string             `bson:"thumbnail"`
	URL         string             `bson:"url"`
	Duration    string             `bson:"duration"`
	Views       ViewCount          `bson:"views"`
	Category    string             `bson:"category"`
	Year        string             `bson:"year"`
	Rating      string             `bson:"rating"`
	UploadDate  string             `bson:"uploadDate"`
	Owner       *int64             `bson:"owner"`
	LikesCount  int64              `bson:"likesCount"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// OwnedBy 是否为该用户上传
func (v *Video) OwnedBy(userID int64) bool {
	return v.Owner != nil && *v.Owner == userID
}

// ApplyDefaults 填充分类、年份、分级、上传日期的默认值
func (v *Video) ApplyDefaults(now time.Time) {
	if v.Category == "" {
		v.Category = DefaultCategory
	}
	if v.Year == "" {
		v.Year = fmt.Sprintf("%d", now.Year())
	}
	if v.Rating == "" {
		v.Rating = RatingG
	}
	if v.UploadDate == "" {
		v.UploadDate = now.Format("2006-01-02")
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
}

// VideoHit 搜索命中结果，Score 仅在有文本查询时有意义
type VideoHit struct {
	Video `bson:",inline"`
	Score float64 `bson:"score,omitempty"`
}

// VideoUpdate 视频元数据的部分更新，nil 字段不修改
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
	URL         *string
	Duration    *string
	Category    *string
	Year        *string
	Rating      *string
}

// Empty 是否没有任何需要更新的字段
func (u *VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Thumbnail == nil && u.URL == nil &&
		u.Duration == nil && u.Category == nil && u.Year == nil && u.Rating == nil
}

// Apply 把更新应用到内存中的视频对象
func (u *VideoUpdate) Apply(v *Video) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.Title, u.Title)
	set(&v.Description, u.Description)
	set(&v.Thumbnail, u.Thumbnail)
	set(&v.URL, u.URL)
	set(&v.Duration, u.Duration)
	set(&v.Category, u.Category)
	set(&v.Year, u.Year)
	set(&v.Rating, u.Rating)
}

// 搜索排序方式
const (
	SortCreatedAt = "createdAt"
	SortViews     = "views"
	SortRelevance = "relevance"
)

// SearchQuery 搜索条件（已规整：去空白、排序方式已降级）
type SearchQuery struct {
	Text     string
	Category string
	Year     string
	Sort     string
	Skip     int
	Limit    int
}

// HasText 是否包含文本查询
func (q *SearchQuery) HasText() bool {
	return q.Text != ""
}
