package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment 评论文档（MongoDB comments 集合），创建后只允许删除
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	VideoID   VideoID            `bson:"videoId"`
	UserID    int64              `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}
