package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like 点赞记录（MongoDB likes 集合），(user, videoId) 唯一
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user"`
	VideoID   VideoID            `bson:"videoId"`
	CreatedAt time.Time          `bson:"createdAt"`
}
