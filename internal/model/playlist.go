package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Playlist 播放列表（MongoDB playlists 集合），同一用户下名称唯一
type Playlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user"`
	Name      string             `bson:"name"`
	Videos    []VideoID          `bson:"videos"`
	Thumbnail string             `bson:"thumbnail,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// Contains 是否已包含该视频
func (p *Playlist) Contains(videoID string) bool {
	for _, id := range p.Videos {
		if id == videoID {
			return true
		}
	}
	return false
}
