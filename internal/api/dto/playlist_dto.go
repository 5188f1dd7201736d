package dto

import "time"

// PlaylistCreateRequest 创建播放列表
type PlaylistCreateRequest struct {
	Name      string `json:"name" binding:"required"`
	Thumbnail string `json:"thumbnail" binding:"omitempty,max=1000"`
}

// PlaylistUpdateRequest 重命名或修改封面
type PlaylistUpdateRequest struct {
	Name      *string `json:"name"`
	Thumbnail *string `json:"thumbnail" binding:"omitempty,max=1000"`
}

// PlaylistVideoRequest 添加视频
type PlaylistVideoRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

// PlaylistInfo 播放列表，Items 仅在详情接口中填充
type PlaylistInfo struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Thumbnail  string      `json:"thumbnail"`
	Videos     []string    `json:"videos"`
	VideoCount int         `json:"videoCount"`
	Items      []VideoInfo `json:"items,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
