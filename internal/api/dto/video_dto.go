package dto

import "time"

// VideoCreateRequest 创建视频元数据（id 可选，不传则自动生成）
type VideoCreateRequest struct {
	ID          string `json:"id" binding:"omitempty,max=100"`
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Thumbnail   string `json:"thumbnail" binding:"omitempty,max=1000"`
	URL         string `json:"url" binding:"required,max=1000"`
	Duration    string `json:"duration" binding:"omitempty,max=20"`
	Category    string `json:"category" binding:"omitempty,max=100"`
	Year        string `json:"year" binding:"omitempty,max=10"`
	Rating      string `json:"rating" binding:"omitempty,oneof=G PG PG-13 R NC-17"`
}

// VideoUploadRequest 上传视频（multipart/form-data），文件字段为 video 与可选的 thumbnail
type VideoUploadRequest struct {
	Title       string `form:"title" binding:"required,min=1,max=200"`
	Description string `form:"description" binding:"omitempty,max=5000"`
	Duration    string `form:"duration" binding:"omitempty,max=20"`
	Category    string `form:"category" binding:"omitempty,max=100"`
	Year        string `form:"year" binding:"omitempty,max=10"`
	Rating      string `form:"rating" binding:"omitempty,oneof=G PG PG-13 R NC-17"`
}

// VideoUpdateRequest 视频元数据部分更新；id、播放量、点赞数不可修改
type VideoUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Thumbnail   *string `json:"thumbnail" binding:"omitempty,max=1000"`
	URL         *string `json:"url" binding:"omitempty,min=1,max=1000"`
	Duration    *string `json:"duration" binding:"omitempty,max=20"`
	Category    *string `json:"category" binding:"omitempty,min=1,max=100"`
	Year        *string `json:"year" binding:"omitempty,max=10"`
	Rating      *string `json:"rating" binding:"omitempty,oneof=G PG PG-13 R NC-17"`
}

// VideoInfo 视频信息，views 为展示格式（如 "1.2K"）
type VideoInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	URL         string    `json:"url"`
	Duration    string    `json:"duration"`
	Views       string    `json:"views"`
	Category    string    `json:"category"`
	Year        string    `json:"year"`
	Rating      string    `json:"rating"`
	UploadDate  string    `json:"uploadDate"`
	Owner       *int64    `json:"owner"`
	LikesCount  int64     `json:"likesCount"`
	Score       *float64  `json:"score,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoListData 视频列表响应数据
type VideoListData struct {
	Videos     []VideoInfo `json:"videos"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int64       `json:"totalPages"`
}

// ViewResult 播放量 +1 后的结果
type ViewResult struct {
	Views string `json:"views"`
}

// LikeResult 点赞切换结果
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// LikeStatus 点赞状态，未登录时 isLiked 恒为 false
type LikeStatus struct {
	LikesCount int64 `json:"likesCount"`
	IsLiked    bool  `json:"isLiked"`
}

// UserStats 当前用户上传视频的汇总
type UserStats struct {
	TotalUploads  int64  `json:"totalUploads"`
	TotalViews    int64  `json:"totalViews"`
	TotalViewsFmt string `json:"totalViewsFormatted"`
	TotalLikes    int64  `json:"totalLikes"`
	TotalComments int64  `json:"totalComments"`
}
