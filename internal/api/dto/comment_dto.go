package dto

import "time"

// CommentCreateRequest 发表评论请求，长度在清洗后由服务层校验
type CommentCreateRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentListQuery 评论列表查询参数
type CommentListQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
}

// CommentAuthor 评论作者的最小身份信息
type CommentAuthor struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// CommentInfo 评论信息
type CommentInfo struct {
	ID        string        `json:"id"`
	VideoID   string        `json:"videoId"`
	User      CommentAuthor `json:"user"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CommentPage 一页评论；NextCursor 为最后一条的 createdAt，没有更多时为 nil
type CommentPage struct {
	Items      []CommentInfo
	NextCursor *string
	HasMore    bool
}
