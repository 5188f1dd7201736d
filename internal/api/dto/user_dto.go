package dto

// SetAdminRequest 设置管理员请求
type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

// UserListData 用户列表（管理员）
type UserListData struct {
	Users      []UserInfo `json:"users"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int64      `json:"totalPages"`
}

// ChannelInfo 订阅的频道
type ChannelInfo struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Subscribers int64  `json:"subscribers"`
}

// SubscriptionListData 订阅列表
type SubscriptionListData struct {
	Channels   []ChannelInfo `json:"channels"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int64         `json:"totalPages"`
}

// SubscriptionStatus 订阅状态
type SubscriptionStatus struct {
	Subscribed  bool  `json:"subscribed"`
	Subscribers int64 `json:"subscribers"`
}
