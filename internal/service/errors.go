package service

import "vidhub-go/internal/errs"

// 视频
var (
	ErrVideoNotFound     = errs.New(errs.ErrNotFound, "视频不存在")
	ErrVideoIDTaken      = errs.New(errs.ErrConflict, "视频 ID 已存在")
	ErrVideoNoPermission = errs.New(errs.ErrForbidden, "没有权限操作该视频")
	ErrNoFieldsToUpdate  = errs.Validation("没有需要更新的字段")
	ErrInvalidRating     = errs.Validation("分级必须是 G、PG、PG-13、R、NC-17 之一")
	ErrMissingVideoFile  = errs.Validation("缺少视频文件")
	ErrStorageDisabled   = errs.New(errs.ErrUnavailable, "对象存储未启用")
)

// 搜索
var ErrSearchIndexDisabled = errs.New(errs.ErrUnavailable, "搜索引擎未启用")

// 点赞
var (
	ErrLikeConflict = errs.New(errs.ErrConflict, "点赞状态已变化，请重试")
)

// 评论
var (
	ErrCommentNotFound     = errs.New(errs.ErrNotFound, "评论不存在")
	ErrCommentNoPermission = errs.New(errs.ErrForbidden, "只能删除自己的评论")
	ErrInvalidCursor       = errs.Validation("cursor 必须是 RFC3339 时间")
)

// 播放列表
var (
	ErrPlaylistNotFound       = errs.New(errs.ErrNotFound, "播放列表不存在")
	ErrPlaylistNoPermission   = errs.New(errs.ErrForbidden, "没有权限操作该播放列表")
	ErrPlaylistNameTaken      = errs.New(errs.ErrConflict, "已存在同名播放列表")
	ErrPlaylistNameInvalid    = errs.Validation("播放列表名称长度必须在 1 到 100 之间")
	ErrVideoAlreadyInPlaylist = errs.Validation("视频已在播放列表中")
	ErrVideoNotInPlaylist     = errs.Validation("视频不在播放列表中")
)

// 账号与订阅
var (
	ErrUserNotFound         = errs.New(errs.ErrNotFound, "用户不存在")
	ErrEmailExists          = errs.New(errs.ErrConflict, "邮箱已被注册")
	ErrInvalidCredential    = errs.New(errs.ErrUnauthorized, "邮箱或密码错误")
	ErrCannotSubscribeSelf  = errs.Validation("不能订阅自己")
	ErrAlreadySubscribed    = errs.New(errs.ErrConflict, "您已经订阅过该频道了")
	ErrSubscriptionNotFound = errs.New(errs.ErrNotFound, "您尚未订阅该频道")
	ErrCannotDemoteYourself = errs.Validation("不能取消自己的管理员权限")
)
