package service

import (
	"math"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/viewcount"
)

// toVideoInfo 将 model.Video 转换为 dto.VideoInfo，播放量按展示格式输出
func toVideoInfo(v *model.Video) *dto.VideoInfo {
	return &dto.VideoInfo{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Thumbnail:   v.Thumbnail,
		URL:         v.URL,
		Duration:    v.Duration,
		Views:       viewcount.Format(int64(v.Views)),
		Category:    v.Category,
		Year:        v.Year,
		Rating:      v.Rating,
		UploadDate:  v.UploadDate,
		Owner:       v.Owner,
		LikesCount:  v.LikesCount,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toVideoInfos(videos []model.Video) []dto.VideoInfo {
	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i]))
	}
	return items
}

func toUserInfo(u *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// clampPage 规整分页参数：page 从 1 开始，limit 超出 [1, max] 时取默认值，
// page 上限保证 (page-1)*limit 不溢出
func clampPage(page, limit, def, max int) (int, int) {
	if limit < 1 || limit > max {
		limit = def
	}
	return boundPage(page, limit), limit
}

// boundPage page 限制在 [1, math.MaxInt/limit]
func boundPage(page, limit int) int {
	if page < 1 {
		return 1
	}
	if limit > 0 && page > math.MaxInt/limit {
		return math.MaxInt / limit
	}
	return page
}
