package service

import (
	"context"
	"errors"
	"time"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/errs"
	"vidhub-go/internal/events"
	"vidhub-go/internal/metrics"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/sanitize"

	"go.uber.org/zap"
)

const (
	defaultCommentLimit = 20
	maxCommentLimit     = 100
)

type CommentService struct {
	commentRepo CommentRepo
	videoRepo   VideoRepo
	userRepo    UserRepo
	publisher   events.Publisher
	now         func() time.Time
}

func NewCommentService(commentRepo CommentRepo, videoRepo VideoRepo, userRepo UserRepo, publisher events.Publisher) *CommentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ParseCursor 解析 RFC3339(Nano) 格式的游标，空串表示第一页
func ParseCursor(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &t, nil
}

// List 按时间倒序的游标分页：多取一条判断 hasMore，nextCursor 为本页最后一条的 createdAt。
// createdAt 相同的评论之间顺序不确定，跨页边界时可能漏掉与游标同一时刻的评论。
func (s *CommentService) List(ctx context.Context, ref string, cursor *time.Time, limit int) (*dto.CommentPage, error) {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxCommentLimit {
		limit = defaultCommentLimit
	}

	comments, err := s.commentRepo.ListByVideo(ctx, video.ID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &dto.CommentPage{HasMore: len(comments) > limit}
	if page.HasMore {
		comments = comments[:limit]
		next := comments[len(comments)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
		page.NextCursor = &next
	}
	page.Items = s.withAuthors(ctx, comments)
	return page, nil
}

// withAuthors 批量补全作者邮箱，账号服务不可用时只返回作者 ID
func (s *CommentService) withAuthors(ctx context.Context, comments []model.Comment) []dto.CommentInfo {
	ids := make([]int64, 0, len(comments))
	seen := make(map[int64]bool, len(comments))
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}

	emails := make(map[int64]string, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			logger.Warn("Load comment authors failed", zap.Error(err))
		}
		for _, u := range users {
			emails[u.ID] = u.Email
		}
	}

	items := make([]dto.CommentInfo, 0, len(comments))
	for i := range comments {
		items = append(items, toCommentInfo(&comments[i], emails[comments[i].UserID]))
	}
	return items
}

func toCommentInfo(c *model.Comment, email string) dto.CommentInfo {
	return dto.CommentInfo{
		ID:        c.ID.Hex(),
		VideoID:   c.VideoID,
		User:      dto.CommentAuthor{ID: c.UserID, Email: email},
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

// Add 发表评论：清洗后 1~2000 个字符
func (s *CommentService) Add(ctx context.Context, userID int64, ref, rawText string) (*dto.CommentInfo, error) {
	text, err := sanitize.CommentText(rawText)
	if err != nil {
		return nil, errs.Validation(err.Error())
	}

	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		VideoID:   video.ID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	email := ""
	if u, err := s.userRepo.GetByID(ctx, userID); err == nil {
		email = u.Email
	}

	metrics.CommentsCreated.Inc()
	s.publisher.Publish(events.Event{Type: events.CommentAdded, VideoID: video.ID, UserID: userID, CommentID: comment.ID.Hex()})

	info := toCommentInfo(comment, email)
	return &info, nil
}

// Delete 只有评论作者可以删除
func (s *CommentService) Delete(ctx context.Context, userID int64, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.UserID != userID {
		return ErrCommentNoPermission
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	s.publisher.Publish(events.Event{Type: events.CommentDeleted, VideoID: comment.VideoID, UserID: userID, CommentID: commentID})
	return nil
}
