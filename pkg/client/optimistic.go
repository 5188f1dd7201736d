package client

import (
	"context"
	"sync"
	"time"

	"vidhub-go/internal/api/dto"
)

// Undo 撤销一次本地修改
type Undo func()

// Mutation 乐观更新：Apply 先改本地状态并返回撤销描述，Commit 调用服务端
// Commit 失败时执行撤销，本地状态回到 Apply 之前
type Mutation struct {
	Apply  func() Undo
	Commit func(ctx context.Context) error
}

// Run 执行一次乐观更新
func Run(ctx context.Context, m Mutation) error {
	undo := m.Apply()
	if err := m.Commit(ctx); err != nil {
		if undo != nil {
			undo()
		}
		return err
	}
	return nil
}

// LikeState 本地展示的点赞状态
type LikeState struct {
	mu    sync.Mutex
	liked bool
	count int64
}

func NewLikeState(liked bool, count int64) *LikeState {
	return &LikeState{liked: liked, count: count}
}

// Snapshot 当前的 liked 与点赞数
func (s *LikeState) Snapshot() (bool, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liked, s.count
}

func (s *LikeState) set(liked bool, count int64) {
	s.mu.Lock()
	s.liked, s.count = liked, count
	s.mu.Unlock()
}

// ToggleLikeOptimistic 先在本地翻转点赞状态，成功后以服务端结果为准，失败时恢复原来的 {liked, count}
func (c *Client) ToggleLikeOptimistic(ctx context.Context, videoID string, state *LikeState) error {
	return Run(ctx, Mutation{
		Apply: func() Undo {
			state.mu.Lock()
			prevLiked, prevCount := state.liked, state.count
			state.liked = !prevLiked
			if state.liked {
				state.count++
			} else if state.count > 0 {
				state.count--
			}
			state.mu.Unlock()
			return func() { state.set(prevLiked, prevCount) }
		},
		Commit: func(ctx context.Context) error {
			res, err := c.ToggleLike(ctx, videoID)
			if err != nil {
				return err
			}
			state.set(res.Liked, res.LikesCount)
			return nil
		},
	})
}

// CommentFeed 已展示的评论列表，新评论插入头部而不是重新拉取
type CommentFeed struct {
	videoID string

	mu         sync.Mutex
	items      []dto.CommentInfo
	nextCursor *string
	hasMore    bool
	loaded     bool
}

func NewCommentFeed(videoID string) *CommentFeed {
	return &CommentFeed{videoID: videoID}
}

// Items 当前列表的副本
func (f *CommentFeed) Items() []dto.CommentInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dto.CommentInfo, len(f.items))
	copy(out, f.items)
	return out
}

// HasMore 首次加载前为 true
func (f *CommentFeed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loaded || f.hasMore
}

// LoadMore 沿 nextCursor 拉取下一页并追加到末尾
func (f *CommentFeed) LoadMore(ctx context.Context, c *Client, limit int) (int, error) {
	f.mu.Lock()
	if f.loaded && !f.hasMore {
		f.mu.Unlock()
		return 0, nil
	}
	cursor := ""
	if f.nextCursor != nil {
		cursor = *f.nextCursor
	}
	f.mu.Unlock()

	page, err := c.ListComments(ctx, f.videoID, cursor, limit)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, page.Items...)
	f.nextCursor = page.NextCursor
	f.hasMore = page.HasMore
	f.loaded = true
	return len(page.Items), nil
}

// Post 先插入一条待确认的评论，成功后替换为服务端返回的记录，失败时移除
func (f *CommentFeed) Post(ctx context.Context, c *Client, text string) (*dto.CommentInfo, error) {
	pending := &dto.CommentInfo{VideoID: f.videoID, Text: text, CreatedAt: time.Now().UTC()}
	var created *dto.CommentInfo

	err := Run(ctx, Mutation{
		Apply: func() Undo {
			f.mu.Lock()
			f.items = append([]dto.CommentInfo{*pending}, f.items...)
			f.mu.Unlock()
			return func() { f.replacePending(pending, nil) }
		},
		Commit: func(ctx context.Context) error {
			res, err := c.AddComment(ctx, f.videoID, text)
			if err != nil {
				return err
			}
			created = res
			f.replacePending(pending, res)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// replacePending 找到待确认的评论并替换，with 为 nil 时删除
func (f *CommentFeed) replacePending(pending *dto.CommentInfo, with *dto.CommentInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		it := &f.items[i]
		if it.ID == "" && it.Text == pending.Text && it.CreatedAt.Equal(pending.CreatedAt) {
			if with == nil {
				f.items = append(f.items[:i], f.items[i+1:]...)
			} else {
				f.items[i] = *with
			}
			return
		}
	}
}
