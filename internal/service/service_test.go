package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vidhub-go/internal/events"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository/memrepo"
)

// recorder 记录发布的事件
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	videos    *memrepo.Videos
	comments  *memrepo.Comments
	likes     *memrepo.Likes
	playlists *memrepo.Playlists
	users     *memrepo.Users
	subs      *memrepo.Subscriptions
	pub       *recorder

	videoSvc    *VideoService
	likeSvc     *LikeService
	commentSvc  *CommentService
	searchSvc   *SearchService
	playlistSvc *PlaylistService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		videos:    memrepo.NewVideos(),
		comments:  memrepo.NewComments(),
		likes:     memrepo.NewLikes(),
		playlists: memrepo.NewPlaylists(),
		users:     memrepo.NewUsers(),
		subs:      memrepo.NewSubscriptions(),
		pub:       &recorder{},
	}
	env.videoSvc = NewVideoService(env.videos, env.likes, env.comments, env.pub)
	env.likeSvc = NewLikeService(env.likes, env.videos, nil, env.pub, time.Minute)
	env.commentSvc = NewCommentService(env.comments, env.videos, env.users, env.pub)
	env.searchSvc = NewSearchService(env.videos, nil, nil, time.Minute)
	env.playlistSvc = NewPlaylistService(env.playlists, env.videos)
	return env
}

func (env *testEnv) user(t *testing.T, email string) int64 {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	if err := env.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func (env *testEnv) video(t *testing.T, id string, opts ...func(*model.Video)) *model.Video {
	t.Helper()
	v := &model.Video{
		ID:        id,
		Title:     "Video " + id,
		Category:  "Music",
		Year:      "2024",
		Rating:    model.RatingG,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := env.videos.Create(context.Background(), v); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return v
}

func withViews(n int64) func(*model.Video) {
	return func(v *model.Video) { v.Views = model.ViewCount(n) }
}

func withOwner(id int64) func(*model.Video) {
	return func(v *model.Video) { v.Owner = &id }
}
