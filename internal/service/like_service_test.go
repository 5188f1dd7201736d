package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidhub-go/internal/repository/memrepo"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	ctx := context.Background()

	first, err := env.likeSvc.ToggleLike(ctx, 1, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Liked || first.LikesCount != 1 {
		t.Fatalf("first toggle = %+v", first)
	}

	second, err := env.likeSvc.ToggleLike(ctx, 1, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if second.Liked || second.LikesCount != 0 {
		t.Fatalf("second toggle = %+v", second)
	}

	uid := int64(1)
	status, err := env.likeSvc.GetLikeStatus(ctx, "v1", &uid)
	if err != nil {
		t.Fatal(err)
	}
	if status.IsLiked || status.LikesCount != 0 {
		t.Fatalf("status = %+v", status)
	}
}

func TestGetLikeStatusAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	ctx := context.Background()
	_, _ = env.likeSvc.ToggleLike(ctx, 3, "v1")

	status, err := env.likeSvc.GetLikeStatus(ctx, "v1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if status.IsLiked || status.LikesCount != 1 {
		t.Fatalf("anonymous status = %+v", status)
	}
}

func TestToggleLikeUnknownVideo(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.likeSvc.ToggleLike(context.Background(), 1, "nope"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("err = %v", err)
	}
}

// barrierLikes 让两个并发请求都越过 Exists 检查后再继续，构造重复点赞竞争
type barrierLikes struct {
	*memrepo.Likes
	arrived sync.WaitGroup
}

func (b *barrierLikes) Exists(ctx context.Context, userID int64, videoID string) (bool, error) {
	ok, err := b.Likes.Exists(ctx, userID, videoID)
	b.arrived.Done()
	b.arrived.Wait()
	return ok, err
}

func TestConcurrentDuplicateLikeCountsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	likes := &barrierLikes{Likes: env.likes}
	likes.arrived.Add(2)
	svc := NewLikeService(likes, env.videos, nil, env.pub, time.Minute)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ToggleLike(context.Background(), 1, "v1")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var ok, conflicts int
	for err := range errCh {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrLikeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("ok=%d conflicts=%d, want 1 and 1", ok, conflicts)
	}
	if n := env.likes.CountByVideo("v1"); n != 1 {
		t.Fatalf("like records = %d, want 1", n)
	}
	status, _ := svc.GetLikeStatus(context.Background(), "v1", nil)
	if status.LikesCount != 1 {
		t.Fatalf("likesCount = %d, want 1", status.LikesCount)
	}
}

func TestToggleLikeCounterFailureKeepsRecordConsistent(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	ctx := context.Background()
	storeErr := errors.New("store timeout")

	env.videos.FailOn("AdjustLikes", storeErr)
	if _, err := env.likeSvc.ToggleLike(ctx, 1, "v1"); !errors.Is(err, storeErr) {
		t.Fatalf("err = %v", err)
	}
	if exists, _ := env.likes.Exists(ctx, 1, "v1"); exists {
		t.Fatal("like record left behind after counter failure")
	}

	env.videos.FailOn("AdjustLikes", nil)
	res, err := env.likeSvc.ToggleLike(ctx, 1, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Liked || res.LikesCount != 1 {
		t.Fatalf("retry = %+v, want liked with count 1", res)
	}

	env.videos.FailOn("AdjustLikes", storeErr)
	if _, err := env.likeSvc.ToggleLike(ctx, 1, "v1"); !errors.Is(err, storeErr) {
		t.Fatalf("err = %v", err)
	}
	if exists, _ := env.likes.Exists(ctx, 1, "v1"); !exists {
		t.Fatal("like record removed although the counter was not decremented")
	}
	status, err := env.likeSvc.GetLikeStatus(ctx, "v1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if status.LikesCount != 1 {
		t.Fatalf("likesCount = %d, want 1", status.LikesCount)
	}
}
