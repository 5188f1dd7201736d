package memrepo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidhub-go/internal/errs"
	"vidhub-go/internal/model"
)

func seedVideo(t *testing.T, r *Videos, id, title, desc, cat, year string, views int64, created time.Time) *model.Video {
	t.Helper()
	v := &model.Video{ID: id, Title: title, Description: desc, Category: cat, Year: year, Views: model.ViewCount(views), CreatedAt: created}
	if err := r.Create(context.Background(), v); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
	return v
}

func TestVideosConcurrentIncrementsAreNotLost(t *testing.T) {
	r := NewVideos()
	v := seedVideo(t, r, "v1", "t", "", "Music", "2024", 0, time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.IncrementViews(context.Background(), v.ObjectID); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, _ := r.GetByRef(context.Background(), "v1")
	if got.Views != 50 {
		t.Fatalf("views = %d, want 50", got.Views)
	}
}

func TestVideosAdjustLikesNeverNegative(t *testing.T) {
	r := NewVideos()
	v := seedVideo(t, r, "v1", "t", "", "", "", 0, time.Now())
	n, err := r.AdjustLikes(context.Background(), v.ObjectID, -1)
	if err != nil || n != 0 {
		t.Fatalf("AdjustLikes(-1) = %d, %v; want 0, nil", n, err)
	}
}

func TestVideosSearchScoringAndSorts(t *testing.T) {
	r := NewVideos()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedVideo(t, r, "a", "Cat compilation", "", "Comedy", "2023", 1200, base)
	seedVideo(t, r, "b", "Dogs", "a cat appears", "Comedy", "2024", 900, base.Add(time.Hour))
	seedVideo(t, r, "c", "Space", "rockets", "Science", "2024", 5000, base.Add(2*time.Hour))
	ctx := context.Background()

	hits, total, err := r.Search(ctx, &model.SearchQuery{Text: "cat", Sort: model.SortRelevance, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || hits[0].ID != "a" || hits[0].Score <= hits[1].Score {
		t.Fatalf("relevance order wrong: total=%d hits=%+v", total, hits)
	}

	hits, _, _ = r.Search(ctx, &model.SearchQuery{Sort: model.SortViews, Limit: 10})
	if hits[0].ID != "c" || hits[1].ID != "a" || hits[2].ID != "b" {
		t.Fatalf("views order wrong: %s %s %s", hits[0].ID, hits[1].ID, hits[2].ID)
	}

	hits, total, _ = r.Search(ctx, &model.SearchQuery{Category: "Comedy", Year: "2024", Limit: 10})
	if total != 1 || hits[0].ID != "b" {
		t.Fatalf("filter wrong: total=%d", total)
	}

	hits, total, _ = r.Search(ctx, &model.SearchQuery{Sort: model.SortCreatedAt, Skip: 1, Limit: 1})
	if total != 3 || len(hits) != 1 || hits[0].ID != "b" {
		t.Fatalf("paging wrong: total=%d hits=%v", total, hits)
	}
}

func TestVideosSearchMatchesWholeWords(t *testing.T) {
	r := NewVideos()
	now := time.Now()
	seedVideo(t, r, "edu", "Education basics", "how to communicate", "Education", "2024", 10, now)
	seedVideo(t, r, "cat", "Cat videos", "", "Pets", "2024", 10, now)
	ctx := context.Background()

	hits, total, err := r.Search(ctx, &model.SearchQuery{Text: "cat", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(hits) != 1 || hits[0].ID != "cat" {
		t.Fatalf("q=cat: total=%d hits=%+v", total, hits)
	}

	_, total, _ = r.Search(ctx, &model.SearchQuery{Text: "educ", Limit: 10})
	if total != 0 {
		t.Fatalf("prefix matched: total=%d", total)
	}
}

func TestVideosListOutOfRangeSkip(t *testing.T) {
	r := NewVideos()
	seedVideo(t, r, "v1", "t", "", "", "", 0, time.Now())
	ctx := context.Background()

	for _, skip := range []int{-4, 1, 1 << 40} {
		items, total, err := r.List(ctx, skip, 2)
		if err != nil || total != 1 || len(items) != 0 {
			t.Fatalf("List(skip=%d) = %d items, total %d, err %v", skip, len(items), total, err)
		}
	}
}

func TestLikesUniqueness(t *testing.T) {
	r := NewLikes()
	ctx := context.Background()
	if err := r.Create(ctx, 1, "v1"); err != nil {
		t.Fatal(err)
	}
	if err := r.Create(ctx, 1, "v1"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("second like err = %v, want conflict", err)
	}
	removed, _ := r.Delete(ctx, 1, "v1")
	if !removed {
		t.Fatal("expected like removed")
	}
	removed, _ = r.Delete(ctx, 1, "v1")
	if removed {
		t.Fatal("second delete should report nothing removed")
	}
}

func TestCommentsKeysetOrder(t *testing.T) {
	r := NewComments()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = r.Create(ctx, &model.Comment{VideoID: "v1", Text: "c", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = r.Create(ctx, &model.Comment{VideoID: "other", CreatedAt: base})

	first, _ := r.ListByVideo(ctx, "v1", nil, 2)
	if len(first) != 2 || !first[0].CreatedAt.After(first[1].CreatedAt) {
		t.Fatalf("first page not newest first: %+v", first)
	}
	cursor := first[1].CreatedAt
	rest, _ := r.ListByVideo(ctx, "v1", &cursor, 10)
	if len(rest) != 3 {
		t.Fatalf("rest = %d, want 3", len(rest))
	}
	for _, c := range rest {
		if !c.CreatedAt.Before(cursor) {
			t.Fatalf("comment %v not older than cursor", c.CreatedAt)
		}
	}
}

func TestPlaylistNameUniquePerUser(t *testing.T) {
	r := NewPlaylists()
	ctx := context.Background()
	if err := r.Create(ctx, &model.Playlist{UserID: 1, Name: "fav"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Create(ctx, &model.Playlist{UserID: 1, Name: "fav"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := r.Create(ctx, &model.Playlist{UserID: 2, Name: "fav"}); err != nil {
		t.Fatalf("other user same name: %v", err)
	}
}

func TestSubscriptionsListNewestFirst(t *testing.T) {
	r := NewSubscriptions()
	ctx := context.Background()
	_ = r.Create(ctx, 1, 10)
	_ = r.Create(ctx, 1, 11)
	_ = r.Create(ctx, 2, 10)
	if err := r.Create(ctx, 1, 10); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate err = %v", err)
	}

	ids, total, _ := r.ListChannels(ctx, 1, 0, 10)
	if total != 2 || ids[0] != 11 || ids[1] != 10 {
		t.Fatalf("ids = %v total = %d", ids, total)
	}
	n, _ := r.CountSubscribers(ctx, 10)
	if n != 2 {
		t.Fatalf("subscribers = %d", n)
	}
}
