package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vidhub-go/internal/errs"
)

func TestCommentCursorTraversal(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	const total = 7
	for i := 0; i < total; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		env.commentSvc.now = func() time.Time { return at }
		if _, err := env.commentSvc.Add(ctx, 1, "v1", "c"); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[string]bool{}
	var last time.Time
	var cursor *time.Time
	pages := 0
	for {
		page, err := env.commentSvc.List(ctx, "v1", cursor, 3)
		if err != nil {
			t.Fatal(err)
		}
		pages++
		for _, c := range page.Items {
			if seen[c.ID] {
				t.Fatalf("comment %s returned twice", c.ID)
			}
			seen[c.ID] = true
			if !last.IsZero() && c.CreatedAt.After(last) {
				t.Fatalf("order broken: %v after %v", c.CreatedAt, last)
			}
			last = c.CreatedAt
		}
		if !page.HasMore {
			if page.NextCursor != nil {
				t.Fatal("nextCursor must be nil on the last page")
			}
			break
		}
		if cursor, err = ParseCursor(*page.NextCursor); err != nil {
			t.Fatal(err)
		}
	}
	if len(seen) != total || pages != 3 {
		t.Fatalf("seen %d comments over %d pages", len(seen), pages)
	}
}

func TestCommentLengthBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	ctx := context.Background()

	if _, err := env.commentSvc.Add(ctx, 1, "v1", strings.Repeat("a", 2000)); err != nil {
		t.Fatalf("2000 chars rejected: %v", err)
	}
	if _, err := env.commentSvc.Add(ctx, 1, "v1", strings.Repeat("a", 2001)); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("2001 chars err = %v, want validation", err)
	}
	if _, err := env.commentSvc.Add(ctx, 1, "v1", "   "); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("blank err = %v, want validation", err)
	}
}

func TestCommentSanitizedAndJoinedWithAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	uid := env.user(t, "u1@example.com")

	info, err := env.commentSvc.Add(context.Background(), uid, "v1", "  <b>hi</b> ")
	if err != nil {
		t.Fatal(err)
	}
	if info.Text != "hi" || info.User.Email != "u1@example.com" {
		t.Fatalf("comment = %+v", info)
	}

	page, _ := env.commentSvc.List(context.Background(), "v1", nil, 0)
	if len(page.Items) != 1 || page.Items[0].User.Email != "u1@example.com" {
		t.Fatalf("list = %+v", page.Items)
	}
}

func TestCommentOnMissingVideo(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.commentSvc.Add(context.Background(), 1, "nope", "x"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := env.commentSvc.List(context.Background(), "nope", nil, 10); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("list err = %v", err)
	}
}

func TestDeleteCommentOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	ctx := context.Background()
	info, _ := env.commentSvc.Add(ctx, 1, "v1", "mine")

	if err := env.commentSvc.Delete(ctx, 2, info.ID); !errors.Is(err, ErrCommentNoPermission) {
		t.Fatalf("stranger delete err = %v", err)
	}
	if err := env.commentSvc.Delete(ctx, 1, "not-an-id"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("malformed id err = %v", err)
	}
	if err := env.commentSvc.Delete(ctx, 1, info.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.commentSvc.Delete(ctx, 1, info.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if _, err := ParseCursor("yesterday"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("err = %v", err)
	}
	if c, err := ParseCursor(""); c != nil || err != nil {
		t.Fatalf("empty cursor = %v, %v", c, err)
	}
}
