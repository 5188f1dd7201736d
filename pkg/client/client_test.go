package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vidhub-go/internal/api/dto"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{"code": status, "message": "boom", "type": typ},
	})
}

func newTestClient(srv *httptest.Server) *Client {
	return New(srv.URL, WithToken("t"), WithRetry(time.Millisecond, 3))
}

func TestRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeError(w, http.StatusServiceUnavailable, "Unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": dto.ViewResult{Views: "1.2K"}})
	}))
	defer srv.Close()

	views, err := newTestClient(srv).RecordView(context.Background(), "v1")
	if err != nil {
		t.Fatal(err)
	}
	if views != "1.2K" || calls.Load() != 3 {
		t.Fatalf("views=%q calls=%d", views, calls.Load())
	}
}

func TestRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeError(w, http.StatusTooManyRequests, "RateLimited")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": dto.LikeStatus{LikesCount: 4}})
	}))
	defer srv.Close()

	st, err := newTestClient(srv).LikeStatus(context.Background(), "v1")
	if err != nil || st.LikesCount != 4 || calls.Load() != 2 {
		t.Fatalf("status=%+v err=%v calls=%d", st, err, calls.Load())
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeError(w, http.StatusNotFound, "NotFound")
	}))
	defer srv.Close()

	_, err := newTestClient(srv).RecordView(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("404 retried %d times", calls.Load())
	}
}

func TestToggleLikeOptimisticRollsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "InternalServerError")
	}))
	defer srv.Close()

	state := NewLikeState(false, 7)
	if err := newTestClient(srv).ToggleLikeOptimistic(context.Background(), "v1", state); err == nil {
		t.Fatal("expected error")
	}
	if liked, count := state.Snapshot(); liked || count != 7 {
		t.Fatalf("state not restored: %v %d", liked, count)
	}
}

func TestToggleLikeOptimisticReconciles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/videos/v1/like" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": dto.LikeResult{Liked: true, LikesCount: 10}})
	}))
	defer srv.Close()

	state := NewLikeState(false, 7)
	if err := newTestClient(srv).ToggleLikeOptimistic(context.Background(), "v1", state); err != nil {
		t.Fatal(err)
	}
	if liked, count := state.Snapshot(); !liked || count != 10 {
		t.Fatalf("state = %v %d, want server values", liked, count)
	}
}

func TestRunAppliesBeforeCommit(t *testing.T) {
	value := 1
	err := Run(context.Background(), Mutation{
		Apply: func() Undo {
			prev := value
			value = 2
			return func() { value = prev }
		},
		Commit: func(context.Context) error {
			if value != 2 {
				t.Fatalf("commit saw %d before apply", value)
			}
			return context.Canceled
		},
	})
	if err != context.Canceled || value != 1 {
		t.Fatalf("err=%v value=%d", err, value)
	}
}

func TestCommentFeedPrependAndPaging(t *testing.T) {
	var failPost atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("cursor") == "" {
				next := "2024-01-01T00:00:00Z"
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"data":       []dto.CommentInfo{{ID: "c2", Text: "second"}},
					"nextCursor": next,
					"hasMore":    true,
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data":       []dto.CommentInfo{{ID: "c1", Text: "first"}},
				"nextCursor": nil,
				"hasMore":    false,
			})
		case http.MethodPost:
			if failPost.Load() {
				writeError(w, http.StatusBadRequest, "ValidationError")
				return
			}
			var req dto.CommentCreateRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"data": dto.CommentInfo{ID: "c3", Text: req.Text, User: dto.CommentAuthor{ID: 2, Email: "u2@example.com"}},
			})
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	feed := NewCommentFeed("v1")
	ctx := context.Background()

	for feed.HasMore() {
		if _, err := feed.LoadMore(ctx, c, 1); err != nil {
			t.Fatal(err)
		}
	}
	if items := feed.Items(); len(items) != 2 || items[0].ID != "c2" || items[1].ID != "c1" {
		t.Fatalf("items = %+v", items)
	}

	created, err := feed.Post(ctx, c, "nice video")
	if err != nil {
		t.Fatal(err)
	}
	items := feed.Items()
	if len(items) != 3 || items[0].ID != "c3" || created.User.Email != "u2@example.com" {
		t.Fatalf("after post = %+v", items)
	}

	failPost.Store(true)
	if _, err := feed.Post(ctx, c, "rejected"); err == nil {
		t.Fatal("expected error")
	}
	if items := feed.Items(); len(items) != 3 || items[0].ID != "c3" {
		t.Fatalf("pending comment not removed: %+v", items)
	}
}
