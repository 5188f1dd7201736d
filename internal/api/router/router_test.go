package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vidhub-go/internal/api/handler"
	"vidhub-go/internal/config"
	"vidhub-go/internal/events"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository/memrepo"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	videos *memrepo.Videos
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Set(&config.Config{
		App: config.AppConfig{Name: "vidhub-test"},
		JWT: config.JWTConfig{Secret: "router-test", ExpireHours: 1},
	})

	videos := memrepo.NewVideos()
	comments := memrepo.NewComments()
	likes := memrepo.NewLikes()
	playlists := memrepo.NewPlaylists()
	users := memrepo.NewUsers()
	subs := memrepo.NewSubscriptions()
	pub := events.Nop{}

	authSvc := service.NewAuthService(users)
	videoSvc := service.NewVideoService(videos, likes, comments, pub)
	likeSvc := service.NewLikeService(likes, videos, nil, pub, time.Minute)
	authHandler := handler.NewAuthHandler(authSvc)

	h := &Handlers{
		Auth:         authHandler,
		User:         handler.NewUserHandler(service.NewUserService(users)),
		Video:        handler.NewVideoHandler(videoSvc, likeSvc, service.NewUploadService(videoSvc, nil, ""), authHandler.AdminChecker(), 10),
		Comment:      handler.NewCommentHandler(service.NewCommentService(comments, videos, users, pub)),
		Search:       handler.NewSearchHandler(service.NewSearchService(videos, nil, nil, time.Minute)),
		Playlist:     handler.NewPlaylistHandler(service.NewPlaylistService(playlists, videos)),
		Subscription: handler.NewSubscriptionHandler(service.NewSubscriptionService(subs, users)),
	}

	r := gin.New()
	Setup(r, h, nil, config.RateLimitConfig{})
	return &testServer{t: t, engine: r, videos: videos}
}

func (s *testServer) addVideo(id string, views int64, category string) {
	s.t.Helper()
	v := &model.Video{ID: id, Title: "Video " + id, Category: category, Year: "2024", Rating: model.RatingG, Views: model.ViewCount(views)}
	v.ApplyDefaults(time.Now().UTC())
	if err := s.videos.Create(context.Background(), v); err != nil {
		s.t.Fatal(err)
	}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]json.RawMessage{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	cred := map[string]string{"email": email, "password": "secret123"}
	if w, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", cred); w.Code != http.StatusCreated {
		s.t.Fatalf("register %s = %d %s", email, w.Code, w.Body.String())
	}
	w, body := s.do(http.MethodPost, "/api/v1/auth/login", "", cred)
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s = %d", email, w.Code)
	}
	var data struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body["data"], &data)
	return data.Token
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func errorType(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var e struct {
		Type string `json:"type"`
	}
	decode(t, body["error"], &e)
	return e.Type
}

func TestEndToEndEngagement(t *testing.T) {
	s := newTestServer(t)
	s.addVideo("v1", 0, "Music")
	u1 := s.login("u1@example.com")
	u2 := s.login("u2@example.com")

	w, body := s.do(http.MethodPatch, "/api/v1/videos/v1/view", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("view = %d", w.Code)
	}
	var view struct {
		Views string `json:"views"`
	}
	decode(t, body["data"], &view)
	if view.Views != "1" {
		t.Fatalf("views = %q", view.Views)
	}

	var like struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likesCount"`
	}
	_, body = s.do(http.MethodPost, "/api/v1/videos/v1/like", u1, nil)
	decode(t, body["data"], &like)
	if !like.Liked || like.LikesCount != 1 {
		t.Fatalf("first like = %+v", like)
	}
	_, body = s.do(http.MethodPost, "/api/v1/videos/v1/like", u1, nil)
	decode(t, body["data"], &like)
	if like.Liked || like.LikesCount != 0 {
		t.Fatalf("second like = %+v", like)
	}

	w, _ = s.do(http.MethodPost, "/api/v1/videos/v1/comments", u2, map[string]string{"text": "nice video"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment = %d %s", w.Code, w.Body.String())
	}

	w, body = s.do(http.MethodGet, "/api/v1/videos/v1/comments?limit=10", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list comments = %d", w.Code)
	}
	var items []struct {
		Text string `json:"text"`
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, body["data"], &items)
	if len(items) != 1 || items[0].Text != "nice video" || items[0].User.Email != "u2@example.com" {
		t.Fatalf("comments = %+v", items)
	}
	if string(body["hasMore"]) != "false" || string(body["nextCursor"]) != "null" {
		t.Fatalf("cursor fields = %s / %s", body["hasMore"], body["nextCursor"])
	}
}

func TestLikeStatusOptionalAuth(t *testing.T) {
	s := newTestServer(t)
	s.addVideo("v1", 0, "Music")
	u1 := s.login("u1@example.com")
	s.do(http.MethodPost, "/api/v1/videos/v1/like", u1, nil)

	var status struct {
		LikesCount int64 `json:"likesCount"`
		IsLiked    bool  `json:"isLiked"`
	}
	_, body := s.do(http.MethodGet, "/api/v1/videos/v1/likes", u1, nil)
	decode(t, body["data"], &status)
	if !status.IsLiked || status.LikesCount != 1 {
		t.Fatalf("authenticated status = %+v", status)
	}

	w, body := s.do(http.MethodGet, "/api/v1/videos/v1/likes", "not-a-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("invalid token on optional route = %d", w.Code)
	}
	decode(t, body["data"], &status)
	if status.IsLiked || status.LikesCount != 1 {
		t.Fatalf("anonymous status = %+v", status)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	s.addVideo("v1", 0, "Music")
	u1 := s.login("u1@example.com")
	u2 := s.login("u2@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		code   int
		kind   string
	}{
		{"missing video", http.MethodPatch, "/api/v1/videos/nope/view", "", nil, 404, "NotFound"},
		{"like needs auth", http.MethodPost, "/api/v1/videos/v1/like", "", nil, 401, "Unauthorized"},
		{"comment too long", http.MethodPost, "/api/v1/videos/v1/comments", u1, map[string]string{"text": strings.Repeat("x", 2001)}, 400, "ValidationError"},
		{"bad cursor", http.MethodGet, "/api/v1/videos/v1/comments?cursor=yesterday", "", nil, 400, "ValidationError"},
		{"duplicate video id", http.MethodPost, "/api/v1/videos", u1, map[string]string{"id": "v1", "title": "t", "url": "u"}, 409, "Conflict"},
		{"upload without file", http.MethodPost, "/api/v1/upload", u1, nil, 400, "ValidationError"},
		{"reindex needs admin", http.MethodPost, "/api/v1/search/sync", u2, nil, 403, "Forbidden"},
		{"subscribe self", http.MethodPost, "/api/v1/subscriptions/1", u1, nil, 400, "ValidationError"},
	}
	for _, tc := range cases {
		w, body := s.do(tc.method, tc.path, tc.token, tc.body)
		if w.Code != tc.code {
			t.Errorf("%s: code = %d, want %d (%s)", tc.name, w.Code, tc.code, w.Body.String())
			continue
		}
		if got := errorType(t, body); got != tc.kind {
			t.Errorf("%s: type = %q, want %q", tc.name, got, tc.kind)
		}
	}
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	s.addVideo("v1", 0, "Music")
	u1 := s.login("u1@example.com")
	u2 := s.login("u2@example.com")

	_, body := s.do(http.MethodPost, "/api/v1/videos/v1/comments", u1, map[string]string{"text": "mine"})
	var created struct {
		ID string `json:"id"`
	}
	decode(t, body["data"], &created)

	if w, _ := s.do(http.MethodDelete, "/api/v1/comments/"+created.ID, u2, nil); w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete = %d", w.Code)
	}
	if w, _ := s.do(http.MethodDelete, "/api/v1/comments/"+created.ID, u1, nil); w.Code != http.StatusOK {
		t.Fatalf("owner delete = %d", w.Code)
	}
}

func TestSearchEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.addVideo("small", 900, "Music")
	s.addVideo("big", 1200, "Music")

	w, body := s.do(http.MethodGet, "/api/v1/videos/search?sort=views&category=Music", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var videos []struct {
		ID    string `json:"id"`
		Views string `json:"views"`
	}
	decode(t, body["data"], &videos)
	if len(videos) != 2 || videos[0].ID != "big" || videos[0].Views != "1.2K" {
		t.Fatalf("videos = %+v", videos)
	}
	var filters struct {
		Category *string `json:"category"`
		Query    *string `json:"query"`
		Sort     string  `json:"sort"`
	}
	decode(t, body["filters"], &filters)
	if filters.Category == nil || *filters.Category != "Music" || filters.Query != nil || filters.Sort != "views" {
		t.Fatalf("filters = %s", body["filters"])
	}

	_, body = s.do(http.MethodGet, "/api/v1/videos/search?category=Nonexistent", "", nil)
	if string(body["data"]) != "[]" {
		t.Fatalf("zero-match data = %s", body["data"])
	}
	var pg struct {
		Total int64 `json:"total"`
	}
	decode(t, body["pagination"], &pg)
	if pg.Total != 0 {
		t.Fatalf("total = %d", pg.Total)
	}

	w, body = s.do(http.MethodGet, "/api/v1/videos/search/filters", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("filters = %d", w.Code)
	}
	var opts struct {
		Categories []string `json:"categories"`
	}
	decode(t, body["data"], &opts)
	if len(opts.Categories) != 1 || opts.Categories[0] != "Music" {
		t.Fatalf("categories = %v", opts.Categories)
	}
}

func TestPlaylistRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addVideo("v1", 0, "Music")
	u1 := s.login("u1@example.com")

	w, body := s.do(http.MethodPost, "/api/v1/playlists", u1, map[string]string{"name": "Later"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var p struct {
		ID string `json:"id"`
	}
	decode(t, body["data"], &p)

	if w, _ := s.do(http.MethodPost, "/api/v1/playlists", u1, map[string]string{"name": "Later"}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate = %d", w.Code)
	}
	path := "/api/v1/playlists/" + p.ID + "/videos"
	if w, _ := s.do(http.MethodPost, path, u1, map[string]string{"videoId": "v1"}); w.Code != http.StatusOK {
		t.Fatalf("add = %d", w.Code)
	}
	if w, _ := s.do(http.MethodPost, path, u1, map[string]string{"videoId": "v1"}); w.Code != http.StatusBadRequest {
		t.Fatalf("re-add = %d", w.Code)
	}
	if w, _ := s.do(http.MethodDelete, path+"/v1", u1, nil); w.Code != http.StatusOK {
		t.Fatalf("remove = %d", w.Code)
	}
}
