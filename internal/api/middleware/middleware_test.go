package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupJWT() {
	config.Set(&config.Config{
		App: config.AppConfig{Name: "vidhub-test"},
		JWT: config.JWTConfig{Secret: "middleware-test", ExpireHours: 1},
	})
}

func TestMemoryLimiterBlocksAfterMax(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	rule := config.RateRule{Max: 3, Window: 60}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _, _ := l.Allow(ctx, "k", rule); !ok {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	ok, wait, _ := l.Allow(ctx, "k", rule)
	if ok {
		t.Fatal("4th request allowed")
	}
	if wait <= 0 || wait > 20*time.Second {
		t.Fatalf("retry after = %v", wait)
	}

	if ok, _, _ := l.Allow(ctx, "other", rule); !ok {
		t.Fatal("keys must not share a bucket")
	}

	now = now.Add(20 * time.Second)
	if ok, _, _ := l.Allow(ctx, "k", rule); !ok {
		t.Fatal("token not refilled after window/max")
	}
}

func TestRateLimitRespondsWith429(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(NewMemoryLimiter(), "test", config.RateRule{Max: 1, Window: 60}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	var body struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error.Type != "RateLimited" {
		t.Fatalf("type = %q", body.Error.Type)
	}
}

func TestAuthRequired(t *testing.T) {
	setupJWT()
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		u := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.UserID, "email": u.Email})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d", w.Code)
	}

	token, _ := utils.GenerateToken(42, "a@example.com", false)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token = %d", w.Code)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	setupJWT()
	r := gin.New()
	r.GET("/x", OptionalAuth(), func(c *gin.Context) {
		if GetAuthUser(c) != nil {
			c.Status(http.StatusAccepted)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("invalid token treated as auth: %d", w.Code)
	}

	token, _ := utils.GenerateToken(7, "b@example.com", false)
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("valid token ignored: %d", w.Code)
	}
}

func TestAdminRequiredChecksStore(t *testing.T) {
	setupJWT()
	admins := map[int64]bool{1: true}
	r := gin.New()
	r.GET("/admin", AuthRequired(), AdminRequired(func(_ *gin.Context, id int64) (bool, error) {
		return admins[id], nil
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(uid int64, claimAdmin bool) int {
		token, _ := utils.GenerateToken(uid, "x@example.com", claimAdmin)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := call(1, false); code != http.StatusOK {
		t.Fatalf("admin = %d", code)
	}
	if code := call(2, true); code != http.StatusForbidden {
		t.Fatalf("stale admin claim = %d", code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(HeaderRequestID)
	if id == "" || w.Body.String() != id {
		t.Fatalf("header %q body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(HeaderRequestID) != "abc" {
		t.Fatal("client request id not kept")
	}
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", w.Code)
	}
}
