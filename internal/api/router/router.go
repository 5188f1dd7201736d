package router

import (
	"vidhub-go/internal/api/handler"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/config"

	"github.com/gin-gonic/gin"
)

// Handlers 所有业务 Handler
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Video        *handler.VideoHandler
	Comment      *handler.CommentHandler
	Search       *handler.SearchHandler
	Playlist     *handler.PlaylistHandler
	Subscription *handler.SubscriptionHandler
}

// Setup 注册所有业务路由
// limiter 为 nil 或 rl.Enabled 为 false 时不限流
func Setup(r *gin.Engine, h *Handlers, limiter middleware.Limiter, rl config.RateLimitConfig) {
	if !rl.Enabled {
		limiter = nil
	}
	limit := func(name string, rule config.RateRule) gin.HandlerFunc {
		return middleware.RateLimit(limiter, name, rule)
	}
	adminRequired := middleware.AdminRequired(h.Auth.AdminChecker())

	v1 := r.Group("/api/v1", limit("general", rl.General))

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", limit("auth", rl.Auth), h.Auth.Register)
		auth.POST("/login", limit("auth", rl.Auth), h.Auth.Login)
		auth.GET("/me", middleware.AuthRequired(), h.Auth.Me)
	}

	// --- 视频模块 ---
	videos := v1.Group("/videos")
	{
		videos.GET("", h.Video.List)
		videos.GET("/search", limit("search", rl.Search), h.Search.SearchVideos)
		videos.GET("/search/filters", h.Search.FilterOptions)
		videos.GET("/:id", h.Video.GetDetail)
		videos.PATCH("/:id/view", h.Video.RecordView)
		videos.GET("/:id/likes", middleware.OptionalAuth(), h.Video.GetLikes)
		videos.GET("/:id/comments", h.Comment.ListByVideo)

		videosAuth := videos.Group("", middleware.AuthRequired())
		{
			videosAuth.POST("", h.Video.Create)
			videosAuth.GET("/my/list", h.Video.GetMyVideos)
			videosAuth.PUT("/:id", h.Video.UpdateVideo)
			videosAuth.DELETE("/:id", h.Video.DeleteVideo)
			videosAuth.POST("/:id/like", h.Video.ToggleLike)
			videosAuth.POST("/:id/comments", limit("comment", rl.Comment), h.Comment.Create)
		}
	}

	v1.POST("/upload", middleware.AuthRequired(), limit("upload", rl.Upload), h.Video.Upload)
	v1.GET("/stats", middleware.AuthRequired(), h.Video.Stats)

	// --- 评论模块 ---
	v1.DELETE("/comments/:id", middleware.AuthRequired(), limit("comment", rl.Comment), h.Comment.Delete)

	// --- 播放列表 ---
	playlists := v1.Group("/playlists", middleware.AuthRequired())
	{
		playlists.POST("", h.Playlist.Create)
		playlists.GET("", h.Playlist.ListMine)
		playlists.GET("/:id", h.Playlist.Get)
		playlists.PUT("/:id", h.Playlist.Update)
		playlists.DELETE("/:id", h.Playlist.Delete)
		playlists.POST("/:id/videos", h.Playlist.AddVideo)
		playlists.DELETE("/:id/videos/:videoId", h.Playlist.RemoveVideo)
	}

	// --- 订阅 ---
	subscriptions := v1.Group("/subscriptions", middleware.AuthRequired())
	{
		subscriptions.GET("", h.Subscription.List)
		subscriptions.POST("/:userId", h.Subscription.Subscribe)
		subscriptions.DELETE("/:userId", h.Subscription.Unsubscribe)
		subscriptions.GET("/:userId/status", h.Subscription.Status)
	}

	// --- 管理员 ---
	admin := v1.Group("/admin", middleware.AuthRequired(), adminRequired)
	{
		admin.GET("/users", h.User.ListUsers)
		admin.PUT("/users/:id/admin", h.User.SetAdmin)
	}
	v1.POST("/search/sync", middleware.AuthRequired(), adminRequired, h.Search.SyncIndex)
}
