package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidhub-go/internal/api/handler"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/router"
	"vidhub-go/internal/config"
	"vidhub-go/internal/infra/database"
	infraMongo "vidhub-go/internal/infra/mongo"
	"vidhub-go/internal/metrics"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/logger"

	_ "vidhub-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title VidHub API
// @version 1.0
// @description 视频分享平台互动与搜索 API：播放量、点赞、评论、搜索
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@vidhub.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	configPath := flag.String("config", envOr("VIDHUB_CONFIG", "configs/config.yaml"), "配置文件路径")
	flag.Parse()

	// 加载配置文件
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化存储与外部依赖
	deps, cleanup := initDeps(cfg)
	defer cleanup()

	// 事件总线：请求路径只发布，订阅者异步处理
	bus := newEventBus(cfg, deps)

	// 初始化依赖（Repository -> Service -> Handler）
	repos := deps.repos
	cache := service.NewCacheService(deps.redis)

	authService := service.NewAuthService(repos.users)
	userService := service.NewUserService(repos.users)
	subscriptionService := service.NewSubscriptionService(repos.subscriptions, repos.users)
	videoService := service.NewVideoService(repos.videos, repos.likes, repos.comments, bus)
	likeService := service.NewLikeService(repos.likes, repos.videos, cache, bus,
		time.Duration(cfg.Cache.LikeStatusTTL)*time.Second)
	commentService := service.NewCommentService(repos.comments, repos.videos, repos.users, bus)
	searchService := service.NewSearchService(repos.videos, deps.searchIndex, cache,
		time.Duration(cfg.Cache.FilterOptionsTTL)*time.Second)
	playlistService := service.NewPlaylistService(repos.playlists, repos.videos)
	uploadService := service.NewUploadService(videoService, deps.storage, cfg.Upload.DefaultThumbnail)

	prepareData(cfg, videoService)

	authHandler := handler.NewAuthHandler(authService)
	handlers := &router.Handlers{
		Auth:         authHandler,
		User:         handler.NewUserHandler(userService),
		Video:        handler.NewVideoHandler(videoService, likeService, uploadService, authHandler.AdminChecker(), cfg.Upload.MaxSizeMB),
		Comment:      handler.NewCommentHandler(commentService),
		Search:       handler.NewSearchHandler(searchService),
		Playlist:     handler.NewPlaylistHandler(playlistService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler(cfg))
	r.GET("/", rootHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, handlers, newLimiter(deps), cfg.RateLimit)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("addr", addr),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	bus.Close(5 * time.Second)
	logger.Info("Server stopped")
}

// prepareData 启动时的数据整理：迁移旧格式播放量，按需写入示例视频
func prepareData(cfg *config.Config, videoService *service.VideoService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.Storage.InMemory() || cfg.Mongo.MigrateOnStart {
		if err := videoService.MigrateLegacyViews(ctx); err != nil {
			logger.Error("Failed to migrate legacy views", zap.Error(err))
		}
	}

	if cfg.App.Seed {
		n, err := videoService.Seed(ctx)
		if err != nil {
			logger.Error("Failed to seed videos", zap.Error(err))
		} else {
			logger.Info("Sample videos seeded", zap.Int("count", n))
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// healthCheckHandler 健康检查接口，附带各存储的连通状态
func healthCheckHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Debug("Health check requested", zap.String("ip", c.ClientIP()))

		checks := gin.H{}
		status := http.StatusOK
		if !cfg.Storage.InMemory() {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			for name, ping := range map[string]func(context.Context) error{
				"postgres": database.Ping,
				"mongo":    infraMongo.Ping,
			} {
				if err := ping(ctx); err != nil {
					checks[name] = err.Error()
					status = http.StatusServiceUnavailable
					continue
				}
				checks[name] = "ok"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":    state,
			"checks":    checks,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mode":      cfg.App.Mode,
		})
	}
}

// rootHandler 根路径处理器
func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
		"docs":    fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.App.Port),
	})
}
