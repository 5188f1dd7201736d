package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidhub-go/internal/config"
	infraES "vidhub-go/internal/infra/elasticsearch"
	infraKafka "vidhub-go/internal/infra/kafka"
	infraMongo "vidhub-go/internal/infra/mongo"
	"vidhub-go/internal/repository"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// 索引同步 worker：消费互动事件，按 MongoDB 中的最新状态更新 Elasticsearch
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	reindex := flag.Bool("reindex", false, "启动时全量重建索引")
	flag.Parse()
	if p := os.Getenv("VIDHUB_CONFIG"); p != "" && !isFlagSet("config") {
		*configPath = p
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if cfg.Storage.InMemory() {
		logger.Fatal("Index worker requires mongo storage")
	}

	if err := infraMongo.Init(&cfg.Mongo); err != nil {
		logger.Fatal("Failed to init mongodb", zap.Error(err))
	}
	defer infraMongo.Close()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	indexName := cfg.Elasticsearch.VideoIndex()
	if err := infraES.InitIndexes(indexName); err != nil {
		logger.Fatal("Failed to init elasticsearch index", zap.Error(err))
	}

	videoRepo := repository.NewVideoRepository(infraMongo.DB())
	index := infraES.NewVideoIndex(indexName)
	syncService := service.NewIndexSyncService(videoRepo, index)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if *reindex {
		searchService := service.NewSearchService(videoRepo, index, nil, 0)
		reindexCtx, reindexCancel := context.WithTimeout(ctx, 5*time.Minute)
		res, err := searchService.Reindex(reindexCtx)
		reindexCancel()
		if err != nil {
			logger.Error("Full reindex failed", zap.Error(err))
		} else {
			logger.Info("Full reindex completed", zap.Any("result", res))
		}
	}

	topic := cfg.Kafka.Topic("engagement")
	logger.Info("Index worker started",
		zap.String("topic", topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("index", indexName),
	)

	// 阻塞直到 ctx 取消
	infraKafka.StartEventConsumer(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, syncService.HandleEvent)
	logger.Info("Index worker stopped")
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
