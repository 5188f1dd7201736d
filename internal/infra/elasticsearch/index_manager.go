package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// videosIndexMapping videos 索引 mapping。
// category 同时需要全文检索与精确过滤，因此带 keyword 子字段。
const videosIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0,
		"analysis": {
			"analyzer": {
				"folded": {
					"type": "custom",
					"tokenizer": "standard",
					"filter": ["lowercase", "asciifolding", "porter_stem"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"title": {"type": "text", "analyzer": "folded"},
			"description": {"type": "text", "analyzer": "folded"},
			"category": {
				"type": "text",
				"analyzer": "folded",
				"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
			},
			"year": {"type": "keyword"},
			"rating": {"type": "keyword"},
			"owner": {"type": "long"},
			"views": {"type": "long"},
			"likes_count": {"type": "long"},
			"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
		}
	}
}`

// EnsureVideosIndex 确保 videos 索引存在，不存在则创建
func EnsureVideosIndex(ctx context.Context, indexName string) error {
	exists, err := IndicesExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch videos index already exists", zap.String("index", indexName))
		return nil
	}

	resp, err := IndicesCreate(ctx, indexName, bytes.NewReader([]byte(videosIndexMapping)))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index failed: %s", resp.String())
	}

	logger.Info("Elasticsearch videos index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化所有索引（启动时调用）
func InitIndexes(indexName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureVideosIndex(ctx, indexName)
}
