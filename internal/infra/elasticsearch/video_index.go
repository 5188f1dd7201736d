package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// VideoDoc ES 中的视频文档，只保存检索与排序需要的字段
type VideoDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Year        string `json:"year"`
	Rating      string `json:"rating"`
	Owner       *int64 `json:"owner,omitempty"`
	Views       int64  `json:"views"`
	LikesCount  int64  `json:"likes_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func videoToDoc(v *model.Video) *VideoDoc {
	return &VideoDoc{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Category:    v.Category,
		Year:        v.Year,
		Rating:      v.Rating,
		Owner:       v.Owner,
		Views:       int64(v.Views),
		LikesCount:  v.LikesCount,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   v.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// VideoIndex 视频搜索索引
type VideoIndex struct {
	index string
}

// NewVideoIndex 需在 Init 成功后调用
func NewVideoIndex(index string) *VideoIndex {
	return &VideoIndex{index: index}
}

// BuildSearchBody 构造搜索请求体。
// 过滤条件与排序规则和 MongoDB 聚合查询保持一致。
func BuildSearchBody(q *model.SearchQuery) map[string]interface{} {
	filters := []interface{}{}
	if q.Category != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"category.keyword": q.Category}})
	}
	if q.Year != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"year": q.Year}})
	}

	must := []interface{}{}
	if q.HasText() {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    q.Text,
				"fields":   []string{"title^10", "description^2", "category"},
				"type":     "best_fields",
				"operator": "or",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	desc := map[string]string{"order": "desc"}
	var sort []interface{}
	switch {
	case q.Sort == model.SortViews:
		sort = []interface{}{
			map[string]interface{}{"views": desc},
			map[string]interface{}{"created_at": desc},
		}
	case q.Sort == model.SortRelevance && q.HasText():
		sort = []interface{}{
			map[string]interface{}{"_score": desc},
			map[string]interface{}{"created_at": desc},
		}
	default:
		sort = []interface{}{map[string]interface{}{"created_at": desc}}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filters,
				"must":   must,
			},
		},
		"_source":          []string{"id"},
		"from":             q.Skip,
		"size":             q.Limit,
		"sort":             sort,
		"track_total_hits": true,
		"track_scores":     q.HasText(),
	}
}

// Search 返回命中的视频 ID（按排序顺序）、分数与总数
func (x *VideoIndex) Search(ctx context.Context, q *model.SearchQuery) ([]string, map[string]float64, int64, error) {
	body, err := json.Marshal(BuildSearchBody(q))
	if err != nil {
		return nil, nil, 0, err
	}

	resp, err := Search(ctx, x.index, bytes.NewReader(body))
	if err != nil {
		return nil, nil, 0, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, nil, 0, fmt.Errorf("ES search error: %s", resp.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score  *float64 `json:"_score"`
				Source struct {
					ID string `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, nil, 0, err
	}

	ids := make([]string, 0, len(esResp.Hits.Hits))
	scores := make(map[string]float64, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		ids = append(ids, h.Source.ID)
		if h.Score != nil {
			scores[h.Source.ID] = *h.Score
		}
	}
	return ids, scores, esResp.Hits.Total.Value, nil
}

// Upsert 写入或覆盖单个视频文档
func (x *VideoIndex) Upsert(ctx context.Context, v *model.Video) error {
	body, err := json.Marshal(videoToDoc(v))
	if err != nil {
		return err
	}

	resp, err := Index(ctx, x.index, v.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}
	logger.Debug("Video synced to ES", zap.String("video_id", v.ID))
	return nil
}

// Remove 删除视频文档
func (x *VideoIndex) Remove(ctx context.Context, videoID string) error {
	return DeleteByID(ctx, x.index, videoID)
}

// BulkUpsert 批量同步视频
func (x *VideoIndex) BulkUpsert(ctx context.Context, videos []model.Video) (success, failed int, err error) {
	var buf strings.Builder
	for i := range videos {
		docBody, err := json.Marshal(videoToDoc(&videos[i]))
		if err != nil {
			failed++
			continue
		}
		meta, _ := json.Marshal(map[string]interface{}{
			"index": map[string]string{"_index": x.index, "_id": videos[i].ID},
		})
		buf.Write(meta)
		buf.WriteString("\n")
		buf.Write(docBody)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, failed, nil
	}

	resp, err := Bulk(ctx, strings.NewReader(buf.String()))
	if err != nil {
		return 0, len(videos), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(videos), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Items []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return 0, len(videos), fmt.Errorf("decode bulk response: %w", err)
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
