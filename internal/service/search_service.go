package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/metrics"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100

	backendElasticsearch = "elasticsearch"
	backendMongo         = "mongo"
)

// sortOptions 固定的排序候选项
var sortOptions = []dto.SortOption{
	{Value: model.SortCreatedAt, Label: "Latest"},
	{Value: model.SortViews, Label: "Most Viewed"},
	{Value: model.SortRelevance, Label: "Relevance"},
}

type SearchService struct {
	videoRepo VideoRepo
	index     SearchIndex
	breaker   *gobreaker.CircuitBreaker
	cache     *CacheService
	filterTTL time.Duration
}

// NewSearchService index 为 nil 时只使用 MongoDB 聚合
func NewSearchService(videoRepo VideoRepo, index SearchIndex, cache *CacheService, filterTTL time.Duration) *SearchService {
	s := &SearchService{
		videoRepo: videoRepo,
		index:     index,
		cache:     cache,
		filterTTL: filterTTL,
	}
	if index != nil {
		s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "elasticsearch",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return s
}

// NormalizeQuery 规整搜索参数：去空白，未知排序降级为 createdAt，
// 没有关键词时 relevance 同样降级为 createdAt
func NormalizeQuery(req *dto.SearchVideoRequest) (*model.SearchQuery, int, int) {
	limit := req.Limit
	switch {
	case limit < 1:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}
	page := boundPage(req.Page, limit)

	q := &model.SearchQuery{
		Text:     strings.TrimSpace(req.Q),
		Category: strings.TrimSpace(req.Category),
		Year:     strings.TrimSpace(req.Year),
		Sort:     strings.TrimSpace(req.Sort),
		Skip:     (page - 1) * limit,
		Limit:    limit,
	}
	switch q.Sort {
	case model.SortViews:
	case model.SortRelevance:
		if !q.HasText() {
			q.Sort = model.SortCreatedAt
		}
	default:
		q.Sort = model.SortCreatedAt
	}
	return q, page, limit
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Search 过滤 + 排序 + 分页。Elasticsearch 可用时优先使用，失败或熔断时降级到 MongoDB 聚合。
func (s *SearchService) Search(ctx context.Context, req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	q, page, limit := NormalizeQuery(req)

	hits, total, backend, err := s.search(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.SearchRequests.WithLabelValues(backend, q.Sort).Inc()

	videos := make([]dto.VideoInfo, 0, len(hits))
	for i := range hits {
		info := toVideoInfo(&hits[i].Video)
		if q.HasText() {
			score := hits[i].Score
			info.Score = &score
		}
		videos = append(videos, *info)
	}

	pages := totalPages(total, limit)
	return &dto.SearchVideoData{
		Videos: videos,
		Pagination: dto.SearchPagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: pages,
			HasMore:    int64(page) < pages,
		},
		Filters: dto.AppliedFilters{
			Query:    optional(q.Text),
			Category: optional(q.Category),
			Year:     optional(q.Year),
			Sort:     q.Sort,
		},
		Backend: backend,
	}, nil
}

func (s *SearchService) search(ctx context.Context, q *model.SearchQuery) ([]model.VideoHit, int64, string, error) {
	if s.index != nil {
		hits, total, err := s.searchIndex(ctx, q)
		if err == nil {
			return hits, total, backendElasticsearch, nil
		}
		logger.Warn("ES search failed, fallback to MongoDB", zap.Error(err))
	}

	hits, total, err := s.videoRepo.Search(ctx, q)
	if err != nil {
		return nil, 0, backendMongo, err
	}
	return hits, total, backendMongo, nil
}

type indexResult struct {
	hits  []model.VideoHit
	total int64
}

// searchIndex 在 Elasticsearch 中检索 id，再从 MongoDB 取回完整文档并保持命中顺序
func (s *SearchService) searchIndex(ctx context.Context, q *model.SearchQuery) ([]model.VideoHit, int64, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		ids, scores, total, err := s.index.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &indexResult{hits: []model.VideoHit{}, total: total}, nil
		}

		videos, err := s.videoRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*model.Video, len(videos))
		for i := range videos {
			byID[videos[i].ID] = &videos[i]
		}

		hits := make([]model.VideoHit, 0, len(ids))
		for _, id := range ids {
			if v, ok := byID[id]; ok {
				hits = append(hits, model.VideoHit{Video: *v, Score: scores[id]})
			}
		}
		return &indexResult{hits: hits, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	res := out.(*indexResult)
	return res.hits, res.total, nil
}

// FilterOptions 分类（字典序）、年份（数值倒序）与排序候选项，缓存 filterTTL
func (s *SearchService) FilterOptions(ctx context.Context) (*dto.FilterOptions, error) {
	var cached dto.FilterOptions
	if s.cache.GetJSON(ctx, keyFilterOptions, &cached) {
		return &cached, nil
	}

	categories, err := s.videoRepo.Distinct(ctx, "category")
	if err != nil {
		return nil, err
	}
	years, err := s.videoRepo.Distinct(ctx, "year")
	if err != nil {
		return nil, err
	}

	opts := &dto.FilterOptions{
		Categories:  nonBlank(categories),
		Years:       nonBlank(years),
		SortOptions: sortOptions,
	}
	sort.Strings(opts.Categories)
	sortYearsDesc(opts.Years)

	s.cache.SetJSON(ctx, keyFilterOptions, opts, s.filterTTL)
	return opts, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// sortYearsDesc 数字年份倒序在前，无法解析的按字典序排在最后
func sortYearsDesc(years []string) {
	sort.SliceStable(years, func(i, j int) bool {
		a, errA := strconv.Atoi(years[i])
		b, errB := strconv.Atoi(years[j])
		switch {
		case errA == nil && errB == nil:
			return a > b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return years[i] < years[j]
		}
	})
}

// Reindex 全量同步视频到 Elasticsearch（管理员）
func (s *SearchService) Reindex(ctx context.Context) (*dto.ReindexResult, error) {
	if s.index == nil {
		return nil, ErrSearchIndexDisabled
	}
	videos, err := s.videoRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	success, failed, err := s.index.BulkUpsert(ctx, videos)
	if err != nil {
		return nil, fmt.Errorf("bulk index videos: %w", err)
	}
	logger.Info("Videos reindexed", zap.Int("total", len(videos)), zap.Int("success", success), zap.Int("failed", failed))
	return &dto.ReindexResult{Total: len(videos), Success: success, Failed: failed}, nil
}
