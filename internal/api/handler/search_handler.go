package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchVideos 搜索视频
// @Summary 搜索视频
// @Description 关键词全文检索，可按分类、年份过滤；filters 返回实际生效的条件
// @Tags 搜索
// @Produce json
// @Param q query string false "搜索关键词"
// @Param category query string false "分类（精确匹配）"
// @Param year query string false "年份（精确匹配）"
// @Param sort query string false "排序方式: createdAt, views, relevance" default(createdAt)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.SearchResponse{data=[]dto.VideoInfo,pagination=dto.SearchPagination,filters=dto.AppliedFilters} "搜索成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /videos/search [get]
func (h *SearchHandler) SearchVideos(c *gin.Context) {
	var req dto.SearchVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	data, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, "Search videos", err)
		return
	}
	response.Search(c, "搜索成功", data.Videos, data.Pagination, data.Filters)
}

// FilterOptions 可选的过滤条件
// @Summary 搜索过滤选项
// @Tags 搜索
// @Produce json
// @Success 200 {object} response.Response{data=dto.FilterOptions} "获取成功"
// @Router /videos/search/filters [get]
func (h *SearchHandler) FilterOptions(c *gin.Context) {
	opts, err := h.searchService.FilterOptions(c.Request.Context())
	if err != nil {
		handleServiceError(c, "Get filter options", err)
		return
	}
	response.OK(c, "获取过滤选项成功", opts)
}

// SyncIndex 全量同步视频到 Elasticsearch（管理员）
// @Summary 同步搜索索引
// @Tags 搜索
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.ReindexResult} "同步完成"
// @Failure 503 {object} response.ErrorResponse "搜索索引未启用"
// @Router /search/sync [post]
func (h *SearchHandler) SyncIndex(c *gin.Context) {
	res, err := h.searchService.Reindex(c.Request.Context())
	if err != nil {
		handleServiceError(c, "Sync search index", err)
		return
	}
	response.OK(c, "同步完成", res)
}
