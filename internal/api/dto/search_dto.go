package dto

// SearchVideoRequest 搜索请求参数
type SearchVideoRequest struct {
	Q        string `form:"q"`
	Category string `form:"category"`
	Year     string `form:"year"`
	Sort     string `form:"sort"` // createdAt, views, relevance
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// SearchPagination 搜索分页信息
type SearchPagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// AppliedFilters 实际生效的过滤条件（去空白、排序降级后）
type AppliedFilters struct {
	Query    *string `json:"query"`
	Category *string `json:"category"`
	Year     *string `json:"year"`
	Sort     string  `json:"sort"`
}

// SearchVideoData 搜索结果
type SearchVideoData struct {
	Videos     []VideoInfo
	Pagination SearchPagination
	Filters    AppliedFilters
	Backend    string `json:"-"`
}

// SortOption 排序选项
type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions 搜索过滤候选项（仅供参考，传入未知值只会得到空结果）
type FilterOptions struct {
	Categories  []string     `json:"categories"`
	Years       []string     `json:"years"`
	SortOptions []SortOption `json:"sortOptions"`
}

// ReindexResult 全量重建索引结果
type ReindexResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
