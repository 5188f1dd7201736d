package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type PlaylistHandler struct {
	playlistService *service.PlaylistService
}

func NewPlaylistHandler(playlistService *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

// Create 创建播放列表
// @Summary 创建播放列表
// @Tags 播放列表
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PlaylistCreateRequest true "播放列表"
// @Success 201 {object} response.Response{data=dto.PlaylistInfo} "创建成功"
// @Failure 409 {object} response.ErrorResponse "同名播放列表已存在"
// @Router /playlists [post]
func (h *PlaylistHandler) Create(c *gin.Context) {
	var req dto.PlaylistCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.playlistService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, "Create playlist", err)
		return
	}
	response.Created(c, "创建播放列表成功", info)
}

// ListMine GET /api/v1/playlists
func (h *PlaylistHandler) ListMine(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	items, err := h.playlistService.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "List playlists", err)
		return
	}
	response.OK(c, "获取播放列表成功", items)
}

// Get 播放列表详情（含视频信息）
// @Summary 播放列表详情
// @Tags 播放列表
// @Produce json
// @Security BearerAuth
// @Param id path string true "播放列表ID"
// @Success 200 {object} response.Response{data=dto.PlaylistInfo} "获取成功"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Failure 404 {object} response.ErrorResponse "播放列表不存在"
// @Router /playlists/{id} [get]
func (h *PlaylistHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.playlistService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, "Get playlist", err)
		return
	}
	response.OK(c, "获取播放列表成功", info)
}

// Update PUT /api/v1/playlists/:id
func (h *PlaylistHandler) Update(c *gin.Context) {
	var req dto.PlaylistUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.playlistService.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, "Update playlist", err)
		return
	}
	response.OK(c, "更新播放列表成功", info)
}

// Delete DELETE /api/v1/playlists/:id
func (h *PlaylistHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	if err := h.playlistService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, "Delete playlist", err)
		return
	}
	response.OK(c, "删除播放列表成功", nil)
}

// AddVideo 添加视频到播放列表
// @Summary 添加视频
// @Tags 播放列表
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "播放列表ID"
// @Param request body dto.PlaylistVideoRequest true "视频ID"
// @Success 200 {object} response.Response{data=dto.PlaylistInfo} "添加成功"
// @Failure 400 {object} response.ErrorResponse "视频已在播放列表中"
// @Router /playlists/{id}/videos [post]
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	var req dto.PlaylistVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.playlistService.AddVideo(c.Request.Context(), userID, c.Param("id"), req.VideoID)
	if err != nil {
		handleServiceError(c, "Add video to playlist", err)
		return
	}
	response.OK(c, "添加成功", info)
}

// RemoveVideo DELETE /api/v1/playlists/:id/videos/:videoId
func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.playlistService.RemoveVideo(c.Request.Context(), userID, c.Param("id"), c.Param("videoId"))
	if err != nil {
		handleServiceError(c, "Remove video from playlist", err)
		return
	}
	response.OK(c, "移除成功", info)
}
