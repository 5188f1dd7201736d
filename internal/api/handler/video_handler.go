package handler

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VideoHandler struct {
	videoService  *service.VideoService
	likeService   *service.LikeService
	uploadService *service.UploadService
	isAdmin       middleware.AdminChecker
	maxUploadSize int64
}

func NewVideoHandler(
	videoService *service.VideoService,
	likeService *service.LikeService,
	uploadService *service.UploadService,
	isAdmin middleware.AdminChecker,
	maxUploadMB int64,
) *VideoHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 500
	}
	return &VideoHandler{
		videoService:  videoService,
		likeService:   likeService,
		uploadService: uploadService,
		isAdmin:       isAdmin,
		maxUploadSize: maxUploadMB * 1024 * 1024,
	}
}

// actor 当前操作者，管理员身份以存储为准
func (h *VideoHandler) actor(c *gin.Context) service.Actor {
	userID, _ := middleware.GetCurrentUserID(c)
	a := service.Actor{UserID: userID}
	if h.isAdmin != nil {
		admin, err := h.isAdmin(c, userID)
		if err != nil {
			logger.Warn("Check admin role failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		a.IsAdmin = admin
	}
	return a
}

// List 视频列表
// @Summary 视频列表
// @Description 按创建时间倒序分页
// @Tags 视频
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.VideoListData} "获取成功"
// @Router /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	data, err := h.videoService.List(c.Request.Context(), page, limit)
	if err != nil {
		handleServiceError(c, "List videos", err)
		return
	}
	response.OK(c, "获取视频列表成功", data)
}

// GetDetail 视频详情
// @Summary 视频详情
// @Description id 为应用层视频 ID，兼容旧的 ObjectID
// @Tags 视频
// @Produce json
// @Param id path string true "视频ID"
// @Success 200 {object} response.Response{data=dto.VideoInfo} "获取成功"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id} [get]
func (h *VideoHandler) GetDetail(c *gin.Context) {
	info, err := h.videoService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, "Get video", err)
		return
	}
	response.OK(c, "获取视频详情成功", info)
}

// Create 创建视频元数据
// @Summary 创建视频
// @Tags 视频
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VideoCreateRequest true "视频信息"
// @Success 201 {object} response.Response{data=dto.VideoInfo} "创建成功"
// @Failure 409 {object} response.ErrorResponse "视频ID已存在"
// @Router /videos [post]
func (h *VideoHandler) Create(c *gin.Context) {
	var req dto.VideoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.videoService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, "Create video", err)
		return
	}
	response.Created(c, "创建视频成功", info)
}

// UpdateVideo PUT /api/v1/videos/:id
// @Summary 更新视频信息
// @Tags 视频
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "视频ID"
// @Param request body dto.VideoUpdateRequest true "更新字段"
// @Success 200 {object} response.Response{data=dto.VideoInfo} "更新成功"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Router /videos/{id} [put]
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	var req dto.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.videoService.Update(c.Request.Context(), h.actor(c), c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, "Update video", err)
		return
	}
	response.OK(c, "更新视频成功", info)
}

// DeleteVideo DELETE /api/v1/videos/:id
// @Summary 删除视频
// @Description 同时删除该视频的点赞与评论
// @Tags 视频
// @Security BearerAuth
// @Param id path string true "视频ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Router /videos/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	if err := h.videoService.Delete(c.Request.Context(), h.actor(c), c.Param("id")); err != nil {
		handleServiceError(c, "Delete video", err)
		return
	}
	response.OK(c, "删除视频成功", nil)
}

// GetMyVideos GET /api/v1/videos/my/list
func (h *VideoHandler) GetMyVideos(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	videos, err := h.videoService.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "List my videos", err)
		return
	}
	response.OK(c, "获取我的视频列表成功", videos)
}

// RecordView 播放量 +1
// @Summary 记录一次播放
// @Tags 视频
// @Produce json
// @Param id path string true "视频ID"
// @Success 200 {object} response.Response{data=dto.ViewResult} "记录成功"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id}/view [patch]
func (h *VideoHandler) RecordView(c *gin.Context) {
	res, err := h.videoService.IncrementView(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, "Record view", err)
		return
	}
	response.OK(c, "播放量已更新", res)
}

// ToggleLike 点赞 / 取消点赞
// @Summary 切换点赞状态
// @Tags 视频
// @Produce json
// @Security BearerAuth
// @Param id path string true "视频ID"
// @Success 200 {object} response.Response{data=dto.LikeResult} "操作成功"
// @Failure 409 {object} response.ErrorResponse "重复点赞"
// @Router /videos/{id}/like [post]
func (h *VideoHandler) ToggleLike(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	res, err := h.likeService.ToggleLike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, "Toggle like", err)
		return
	}
	msg := "取消点赞成功"
	if res.Liked {
		msg = "点赞成功"
	}
	response.OK(c, msg, res)
}

// GetLikes 点赞数与当前用户是否已点赞（未登录时 isLiked 为 false）
// @Summary 点赞状态
// @Tags 视频
// @Produce json
// @Param id path string true "视频ID"
// @Success 200 {object} response.Response{data=dto.LikeStatus} "获取成功"
// @Router /videos/{id}/likes [get]
func (h *VideoHandler) GetLikes(c *gin.Context) {
	var userID *int64
	if u := middleware.GetAuthUser(c); u != nil {
		userID = &u.UserID
	}
	status, err := h.likeService.GetLikeStatus(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, "Get like status", err)
		return
	}
	response.OK(c, "获取点赞状态成功", status)
}

// Stats GET /api/v1/stats
// @Summary 我的创作数据
// @Tags 视频
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.UserStats} "获取成功"
// @Router /stats [get]
func (h *VideoHandler) Stats(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	stats, err := h.videoService.Stats(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "Get stats", err)
		return
	}
	response.OK(c, "获取统计成功", stats)
}

var allowedVideoFormats = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true,
	".mkv": true, ".webm": true,
}

var allowedImageFormats = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// Upload POST /api/v1/upload
// @Summary 上传视频
// @Description multipart 表单，字段 video 为视频文件，thumbnail 为可选封面
// @Tags 视频
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "标题"
// @Param video formData file true "视频文件"
// @Param thumbnail formData file false "封面"
// @Success 201 {object} response.Response{data=dto.VideoInfo} "上传成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 503 {object} response.ErrorResponse "对象存储不可用"
// @Router /upload [post]
func (h *VideoHandler) Upload(c *gin.Context) {
	var req dto.VideoUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		response.BadRequest(c, "请上传视频文件")
		return
	}
	if !allowedVideoFormats[strings.ToLower(filepath.Ext(file.Filename))] {
		response.BadRequest(c, "不支持的文件格式，支持: mp4, avi, mov, mkv, webm")
		return
	}
	if file.Size == 0 || file.Size > h.maxUploadSize {
		response.BadRequest(c, "文件大小无效")
		return
	}

	video, closeVideo, err := openUpload(file)
	if err != nil {
		response.InternalError(c, "打开上传文件失败")
		return
	}
	defer closeVideo()

	var thumb *service.UploadFile
	if tf, err := c.FormFile("thumbnail"); err == nil {
		if !allowedImageFormats[strings.ToLower(filepath.Ext(tf.Filename))] {
			response.BadRequest(c, "不支持的封面格式，支持: jpg, png, webp")
			return
		}
		t, closeThumb, err := openUpload(tf)
		if err != nil {
			response.InternalError(c, "打开封面文件失败")
			return
		}
		defer closeThumb()
		thumb = t
	}

	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.uploadService.Upload(c.Request.Context(), userID, &req, video, thumb)
	if err != nil {
		handleServiceError(c, "Upload video", err)
		return
	}
	response.Created(c, "视频上传成功", info)
}

func openUpload(fh *multipart.FileHeader) (*service.UploadFile, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.UploadFile{
		Reader:      f,
		Size:        fh.Size,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, nil
}
