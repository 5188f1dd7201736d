package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// ListByVideo 评论列表（游标分页，最新在前）
// @Summary 评论列表
// @Description cursor 为上一页返回的 nextCursor（RFC3339 时间戳）
// @Tags 评论
// @Produce json
// @Param id path string true "视频ID"
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.CursorResponse{data=[]dto.CommentInfo} "获取成功"
// @Failure 400 {object} response.ErrorResponse "游标无效"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id}/comments [get]
func (h *CommentHandler) ListByVideo(c *gin.Context) {
	var q dto.CommentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	cursor, err := service.ParseCursor(q.Cursor)
	if err != nil {
		handleServiceError(c, "List comments", err)
		return
	}

	page, err := h.commentService.List(c.Request.Context(), c.Param("id"), cursor, q.Limit)
	if err != nil {
		handleServiceError(c, "List comments", err)
		return
	}
	response.Cursor(c, "获取评论列表成功", page.Items, page.NextCursor, page.HasMore)
}

// Create 发表评论
// @Summary 发表评论
// @Description 文本会去除 HTML 标签，清理后不能为空且不超过 2000 字符
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "视频ID"
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 201 {object} response.Response{data=dto.CommentInfo} "发表成功"
// @Failure 400 {object} response.ErrorResponse "内容无效"
// @Router /videos/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	info, err := h.commentService.Add(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		handleServiceError(c, "Add comment", err)
		return
	}
	response.Created(c, "发表评论成功", info)
}

// Delete DELETE /api/v1/comments/:id
// @Summary 删除评论
// @Description 只能删除自己的评论
// @Tags 评论
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	if err := h.commentService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, "Delete comment", err)
		return
	}
	response.OK(c, "删除评论成功", nil)
}
