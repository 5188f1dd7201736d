package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 管理员用户管理
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers 获取用户列表
// @Summary 获取用户列表（管理员）
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.UserListData} "获取成功"
// @Failure 403 {object} response.ErrorResponse "需要管理员权限"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	data, err := h.userService.List(c.Request.Context(), page, limit)
	if err != nil {
		handleServiceError(c, "List users", err)
		return
	}
	response.OK(c, "获取用户列表成功", data)
}

// SetAdmin 设置或取消管理员
// @Summary 设置管理员（管理员）
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body dto.SetAdminRequest true "是否管理员"
// @Success 200 {object} response.Response{data=dto.UserInfo} "设置成功"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /admin/users/{id}/admin [put]
func (h *UserHandler) SetAdmin(c *gin.Context) {
	targetID, err := parseUserIDParam(c, "id")
	if err != nil {
		handleServiceError(c, "Set admin", err)
		return
	}

	var req dto.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	actorID, _ := middleware.GetCurrentUserID(c)
	info, err := h.userService.SetAdmin(c.Request.Context(), actorID, targetID, *req.IsAdmin)
	if err != nil {
		handleServiceError(c, "Set admin", err)
		return
	}
	response.OK(c, "设置成功", info)
}
