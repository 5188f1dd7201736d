package handler

import (
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Subscribe 订阅频道
// @Summary 订阅频道
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param userId path int true "频道（用户）ID"
// @Success 200 {object} response.Response{data=dto.SubscriptionStatus} "订阅成功"
// @Failure 400 {object} response.ErrorResponse "不能订阅自己"
// @Failure 409 {object} response.ErrorResponse "已订阅"
// @Router /subscriptions/{userId} [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	channelID, err := parseUserIDParam(c, "userId")
	if err != nil {
		handleServiceError(c, "Subscribe", err)
		return
	}

	status, err := h.subscriptionService.Subscribe(c.Request.Context(), currentUserID, channelID)
	if err != nil {
		handleServiceError(c, "Subscribe", err)
		return
	}
	response.OK(c, "订阅成功", status)
}

// Unsubscribe 取消订阅
// @Summary 取消订阅
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param userId path int true "频道（用户）ID"
// @Success 200 {object} response.Response{data=dto.SubscriptionStatus} "取消订阅成功"
// @Failure 404 {object} response.ErrorResponse "未订阅"
// @Router /subscriptions/{userId} [delete]
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	channelID, err := parseUserIDParam(c, "userId")
	if err != nil {
		handleServiceError(c, "Unsubscribe", err)
		return
	}

	status, err := h.subscriptionService.Unsubscribe(c.Request.Context(), currentUserID, channelID)
	if err != nil {
		handleServiceError(c, "Unsubscribe", err)
		return
	}
	response.OK(c, "取消订阅成功", status)
}

// Status 订阅状态
// @Summary 订阅状态
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param userId path int true "频道（用户）ID"
// @Success 200 {object} response.Response{data=dto.SubscriptionStatus} "获取成功"
// @Router /subscriptions/{userId}/status [get]
func (h *SubscriptionHandler) Status(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	channelID, err := parseUserIDParam(c, "userId")
	if err != nil {
		handleServiceError(c, "Get subscription status", err)
		return
	}

	status, err := h.subscriptionService.Status(c.Request.Context(), currentUserID, channelID)
	if err != nil {
		handleServiceError(c, "Get subscription status", err)
		return
	}
	response.OK(c, "获取成功", status)
}

// List 我订阅的频道
// @Summary 我的订阅
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.SubscriptionListData} "获取成功"
// @Router /subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, limit := parsePagination(c)

	data, err := h.subscriptionService.List(c.Request.Context(), currentUserID, page, limit)
	if err != nil {
		handleServiceError(c, "List subscriptions", err)
		return
	}
	response.OK(c, "获取订阅列表成功", data)
}
