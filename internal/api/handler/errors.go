package handler

import (
	"errors"
	"strconv"

	"vidhub-go/internal/api/response"
	"vidhub-go/internal/errs"
	"vidhub-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError 按错误分类映射 HTTP 状态码，未分类的错误记录日志并返回通用提示
func handleServiceError(c *gin.Context, op string, err error) {
	switch errs.KindOf(err) {
	case errs.ErrNotFound:
		response.NotFound(c, err.Error())
	case errs.ErrValidation:
		response.BadRequest(c, err.Error())
	case errs.ErrForbidden:
		response.Forbidden(c, err.Error())
	case errs.ErrConflict:
		response.Conflict(c, err.Error())
	case errs.ErrRateLimited:
		response.TooManyRequests(c, err.Error(), 0)
	case errs.ErrUnauthorized:
		response.Unauthorized(c, err.Error())
	case errs.ErrUnavailable:
		logger.Warn(op+" failed, dependency unavailable", zap.Error(err))
		var e *errs.Error
		if errors.As(err, &e) {
			response.ServiceUnavailable(c, e.Error())
			return
		}
		response.ServiceUnavailable(c, "服务暂时不可用，请稍后重试")
	default:
		logger.Error(op+" failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}

// parsePagination 解析 page / limit，非法值回落到默认值
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseUserIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("无效的用户ID")
	}
	return id, nil
}
