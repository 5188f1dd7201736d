package repository

import (
	"context"
	"errors"

	"vidhub-go/internal/errs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"gorm.io/gorm"
)

// codeTypeMismatch MongoDB 对非数值字段执行 $inc 时返回的错误码
const codeTypeMismatch = 14

// translate 把驱动错误映射为 errs 分类，调用方只需 errors.Is 判断
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(errs.ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err), errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Wrap(errs.ErrConflict, err)
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, topology.ErrServerSelectionTimeout),
		errors.Is(err, mongo.ErrClientDisconnected):
		return errs.Wrap(errs.ErrUnavailable, err)
	}
	return err
}

func isTypeMismatch(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(codeTypeMismatch)
}
