package oplog

import (
	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/dal"
	"gorm.io/gorm"
)

// Repository 操作日志仓储接口
type Repository interface {
	dal.Repository[model.OperationLog]
}

// repository 操作日志仓储实现
type repository struct {
	*dal.BaseRepository[model.OperationLog]
}

// NewRepository 创建操作日志仓储
func NewRepository() Repository {
	return NewRepositoryWithDB(nil)
}

// NewRepositoryWithDB 使用指定DB创建操作日志仓储
func NewRepositoryWithDB(db *gorm.DB) Repository {
	if db == nil {
		return &repository{BaseRepository: dal.NewBaseRepository[model.OperationLog]()}
	}
	return &repository{BaseRepository: dal.NewBaseRepositoryWithDB[model.OperationLog](db)}
}
