package menu

import (
	"context"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/dal"
	"gorm.io/gorm"
)

// Repository 菜单仓储接口
type Repository interface {
	dal.Repository[model.Menu]
	FindAllOrdered(ctx context.Context) ([]model.Menu, error)
	CountChildren(ctx context.Context, menuID int64) (int64, error)
	DeleteRoleBindings(ctx context.Context, menuID int64) error
}

// repository 菜单仓储实现
type repository struct {
	*dal.BaseRepository[model.Menu]
}

// NewRepository 创建菜单仓储
func NewRepository() Repository {
	return NewRepositoryWithDB(nil)
}

// NewRepositoryWithDB 使用指定DB创建菜单仓储
func NewRepositoryWithDB(db *gorm.DB) Repository {
	if db == nil {
		return &repository{BaseRepository: dal.NewBaseRepository[model.Menu]()}
	}
	return &repository{BaseRepository: dal.NewBaseRepositoryWithDB[model.Menu](db)}
}

// FindAllOrdered 查找全部菜单（按排序值）
func (r *repository) FindAllOrdered(ctx context.Context) ([]model.Menu, error) {
	return r.FindAll(ctx, nil, dal.WithOrder("sort asc, id asc"))
}

// CountChildren 统计直接下级菜单数量
func (r *repository) CountChildren(ctx context.Context, menuID int64) (int64, error) {
	return r.Count(ctx, map[string]interface{}{"parent_id": menuID})
}

// DeleteRoleBindings 清除菜单的角色关联
func (r *repository) DeleteRoleBindings(ctx context.Context, menuID int64) error {
	return r.DB().WithContext(ctx).
		Where("menu_id = ?", menuID).
		Delete(&model.RoleMenu{}).Error
}
