package role

import (
	"context"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/dal"
	"gorm.io/gorm"
)

// Repository 角色仓储接口
type Repository interface {
	dal.Repository[model.Role]
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	FindMenuIDs(ctx context.Context, roleID int64) ([]int64, error)
	ReplaceMenus(ctx context.Context, roleID int64, menuIDs []int64) error
	CountUsers(ctx context.Context, roleID int64) (int64, error)
}

// repository 角色仓储实现
type repository struct {
	*dal.BaseRepository[model.Role]
}

// NewRepository 创建角色仓储
func NewRepository() Repository {
	return NewRepositoryWithDB(nil)
}

// NewRepositoryWithDB 使用指定DB创建角色仓储
func NewRepositoryWithDB(db *gorm.DB) Repository {
	if db == nil {
		return &repository{BaseRepository: dal.NewBaseRepository[model.Role]()}
	}
	return &repository{BaseRepository: dal.NewBaseRepositoryWithDB[model.Role](db)}
}

// FindByCode 根据编码查找
func (r *repository) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	return r.FindOne(ctx, map[string]interface{}{"code": code})
}

// FindMenuIDs 查找角色关联的菜单ID集合
func (r *repository) FindMenuIDs(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	if err := r.DB().WithContext(ctx).
		Model(&model.RoleMenu{}).
		Where("role_id = ?", roleID).
		Pluck("menu_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplaceMenus 整体替换角色的菜单关联
func (r *repository) ReplaceMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RoleMenu{}).Error; err != nil {
			return err
		}
		for _, menuID := range menuIDs {
			if err := tx.Create(&model.RoleMenu{RoleID: roleID, MenuID: menuID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountUsers 统计持有该角色的用户数
func (r *repository) CountUsers(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	if err := r.DB().WithContext(ctx).
		Model(&model.UserRole{}).
		Where("role_id = ?", roleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
