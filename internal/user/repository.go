package user

import (
	"context"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/dal"
	"gorm.io/gorm"
)

// Repository 用户仓储接口
type Repository interface {
	dal.Repository[model.User]
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	ReplaceRoles(ctx context.Context, user *model.User, roleIDs []int64) error
}

// repository 用户仓储实现
type repository struct {
	*dal.BaseRepository[model.User]
}

// NewRepository 创建用户仓储
func NewRepository() Repository {
	return NewRepositoryWithDB(nil)
}

// NewRepositoryWithDB 使用指定DB创建用户仓储
func NewRepositoryWithDB(db *gorm.DB) Repository {
	if db == nil {
		return &repository{BaseRepository: dal.NewBaseRepository[model.User]()}
	}
	return &repository{BaseRepository: dal.NewBaseRepositoryWithDB[model.User](db)}
}

// FindByUsername 根据用户名查找（预加载角色）
func (r *repository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.FindOne(ctx, map[string]interface{}{"username": username}, dal.WithPreload("Roles"))
}

// UpdatePassword 更新密码
func (r *repository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	return r.UpdateFields(ctx, userID, map[string]interface{}{"password": hashedPassword})
}

// ReplaceRoles 整体替换用户的角色关联
func (r *repository) ReplaceRoles(ctx context.Context, user *model.User, roleIDs []int64) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			if err := tx.Create(&model.UserRole{UserID: user.ID, RoleID: roleID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
