package perm

import (
	"context"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/dal"
	"gorm.io/gorm"
)

// Repository 权限数据仓储接口，提供角色与角色菜单闭包的只读查询
type Repository interface {
	FindRolesByCodes(ctx context.Context, codes []string) ([]model.Role, error)
	FindRoleByCode(ctx context.Context, code string) (*model.Role, error)
	FindEnabledRoles(ctx context.Context) ([]model.Role, error)
	FindPermsByRoleCode(ctx context.Context, code string) ([]string, error)
}

// repository 权限数据仓储实现
type repository struct {
	*dal.BaseRepository[model.Role]
}

// NewRepository 创建权限数据仓储
func NewRepository() Repository {
	return NewRepositoryWithDB(nil)
}

// NewRepositoryWithDB 使用指定DB创建权限数据仓储
func NewRepositoryWithDB(db *gorm.DB) Repository {
	if db == nil {
		return &repository{BaseRepository: dal.NewBaseRepository[model.Role]()}
	}
	return &repository{BaseRepository: dal.NewBaseRepositoryWithDB[model.Role](db)}
}

// FindRolesByCodes 根据编码集合查找角色
func (r *repository) FindRolesByCodes(ctx context.Context, codes []string) ([]model.Role, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var roles []model.Role
	if err := r.DB().WithContext(ctx).
		Where("code IN ?", codes).
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// FindRoleByCode 根据编码查找角色
func (r *repository) FindRoleByCode(ctx context.Context, code string) (*model.Role, error) {
	return r.FindOne(ctx, map[string]interface{}{"code": code})
}

// FindEnabledRoles 查找所有启用的角色
func (r *repository) FindEnabledRoles(ctx context.Context) ([]model.Role, error) {
	return r.FindAll(ctx, map[string]interface{}{"status": model.RoleStatusEnabled})
}

// FindPermsByRoleCode 从角色菜单关联中计算角色的权限标识集合。
// 已禁用的角色没有权限。
func (r *repository) FindPermsByRoleCode(ctx context.Context, code string) ([]string, error) {
	role, err := r.FindRoleByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if role == nil || role.Status != model.RoleStatusEnabled {
		return []string{}, nil
	}

	var perms []string
	if err := r.DB().WithContext(ctx).
		Model(&model.Menu{}).
		Joins("JOIN sys_role_menu ON sys_role_menu.menu_id = sys_menu.id").
		Where("sys_role_menu.role_id = ?", role.ID).
		Where("sys_menu.perm <> ''").
		Distinct().
		Pluck("sys_menu.perm", &perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}
