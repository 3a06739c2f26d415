package dept

import (
	"context"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/dal"
	"gorm.io/gorm"
)

// Repository 部门仓储接口
type Repository interface {
	dal.Repository[model.Dept]
	FindByParentID(ctx context.Context, parentID int64) ([]model.Dept, error)
	FindByCode(ctx context.Context, code string) (*model.Dept, error)
	FindAllEnabled(ctx context.Context) ([]model.Dept, error)
	FindByTreePathContains(ctx context.Context, deptID int64) ([]model.Dept, error)
	CountChildren(ctx context.Context, deptID int64) (int64, error)
}

// repository 部门仓储实现
type repository struct {
	*dal.BaseRepository[model.Dept]
}

// NewRepository 创建部门仓储
func NewRepository() Repository {
	return NewRepositoryWithDB(nil)
}

// NewRepositoryWithDB 使用指定DB创建部门仓储
func NewRepositoryWithDB(db *gorm.DB) Repository {
	if db == nil {
		return &repository{BaseRepository: dal.NewBaseRepository[model.Dept]()}
	}
	return &repository{BaseRepository: dal.NewBaseRepositoryWithDB[model.Dept](db)}
}

// FindByParentID 根据父ID查找
func (r *repository) FindByParentID(ctx context.Context, parentID int64) ([]model.Dept, error) {
	return r.FindAll(ctx, map[string]interface{}{"parent_id": parentID})
}

// FindByCode 根据编码查找
func (r *repository) FindByCode(ctx context.Context, code string) (*model.Dept, error) {
	return r.FindOne(ctx, map[string]interface{}{"code": code})
}

// FindAllEnabled 查找所有启用的部门
func (r *repository) FindAllEnabled(ctx context.Context) ([]model.Dept, error) {
	return r.FindAll(ctx, map[string]interface{}{"status": 1}, dal.WithOrder("sort asc, id asc"))
}

// FindByTreePathContains 查找树路径中可能包含指定部门的候选集。
// LIKE 只做粗筛，精确的路径段匹配由调用方完成。
func (r *repository) FindByTreePathContains(ctx context.Context, deptID int64) ([]model.Dept, error) {
	var depts []model.Dept
	pattern := "%" + itoa(deptID) + "%"
	if err := r.DB().WithContext(ctx).
		Where("tree_path LIKE ?", pattern).
		Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

// CountChildren 统计直接下级部门数量
func (r *repository) CountChildren(ctx context.Context, deptID int64) (int64, error) {
	return r.Count(ctx, map[string]interface{}{"parent_id": deptID})
}
