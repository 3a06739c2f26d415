package dept

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	hierarchy     *Hierarchy
	hierarchyOnce sync.Once
)

// Hierarchy 部门层级服务。
// 维护物化树路径，支撑"本部门及下级"数据权限的子树查询。
type Hierarchy struct {
	repo Repository
}

// GetHierarchy 获取部门层级服务单例
func GetHierarchy() *Hierarchy {
	hierarchyOnce.Do(func() {
		hierarchy = NewHierarchy(NewRepository())
	})
	return hierarchy
}

// NewHierarchy 创建部门层级服务
func NewHierarchy(repo Repository) *Hierarchy {
	return &Hierarchy{repo: repo}
}

// ComputeTreePath 计算以 parentID 为父节点的树路径。
// 父节点为根（0）时返回根哨兵 "0"，否则为 父路径 + "," + 父ID。
func (h *Hierarchy) ComputeTreePath(ctx context.Context, parentID int64) (string, error) {
	if parentID == 0 {
		return model.RootTreePath, nil
	}

	parent, err := h.repo.FindByID(ctx, parentID)
	if err != nil {
		return "", err
	}
	if parent == nil {
		return "", errors.NotFound("上级部门")
	}

	return parent.TreePath + "," + itoa(parentID), nil
}

// DescendantIDs 返回 deptID 及其全部下级部门的ID集合
func (h *Hierarchy) DescendantIDs(ctx context.Context, deptID int64) ([]int64, error) {
	candidates, err := h.repo.FindByTreePathContains(ctx, deptID)
	if err != nil {
		return nil, err
	}

	ids := []int64{deptID}
	for _, d := range candidates {
		if d.ID == deptID {
			continue
		}
		if containsSegment(d.TreePath, deptID) {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

// AncestorIDs 返回 deptID 的全部上级部门ID（从树路径解析，不含根哨兵）
func (h *Hierarchy) AncestorIDs(ctx context.Context, deptID int64) ([]int64, error) {
	dept, err := h.repo.FindByID(ctx, deptID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, errors.NotFound("部门")
	}

	return parseTreePath(dept.TreePath), nil
}

// Create 创建部门并写入树路径
func (h *Hierarchy) Create(ctx context.Context, dept *model.Dept) error {
	if existing, err := h.repo.FindByCode(ctx, dept.Code); err != nil {
		return err
	} else if existing != nil {
		return errors.Duplicate("部门编码")
	}

	treePath, err := h.ComputeTreePath(ctx, dept.ParentID)
	if err != nil {
		return err
	}
	dept.TreePath = treePath

	return h.repo.Create(ctx, dept)
}

// Update 更新部门；父节点变化时重算本节点及整个子树的树路径
func (h *Hierarchy) Update(ctx context.Context, dept *model.Dept) error {
	current, err := h.repo.FindByID(ctx, dept.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return errors.NotFound("部门")
	}

	if dept.ParentID == current.ParentID {
		dept.TreePath = current.TreePath
		return h.repo.Update(ctx, dept)
	}

	if dept.ParentID == dept.ID {
		return errors.BadRequest("不能将部门移动到自身或其下级")
	}

	newPath, err := h.ComputeTreePath(ctx, dept.ParentID)
	if err != nil {
		return err
	}
	if containsSegment(newPath, current.ID) {
		return errors.BadRequest("不能将部门移动到自身或其下级")
	}

	oldPrefix := current.TreePath + "," + itoa(current.ID)
	newPrefix := newPath + "," + itoa(current.ID)

	return h.repo.Transaction(ctx, func(tx *gorm.DB) error {
		dept.TreePath = newPath
		if err := tx.Save(dept).Error; err != nil {
			return err
		}

		// 子树路径前缀整体替换
		descendants, err := h.DescendantIDs(ctx, current.ID)
		if err != nil {
			return err
		}
		for _, id := range descendants {
			if id == current.ID {
				continue
			}
			var child model.Dept
			if err := tx.Where("id = ?", id).First(&child).Error; err != nil {
				return err
			}
			rebuilt := newPrefix + strings.TrimPrefix(child.TreePath, oldPrefix)
			if err := tx.Model(&model.Dept{}).Where("id = ?", id).
				Update("tree_path", rebuilt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除部门；存在直接下级时拒绝删除（内部节点不做级联）
func (h *Hierarchy) Delete(ctx context.Context, deptID int64) error {
	count, err := h.repo.CountChildren(ctx, deptID)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Warn("拒绝删除存在下级的部门", zap.Int64("deptId", deptID), zap.Int64("children", count))
		return errors.ErrDeptHasChildren
	}

	return h.repo.Delete(ctx, deptID)
}

// containsSegment 判断树路径是否包含指定ID路径段
func containsSegment(treePath string, id int64) bool {
	target := itoa(id)
	for _, seg := range strings.Split(treePath, ",") {
		if seg == target {
			return true
		}
	}
	return false
}

// parseTreePath 解析树路径为祖先ID列表（忽略根哨兵）
func parseTreePath(treePath string) []int64 {
	segs := strings.Split(treePath, ",")
	ids := make([]int64, 0, len(segs))
	for _, seg := range segs {
		id, err := strconv.ParseInt(seg, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
