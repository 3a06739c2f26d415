package perm

import (
	"context"

	"github.com/goadmin/pkg/filter"
	"github.com/goadmin/pkg/logger"
	"go.uber.org/zap"
)

// DeptTree 部门子树查询接口，由部门层级服务实现
type DeptTree interface {
	DescendantIDs(ctx context.Context, deptID int64) ([]int64, error)
}

// Columns 数据权限作用的列名。
// 部门范围作用于部门列，仅本人范围作用于归属人列；
// 由调用方按实体指定，同一个过滤器可复用到用户、日志等不相关的表。
type Columns struct {
	Dept  string // 持有部门ID的列
	Owner string // 持有归属人（创建人）ID的列
}

// DefaultColumns 默认列名
func DefaultColumns() Columns {
	return Columns{Dept: "dept_id", Owner: "created_by"}
}

// ScopeFilter 行级数据权限过滤器。
// 将解析后的数据权限范围翻译为可复用的条件表达式，
// 由列表查询显式组合进自身条件，不做任何隐式改写。
type ScopeFilter struct {
	tree DeptTree
}

// NewScopeFilter 创建行级数据权限过滤器
func NewScopeFilter(tree DeptTree) *ScopeFilter {
	return &ScopeFilter{tree: tree}
}

// Build 构建行过滤表达式。
//   - 全部数据：返回 nil，不附加任何条件
//   - 本部门及下级：部门列 IN 部门子树
//   - 仅本部门：部门列 = 部门ID
//   - 仅本人：归属人列 = 用户ID
//
// 部门范围下主体无所属部门（deptID 为 0）时返回恒假条件：
// 宁可看不到任何行，也不能因漏加条件而放开全部数据。
func (f *ScopeFilter) Build(ctx context.Context, scope DataScope, deptID, userID int64, cols Columns) filter.Expression {
	if cols.Dept == "" {
		cols.Dept = DefaultColumns().Dept
	}
	if cols.Owner == "" {
		cols.Owner = DefaultColumns().Owner
	}

	switch scope {
	case ScopeAll:
		return nil
	case ScopeDeptAndSub:
		if deptID == 0 {
			return filter.None()
		}
		ids, err := f.tree.DescendantIDs(ctx, deptID)
		if err != nil {
			logger.Warn("部门子树查询失败，数据权限收敛为无可见行",
				zap.Int64("deptId", deptID), zap.Error(err))
			return filter.None()
		}
		return filter.Where().In(cols.Dept, ids).Build()
	case ScopeDept:
		if deptID == 0 {
			return filter.None()
		}
		return filter.Where().Eq(cols.Dept, deptID).Build()
	default:
		// 仅本人，以及一切未定义范围的兜底
		return filter.Where().Eq(cols.Owner, userID).Build()
	}
}
