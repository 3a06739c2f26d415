package perm

import (
	"context"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/logger"
	"go.uber.org/zap"
)

// DataScope 数据权限范围，数值越小可见范围越大
type DataScope int8

// 数据权限范围常量
const (
	ScopeAll        DataScope = 1 // 全部数据
	ScopeDeptAndSub DataScope = 2 // 本部门及下级
	ScopeDept       DataScope = 3 // 仅本部门
	ScopeSelf       DataScope = 4 // 仅本人
)

// Valid 判断是否为已定义的范围值
func (s DataScope) Valid() bool {
	return s >= ScopeAll && s <= ScopeSelf
}

// Resolver 数据权限范围解析器。
// 取启用角色中数值最小（最宽）的范围；无法确定时收敛为仅本人。
// 范围值直接来自角色表，计算廉价且过期风险高，因此不走缓存。
type Resolver struct {
	repo Repository
}

// NewResolver 创建数据权限范围解析器
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve 解析角色编码集合的生效数据权限范围。
// 空集合、角色数据不可读、或没有任何已定义范围时，一律返回仅本人。
func (r *Resolver) Resolve(ctx context.Context, roleCodes []string) DataScope {
	if len(roleCodes) == 0 {
		return ScopeSelf
	}

	roles, err := r.repo.FindRolesByCodes(ctx, roleCodes)
	if err != nil {
		logger.Warn("角色数据读取失败，数据权限收敛为仅本人", zap.Error(err))
		return ScopeSelf
	}

	resolved := DataScope(0)
	for _, role := range roles {
		if role.Status != model.RoleStatusEnabled {
			continue
		}
		scope := DataScope(role.DataScope)
		if !scope.Valid() {
			continue
		}
		if resolved == 0 || scope < resolved {
			resolved = scope
		}
	}

	if resolved == 0 {
		return ScopeSelf
	}
	return resolved
}
