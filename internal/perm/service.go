package perm

import (
	"context"
	"sync"

	"github.com/goadmin/pkg/filter"
)

var (
	service     *Service
	serviceOnce sync.Once
)

// Service 权限决策服务，聚合权限索引、范围解析与行过滤
type Service struct {
	index    *Index
	resolver *Resolver
	filter   *ScopeFilter
}

// GetService 获取权限决策服务单例。
// 部门子树查询由装配方注入，首次调用完成装配，之后的调用复用同一实例。
func GetService(tree DeptTree) *Service {
	serviceOnce.Do(func() {
		repo := NewRepository()
		service = NewService(
			NewDefaultIndex(repo),
			NewResolver(repo),
			NewScopeFilter(tree),
		)
	})
	return service
}

// NewService 创建权限决策服务
func NewService(index *Index, resolver *Resolver, scopeFilter *ScopeFilter) *Service {
	return &Service{
		index:    index,
		resolver: resolver,
		filter:   scopeFilter,
	}
}

// Index 获取角色权限索引
func (s *Service) Index() *Index {
	return s.index
}

// PermissionsFor 返回角色编码集合的权限并集
func (s *Service) PermissionsFor(ctx context.Context, roleCodes []string) ([]string, error) {
	return s.index.PermissionsFor(ctx, roleCodes)
}

// ResolveScope 解析角色编码集合的生效数据权限范围
func (s *Service) ResolveScope(ctx context.Context, roleCodes []string) DataScope {
	return s.resolver.Resolve(ctx, roleCodes)
}

// ScopeExpr 构建数据权限行过滤表达式
func (s *Service) ScopeExpr(ctx context.Context, scope DataScope, deptID, userID int64, cols Columns) filter.Expression {
	return s.filter.Build(ctx, scope, deptID, userID, cols)
}
