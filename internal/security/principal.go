package security

import (
	"context"

	"github.com/goadmin/internal/perm"
	"github.com/goadmin/pkg/filter"
	"github.com/goadmin/pkg/utils"
)

// Authorizer 授权决策接口，由权限模块实现
type Authorizer interface {
	PermissionsFor(ctx context.Context, roleCodes []string) ([]string, error)
	ResolveScope(ctx context.Context, roleCodes []string) perm.DataScope
	ScopeExpr(ctx context.Context, scope perm.DataScope, deptID, userID int64, cols perm.Columns) filter.Expression
}

// Principal 请求主体上下文。
// 每次请求从通过校验的令牌构建一次，仅存活于请求生命周期内；
// 权限集合与数据权限范围按需解析并在本请求内复用。
type Principal struct {
	UserID    int64    `json:"userId"`
	Username  string   `json:"username"`
	DeptID    int64    `json:"deptId"`
	RoleCodes []string `json:"roleCodes"`

	authz       Authorizer
	perms       []string
	permsLoaded bool
	scope       perm.DataScope
	scopeLoaded bool
}

// Bind 绑定授权决策器，由认证中间件在构建主体后调用
func (p *Principal) Bind(authz Authorizer) *Principal {
	p.authz = authz
	return p
}

// Permissions 按需解析主体持有的权限标识集合
func (p *Principal) Permissions(ctx context.Context) ([]string, error) {
	if p == nil {
		return []string{}, nil
	}
	if p.permsLoaded {
		return p.perms, nil
	}
	if p.authz == nil {
		return []string{}, nil
	}

	perms, err := p.authz.PermissionsFor(ctx, p.RoleCodes)
	if err != nil {
		return nil, err
	}
	p.perms = perms
	p.permsLoaded = true
	return perms, nil
}

// HasPermission 判断主体是否持有指定权限标识。
// 权限数据不可读时按无权限处理。
func (p *Principal) HasPermission(ctx context.Context, permission string) bool {
	perms, err := p.Permissions(ctx)
	if err != nil {
		return false
	}
	return utils.Contains(perms, permission)
}

// DataScope 按需解析主体的生效数据权限范围
func (p *Principal) DataScope(ctx context.Context) perm.DataScope {
	if p == nil {
		return perm.ScopeSelf
	}
	if p.scopeLoaded {
		return p.scope
	}
	if p.authz == nil {
		return perm.ScopeSelf
	}

	p.scope = p.authz.ResolveScope(ctx, p.RoleCodes)
	p.scopeLoaded = true
	return p.scope
}

// ScopeExpr 构建主体在指定列上的行过滤表达式，nil 表示不限制
func (p *Principal) ScopeExpr(ctx context.Context, cols perm.Columns) filter.Expression {
	if p == nil || p.authz == nil {
		return filter.None()
	}
	return p.authz.ScopeExpr(ctx, p.DataScope(ctx), p.DeptID, p.UserID, cols)
}
