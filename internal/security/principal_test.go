package security

import (
	"context"
	"testing"

	"github.com/goadmin/internal/perm"
)

func TestPrincipalHasPermission(t *testing.T) {
	p := (&Principal{UserID: 1, RoleCodes: []string{"admin"}}).
		Bind(&stubAuthorizer{perms: []string{"sys:user:list"}, scope: perm.ScopeDept})
	ctx := context.Background()

	if !p.HasPermission(ctx, "sys:user:list") {
		t.Error("should hold sys:user:list")
	}
	if p.HasPermission(ctx, "sys:user:delete") {
		t.Error("should not hold sys:user:delete")
	}
}

func TestPrincipalWithoutAuthorizerIsClosed(t *testing.T) {
	p := &Principal{UserID: 1}
	ctx := context.Background()

	if p.HasPermission(ctx, "sys:user:list") {
		t.Error("unbound principal should have no permissions")
	}
	if p.DataScope(ctx) != perm.ScopeSelf {
		t.Errorf("unbound principal scope = %d, want %d", p.DataScope(ctx), perm.ScopeSelf)
	}

	expr := p.ScopeExpr(ctx, perm.DefaultColumns())
	if expr == nil {
		t.Fatal("unbound principal should get a closed filter")
	}
}

func TestPrincipalCachesScopeResolution(t *testing.T) {
	p := (&Principal{UserID: 1, RoleCodes: []string{"admin"}}).
		Bind(&stubAuthorizer{scope: perm.ScopeAll})
	ctx := context.Background()

	if p.DataScope(ctx) != perm.ScopeAll {
		t.Fatalf("scope = %d, want %d", p.DataScope(ctx), perm.ScopeAll)
	}

	// 同一请求内重复解析复用首次结果
	p.authz = &stubAuthorizer{scope: perm.ScopeSelf}
	if p.DataScope(ctx) != perm.ScopeAll {
		t.Error("scope should be resolved once per principal")
	}
}
