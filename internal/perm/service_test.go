package perm

import (
	"context"
	"testing"

	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
)

func TestGetServiceReusesFirstAssembly(t *testing.T) {
	if err := database.Init(&config.DatabaseConfig{Driver: "sqlite"}); err != nil {
		t.Fatalf("init database: %v", err)
	}

	first := GetService(&fakeTree{ids: []int64{1, 2}})
	second := GetService(&fakeTree{ids: []int64{99}})
	if first != second {
		t.Fatal("GetService should return the same instance")
	}

	// 行过滤使用装配时注入的部门子树
	expr := first.ScopeExpr(context.Background(), ScopeDeptAndSub, 1, 9, DefaultColumns())
	if got := sqlOf(t, expr); got != "`dept_id` IN (?, ?)" {
		t.Errorf("injected dept tree not used, sql: %s", got)
	}
}
