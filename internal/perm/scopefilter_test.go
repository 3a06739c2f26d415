package perm

import (
	"context"
	"errors"
	"testing"

	"github.com/goadmin/pkg/filter"
)

// fakeTree 固定返回的部门子树
type fakeTree struct {
	ids []int64
	err error
}

func (f *fakeTree) DescendantIDs(ctx context.Context, deptID int64) ([]int64, error) {
	return f.ids, f.err
}

func sqlOf(t *testing.T, expr filter.Expression) string {
	t.Helper()
	if expr == nil {
		return ""
	}
	sql, _ := expr.ToSQL(filter.NewMySQLDialect())
	return sql
}

func TestBuildScopeAll(t *testing.T) {
	f := NewScopeFilter(&fakeTree{})

	expr := f.Build(context.Background(), ScopeAll, 1, 1, DefaultColumns())
	if expr != nil {
		t.Errorf("ALL scope should add no condition, got %v", expr)
	}
}

func TestBuildScopeDeptAndSub(t *testing.T) {
	f := NewScopeFilter(&fakeTree{ids: []int64{2, 3, 4}})

	expr := f.Build(context.Background(), ScopeDeptAndSub, 2, 1, DefaultColumns())
	if got := sqlOf(t, expr); got != "`dept_id` IN (?, ?, ?)" {
		t.Errorf("unexpected sql: %s", got)
	}
}

func TestBuildScopeDeptAndSubNoDeptSeesNothing(t *testing.T) {
	f := NewScopeFilter(&fakeTree{ids: []int64{2, 3}})

	expr := f.Build(context.Background(), ScopeDeptAndSub, 0, 1, DefaultColumns())
	if got := sqlOf(t, expr); got != "1 = 0" {
		t.Errorf("no-dept principal should see nothing, got: %s", got)
	}
}

func TestBuildScopeDeptAndSubTreeErrorSeesNothing(t *testing.T) {
	f := NewScopeFilter(&fakeTree{err: errors.New("db down")})

	expr := f.Build(context.Background(), ScopeDeptAndSub, 2, 1, DefaultColumns())
	if got := sqlOf(t, expr); got != "1 = 0" {
		t.Errorf("tree failure should close visibility, got: %s", got)
	}
}

func TestBuildScopeDept(t *testing.T) {
	f := NewScopeFilter(&fakeTree{})

	expr := f.Build(context.Background(), ScopeDept, 7, 1, DefaultColumns())
	if got := sqlOf(t, expr); got != "`dept_id` = ?" {
		t.Errorf("unexpected sql: %s", got)
	}

	expr = f.Build(context.Background(), ScopeDept, 0, 1, DefaultColumns())
	if got := sqlOf(t, expr); got != "1 = 0" {
		t.Errorf("no-dept principal should see nothing, got: %s", got)
	}
}

func TestBuildScopeSelfUsesOwnerColumn(t *testing.T) {
	f := NewScopeFilter(&fakeTree{})

	expr := f.Build(context.Background(), ScopeSelf, 7, 42, DefaultColumns())
	if got := sqlOf(t, expr); got != "`created_by` = ?" {
		t.Errorf("unexpected sql: %s", got)
	}
}

func TestBuildUndefinedScopeFallsBackToSelf(t *testing.T) {
	f := NewScopeFilter(&fakeTree{})

	expr := f.Build(context.Background(), DataScope(0), 7, 42, DefaultColumns())
	if got := sqlOf(t, expr); got != "`created_by` = ?" {
		t.Errorf("undefined scope should fall back to owner filter, got: %s", got)
	}
}

func TestBuildCustomColumns(t *testing.T) {
	f := NewScopeFilter(&fakeTree{})

	cols := Columns{Dept: "org_id", Owner: "user_id"}
	expr := f.Build(context.Background(), ScopeDept, 7, 1, cols)
	if got := sqlOf(t, expr); got != "`org_id` = ?" {
		t.Errorf("unexpected sql: %s", got)
	}

	expr = f.Build(context.Background(), ScopeSelf, 7, 1, cols)
	if got := sqlOf(t, expr); got != "`user_id` = ?" {
		t.Errorf("unexpected sql: %s", got)
	}
}
