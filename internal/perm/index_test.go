package perm

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func newTestIndex(t *testing.T) (*Index, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db := newTestDB(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := database.NewCacheWithClient(client, "perm")

	return NewIndex(cache, NewRepositoryWithDB(db)), db, mr
}

func seedMenuPerm(t *testing.T, db *gorm.DB, roleID int64, perm string) {
	t.Helper()

	menu := &model.Menu{Name: perm, Type: model.MenuTypeButton, Perm: perm}
	if err := db.Create(menu).Error; err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if err := db.Create(&model.RoleMenu{RoleID: roleID, MenuID: menu.ID}).Error; err != nil {
		t.Fatalf("seed role menu: %v", err)
	}
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestRefreshAllAndPermissionsFor(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	admin := seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusEnabled)
	seedMenuPerm(t, db, admin.ID, "sys:user:list")
	seedMenuPerm(t, db, admin.ID, "sys:user:create")

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	perms, err := idx.PermissionsFor(ctx, []string{"admin"})
	if err != nil {
		t.Fatalf("permissions for: %v", err)
	}
	want := []string{"sys:user:create", "sys:user:list"}
	got := sorted(perms)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("perms = %v, want %v", got, want)
	}
}

func TestPermissionsForUnionDeduplicates(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	a := seedRole(t, db, "a", int8(ScopeSelf), model.RoleStatusEnabled)
	b := seedRole(t, db, "b", int8(ScopeSelf), model.RoleStatusEnabled)
	seedMenuPerm(t, db, a.ID, "sys:dept:list")

	// 两个角色共享同一个菜单
	var menu model.Menu
	if err := db.Where("perm = ?", "sys:dept:list").First(&menu).Error; err != nil {
		t.Fatalf("find menu: %v", err)
	}
	if err := db.Create(&model.RoleMenu{RoleID: b.ID, MenuID: menu.ID}).Error; err != nil {
		t.Fatalf("seed role menu: %v", err)
	}
	seedMenuPerm(t, db, b.ID, "sys:dept:create")

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	perms, err := idx.PermissionsFor(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("permissions for: %v", err)
	}
	if len(perms) != 2 {
		t.Errorf("union should deduplicate, got %v", perms)
	}
}

func TestPermissionsForEmptyRoles(t *testing.T) {
	idx, _, _ := newTestIndex(t)

	perms, err := idx.PermissionsFor(context.Background(), nil)
	if err != nil {
		t.Fatalf("permissions for: %v", err)
	}
	if len(perms) != 0 {
		t.Errorf("empty roles should have no perms, got %v", perms)
	}
}

func TestPermissionsForFallsBackWithoutCache(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	admin := seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusEnabled)
	seedMenuPerm(t, db, admin.ID, "sys:user:list")

	// 未执行 RefreshAll，读路径直接回源
	perms, err := idx.PermissionsFor(ctx, []string{"admin"})
	if err != nil {
		t.Fatalf("permissions for: %v", err)
	}
	if len(perms) != 1 || perms[0] != "sys:user:list" {
		t.Errorf("perms = %v, want [sys:user:list]", perms)
	}
}

func TestDisabledRoleHasNoPermissions(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	disabled := seedRole(t, db, "frozen", int8(ScopeAll), model.RoleStatusDisabled)
	seedMenuPerm(t, db, disabled.ID, "sys:user:list")

	perms, err := idx.PermissionsFor(ctx, []string{"frozen"})
	if err != nil {
		t.Fatalf("permissions for: %v", err)
	}
	if len(perms) != 0 {
		t.Errorf("disabled role should have no perms, got %v", perms)
	}
}

func TestRefreshOverwritesSingleRole(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	admin := seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusEnabled)
	seedMenuPerm(t, db, admin.ID, "sys:user:list")

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	seedMenuPerm(t, db, admin.ID, "sys:user:delete")
	if err := idx.Refresh(ctx, "admin"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	perms, err := idx.PermissionsFor(ctx, []string{"admin"})
	if err != nil {
		t.Fatalf("permissions for: %v", err)
	}
	if !utils.Contains(perms, "sys:user:delete") {
		t.Errorf("refreshed perms = %v, missing sys:user:delete", perms)
	}
}

func TestRenameMigratesCacheEntry(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	admin := seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusEnabled)
	seedMenuPerm(t, db, admin.ID, "sys:user:list")

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	if err := db.Model(admin).Update("code", "superadmin").Error; err != nil {
		t.Fatalf("rename role: %v", err)
	}
	if err := idx.Rename(ctx, "admin", "superadmin"); err != nil {
		t.Fatalf("rename index: %v", err)
	}

	gen := idx.currentGen(ctx)
	if _, ok := idx.readCached(ctx, gen, "admin"); ok {
		t.Error("old role code should be evicted from cache")
	}
	if perms, ok := idx.readCached(ctx, gen, "superadmin"); !ok || len(perms) != 1 {
		t.Errorf("new role code should be cached, got ok=%v perms=%v", ok, perms)
	}
}

func TestRefreshAllSwapsGenerationPointer(t *testing.T) {
	idx, db, _ := newTestIndex(t)
	ctx := context.Background()

	seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusEnabled)

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first := idx.currentGen(ctx)

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	second := idx.currentGen(ctx)

	if second <= first {
		t.Errorf("generation should advance: first=%d second=%d", first, second)
	}
	// 旧代的key保留到TTL过期，切换期间的读方不会看到空集合
	if _, ok := idx.readCached(ctx, first, "admin"); !ok {
		t.Error("previous generation keys should survive the swap")
	}
}

func TestPermissionsForSurvivesRedisDown(t *testing.T) {
	idx, db, mr := newTestIndex(t)
	ctx := context.Background()

	admin := seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusEnabled)
	seedMenuPerm(t, db, admin.ID, "sys:user:list")

	if err := idx.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	mr.Close()

	perms, err := idx.PermissionsFor(ctx, []string{"admin"})
	if err != nil {
		t.Fatalf("permissions for with redis down: %v", err)
	}
	if len(perms) != 1 || perms[0] != "sys:user:list" {
		t.Errorf("perms = %v, want [sys:user:list]", perms)
	}
}
