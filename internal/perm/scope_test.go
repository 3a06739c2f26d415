package perm

import (
	"context"
	"testing"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&model.Role{}, &model.RoleMenu{}, &model.Menu{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRole(t *testing.T, db *gorm.DB, code string, dataScope int8, status int8) *model.Role {
	t.Helper()

	role := &model.Role{Name: code, Code: code, DataScope: dataScope, Status: status}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("seed role %s: %v", code, err)
	}
	return role
}

func TestResolveMinimumWins(t *testing.T) {
	db := newTestDB(t)
	seedRole(t, db, "viewer", int8(ScopeSelf), model.RoleStatusEnabled)
	seedRole(t, db, "manager", int8(ScopeDeptAndSub), model.RoleStatusEnabled)
	seedRole(t, db, "auditor", int8(ScopeDept), model.RoleStatusEnabled)

	r := NewResolver(NewRepositoryWithDB(db))

	got := r.Resolve(context.Background(), []string{"viewer", "manager", "auditor"})
	if got != ScopeDeptAndSub {
		t.Errorf("resolved scope = %d, want %d (widest wins)", got, ScopeDeptAndSub)
	}
}

func TestResolveEmptyRolesFallsBackToSelf(t *testing.T) {
	db := newTestDB(t)
	r := NewResolver(NewRepositoryWithDB(db))

	if got := r.Resolve(context.Background(), nil); got != ScopeSelf {
		t.Errorf("empty roles scope = %d, want %d", got, ScopeSelf)
	}
}

func TestResolveSkipsDisabledRoles(t *testing.T) {
	db := newTestDB(t)
	seedRole(t, db, "admin", int8(ScopeAll), model.RoleStatusDisabled)
	seedRole(t, db, "viewer", int8(ScopeDept), model.RoleStatusEnabled)

	r := NewResolver(NewRepositoryWithDB(db))

	got := r.Resolve(context.Background(), []string{"admin", "viewer"})
	if got != ScopeDept {
		t.Errorf("resolved scope = %d, want %d (disabled role ignored)", got, ScopeDept)
	}
}

func TestResolveSkipsInvalidScopeValues(t *testing.T) {
	db := newTestDB(t)
	seedRole(t, db, "broken", 99, model.RoleStatusEnabled)

	r := NewResolver(NewRepositoryWithDB(db))

	if got := r.Resolve(context.Background(), []string{"broken"}); got != ScopeSelf {
		t.Errorf("invalid scope value resolved to %d, want %d", got, ScopeSelf)
	}
}

func TestResolveUnknownRolesFallsBackToSelf(t *testing.T) {
	db := newTestDB(t)
	r := NewResolver(NewRepositoryWithDB(db))

	if got := r.Resolve(context.Background(), []string{"ghost"}); got != ScopeSelf {
		t.Errorf("unknown roles scope = %d, want %d", got, ScopeSelf)
	}
}

func TestDataScopeValid(t *testing.T) {
	for _, s := range []DataScope{ScopeAll, ScopeDeptAndSub, ScopeDept, ScopeSelf} {
		if !s.Valid() {
			t.Errorf("scope %d should be valid", s)
		}
	}
	for _, s := range []DataScope{0, 5, -1} {
		if s.Valid() {
			t.Errorf("scope %d should be invalid", s)
		}
	}
}
