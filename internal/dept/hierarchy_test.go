package dept

import (
	"context"
	"testing"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/dal"
	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/errors"
	"gorm.io/gorm"
)

func dalModel(id int64) dal.Model {
	return dal.Model{ID: id}
}

func newTestHierarchy(t *testing.T) (*Hierarchy, *gorm.DB) {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&model.Dept{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewHierarchy(NewRepositoryWithDB(db)), db
}

func mustCreate(t *testing.T, h *Hierarchy, parentID int64, name, code string) *model.Dept {
	t.Helper()

	d := &model.Dept{ParentID: parentID, Name: name, Code: code, Status: 1}
	if err := h.Create(context.Background(), d); err != nil {
		t.Fatalf("create dept %s: %v", code, err)
	}
	return d
}

func TestComputeTreePath(t *testing.T) {
	h, _ := newTestHierarchy(t)
	ctx := context.Background()

	path, err := h.ComputeTreePath(ctx, 0)
	if err != nil {
		t.Fatalf("compute root path: %v", err)
	}
	if path != model.RootTreePath {
		t.Errorf("root path = %q, want %q", path, model.RootTreePath)
	}

	root := mustCreate(t, h, 0, "总公司", "HQ")
	if root.TreePath != "0" {
		t.Errorf("root tree path = %q, want 0", root.TreePath)
	}

	child := mustCreate(t, h, root.ID, "研发部", "RD")
	want := root.TreePath + "," + itoa(root.ID)
	if child.TreePath != want {
		t.Errorf("child tree path = %q, want %q", child.TreePath, want)
	}

	if _, err := h.ComputeTreePath(ctx, 9999); err == nil {
		t.Error("expected error for missing parent")
	}
}

func TestCreateDuplicateCode(t *testing.T) {
	h, _ := newTestHierarchy(t)

	mustCreate(t, h, 0, "总公司", "HQ")
	d := &model.Dept{ParentID: 0, Name: "另一个", Code: "HQ", Status: 1}
	if err := h.Create(context.Background(), d); err == nil {
		t.Error("expected duplicate code error")
	}
}

func TestDescendantIDsExactSegmentMatch(t *testing.T) {
	h, _ := newTestHierarchy(t)
	ctx := context.Background()

	root := mustCreate(t, h, 0, "总公司", "HQ")
	rd := mustCreate(t, h, root.ID, "研发部", "RD")
	fe := mustCreate(t, h, rd.ID, "前端组", "FE")
	mustCreate(t, h, root.ID, "市场部", "MK")

	ids, err := h.DescendantIDs(ctx, rd.ID)
	if err != nil {
		t.Fatalf("descendant ids: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("descendants of RD = %v, want [self, FE]", ids)
	}
	if ids[0] != rd.ID || ids[1] != fe.ID {
		t.Errorf("descendants of RD = %v, want [%d %d]", ids, rd.ID, fe.ID)
	}
}

func TestDescendantIDsDoesNotMatchSubstring(t *testing.T) {
	h, db := newTestHierarchy(t)
	ctx := context.Background()

	// 构造ID为 1 和 11 的部门：路径段 "11" 包含子串 "1"，不能误判
	one := &model.Dept{Model: dalModel(1), ParentID: 0, TreePath: "0", Name: "一", Code: "D1", Status: 1}
	eleven := &model.Dept{Model: dalModel(11), ParentID: 0, TreePath: "0", Name: "十一", Code: "D11", Status: 1}
	child := &model.Dept{Model: dalModel(12), ParentID: 11, TreePath: "0,11", Name: "十一下级", Code: "D11C", Status: 1}
	for _, d := range []*model.Dept{one, eleven, child} {
		if err := db.Create(d).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ids, err := h.DescendantIDs(ctx, 1)
	if err != nil {
		t.Fatalf("descendant ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("descendants of 1 = %v, want [1]", ids)
	}
}

func TestAncestorIDs(t *testing.T) {
	h, _ := newTestHierarchy(t)
	ctx := context.Background()

	root := mustCreate(t, h, 0, "总公司", "HQ")
	rd := mustCreate(t, h, root.ID, "研发部", "RD")
	fe := mustCreate(t, h, rd.ID, "前端组", "FE")

	ids, err := h.AncestorIDs(ctx, fe.ID)
	if err != nil {
		t.Fatalf("ancestor ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != root.ID || ids[1] != rd.ID {
		t.Errorf("ancestors of FE = %v, want [%d %d]", ids, root.ID, rd.ID)
	}

	ids, err = h.AncestorIDs(ctx, root.ID)
	if err != nil {
		t.Fatalf("ancestor ids: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ancestors of root = %v, want empty", ids)
	}
}

func TestUpdateRejectsMoveIntoOwnSubtree(t *testing.T) {
	h, _ := newTestHierarchy(t)
	ctx := context.Background()

	root := mustCreate(t, h, 0, "总公司", "HQ")
	rd := mustCreate(t, h, root.ID, "研发部", "RD")
	fe := mustCreate(t, h, rd.ID, "前端组", "FE")

	rd.ParentID = fe.ID
	if err := h.Update(ctx, rd); err == nil {
		t.Error("expected error moving dept into its own subtree")
	}

	rd2, _ := h.repo.FindByID(ctx, rd.ID)
	rd2.ParentID = rd2.ID
	if err := h.Update(ctx, rd2); err == nil {
		t.Error("expected error moving dept under itself")
	}
}

func TestUpdateMoveRebuildsSubtreePaths(t *testing.T) {
	h, _ := newTestHierarchy(t)
	ctx := context.Background()

	root := mustCreate(t, h, 0, "总公司", "HQ")
	rd := mustCreate(t, h, root.ID, "研发部", "RD")
	fe := mustCreate(t, h, rd.ID, "前端组", "FE")
	branch := mustCreate(t, h, 0, "分公司", "BR")

	moved, _ := h.repo.FindByID(ctx, rd.ID)
	moved.ParentID = branch.ID
	if err := h.Update(ctx, moved); err != nil {
		t.Fatalf("move dept: %v", err)
	}

	got, _ := h.repo.FindByID(ctx, rd.ID)
	wantPath := branch.TreePath + "," + itoa(branch.ID)
	if got.TreePath != wantPath {
		t.Errorf("moved dept path = %q, want %q", got.TreePath, wantPath)
	}

	gotChild, _ := h.repo.FindByID(ctx, fe.ID)
	wantChildPath := wantPath + "," + itoa(rd.ID)
	if gotChild.TreePath != wantChildPath {
		t.Errorf("moved child path = %q, want %q", gotChild.TreePath, wantChildPath)
	}
}

func TestDeleteRejectsWithChildren(t *testing.T) {
	h, _ := newTestHierarchy(t)
	ctx := context.Background()

	root := mustCreate(t, h, 0, "总公司", "HQ")
	rd := mustCreate(t, h, root.ID, "研发部", "RD")

	if err := h.Delete(ctx, root.ID); !errors.Is(err, errors.ErrDeptHasChildren) {
		t.Errorf("delete with children = %v, want ErrDeptHasChildren", err)
	}

	if err := h.Delete(ctx, rd.ID); err != nil {
		t.Errorf("delete leaf: %v", err)
	}
	if err := h.Delete(ctx, root.ID); err != nil {
		t.Errorf("delete root after leaf removed: %v", err)
	}
}

func TestContainsSegment(t *testing.T) {
	cases := []struct {
		path string
		id   int64
		want bool
	}{
		{"0,1,2", 1, true},
		{"0,11", 1, false},
		{"0,1", 11, false},
		{"0", 0, true},
		{"0,21,3", 21, true},
	}
	for _, c := range cases {
		if got := containsSegment(c.path, c.id); got != c.want {
			t.Errorf("containsSegment(%q, %d) = %v, want %v", c.path, c.id, got, c.want)
		}
	}
}
