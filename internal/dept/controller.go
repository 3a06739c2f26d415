package dept

import (
	"context"
	"strconv"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/internal/perm"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// 部门管理权限标识
const (
	PermList   = "sys:dept:list"
	PermCreate = "sys:dept:create"
	PermUpdate = "sys:dept:update"
	PermDelete = "sys:dept:delete"
)

// Controller 部门控制器（融合了Service层）
type Controller struct {
	repo      Repository
	hierarchy *Hierarchy
}

// NewController 创建部门控制器
func NewController(repo Repository, hierarchy *Hierarchy) *Controller {
	return &Controller{repo: repo, hierarchy: hierarchy}
}

// RegisterRoutes 注册路由
func (c *Controller) RegisterRoutes(r fiber.Router) {
	depts := r.Group("/depts")
	depts.Get("/tree", c.Tree)
	depts.Get("/:id", c.Get)
	depts.Get("/:id/ancestors", c.Ancestors)
	depts.Post("", c.Create)
	depts.Put("/:id", c.Update)
	depts.Delete("/:id", c.Delete)
}

// Tree 部门树；按主体数据权限裁剪可见范围
// @Summary 部门树
// @Tags 部门管理
// @Success 200 {object} response.Response
// @Router /depts/tree [get]
func (c *Controller) Tree(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	depts, err := c.repo.FindAllEnabled(ctx.UserContext())
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	visible, err := c.visibleDepts(ctx.UserContext(), principal, depts)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, buildTree(visible))
}

// visibleDepts 按主体数据权限裁剪部门选项。
// 全部数据返回完整列表；部门类范围只保留可见子树，并补回祖先链
// 作为结构上下文（祖先只用来撑起树形，不代表可操作）；
// 仅本人与无所属部门的主体只能看到自己部门的链路，没有部门则什么都看不到。
func (c *Controller) visibleDepts(ctx context.Context, principal *security.Principal, depts []model.Dept) ([]model.Dept, error) {
	scope := principal.DataScope(ctx)
	if scope == perm.ScopeAll {
		return depts, nil
	}
	if principal.DeptID == 0 {
		return nil, nil
	}

	keep := map[int64]bool{principal.DeptID: true}
	if scope == perm.ScopeDeptAndSub {
		ids, err := c.hierarchy.DescendantIDs(ctx, principal.DeptID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			keep[id] = true
		}
	}

	ancestors, err := c.hierarchy.AncestorIDs(ctx, principal.DeptID)
	if err != nil {
		return nil, err
	}
	for _, id := range ancestors {
		keep[id] = true
	}

	visible := make([]model.Dept, 0, len(keep))
	for _, d := range depts {
		if keep[d.ID] {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

// Get 获取部门详情
// @Summary 获取部门详情
// @Tags 部门管理
// @Param id path int true "部门ID"
// @Success 200 {object} response.Response
// @Router /depts/{id} [get]
func (c *Controller) Get(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的部门ID")
	}

	dept, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if dept == nil {
		return response.NotFound(ctx, "部门不存在")
	}

	return response.Success(ctx, dept)
}

// Ancestors 部门的祖先链（从树路径解析，不含根哨兵）
// @Summary 部门祖先链
// @Tags 部门管理
// @Param id path int true "部门ID"
// @Success 200 {object} response.Response
// @Router /depts/{id}/ancestors [get]
func (c *Controller) Ancestors(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的部门ID")
	}

	ids, err := c.hierarchy.AncestorIDs(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, ids)
}

// Create 创建部门
// @Summary 创建部门
// @Tags 部门管理
// @Accept json
// @Produce json
// @Param request body CreateRequest true "创建部门请求"
// @Success 200 {object} response.Response
// @Router /depts [post]
func (c *Controller) Create(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermCreate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}
	if req.Name == "" || req.Code == "" {
		return response.ValidateError(ctx, "部门名称和编码不能为空")
	}

	dept := &model.Dept{
		ParentID: req.ParentID,
		Name:     req.Name,
		Code:     req.Code,
		Sort:     req.Sort,
		Status:   req.Status,
	}
	if dept.Status == 0 {
		dept.Status = 1
	}

	if err := c.hierarchy.Create(ctx.UserContext(), dept); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, dept)
}

// Update 更新部门；父节点变化时由层级服务重算子树路径
// @Summary 更新部门
// @Tags 部门管理
// @Accept json
// @Produce json
// @Param id path int true "部门ID"
// @Param request body UpdateRequest true "更新部门请求"
// @Success 200 {object} response.Response
// @Router /depts/{id} [put]
func (c *Controller) Update(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermUpdate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的部门ID")
	}

	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	current, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if current == nil {
		return response.NotFound(ctx, "部门不存在")
	}

	current.ParentID = req.ParentID
	if req.Name != "" {
		current.Name = req.Name
	}
	current.Sort = req.Sort
	if req.Status > 0 {
		current.Status = req.Status
	}

	if err := c.hierarchy.Update(ctx.UserContext(), current); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, current)
}

// Delete 删除部门；存在下级时拒绝
// @Summary 删除部门
// @Tags 部门管理
// @Param id path int true "部门ID"
// @Success 200 {object} response.Response
// @Router /depts/{id} [delete]
func (c *Controller) Delete(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermDelete) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的部门ID")
	}

	if err := c.hierarchy.Delete(ctx.UserContext(), id); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, nil)
}

// buildTree 将平铺部门列表组装为树
func buildTree(depts []model.Dept) []*model.Dept {
	nodes := make(map[int64]*model.Dept, len(depts))
	for i := range depts {
		nodes[depts[i].ID] = &depts[i]
	}

	roots := make([]*model.Dept, 0)
	for i := range depts {
		node := &depts[i]
		if parent, ok := nodes[node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

func parseInt64(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
