package menu

import (
	"strconv"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/internal/perm"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// 菜单管理权限标识
const (
	PermList   = "sys:menu:list"
	PermCreate = "sys:menu:create"
	PermUpdate = "sys:menu:update"
	PermDelete = "sys:menu:delete"
)

// Controller 菜单控制器（融合了Service层）。
// 菜单的权限标识变更可能影响多个角色，变更后全量刷新权限缓存。
type Controller struct {
	repo  Repository
	index *perm.Index
}

// NewController 创建菜单控制器
func NewController(repo Repository, index *perm.Index) *Controller {
	return &Controller{repo: repo, index: index}
}

// RegisterRoutes 注册路由
func (c *Controller) RegisterRoutes(r fiber.Router) {
	menus := r.Group("/menus")
	menus.Get("/tree", c.Tree)
	menus.Get("/:id", c.Get)
	menus.Post("", c.Create)
	menus.Put("/:id", c.Update)
	menus.Delete("/:id", c.Delete)
}

// Tree 菜单树
// @Summary 菜单树
// @Tags 菜单管理
// @Success 200 {object} response.Response
// @Router /menus/tree [get]
func (c *Controller) Tree(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	menus, err := c.repo.FindAllOrdered(ctx.UserContext())
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, buildTree(menus))
}

// Get 获取菜单详情
// @Summary 获取菜单详情
// @Tags 菜单管理
// @Param id path int true "菜单ID"
// @Success 200 {object} response.Response
// @Router /menus/{id} [get]
func (c *Controller) Get(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的菜单ID")
	}

	menu, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if menu == nil {
		return response.NotFound(ctx, "菜单不存在")
	}

	return response.Success(ctx, menu)
}

// Create 创建菜单
// @Summary 创建菜单
// @Tags 菜单管理
// @Accept json
// @Produce json
// @Param request body CreateRequest true "创建菜单请求"
// @Success 200 {object} response.Response
// @Router /menus [post]
func (c *Controller) Create(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermCreate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}
	if req.Name == "" {
		return response.ValidateError(ctx, "菜单名称不能为空")
	}
	if req.Type == model.MenuTypeButton && req.Perm == "" {
		return response.ValidateError(ctx, "按钮菜单必须携带权限标识")
	}

	menu := &model.Menu{
		ParentID:  req.ParentID,
		Name:      req.Name,
		Type:      req.Type,
		Path:      req.Path,
		Component: req.Component,
		Perm:      req.Perm,
		Icon:      req.Icon,
		Visible:   req.Visible,
		Sort:      req.Sort,
	}
	if menu.Type == 0 {
		menu.Type = model.MenuTypeMenu
	}

	if err := c.repo.Create(ctx.UserContext(), menu); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, menu)
}

// Update 更新菜单；权限标识变化时全量刷新权限缓存
// @Summary 更新菜单
// @Tags 菜单管理
// @Accept json
// @Produce json
// @Param id path int true "菜单ID"
// @Param request body UpdateRequest true "更新菜单请求"
// @Success 200 {object} response.Response
// @Router /menus/{id} [put]
func (c *Controller) Update(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermUpdate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的菜单ID")
	}

	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	menu, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if menu == nil {
		return response.NotFound(ctx, "菜单不存在")
	}

	permChanged := req.Perm != menu.Perm

	menu.ParentID = req.ParentID
	if req.Name != "" {
		menu.Name = req.Name
	}
	if req.Type != 0 {
		menu.Type = req.Type
	}
	menu.Path = req.Path
	menu.Component = req.Component
	menu.Perm = req.Perm
	menu.Icon = req.Icon
	if req.Visible != nil {
		menu.Visible = *req.Visible
	}
	menu.Sort = req.Sort

	if err := c.repo.Update(ctx.UserContext(), menu); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	if permChanged {
		if err := c.index.RefreshAll(ctx.UserContext()); err != nil {
			return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
		}
	}

	return response.Success(ctx, menu)
}

// Delete 删除菜单；存在下级时拒绝，同时清除角色关联并全量刷新权限缓存
// @Summary 删除菜单
// @Tags 菜单管理
// @Param id path int true "菜单ID"
// @Success 200 {object} response.Response
// @Router /menus/{id} [delete]
func (c *Controller) Delete(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermDelete) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的菜单ID")
	}

	count, err := c.repo.CountChildren(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if count > 0 {
		return response.BadRequest(ctx, "存在下级菜单，不允许删除")
	}

	if err := c.repo.Delete(ctx.UserContext(), id); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if err := c.repo.DeleteRoleBindings(ctx.UserContext(), id); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	if err := c.index.RefreshAll(ctx.UserContext()); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, nil)
}

// buildTree 将平铺菜单列表组装为树
func buildTree(menus []model.Menu) []*model.Menu {
	nodes := make(map[int64]*model.Menu, len(menus))
	for i := range menus {
		nodes[menus[i].ID] = &menus[i]
	}

	roots := make([]*model.Menu, 0)
	for i := range menus {
		node := &menus[i]
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
