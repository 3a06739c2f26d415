package role

import (
	"context"
	"strconv"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/internal/perm"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/pkg/dal"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/filter"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// 角色管理权限标识
const (
	PermList   = "sys:role:list"
	PermCreate = "sys:role:create"
	PermUpdate = "sys:role:update"
	PermDelete = "sys:role:delete"
	PermAssign = "sys:role:assign"
)

// Controller 角色控制器（融合了Service层）。
// 角色及其菜单关联的变更会同步刷新权限缓存。
type Controller struct {
	repo  Repository
	index *perm.Index
}

// NewController 创建角色控制器
func NewController(repo Repository, index *perm.Index) *Controller {
	return &Controller{repo: repo, index: index}
}

// RegisterRoutes 注册路由
func (c *Controller) RegisterRoutes(r fiber.Router) {
	roles := r.Group("/roles")
	roles.Get("", c.List)
	roles.Post("", c.Create)
	roles.Get("/:id", c.Get)
	roles.Put("/:id", c.Update)
	roles.Delete("/:id", c.Delete)
	roles.Get("/:id/menus", c.GetMenus)
	roles.Put("/:id/menus", c.AssignMenus)
}

// List 角色列表
// @Summary 角色列表
// @Tags 角色管理
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} response.Response
// @Router /roles [get]
func (c *Controller) List(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	var req ListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	b := filter.Where()
	if req.Name != "" {
		b.Like("name", req.Name)
	}
	if req.Code != "" {
		b.Eq("code", req.Code)
	}
	if req.Status != nil {
		b.Eq("status", *req.Status)
	}

	result, err := c.repo.FindPaged(ctx.UserContext(), nil, &req.Pagination,
		dal.WithFilter(b.Build()),
		dal.WithOrder("sort asc, id asc"))
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.SuccessPage(ctx, result.List, result.Total, result.Page, result.PageSize)
}

// Create 创建角色
// @Summary 创建角色
// @Tags 角色管理
// @Accept json
// @Produce json
// @Param request body CreateRequest true "创建角色请求"
// @Success 200 {object} response.Response
// @Router /roles [post]
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
		return response.ValidateError(ctx, "角色名称和编码不能为空")
	}
	if req.DataScope != 0 && !perm.DataScope(req.DataScope).Valid() {
		return response.ValidateError(ctx, "无效的数据权限范围")
	}

	role, err := c.create(ctx.UserContext(), &req)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, role)
}

// create 创建角色业务逻辑
func (c *Controller) create(ctx context.Context, req *CreateRequest) (*model.Role, error) {
	existing, err := c.repo.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Duplicate("角色编码")
	}

	role := &model.Role{
		Name:        req.Name,
		Code:        req.Code,
		DataScope:   req.DataScope,
		Status:      req.Status,
		Sort:        req.Sort,
		Description: req.Description,
	}
	if role.DataScope == 0 {
		role.DataScope = int8(perm.ScopeSelf)
	}
	if role.Status == 0 {
		role.Status = model.RoleStatusEnabled
	}

	if err := c.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Get 获取角色详情
// @Summary 获取角色详情
// @Tags 角色管理
// @Param id path int true "角色ID"
// @Success 200 {object} response.Response
// @Router /roles/{id} [get]
func (c *Controller) Get(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的角色ID")
	}

	role, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if role == nil {
		return response.NotFound(ctx, "角色不存在")
	}

	return response.Success(ctx, role)
}

// Update 更新角色。
// 编码变更时权限缓存按"先写新编码再清旧编码"迁移；
// 状态或范围变更后刷新该角色的权限集合。
// @Summary 更新角色
// @Tags 角色管理
// @Accept json
// @Produce json
// @Param id path int true "角色ID"
// @Param request body UpdateRequest true "更新角色请求"
// @Success 200 {object} response.Response
// @Router /roles/{id} [put]
func (c *Controller) Update(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermUpdate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的角色ID")
	}

	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}
	if req.DataScope != 0 && !perm.DataScope(req.DataScope).Valid() {
		return response.ValidateError(ctx, "无效的数据权限范围")
	}

	role, err := c.update(ctx.UserContext(), id, &req)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, role)
}

// update 更新角色业务逻辑
func (c *Controller) update(ctx context.Context, id int64, req *UpdateRequest) (*model.Role, error) {
	role, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("角色")
	}

	oldCode := role.Code

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Code != "" && req.Code != oldCode {
		existing, err := c.repo.FindByCode(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors.Duplicate("角色编码")
		}
		role.Code = req.Code
	}
	if req.DataScope != 0 {
		role.DataScope = req.DataScope
	}
	if req.Status != nil {
		role.Status = *req.Status
	}
	role.Sort = req.Sort
	if req.Description != "" {
		role.Description = req.Description
	}

	if err := c.repo.Update(ctx, role); err != nil {
		return nil, err
	}

	if role.Code != oldCode {
		if err := c.index.Rename(ctx, oldCode, role.Code); err != nil {
			return nil, err
		}
	} else if err := c.index.Refresh(ctx, role.Code); err != nil {
		return nil, err
	}
	return role, nil
}

// Delete 删除角色；仍被用户持有的角色拒绝删除
// @Summary 删除角色
// @Tags 角色管理
// @Param id path int true "角色ID"
// @Success 200 {object} response.Response
// @Router /roles/{id} [delete]
func (c *Controller) Delete(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermDelete) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的角色ID")
	}

	count, err := c.repo.CountUsers(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if count > 0 {
		return response.BadRequest(ctx, "角色仍被用户持有，不允许删除")
	}

	role, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if role == nil {
		return response.NotFound(ctx, "角色不存在")
	}

	if err := c.repo.Delete(ctx.UserContext(), id); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	if err := c.index.Refresh(ctx.UserContext(), role.Code); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, nil)
}

// GetMenus 获取角色关联的菜单ID集合
// @Summary 获取角色菜单
// @Tags 角色管理
// @Param id path int true "角色ID"
// @Success 200 {object} response.Response
// @Router /roles/{id}/menus [get]
func (c *Controller) GetMenus(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的角色ID")
	}

	ids, err := c.repo.FindMenuIDs(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, ids)
}

// AssignMenus 分配菜单并刷新该角色的权限集合
// @Summary 分配角色菜单
// @Tags 角色管理
// @Accept json
// @Produce json
// @Param id path int true "角色ID"
// @Param request body AssignMenusRequest true "分配菜单请求"
// @Success 200 {object} response.Response
// @Router /roles/{id}/menus [put]
func (c *Controller) AssignMenus(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermAssign) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的角色ID")
	}

	var req AssignMenusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	role, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if role == nil {
		return response.NotFound(ctx, "角色不存在")
	}

	if err := c.repo.ReplaceMenus(ctx.UserContext(), id, req.MenuIDs); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	if err := c.index.Refresh(ctx.UserContext(), role.Code); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, nil)
}

func parseInt64(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
