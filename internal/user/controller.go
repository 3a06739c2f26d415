package user

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

// 用户管理权限标识
const (
	PermList   = "sys:user:list"
	PermCreate = "sys:user:create"
	PermUpdate = "sys:user:update"
	PermDelete = "sys:user:delete"
	PermReset  = "sys:user:reset"
)

// scopeColumns 用户表的数据权限列：部门范围作用于所属部门，仅本人时用户只能看到自己
var scopeColumns = perm.Columns{Dept: "dept_id", Owner: "id"}

// Controller 用户控制器（融合了Service层）
type Controller struct {
	repo   Repository
	tokens *security.TokenManager
}

// NewController 创建用户控制器
func NewController(repo Repository, tokens *security.TokenManager) *Controller {
	return &Controller{repo: repo, tokens: tokens}
}

// RegisterRoutes 注册路由
func (c *Controller) RegisterRoutes(r fiber.Router) {
	users := r.Group("/users")
	users.Get("", c.List)
	users.Post("", c.Create)
	users.Get("/:id", c.Get)
	users.Put("/:id", c.Update)
	users.Delete("/:id", c.Delete)
	users.Put("/:id/password/reset", c.ResetPassword)

	profile := r.Group("/profile")
	profile.Get("", c.GetProfile)
	profile.Put("/password", c.ChangePassword)
}

// List 用户列表
// @Summary 用户列表
// @Tags 用户管理
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Param username query string false "用户名"
// @Success 200 {object} response.Response
// @Router /users [get]
func (c *Controller) List(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	var req ListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	result, err := c.list(ctx.UserContext(), principal, &req)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.SuccessPage(ctx, result.List, result.Total, result.Page, result.PageSize)
}

// list 用户列表业务逻辑，查询条件与数据权限表达式显式合并
func (c *Controller) list(ctx context.Context, principal *security.Principal, req *ListRequest) (*dal.PagedResult[model.User], error) {
	b := filter.Where()
	if req.Username != "" {
		b.Like("username", req.Username)
	}
	if req.Nickname != "" {
		b.Like("nickname", req.Nickname)
	}
	if req.Phone != "" {
		b.Like("phone", req.Phone)
	}
	if req.DeptID > 0 {
		b.Eq("dept_id", req.DeptID)
	}
	if req.Status != nil {
		b.Eq("status", *req.Status)
	}

	expr := filter.And(b.Build(), principal.ScopeExpr(ctx, scopeColumns))

	return c.repo.FindPaged(ctx, nil, &req.Pagination,
		dal.WithFilter(expr),
		dal.WithPreload("Roles"),
		dal.WithOrder("id desc"))
}

// Create 创建用户
// @Summary 创建用户
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param request body CreateRequest true "创建用户请求"
// @Success 200 {object} response.Response
// @Router /users [post]
func (c *Controller) Create(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermCreate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return response.ValidateError(ctx, "用户名和密码不能为空")
	}

	user, err := c.create(ctx.UserContext(), &req)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, user)
}

// create 创建用户业务逻辑
func (c *Controller) create(ctx context.Context, req *CreateRequest) (*model.User, error) {
	existing, err := c.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Duplicate("用户名")
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, 500, "密码加密失败")
	}

	user := &model.User{
		Username: req.Username,
		Password: hashed,
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		DeptID:   req.DeptID,
		Status:   req.Status,
	}
	if user.Status == 0 {
		user.Status = 1
	}

	if err := c.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if len(req.RoleIDs) > 0 {
		if err := c.repo.ReplaceRoles(ctx, user, req.RoleIDs); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Get 获取用户详情
// @Summary 获取用户详情
// @Tags 用户管理
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id} [get]
func (c *Controller) Get(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermList) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的用户ID")
	}

	user, err := c.repo.FindByID(ctx.UserContext(), id, dal.WithPreload("Roles"))
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if user == nil {
		return response.NotFound(ctx, "用户不存在")
	}

	return response.Success(ctx, user)
}

// Update 更新用户
// @Summary 更新用户
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body UpdateRequest true "更新用户请求"
// @Success 200 {object} response.Response
// @Router /users/{id} [put]
func (c *Controller) Update(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermUpdate) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的用户ID")
	}

	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	user, err := c.update(ctx.UserContext(), id, &req)
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, user)
}

// update 更新用户业务逻辑
func (c *Controller) update(ctx context.Context, id int64, req *UpdateRequest) (*model.User, error) {
	user, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("用户")
	}

	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.DeptID > 0 {
		user.DeptID = req.DeptID
	}
	if req.Status > 0 {
		user.Status = req.Status
	}

	if err := c.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.RoleIDs != nil {
		if err := c.repo.ReplaceRoles(ctx, user, req.RoleIDs); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Delete 删除用户
// @Summary 删除用户
// @Tags 用户管理
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id} [delete]
func (c *Controller) Delete(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermDelete) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的用户ID")
	}
	if id == principal.UserID {
		return response.BadRequest(ctx, "不能删除当前登录用户")
	}

	if err := c.repo.Delete(ctx.UserContext(), id); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, nil)
}

// ResetPassword 重置用户密码为默认值
// @Summary 重置用户密码
// @Tags 用户管理
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/password/reset [put]
func (c *Controller) ResetPassword(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if !principal.HasPermission(ctx.UserContext(), PermReset) {
		return response.Forbidden(ctx, errors.ErrPermissionDenied.Message)
	}

	id := parseInt64(ctx.Params("id"))
	if id == 0 {
		return response.BadRequest(ctx, "无效的用户ID")
	}

	hashed, err := security.HashPassword("123456")
	if err != nil {
		return response.ServerError(ctx, "")
	}

	if err := c.repo.UpdatePassword(ctx.UserContext(), id, hashed); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.Success(ctx, nil)
}

// GetProfile 获取个人信息
// @Summary 获取个人信息
// @Tags 个人中心
// @Success 200 {object} response.Response
// @Router /profile [get]
func (c *Controller) GetProfile(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)

	user, err := c.repo.FindByID(ctx.UserContext(), principal.UserID, dal.WithPreload("Roles"))
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}
	if user == nil {
		return response.NotFound(ctx, "用户不存在")
	}

	return response.Success(ctx, user)
}

// ChangePassword 修改密码。
// 修改成功后吊销当前令牌，旧令牌立即失效。
// @Summary 修改密码
// @Tags 个人中心
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} response.Response
// @Router /profile/password [put]
func (c *Controller) ChangePassword(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)

	var req ChangePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}
	if req.NewPassword == "" {
		return response.ValidateError(ctx, "新密码不能为空")
	}

	if err := c.changePassword(ctx.UserContext(), principal.UserID, &req); err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	if token := security.GetToken(ctx); token != "" {
		if err := c.tokens.Invalidate(ctx.UserContext(), token); err != nil {
			return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
		}
	}

	return response.Success(ctx, nil)
}

// changePassword 修改密码业务逻辑
func (c *Controller) changePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	user, err := c.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.NotFound("用户")
	}

	if !security.CheckPassword(req.OldPassword, user.Password) {
		return errors.BadRequest("原密码错误")
	}

	hashed, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return errors.Wrap(err, 500, "密码加密失败")
	}

	return c.repo.UpdatePassword(ctx, userID, hashed)
}

// GetByUsername 根据用户名获取用户（供认证模块调用）
func (c *Controller) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return c.repo.FindByUsername(ctx, username)
}

func parseInt64(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
