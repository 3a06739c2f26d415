package oplog

import (
	"github.com/goadmin/internal/perm"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/pkg/dal"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/filter"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// 操作日志权限标识
const PermList = "sys:oplog:list"

// scopeColumns 操作日志的数据权限列
var scopeColumns = perm.Columns{Dept: "dept_id", Owner: "created_by"}

// Controller 操作日志控制器
type Controller struct {
	repo Repository
}

// NewController 创建操作日志控制器
func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// RegisterRoutes 注册路由
func (c *Controller) RegisterRoutes(r fiber.Router) {
	r.Get("/oplogs", c.List)
}

// List 操作日志列表，查询范围受数据权限约束
// @Summary 操作日志列表
// @Tags 操作日志
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} response.Response
// @Router /oplogs [get]
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
	if req.Username != "" {
		b.Eq("username", req.Username)
	}
	if req.Module != "" {
		b.Eq("module", req.Module)
	}
	if req.Action != "" {
		b.Eq("action", req.Action)
	}
	if req.Status != nil {
		b.Eq("status", *req.Status)
	}

	expr := filter.And(b.Build(), principal.ScopeExpr(ctx.UserContext(), scopeColumns))

	result, err := c.repo.FindPaged(ctx.UserContext(), nil, &req.Pagination,
		dal.WithFilter(expr),
		dal.WithOrder("id desc"))
	if err != nil {
		return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
	}

	return response.SuccessPage(ctx, result.List, result.Total, result.Page, result.PageSize)
}
