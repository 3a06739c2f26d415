package auth

import (
	"github.com/goadmin/internal/model"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/internal/user"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// Controller 认证控制器
type Controller struct {
	users   user.Repository
	tokens  *security.TokenManager
	captcha *security.CaptchaService
	online  *security.OnlineRegistry
}

// NewController 创建认证控制器
func NewController(users user.Repository, tokens *security.TokenManager, captcha *security.CaptchaService, online *security.OnlineRegistry) *Controller {
	return &Controller{
		users:   users,
		tokens:  tokens,
		captcha: captcha,
		online:  online,
	}
}

// RegisterRoutes 注册路由
func (c *Controller) RegisterRoutes(r fiber.Router) {
	auth := r.Group("/auth")
	auth.Get("/captcha", c.Captcha)
	auth.Post("/login", c.Login)
	auth.Delete("/logout", c.Logout)
	auth.Get("/me", c.Me)
	auth.Get("/online", c.Online)
}

// Captcha 获取验证码
// @Summary 获取验证码
// @Tags 认证
// @Success 200 {object} response.Response
// @Router /auth/captcha [get]
func (c *Controller) Captcha(ctx *fiber.Ctx) error {
	id, code, err := c.captcha.Generate(ctx.UserContext())
	if err != nil {
		return response.ServerError(ctx, "验证码生成失败")
	}

	return response.Success(ctx, &CaptchaResponse{
		CaptchaID:   id,
		CaptchaCode: code,
	})
}

// Login 登录。
// 验证码已由过滤链校验；这里只做凭证核验与令牌签发。
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录请求"
// @Success 200 {object} response.Response
// @Router /auth/login [post]
func (c *Controller) Login(ctx *fiber.Ctx) error {
	var req LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.ValidateError(ctx, err.Error())
	}

	u, err := c.users.FindByUsername(ctx.UserContext(), req.Username)
	if err != nil {
		return response.ServerError(ctx, "")
	}
	if u == nil || !security.CheckPassword(req.Password, u.Password) {
		// 用户不存在与密码错误返回同一提示，不泄露账号是否存在
		return response.Unauthorized(ctx, errors.ErrInvalidCredential.Message)
	}
	if u.Status != 1 {
		return response.Forbidden(ctx, "用户已被禁用")
	}

	roleCodes := u.RoleCodes()
	token, err := c.tokens.CreateTokenInfo(u.ID, u.Username, u.DeptID, roleCodes)
	if err != nil {
		return response.ServerError(ctx, "生成令牌失败")
	}

	c.online.Connect(u.ID, u.Username, ctx.IP())

	return response.Success(ctx, &LoginResponse{
		Token:    token,
		UserInfo: buildUserInfo(u, roleCodes),
	})
}

// Logout 登出。
// 同步吊销当前令牌，返回成功时旧令牌已不可用。
// @Summary 登出
// @Tags 认证
// @Success 200 {object} response.Response
// @Router /auth/logout [delete]
func (c *Controller) Logout(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)

	if token := security.GetToken(ctx); token != "" {
		if err := c.tokens.Invalidate(ctx.UserContext(), token); err != nil {
			return response.Error(ctx, errors.GetCode(err), errors.GetMessage(err))
		}
	}

	if principal != nil {
		c.online.Disconnect(principal.UserID)
	}
	return response.Success(ctx, nil)
}

// Me 当前主体信息：身份、权限标识集合与数据权限范围
// @Summary 当前用户信息
// @Tags 认证
// @Success 200 {object} response.Response
// @Router /auth/me [get]
func (c *Controller) Me(ctx *fiber.Ctx) error {
	principal := security.GetPrincipal(ctx)
	if principal == nil {
		return response.Unauthorized(ctx, "")
	}

	u, err := c.users.FindByID(ctx.UserContext(), principal.UserID)
	if err != nil {
		return response.ServerError(ctx, "")
	}
	if u == nil {
		return response.NotFound(ctx, "用户不存在")
	}

	perms, err := principal.Permissions(ctx.UserContext())
	if err != nil {
		return response.ServerError(ctx, "")
	}

	return response.Success(ctx, &MeResponse{
		UserInfo:    buildUserInfo(u, principal.RoleCodes),
		Permissions: perms,
		DataScope:   int8(principal.DataScope(ctx.UserContext())),
	})
}

// Online 在线用户列表
// @Summary 在线用户列表
// @Tags 认证
// @Success 200 {object} response.Response
// @Router /auth/online [get]
func (c *Controller) Online(ctx *fiber.Ctx) error {
	return response.Success(ctx, c.online.List())
}

// buildUserInfo 构建用户信息
func buildUserInfo(u *model.User, roleCodes []string) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Phone:     u.Phone,
		DeptID:    u.DeptID,
		RoleCodes: roleCodes,
	}
}
