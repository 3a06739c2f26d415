package security

import (
	"strings"

	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// Locals键
const (
	principalKey = "security.principal"
	tokenKey     = "security.token"
)

// Chain 请求安全过滤链。
// 固定顺序：限流 -> 验证码 -> 令牌认证。
// 任一环节拒绝即短路返回，后续环节不再执行；
// 限流在最前，未认证的洪峰不应消耗验证码与认证的开销。
type Chain struct {
	cfg     *config.SecurityConfig
	tokens  *TokenManager
	captcha *CaptchaService
	limiter *RateLimiter
	authz   Authorizer
}

// NewChain 创建安全过滤链
func NewChain(cfg *config.SecurityConfig, tokens *TokenManager, captcha *CaptchaService, limiter *RateLimiter, authz Authorizer) *Chain {
	return &Chain{
		cfg:     cfg,
		tokens:  tokens,
		captcha: captcha,
		limiter: limiter,
		authz:   authz,
	}
}

// Middlewares 按固定顺序返回过滤链中间件
func (ch *Chain) Middlewares() []fiber.Handler {
	return []fiber.Handler{
		ch.RateLimit(),
		ch.CaptchaGuard(),
		ch.TokenAuth(),
	}
}

// Register 将过滤链挂载到应用
func (ch *Chain) Register(app *fiber.App) {
	for _, mw := range ch.Middlewares() {
		app.Use(mw)
	}
}

// RateLimit 限流中间件。
// 以客户端IP加请求路径为计数单位，窗口内超额即拒绝。
func (ch *Chain) RateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ch.cfg.RateLimit.Enabled {
			return c.Next()
		}

		key := ch.limiter.Key(c.IP(), c.Path())
		if !ch.limiter.Allow(c.UserContext(), key) {
			return response.TooManyRequests(c, errors.ErrRateLimitExceeded.Message)
		}
		return c.Next()
	}
}

// captchaRequest 验证码请求字段
type captchaRequest struct {
	CaptchaID   string `json:"captchaId"`
	CaptchaCode string `json:"captchaCode"`
}

// CaptchaGuard 验证码中间件。
// 仅作用于配置声明的路径（如登录），校验失败或缺失即拒绝。
func (ch *Chain) CaptchaGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ch.cfg.Captcha.Enabled || !matchPath(ch.cfg.Captcha.Paths, c.Path()) {
			return c.Next()
		}

		var req captchaRequest
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, errors.ErrCaptchaInvalid.Message)
		}

		if err := ch.captcha.Verify(c.UserContext(), req.CaptchaID, req.CaptchaCode); err != nil {
			return response.BadRequest(c, errors.GetMessage(err))
		}
		return c.Next()
	}
}

// TokenAuth 令牌认证中间件。
// 免认证路径直接放行；其余请求校验令牌并构建请求主体上下文。
func (ch *Chain) TokenAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if matchPath(ch.cfg.SkipPaths, c.Path()) {
			return c.Next()
		}

		token, err := extractToken(c)
		if err != nil {
			return response.Unauthorized(c, errors.GetMessage(err))
		}

		principal, err := ch.tokens.Parse(c.UserContext(), token)
		if err != nil {
			return response.Unauthorized(c, errors.GetMessage(err))
		}

		principal.Bind(ch.authz)
		c.Locals(principalKey, principal)
		c.Locals(tokenKey, token)
		return c.Next()
	}
}

// GetPrincipal 从请求上下文取出主体，未认证返回 nil
func GetPrincipal(c *fiber.Ctx) *Principal {
	principal, _ := c.Locals(principalKey).(*Principal)
	return principal
}

// GetToken 从请求上下文取出原始令牌
func GetToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}

// extractToken 从 Authorization 头提取 Bearer 令牌，兼容 token 查询参数。
// 头存在但不是 Bearer 凭证时按格式错误处理，与完全未携带令牌区分开。
func extractToken(c *fiber.Ctx) (string, error) {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token, nil
			}
		}
		return "", errors.ErrTokenMalformed
	}

	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", errors.ErrTokenMissing
}

// matchPath 前缀匹配路径列表
func matchPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
