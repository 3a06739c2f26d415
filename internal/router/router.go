package router

import (
	"time"

	"github.com/goadmin/internal/auth"
	"github.com/goadmin/internal/dept"
	"github.com/goadmin/internal/menu"
	"github.com/goadmin/internal/oplog"
	"github.com/goadmin/internal/perm"
	"github.com/goadmin/internal/role"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/internal/user"
	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New 组装HTTP应用：安全过滤链、操作日志与各模块路由
func New() *fiber.App {
	cfg := config.Get()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return response.Success(c, fiber.Map{"status": "ok"})
	})

	permSvc := perm.GetService(dept.GetHierarchy())
	tokens := security.NewTokenManager(config.GetJWT(), database.NewCache("token"))
	captchaSvc := security.NewCaptchaService(&cfg.Security.Captcha, database.NewCache("captcha"))
	limiter := security.NewRateLimiter(&cfg.Security.RateLimit, database.NewCache("ratelimit"))
	chain := security.NewChain(&cfg.Security, tokens, captchaSvc, limiter, permSvc)
	online := security.NewOnlineRegistry()

	userRepo := user.NewRepository()
	deptRepo := dept.NewRepositoryWithDB(nil)
	roleRepo := role.NewRepository()
	menuRepo := menu.NewRepository()
	oplogRepo := oplog.NewRepository()

	api := app.Group("/api/v1", chain.Middlewares()...)
	api.Use(oplog.Middleware(oplogRepo))

	auth.NewController(userRepo, tokens, captchaSvc, online).RegisterRoutes(api)
	user.NewController(userRepo, tokens).RegisterRoutes(api)
	dept.NewController(deptRepo, dept.GetHierarchy()).RegisterRoutes(api)
	role.NewController(roleRepo, permSvc.Index()).RegisterRoutes(api)
	menu.NewController(menuRepo, permSvc.Index()).RegisterRoutes(api)
	oplog.NewController(oplogRepo).RegisterRoutes(api)

	app.Hooks().OnShutdown(func() error {
		online.Close()
		return nil
	})

	return app
}
