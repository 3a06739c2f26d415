package oplog

import (
	"context"
	"strings"
	"time"

	"github.com/goadmin/internal/model"
	"github.com/goadmin/internal/security"
	"github.com/goadmin/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HTTP方法到动作的映射
var methodActions = map[string]string{
	fiber.MethodPost:   "create",
	fiber.MethodPut:    "update",
	fiber.MethodDelete: "delete",
}

// Middleware 操作日志中间件。
// 只记录写操作（POST/PUT/DELETE），日志异步落库，不阻塞响应。
func Middleware(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action, ok := methodActions[c.Method()]
		if !ok {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		entry := &model.OperationLog{
			Module:    moduleOf(c.Path()),
			Action:    action,
			Method:    c.Method(),
			Path:      c.Path(),
			IP:        c.IP(),
			Status:    c.Response().StatusCode(),
			LatencyMs: time.Since(start).Milliseconds(),
		}
		if principal := security.GetPrincipal(c); principal != nil {
			entry.CreatedBy = principal.UserID
			entry.DeptID = principal.DeptID
			entry.Username = principal.Username
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := repo.Create(ctx, entry); err != nil {
				logger.Warn("操作日志写入失败", zap.String("path", entry.Path), zap.Error(err))
			}
		}()

		return err
	}
}

// moduleOf 从请求路径推导模块名，如 /api/v1/users/1 -> users
func moduleOf(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segs {
		if seg == "v1" && i+1 < len(segs) {
			return segs[i+1]
		}
	}
	if len(segs) > 0 {
		return segs[len(segs)-1]
	}
	return ""
}
