package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goadmin/internal/dept"
	"github.com/goadmin/internal/model"
	"github.com/goadmin/internal/perm"
	"github.com/goadmin/internal/router"
	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		panic(err)
	}

	if err := logger.Init(config.GetLog()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := database.Init(config.GetDatabase()); err != nil {
		logger.Fatal("数据库初始化失败", zap.Error(err))
	}
	defer database.Close()

	if err := database.InitRedis(config.GetRedis()); err != nil {
		logger.Fatal("Redis初始化失败", zap.Error(err))
	}
	defer database.CloseRedis()

	if err := migrate(); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 启动时全量构建权限缓存
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := perm.GetService(dept.GetHierarchy()).Index().RefreshAll(ctx); err != nil {
		logger.Warn("权限缓存构建失败，读路径将直接回源", zap.Error(err))
	}
	cancel()

	app := router.New()

	go func() {
		addr := config.Get().Server.Addr()
		logger.Info("服务启动", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务关停中")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("服务关停失败", zap.Error(err))
	}
	logger.Info("服务已退出")
}

// migrate 自动迁移表结构
func migrate() error {
	return database.AutoMigrate(
		&model.User{},
		&model.UserRole{},
		&model.Dept{},
		&model.Role{},
		&model.RoleMenu{},
		&model.Menu{},
		&model.OperationLog{},
	)
}
