package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shop-api/internal/bootstrap"
	"shop-api/internal/core/config"
	"shop-api/internal/core/logger"
	"shop-api/internal/core/server"
	"shop-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	log = log.Named("admin")

	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		cancelInit()
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	// 配置了初始管理员则确保存在
	if err := app.Services.Users.EnsureAdmin(ctx, cfg.Admin.BootstrapUsername, cfg.Admin.BootstrapPassword); err != nil {
		cancelInit()
		log.Fatal("bootstrap admin", zap.Error(err))
	}
	cancelInit()

	// 路由（后台端）
	r := router.NewAdminEngine(app.RouterOptions())

	// HTTP Server
	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)
	if el, err := logger.ToStdLogger(log.Named("http"), zapcore.WarnLevel); err == nil {
		server.WithErrorLog(srv, el)
	}

	// 启动前打印可点击地址
	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := app.Close(context.Background()); err != nil {
		log.Warn("release resources", zap.Error(err))
	}
	log.Info("admin api stopped gracefully")
}
