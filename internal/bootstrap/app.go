// Package bootstrap 按配置组装存储、缓存、事件与服务，供 cmd/api 与 cmd/admin 共用
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shop-api/internal/core/auth"
	"shop-api/internal/core/cache"
	"shop-api/internal/core/config"
	"shop-api/internal/core/database"
	"shop-api/internal/core/events"
	"shop-api/internal/core/server"
	"shop-api/internal/core/telemetry"
	"shop-api/internal/repo"
	"shop-api/internal/repo/mongostore"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/router"
)

const DriverMongo = "mongo"

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	JWT      *auth.JWTer
	Services *service.Services
	Tracer   *telemetry.Provider
	Events   events.Publisher

	pings   []func(context.Context) error
	closers []func(context.Context) error
}

func (a *App) onClose(f func(context.Context) error) { a.closers = append(a.closers, f) }

// New 任一必需组件失败都会回收已打开的资源
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: l,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.AccessTokenTTL(),
		},
	}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close(context.Background())
		}
	}()

	var err error
	if a.Tracer, err = telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.Endpoint,
		Insecure:      cfg.Telemetry.Insecure,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		ServiceName:   cfg.Telemetry.ServiceName,
	}, l); err != nil {
		return nil, err
	}
	a.onClose(a.Tracer.Shutdown)

	repos, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	a.Events = a.openEvents()
	a.Services = service.New(service.Deps{
		Repos:      repos,
		Cache:      a.openCache(ctx),
		ProductTTL: cfg.ProductCacheTTL(),
		Events:     a.Events,
		JWT:        a.JWT,
		Logger:     l,
	})
	ok = true
	return a, nil
}

func (a *App) openStore(ctx context.Context) (*repo.Repositories, error) {
	cfg, l := a.Config, a.Logger
	if cfg.DB.Driver == DriverMongo {
		db, disconnect, err := database.NewMongo(ctx, database.MongoOpts{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  time.Duration(cfg.Mongo.TimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		a.onClose(disconnect)
		a.pings = append(a.pings, func(ctx context.Context) error { return db.Client().Ping(ctx, nil) })
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		l.Info("database connected", zap.String("driver", DriverMongo), zap.String("database", cfg.Mongo.Database))
		return mongostore.NewRepositories(db), nil
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return sqlDB.Close() })
	a.pings = append(a.pings, sqlDB.PingContext)

	if a.Tracer.Enabled() {
		if err := telemetry.RegisterGorm(db, cfg.App.Name); err != nil {
			return nil, fmt.Errorf("gorm tracing: %w", err)
		}
	}
	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	return repo.NewGormRepositories(db), nil
}

// openCache redis 不可用时只告警，缓存按穿透处理
func (a *App) openCache(ctx context.Context) *cache.Cache {
	rc := a.Config.Redis
	if !rc.Enabled {
		return nil
	}
	c := cache.New(rc.Addr, rc.Password, rc.DB)
	if err := c.Ping(ctx); err != nil {
		a.Logger.Warn("redis unreachable, product cache degraded", zap.String("addr", rc.Addr), zap.Error(err))
	} else {
		a.Logger.Info("redis connected", zap.String("addr", rc.Addr))
	}
	a.onClose(func(context.Context) error { return c.Close() })
	return c
}

func (a *App) openEvents() events.Publisher {
	kc := a.Config.Kafka
	if !kc.Enabled {
		return events.Nop{}
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:        kc.Brokers,
		Topic:          kc.Topic,
		RequiredAcks:   kc.RequiredAcks,
		BatchTimeout:   time.Duration(kc.BatchTimeoutMs) * time.Millisecond,
		MaxAttempts:    kc.MaxAttempts,
		PublishTimeout: time.Duration(kc.PublishTimeoutMs) * time.Millisecond,
	}, a.Logger)
	if err != nil {
		a.Logger.Warn("kafka disabled", zap.Error(err))
		return events.Nop{}
	}
	a.onClose(func(context.Context) error { return pub.Close() })
	a.Logger.Info("kafka publisher ready", zap.Strings("brokers", kc.Brokers), zap.String("topic", kc.Topic))
	return pub
}

// Ping 存储连通性，用于 /health
func (a *App) Ping(ctx context.Context) error {
	for _, p := range a.pings {
		if err := p(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RouterOptions HTTP 引擎参数
func (a *App) RouterOptions() router.Options {
	o := router.Options{
		Logger:   a.Logger,
		JWT:      a.JWT,
		Services: a.Services,
		Limits:   a.Config.Limits,
		Server:   server.Options{Name: a.Config.App.Name, Mode: ginMode(a.Config.App.Env)},
		Ping:     a.Ping,
	}
	if a.Tracer.Enabled() {
		o.TraceService = a.Config.Telemetry.ServiceName
	}
	return o
}

func ginMode(env string) string {
	switch env {
	case "prod", "production":
		return "release"
	case "test":
		return "test"
	default:
		return "debug"
	}
}

// Close 逆序释放
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
