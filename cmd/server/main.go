package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hmicael/email-api/internal/auth"
	jwtpkg "github.com/hmicael/email-api/internal/auth/jwt"
	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/health"
	"github.com/hmicael/email-api/internal/logger"
	"github.com/hmicael/email-api/internal/mailer"
	"github.com/hmicael/email-api/internal/monitoring"
	"github.com/hmicael/email-api/internal/service"
	gormstore "github.com/hmicael/email-api/internal/storage/gorm"
	"github.com/hmicael/email-api/internal/storage/memory"
	redisstore "github.com/hmicael/email-api/internal/storage/redis"
	httptransport "github.com/hmicael/email-api/internal/transport/http"
)

// main 启动邮件托管平台管理 API 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     "",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting email-api server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store domain.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = gormstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 初始化监控指标
	metrics := monitoring.NewMetrics()

	// 初始化缓存层
	var tagCache cache.TagCache
	var cachePinger health.Pinger
	if cfg.Redis.Address != "" {
		redisCache, err := redisstore.NewTagCache(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Cache.TTL,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to connect to redis: %v", err))
		}
		defer redisCache.Close()
		tagCache = redisCache
		cachePinger = redisCache
		log.Info("using redis cache", zap.String("address", cfg.Redis.Address))
	} else {
		tagCache = cache.NewLocalCache(cfg.Cache.TTL)
		log.Info("using in-process cache")
	}
	tagCache = cache.NewInstrumentedCache(tagCache, metrics)

	// 初始化通知邮件
	var m mailer.Mailer
	if cfg.Mailer.Driver == "ses" {
		m, err = mailer.NewSESMailer(context.Background(), cfg.Mailer, log)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize SES mailer: %v", err))
		}
		log.Info("using SES mailer", zap.String("region", cfg.Mailer.Region))
	} else {
		m = mailer.NewLogMailer(log)
		log.Info("using log mailer (development mode)")
	}
	m = mailer.NewInstrumentedMailer(m, metrics)

	// 初始化健康检查
	healthChecker := health.NewHealthChecker(store, cachePinger, log)

	// 初始化服务层
	enforcer := service.NewDomainEnforcer(store)
	domainNameService := service.NewDomainNameService(store, tagCache, log)
	virtualUserService := service.NewVirtualUserService(store, tagCache, enforcer, m, log)
	virtualAliasService := service.NewVirtualAliasService(store, tagCache, enforcer, log)
	virtualForwardService := service.NewVirtualForwardService(store, tagCache, enforcer, log)
	userService := service.NewUserService(store, tagCache, m, log, cfg.Mailer.ResetURL, cfg.Mailer.ResetTTL)

	// 初始化认证
	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
		zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry),
	)

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:                cfg,
		DomainNameService:     domainNameService,
		VirtualUserService:    virtualUserService,
		VirtualAliasService:   virtualAliasService,
		VirtualForwardService: virtualForwardService,
		UserService:           userService,
		AuthService:           authService,
		JWTManager:            jwtManager,
		Metrics:               metrics,
		HealthChecker:         healthChecker,
		Logger:                log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 定时清理过期的找回密码令牌 goroutine
	group.Go(func() error {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Info("starting expired reset token cleanup task", zap.Duration("interval", 1*time.Hour))

		for {
			select {
			case <-groupCtx.Done():
				log.Info("cleanup task stopped")
				return nil
			case <-ticker.C:
				if err := userService.CleanupExpiredTokens(); err != nil {
					log.Error("failed to cleanup expired reset tokens", zap.Error(err))
				}
			}
		}
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
