// Package main 是应用程序入口
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/common/config"
	"github.com/focomkt/sales-hub-backend/internal/common/jwt"
	"github.com/focomkt/sales-hub-backend/internal/common/metrics"
	authHandler "github.com/focomkt/sales-hub-backend/internal/handler/auth"
	commissionHandler "github.com/focomkt/sales-hub-backend/internal/handler/commission"
	leadHandler "github.com/focomkt/sales-hub-backend/internal/handler/lead"
	memberHandler "github.com/focomkt/sales-hub-backend/internal/handler/member"
	"github.com/focomkt/sales-hub-backend/internal/middleware"
	"github.com/focomkt/sales-hub-backend/internal/repository"
	"github.com/focomkt/sales-hub-backend/internal/scheduler"
	authService "github.com/focomkt/sales-hub-backend/internal/service/auth"
	commissionService "github.com/focomkt/sales-hub-backend/internal/service/commission"
	leadService "github.com/focomkt/sales-hub-backend/internal/service/lead"
	memberService "github.com/focomkt/sales-hub-backend/internal/service/member"
	"github.com/focomkt/sales-hub-backend/pkg/identity"
	"github.com/focomkt/sales-hub-backend/pkg/mailer"
)

// setupRouter 设置路由，返回已装配的定时任务调度器
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) *scheduler.Scheduler {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	memberRepo := repository.NewMemberRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// 外部身份服务：未配置地址时使用内存实现（开发环境）
	var provider identity.Provider
	if cfg.Identity.BaseURL != "" {
		provider = identity.NewClient(&identity.Config{
			BaseURL:    cfg.Identity.BaseURL,
			ServiceKey: cfg.Identity.ServiceKey,
			Timeout:    cfg.Identity.Timeout,
		})
	} else {
		logger.Warn("identity base_url not configured, using in-memory provider")
		provider = identity.NewMock()
	}

	// 邮件通知
	var mail mailer.Sender = mailer.Noop{}
	if cfg.Mail.Enabled {
		mail = mailer.NewSMTPSender(&mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}

	// 初始化服务
	memberSvc := memberService.NewMemberService(memberRepo, profileRepo, mail)

	squadSvc := memberService.NewSquadService(memberRepo)
	squadSvc.SetLeaderboard(
		time.Duration(cfg.Business.Leaderboard.CacheTTL)*time.Second,
		cfg.Business.Leaderboard.DefaultLimit,
	)

	closureSvc := leadService.NewClosureService(memberRepo, commissionRepo)
	closureSvc.SetRates(cfg.Business.Distribution.DirectRate, cfg.Business.Distribution.UplineRate)
	leadSvc := leadService.NewLeadService(leadRepo, closureSvc)

	commissionSvc := commissionService.NewCommissionService(commissionRepo)

	authSvc := authService.NewAuthService(provider, profileRepo, memberSvc, jwtManager, cfg.Identity.ResetRedirectURL)
	inviteSvc := authService.NewInviteService(cfg.Business.Invite.BaseURL)

	// 初始化处理器
	authH := authHandler.NewHandler(authSvc)
	memberH := memberHandler.NewHandler(memberSvc, squadSvc, authSvc, inviteSvc)
	leadH := leadHandler.NewHandler(leadSvc)
	commissionH := commissionHandler.NewHandler(commissionSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	r.Use(middleware.AccessLog(logger))

	// 请求指标
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		{
			// 登录接口限流，防止暴力破解
			if redisClient != nil && cfg.RateLimit.Enabled {
				public.Use(middleware.LoginRateLimit(redisClient))
			}

			authH.RegisterRoutes(public)
		}

		// 会员端接口（需要认证）
		authed := v1.Group("")
		authed.Use(middleware.MemberAuth(jwtManager))
		{
			authH.RegisterProtectedRoutes(authed)
			memberH.RegisterRoutes(authed)
			leadH.RegisterRoutes(authed)
			commissionH.RegisterRoutes(authed)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})

	// 定时任务
	sched := scheduler.NewScheduler()
	taskHandler := scheduler.NewTaskHandler(memberRepo, squadSvc)
	scheduler.SetupTasks(sched, taskHandler,
		time.Duration(cfg.Business.Leaderboard.RefreshInterval)*time.Second)

	return sched
}
