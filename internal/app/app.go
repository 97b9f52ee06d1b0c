package app

import (
	"context"
	"mandabem_backend/internal/config"
	"mandabem_backend/internal/controller"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/service"
	"mandabem_backend/pkg/configwatcher"
	"mandabem_backend/pkg/database"
	"mandabem_backend/pkg/logger"
	"mandabem_backend/pkg/monitoring"
	"mandabem_backend/pkg/security"
	"mandabem_backend/pkg/tracing"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigDir 配置文件所在目录，热更新时监听其中的 config.yaml
const ConfigDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	location   *repository.LocationRepository
	challenge  *repository.ChallengeRepository
	submission *repository.SubmissionRepository
	judge      *repository.JudgeRepository
	evaluation *repository.EvaluationRepository
}

type services struct {
	auth        *service.AuthService
	challenge   *service.ChallengeService
	submission  *service.SubmissionService
	evaluation  *service.EvaluationService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth       *controller.AuthController
	challenge  *controller.ChallengeController
	submission *controller.SubmissionController
	judge      *controller.JudgeController
	pricing    *controller.PricingController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		location:   repository.NewLocationRepository(db),
		challenge:  repository.NewChallengeRepository(db),
		submission: repository.NewSubmissionRepository(db),
		judge:      repository.NewJudgeRepository(db),
		evaluation: repository.NewEvaluationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.challenge = service.NewChallengeService(repos.challenge, repos.location)
	s.leaderboard = service.NewLeaderboardService(repos.submission, repos.challenge, rdb, cfg.Contest.LeaderboardCacheTTL())
	s.submission = service.NewSubmissionService(db, repos.submission, repos.challenge, repos.user, service.NewMockGateway())
	s.evaluation = service.NewEvaluationService(
		db,
		repos.submission,
		repos.evaluation,
		repos.judge,
		s.leaderboard,
		cfg.Contest.RequiredJudges,
	)

	// 评审策略和排行榜缓存时长支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.evaluation.SetRequiredJudges(newCfg.Contest.RequiredJudges)
		s.leaderboard.TTL = newCfg.Contest.LeaderboardCacheTTL()
		logger.Log.Info("contest policy reloaded",
			zap.Int("requiredJudges", s.evaluation.RequiredJudges()),
			zap.Duration("leaderboardTTL", newCfg.Contest.LeaderboardCacheTTL()),
		)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		challenge:  controller.NewChallengeController(s.challenge, s.leaderboard),
		submission: controller.NewSubmissionController(s.submission),
		judge:      controller.NewJudgeController(s.evaluation),
		pricing:    controller.NewPricingController(),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build 用已建立的连接组装路由，rdb 可以为 nil
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 排行榜缓存可降级为直接查库
		logger.Log.Warn("Redis unavailable, leaderboard cache disabled", zap.Error(err))
		rdb = nil
	}

	app := Build(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		configFile := filepath.Join(ConfigDir, "config.yaml")
		if err := configwatcher.Watch(ctx, configFile, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
}
