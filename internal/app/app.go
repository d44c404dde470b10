package app

import (
	"care_training_backend/internal/config"
	"care_training_backend/internal/controller"
	"care_training_backend/internal/middleware"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/service"
	"care_training_backend/pkg/cache"
	"care_training_backend/pkg/configwatcher"
	"care_training_backend/pkg/database"
	"care_training_backend/pkg/logger"
	"care_training_backend/pkg/monitoring"
	"care_training_backend/pkg/security"
	"care_training_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	services *services
	limiter  *security.IPLimiter
	tracer   *sdktrace.TracerProvider
	watcher  *configwatcher.Watcher
}

type repositories struct {
	user        *repository.UserRepository
	module      *repository.ModuleRepository
	question    *repository.QuestionRepository
	progress    *repository.ProgressRepository
	attempt     *repository.AttemptRepository
	certificate *repository.CertificateRepository
	forum       *repository.ForumRepository
	liveClass   *repository.LiveClassRepository
	intake      *repository.IntakeRepository
	analytics   *repository.AnalyticsRepository
}

type services struct {
	policy      *service.PolicyHolder
	storage     service.StorageProvider
	auth        *service.AuthService
	progress    *service.ProgressService
	assessment  *service.AssessmentService
	catalog     *service.CatalogService
	certificate *service.CertificateService
	forumHub    *service.ForumHub
	forum       *service.ForumService
	liveClass   *service.LiveClassService
	analytics   *service.AnalyticsService
	intake      *service.IntakeService
}

type controllers struct {
	health      *controller.HealthController
	auth        *controller.AuthController
	module      *controller.ModuleController
	certificate *controller.CertificateController
	forum       *controller.ForumController
	liveClass   *controller.LiveClassController
	analytics   *controller.AnalyticsController
	intake      *controller.IntakeController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		module:      repository.NewModuleRepository(db),
		question:    repository.NewQuestionRepository(db),
		progress:    repository.NewProgressRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		certificate: repository.NewCertificateRepository(db),
		forum:       repository.NewForumRepository(db),
		liveClass:   repository.NewLiveClassRepository(db),
		intake:      repository.NewIntakeRepository(db),
		analytics:   repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.policy = service.NewPolicyHolder(service.UnlockPolicy(cfg.Training.UnlockPolicy))
	s.storage = service.NewStorageProvider(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.progress = service.NewProgressService(db, repos.progress, repos.module, s.policy)
	s.assessment = service.NewAssessmentService(
		db,
		s.progress,
		repos.question,
		repos.progress,
		repos.attempt,
		service.ShortAnswerPolicy(cfg.Training.ShortAnswerPolicy),
		cfg.Training.SubmitRetries,
	)

	var catalogCache cache.Cache = cache.NopCache{}
	if rdb != nil {
		catalogCache = cache.NewRedisCache(rdb, "care_training:")
	}
	s.catalog = service.NewCatalogService(
		repos.module,
		repos.question,
		s.progress,
		s.storage,
		catalogCache,
		time.Duration(cfg.Redis.CatalogTTLSeconds)*time.Second,
		os.TempDir(),
	)

	s.certificate = service.NewCertificateService(
		repos.certificate,
		repos.progress,
		repos.module,
		repos.user,
		service.NewPDFCertificateRenderer(cfg.Certificate.WorkDir),
		s.storage,
		cfg.Certificate,
	)

	s.forumHub = service.NewForumHub(rdb)
	s.forum = service.NewForumService(repos.forum, repos.module, s.forumHub)
	s.liveClass = service.NewLiveClassService(db, repos.liveClass, repos.module)
	s.analytics = service.NewAnalyticsService(repos.analytics, repos.user, repos.certificate, repos.attempt)
	s.intake = service.NewIntakeService(repos.intake)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		health:      controller.NewHealthController(db),
		auth:        controller.NewAuthController(s.auth),
		module:      controller.NewModuleController(s.catalog, s.progress, s.assessment),
		certificate: controller.NewCertificateController(s.certificate),
		forum:       controller.NewForumController(s.forum, s.forumHub),
		liveClass:   controller.NewLiveClassController(s.liveClass),
		analytics:   controller.NewAnalyticsController(s.analytics),
		intake:      controller.NewIntakeController(s.intake),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewIPLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloadCallbacks 只有日志级别和解锁策略支持热更新
func (a *App) registerReloadCallbacks(s *services) {
	a.watcher = configwatcher.New(a.ConfigFile)
	a.watcher.OnReload(func(cfg *config.Config) {
		logger.SetLevelForMode(cfg.Server.Mode)
	})
	a.watcher.OnReload(func(cfg *config.Config) {
		policy := service.UnlockPolicy(cfg.Training.UnlockPolicy)
		if s.policy.Get() != policy {
			logger.Log.Info("Unlock policy changed", zap.String("policy", string(policy)))
			s.policy.Set(policy)
		}
	})
}

func NewApp(cfg *config.Config, configFile string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式下只有显式指定才迁移
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:     cfg,
		ConfigFile: configFile,
		DB:         db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled() {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	} else {
		logger.Log.Warn("Redis not configured, catalog cache and cross-instance forum events disabled")
	}

	provider, err := middleware.NewIdentityProvider(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize identity provider", zap.Error(err))
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("care-training", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, provider)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerReloadCallbacks(services)

	return app
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.services.forumHub.Run(ctx)
	go a.limiter.Run(ctx)
	go func() {
		if err := a.watcher.Run(ctx); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 关闭 websocket 连接和后台任务
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
