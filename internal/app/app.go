package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"survey_backend/internal/cache"
	"survey_backend/internal/config"
	"survey_backend/internal/controller"
	"survey_backend/internal/repository"
	"survey_backend/internal/service"
	"survey_backend/internal/util"
	"survey_backend/pkg/database"
	"survey_backend/pkg/logger"
	"survey_backend/pkg/mail"
	"survey_backend/pkg/monitoring"
	"survey_backend/pkg/security"
	"survey_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	mailer          mail.Sender
	tracer          *sdktrace.TracerProvider
	limiters        []*security.RateLimiter
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	survey     *repository.SurveyRepository
	section    *repository.SectionRepository
	question   *repository.QuestionRepository
	invitation *repository.InvitationRepository
	response   *repository.ResponseRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	survey     *service.SurveyService
	section    *service.SectionService
	question   *service.QuestionService
	flow       *service.FlowService
	draft      *service.DraftService
	invitation *service.InvitationService
	response   *service.ResponseService
	export     *service.ExportService
}

type controllers struct {
	auth       *controller.AuthController
	survey     *controller.SurveyController
	section    *controller.SectionController
	question   *controller.QuestionController
	flow       *controller.FlowController
	draft      *controller.DraftController
	invitation *controller.InvitationController
	response   *controller.ResponseController
	export     *controller.ExportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置文件变化后调用，只有运行时可调整的项会生效
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		survey:     repository.NewSurveyRepository(db),
		section:    repository.NewSectionRepository(db),
		question:   repository.NewQuestionRepository(db),
		invitation: repository.NewInvitationRepository(db),
		response:   repository.NewResponseRepository(db),
	}
}

func (a *App) initServices(r *repositories, cfg *config.Config, rdb *redis.Client) *services {
	// 未启用 Redis 时：草稿不可用，题目保存锁退化为进程内锁
	var draftCache *cache.DraftCache
	var locker cache.Locker = cache.NewMemoryLocker()
	if rdb != nil {
		draftCache = cache.NewDraftCache(rdb)
		locker = cache.NewRedisLocker(rdb, cfg.Lock.TTL())
	}

	s := &services{
		auth:    service.NewAuthService(r.user, cfg),
		storage: service.NewStorageService(cfg),
	}
	s.survey = service.NewSurveyService(r.survey, r.section, r.question)
	s.section = service.NewSectionService(r.section, r.survey)
	s.question = service.NewQuestionService(r.question, r.survey, locker)
	s.flow = service.NewFlowService(s.survey)
	s.draft = service.NewDraftService(draftCache, r.survey)
	s.invitation = service.NewInvitationService(r.invitation, r.survey, a.mailer, &cfg.Invitation)
	s.response = service.NewResponseService(r.response, r.invitation, r.question, s.survey, s.draft)
	s.export = service.NewExportService(r.survey, r.question, r.response, s.storage, cfg.Storage.ArchiveExport)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		survey:     controller.NewSurveyController(s.survey),
		section:    controller.NewSectionController(s.section),
		question:   controller.NewQuestionController(s.question),
		flow:       controller.NewFlowController(s.flow),
		draft:      controller.NewDraftController(s.draft),
		invitation: controller.NewInvitationController(s.invitation),
		response:   controller.NewResponseController(s.response),
		export:     controller.NewExportController(s.export),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// newLimiter 每分钟 perMinute 次，后台协程定期清理过期访客
func (a *App) newLimiter(name string, perMinute int) *security.RateLimiter {
	l := security.NewRateLimiter(name, perMinute, time.Minute)
	l.StartCleanup()
	a.limiters = append(a.limiters, l)
	return l
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不自动迁移，需要 -migrate 或 -migrate-only
	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		if err := database.SeedAdmin(db, &cfg.Admin); err != nil {
			logger.Log.Fatal("Failed to seed admin user", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	} else {
		logger.Log.Warn("Redis disabled, drafts unavailable and question locks are process local")
	}

	app.mailer, err = mail.New(&cfg.SMTP)
	if err != nil {
		logger.Log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, app.Redis)
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal && cfg.Storage.ArchiveExport {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(logger.SetLevel)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放后台协程和外部连接
func (a *App) Close(ctx context.Context) {
	for _, l := range a.limiters {
		l.Stop()
	}
	if a.mailer != nil {
		a.mailer.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
