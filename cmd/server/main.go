package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"valora/internal/auth"
	"valora/internal/cache"
	"valora/internal/config"
	cronrunner "valora/internal/cron"
	"valora/internal/db"
	"valora/internal/fase0"
	"valora/internal/handler"
	"valora/internal/logger"
	gormrepository "valora/internal/repository/gorm"
	"valora/internal/service"
	"valora/internal/valuation"

	_ "valora/docs"
)

func main() {
	cfgPath := os.Getenv("VALORA_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("VALORA_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		rs := cache.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rs.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, using in-memory cache", zap.Error(err))
			cacheStore = cache.NewMemoryStore()
		} else {
			cacheStore = rs
			defer rs.Close()
		}
		cancel()
	} else {
		cacheStore = cache.NewMemoryStore()
	}

	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default feature switches failed", zap.Error(err))
	}

	multiplesSvc := &service.SectorMultiplesService{
		Repo:           store,
		Cache:          cacheStore,
		Logger:         logger,
		GlobalMultiple: cfg.Valuation.GlobalMultiple,
	}
	if err := multiplesSvc.EnsureDefaults(context.Background()); err != nil {
		logger.Warn("seed sector multiples failed", zap.Error(err))
	}

	rulesSvc := &service.WorkflowRulesService{
		Repo:   store,
		Cache:  cacheStore,
		Logger: logger,
		Flags:  settingsSvc,
	}
	if err := rulesSvc.EnsureDefaultRules(context.Background()); err != nil {
		logger.Warn("seed workflow rules failed", zap.Error(err))
	}

	valuationEngine := &valuation.Engine{RangeBand: cfg.Valuation.RangeBandPct}
	writer := &service.ValuationWriter{Repo: store, Logger: logger, Flags: settingsSvc}
	sessions := &service.SessionManager{
		Engine:   valuationEngine,
		Table:    multiplesSvc,
		Client:   writer,
		Logger:   logger,
		Flags:    settingsSvc,
		TTL:      cfg.Sessions.TTL,
		MaxOpen:  cfg.Sessions.MaxSessions,
		Debounce: cfg.Autosave.DebounceWindow,
		Timeout:  cfg.Autosave.RequestTimeout,
	}

	workflowEngine := fase0.NewEngine(store, rulesSvc)
	documentsSvc := &service.Fase0DocumentService{
		Repo:     store,
		Rules:    rulesSvc,
		Logger:   logger,
		Validity: cfg.Fase0.DocumentValidity,
	}
	leadSvc := &service.LeadService{Repo: store, Rules: rulesSvc, Logger: logger, Flags: settingsSvc}
	expirySvc := &service.DocumentExpiryService{Repo: store, Logger: logger, Flags: settingsSvc}
	staleSvc := &service.StaleValuationService{
		Repo:   store,
		Logger: logger,
		Flags:  settingsSvc,
		MaxAge: cfg.Fase0.StaleValuationAge,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	jwtCfg := auth.JWT{TokenTTL: cfg.Auth.TokenTTL}
	if cfg.Auth.Enabled {
		jwtCfg.Secret = []byte(cfg.Auth.Secret)
	}
	authMW := auth.Middleware(jwtCfg)
	engine.Use(func(c *gin.Context) {
		if publicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		authMW(c)
	})

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	calcHandler := &handler.CalculatorHandler{Sessions: sessions}
	calcHandler.Register(engine)
	valuationsHandler := &handler.ValuationsHandler{
		Repo:   store,
		Writer: writer,
		Engine: valuationEngine,
		Table:  multiplesSvc,
	}
	valuationsHandler.Register(engine)
	fase0Handler := &handler.Fase0Handler{Repo: store, Engine: workflowEngine, Documents: documentsSvc}
	fase0Handler.Register(engine)
	leadsHandler := &handler.LeadsHandler{Repo: store, Leads: leadSvc}
	leadsHandler.Register(engine)
	analyticsHandler := &handler.AnalyticsHandler{Repo: store, Flags: settingsSvc}
	analyticsHandler.Register(engine)
	settingsHandler := &handler.SystemSettingsHandler{Repo: store, Settings: settingsSvc}
	settingsHandler.Register(engine)
	adminHandler := &handler.AdminHandler{Repo: store, Multiples: multiplesSvc, Rules: rulesSvc}
	adminHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)

		_, err = cronRunner.Add(cfg.Cron.DocumentExpiry, func(ctx context.Context) {
			if err := expirySvc.RunOnce(ctx); err != nil {
				logger.Warn("document expiry sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register document expiry failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.StaleValuations, func(ctx context.Context) {
			if err := staleSvc.RunOnce(ctx); err != nil {
				logger.Warn("stale valuation sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register stale valuations failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.SessionGC, func(ctx context.Context) {
			if n := sessions.RunOnce(ctx); n > 0 {
				logger.Info("reaped idle calculator sessions", zap.Int("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register session gc failed", zap.Error(err))
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// publicPath lists the routes served without a bearer token: probes,
// docs and the public calculator wizard.
func publicPath(path string) bool {
	switch {
	case path == "/healthz", path == "/readyz":
		return true
	case strings.HasPrefix(path, "/swagger/"):
		return true
	case strings.HasPrefix(path, "/api/v1/calculator/"):
		return true
	case strings.HasPrefix(path, "/api/v1/valuations"):
		return true
	}
	return false
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
