package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "acta/docs"
	"acta/internal/caching"
	"acta/internal/common"
	"acta/internal/config"
	"acta/internal/handlers"
	"acta/internal/jobs"
	"acta/internal/logger"
	"acta/internal/metrics"
	"acta/internal/middleware"
	"acta/internal/repositories"
	"acta/internal/services"
	"acta/internal/storage"
	"acta/internal/validation"
	"acta/pkg/database"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	version    = "1.0.0"
	apiVersion = "v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		_, _ = os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Server.LogLevel,
		Environment: cfg.Server.Environment,
		ServiceName: "acta",
	}); err != nil {
		_, _ = os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common.ExposeInternalErrors = !cfg.IsProduction()
	metrics.Register()

	pool, err := database.NewPool(ctx, database.PoolConfig{
		DSN:      cfg.Database.DSN,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	}, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator := database.NewMigrator(cfg.Database.DSN, log)
	if cfg.Database.RunMigrations {
		if _, err := migrator.Up(); err != nil {
			return err
		}
	}

	redisClient, err := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	store, err := storage.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
		cfg.Storage.UseSSL, cfg.Storage.LogoBucket)
	if err != nil {
		return err
	}
	if err := store.EnsureBucketExists(ctx); err != nil {
		return err
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	articleRepo := repositories.NewArticleRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	auditRepo := repositories.NewAuditLogsRepo(pool)
	uow := repositories.NewUnitOfWork(pool)

	// Services
	tenantSvc := services.NewTenantService(tenantRepo)
	userSvc := services.NewUserService(userRepo, tenantRepo, cacheSvc, bcrypt.DefaultCost, cfg.Auth.TokenTTL)
	authSvc := services.NewAuthService(userRepo, userSvc, cacheSvc, services.AuthConfig{
		JWTSecret:        cfg.Auth.JWTSecret,
		Issuer:           cfg.Auth.Issuer,
		TokenTTL:         cfg.Auth.TokenTTL,
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LoginWindow:      cfg.Auth.LoginWindow,
	})
	companySvc := services.NewCompanyService(companyRepo, store, services.LogoConfig{
		MaxBytes:      cfg.Storage.MaxLogoBytes,
		PresignExpiry: cfg.Storage.PresignExpiry,
	})
	articleSvc := services.NewArticleService(articleRepo, companyRepo)
	invoiceSvc := services.NewInvoiceService(uow, invoiceRepo, companyRepo, cacheSvc)
	auditSvc := services.NewAuditLogsService(auditRepo)
	pdfSvc := services.NewPDFService(invoiceSvc, store, cacheSvc, cfg.PDF.MaxConcurrentRenders, cfg.Redis.PDFCacheTTL)

	if _, err := services.NewSeedService(userRepo, bcrypt.DefaultCost).
		EnsureSuperAdmin(ctx, cfg.Seed.SuperAdminEmail, cfg.Seed.SuperAdminPassword); err != nil {
		return err
	}

	jwtAuth, err := middleware.NewJWTAuth(authSvc, cfg.Auth.JWKSURL)
	if err != nil {
		return err
	}
	defer jwtAuth.Close()

	scheduler, err := jobs.NewJobScheduler(jobs.SchedulerConfig{
		LogoGCInterval:     cfg.Jobs.LogoGCInterval,
		CacheStatsInterval: cfg.Jobs.CacheStatsInterval,
		AuditPurgeInterval: cfg.Jobs.AuditPurgeInterval,
		AuditRetention:     cfg.Jobs.AuditRetention,
	}, jobs.NewLogoCollector(companyRepo, store, cfg.Jobs.LogoGCGrace), cacheSvc, auditSvc)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn("scheduler shutdown failed", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(metrics.NewHTTPMetrics("acta").Middleware())
	e.Use(logger.Middleware())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.ContextTimeoutWithConfig(echoMiddleware.ContextTimeoutConfig{
		Timeout: cfg.Server.RequestTimeout,
	}))
	e.Use(middleware.Audit(auditSvc))

	handlers.RegisterRoutes(e, &handlers.Handlers{
		Auth:       handlers.NewAuthHandlers(authSvc),
		Tenants:    handlers.NewTenantHandlers(tenantSvc),
		Users:      handlers.NewUserHandlers(userSvc),
		Companies:  handlers.NewCompanyHandlers(companySvc),
		Articles:   handlers.NewArticleHandlers(articleSvc),
		Invoices:   handlers.NewInvoiceHandlers(invoiceSvc, pdfSvc),
		AuditLogs:  handlers.NewAuditLogsHandlers(auditSvc),
		Migrations: handlers.NewMigrationHandlers(migrator),
		Health:     handlers.NewHealthHandlers(pool, cacheSvc, store, version),
	}, jwtAuth.Middleware(), apiVersion)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("version", version), zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
