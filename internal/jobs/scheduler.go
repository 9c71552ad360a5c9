package jobs

import (
	"context"
	"time"

	"acta/internal/caching"
	"acta/internal/logger"
	"acta/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type SchedulerConfig struct {
	LogoGCInterval     time.Duration
	CacheStatsInterval time.Duration
	AuditPurgeInterval time.Duration
	AuditRetention     time.Duration
}

// AuditPurger drops audit entries older than a retention window.
type AuditPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	collector *LogoCollector
	cacheSvc  caching.CacheService
	audit     AuditPurger
	retention time.Duration
	jobs      map[string]gocron.Job
}

func NewJobScheduler(cfg SchedulerConfig, collector *LogoCollector, cacheSvc caching.CacheService, audit AuditPurger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		collector: collector,
		cacheSvc:  cacheSvc,
		audit:     audit,
		retention: cfg.AuditRetention,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(cfg); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs(cfg SchedulerConfig) error {
	if js.collector != nil && cfg.LogoGCInterval > 0 {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(cfg.LogoGCInterval),
			gocron.NewTask(js.collectLogos),
			gocron.WithName("logo-gc"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
		js.jobs["logo-gc"] = job
	}

	if js.cacheSvc != nil && cfg.CacheStatsInterval > 0 {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(cfg.CacheStatsInterval),
			gocron.NewTask(js.recordCacheStats),
			gocron.WithName("pdf-cache-stats"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
		js.jobs["pdf-cache-stats"] = job
	}

	if js.audit != nil && cfg.AuditPurgeInterval > 0 && cfg.AuditRetention > 0 {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(cfg.AuditPurgeInterval),
			gocron.NewTask(js.purgeAuditLogs),
			gocron.WithName("audit-purge"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
		js.jobs["audit-purge"] = job
	}

	logger.GetLogger().Info("Registered background jobs", zap.Int("count", len(js.jobs)))
	return nil
}

// Jobs returns the names of the registered jobs.
func (js *JobScheduler) Jobs() []string {
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) Start() {
	logger.GetLogger().Info("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	logger.GetLogger().Info("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) collectLogos() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := js.collector.Collect(ctx); err != nil {
		logger.GetLogger().Error("logo collection failed", zap.Error(err))
	}
}

func (js *JobScheduler) recordCacheStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	count, err := js.cacheSvc.CountInvoicePDFs(ctx)
	if err != nil {
		logger.GetLogger().Warn("pdf cache stats failed", zap.Error(err))
		return
	}
	metrics.PDFCacheEntries.Set(float64(count))
}

func (js *JobScheduler) purgeAuditLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	removed, err := js.audit.Purge(ctx, js.retention)
	if err != nil {
		logger.GetLogger().Error("audit purge failed", zap.Error(err))
		return
	}
	logger.GetLogger().Info("audit purge finished", zap.Int64("removed", removed))
}
