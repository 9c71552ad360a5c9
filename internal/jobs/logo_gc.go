package jobs

import (
	"context"
	"time"

	"acta/internal/logger"
	"acta/internal/metrics"
	"acta/internal/repositories"
	"acta/internal/storage"

	"go.uber.org/zap"
)

// LogoCollector removes logo objects no company references. Objects younger
// than the grace period are kept so an upload racing with its database
// update is never collected.
type LogoCollector struct {
	companies repositories.CompanyRepository
	store     storage.ObjectStore
	grace     time.Duration
	now       func() time.Time
}

func NewLogoCollector(companies repositories.CompanyRepository, store storage.ObjectStore, grace time.Duration) *LogoCollector {
	return &LogoCollector{companies: companies, store: store, grace: grace, now: time.Now}
}

// Collect returns the number of objects removed.
func (lc *LogoCollector) Collect(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	referenced, err := lc.companies.ListLogos(ctx)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		inUse[name] = struct{}{}
	}

	objects, err := lc.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := lc.now().Add(-lc.grace)
	removed := 0
	for _, obj := range objects {
		if _, ok := inUse[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := lc.store.Delete(ctx, obj.Key); err != nil {
			log.Warn("failed to remove orphaned logo", zap.String("object", obj.Key), zap.Error(err))
			continue
		}
		removed++
	}

	metrics.LogosCollected.Add(float64(removed))
	log.Info("logo collection finished", zap.Int("scanned", len(objects)), zap.Int("removed", removed))
	return removed, nil
}
