package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/data"
	"github.com/real-comp/mvr-common/internal/db"
	"github.com/real-comp/mvr-common/internal/metrics"
)

// ErrBuildInProgress is returned when another build holds the document write lock.
var ErrBuildInProgress = errors.New("another build is writing documents to this database")

type deps struct {
	metricsService   metrics.MetricsService
	dbConnectionPool db.ConnectionPool
	models           *data.Models
	lock             *db.AdvisoryLock
	server           *metricsServer
}

// setupDeps opens the database when databaseURL is set and starts the metrics server when metricsAddr is set.
func setupDeps(ctx context.Context, databaseURL, metricsAddr string) (*deps, error) {
	d := &deps{}

	var sqlxDB *sqlx.DB
	if databaseURL != "" {
		dbConnectionPool, err := db.OpenDBConnectionPool(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to the database: %w", err)
		}
		d.dbConnectionPool = dbConnectionPool

		sqlxDB, err = dbConnectionPool.SqlxDB(ctx)
		if err != nil {
			d.close(ctx)
			return nil, fmt.Errorf("getting sqlx db: %w", err)
		}
	}
	d.metricsService = metrics.NewMetricsService(sqlxDB)

	if d.dbConnectionPool != nil {
		models, err := data.NewModels(d.dbConnectionPool, d.metricsService)
		if err != nil {
			d.close(ctx)
			return nil, fmt.Errorf("creating models: %w", err)
		}
		d.models = models
	}

	if metricsAddr != "" {
		server, err := startMetricsServer(ctx, metricsAddr, d.metricsService)
		if err != nil {
			d.close(ctx)
			return nil, fmt.Errorf("starting metrics server: %w", err)
		}
		d.server = server
	}
	return d, nil
}

// lockDocuments takes the build advisory lock. Databases without advisory locks are used unlocked.
func (d *deps) lockDocuments(ctx context.Context) error {
	lock, err := db.AcquireAdvisoryLock(ctx, d.dbConnectionPool, db.BuildAdvisoryLockKey)
	if errors.Is(err, db.ErrAdvisoryLockUnsupported) {
		log.Ctx(ctx).Debugf("Writing documents without a lock: %v", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("acquiring build lock: %w", err)
	}
	if lock == nil {
		return ErrBuildInProgress
	}
	d.lock = lock
	return nil
}

func (d *deps) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if d.lock != nil {
		if err := d.lock.Release(ctx); err != nil {
			log.Ctx(ctx).Errorf("releasing build lock: %v", err)
		}
		d.lock = nil
	}
	if d.server != nil {
		if err := d.server.Shutdown(ctx); err != nil {
			log.Ctx(ctx).Error(err)
		}
		d.server = nil
	}
	if d.dbConnectionPool != nil {
		if err := d.dbConnectionPool.Close(); err != nil {
			log.Ctx(ctx).Errorf("closing database connection pool: %v", err)
		}
		d.dbConnectionPool = nil
	}
}
