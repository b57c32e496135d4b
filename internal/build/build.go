package build

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/consolidate"
	"github.com/real-comp/mvr-common/internal/data"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/records"
)

const buildDateLayout = "20060102"

// DefaultBuildDate is today's date in the format stamped on documents.
func DefaultBuildDate() string {
	return time.Now().Format(buildDateLayout)
}

// Build consolidates the transactions of cfg.Inputs into documents written to cfg.Output and, when a database is
// configured, upserted into it.
func Build(ctx context.Context, cfg Configs) (consolidate.Stats, error) {
	ctx, r := newRun(ctx, CommandBuild, cfg.AppTracker)
	if cfg.BuildDate == "" {
		cfg.BuildDate = DefaultBuildDate()
	}

	d, err := setupDeps(ctx, cfg.DatabaseURL, cfg.MetricsAddr)
	if err != nil {
		return consolidate.Stats{}, r.finish(ctx, nil, data.BuildRunTotals{}, fmt.Errorf("setting up dependencies for build: %w", err))
	}
	defer d.close(ctx)

	if err := r.record(ctx, d, cfg.BuildDate); err != nil {
		return consolidate.Stats{}, r.finish(ctx, d, data.BuildRunTotals{}, err)
	}

	stats, err := runBuild(ctx, cfg, d)
	totals := data.BuildRunTotals{
		TransactionsIn:   stats.TransactionsIn,
		DocumentsWritten: stats.Consolidated,
		DocumentsSkipped: stats.SkippedAllDeleted,
	}
	return stats, r.finish(ctx, d, totals, err)
}

func runBuild(ctx context.Context, cfg Configs, d *deps) (stats consolidate.Stats, err error) {
	if len(cfg.Inputs) == 0 {
		return stats, errors.New("no input files")
	}
	if d.models != nil {
		if err := d.lockDocuments(ctx); err != nil {
			return stats, err
		}
	}

	reader := records.OpenAll[*entities.Transaction](cfg.Inputs)
	defer records.CloseAll(ctx, reader)
	transactions := &countingReader[*entities.Transaction]{reader: reader, stage: CommandBuild, metricsService: d.metricsService}

	var groups consolidate.GroupReader
	if cfg.Shuffle {
		groups = consolidate.NewBufferedGroupReader(transactions)
	} else {
		groups = consolidate.NewGroupReader(transactions)
	}

	sinks := MultiSink{}
	if cfg.Output != "" || d.models == nil {
		writer, createErr := records.Create[*entities.Document](cfg.Output)
		if createErr != nil {
			return stats, fmt.Errorf("creating output: %w", createErr)
		}
		defer func() {
			if closeErr := writer.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		sinks = append(sinks, &FileSink{Writer: &countingWriter[*entities.Document]{writer: writer, stage: CommandBuild, metricsService: d.metricsService}})
	}
	if d.models != nil {
		sinks = append(sinks, d.models.Documents)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := pond.NewPool(workers)
	defer pool.StopAndWait()
	d.metricsService.RegisterPoolMetrics("consolidate", pool)

	consolidator := &consolidate.Consolidator{BuildDate: cfg.BuildDate, Attributes: cfg.Attributes}
	service, err := consolidate.NewService(consolidator, pool, cfg.BatchSize, d.metricsService)
	if err != nil {
		return stats, fmt.Errorf("instantiating consolidation service: %w", err)
	}

	log.Ctx(ctx).Infof("Building documents from %d input files with %d workers, build date %s.", len(cfg.Inputs), workers, cfg.BuildDate)
	stats, err = service.Run(ctx, groups, sinks)
	if err != nil {
		return stats, fmt.Errorf("consolidating transactions: %w", err)
	}

	if d.models != nil {
		stored, countErr := d.models.Documents.Count(ctx)
		if countErr != nil {
			return stats, fmt.Errorf("counting stored documents: %w", countErr)
		}
		log.Ctx(ctx).Infof("%d documents stored.", stored)
	}
	return stats, nil
}
