package build

import (
	"context"
	"fmt"

	"github.com/real-comp/mvr-common/internal/cass"
	"github.com/real-comp/mvr-common/internal/data"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
	"github.com/real-comp/mvr-common/internal/records"
)

// CassInput writes the raw addresses of the transactions in cfg.Inputs to cfg.Output for standardization.
func CassInput(ctx context.Context, cfg CassInputConfigs) (cass.ExtractStats, error) {
	ctx, r := newRun(ctx, CommandCassInput, cfg.AppTracker)

	d, err := setupDeps(ctx, "", cfg.MetricsAddr)
	if err != nil {
		return cass.ExtractStats{}, r.finish(ctx, nil, data.BuildRunTotals{}, fmt.Errorf("setting up dependencies for cass input: %w", err))
	}
	defer d.close(ctx)

	stats, err := runCassInput(ctx, cfg, d)
	d.metricsService.IncRawAddresses("written", stats.Written)
	d.metricsService.IncRawAddresses("skipped", stats.Skipped)
	totals := data.BuildRunTotals{TransactionsIn: stats.Transactions, DocumentsWritten: stats.Written, DocumentsSkipped: stats.Skipped}
	return stats, r.finish(ctx, d, totals, err)
}

func runCassInput(ctx context.Context, cfg CassInputConfigs, d *deps) (stats cass.ExtractStats, err error) {
	reader := records.OpenAll[*entities.Transaction](cfg.Inputs)
	defer records.CloseAll(ctx, reader)

	writer, err := records.Create[*entities.RawAddress](cfg.Output)
	if err != nil {
		return stats, fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	extractor := &cass.Extractor{AssignIDs: cfg.AssignIDs}
	stats, err = extractor.Run(ctx,
		&countingReader[*entities.Transaction]{reader: reader, stage: CommandCassInput, metricsService: d.metricsService},
		&countingWriter[*entities.RawAddress]{writer: writer, stage: CommandCassInput, metricsService: d.metricsService},
	)
	if err != nil {
		return stats, fmt.Errorf("extracting raw addresses: %w", err)
	}
	return stats, nil
}

// CassMerge applies the standardized addresses of cfg.Addresses to the transactions of cfg.Inputs and writes the
// transactions to cfg.Output. Both inputs must be sorted by transaction id.
func CassMerge(ctx context.Context, cfg CassMergeConfigs) (lockstep.Stats, error) {
	ctx, r := newRun(ctx, CommandCassMerge, cfg.AppTracker)

	d, err := setupDeps(ctx, "", cfg.MetricsAddr)
	if err != nil {
		return lockstep.Stats{}, r.finish(ctx, nil, data.BuildRunTotals{}, fmt.Errorf("setting up dependencies for cass merge: %w", err))
	}
	defer d.close(ctx)

	stats, err := runCassMerge(ctx, cfg, d)
	d.metricsService.IncCorrelatedRecords("input", stats.InputCount)
	d.metricsService.IncCorrelatedRecords("secondary", stats.SecondaryCount)
	d.metricsService.IncCorrelatedRecords("matched", stats.MatchedCount)
	d.metricsService.IncCorrelatedRecords("output", stats.OutputCount)
	d.metricsService.IncCorrelatedRecords("unmatched_primary", stats.UnmatchedPrimary)
	d.metricsService.IncCorrelatedRecords("unmatched_secondary", stats.UnmatchedSecondary)
	totals := data.BuildRunTotals{TransactionsIn: stats.InputCount, DocumentsWritten: stats.OutputCount}
	return stats, r.finish(ctx, d, totals, err)
}

func runCassMerge(ctx context.Context, cfg CassMergeConfigs, d *deps) (stats lockstep.Stats, err error) {
	transactions := records.OpenAll[*entities.Transaction](cfg.Inputs)
	addresses := records.OpenAll[*entities.Address](cfg.Addresses)
	defer records.CloseAll(ctx, transactions, addresses)

	writer, err := records.Create[*entities.Transaction](cfg.Output)
	if err != nil {
		return stats, fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return cass.Merge(ctx,
		&countingReader[*entities.Transaction]{reader: transactions, stage: CommandCassMerge, metricsService: d.metricsService},
		&countingReader[*entities.Address]{reader: addresses, stage: CommandCassMerge + "-addresses", metricsService: d.metricsService},
		&countingWriter[*entities.Transaction]{writer: writer, stage: CommandCassMerge, metricsService: d.metricsService},
	)
}
