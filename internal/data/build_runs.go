package data

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null"

	"github.com/real-comp/mvr-common/internal/db"
	"github.com/real-comp/mvr-common/internal/metrics"
	"github.com/real-comp/mvr-common/internal/utils"
)

const buildRunsTable = "mvr_build_runs"

type BuildRunStatus string

const (
	BuildRunStatusRunning   BuildRunStatus = "RUNNING"
	BuildRunStatusSucceeded BuildRunStatus = "SUCCEEDED"
	BuildRunStatusFailed    BuildRunStatus = "FAILED"
)

type BuildRun struct {
	RunID            string         `db:"run_id"`
	Command          string         `db:"command"`
	BuildDate        null.String    `db:"build_date"`
	StartedAt        time.Time      `db:"started_at"`
	FinishedAt       null.Time      `db:"finished_at"`
	Status           BuildRunStatus `db:"status"`
	TransactionsIn   int            `db:"transactions_in"`
	DocumentsWritten int            `db:"documents_written"`
	DocumentsSkipped int            `db:"documents_skipped"`
	Error            null.String    `db:"error"`
}

// BuildRunTotals are the counters recorded when a run finishes.
type BuildRunTotals struct {
	TransactionsIn   int
	DocumentsWritten int
	DocumentsSkipped int
}

type BuildRunModel struct {
	DB             db.ConnectionPool
	MetricsService metrics.MetricsService
}

func (m *BuildRunModel) Start(ctx context.Context, runID, command, buildDate string, startedAt time.Time) error {
	const query = `
		INSERT INTO mvr_build_runs (run_id, command, build_date, started_at, status)
		VALUES (?, ?, ?, ?, ?)`
	start := time.Now()
	_, err := m.DB.ExecContext(ctx, m.DB.Rebind(query), runID, command, nullableString(buildDate), startedAt.UTC(), BuildRunStatusRunning)
	m.MetricsService.ObserveDBQueryDuration("Start", buildRunsTable, time.Since(start).Seconds())
	if err != nil {
		m.MetricsService.IncDBQueryError("Start", buildRunsTable, utils.GetDBErrorType(err))
		return fmt.Errorf("inserting build run %s: %w", runID, err)
	}
	m.MetricsService.IncDBQuery("Start", buildRunsTable)
	return nil
}

// Finish records the outcome of a run. A nil runErr marks the run as succeeded.
func (m *BuildRunModel) Finish(ctx context.Context, runID string, totals BuildRunTotals, runErr error, finishedAt time.Time) error {
	const query = `
		UPDATE mvr_build_runs
		SET finished_at = ?, status = ?, transactions_in = ?, documents_written = ?, documents_skipped = ?, error = ?
		WHERE run_id = ?`
	status := BuildRunStatusSucceeded
	errMsg := null.String{}
	if runErr != nil {
		status = BuildRunStatusFailed
		errMsg = null.StringFrom(utils.SanitizeUTF8(runErr.Error()))
	}

	start := time.Now()
	result, err := m.DB.ExecContext(ctx, m.DB.Rebind(query),
		finishedAt.UTC(), status, totals.TransactionsIn, totals.DocumentsWritten, totals.DocumentsSkipped, errMsg, runID)
	m.MetricsService.ObserveDBQueryDuration("Finish", buildRunsTable, time.Since(start).Seconds())
	if err != nil {
		m.MetricsService.IncDBQueryError("Finish", buildRunsTable, utils.GetDBErrorType(err))
		return fmt.Errorf("updating build run %s: %w", runID, err)
	}
	m.MetricsService.IncDBQuery("Finish", buildRunsTable)

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("build run %s not found", runID)
	}
	return nil
}

func (m *BuildRunModel) Get(ctx context.Context, runID string) (*BuildRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM mvr_build_runs WHERE run_id = ?`, selectColumns(BuildRun{}))
	start := time.Now()
	run, err := db.QueryOne[BuildRun](ctx, m.DB, query, runID)
	m.MetricsService.ObserveDBQueryDuration("Get", buildRunsTable, time.Since(start).Seconds())
	if err != nil {
		m.MetricsService.IncDBQueryError("Get", buildRunsTable, utils.GetDBErrorType(err))
		return nil, fmt.Errorf("getting build run %s: %w", runID, err)
	}
	m.MetricsService.IncDBQuery("Get", buildRunsTable)
	return run, nil
}
