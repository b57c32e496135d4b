package build

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/apptracker"
	"github.com/real-comp/mvr-common/internal/cass"
	"github.com/real-comp/mvr-common/internal/consolidate"
	"github.com/real-comp/mvr-common/internal/data"
	"github.com/real-comp/mvr-common/internal/entities"
	"github.com/real-comp/mvr-common/internal/lockstep"
	"github.com/real-comp/mvr-common/internal/records"
)

const (
	CommandBuild     = "build"
	CommandCassInput = "cass-input"
	CommandCassMerge = "cass-merge"
)

// run tracks one command execution. Its id is attached to every log line of the run and, when a database is
// configured, to the mvr_build_runs row describing it.
type run struct {
	ID        string
	Command   string
	StartedAt time.Time
	tracker   apptracker.AppTracker
	recorded  bool
}

func newRun(ctx context.Context, command string, tracker apptracker.AppTracker) (context.Context, *run) {
	r := &run{
		ID:        uuid.NewString(),
		Command:   command,
		StartedAt: time.Now(),
		tracker:   tracker,
	}
	ctx = log.Set(ctx, log.Ctx(ctx).WithFields(log.F{
		"run_id":  r.ID,
		"command": command,
	}))
	return ctx, r
}

// record inserts the run into mvr_build_runs when d has a database.
func (r *run) record(ctx context.Context, d *deps, buildDate string) error {
	if d == nil || d.models == nil {
		return nil
	}
	if err := d.models.BuildRuns.Start(ctx, r.ID, r.Command, buildDate, r.StartedAt); err != nil {
		return err
	}
	r.recorded = true
	return nil
}

// finish reports the outcome of the run to the metrics, the app tracker and the database, and returns runErr.
func (r *run) finish(ctx context.Context, d *deps, totals data.BuildRunTotals, runErr error) error {
	ctx = context.WithoutCancel(ctx)
	duration := time.Since(r.StartedAt)

	if d != nil {
		d.metricsService.ObserveStageDuration(r.Command, duration.Seconds())
		if runErr != nil {
			d.metricsService.IncErrors(r.Command, errorType(runErr))
		}
		if r.recorded {
			if err := d.models.BuildRuns.Finish(ctx, r.ID, totals, runErr, time.Now()); err != nil {
				log.Ctx(ctx).Errorf("recording build run: %v", err)
			}
		}
	}

	if runErr != nil {
		log.Ctx(ctx).Errorf("%s failed after %s: %v", r.Command, duration.Round(time.Millisecond), runErr)
		if r.tracker != nil {
			r.tracker.CaptureException(runErr)
		}
		return runErr
	}
	log.Ctx(ctx).Infof("%s finished in %s.", r.Command, duration.Round(time.Millisecond))
	return nil
}

// errorType classifies run errors for the errors metric.
func errorType(err error) string {
	var cardinalityErr *lockstep.CardinalityError
	var orderErr *lockstep.OrderError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &cardinalityErr):
		return "cardinality"
	case errors.As(err, &orderErr):
		return "order"
	case errors.Is(err, cass.ErrUnhandledAddressID), errors.Is(err, cass.ErrLienHolderIndexOutOfRange):
		return "routing"
	case errors.Is(err, entities.ErrInvalidFormat),
		errors.Is(err, consolidate.ErrInvalidTransactionDate),
		errors.Is(err, consolidate.ErrGroupNotContiguous),
		errors.Is(err, cass.ErrMissingRawAddressID),
		errors.Is(err, cass.ErrMalformedAddressID),
		errors.Is(err, cass.ErrTransactionIDSeparator),
		errors.Is(err, lockstep.ErrEmptyKey),
		errors.Is(err, records.ErrNullRecord):
		return "format"
	case errors.Is(err, ErrBuildInProgress):
		return "locked"
	default:
		return "other"
	}
}
